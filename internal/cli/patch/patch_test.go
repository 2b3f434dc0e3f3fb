// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

//go:build unit

package patch

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platform-engineering-labs/stackdeploy/internal/cli/cmd"
	"github.com/platform-engineering-labs/stackdeploy/internal/stackfile"
)

const compose = "services:\n  web:\n    image: shop/web:1.0\n  db:\n    image: postgres:16\n"

func writeCompose(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "docker-compose.yml")
	require.NoError(t, os.WriteFile(path, []byte(compose), 0640))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	command := PatchCmd()
	var out bytes.Buffer
	command.SetOut(&out)
	command.SetArgs(args)

	err := command.Execute()
	return out.String(), err
}

func TestValidatePatchOptions(t *testing.T) {
	t.Run("file is required", func(t *testing.T) {
		err := validatePatchOptions(&PatchOptions{NewImage: "shop/web:2.0"})
		assert.EqualError(t, err, "stack file is required")
	})

	t.Run("image must be a valid reference", func(t *testing.T) {
		err := validatePatchOptions(&PatchOptions{File: "compose.yml", NewImage: "shop/web:"})
		require.Error(t, err)

		var flagErr *cmd.FlagError
		assert.ErrorAs(t, err, &flagErr)
	})
}

func TestPatchCmd_PrintsDiff(t *testing.T) {
	path := writeCompose(t)

	out, err := execute(t, "-f", path, "--service-name", "web", "--new-image", "shop/web:2.0")
	require.NoError(t, err)

	assert.Contains(t, out, "+    image: shop/web:2.0")
	assert.Contains(t, out, "-    image: shop/web:1.0")

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, compose, string(content))
}

func TestPatchCmd_Write(t *testing.T) {
	path := writeCompose(t)

	out, err := execute(t, "-f", path, "--service-name", "db", "--new-image", "postgres:17", "--write")
	require.NoError(t, err)
	assert.Contains(t, out, "Updated service db:")

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "services:\n  web:\n    image: shop/web:1.0\n  db:\n    image: postgres:17\n", string(content))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0640), info.Mode().Perm())
}

func TestPatchCmd_InterpolatedImage(t *testing.T) {
	path := writeCompose(t)

	_, err := execute(t, "-f", path, "--service-name", "web", "--new-image", "shop/web:${TAG}", "--write")
	require.NoError(t, err)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "    image: shop/web:${TAG}\n")
}

func TestPatchCmd_UnknownService(t *testing.T) {
	path := writeCompose(t)

	_, err := execute(t, "-f", path, "--service-name", "cache", "--new-image", "redis:7")

	var notFound *stackfile.ServiceNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "cache", notFound.Service)
}

func TestPatchCmd_FromEnvironment(t *testing.T) {
	path := writeCompose(t)
	t.Setenv("SERVICE_NAME", "web")
	t.Setenv("NEW_IMAGE", "shop/web:3.0")

	out, err := execute(t, "-f", path)
	require.NoError(t, err)
	assert.Contains(t, out, "+    image: shop/web:3.0")
}
