// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

//go:build unit

package renderer

import (
	"errors"
	"fmt"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apimodel "github.com/platform-engineering-labs/stackdeploy/internal/api/model"
	"github.com/platform-engineering-labs/stackdeploy/internal/stackfile"
)

func stripAnsiCodes(t *testing.T, s string) string {
	t.Helper()

	ansi := regexp.MustCompile("\x1b\\[[0-9;]*m")
	return ansi.ReplaceAllString(s, "")
}

func TestRenderEnvOverrides(t *testing.T) {
	assert.Equal(t, "No environment variables for stackfile.\n", RenderEnvOverrides(nil))

	result := RenderEnvOverrides([]apimodel.EnvVar{{Name: "FOO", Value: "bar=baz"}, {Name: "EMPTY"}})
	assert.Equal(t, "Environment variables for stackfile:\n\n  FOO: bar=baz\n  EMPTY: \n", result)
}

func TestRenderStages(t *testing.T) {
	assert.Equal(t, "Getting auth token...", stripAnsiCodes(t, RenderStageStarted("Getting auth token")))
	assert.Equal(t, " done\n", stripAnsiCodes(t, RenderStageDone()))
	assert.Equal(t, " failed\n", stripAnsiCodes(t, RenderStageFailed()))
	assert.Equal(t, "\nRequest to update stack finished with HTTP 200\n", RenderUpdateStatus(200))
}

func TestRenderJSON(t *testing.T) {
	t.Run("indents with four spaces", func(t *testing.T) {
		result := RenderJSON([]byte(`{"Id":3,"Name":"shop"}`))
		assert.Equal(t, "\n{\n    \"Id\": 3,\n    \"Name\": \"shop\"\n}\n", result)
	})

	t.Run("non json body is printed raw", func(t *testing.T) {
		assert.Equal(t, "Bad Gateway\n", RenderJSON([]byte("Bad Gateway")))
	})

	t.Run("empty body", func(t *testing.T) {
		assert.Equal(t, "", RenderJSON(nil))
	})
}

func TestRenderDeploymentSummary(t *testing.T) {
	result, err := RenderDeploymentSummary(&apimodel.DeploymentSummary{
		Stack:         "shop",
		Service:       "web",
		PreviousImage: " shop:1.0",
		NewImage:      "shop:2.0",
		StatusCode:    200,
	})
	require.NoError(t, err)
	assert.Equal(t, "\nUpdated service web:\n  from: shop:1.0\n    to: shop:2.0\n", stripAnsiCodes(t, result))

	result, err = RenderDeploymentSummary(&apimodel.DeploymentSummary{
		Stack:         "shop",
		Service:       "web",
		PreviousImage: "shop:1.0",
		NewImage:      "shop:2.0",
		DryRun:        true,
	})
	require.NoError(t, err)
	assert.Contains(t, stripAnsiCodes(t, result), "Service web would be updated (dry run, stack shop left untouched):")

	_, err = RenderDeploymentSummary(nil)
	assert.Error(t, err)
}

func TestRenderDiff(t *testing.T) {
	before := "services:\n  web:\n    image: shop:1.0\n"
	after := "services:\n  web:\n    image: shop:2.0\n"

	result, err := RenderDiff("shop", before, after)
	require.NoError(t, err)
	result = stripAnsiCodes(t, result)

	assert.Contains(t, result, "--- shop (current)")
	assert.Contains(t, result, "+++ shop (updated)")
	assert.Contains(t, result, "-    image: shop:1.0")
	assert.Contains(t, result, "+    image: shop:2.0")
	assert.Contains(t, result, "   web:")

	unchanged, err := RenderDiff("shop", before, before)
	require.NoError(t, err)
	assert.Equal(t, "No changes.\n", stripAnsiCodes(t, unchanged))
}

func TestRenderStacks(t *testing.T) {
	stacks := []apimodel.Stack{
		{ID: 3, Name: "shop", EndpointID: 2, Env: []apimodel.EnvVar{{Name: "TZ", Value: "UTC"}}},
		{ID: 7, Name: "blog", EndpointID: 2},
		{ID: 9, Name: "wiki", EndpointID: 4},
	}

	result, err := RenderStacks(stacks, 2)
	require.NoError(t, err)
	result = stripAnsiCodes(t, result)

	assert.Contains(t, result, "shop")
	assert.Contains(t, result, "blog")
	assert.NotContains(t, result, "wiki")
	assert.Contains(t, result, "TZ")
	assert.Contains(t, result, "Summary: Showing 2 of 3 total stacks (use --max-results 3 to see all)")

	empty, err := RenderStacks(nil, 10)
	require.NoError(t, err)
	assert.Equal(t, "No stacks found.\n", stripAnsiCodes(t, empty))
}

func TestRenderErrorMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name: "status error with api message",
			err: &apimodel.StatusError{
				Operation:  apimodel.OperationAuthenticate,
				StatusCode: 422,
				Response:   &apimodel.ErrorResponse{Message: "Invalid credentials", Details: "Unauthorized"},
			},
			expected: "HTTP 422 error while trying to authenticate\n  Invalid credentials: Unauthorized\n",
		},
		{
			name:     "wrapped stack not found",
			err:      fmt.Errorf("lookup: %w", &apimodel.StackNotFoundError{StackName: "shop"}),
			expected: "can't find stack \"shop\" in Portainer\n",
		},
		{
			name:     "service not found",
			err:      &stackfile.ServiceNotFoundError{Service: "web"},
			expected: "Service web definition was not found in stack yaml.\n",
		},
		{
			name:     "image key missing",
			err:      &stackfile.ImageKeyMissingError{Service: "web", Line: 3},
			expected: "First line of service web definition was not `image` key. Can't proceed with update.\n",
		},
		{
			name:     "update rejected",
			err:      &apimodel.UpdateRejectedError{StackName: "shop", StatusCode: 500, Response: &apimodel.ErrorResponse{Message: "Failed to deploy"}},
			expected: "Deployment failed\n  Failed to deploy\n",
		},
		{
			name:     "any other error",
			err:      errors.New("boom"),
			expected: "boom\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, stripAnsiCodes(t, RenderErrorMessage(tt.err)))
		})
	}
}
