// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

//go:build unit

package printer

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	apimodel "github.com/platform-engineering-labs/stackdeploy/internal/api/model"
)

func TestMachineReadablePrinter(t *testing.T) {
	summary := apimodel.DeploymentSummary{
		Stack:         "shop",
		Service:       "web",
		PreviousImage: "shop:1.0",
		NewImage:      "shop:2.0",
		StatusCode:    200,
	}

	t.Run("prints json objects", func(t *testing.T) {
		buf := bytes.NewBuffer(nil)
		printer := NewMachineReadablePrinter[apimodel.DeploymentSummary](buf, "json")
		err := printer.Print(&summary)
		assert.NoError(t, err)
		expected := `{"Stack":"shop","Service":"web","PreviousImage":"shop:1.0","NewImage":"shop:2.0","StatusCode":200}` + "\n"
		assert.Equal(t, expected, buf.String())
	})

	t.Run("prints yaml", func(t *testing.T) {
		buf := bytes.NewBuffer(nil)
		printer := NewMachineReadablePrinter[apimodel.DeploymentSummary](buf, "yaml")
		err := printer.Print(&summary)
		assert.NoError(t, err)

		var result apimodel.DeploymentSummary
		err = yaml.Unmarshal(buf.Bytes(), &result)
		assert.NoError(t, err)
		assert.Equal(t, summary, result)
		assert.Contains(t, buf.String(), "previousImage: shop:1.0")
		assert.True(t, bytes.HasSuffix(buf.Bytes(), []byte("\n")))
	})

	t.Run("prints stack lists", func(t *testing.T) {
		buf := bytes.NewBuffer(nil)
		stacks := []apimodel.Stack{{ID: 3, Name: "shop", EndpointID: 2}}
		printer := NewMachineReadablePrinter[[]apimodel.Stack](buf, "json")
		require.NoError(t, printer.Print(&stacks))
		assert.Equal(t, `[{"Id":3,"Name":"shop","EndpointId":2}]`+"\n", buf.String())
	})

	t.Run("rejects unknown formats", func(t *testing.T) {
		printer := NewMachineReadablePrinter[apimodel.DeploymentSummary](bytes.NewBuffer(nil), "toml")
		assert.ErrorContains(t, printer.Print(&summary), "unsupported format: toml")
	})
}

func TestHumanReadablePrinter(t *testing.T) {
	t.Run("prints deployment summaries", func(t *testing.T) {
		buf := bytes.NewBuffer(nil)
		printer := NewHumanReadablePrinter[apimodel.DeploymentSummary](buf)
		err := printer.Print(&apimodel.DeploymentSummary{Service: "web", PreviousImage: "shop:1.0", NewImage: "shop:2.0"}, PrintOptions{})
		require.NoError(t, err)
		assert.Contains(t, buf.String(), "Updated service web:")
	})

	t.Run("prints stacks", func(t *testing.T) {
		buf := bytes.NewBuffer(nil)
		stacks := []apimodel.Stack{{ID: 3, Name: "shop", EndpointID: 2}}
		printer := NewHumanReadablePrinter[[]apimodel.Stack](buf)
		require.NoError(t, printer.Print(&stacks, PrintOptions{MaxResults: 10}))
		assert.Contains(t, buf.String(), "shop")
	})

	t.Run("rejects other types", func(t *testing.T) {
		printer := NewHumanReadablePrinter[string](bytes.NewBuffer(nil))
		s := "nope"
		assert.ErrorContains(t, printer.Print(&s, PrintOptions{}), "unsupported type: *string")
	})
}
