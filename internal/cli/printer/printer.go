// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package printer

import (
	"bytes"
	"fmt"
	"io"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	apimodel "github.com/platform-engineering-labs/stackdeploy/internal/api/model"
	"github.com/platform-engineering-labs/stackdeploy/internal/cli/renderer"
)

type Consumer string

const (
	ConsumerHuman   Consumer = "human"
	ConsumerMachine Consumer = "machine"
)

type MachineReadablePrinter[T any] struct {
	w      io.Writer
	format string
}

func NewMachineReadablePrinter[T any](w io.Writer, format string) *MachineReadablePrinter[T] {
	return &MachineReadablePrinter[T]{
		w:      w,
		format: format,
	}
}

func (p *MachineReadablePrinter[T]) Print(v *T) error {
	var data []byte
	var err error
	switch p.format {
	case "json":
		data, err = json.Marshal(v)
		if err != nil {
			return fmt.Errorf("json marshal: %w", err)
		}
	case "yaml":
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err = enc.Encode(v); err != nil {
			return fmt.Errorf("yaml encode: %w", err)
		}
		if err = enc.Close(); err != nil {
			return fmt.Errorf("yaml encode: %w", err)
		}
		data = buf.Bytes()
	default:
		return fmt.Errorf("unsupported format: %s", p.format)
	}
	if !bytes.HasSuffix(data, []byte("\n")) {
		data = append(data, '\n')
	}
	_, err = p.w.Write(data)
	if err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

type HumanReadablePrinter[T any] struct {
	w io.Writer
}

func NewHumanReadablePrinter[T any](w io.Writer) *HumanReadablePrinter[T] {
	return &HumanReadablePrinter[T]{
		w: w,
	}
}

type PrintOptions struct {
	MaxResults int
}

func (p *HumanReadablePrinter[T]) Print(v *T, opts PrintOptions) error {
	var output string
	var err error

	switch v := any(v).(type) {
	case *apimodel.DeploymentSummary:
		output, err = renderer.RenderDeploymentSummary(v)
		if err != nil {
			return fmt.Errorf("render deployment summary: %w", err)
		}
	case *[]apimodel.Stack:
		output, err = renderer.RenderStacks(*v, opts.MaxResults)
		if err != nil {
			return fmt.Errorf("render stacks: %w", err)
		}
	default:
		return fmt.Errorf("unsupported type: %T", v)
	}

	_, err = p.w.Write([]byte(output))
	if err != nil {
		return fmt.Errorf("write output: %w", err)
	}

	return nil
}
