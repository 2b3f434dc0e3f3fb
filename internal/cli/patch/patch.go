// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package patch

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	apimodel "github.com/platform-engineering-labs/stackdeploy/internal/api/model"
	"github.com/platform-engineering-labs/stackdeploy/internal/cli/cmd"
	"github.com/platform-engineering-labs/stackdeploy/internal/cli/config"
	"github.com/platform-engineering-labs/stackdeploy/internal/cli/printer"
	"github.com/platform-engineering-labs/stackdeploy/internal/cli/renderer"
	"github.com/platform-engineering-labs/stackdeploy/internal/stackfile"
	"github.com/platform-engineering-labs/stackdeploy/internal/util"
)

type PatchOptions struct {
	File        string
	ServiceName string
	NewImage    string
	Write       bool
}

func validatePatchOptions(opts *PatchOptions) error {
	if opts.File == "" {
		return cmd.FlagErrorf("stack file is required")
	}
	if err := stackfile.ValidateImage(opts.NewImage); err != nil {
		return cmd.FlagErrorf("invalid new image %q: %v", opts.NewImage, err)
	}

	return nil
}

func PatchCmd() *cobra.Command {
	command := &cobra.Command{
		Use:   "patch",
		Short: "Replace the image of a service in a local stack file",
		PreRun: func(command *cobra.Command, args []string) {
			cmd.SetupClientLogging(command)
		},
		RunE: func(command *cobra.Command, args []string) error {
			configFile, _ := command.Flags().GetString("config")
			loader, err := config.NewLoader(command.Flags(), configFile)
			if err != nil {
				return cmd.FlagErrorWrap(err)
			}
			if missing := loader.Missing(config.KeyServiceName, config.KeyNewImage); len(missing) > 0 {
				return cmd.FlagErrorf("missing required options: %s", strings.Join(missing, ", "))
			}

			opts := &PatchOptions{
				ServiceName: loader.String(config.KeyServiceName),
				NewImage:    loader.String(config.KeyNewImage),
			}
			file, _ := command.Flags().GetString("file")
			opts.File = util.ExpandHomePath(strings.TrimSpace(file))
			opts.Write, _ = command.Flags().GetBool("write")

			return runPatch(command, opts)
		},
		Annotations: map[string]string{
			"type":     "Tooling",
			"examples": "{{.Name}} {{.Command}} --file docker-compose.yml --service-name web --new-image shop/web:1.4.2 --write",
			"env":      config.EnvUsage(config.KeyServiceName, config.KeyNewImage),
		},
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	command.SetUsageTemplate(cmd.SimpleCmdUsageTemplate)

	command.Flags().StringP("file", "f", "", "Stack file to patch")
	command.Flags().String(config.KeyServiceName, "", "Service whose image is replaced")
	command.Flags().String(config.KeyNewImage, "", "Image reference to set, e.g. shop/web:1.4.2")
	command.Flags().Bool("write", false, "Write the result back to the file instead of printing a diff")
	command.Flags().String("config", "", "Path to config file")

	return command
}

func runPatch(command *cobra.Command, opts *PatchOptions) error {
	if err := validatePatchOptions(opts); err != nil {
		return err
	}

	info, err := os.Stat(opts.File)
	if err != nil {
		return fmt.Errorf("failed to read stack file: %w", err)
	}

	before, err := os.ReadFile(opts.File)
	if err != nil {
		return fmt.Errorf("failed to read stack file: %w", err)
	}

	after, previous, err := stackfile.FindAndReplaceImage(string(before), opts.ServiceName, opts.NewImage)
	if err != nil {
		return err
	}

	w := command.OutOrStdout()
	summary := &apimodel.DeploymentSummary{
		Stack:         opts.File,
		Service:       opts.ServiceName,
		PreviousImage: previous,
		NewImage:      opts.NewImage,
		DryRun:        !opts.Write,
	}

	if !opts.Write {
		diff, err := renderer.RenderDiff(opts.File, string(before), after)
		if err != nil {
			return err
		}
		fmt.Fprint(w, diff)
	} else if err := os.WriteFile(opts.File, []byte(after), info.Mode().Perm()); err != nil {
		return fmt.Errorf("failed to write stack file: %w", err)
	}

	p := printer.NewHumanReadablePrinter[apimodel.DeploymentSummary](w)
	return p.Print(summary, printer.PrintOptions{})
}
