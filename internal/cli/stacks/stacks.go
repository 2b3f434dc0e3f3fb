// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package stacks

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	apimodel "github.com/platform-engineering-labs/stackdeploy/internal/api/model"
	"github.com/platform-engineering-labs/stackdeploy/internal/cli/app"
	"github.com/platform-engineering-labs/stackdeploy/internal/cli/cmd"
	"github.com/platform-engineering-labs/stackdeploy/internal/cli/config"
	"github.com/platform-engineering-labs/stackdeploy/internal/cli/printer"
)

type StacksOptions struct {
	Connection     config.Connection
	OutputConsumer printer.Consumer
	OutputSchema   string
	MaxResults     int
}

func validateStacksOptions(opts *StacksOptions) error {
	if opts.MaxResults < 0 {
		return cmd.FlagErrorf("max-results must be 0 (unlimited) or a positive number")
	}
	if opts.OutputConsumer != printer.ConsumerHuman && opts.OutputConsumer != printer.ConsumerMachine {
		return cmd.FlagErrorf("output-consumer must be 'human' or 'machine'")
	}
	if opts.OutputConsumer == printer.ConsumerMachine {
		if opts.OutputSchema != "json" && opts.OutputSchema != "yaml" {
			return cmd.FlagErrorf("output-schema must be 'json' or 'yaml' for machine consumer")
		}
	}

	return nil
}

func StacksCmd() *cobra.Command {
	command := &cobra.Command{
		Use:   "stacks",
		Short: "List the stacks visible to the Portainer user",
		PreRun: func(command *cobra.Command, args []string) {
			cmd.SetupClientLogging(command)
		},
		RunE: func(command *cobra.Command, args []string) error {
			configFile, _ := command.Flags().GetString("config")
			loader, err := config.NewLoader(command.Flags(), configFile)
			if err != nil {
				return cmd.FlagErrorWrap(err)
			}
			if missing := loader.Missing(config.KeyURL, config.KeyUsername, config.KeyPassword); len(missing) > 0 {
				return cmd.FlagErrorf("missing required options: %s", strings.Join(missing, ", "))
			}

			opts := &StacksOptions{Connection: loader.Connection()}
			consumer, _ := command.Flags().GetString("output-consumer")
			opts.OutputConsumer = printer.Consumer(consumer)
			opts.OutputSchema, _ = command.Flags().GetString("output-schema")
			opts.MaxResults, _ = command.Flags().GetInt("max-results")

			app, err := cmd.AppFromContext(command.Context())
			if err != nil {
				return err
			}

			return runStacks(command, app, opts)
		},
		Annotations: map[string]string{
			"type":     "Deployment",
			"examples": "{{.Name}} {{.Command}} --output-consumer machine --output-schema yaml",
			"env":      config.EnvUsage(config.KeyURL, config.KeyUsername, config.KeyPassword),
		},
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	command.SetUsageTemplate(cmd.SimpleCmdUsageTemplate)

	config.AddConnectionFlags(command.Flags())
	command.Flags().String("output-consumer", string(printer.ConsumerHuman), "Consumer of the command output (human | machine)")
	command.Flags().String("output-schema", "json", "The schema to use for the machine output (json | yaml)")
	command.Flags().Int("max-results", 10, "Maximum number of stacks to display in the table (0 = unlimited)")
	command.Flags().String("config", "", "Path to config file")

	return command
}

func runStacks(command *cobra.Command, app *app.App, opts *StacksOptions) error {
	if err := validateStacksOptions(opts); err != nil {
		return err
	}

	stacks, err := app.ListStacks(command.Context(), opts.Connection)
	if err != nil {
		return err
	}

	if opts.OutputConsumer == printer.ConsumerMachine {
		p := printer.NewMachineReadablePrinter[[]apimodel.Stack](command.OutOrStdout(), opts.OutputSchema)
		return p.Print(&stacks)
	}

	if _, err := fmt.Fprintln(command.OutOrStdout()); err != nil {
		return err
	}
	p := printer.NewHumanReadablePrinter[[]apimodel.Stack](command.OutOrStdout())
	return p.Print(&stacks, printer.PrintOptions{MaxResults: opts.MaxResults})
}
