// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package deploy

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	apimodel "github.com/platform-engineering-labs/stackdeploy/internal/api/model"
	"github.com/platform-engineering-labs/stackdeploy/internal/cli/app"
	"github.com/platform-engineering-labs/stackdeploy/internal/cli/cmd"
	"github.com/platform-engineering-labs/stackdeploy/internal/cli/config"
	"github.com/platform-engineering-labs/stackdeploy/internal/cli/printer"
	"github.com/platform-engineering-labs/stackdeploy/internal/cli/renderer"
	"github.com/platform-engineering-labs/stackdeploy/internal/stackfile"
)

var requiredKeys = []string{
	config.KeyURL,
	config.KeyUsername,
	config.KeyPassword,
	config.KeyStackName,
	config.KeyServiceName,
	config.KeyNewImage,
}

type DeployOptions struct {
	Deploy         config.Deploy
	EnvVars        []string
	OutputConsumer printer.Consumer
	OutputSchema   string
}

func validateDeployOptions(opts *DeployOptions) error {
	if opts.Deploy.StackName == "" {
		return cmd.FlagErrorf("stack name must not be blank")
	}
	if opts.Deploy.ServiceName == "" {
		return cmd.FlagErrorf("service name must not be blank")
	}
	if strings.ContainsAny(opts.Deploy.ServiceName, " \t:") {
		return cmd.FlagErrorf("invalid service name %q", opts.Deploy.ServiceName)
	}
	if err := stackfile.ValidateImage(opts.Deploy.NewImage); err != nil {
		return cmd.FlagErrorf("invalid new image %q: %v", opts.Deploy.NewImage, err)
	}

	env, err := apimodel.ParseEnvVars(opts.EnvVars)
	if err != nil {
		return cmd.FlagErrorWrap(err)
	}
	opts.Deploy.Env = env

	if opts.OutputConsumer != printer.ConsumerHuman && opts.OutputConsumer != printer.ConsumerMachine {
		return cmd.FlagErrorf("output consumer must be either 'human' or 'machine'")
	}
	if opts.OutputConsumer == printer.ConsumerMachine {
		if opts.OutputSchema != "json" && opts.OutputSchema != "yaml" {
			return cmd.FlagErrorf("output schema must be either 'json' or 'yaml' for machine consumer")
		}
	}

	return nil
}

func DeployCmd() *cobra.Command {
	command := &cobra.Command{
		Use:   "deploy",
		Short: "Update the image of a service in a Portainer stack and redeploy it",
		PreRun: func(command *cobra.Command, args []string) {
			cmd.SetupClientLogging(command)
		},
		RunE: func(command *cobra.Command, args []string) error {
			opts, err := optionsFromFlags(command)
			if err != nil {
				return err
			}

			app, err := cmd.AppFromContext(command.Context())
			if err != nil {
				return err
			}

			return runDeploy(command, app, opts)
		},
		Annotations: map[string]string{
			"type":     "Deployment",
			"examples": "{{.Name}} {{.Command}} --stack-name shop --service-name web --new-image registry.example.com/shop/web:1.4.2 -e RELEASE=1.4.2",
			"env":      config.EnvUsage(requiredKeys...),
		},
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	command.SetUsageTemplate(cmd.SimpleCmdUsageTemplate)

	config.AddConnectionFlags(command.Flags())
	command.Flags().String(config.KeyStackName, "", "Name of the Portainer stack to update")
	command.Flags().String(config.KeyServiceName, "", "Service in the stack whose image is replaced")
	command.Flags().String(config.KeyNewImage, "", "Image reference to deploy, e.g. shop/web:1.4.2")
	command.Flags().StringArrayP("env-var", "e", nil, "Stack environment variable as KEY=VALUE (repeatable)")
	command.Flags().BoolP("verbose", "v", false, "Print the response of the stack update")
	command.Flags().Bool("dry-run", false, "Show the patched stack file without updating the stack")
	command.Flags().String("output-consumer", string(printer.ConsumerHuman), "Consumer of the command output (human | machine)")
	command.Flags().String("output-schema", "json", "The schema to use for the machine output (json | yaml)")
	command.Flags().String("config", "", "Path to config file")

	return command
}

func optionsFromFlags(command *cobra.Command) (*DeployOptions, error) {
	configFile, _ := command.Flags().GetString("config")
	loader, err := config.NewLoader(command.Flags(), configFile)
	if err != nil {
		return nil, cmd.FlagErrorWrap(err)
	}

	if missing := loader.Missing(requiredKeys...); len(missing) > 0 {
		return nil, cmd.FlagErrorf("missing required options: %s", strings.Join(missing, ", "))
	}

	opts := &DeployOptions{
		Deploy: config.Deploy{
			Connection:  loader.Connection(),
			StackName:   loader.String(config.KeyStackName),
			ServiceName: loader.String(config.KeyServiceName),
			NewImage:    loader.String(config.KeyNewImage),
		},
	}
	opts.EnvVars, _ = command.Flags().GetStringArray("env-var")
	opts.Deploy.Verbose, _ = command.Flags().GetBool("verbose")
	opts.Deploy.DryRun, _ = command.Flags().GetBool("dry-run")
	consumer, _ := command.Flags().GetString("output-consumer")
	opts.OutputConsumer = printer.Consumer(consumer)
	opts.OutputSchema, _ = command.Flags().GetString("output-schema")

	if err := validateDeployOptions(opts); err != nil {
		return nil, err
	}

	return opts, nil
}

func runDeploy(command *cobra.Command, app *app.App, opts *DeployOptions) error {
	if opts.OutputConsumer == printer.ConsumerMachine {
		return runDeployForMachines(command, app, opts)
	}
	return runDeployForHumans(command, app, opts)
}

func runDeployForMachines(command *cobra.Command, a *app.App, opts *DeployOptions) error {
	deployment, err := a.Deploy(command.Context(), opts.Deploy, app.NopReporter)
	if err != nil {
		return err
	}

	p := printer.NewMachineReadablePrinter[apimodel.DeploymentSummary](command.OutOrStdout(), opts.OutputSchema)
	return p.Print(&deployment.Summary)
}

func runDeployForHumans(command *cobra.Command, a *app.App, opts *DeployOptions) error {
	w := command.OutOrStdout()

	deployment, err := a.Deploy(command.Context(), opts.Deploy, &consoleReporter{w: w})
	if deployment != nil && deployment.Response != nil {
		fmt.Fprint(w, renderer.RenderUpdateStatus(deployment.Response.StatusCode))
		if opts.Deploy.Verbose {
			fmt.Fprint(w, renderer.RenderJSON(deployment.Response.Body))
		}
	}
	if err != nil {
		return err
	}

	if opts.Deploy.DryRun {
		diff, err := renderer.RenderDiff(opts.Deploy.StackName, deployment.Before, deployment.After)
		if err != nil {
			return err
		}
		fmt.Fprint(w, "\n"+diff)
	}

	p := printer.NewHumanReadablePrinter[apimodel.DeploymentSummary](w)
	return p.Print(&deployment.Summary, printer.PrintOptions{})
}

type consoleReporter struct {
	w io.Writer
}

func (r *consoleReporter) EnvOverrides(env []apimodel.EnvVar) {
	fmt.Fprint(r.w, renderer.RenderEnvOverrides(env)+"\n")
}

func (r *consoleReporter) StageStarted(stage string) {
	fmt.Fprint(r.w, renderer.RenderStageStarted(stage))
}

func (r *consoleReporter) StageDone(string) {
	fmt.Fprint(r.w, renderer.RenderStageDone())
}

func (r *consoleReporter) StageFailed(string, error) {
	fmt.Fprint(r.w, renderer.RenderStageFailed())
}
