// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/platform-engineering-labs/stackdeploy"
	"github.com/platform-engineering-labs/stackdeploy/internal/cli/cmd"
	"github.com/platform-engineering-labs/stackdeploy/internal/cli/config"
	"github.com/platform-engineering-labs/stackdeploy/internal/cli/deploy"
	"github.com/platform-engineering-labs/stackdeploy/internal/cli/display"
	"github.com/platform-engineering-labs/stackdeploy/internal/cli/patch"
	"github.com/platform-engineering-labs/stackdeploy/internal/cli/renderer"
	"github.com/platform-engineering-labs/stackdeploy/internal/cli/stacks"
)

func longDescription() string {
	return display.Tool + ": " + display.Green("Roll a new image out to a service of a Portainer stack")
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     display.Tool,
		Short:   display.Tool + " CLI",
		Long:    longDescription(),
		Version: stackdeploy.Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Redirect slog output to discard to prevent it from appearing on screen
			slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
		},
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	hp := rootCmd.HelpFunc()
	longestFlagName := 0
	rootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		display.PrintBanner()
		hp(cmd, args)
	})

	rootCmd.SetHelpCommand(&cobra.Command{
		Hidden: true,
	})

	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return cmd.FlagErrorWrap(err)
	})

	cobra.AddTemplateFunc("typeMap", func(cmds []*cobra.Command) map[string][]*cobra.Command {
		m := make(map[string][]*cobra.Command)
		for _, c := range cmds {
			if c.IsAvailableCommand() {
				t := c.Annotations["type"]
				if t == "" {
					t = "Tooling"
				}

				m[t] = append(m[t], c)
			}
		}
		return m
	})

	cobra.AddTemplateFunc("formatExamples", func(examples string, cmd *cobra.Command) string {
		cliName := cmd.Root().Name()
		cmdName := cmd.Name()
		replaced := strings.ReplaceAll(examples, "{{.Name}}", cliName)
		return strings.ReplaceAll(replaced, "{{.Command}}", cmdName)
	})

	cobra.AddTemplateFunc("optionsUsage", func(f *pflag.FlagSet) []string {
		var usage []string

		f.VisitAll(func(flag *pflag.Flag) {
			length := len(flag.Name)
			if flag.Shorthand != "" {
				length += 6
			}

			if length > longestFlagName {
				longestFlagName = length
			}
		})

		longestFlagName += 10

		f.VisitAll(func(flag *pflag.Flag) {
			if flag.Hidden {
				return
			}

			s := fmt.Sprintf("      --%s ", flag.Name)
			if flag.Shorthand != "" {
				s = fmt.Sprintf("  -%s, --%s ", flag.Shorthand, flag.Name)
			}

			s = fmt.Sprintf("%-*s%s", longestFlagName, s, flag.Usage)
			if flag.DefValue != "" &&
				flag.DefValue != "[]" &&
				flag.DefValue != "false" &&
				flag.Name != "help" &&
				flag.Name != "version" {
				s += display.Grey(fmt.Sprintf(" [default: %q]", flag.DefValue))
			}

			usage = append(usage, s)
		})
		return usage
	})

	rootCmd.SetUsageTemplate(cmd.RootCmdUsageTemplate)

	rootCmd.AddCommand(deploy.DeployCmd())
	rootCmd.AddCommand(stacks.StacksCmd())
	rootCmd.AddCommand(patch.PatchCmd())

	rootCmd.PersistentFlags().BoolP("help", "h", false, "Show help for "+rootCmd.Use)
	for _, cmd := range rootCmd.Commands() {
		cmd.PersistentFlags().BoolP("help", "h", false, fmt.Sprintf("Show help for %s command", cmd.Name()))
	}

	// -v belongs to deploy --verbose
	rootCmd.PersistentFlags().Bool("version", false, "Show "+rootCmd.Use+" version information")
	rootCmd.PersistentFlags().Bool("debug", false, "Mirror the client log to stderr")
	_ = rootCmd.PersistentFlags().MarkHidden("debug")
	rootCmd.SetVersionTemplate(fmt.Sprintf("stackdeploy version: %s\ngo version: %s\n", stackdeploy.Version, runtime.Version()))

	return rootCmd
}

// Execute runs the command line in args and returns the error of the command
// that ran. Flag errors print the usage of that command first.
func Execute(ctx context.Context, args []string) error {
	rootCmd := newRootCmd()
	rootCmd.SetArgs(args)

	command, err := cmd.InitCommandWithContext(ctx, rootCmd).ExecuteC()
	if err != nil {
		var flagErr *cmd.FlagError
		if errors.As(err, &flagErr) && command != nil {
			fmt.Print(command.UsageString() + "\n")
		}
	}

	return err
}

func Start() {
	err := config.Config.EnsureConfigDirectory()
	if err != nil {
		fmt.Println(display.Red("Error: " + err.Error()))
		os.Exit(1)
	}

	err = config.Config.EnsureDataDirectory()
	if err != nil {
		fmt.Println(display.Red("Error: " + err.Error()))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = Execute(ctx, os.Args[1:])
	stop()

	if err != nil {
		fmt.Print(renderer.RenderErrorMessage(err))
		os.Exit(1)
	}
}
