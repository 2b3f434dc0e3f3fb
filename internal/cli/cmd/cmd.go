// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package cmd

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/platform-engineering-labs/stackdeploy/internal/cli/app"
	"github.com/platform-engineering-labs/stackdeploy/internal/cli/config"
	"github.com/platform-engineering-labs/stackdeploy/internal/cli/display"
	"github.com/platform-engineering-labs/stackdeploy/internal/logging"
)

type contextKey string

const appContextKey contextKey = "app"

var RootCmdUsageTemplate = display.Grey("Usage: ") + display.Green("{{.CommandPath}} [OPTIONS]{{if .HasAvailableSubCommands}} [COMMAND]{{end}}\n") +
	"{{if .HasAvailableSubCommands}}\n" + display.Gold("Commands:") + "{{$types := typeMap .Commands}}" +
	"{{$first := true}}{{range $type, $cmds := $types}}" +
	"{{if $first}}{{$first = false}}{{else}}\n{{end}}\n  " + display.Gold("{{$type}}:") +
	"{{range $cmd := $cmds}}\n    " + display.Green("{{rpad $cmd.Name $cmd.NamePadding}}") + "     {{$cmd.Short}}" +
	"{{if (index $cmd.Annotations \"examples\")}}\n                   " +
	display.Grey("  {{formatExamples (index $cmd.Annotations \"examples\") $cmd}}") + "{{end}}" +
	"{{end}}{{end}}\n{{end}}" +
	"{{if .HasAvailableLocalFlags}}\n" + display.Gold("Options:\n") +
	"{{range .LocalFlags | optionsUsage}}{{.}}\n{{end}}" +
	"{{end}}" +
	display.Links("Source", "") +
	"\n"

var SimpleCmdUsageTemplate = display.Grey("Usage: ") + display.Green("{{.CommandPath}}{{if .HasAvailableLocalFlags}} [OPTIONS]{{end}}") +
	display.Green("{{if index .Annotations \"args\"}} {{index .Annotations \"args\"}}{{end}}") + "\n" +
	"{{if index .Annotations \"examples\"}}\n" + display.Gold("Example:\n") +
	display.Grey("  {{formatExamples (index .Annotations \"examples\") .}}\n") + "{{end}}" +
	"{{if .HasAvailableLocalFlags}}\n" + display.Gold("Options:\n") +
	"{{range .LocalFlags | optionsUsage}}{{.}}\n{{end}}" +
	"{{end}}" +
	"{{if index .Annotations \"env\"}}\n" + display.Gold("Environment:\n") +
	"{{index .Annotations \"env\"}}\n{{end}}" +
	display.Links("Source", "") +
	"\n"

// AppFromContext returns the App installed by InitCommandWithContext.
func AppFromContext(ctx context.Context) (*app.App, error) {
	if ctx == nil {
		return nil, AppNotFoundError{}
	}

	if a, ok := ctx.Value(appContextKey).(*app.App); ok {
		return a, nil
	}

	return nil, AppNotFoundError{}
}

func WithApp(ctx context.Context, a *app.App) context.Context {
	return context.WithValue(ctx, appContextKey, a)
}

func InitCommandWithContext(ctx context.Context, cmd *cobra.Command) *cobra.Command {
	cmd.SetContext(WithApp(ctx, app.NewApp()))
	return cmd
}

// SetupClientLogging points slog at the client log file. The hidden --debug
// flag additionally mirrors the records to stderr.
func SetupClientLogging(command *cobra.Command) {
	level := logging.NoLoggingLevel
	if debug, _ := command.Flags().GetBool("debug"); debug {
		level = slog.LevelDebug
	}

	logging.SetupClientLogging(config.Config.LogFilePath(), level)
}
