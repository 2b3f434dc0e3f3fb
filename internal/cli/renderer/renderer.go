// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package renderer

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/pmezard/go-difflib/difflib"

	apimodel "github.com/platform-engineering-labs/stackdeploy/internal/api/model"
	"github.com/platform-engineering-labs/stackdeploy/internal/cli/display"
)

func RenderEnvOverrides(env []apimodel.EnvVar) string {
	if len(env) == 0 {
		return "No environment variables for stackfile.\n"
	}

	var sb strings.Builder
	sb.WriteString("Environment variables for stackfile:\n\n")
	for _, e := range env {
		sb.WriteString(fmt.Sprintf("  %s: %s\n", e.Name, e.Value))
	}

	return sb.String()
}

func RenderStageStarted(stage string) string {
	return display.Yellow(stage + "...")
}

func RenderStageDone() string {
	return display.Green(" done") + "\n"
}

func RenderStageFailed() string {
	return display.Red(" failed") + "\n"
}

func RenderUpdateStatus(statusCode int) string {
	return fmt.Sprintf("\nRequest to update stack finished with HTTP %d\n", statusCode)
}

// RenderJSON indents a JSON document with four spaces. Bodies that are not
// JSON are returned as they are.
func RenderJSON(body []byte) string {
	if len(bytes.TrimSpace(body)) == 0 {
		return ""
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, body, "", "    "); err != nil {
		return string(body) + "\n"
	}

	return "\n" + buf.String() + "\n"
}

func RenderDeploymentSummary(s *apimodel.DeploymentSummary) (string, error) {
	if s == nil {
		return "", fmt.Errorf("no deployment summary")
	}

	header := fmt.Sprintf("Updated service %s:", s.Service)
	if s.DryRun {
		header = fmt.Sprintf("Service %s would be updated (dry run, stack %s left untouched):", s.Service, s.Stack)
	}

	return display.Green(fmt.Sprintf("\n%s\n  from: %s\n    to: %s\n",
		header,
		strings.TrimSpace(s.PreviousImage),
		strings.TrimSpace(s.NewImage))), nil
}

// RenderDiff renders a unified diff of a stack file before and after patching,
// additions in green and removals in red.
func RenderDiff(name, before, after string) (string, error) {
	ud := difflib.UnifiedDiff{
		A:        difflib.SplitLines(before),
		B:        difflib.SplitLines(after),
		FromFile: name + " (current)",
		ToFile:   name + " (updated)",
		Context:  3,
	}

	text, err := difflib.GetUnifiedDiffString(ud)
	if err != nil {
		return "", fmt.Errorf("error rendering diff: %v", err)
	}

	if text == "" {
		return display.Grey("No changes.\n"), nil
	}

	lines := strings.SplitAfter(text, "\n")
	for i, line := range lines {
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
			lines[i] = display.Gold(line)
		case strings.HasPrefix(line, "+"):
			lines[i] = display.Green(line)
		case strings.HasPrefix(line, "-"):
			lines[i] = display.Red(line)
		case strings.HasPrefix(line, "@@"):
			lines[i] = display.LightBlue(line)
		}
	}

	return strings.Join(lines, ""), nil
}

// RenderStacks renders the stacks in a table format
func RenderStacks(stacks []apimodel.Stack, maxRows int) (string, error) {
	if len(stacks) == 0 {
		return display.Gold("No stacks found.\n"), nil
	}

	var buf strings.Builder
	table := tablewriter.NewTable(&buf,
		tablewriter.WithRowAutoWrap(tw.WrapBreak),
		tablewriter.WithHeaderAutoFormat(tw.Off),
		tablewriter.WithRenderer(renderer.NewBlueprint(tw.Rendition{
			Settings: tw.Settings{Separators: tw.Separators{BetweenRows: tw.On, ShowHeader: tw.On}},
		})))
	table.Header(display.LightBlue("Name"), "ID", "Endpoint", "Env")

	effectiveMaxRows := len(stacks)
	if maxRows > 0 && maxRows < len(stacks) {
		effectiveMaxRows = maxRows
	}

	data := make([][]string, effectiveMaxRows)
	for i := 0; i < effectiveMaxRows; i++ {
		stack := stacks[i]

		names := make([]string, 0, len(stack.Env))
		for _, e := range stack.Env {
			names = append(names, e.Name)
		}

		data[i] = []string{
			display.LightBlue(stack.Name),
			strconv.Itoa(stack.ID),
			strconv.Itoa(stack.EndpointID),
			strings.Join(names, ", "),
		}
	}

	if err := table.Bulk(data); err != nil {
		return "", fmt.Errorf("error rendering stacks: %v", err)
	}

	if err := table.Render(); err != nil {
		return "", fmt.Errorf("error rendering stacks: %v", err)
	}

	summary := fmt.Sprintf("\n%s Showing %d of %d total stacks",
		display.Gold("Summary:"),
		effectiveMaxRows,
		len(stacks))

	if maxRows > 0 && len(stacks) > maxRows {
		summary += fmt.Sprintf(" (use --max-results %d to see all)", len(stacks))
	}

	return buf.String() + summary + "\n", nil
}
