package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"pianoclips/internal/deps"
	"pianoclips/internal/preflight"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Report dependency and directory readiness",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			lines := renderSectionHeader("Configuration", colorize)
			lines = append(lines,
				renderStatusLine("Results", statusInfo, cfg.Paths.ResultsDir, colorize),
				renderStatusLine("Keys", statusInfo, fmt.Sprintf("%d..%d", cfg.Keyboard.FirstKey, cfg.Keyboard.LastKey), colorize),
				renderStatusLine("Instrument", statusInfo, cfg.Note.Instrument, colorize),
				renderStatusLine("Speech engine", statusInfo, cfg.Speech.Engine, colorize),
				"",
			)

			lines = append(lines, renderSectionHeader("Dependencies", colorize)...)
			statuses := preflight.CheckSystemDeps(cfg)
			for _, status := range statuses {
				lines = append(lines, renderDependencyLine(status, colorize))
			}
			if err := deps.Err(statuses); err != nil {
				lines = append(lines, renderStatusLine("Summary", statusError, err.Error(), colorize))
			} else {
				lines = append(lines, renderStatusLine("Summary", statusOK, "all required dependencies available", colorize))
			}
			lines = append(lines, "")

			lines = append(lines, renderSectionHeader("Preflight", colorize)...)
			results := preflight.RunAll(cmd.Context(), cfg)
			for _, r := range results {
				kind := statusOK
				if !r.Passed {
					kind = statusError
				}
				lines = append(lines, renderStatusLine(r.Name, kind, r.Detail, colorize))
			}

			fmt.Fprintln(out, strings.Join(lines, "\n"))
			return preflight.Failed(results)
		},
	}
}

func renderDependencyLine(status deps.Status, colorize bool) string {
	switch {
	case status.Available:
		return renderStatusLine(status.Name, statusOK, status.Command, colorize)
	case status.Optional:
		return renderStatusLine(status.Name, statusWarn, status.Detail+" (optional)", colorize)
	default:
		return renderStatusLine(status.Name, statusError, status.Detail, colorize)
	}
}
