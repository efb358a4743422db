package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"mediatag/internal/history"
	"mediatag/internal/media/toolexec"
	"mediatag/internal/preflight"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Report tool, directory, and ledger health",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			defer ctx.close()
			cfg := ctx.configValue()
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			runCtx := ctx.runContext(cmd)

			var lines []string
			lines = append(lines, renderSectionHeader("Configuration", colorize)...)
			configMessage := ctx.configPath
			if !ctx.configExists {
				configMessage += " (not found, using defaults)"
			}
			lines = append(lines,
				renderStatusLine("Config", passKind(ctx.configExists, statusWarn), configMessage, colorize),
				renderStatusLine("Verify policy", statusInfo, fmt.Sprintf("%s, discrepancy %d", cfg.Verify.Mode, cfg.Verify.Discrepancy), colorize),
			)

			lines = append(lines, "")
			lines = append(lines, renderSectionHeader("Tools", colorize)...)
			exec := ctx.executor()
			tools := []toolexec.Tool{toolexec.Transform, toolexec.Inspection}
			for i, status := range preflight.CheckSystemDeps(cfg) {
				if !status.Available {
					lines = append(lines, renderStatusLine(status.Name, statusError, status.Detail, colorize))
					continue
				}
				version := preflight.CheckToolVersion(runCtx, exec, tools[i])
				message := status.Path
				if version.Passed {
					message = fmt.Sprintf("%s (%s)", version.Detail, status.Path)
				}
				lines = append(lines, renderStatusLine(status.Name, passKind(version.Passed, statusWarn), message, colorize))
			}

			lines = append(lines, "")
			lines = append(lines, renderSectionHeader("Directories", colorize)...)
			for _, result := range preflight.RunAll(cfg) {
				lines = append(lines, renderStatusLine(result.Name, passKind(result.Passed, statusError), result.Detail, colorize))
			}

			lines = append(lines, "")
			lines = append(lines, renderSectionHeader("History", colorize)...)
			if store := ctx.historyStore(); store == nil {
				lines = append(lines, renderStatusLine("Ledger", statusError, "unavailable", colorize))
			} else if counts, err := store.Counts(runCtx); err != nil {
				lines = append(lines, renderStatusLine("Ledger", statusError, err.Error(), colorize))
			} else {
				lines = append(lines,
					renderStatusLine("Ledger", statusOK, store.Path(), colorize),
					renderStatusLine("Succeeded", statusInfo, fmt.Sprint(counts[history.StatusSucceeded]), colorize),
					renderStatusLine("Failed", passKind(counts[history.StatusFailed] == 0, statusWarn), fmt.Sprint(counts[history.StatusFailed]), colorize),
				)
			}

			fmt.Fprintln(out, strings.Join(lines, "\n"))
			return nil
		},
	}
}
