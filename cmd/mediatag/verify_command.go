package main

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"mediatag/internal/history"
	"mediatag/internal/integrity"
)

func newVerifyCommand(ctx *commandContext) *cobra.Command {
	var (
		mode        string
		discrepancy int
	)

	cmd := &cobra.Command{
		Use:   "verify <file>...",
		Short: "Compare decoded frame counts against stream duration",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			defer ctx.close()
			settings := ctx.configValue().Verify
			if cmd.Flags().Changed("mode") {
				settings.Mode = mode
			}
			if cmd.Flags().Changed("discrepancy") {
				settings.Discrepancy = discrepancy
			}
			policy, err := integrity.PolicyFromConfig(settings)
			if err != nil {
				return err
			}

			runCtx := ctx.runContext(cmd)
			verifier := ctx.verifier()
			store := ctx.historyStore()

			rows := make([][]string, 0, len(args))
			failed := 0
			for _, file := range args {
				started := time.Now()
				report := verifier.Inspect(runCtx, file, policy)
				var outcome error
				result := "pass"
				if !report.Passed {
					failed++
					result = "FAIL: " + report.Reason
					outcome = errors.New(report.Reason)
				}
				recordOutcome(runCtx, ctx, store, history.OperationVerify, file, "", started, outcome)
				diff := "-"
				if report.Actual >= 0 {
					diff = fmt.Sprintf("%+d", report.Diff)
				}
				rows = append(rows, []string{
					file,
					frameCell(report.Expected, report.Rate.Den != 0),
					frameCell(report.Actual, report.Actual >= 0),
					diff,
					result,
				})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Policy: %s (discrepancy %d)\n", policy.Mode, policy.Discrepancy)
			fmt.Fprintln(out, renderTable(
				[]string{"File", "Expected", "Actual", "Diff", "Result"},
				rows,
				[]columnAlignment{alignLeft, alignRight, alignRight, alignRight, alignLeft},
			))
			if failed > 0 {
				return fmt.Errorf("%d of %d file(s) failed verification", failed, len(args))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&mode, "mode", "", "Override verify mode (disabled, range, exceed, exact or 0-3)")
	cmd.Flags().IntVar(&discrepancy, "discrepancy", 0, "Override the allowed frame difference")
	return cmd
}

func frameCell(value int, known bool) string {
	if !known {
		return "-"
	}
	return strconv.Itoa(value)
}
