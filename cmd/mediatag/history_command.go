package main

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"mediatag/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var (
		limit  int
		runID  string
		failed bool
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded apply and verify outcomes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			defer ctx.close()
			store := ctx.historyStore()
			if store == nil {
				return errors.New("history ledger unavailable")
			}
			filter := history.Filter{RunID: runID, Limit: limit}
			if failed {
				filter.Status = history.StatusFailed
			}
			entries, err := store.Recent(ctx.runContext(cmd), filter)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "No history")
				return nil
			}
			rows := make([][]string, 0, len(entries))
			for _, entry := range entries {
				rows = append(rows, []string{
					strconv.FormatInt(entry.ID, 10),
					truncate(entry.RunID, 8),
					string(entry.Operation),
					string(entry.Status),
					truncate(entry.Input, 48),
					truncate(entry.Output, 48),
					entry.FinishedAt.Local().Format(time.DateTime),
					truncate(entry.Detail, 40),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"ID", "Run", "Op", "Status", "Input", "Output", "Finished", "Detail"},
				rows,
				[]columnAlignment{alignRight},
			))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum entries to show (0 for all)")
	cmd.Flags().StringVar(&runID, "run", "", "Only show entries from this run ID")
	cmd.Flags().BoolVar(&failed, "failed", false, "Only show failures")
	return cmd
}
