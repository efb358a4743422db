package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"mediatag/internal/batch"
	"mediatag/internal/integrity"
	"mediatag/internal/preflight"
)

func newBatchCommand(ctx *commandContext) *cobra.Command {
	var (
		flags     rewriteFlags
		workers   int
		recursive bool
		noVerify  bool
	)

	cmd := &cobra.Command{
		Use:   "batch <input-dir> <output-dir>",
		Short: "Apply the same rewrite to every media file in a directory",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			defer ctx.close()
			cfg := ctx.configValue()

			for _, status := range preflight.CheckSystemDeps(cfg) {
				if !status.Available {
					return fmt.Errorf("%s unavailable: %s", status.Name, status.Detail)
				}
			}

			template, err := flags.request(ctx)
			if err != nil {
				return err
			}
			policy, err := integrity.PolicyFromConfig(cfg.Verify)
			if err != nil {
				return err
			}

			opts := batch.Options{
				RunID:      ctx.runID,
				InputDir:   args[0],
				OutputDir:  args[1],
				Extensions: cfg.Batch.Extensions,
				Recursive:  cfg.Batch.Recursive || recursive,
				Workers:    cfg.Batch.Workers,
				Template:   template,
				Verify:     cfg.Batch.VerifyAfterApply && !noVerify,
				Policy:     policy,
			}
			if cmd.Flags().Changed("workers") {
				opts.Workers = workers
			}

			items, err := batch.Plan(opts)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(items) == 0 {
				fmt.Fprintln(out, "No media files found")
				return nil
			}

			var barWriter io.Writer = io.Discard
			if shouldColorize(cmd.ErrOrStderr()) {
				barWriter = cmd.ErrOrStderr()
			}
			bar := progressbar.NewOptions(len(items),
				progressbar.OptionSetWriter(barWriter),
				progressbar.OptionSetDescription("Rewriting"),
				progressbar.OptionShowCount(),
				progressbar.OptionSetWidth(40),
				progressbar.OptionSetRenderBlankState(true),
				progressbar.OptionClearOnFinish(),
			)

			runnerOpts := []batch.RunnerOption{
				batch.WithLogger(ctx.untaggedLogger()),
				batch.WithProgress(func(int, int, batch.Result) {
					_ = bar.Add(1)
				}),
			}
			if store := ctx.historyStore(); store != nil {
				runnerOpts = append(runnerOpts, batch.WithRecorder(store))
			}
			runner := batch.NewRunner(ctx.engine(), ctx.verifier(), runnerOpts...)

			summary, err := runner.Run(ctx.runContext(cmd), opts)
			_ = bar.Finish()
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "Run %s: %d succeeded, %d failed\n", summary.RunID, summary.Succeeded, summary.Failed)
			if summary.Failed == 0 {
				return nil
			}
			rows := make([][]string, 0, summary.Failed)
			for _, result := range summary.Results {
				if result.Err == nil {
					continue
				}
				rows = append(rows, []string{result.Input, truncate(result.Err.Error(), 80)})
			}
			fmt.Fprintln(out, renderTable([]string{"File", "Error"}, rows, nil))
			return errors.New(strconv.Itoa(summary.Failed) + " file(s) failed")
		},
	}

	flags.register(cmd)
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "Files processed in parallel (default from config)")
	cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "Descend into subdirectories")
	cmd.Flags().BoolVar(&noVerify, "no-verify", false, "Skip frame integrity checks of outputs")
	return cmd
}
