package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"mediatag/internal/history"
	"mediatag/internal/integrity"
	"mediatag/internal/metadata"
	"mediatag/internal/rewrite"
)

// rewriteFlags are shared by apply and batch.
type rewriteFlags struct {
	cover         string
	removeCover   bool
	meta          []string
	stripMetadata bool
}

func (f *rewriteFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.cover, "cover", "", "Replacement cover image (max 10 MB)")
	cmd.Flags().BoolVar(&f.removeCover, "remove-cover", false, "Drop existing attached pictures when no replacement is given")
	cmd.Flags().StringArrayVarP(&f.meta, "meta", "m", nil, "Metadata to write as key=value (repeatable)")
	cmd.Flags().BoolVar(&f.stripMetadata, "strip-metadata", false, "Remove all existing container metadata first")
}

// request builds the rewrite template, starting from the configured
// preservation defaults.
func (f *rewriteFlags) request(ctx *commandContext) (rewrite.Request, error) {
	cfg := ctx.configValue()
	tags, err := metadata.ParsePairs(f.meta)
	if err != nil {
		return rewrite.Request{}, err
	}
	return rewrite.Request{
		Cover: rewrite.CoverSpec{
			Path:             f.cover,
			PreserveExisting: cfg.Rewrite.PreserveCover && !f.removeCover,
		},
		Metadata:         tags,
		PreserveMetadata: cfg.Rewrite.PreserveMetadata && !f.stripMetadata,
	}, nil
}

func newApplyCommand(ctx *commandContext) *cobra.Command {
	var (
		flags  rewriteFlags
		output string
		verify bool
	)

	cmd := &cobra.Command{
		Use:   "apply <input>",
		Short: "Rewrite cover art and metadata into a new file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			defer ctx.close()
			if output == "" {
				return errors.New("--output is required")
			}
			req, err := flags.request(ctx)
			if err != nil {
				return err
			}
			req.Input = args[0]
			req.Output = output

			runCtx := ctx.runContext(cmd)
			store := ctx.historyStore()
			started := time.Now()
			applyErr := ctx.engine().Apply(runCtx, req)
			recordOutcome(runCtx, ctx, store, history.OperationApply, req.Input, req.Output, started, applyErr)
			if applyErr != nil {
				return applyErr
			}

			out := cmd.OutOrStdout()
			if verify {
				policy, err := integrity.PolicyFromConfig(ctx.configValue().Verify)
				if err != nil {
					return err
				}
				started = time.Now()
				report := ctx.verifier().Inspect(runCtx, req.Output, policy)
				var verifyErr error
				if !report.Passed {
					verifyErr = fmt.Errorf("verify %s: %s", req.Output, report.Reason)
					_ = os.Remove(req.Output)
				}
				recordOutcome(runCtx, ctx, store, history.OperationVerify, req.Output, "", started, verifyErr)
				if verifyErr != nil {
					return fmt.Errorf("%w (output removed)", verifyErr)
				}
				fmt.Fprintf(out, "Verified %s (%s)\n", req.Output, describeReport(report))
			}
			fmt.Fprintf(out, "Wrote %s\n", req.Output)
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (must differ from input)")
	cmd.Flags().BoolVar(&verify, "verify", false, "Check frame integrity of the output with the configured policy")
	return cmd
}

func describeReport(report integrity.Report) string {
	if report.Policy.Mode == integrity.Disabled {
		return "verification disabled"
	}
	return fmt.Sprintf("expected %d frames, decoded %d, diff %+d", report.Expected, report.Actual, report.Diff)
}
