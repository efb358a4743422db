package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"mediatag/internal/coverart"
)

func newCoversCommand(ctx *commandContext) *cobra.Command {
	coversCmd := &cobra.Command{
		Use:   "covers",
		Short: "List or extract embedded cover pictures",
	}
	coversCmd.AddCommand(newCoversListCommand(ctx))
	coversCmd.AddCommand(newCoversExtractCommand(ctx))
	return coversCmd
}

func newCoversListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list <file>",
		Short: "List attached-picture stream indices",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			locator := coverart.NewLocator(ctx.executor(), nil, ctx.loggerValue())
			indices, ok := locator.Find(ctx.runContext(cmd), args[0]).Get()
			if !ok {
				return fmt.Errorf("could not inspect streams of %s", args[0])
			}
			out := cmd.OutOrStdout()
			if len(indices) == 0 {
				fmt.Fprintln(out, "No attached pictures")
				return nil
			}
			rows := make([][]string, 0, len(indices))
			for _, index := range indices {
				rows = append(rows, []string{strconv.Itoa(index)})
			}
			fmt.Fprintln(out, renderTable([]string{"Stream"}, rows, []columnAlignment{alignRight}))
			return nil
		},
	}
}

func newCoversExtractCommand(ctx *commandContext) *cobra.Command {
	var (
		stream int
		output string
	)

	cmd := &cobra.Command{
		Use:   "extract <file>",
		Short: "Copy an attached picture to an image file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if output == "" {
				return errors.New("--output is required")
			}
			runCtx := ctx.runContext(cmd)
			exec := ctx.executor()
			if !cmd.Flags().Changed("stream") {
				indices := coverart.NewLocator(exec, nil, ctx.loggerValue()).AttachedPictureStreams(runCtx, args[0])
				if len(indices) == 0 {
					return fmt.Errorf("no attached pictures in %s", args[0])
				}
				stream = indices[0]
			}
			if !coverart.NewExtractor(exec, ctx.loggerValue()).Extract(runCtx, args[0], stream, output) {
				return fmt.Errorf("extract stream %d of %s failed", stream, args[0])
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote stream %d to %s\n", stream, output)
			return nil
		},
	}

	cmd.Flags().IntVarP(&stream, "stream", "s", 0, "Stream index to extract (default: first attached picture)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Destination image file")
	return cmd
}
