package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"mediatag/internal/metadata"
)

func newMetaCommand(ctx *commandContext) *cobra.Command {
	var (
		native bool
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "meta <file>",
		Short: "Print container metadata tags",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file := args[0]
			var tags map[string]string
			if native {
				parsed, err := metadata.ReadNative(file)
				if err != nil {
					return err
				}
				tags = parsed
			} else {
				reader := metadata.NewReader(ctx.executor(), nil, ctx.loggerValue())
				read, ok := reader.Read(ctx.runContext(cmd), file).Get()
				if !ok {
					return fmt.Errorf("could not read tags from %s", file)
				}
				tags = read
			}

			if asJSON {
				return writeJSON(cmd, tags)
			}
			out := cmd.OutOrStdout()
			if len(tags) == 0 {
				fmt.Fprintln(out, "No tags")
				return nil
			}
			fmt.Fprintln(out, renderKeyValues(metadata.SortedKeys(tags), tags))
			return nil
		},
	}

	cmd.Flags().BoolVar(&native, "native", false, "Parse ID3/MP4/FLAC/Ogg tags directly instead of running ffprobe")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit tags as JSON")
	return cmd
}
