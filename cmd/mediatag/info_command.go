package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"mediatag/internal/media/ffprobe"
)

func newInfoCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "info <file>",
		Short: "Summarize the streams and format of a media file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := ffprobe.Inspect(ctx.runContext(cmd), ctx.executor(), args[0])
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, result)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Format:   %s\n", result.Format.FormatName)
			fmt.Fprintf(out, "Duration: %.2fs\n", result.DurationSeconds())
			fmt.Fprintf(out, "Size:     %d bytes\n", result.SizeBytes())
			fmt.Fprintf(out, "Streams:  %d video, %d audio, %d total\n", result.VideoStreamCount(), result.AudioStreamCount(), len(result.Streams))

			rows := make([][]string, 0, len(result.Streams))
			for _, stream := range result.Streams {
				dims := ""
				if stream.Width > 0 && stream.Height > 0 {
					dims = fmt.Sprintf("%dx%d", stream.Width, stream.Height)
				}
				rows = append(rows, []string{
					strconv.Itoa(stream.Index),
					stream.CodecType,
					stream.CodecName,
					dims,
					stream.RFrameRate,
					yesNo(stream.AttachedPicture()),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Index", "Type", "Codec", "Size", "Rate", "Cover"},
				rows,
				[]columnAlignment{alignRight},
			))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit the probe result as JSON")
	return cmd
}
