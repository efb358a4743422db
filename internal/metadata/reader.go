// Package metadata reads container-level tags.
//
// Reader queries ffprobe and never fails loudly: a missing file, a tool error,
// or output without tag lines yields an empty result. ReadNative parses tags
// in-process for audio containers that github.com/dhowden/tag understands.
package metadata

import (
	"context"
	"log/slog"
	"os"

	"mediatag/internal/logging"
	"mediatag/internal/media/ffprobe"
	"mediatag/internal/media/textparse"
	"mediatag/internal/media/toolexec"
	"mediatag/internal/optional"
)

// Reader reads TAG:key=value lines from ffprobe.
type Reader struct {
	exec     toolexec.Executor
	patterns *textparse.Patterns
	logger   *slog.Logger
}

// NewReader constructs a Reader. A nil patterns value uses textparse.Default.
func NewReader(exec toolexec.Executor, patterns *textparse.Patterns, logger *slog.Logger) *Reader {
	if patterns == nil {
		patterns = textparse.Default()
	}
	return &Reader{
		exec:     exec,
		patterns: patterns,
		logger:   logging.NewComponentLogger(logger, "metadata"),
	}
}

// Read returns the container tags of input. Duplicate keys resolve to the last
// occurrence. The result is unknown when the file is missing or the probe
// cannot run.
func (r *Reader) Read(ctx context.Context, input string) optional.Value[map[string]string] {
	if _, err := os.Stat(input); err != nil {
		return optional.None[map[string]string]()
	}
	out, err := r.exec.Run(ctx, toolexec.Inspection, ffprobe.FormatTagsArgs(input))
	if err != nil {
		r.logger.Debug("tag probe failed",
			logging.String("input", input),
			logging.Error(err),
		)
		return optional.None[map[string]string]()
	}
	return optional.Of(r.patterns.Tags(out.Text))
}

// ReadMetadata is Read with an empty map as the fallback.
func (r *Reader) ReadMetadata(ctx context.Context, input string) map[string]string {
	return r.Read(ctx, input).Or(map[string]string{})
}
