package coverart

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

// Locator reports which streams of a file are attached pictures.
type Locator struct {
	exec     toolexec.Executor
	patterns *textparse.Patterns
	logger   *slog.Logger
}

// NewLocator constructs a Locator. A nil patterns value uses textparse.Default.
func NewLocator(exec toolexec.Executor, patterns *textparse.Patterns, logger *slog.Logger) *Locator {
	if patterns == nil {
		patterns = textparse.Default()
	}
	return &Locator{
		exec:     exec,
		patterns: patterns,
		logger:   logging.NewComponentLogger(logger, "coverart"),
	}
}

// Find returns the indices of attached-picture streams in encounter order.
// The result is unknown when the file is missing, the probe cannot run, or a
// stream index does not parse.
func (l *Locator) Find(ctx context.Context, input string) optional.Value[[]int] {
	if _, err := os.Stat(input); err != nil {
		return optional.None[[]int]()
	}
	out, err := l.exec.Run(ctx, toolexec.Inspection, ffprobe.DispositionArgs(input))
	if err != nil {
		l.logger.Debug("disposition probe failed",
			logging.String("input", input),
			logging.Error(err),
		)
		return optional.None[[]int]()
	}
	records, err := l.patterns.Dispositions(out.Text)
	if err != nil {
		l.logger.Debug("disposition parse failed",
			logging.String("input", input),
			logging.Error(err),
		)
		return optional.None[[]int]()
	}
	indices := make([]int, 0, len(records))
	for _, record := range records {
		if record.AttachedPicture {
			indices = append(indices, record.Index)
		}
	}
	return optional.Of(indices)
}

// AttachedPictureStreams is Find with an empty slice as the fallback.
func (l *Locator) AttachedPictureStreams(ctx context.Context, input string) []int {
	return l.Find(ctx, input).Or([]int{})
}
