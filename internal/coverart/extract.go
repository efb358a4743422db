package coverart

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"mediatag/internal/logging"
	"mediatag/internal/media/toolexec"
)

// Extractor copies an embedded picture stream out to a standalone file.
type Extractor struct {
	exec   toolexec.Executor
	logger *slog.Logger
}

// NewExtractor constructs an Extractor.
func NewExtractor(exec toolexec.Executor, logger *slog.Logger) *Extractor {
	return &Extractor{
		exec:   exec,
		logger: logging.NewComponentLogger(logger, "coverart"),
	}
}

// Extract writes stream streamIndex of input to output without re-encoding and
// reports whether output exists afterwards. An existing output is overwritten.
func (e *Extractor) Extract(ctx context.Context, input string, streamIndex int, output string) bool {
	if streamIndex < 0 {
		return false
	}
	if _, err := os.Stat(input); err != nil {
		return false
	}
	if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
		logging.WarnWithContext(e.logger, "cover output directory unavailable", "cover_extract_failed",
			logging.String("output", output),
			logging.Error(err),
			logging.String(logging.FieldImpact, "cover was not extracted"),
		)
		return false
	}
	out, err := e.exec.Run(ctx, toolexec.Transform, ExtractArgs(input, streamIndex, output))
	if err != nil {
		e.logger.Debug("cover extraction failed",
			logging.String("input", input),
			logging.Error(err),
		)
		return false
	}
	if !out.Succeeded() {
		e.logger.Debug("cover extraction exited non-zero",
			logging.String("input", input),
			logging.Int("exit_code", out.ExitCode),
			logging.String("output_tail", out.Tail(3)),
		)
	}
	_, err = os.Stat(output)
	return err == nil
}

// ExtractArgs builds the ffmpeg arguments that copy one frame of a stream.
func ExtractArgs(input string, streamIndex int, output string) []string {
	return []string{
		"-i", input,
		"-map", "0:" + strconv.Itoa(streamIndex),
		"-frames:v", "1",
		"-c", "copy",
		"-y",
		output,
	}
}
