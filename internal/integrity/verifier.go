package integrity

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"os"

	"mediatag/internal/logging"
	"mediatag/internal/media/ffprobe"
	"mediatag/internal/media/textparse"
	"mediatag/internal/media/toolexec"
	"mediatag/internal/optional"
)

// Option configures a Verifier.
type Option func(*Verifier)

// WithPatterns overrides the compiled pattern set.
func WithPatterns(patterns *textparse.Patterns) Option {
	return func(v *Verifier) {
		if patterns != nil {
			v.patterns = patterns
		}
	}
}

// WithStreamSelector sets the ffprobe -select_streams value used for timing.
func WithStreamSelector(selector string) Option {
	return func(v *Verifier) {
		if selector != "" {
			v.selector = selector
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(v *Verifier) {
		v.logger = logging.NewComponentLogger(logger, "integrity")
	}
}

// Verifier compares predicted and decoded frame counts.
type Verifier struct {
	exec     toolexec.Executor
	patterns *textparse.Patterns
	selector string
	logger   *slog.Logger
}

// New constructs a Verifier that runs tools through exec.
func New(exec toolexec.Executor, opts ...Option) *Verifier {
	v := &Verifier{
		exec:     exec,
		patterns: textparse.Default(),
		selector: "v",
		logger:   logging.NewComponentLogger(nil, "integrity"),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Report details one verification.
type Report struct {
	Input    string
	Policy   Policy
	Rate     textparse.Rational
	Duration float64
	Expected int
	// Actual is -1 when no progress record was found.
	Actual int
	Diff   int
	Passed bool
	// Reason explains a failure, or is empty on success.
	Reason string
}

// Verify reports whether input passes policy.
func (v *Verifier) Verify(ctx context.Context, input string, policy Policy) bool {
	return v.Inspect(ctx, input, policy).Passed
}

// Inspect runs the verification and returns the intermediate values.
func (v *Verifier) Inspect(ctx context.Context, input string, policy Policy) Report {
	report := Report{Input: input, Policy: policy, Actual: -1}

	if _, err := os.Stat(input); err != nil {
		report.Reason = "input not found"
		return report
	}
	if policy.Mode == Disabled {
		report.Passed = true
		return report
	}

	expected, timing, err := v.expectedFrames(ctx, input)
	if err != nil {
		report.Reason = err.Error()
		v.logger.Debug("frame prediction failed",
			logging.String("input", input),
			logging.Error(err),
		)
		return report
	}
	report.Rate = timing.Rate
	report.Duration = timing.Duration
	report.Expected = expected

	actual, ok := v.FrameCount(ctx, input).Get()
	if !ok {
		report.Reason = "no decode progress reported"
		return report
	}
	report.Actual = actual
	report.Diff = actual - expected
	report.Passed = policy.Accepts(report.Diff)
	if !report.Passed {
		report.Reason = fmt.Sprintf("frame difference %d outside %s tolerance %d", report.Diff, policy.Mode, policy.Discrepancy)
	}

	v.logger.Debug("integrity check complete",
		logging.String("input", input),
		logging.String("mode", policy.Mode.String()),
		logging.Int("expected_frames", report.Expected),
		logging.Int("actual_frames", report.Actual),
		logging.Int("diff", report.Diff),
		logging.Bool("passed", report.Passed),
	)
	return report
}

func (v *Verifier) expectedFrames(ctx context.Context, input string) (int, textparse.StreamTiming, error) {
	out, err := v.exec.Run(ctx, toolexec.Inspection, ffprobe.TimingArgs(input, v.selector))
	if err != nil {
		return 0, textparse.StreamTiming{}, err
	}
	timing, ok := v.patterns.FirstTiming(out.Text)
	if !ok {
		return 0, textparse.StreamTiming{}, fmt.Errorf("no stream with frame rate and duration")
	}
	rate, err := timing.Rate.IntegralRate()
	if err != nil {
		return 0, timing, err
	}
	return predictFrames(rate, timing.Duration), timing, nil
}

// durationSnap absorbs the rounding ffprobe applies when printing duration
// with six decimals.
const durationSnap = 1e-4

// predictFrames returns ceil(rate * duration), treating products within
// durationSnap of a whole frame as that frame.
func predictFrames(rate int, duration float64) int {
	product := float64(rate) * duration
	if nearest := math.Round(product); math.Abs(product-nearest) < durationSnap {
		return int(nearest)
	}
	return int(math.Ceil(product))
}

// FrameCount decodes input into a null sink and returns the highest frame
// number reported. The result is unknown when the tool fails to start or
// reports no progress.
func (v *Verifier) FrameCount(ctx context.Context, input string) optional.Value[int] {
	if _, err := os.Stat(input); err != nil {
		return optional.None[int]()
	}
	out, err := v.exec.Run(ctx, toolexec.Transform, nullDecodeArgs(input))
	if err != nil {
		v.logger.Debug("frame count failed",
			logging.String("input", input),
			logging.Error(err),
		)
		return optional.None[int]()
	}
	frames, ok := v.patterns.MaxFrame(out.Text)
	if !ok {
		return optional.None[int]()
	}
	return optional.Of(frames)
}

func nullDecodeArgs(input string) []string {
	return []string{"-nostdin", "-i", input, "-f", "null", "-"}
}
