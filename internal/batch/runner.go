package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"mediatag/internal/history"
	"mediatag/internal/integrity"
	"mediatag/internal/logging"
	"mediatag/internal/rewrite"
)

// ErrVerifyFailed marks an output removed because it failed verification.
var ErrVerifyFailed = errors.New("output failed verification")

// Applier performs one rewrite. *rewrite.Engine satisfies it.
type Applier interface {
	Apply(ctx context.Context, req rewrite.Request) error
}

// Inspector verifies one output. *integrity.Verifier satisfies it.
type Inspector interface {
	Inspect(ctx context.Context, input string, policy integrity.Policy) integrity.Report
}

// Recorder persists outcomes. *history.Store satisfies it.
type Recorder interface {
	Record(ctx context.Context, entry history.Entry) (int64, error)
}

// ProgressFunc is called after each file finishes. Calls are serialized.
type ProgressFunc func(done, total int, result Result)

// Options describes one batch run.
type Options struct {
	RunID     string
	InputDir  string
	OutputDir string
	// Extensions and Recursive control discovery.
	Extensions []string
	Recursive  bool
	Workers    int
	// Template supplies cover and metadata settings; its Input and Output
	// are replaced per file.
	Template rewrite.Request
	// Verify checks each output with Policy after a successful apply. A
	// failed check removes the output.
	Verify bool
	Policy integrity.Policy
}

// Result is the outcome for one file.
type Result struct {
	Item
	Status  history.Status
	Err     error
	Report  *integrity.Report
	Elapsed time.Duration
}

// Summary collects the results of a run in discovery order.
type Summary struct {
	RunID     string
	Results   []Result
	Succeeded int
	Failed    int
}

// Runner drives batch runs.
type Runner struct {
	applier   Applier
	inspector Inspector
	recorder  Recorder
	progress  ProgressFunc
	logger    *slog.Logger
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithRecorder records every outcome.
func WithRecorder(recorder Recorder) RunnerOption {
	return func(r *Runner) {
		r.recorder = recorder
	}
}

// WithProgress installs a progress callback.
func WithProgress(fn ProgressFunc) RunnerOption {
	return func(r *Runner) {
		r.progress = fn
	}
}

// WithLogger attaches a logger. Run adds the run ID itself, so the logger
// should not already carry one.
func WithLogger(logger *slog.Logger) RunnerOption {
	return func(r *Runner) {
		r.logger = logging.NewComponentLogger(logger, "batch")
	}
}

// NewRunner constructs a Runner.
func NewRunner(applier Applier, inspector Inspector, opts ...RunnerOption) *Runner {
	r := &Runner{
		applier:   applier,
		inspector: inspector,
		logger:    logging.NewComponentLogger(nil, "batch"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Plan discovers and maps the files a run would touch.
func Plan(opts Options) ([]Item, error) {
	inputDir, err := filepath.Abs(opts.InputDir)
	if err != nil {
		return nil, err
	}
	outputDir, err := filepath.Abs(opts.OutputDir)
	if err != nil {
		return nil, err
	}
	if inputDir == outputDir {
		return nil, fmt.Errorf("output directory must differ from input directory: %w", rewrite.ErrSamePath)
	}
	files, err := Discover(inputDir, opts.Extensions, opts.Recursive, outputDir)
	if err != nil {
		return nil, err
	}
	return MapOutputs(inputDir, outputDir, files)
}

// Run processes every discovered file. The returned error covers discovery
// and cancellation only; per-file failures are reported in the Summary.
func (r *Runner) Run(ctx context.Context, opts Options) (Summary, error) {
	items, err := Plan(opts)
	if err != nil {
		return Summary{}, err
	}
	ctx = logging.WithRunID(ctx, opts.RunID)
	logger := logging.WithContext(ctx, r.logger)
	logger.Info("batch started",
		logging.String("input_dir", opts.InputDir),
		logging.String("output_dir", opts.OutputDir),
		logging.Int("files", len(items)),
		logging.Int("workers", opts.Workers),
	)

	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}

	results := make([]Result, len(items))
	var (
		mu   sync.Mutex
		done int
	)
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(workers)
	for i, item := range items {
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			result := r.processOne(groupCtx, logger, opts, item)
			results[i] = result

			mu.Lock()
			done++
			if r.progress != nil {
				r.progress(done, len(items), result)
			}
			mu.Unlock()
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return Summary{}, err
	}

	summary := Summary{RunID: opts.RunID, Results: results}
	for _, result := range results {
		if result.Status == history.StatusSucceeded {
			summary.Succeeded++
		} else {
			summary.Failed++
		}
	}
	logger.Info("batch finished",
		logging.Int("succeeded", summary.Succeeded),
		logging.Int("failed", summary.Failed),
	)
	return summary, nil
}

func (r *Runner) processOne(ctx context.Context, logger *slog.Logger, opts Options, item Item) Result {
	started := time.Now()
	result := Result{Item: item, Status: history.StatusSucceeded}

	req := opts.Template
	req.Input = item.Input
	req.Output = item.Output
	if err := r.applier.Apply(ctx, req); err != nil {
		result.Status = history.StatusFailed
		result.Err = err
		logger.Warn("file failed",
			logging.String("input", item.Input),
			logging.Error(err),
		)
	}
	result.Elapsed = time.Since(started)
	r.record(ctx, logger, opts.RunID, history.OperationApply, item, result, started)

	if result.Err != nil || !opts.Verify || opts.Policy.Mode == integrity.Disabled || r.inspector == nil {
		return result
	}

	verifyStarted := time.Now()
	report := r.inspector.Inspect(ctx, item.Output, opts.Policy)
	result.Report = &report
	if !report.Passed {
		result.Status = history.StatusFailed
		result.Err = fmt.Errorf("%w: %s", ErrVerifyFailed, report.Reason)
		if err := os.Remove(item.Output); err != nil && !errors.Is(err, os.ErrNotExist) {
			logger.Warn("failed to remove unverified output",
				logging.String("output", item.Output),
				logging.Error(err),
			)
		}
		logging.WarnWithContext(logger, "output failed verification", "verify_failed",
			logging.String("output", item.Output),
			logging.Int("expected_frames", report.Expected),
			logging.Int("actual_frames", report.Actual),
			logging.String(logging.FieldImpact, "output removed"),
			logging.String(logging.FieldErrorHint, "inspect the source with mediatag verify"),
		)
	}
	r.record(ctx, logger, opts.RunID, history.OperationVerify, Item{Input: item.Output}, result, verifyStarted)
	result.Elapsed = time.Since(started)
	return result
}

func (r *Runner) record(ctx context.Context, logger *slog.Logger, runID string, op history.Operation, item Item, result Result, started time.Time) {
	if r.recorder == nil {
		return
	}
	entry := history.Entry{
		RunID:      runID,
		Operation:  op,
		Input:      item.Input,
		Output:     item.Output,
		Status:     result.Status,
		StartedAt:  started,
		FinishedAt: time.Now(),
	}
	if result.Err != nil {
		entry.Detail = result.Err.Error()
	}
	if _, err := r.recorder.Record(ctx, entry); err != nil {
		logger.Warn("failed to record history", logging.Error(err))
	}
}
