package rewrite

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"mediatag/internal/coverart"
	"mediatag/internal/fileutil"
	"mediatag/internal/logging"
	"mediatag/internal/media/toolexec"
)

const lockRetryDelay = 250 * time.Millisecond

// StreamLocator lists attached-picture streams. *coverart.Locator satisfies it.
type StreamLocator interface {
	AttachedPictureStreams(ctx context.Context, input string) []int
}

// Option configures an Engine.
type Option func(*Engine)

// WithLocator overrides how existing cover streams are found.
func WithLocator(locator StreamLocator) Option {
	return func(e *Engine) {
		if locator != nil {
			e.locator = locator
		}
	}
}

// WithLockDir places per-output lock files in dir. Without it applies to the
// same output are not serialized.
func WithLockDir(dir string) Option {
	return func(e *Engine) {
		e.lockDir = dir
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logging.NewComponentLogger(logger, "rewrite")
	}
}

// Engine applies rewrite requests.
type Engine struct {
	exec    toolexec.Executor
	locator StreamLocator
	lockDir string
	logger  *slog.Logger
}

// New constructs an Engine that runs ffmpeg through exec.
func New(exec toolexec.Executor, opts ...Option) *Engine {
	e := &Engine{
		exec:   exec,
		logger: logging.NewComponentLogger(nil, "rewrite"),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.locator == nil {
		e.locator = coverart.NewLocator(exec, nil, e.logger)
	}
	return e
}

// Apply validates req and writes the rewritten file to req.Output.
func (e *Engine) Apply(ctx context.Context, req Request) error {
	input, output, err := e.resolvePaths(req)
	if err != nil {
		return err
	}
	coverPath, err := e.checkCover(req.Cover)
	if err != nil {
		return err
	}

	unlock, err := e.lockOutput(ctx, output)
	if err != nil {
		return err
	}
	defer unlock()

	tmp := fileutil.TempSibling(output)
	if req.unchanged(coverPath != "") {
		e.logger.Debug("no changes requested; copying",
			logging.String("input", input),
			logging.String("output", output),
		)
		if err := fileutil.CopyFileVerified(input, tmp); err != nil {
			_ = os.Remove(tmp)
			return fmt.Errorf("copy %s: %w", input, err)
		}
		return fileutil.Promote(tmp, output)
	}

	plan := Plan{
		Input:         input,
		Output:        tmp,
		StripMetadata: !req.PreserveMetadata,
		Metadata:      req.Metadata,
	}
	switch {
	case coverPath != "":
		plan.Cover = CoverReplace
		plan.CoverPath = coverPath
	case !req.Cover.PreserveExisting:
		plan.Cover = CoverRemove
		plan.RemoveStreams = e.locator.AttachedPictureStreams(ctx, input)
	default:
		plan.Cover = CoverPreserve
	}

	started := time.Now()
	out, err := e.exec.Run(ctx, toolexec.Transform, Build(plan))
	if err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("%w: %w", ErrTransform, err)
	}
	if !out.Succeeded() {
		_ = os.Remove(tmp)
		return fmt.Errorf("%w: ffmpeg exit status %d: %s", ErrTransform, out.ExitCode, out.Tail(5))
	}
	if err := fileutil.Promote(tmp, output); err != nil {
		return fmt.Errorf("%w: %w", ErrTransform, err)
	}

	e.logger.Info("rewrite complete",
		logging.String("input", input),
		logging.String("output", output),
		logging.String("cover_action", plan.Cover.String()),
		logging.Int("metadata_keys", len(req.Metadata)),
		logging.Bool("strip_metadata", plan.StripMetadata),
		logging.Duration("elapsed", time.Since(started)),
	)
	return nil
}

func (e *Engine) resolvePaths(req Request) (string, string, error) {
	if req.Input == "" {
		return "", "", ErrInputNotFound
	}
	input, err := filepath.Abs(req.Input)
	if err != nil {
		return "", "", fmt.Errorf("%w: %w", ErrInputNotFound, err)
	}
	info, err := os.Stat(input)
	if err != nil || info.IsDir() {
		return "", "", fmt.Errorf("%w: %s", ErrInputNotFound, input)
	}

	if req.Output == "" {
		return "", "", ErrOutputUnavailable
	}
	output, err := filepath.Abs(req.Output)
	if err != nil {
		return "", "", fmt.Errorf("%w: %w", ErrOutputUnavailable, err)
	}
	if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
		return "", "", fmt.Errorf("%w: %w", ErrOutputUnavailable, err)
	}
	if info, err := os.Stat(output); err == nil && info.IsDir() {
		return "", "", fmt.Errorf("%w: %s is a directory", ErrOutputUnavailable, output)
	}

	if fileutil.SameFile(input, output) {
		return "", "", fmt.Errorf("%w: %s", ErrSamePath, output)
	}
	return input, output, nil
}

// checkCover returns the absolute path of a usable replacement cover, or ""
// when none applies.
func (e *Engine) checkCover(spec CoverSpec) (string, error) {
	if spec.Path == "" {
		return "", nil
	}
	path, err := filepath.Abs(spec.Path)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		logging.WarnWithContext(e.logger, "replacement cover not found; ignoring", "cover_missing",
			logging.String("cover", path),
			logging.String(logging.FieldErrorHint, "check the cover path"),
			logging.String(logging.FieldImpact, "existing cover handling applies instead"),
		)
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("stat cover: %w", err)
	}
	if info.Size() > MaxCoverBytes {
		return "", fmt.Errorf("%w: %s is %d bytes (limit %d)", ErrCoverTooLarge, path, info.Size(), MaxCoverBytes)
	}
	if _, err := coverart.SniffImage(path); err != nil {
		if errors.Is(err, coverart.ErrNotImage) {
			return "", fmt.Errorf("%w: %w", ErrCoverNotImage, err)
		}
		return "", err
	}
	return path, nil
}

func (e *Engine) lockOutput(ctx context.Context, output string) (func(), error) {
	if e.lockDir == "" {
		return func() {}, nil
	}
	if err := os.MkdirAll(e.lockDir, 0o755); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}
	sum := sha256.Sum256([]byte(output))
	lock := flock.New(filepath.Join(e.lockDir, hex.EncodeToString(sum[:8])+".lock"))
	ok, err := lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return nil, fmt.Errorf("lock output %s: %w", output, err)
	}
	if !ok {
		return nil, fmt.Errorf("lock output %s: not acquired", output)
	}
	return func() {
		if err := lock.Unlock(); err != nil {
			e.logger.Warn("failed to release output lock", logging.Error(err))
		}
	}, nil
}
