package toolexec

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"mediatag/internal/logging"
)

// Tool designates which external program to run.
type Tool int

const (
	// Transform is the remuxing tool (ffmpeg).
	Transform Tool = iota
	// Inspection is the probing tool (ffprobe).
	Inspection
)

func (t Tool) String() string {
	switch t {
	case Transform:
		return "ffmpeg"
	case Inspection:
		return "ffprobe"
	default:
		return fmt.Sprintf("tool(%d)", int(t))
	}
}

var (
	// ErrLaunch reports that the process could not be started or its output
	// could not be collected.
	ErrLaunch = errors.New("tool launch failed")
	// ErrInterrupted reports that the process was stopped by context
	// cancellation or timeout before it exited on its own.
	ErrInterrupted = errors.New("tool run interrupted")
)

// Output is the captured result of one invocation.
type Output struct {
	Text     string
	ExitCode int
}

// Succeeded reports whether the process exited with status zero.
func (o Output) Succeeded() bool {
	return o.ExitCode == 0
}

// Tail returns up to n trailing lines of the captured text, for error messages.
func (o Output) Tail(n int) string {
	lines := strings.Split(strings.TrimRight(o.Text, "\r\n"), "\n")
	if n > 0 && len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// Executor runs a tool with the given arguments.
type Executor interface {
	Run(ctx context.Context, tool Tool, args []string) (Output, error)
}

// Binaries names the executables used for each tool.
type Binaries struct {
	Transform  string
	Inspection string
}

func (b Binaries) resolve(tool Tool) string {
	var binary string
	switch tool {
	case Transform:
		binary = b.Transform
	case Inspection:
		binary = b.Inspection
	}
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = tool.String()
	}
	return binary
}

type commandFunc func(ctx context.Context, name string, args ...string) *exec.Cmd

// Option configures a Runner.
type Option func(*Runner)

// WithTimeout bounds every invocation. Zero disables the bound.
func WithTimeout(timeout time.Duration) Option {
	return func(r *Runner) {
		if timeout > 0 {
			r.timeout = timeout
		}
	}
}

// WithLogger routes debug output about each invocation.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.logger = logging.NewComponentLogger(logger, "toolexec")
	}
}

// Runner is the os/exec backed Executor.
type Runner struct {
	binaries Binaries
	timeout  time.Duration
	logger   *slog.Logger
	command  commandFunc
}

// New constructs a Runner for the provided binaries.
func New(binaries Binaries, opts ...Option) *Runner {
	r := &Runner{
		binaries: binaries,
		logger:   logging.NewComponentLogger(nil, "toolexec"),
		command:  exec.CommandContext,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Binary reports the executable used for tool.
func (r *Runner) Binary(tool Tool) string {
	return r.binaries.resolve(tool)
}

// Run launches the tool, waits for it to exit, and returns its combined
// stdout and stderr. A non-zero exit is reported through Output.ExitCode and is
// not an error.
func (r *Runner) Run(ctx context.Context, tool Tool, args []string) (Output, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	runCtx := ctx
	if r.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	binary := r.binaries.resolve(tool)
	r.logger.Debug("running tool",
		logging.String("tool", tool.String()),
		logging.String("binary", binary),
		logging.String("args", strings.Join(args, " ")),
	)

	started := time.Now()
	cmd := r.command(runCtx, binary, args...) //nolint:gosec
	raw, err := cmd.CombinedOutput()
	out := Output{Text: string(raw)}

	if runErr := runCtx.Err(); runErr != nil {
		return out, fmt.Errorf("%s: %w: %w", tool, ErrInterrupted, runErr)
	}
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return out, fmt.Errorf("%s: %w: %w", tool, ErrLaunch, err)
		}
		out.ExitCode = exitErr.ExitCode()
	}

	r.logger.Debug("tool finished",
		logging.String("tool", tool.String()),
		logging.Int("exit_code", out.ExitCode),
		logging.Duration("elapsed", time.Since(started)),
	)
	return out, nil
}
