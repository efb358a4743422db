package testsupport

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"mediatag/internal/media/toolexec"
)

// Call records one invocation seen by FakeExecutor.
type Call struct {
	Tool toolexec.Tool
	Args []string
}

// Response is the canned result for one tool.
type Response struct {
	Output toolexec.Output
	Err    error
	// Hook runs before the response is returned, for example to create the
	// output file a real transform would have written.
	Hook func(args []string) error
}

// FakeExecutor is an in-memory toolexec.Executor returning canned responses
// per tool. Calls are recorded in order and safe for concurrent use.
type FakeExecutor struct {
	mu        sync.Mutex
	responses map[toolexec.Tool]Response
	calls     []Call
}

// NewFakeExecutor builds an executor with no responses configured. Unset tools
// return an error.
func NewFakeExecutor() *FakeExecutor {
	return &FakeExecutor{responses: make(map[toolexec.Tool]Response)}
}

// On sets the response for tool and returns the executor for chaining.
func (f *FakeExecutor) On(tool toolexec.Tool, resp Response) *FakeExecutor {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses[tool] = resp
	return f
}

// Run implements toolexec.Executor.
func (f *FakeExecutor) Run(ctx context.Context, tool toolexec.Tool, args []string) (toolexec.Output, error) {
	f.mu.Lock()
	f.calls = append(f.calls, Call{Tool: tool, Args: slices.Clone(args)})
	resp, ok := f.responses[tool]
	f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return toolexec.Output{}, fmt.Errorf("%s: %w: %w", tool, toolexec.ErrInterrupted, err)
	}
	if !ok {
		return toolexec.Output{}, fmt.Errorf("%s: %w: no fake response configured", tool, toolexec.ErrLaunch)
	}
	if resp.Hook != nil {
		if err := resp.Hook(args); err != nil {
			return toolexec.Output{}, err
		}
	}
	return resp.Output, resp.Err
}

// Calls returns a copy of the recorded invocations.
func (f *FakeExecutor) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.calls)
}

// CallsFor returns the argument lists recorded for tool.
func (f *FakeExecutor) CallsFor(tool toolexec.Tool) [][]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out [][]string
	for _, call := range f.calls {
		if call.Tool == tool {
			out = append(out, call.Args)
		}
	}
	return out
}
