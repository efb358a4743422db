package preflight

import (
	"context"
	"strings"

	"mediatag/internal/media/toolexec"
)

// CheckToolVersion runs "<tool> -version" and reports its first line.
func CheckToolVersion(ctx context.Context, exec toolexec.Executor, tool toolexec.Tool) Result {
	name := tool.String()
	out, err := exec.Run(ctx, tool, []string{"-hide_banner", "-version"})
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	if !out.Succeeded() {
		return Result{Name: name, Detail: "exit status " + strings.TrimSpace(out.Tail(1))}
	}
	first, _, _ := strings.Cut(strings.TrimSpace(out.Text), "\n")
	return Result{Name: name, Passed: true, Detail: strings.TrimSpace(first)}
}
