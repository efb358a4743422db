package main

import (
	"context"
	"path/filepath"
	"time"

	"mediatag/internal/history"
	"mediatag/internal/logging"
)

func recordOutcome(runCtx context.Context, ctx *commandContext, store *history.Store, op history.Operation, input, output string, started time.Time, err error) {
	if store == nil {
		return
	}
	input = absPath(input)
	output = absPath(output)
	entry := history.Entry{
		RunID:      ctx.runID,
		Operation:  op,
		Input:      input,
		Output:     output,
		Status:     history.StatusSucceeded,
		StartedAt:  started,
		FinishedAt: time.Now(),
	}
	if err != nil {
		entry.Status = history.StatusFailed
		entry.Detail = err.Error()
	}
	if _, recErr := store.Record(runCtx, entry); recErr != nil {
		ctx.loggerValue().Warn("failed to record history", logging.Error(recErr))
	}
}

func absPath(path string) string {
	if path == "" {
		return ""
	}
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}
