// Package logging assembles structured slog loggers and formatting helpers used
// across mediatag.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and exposes helpers so components can tag log lines with their
// component name and the batch run ID. The package also provides a no-op
// logger for tests and wiring code that cannot fail.
//
// Prefer these constructors over hand-rolled slog setup so every component
// emits data with the same shape.
package logging
