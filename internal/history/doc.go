// Package history keeps a SQLite ledger of apply and verify outcomes.
//
// Each CLI invocation carries a run ID; every file it touches adds one row.
// The ledger is append-only and is read by the history and status commands.
package history
