// Package preflight provides readiness checks for the external tools and
// directories mediatag depends on.
//
// The CLI runs RunAll before batch work so a missing ffmpeg or an unwritable
// state directory fails fast, and "mediatag status" renders the same results.
package preflight
