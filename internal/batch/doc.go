// Package batch applies one rewrite request to every media file under a
// directory.
//
// Discover walks the input tree for configured extensions; Runner maps each
// file to the same relative path under the output directory, applies the
// request with bounded parallelism, optionally verifies each output, and
// records every outcome in the history ledger. One file failing never stops
// the others.
package batch
