// Package evidence persists what a harness run learned: per-run directories,
// state snapshots, coverage counters and JSON bug reports that can later be
// replayed.
package evidence
