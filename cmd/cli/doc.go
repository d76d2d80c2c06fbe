// Package cli constructs the replayrig command-line interface, wiring the
// Cobra command hierarchy, configuration loader, and structured logging
// primitives around the play, run, chaos and replay commands.
package cli
