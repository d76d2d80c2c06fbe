// Package session implements the replayrig session state machine.
//
// A Session owns a Snapshot (the visible screen and the hidden boost counter)
// and advances it one Action at a time through the pure Transition function.
// Each transition yields timestamped journal lines and, on the two crashing
// paths, a *DeterministicCrash that callers are expected to propagate.
package session
