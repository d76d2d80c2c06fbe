package detection

import (
	"fmt"

	"github.com/temirov/replayrig/internal/session"
)

const (
	// HangDetectorName labels reasons produced by HangDetector.
	HangDetectorName = "hang"

	// DefaultMaxSameSnapshotSteps is the number of repeated observations
	// tolerated before a hang is reported.
	DefaultMaxSameSnapshotSteps = 8

	hangReasonTemplateConstant = "hang: state %q (boost x%d) repeated %d steps"
)

// HangDetector reports a hang when the same snapshot is observed too many
// times in a row. The boost counter is part of the snapshot, so boosting in
// PLAY counts as progress.
type HangDetector struct {
	maxSameSnapshotSteps int
	lastSnapshot         session.Snapshot
	observed             bool
	sameSnapshotSteps    int
}

// NewHangDetector constructs a detector; non-positive limits fall back to
// DefaultMaxSameSnapshotSteps.
func NewHangDetector(maxSameSnapshotSteps int) *HangDetector {
	if maxSameSnapshotSteps <= 0 {
		maxSameSnapshotSteps = DefaultMaxSameSnapshotSteps
	}
	return &HangDetector{maxSameSnapshotSteps: maxSameSnapshotSteps}
}

// Observe records the snapshot reached after one step.
func (detector *HangDetector) Observe(snapshot session.Snapshot) {
	if detector.observed && detector.lastSnapshot == snapshot {
		detector.sameSnapshotSteps++
		return
	}
	detector.observed = true
	detector.lastSnapshot = snapshot
	detector.sameSnapshotSteps = 0
}

// Check returns a hang reason once the repetition limit is reached.
func (detector *HangDetector) Check() (string, bool) {
	if !detector.observed || detector.sameSnapshotSteps < detector.maxSameSnapshotSteps {
		return "", false
	}
	return fmt.Sprintf(hangReasonTemplateConstant, detector.lastSnapshot.State, detector.lastSnapshot.BoostCount, detector.sameSnapshotSteps+1), true
}
