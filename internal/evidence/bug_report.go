package evidence

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/temirov/replayrig/internal/session"
)

const (
	invalidBugReportMessageConstant        = "invalid bug report"
	bugReportFieldRequiredTemplateConstant = "bug report %s must be provided"
	bugReportIDFieldConstant               = "id"
	bugReportDetectorFieldConstant         = "detector"
	bugReportReasonFieldConstant           = "reason"
	bugReportActionsFieldConstant          = "actions"
	bugReportInvalidActionTemplateConstant = "bug report action %d: unsupported action %q"
)

// ErrInvalidBugReport wraps every bug report validation failure.
var ErrInvalidBugReport = errors.New(invalidBugReportMessageConstant)

// StateEvidence captures the session as it was when a bug was detected.
type StateEvidence struct {
	State      session.State `json:"state"`
	BoostCount int           `json:"boost_count"`
	Label      string        `json:"label,omitempty"`
}

// NewStateEvidence snapshots the session state under a label.
func NewStateEvidence(snapshot session.Snapshot, label string) StateEvidence {
	return StateEvidence{State: snapshot.State, BoostCount: snapshot.BoostCount, Label: label}
}

// BugEvidence points at files written alongside a bug report.
type BugEvidence struct {
	StatePath    string `json:"state_path,omitempty"`
	CoveragePath string `json:"coverage_path,omitempty"`
}

// BugReport describes one detected bug and everything needed to replay it.
// ReproSteps holds the human-readable macro labels while Actions holds the
// flat action sequence that was actually dispatched.
type BugReport struct {
	ID         string           `json:"bug_id"`
	RunID      string           `json:"run_id"`
	Detector   string           `json:"detector"`
	Reason     string           `json:"reason"`
	LastState  StateEvidence    `json:"last_state"`
	ReproSteps []string         `json:"repro_steps"`
	Actions    []session.Action `json:"actions"`
	Journal    []string         `json:"journal,omitempty"`
	Evidence   BugEvidence      `json:"evidence"`
	Seed       int64            `json:"seed"`
	CreatedAt  time.Time        `json:"created_at"`
}

// NewBugID returns a fresh bug identifier.
func NewBugID() string {
	return uuid.NewString()
}

// Validate checks the fields replay depends on. Actions must be stored in
// their canonical form because replay dispatches them verbatim.
func (report BugReport) Validate() error {
	requiredFields := []struct {
		name  string
		value string
	}{
		{name: bugReportIDFieldConstant, value: report.ID},
		{name: bugReportDetectorFieldConstant, value: report.Detector},
		{name: bugReportReasonFieldConstant, value: report.Reason},
	}
	for _, requiredField := range requiredFields {
		if len(strings.TrimSpace(requiredField.value)) == 0 {
			return fmt.Errorf("%w: "+bugReportFieldRequiredTemplateConstant, ErrInvalidBugReport, requiredField.name)
		}
	}

	if len(report.Actions) == 0 {
		return fmt.Errorf("%w: "+bugReportFieldRequiredTemplateConstant, ErrInvalidBugReport, bugReportActionsFieldConstant)
	}
	for actionIndex, action := range report.Actions {
		if !action.Valid() {
			return fmt.Errorf("%w: "+bugReportInvalidActionTemplateConstant, ErrInvalidBugReport, actionIndex+1, action.String())
		}
	}
	return nil
}
