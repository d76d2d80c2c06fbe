package issues_test

import (
	"fmt"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/replayrig/internal/evidence"
	"github.com/temirov/replayrig/internal/issues"
	"github.com/temirov/replayrig/internal/session"
)

const testOverloadReasonConstant = "exception: DEMO_CRASH: START -> BOOST x7 -> FIRE"

func overloadReport() evidence.BugReport {
	return evidence.BugReport{
		ID:         "bug-1",
		RunID:      "run-1",
		Detector:   "crash",
		Reason:     testOverloadReasonConstant,
		LastState:  evidence.StateEvidence{State: session.StateCrash, BoostCount: 7, Label: "chaos-trigger"},
		ReproSteps: []string{"START", "BOOST x7", "FIRE"},
		Actions:    []session.Action{session.ActionStart, session.ActionBoost, session.ActionFire},
		Journal:    []string{"[09:30:15] Booted", "[09:30:15] STATE -> CRASH"},
		Evidence:   evidence.BugEvidence{StatePath: "/artifacts/run-1/chaos-trigger-state.json", CoveragePath: "/artifacts/coverage/run-1.json"},
		Seed:       13,
	}
}

func TestRenderOverloadReport(testInstance *testing.T) {
	coverage := evidence.NewCoverage()
	coverage.ObserveState(session.StateTitle)
	coverage.ObserveOutcome(session.Outcome{Action: session.ActionStart, Previous: session.Snapshot{State: session.StateTitle}, Next: session.Snapshot{State: session.StatePlay}})

	draft := issues.Render(overloadReport(), issues.Attachments{ReportPath: "/artifacts/bugs/bug-1.json", Coverage: coverage})

	require.Equal(testInstance, "[CRASH] "+testOverloadReasonConstant, draft.Title)
	expectedSections := []string{
		"## Summary\n- Detector: `crash`\n- Reason: " + testOverloadReasonConstant + "\n- Bug ID: `bug-1`\n- Run ID: `run-1`\n- Seed: 13\n- Actions dispatched: 3\n\n",
		"## Steps to Reproduce\n1. START\n2. BOOST x7\n3. FIRE\n\nReplay with `replayrig replay /artifacts/bugs/bug-1.json`.\n\n",
		"## Actual Behavior\n" + testOverloadReasonConstant + "\nLast state: CRASH (boost x7)\n\n",
		"## Evidence\n- bug report: /artifacts/bugs/bug-1.json\n- state: /artifacts/run-1/chaos-trigger-state.json\n- coverage: /artifacts/coverage/run-1.json (2/3 states, 1 actions)\n",
		"### Journal\n```\n[09:30:15] Booted\n[09:30:15] STATE -> CRASH\n```\n\n",
		fmt.Sprintf("## Environment\n- Runtime: replayrig on %s/%s\n- Run ID: `run-1`\n", runtime.GOOS, runtime.GOARCH),
	}
	for _, expectedSection := range expectedSections {
		require.Contains(testInstance, draft.Body, expectedSection)
	}
	require.True(testInstance, strings.HasSuffix(draft.Body, "`run-1`\n"))
}

func TestRenderFallbacks(testInstance *testing.T) {
	testCases := []struct {
		name          string
		report        evidence.BugReport
		expectedTitle string
		expectedBody  []string
	}{
		{
			name:          "hang_without_evidence",
			report:        evidence.BugReport{ID: "bug-2", Detector: "hang", Reason: `hang: state "TITLE" (boost x0) repeated 9 steps`, Actions: []session.Action{session.ActionFire}},
			expectedTitle: `[HANG] hang: state "TITLE" (boost x0) repeated 9 steps`,
			expectedBody:  []string{"1. Reproduction steps unavailable\n", "## Evidence\n- No evidence provided\n", "- Run ID: `unknown-run`"},
		},
		{
			name:          "long_reason_is_truncated",
			report:        evidence.BugReport{ID: "bug-3", Detector: "crash", Reason: strings.Repeat("x", 100)},
			expectedTitle: "[CRASH] " + strings.Repeat("x", 80) + "...",
			expectedBody:  []string{"- Reason: " + strings.Repeat("x", 100) + "\n"},
		},
		{
			name:          "blank_detector_and_reason",
			report:        evidence.BugReport{ID: "bug-4"},
			expectedTitle: "[BUG] Unexpected behavior",
			expectedBody:  []string{"- Detector: `bug`\n"},
		},
		{
			name:          "coverage_path_without_loaded_coverage",
			report:        evidence.BugReport{ID: "bug-5", Detector: "crash", Reason: "boom", Evidence: evidence.BugEvidence{CoveragePath: "/tmp/coverage.json"}},
			expectedTitle: "[CRASH] boom",
			expectedBody:  []string{"- coverage: /tmp/coverage.json\n"},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subtest *testing.T) {
			draft := issues.Render(testCase.report, issues.Attachments{})
			require.Equal(subtest, testCase.expectedTitle, draft.Title)
			for _, expectedFragment := range testCase.expectedBody {
				require.Contains(subtest, draft.Body, expectedFragment)
			}
			require.NotContains(subtest, draft.Body, "Replay with")
		})
	}
}
