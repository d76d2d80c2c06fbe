package replay_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/temirov/replayrig/internal/chaos"
	"github.com/temirov/replayrig/internal/evidence"
	"github.com/temirov/replayrig/internal/replay"
	"github.com/temirov/replayrig/internal/session"
)

func fixedClock() time.Time {
	return time.Date(2026, time.March, 4, 9, 30, 15, 0, time.UTC)
}

func repeatAction(action session.Action, count int) []session.Action {
	actions := make([]session.Action, 0, count)
	for index := 0; index < count; index++ {
		actions = append(actions, action)
	}
	return actions
}

func overloadActions() []session.Action {
	actions := []session.Action{session.ActionStart}
	actions = append(actions, repeatAction(session.ActionBoost, 7)...)
	return append(actions, session.ActionFire)
}

func TestServiceReplay(testInstance *testing.T) {
	testCases := []struct {
		name               string
		report             evidence.BugReport
		expectedReproduced bool
		expectedObserved   string
	}{
		{
			name: "overload_crash_reproduces",
			report: evidence.BugReport{
				ID: "bug-1", Detector: "crash",
				Reason:  "exception: DEMO_CRASH: START -> BOOST x7 -> FIRE",
				Actions: overloadActions(),
			},
			expectedReproduced: true,
			expectedObserved:   "DEMO_CRASH: START -> BOOST x7 -> FIRE",
		},
		{
			name: "different_crash_does_not_reproduce",
			report: evidence.BugReport{
				ID: "bug-2", Detector: "crash",
				Reason:  "exception: DEMO_CRASH: manual crash button clicked",
				Actions: overloadActions(),
			},
			expectedReproduced: false,
			expectedObserved:   "DEMO_CRASH: START -> BOOST x7 -> FIRE",
		},
		{
			name: "pattern_reason_reproduces_on_any_crash",
			report: evidence.BugReport{
				ID: "bug-3", Detector: "crash",
				Reason:  "journal fatal pattern matched: DEMO_CRASH",
				Actions: []session.Action{session.ActionCrashRequest},
			},
			expectedReproduced: true,
			expectedObserved:   "DEMO_CRASH: manual crash button clicked",
		},
		{
			name: "missing_crash_does_not_reproduce",
			report: evidence.BugReport{
				ID: "bug-4", Detector: "crash",
				Reason:  "exception: DEMO_CRASH: START -> BOOST x7 -> FIRE",
				Actions: []session.Action{session.ActionStart, session.ActionFire},
			},
			expectedReproduced: false,
			expectedObserved:   "no crash",
		},
		{
			name: "hang_reproduces_in_recorded_snapshot",
			report: evidence.BugReport{
				ID: "bug-5", Detector: "hang",
				Reason:    `hang: state "TITLE" (boost x0) repeated 4 steps`,
				LastState: evidence.StateEvidence{State: session.StateTitle},
				Actions:   repeatAction(session.ActionFire, 4),
			},
			expectedReproduced: true,
			expectedObserved:   "no crash",
		},
		{
			name: "hang_report_that_crashes_does_not_reproduce",
			report: evidence.BugReport{
				ID: "bug-6", Detector: "hang",
				Reason:    `hang: state "TITLE" (boost x0) repeated 4 steps`,
				LastState: evidence.StateEvidence{State: session.StateTitle},
				Actions:   []session.Action{session.ActionCrashRequest},
			},
			expectedReproduced: false,
			expectedObserved:   "DEMO_CRASH: manual crash button clicked",
		},
	}

	service := replay.NewService(nil, fixedClock)
	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subtest *testing.T) {
			verdict, replayError := service.Replay(context.Background(), testCase.report)
			require.NoError(subtest, replayError)
			require.Equal(subtest, testCase.expectedReproduced, verdict.Reproduced)
			require.Equal(subtest, testCase.expectedObserved, verdict.Observed)
		})
	}
}

func TestServiceReplayRejectsBadReports(testInstance *testing.T) {
	service := replay.NewService(nil, fixedClock)

	_, invalidError := service.Replay(context.Background(), evidence.BugReport{ID: "bug", Detector: "crash", Reason: "x"})
	require.ErrorIs(testInstance, invalidError, evidence.ErrInvalidBugReport)

	_, detectorError := service.Replay(context.Background(), evidence.BugReport{
		ID: "bug", Detector: "vision", Reason: "x", Actions: []session.Action{session.ActionStart},
	})
	require.ErrorContains(testInstance, detectorError, `unsupported detector "vision"`)
}

func TestServiceReplayRejectsNonCanonicalActions(testInstance *testing.T) {
	testCases := []struct {
		name    string
		actions []session.Action
	}{
		{name: "alias", actions: []session.Action{"crash"}},
		{name: "lowercase", actions: []session.Action{"start", "boost", "fire"}},
		{name: "hyphenated", actions: []session.Action{"crash-request"}},
	}

	service := replay.NewService(nil, fixedClock)
	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subtest *testing.T) {
			report := evidence.BugReport{ID: "bug", Detector: "crash", Reason: "journal fatal pattern matched: DEMO_CRASH", Actions: testCase.actions}
			require.ErrorIs(subtest, report.Validate(), evidence.ErrInvalidBugReport)

			_, replayError := service.Replay(context.Background(), report)
			require.ErrorIs(subtest, replayError, evidence.ErrInvalidBugReport)
			require.NotContains(subtest, replayError.Error(), "replay failed")
		})
	}
}

func TestChaosReportReplays(testInstance *testing.T) {
	agent := chaos.NewAgent(chaos.Dependencies{
		Clock: fixedClock,
		Sleep: func(context.Context, time.Duration) error { return nil },
	})
	result, runError := agent.Run(context.Background(), chaos.Options{Seed: 99})
	require.NoError(testInstance, runError)
	require.NotNil(testInstance, result.Report)

	verdict, replayError := replay.NewService(nil, fixedClock).Replay(context.Background(), *result.Report)
	require.NoError(testInstance, replayError)
	require.True(testInstance, verdict.Reproduced)
	require.Equal(testInstance, session.Snapshot{State: session.StateCrash, BoostCount: 7}, verdict.Snapshot)
	require.Equal(testInstance, 9, verdict.ActionsExecuted)
}
