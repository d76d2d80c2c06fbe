package chaos_test

import (
	"context"
	"math/rand"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/temirov/replayrig/internal/chaos"
	"github.com/temirov/replayrig/internal/evidence"
	"github.com/temirov/replayrig/internal/session"
	"github.com/temirov/replayrig/internal/workflow"
)

func fixedClock() time.Time {
	return time.Date(2026, time.March, 4, 9, 30, 15, 0, time.UTC)
}

func noSleep(context.Context, time.Duration) error {
	return nil
}

func TestAgentFindsOverloadCrashOnThirdMacro(testInstance *testing.T) {
	observedCore, observedLogs := observer.New(zapcore.InfoLevel)
	artifactsRoot := testInstance.TempDir()
	store, storeError := evidence.NewStore(evidence.OSFileSystem{}, evidence.NewRunContextWithID("run-chaos", artifactsRoot), nil)
	require.NoError(testInstance, storeError)

	agent := chaos.NewAgent(chaos.Dependencies{
		Logger: zap.New(observedCore),
		Store:  store,
		Clock:  fixedClock,
		Sleep:  noSleep,
	})

	result, runError := agent.Run(context.Background(), chaos.Options{Seed: chaos.DefaultSeed, WriteReport: true})
	require.NoError(testInstance, runError)
	require.NotNil(testInstance, result.Report)

	require.Equal(testInstance, []string{"START", "BOOST x7", "FIRE"}, result.ActionsTaken)
	require.Equal(testInstance, "crash", result.Report.Detector)
	require.Equal(testInstance, "exception: DEMO_CRASH: START -> BOOST x7 -> FIRE", result.Report.Reason)
	require.Equal(testInstance, evidence.StateEvidence{State: session.StateCrash, BoostCount: 7, Label: "chaos-trigger"}, result.Report.LastState)
	require.Len(testInstance, result.Report.Actions, 9)
	require.Equal(testInstance, chaos.DefaultSeed, result.Report.Seed)
	require.Equal(testInstance, "run-chaos", result.Report.RunID)

	loaded, loadError := store.LoadBugReport(result.BugReportPath)
	require.NoError(testInstance, loadError)
	require.Equal(testInstance, *result.Report, loaded)

	_, statError := os.Stat(loaded.Evidence.StatePath)
	require.NoError(testInstance, statError)
	_, statError = os.Stat(loaded.Evidence.CoveragePath)
	require.NoError(testInstance, statError)

	require.Equal(testInstance, 1, result.Coverage.TransitionCount(session.StatePlay, session.ActionFire))
	bugEntries := observedLogs.FilterMessage("chaos bug detected").All()
	require.Len(testInstance, bugEntries, 1)
	crashReasons, isList := bugEntries[0].ContextMap()["crash_reasons"].([]interface{})
	require.True(testInstance, isList)
	require.NotEmpty(testInstance, crashReasons)
	require.Equal(testInstance, result.Report.Reason, crashReasons[0])
}

func TestAgentUsesSeedZeroAsGiven(testInstance *testing.T) {
	runWithSeed := func(seed int64) chaos.Result {
		agent := chaos.NewAgent(chaos.Dependencies{Clock: fixedClock, Sleep: noSleep})
		result, runError := agent.Run(context.Background(), chaos.Options{Seed: seed})
		require.NoError(testInstance, runError)
		require.NotNil(testInstance, result.Report)
		return result
	}

	first := runWithSeed(0)
	second := runWithSeed(0)
	require.Equal(testInstance, int64(0), first.Report.Seed)
	require.Equal(testInstance, first.ActionsTaken, second.ActionsTaken)
	require.Equal(testInstance, first.Report.Actions, second.Report.Actions)
	require.Equal(testInstance, chaos.DefaultSeed, runWithSeed(chaos.DefaultSeed).Report.Seed)
}

func TestAgentWithoutReportWritesNothing(testInstance *testing.T) {
	agent := chaos.NewAgent(chaos.Dependencies{Clock: fixedClock, Sleep: noSleep})

	result, runError := agent.Run(context.Background(), chaos.Options{WriteReport: false})
	require.NoError(testInstance, runError)
	require.NotNil(testInstance, result.Report)
	require.Empty(testInstance, result.BugReportPath)
	require.NotEmpty(testInstance, result.RunID)
}

func TestAgentStopsAtStepLimitWithoutBug(testInstance *testing.T) {
	agent := chaos.NewAgent(chaos.Dependencies{Clock: fixedClock, Sleep: noSleep})

	result, runError := agent.Run(context.Background(), chaos.Options{Steps: 2})
	require.NoError(testInstance, runError)
	require.Nil(testInstance, result.Report)
	require.Equal(testInstance, []string{"START", "BOOST x7"}, result.ActionsTaken)
}

func TestAgentDetectsHang(testInstance *testing.T) {
	idleMacros := []chaos.Macro{chaos.NewMacro("IDLE", []workflow.Step{{Action: session.ActionFire, Repeat: 1}})}

	agent := chaos.NewAgent(chaos.Dependencies{Clock: fixedClock, Sleep: noSleep, Macros: idleMacros})
	result, runError := agent.Run(context.Background(), chaos.Options{Steps: 10, MaxSameSnapshotSteps: 3})
	require.NoError(testInstance, runError)
	require.NotNil(testInstance, result.Report)
	require.Equal(testInstance, "hang", result.Report.Detector)
	require.Equal(testInstance, `hang: state "TITLE" (boost x0) repeated 4 steps`, result.Report.Reason)
	require.Len(testInstance, result.ActionsTaken, 4)
}

func TestAgentRequiresStoreForReports(testInstance *testing.T) {
	_, runError := chaos.NewAgent(chaos.Dependencies{}).Run(context.Background(), chaos.Options{WriteReport: true})
	require.ErrorIs(testInstance, runError, chaos.ErrStoreRequired)
}

func TestAgentHonorsCancellation(testInstance *testing.T) {
	cancelledContext, cancel := context.WithCancel(context.Background())
	cancel()

	_, runError := chaos.NewAgent(chaos.Dependencies{Clock: fixedClock}).Run(cancelledContext, chaos.Options{})
	require.ErrorIs(testInstance, runError, context.Canceled)
}

func TestRandomActionIsSeededAndNeverCrashRequest(testInstance *testing.T) {
	randomMacro := chaos.DefaultMacros()[4]
	require.Equal(testInstance, "RANDOM ACTION", randomMacro.Label)

	firstRandom := rand.New(rand.NewSource(13))
	secondRandom := rand.New(rand.NewSource(13))
	for iteration := 0; iteration < 200; iteration++ {
		firstLabel, firstSteps := randomMacro.Plan(firstRandom)
		secondLabel, secondSteps := randomMacro.Plan(secondRandom)
		require.Equal(testInstance, firstLabel, secondLabel)
		require.Equal(testInstance, firstSteps, secondSteps)
		require.NotEqual(testInstance, session.ActionCrashRequest, firstSteps[0].Action)
	}
	require.NotContains(testInstance, chaos.RandomCandidates(), session.ActionCrashRequest)
}
