package workflow_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/temirov/replayrig/internal/session"
	"github.com/temirov/replayrig/internal/workflow"
)

func newTestSession() *session.Session {
	fixedTime := time.Date(2026, time.March, 4, 9, 30, 15, 0, time.UTC)
	return session.NewSession(session.Options{Clock: func() time.Time { return fixedTime }})
}

func TestExecutorStopsAtOverloadCrash(testInstance *testing.T) {
	observedCore, observedLogs := observer.New(zapcore.DebugLevel)
	targetSession := newTestSession()

	var dispatched []session.Action
	executor, executorError := workflow.NewExecutor(targetSession, workflow.Dependencies{
		Logger:         zap.New(observedCore),
		ActionListener: func(outcome session.Outcome) { dispatched = append(dispatched, outcome.Action) },
	})
	require.NoError(testInstance, executorError)

	steps, parseError := workflow.ParseArguments([]string{"START", "BOOST*7", "FIRE", "RESET"})
	require.NoError(testInstance, parseError)

	result, executeError := executor.Execute(context.Background(), steps)
	require.Error(testInstance, executeError)
	require.ErrorContains(testInstance, executeError, "workflow step 3 (FIRE) crashed")

	crash, isCrash := session.AsDeterministicCrash(executeError)
	require.True(testInstance, isCrash)
	require.Equal(testInstance, session.CrashCauseOverload, crash.Cause)
	require.Equal(testInstance, "DEMO_CRASH: START -> BOOST x7 -> FIRE", crash.Error())

	require.Same(testInstance, crash, result.Crash)
	require.Equal(testInstance, 3, result.StepsExecuted)
	require.Equal(testInstance, 9, result.ActionsExecuted)
	require.Equal(testInstance, session.StateCrash, result.Snapshot.State)
	require.Len(testInstance, dispatched, 9)
	require.Equal(testInstance, session.ActionFire, dispatched[8])
	require.Equal(testInstance, 1, observedLogs.FilterMessage("workflow step crashed").Len())

	stateChanges := observedLogs.FilterMessage("workflow state changed").All()
	require.Len(testInstance, stateChanges, 2)
	require.Equal(testInstance, map[string]interface{}{"step": int64(1), "previous_state": "TITLE", "state": "PLAY"}, stateChanges[0].ContextMap())
	require.Equal(testInstance, map[string]interface{}{"step": int64(3), "previous_state": "PLAY", "state": "CRASH"}, stateChanges[1].ContextMap())
}

func TestExecutorCompletesWithoutCrash(testInstance *testing.T) {
	executor, executorError := workflow.NewExecutor(newTestSession(), workflow.Dependencies{})
	require.NoError(testInstance, executorError)

	steps, parseError := workflow.ParseArguments([]string{"START", "BOOST*3", "FIRE", "BACK"})
	require.NoError(testInstance, parseError)

	result, executeError := executor.Execute(context.Background(), steps)
	require.NoError(testInstance, executeError)
	require.Nil(testInstance, result.Crash)
	require.Equal(testInstance, 4, result.StepsExecuted)
	require.Equal(testInstance, 6, result.ActionsExecuted)
	require.Equal(testInstance, session.Snapshot{State: session.StateTitle, BoostCount: 3}, result.Snapshot)
}

func TestExecutorHonorsCancellation(testInstance *testing.T) {
	targetSession := newTestSession()
	executor, executorError := workflow.NewExecutor(targetSession, workflow.Dependencies{})
	require.NoError(testInstance, executorError)

	cancelledContext, cancel := context.WithCancel(context.Background())
	cancel()

	result, executeError := executor.Execute(cancelledContext, []workflow.Step{{Action: session.ActionStart, Repeat: 1}})
	require.ErrorIs(testInstance, executeError, context.Canceled)
	require.Equal(testInstance, 0, result.ActionsExecuted)
	require.Equal(testInstance, session.StateTitle, targetSession.State())
}

func TestExecutorReportsAbortedSession(testInstance *testing.T) {
	targetSession := newTestSession()
	_, crashError := targetSession.Dispatch(session.ActionCrashRequest)
	require.Error(testInstance, crashError)

	executor, executorError := workflow.NewExecutor(targetSession, workflow.Dependencies{})
	require.NoError(testInstance, executorError)

	result, executeError := executor.Execute(context.Background(), []workflow.Step{{Action: session.ActionReset, Repeat: 1}})
	require.ErrorIs(testInstance, executeError, session.ErrSessionAborted)
	require.ErrorContains(testInstance, executeError, "workflow step 1 (RESET) failed")
	require.Equal(testInstance, 0, result.ActionsExecuted)
}

func TestNewExecutorRequiresSession(testInstance *testing.T) {
	_, executorError := workflow.NewExecutor(nil, workflow.Dependencies{})
	require.ErrorIs(testInstance, executorError, workflow.ErrSessionRequired)
}
