package workflow_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	workflowcmd "github.com/temirov/replayrig/cmd/cli/workflow"
	"github.com/temirov/replayrig/internal/session"
)

const (
	testScriptFileNameConstant = "script.yaml"
	testCrashScriptConstant    = "steps:\n  - action: START\n  - action: BOOST\n    with:\n      repeat: 7\n  - action: FIRE\n"
)

func fixedClock() time.Time {
	return time.Date(2026, time.March, 4, 9, 30, 15, 0, time.UTC)
}

func executeRunCommand(testInstance *testing.T, builder workflowcmd.CommandBuilder, arguments ...string) (string, error) {
	testInstance.Helper()
	builder.Clock = fixedClock
	if arguments == nil {
		arguments = []string{}
	}
	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)

	var output bytes.Buffer
	command.SetOut(&output)
	command.SetErr(&output)
	command.SetArgs(arguments)
	command.SetContext(context.Background())
	executeError := command.Execute()
	return output.String(), executeError
}

func TestRunCommandPrintsJournalForArguments(testInstance *testing.T) {
	output, executeError := executeRunCommand(testInstance, workflowcmd.CommandBuilder{}, "START", "BOOST*2", "FIRE")
	require.NoError(testInstance, executeError)

	expected := strings.Join([]string{
		"[09:30:15] Booted",
		"[09:30:15] RESET",
		"[09:30:15] STATE -> TITLE",
		"[09:30:15] STATE -> PLAY",
		"[09:30:15] BOOST x1",
		"[09:30:15] BOOST x2",
		"[09:30:15] FIRE",
		"[09:30:15] Nothing happened... (try BOOST x7)",
	}, "\n") + "\n"
	require.Equal(testInstance, expected, output)
}

func TestRunCommandScriptCrashPropagates(testInstance *testing.T) {
	scriptPath := filepath.Join(testInstance.TempDir(), testScriptFileNameConstant)
	require.NoError(testInstance, os.WriteFile(scriptPath, []byte(testCrashScriptConstant), 0o600))

	observedCore, observedLogs := observer.New(zapcore.InfoLevel)
	builder := workflowcmd.CommandBuilder{
		LoggerProvider: func() *zap.Logger { return zap.New(observedCore) },
	}

	output, executeError := executeRunCommand(testInstance, builder, "--script", scriptPath)
	crash, isCrash := session.AsDeterministicCrash(executeError)
	require.True(testInstance, isCrash)
	require.Equal(testInstance, session.CrashCauseOverload, crash.Cause)
	require.Contains(testInstance, output, "[09:30:15] STATE -> CRASH")
	require.Equal(testInstance, 1, observedLogs.FilterMessage("run completed").Len())
	require.Equal(testInstance, 1, observedLogs.FilterLevelExact(zapcore.ErrorLevel).Len())
}

func TestRunCommandLogsPlannedAndExecutedActions(testInstance *testing.T) {
	observedCore, observedLogs := observer.New(zapcore.InfoLevel)
	builder := workflowcmd.CommandBuilder{
		LoggerProvider: func() *zap.Logger { return zap.New(observedCore) },
	}

	_, executeError := executeRunCommand(testInstance, builder, "START", "BOOST*7", "FIRE", "RESET")
	_, isCrash := session.AsDeterministicCrash(executeError)
	require.True(testInstance, isCrash)

	completedEntries := observedLogs.FilterMessage("run completed").All()
	require.Len(testInstance, completedEntries, 1)
	fields := completedEntries[0].ContextMap()
	require.Equal(testInstance, int64(10), fields["actions_planned"])
	require.Equal(testInstance, int64(9), fields["actions_executed"])
	require.Equal(testInstance, "CRASH", fields["state"])
}

func TestRunCommandUsesConfiguredScript(testInstance *testing.T) {
	scriptPath := filepath.Join(testInstance.TempDir(), testScriptFileNameConstant)
	require.NoError(testInstance, os.WriteFile(scriptPath, []byte("steps:\n  - action: START\n"), 0o600))

	builder := workflowcmd.CommandBuilder{
		ConfigurationProvider: func() workflowcmd.CommandConfiguration {
			return workflowcmd.CommandConfiguration{Script: "  " + scriptPath + "  "}
		},
	}

	output, executeError := executeRunCommand(testInstance, builder)
	require.NoError(testInstance, executeError)
	require.True(testInstance, strings.HasSuffix(output, "[09:30:15] STATE -> PLAY\n"))
}

func TestRunCommandArgumentErrors(testInstance *testing.T) {
	scriptPath := filepath.Join(testInstance.TempDir(), testScriptFileNameConstant)
	require.NoError(testInstance, os.WriteFile(scriptPath, []byte(testCrashScriptConstant), 0o600))

	testCases := []struct {
		name           string
		arguments      []string
		errorSubstring string
	}{
		{name: "nothing_to_run", arguments: nil, errorSubstring: "run requires actions or --script"},
		{name: "both_sources", arguments: []string{"--script", scriptPath, "START"}, errorSubstring: "not both"},
		{name: "unknown_action", arguments: []string{"JUMP"}, errorSubstring: "unable to parse actions"},
		{name: "missing_script", arguments: []string{"--script", filepath.Join(testInstance.TempDir(), "absent.yaml")}, errorSubstring: "unable to load workflow script"},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subtest *testing.T) {
			_, executeError := executeRunCommand(subtest, workflowcmd.CommandBuilder{}, testCase.arguments...)
			require.ErrorContains(subtest, executeError, testCase.errorSubstring)
		})
	}
}

func TestDefaultConfigurationValues(testInstance *testing.T) {
	require.Equal(testInstance, map[string]any{"tools.run.script": ""}, workflowcmd.DefaultConfigurationValues("tools.run"))
}
