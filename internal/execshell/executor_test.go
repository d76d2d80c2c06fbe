package execshell_test

import (
	"context"
	"errors"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/temirov/replayrig/internal/execshell"
)

const (
	testIssueEndpointConstant        = "repos/owner/example/issues"
	testStandardErrorConstant        = "HTTP 404: Not Found"
	testMissingExecutableConstant    = "replayrig-missing-executable"
	testStandardInputPayloadConstant = `{"title":"[CRASH] boom"}`
)

type recordingCommandRunner struct {
	executionResult  execshell.ExecutionResult
	executionError   error
	recordedCommands []execshell.ShellCommand
}

func (runner *recordingCommandRunner) Run(executionContext context.Context, command execshell.ShellCommand) (execshell.ExecutionResult, error) {
	runner.recordedCommands = append(runner.recordedCommands, command)
	return runner.executionResult, runner.executionError
}

func TestNewShellExecutorValidation(testInstance *testing.T) {
	testCases := []struct {
		name          string
		logger        *zap.Logger
		runner        execshell.CommandRunner
		expectedError error
	}{
		{name: "missing_logger", runner: &recordingCommandRunner{}, expectedError: execshell.ErrLoggerNotConfigured},
		{name: "missing_runner", logger: zap.NewNop(), expectedError: execshell.ErrCommandRunnerNotConfigured},
		{name: "configured", logger: zap.NewNop(), runner: &recordingCommandRunner{}},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subtest *testing.T) {
			executor, creationError := execshell.NewShellExecutor(testCase.logger, testCase.runner)
			if testCase.expectedError != nil {
				require.ErrorIs(subtest, creationError, testCase.expectedError)
				require.Nil(subtest, executor)
				return
			}
			require.NoError(subtest, creationError)
			require.NotNil(subtest, executor)
		})
	}
}

func TestShellExecutorExecuteGitHubCLI(testInstance *testing.T) {
	testCases := []struct {
		name             string
		runnerResult     execshell.ExecutionResult
		runnerError      error
		expectErrorType  any
		expectedMessage  string
		expectedWarnings int
	}{
		{
			name:         "success",
			runnerResult: execshell.ExecutionResult{StandardOutput: `{"number":7}`},
		},
		{
			name:             "non_zero_exit",
			runnerResult:     execshell.ExecutionResult{StandardError: testStandardErrorConstant + "\n", ExitCode: 1},
			expectErrorType:  execshell.CommandFailedError{},
			expectedMessage:  "gh exited with code 1: " + testStandardErrorConstant,
			expectedWarnings: 1,
		},
		{
			name:             "runner_failure",
			runnerError:      errors.New("fork failed"),
			expectErrorType:  execshell.CommandExecutionError{},
			expectedMessage:  "gh could not be executed: fork failed",
			expectedWarnings: 1,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subtest *testing.T) {
			observerCore, observedLogs := observer.New(zap.DebugLevel)
			runner := &recordingCommandRunner{executionResult: testCase.runnerResult, executionError: testCase.runnerError}

			executor, creationError := execshell.NewShellExecutor(zap.New(observerCore), runner)
			require.NoError(subtest, creationError)

			details := execshell.CommandDetails{
				Arguments:     []string{"api", testIssueEndpointConstant},
				StandardInput: []byte(testStandardInputPayloadConstant),
			}
			executionResult, executionError := executor.ExecuteGitHubCLI(context.Background(), details)

			require.Len(subtest, runner.recordedCommands, 1)
			require.Equal(subtest, execshell.CommandGitHub, runner.recordedCommands[0].Name)
			require.Equal(subtest, details, runner.recordedCommands[0].Details)
			require.Len(subtest, observedLogs.All(), 2)
			require.Equal(subtest, testCase.expectedWarnings, observedLogs.FilterLevelExact(zap.WarnLevel).Len())

			if testCase.expectErrorType == nil {
				require.NoError(subtest, executionError)
				require.Equal(subtest, testCase.runnerResult.StandardOutput, executionResult.StandardOutput)
				return
			}
			require.IsType(subtest, testCase.expectErrorType, executionError)
			require.EqualError(subtest, executionError, testCase.expectedMessage)
			require.Empty(subtest, executionResult.StandardOutput)
		})
	}
}

func TestCommandExecutionErrorUnwraps(testInstance *testing.T) {
	cause := errors.New("permission denied")
	executionError := execshell.CommandExecutionError{Command: execshell.ShellCommand{Name: execshell.CommandGitHub}, Cause: cause}
	require.ErrorIs(testInstance, executionError, cause)
}

func TestOSCommandRunnerReportsMissingExecutable(testInstance *testing.T) {
	runner := execshell.NewOSCommandRunner()

	_, runError := runner.Run(context.Background(), execshell.ShellCommand{Name: testMissingExecutableConstant})
	require.ErrorIs(testInstance, runError, exec.ErrNotFound)
}
