package main

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/replayrig/internal/chaos"
	"github.com/temirov/replayrig/internal/session"
)

func TestExitCodeFor(testInstance *testing.T) {
	testCases := []struct {
		name             string
		executionError   error
		expectedExitCode int
	}{
		{name: "generic_error", executionError: errors.New("boom"), expectedExitCode: 1},
		{name: "deterministic_crash", executionError: &session.DeterministicCrash{Cause: session.CrashCauseManual, Message: "DEMO_CRASH: manual crash button clicked"}, expectedExitCode: 1},
		{name: "wrapped_bug_detected", executionError: fmt.Errorf("wrapped: %w", &chaos.BugDetectedError{Detector: "crash"}), expectedExitCode: 2},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subtest *testing.T) {
			require.Equal(subtest, testCase.expectedExitCode, exitCodeFor(testCase.executionError))
		})
	}
}
