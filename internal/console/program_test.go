package console_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/temirov/replayrig/internal/console"
	"github.com/temirov/replayrig/internal/session"
)

func TestRunLogsSessionEnd(testInstance *testing.T) {
	testCases := []struct {
		name                  string
		input                 string
		expectCrash           bool
		expectedState         string
		expectedQuitRequested bool
	}{
		{name: "quit_from_title", input: "q", expectedState: "TITLE", expectedQuitRequested: true},
		{name: "manual_crash", input: "x", expectCrash: true, expectedState: "CRASH", expectedQuitRequested: false},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subtest *testing.T) {
			observerCore, observedLogs := observer.New(zap.DebugLevel)

			runError := console.Run(context.Background(), console.Options{
				Logger: zap.New(observerCore),
				Clock:  fixedClock,
				Input:  strings.NewReader(testCase.input),
				Output: &bytes.Buffer{},
			})
			if testCase.expectCrash {
				_, isCrash := session.AsDeterministicCrash(runError)
				require.True(subtest, isCrash)
			} else {
				require.NoError(subtest, runError)
			}

			endedEntries := observedLogs.FilterMessage("console session ended").All()
			require.Len(subtest, endedEntries, 1)
			fields := endedEntries[0].ContextMap()
			require.Equal(subtest, testCase.expectedState, fields["state"])
			require.Equal(subtest, testCase.expectedQuitRequested, fields["quit_requested"])
		})
	}
}
