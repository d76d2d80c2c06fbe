package workflow_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/replayrig/internal/workflow"
)

const (
	testScriptFileNameConstant   = "script.yaml"
	testTopLevelScriptConstant   = "steps:\n  - action: START\n  - action: BOOST\n    with:\n      repeat: 7\n  - action: FIRE\n"
	testWrappedScriptConstant    = "workflow:\n  steps:\n    - action: start\n    - action: crash\n"
	testMissingActionConstant    = "steps:\n  - action: START\n  - with:\n      repeat: 2\n"
	testUnknownFieldConstant     = "steps:\n  - action: START\n    operation: BOOST\n"
	testEmptyStepsScriptConstant = "steps: []\n"
)

func TestParseConfiguration(testInstance *testing.T) {
	testCases := []struct {
		name            string
		content         string
		expectedActions []string
		expectedError   error
		errorSubstring  string
	}{
		{name: "top_level_steps", content: testTopLevelScriptConstant, expectedActions: []string{"START", "BOOST", "FIRE"}},
		{name: "workflow_wrapper", content: testWrappedScriptConstant, expectedActions: []string{"start", "crash"}},
		{name: "empty_document", content: "", expectedError: workflow.ErrEmptyConfiguration},
		{name: "empty_steps", content: testEmptyStepsScriptConstant, expectedError: workflow.ErrEmptyConfiguration},
		{name: "missing_action", content: testMissingActionConstant, errorSubstring: "step 2 missing action"},
		{name: "unknown_field", content: testUnknownFieldConstant, errorSubstring: "failed to parse workflow configuration"},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subtest *testing.T) {
			configuration, parseError := workflow.ParseConfiguration([]byte(testCase.content))
			switch {
			case testCase.expectedError != nil:
				require.ErrorIs(subtest, parseError, testCase.expectedError)
			case len(testCase.errorSubstring) > 0:
				require.ErrorContains(subtest, parseError, testCase.errorSubstring)
			default:
				require.NoError(subtest, parseError)
				actions := make([]string, 0, len(configuration.Steps))
				for _, step := range configuration.Steps {
					actions = append(actions, step.Action)
				}
				require.Equal(subtest, testCase.expectedActions, actions)
			}
		})
	}
}

func TestLoadConfiguration(testInstance *testing.T) {
	scriptPath := filepath.Join(testInstance.TempDir(), testScriptFileNameConstant)
	require.NoError(testInstance, os.WriteFile(scriptPath, []byte(testTopLevelScriptConstant), 0o600))

	configuration, loadError := workflow.LoadConfiguration(scriptPath)
	require.NoError(testInstance, loadError)
	require.Len(testInstance, configuration.Steps, 3)
	require.Equal(testInstance, 7, configuration.Steps[1].Options["repeat"])

	_, blankError := workflow.LoadConfiguration("  ")
	require.ErrorIs(testInstance, blankError, workflow.ErrConfigurationPathRequired)

	_, missingError := workflow.LoadConfiguration(filepath.Join(testInstance.TempDir(), "absent.yaml"))
	require.ErrorIs(testInstance, missingError, os.ErrNotExist)
}
