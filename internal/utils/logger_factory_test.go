package utils_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/replayrig/internal/utils"
)

const (
	testLogMessageConstant        = "logger_factory_test_message"
	testLogFileNameConstant       = "replayrig.log"
	testInvalidLogLevelConstant   = "verbose"
	testInvalidLogFormatConstant  = "xml"
	testStructuredMessageKeyConst = "msg"
)

func TestLoggerFactoryCreateFileLoggerWritesEntries(testInstance *testing.T) {
	testCases := []struct {
		name             string
		logLevel         utils.LogLevel
		logFormat        utils.LogFormat
		expectStructured bool
	}{
		{name: "structured_info", logLevel: utils.LogLevelInfo, logFormat: utils.LogFormatStructured, expectStructured: true},
		{name: "console_debug", logLevel: utils.LogLevelDebug, logFormat: utils.LogFormatConsole, expectStructured: false},
		{name: "mixed_case_names", logLevel: utils.LogLevel("INFO"), logFormat: utils.LogFormat(" Structured "), expectStructured: true},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subtest *testing.T) {
			logFilePath := filepath.Join(subtest.TempDir(), testLogFileNameConstant)

			logger, creationError := utils.NewLoggerFactory().CreateFileLogger(testCase.logLevel, testCase.logFormat, logFilePath)
			require.NoError(subtest, creationError)

			logger.Info(testLogMessageConstant)
			_ = logger.Sync()

			contents, readError := os.ReadFile(logFilePath)
			require.NoError(subtest, readError)
			require.Contains(subtest, string(contents), testLogMessageConstant)

			firstLine := strings.SplitN(strings.TrimSpace(string(contents)), "\n", 2)[0]
			var decoded map[string]any
			decodeError := json.Unmarshal([]byte(firstLine), &decoded)
			if testCase.expectStructured {
				require.NoError(subtest, decodeError)
				require.Equal(subtest, testLogMessageConstant, decoded[testStructuredMessageKeyConst])
			} else {
				require.Error(subtest, decodeError)
			}
		})
	}
}

func TestLoggerFactoryRejectsUnsupportedSettings(testInstance *testing.T) {
	factory := utils.NewLoggerFactory()

	_, levelError := factory.CreateLogger(utils.LogLevel(testInvalidLogLevelConstant), utils.LogFormatStructured)
	require.ErrorContains(testInstance, levelError, testInvalidLogLevelConstant)

	_, formatError := factory.CreateLogger(utils.LogLevelInfo, utils.LogFormat(testInvalidLogFormatConstant))
	require.ErrorContains(testInstance, formatError, testInvalidLogFormatConstant)
}

func TestLoggerFactoryCreateFileLoggerRequiresPath(testInstance *testing.T) {
	_, creationError := utils.NewLoggerFactory().CreateFileLogger(utils.LogLevelInfo, utils.LogFormatConsole, "  ")
	require.ErrorIs(testInstance, creationError, utils.ErrLogFilePathRequired)
}

func TestLoggerFactoryCreateLoggerSucceedsForEverySupportedPair(testInstance *testing.T) {
	factory := utils.NewLoggerFactory()
	for _, level := range utils.SupportedLogLevels() {
		for _, format := range utils.SupportedLogFormats() {
			logger, creationError := factory.CreateLogger(utils.LogLevel(level), utils.LogFormat(format))
			require.NoError(testInstance, creationError, "%s/%s", level, format)
			require.NotNil(testInstance, logger)
		}
	}
}
