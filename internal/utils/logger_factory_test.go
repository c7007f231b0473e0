package utils_test

import (
	"encoding/json"
	"errors"
	"io"
	"os"
	"strings"
	"syscall"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/log2timeline/devtools/internal/utils"
)

// captureStandardError runs emit with os.Stderr redirected and returns what was written.
func captureStandardError(testInstance *testing.T, emit func() *zap.Logger) string {
	testInstance.Helper()

	pipeReader, pipeWriter, pipeError := os.Pipe()
	require.NoError(testInstance, pipeError)

	originalStandardError := os.Stderr
	os.Stderr = pipeWriter
	logger := emit()
	os.Stderr = originalStandardError

	if logger != nil {
		if syncError := logger.Sync(); syncError != nil {
			require.True(testInstance, errors.Is(syncError, syscall.ENOTSUP) || errors.Is(syncError, syscall.EINVAL))
		}
	}
	require.NoError(testInstance, pipeWriter.Close())

	captured, readError := io.ReadAll(pipeReader)
	require.NoError(testInstance, readError)
	require.NoError(testInstance, pipeReader.Close())
	return strings.TrimSpace(string(captured))
}

func TestLoggerFactoryCreateLogger(testInstance *testing.T) {
	testCases := []struct {
		name             string
		logLevel         utils.LogLevel
		logFormat        utils.LogFormat
		expectJSON       bool
		expectDebugEntry bool
	}{
		{name: "debug_structured", logLevel: utils.LogLevelDebug, logFormat: utils.LogFormatStructured, expectJSON: true, expectDebugEntry: true},
		{name: "info_structured", logLevel: utils.LogLevelInfo, logFormat: utils.LogFormatStructured, expectJSON: true},
		{name: "info_console", logLevel: utils.LogLevelInfo, logFormat: utils.LogFormatConsole},
		{name: "debug_console", logLevel: utils.LogLevelDebug, logFormat: utils.LogFormatConsole, expectDebugEntry: true},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			output := captureStandardError(testInstance, func() *zap.Logger {
				logger, creationError := utils.NewLoggerFactory().CreateLogger(testCase.logLevel, testCase.logFormat)
				require.NoError(testInstance, creationError)
				logger.Debug("Prepared build context")
				logger.Info("Updated file", zap.String("file", "config/travis/install.sh"))
				return logger
			})

			lines := strings.Split(output, "\n")
			require.Contains(testInstance, output, "Updated file")
			require.Contains(testInstance, output, "config/travis/install.sh")
			if testCase.expectDebugEntry {
				require.Len(testInstance, lines, 2)
				require.Contains(testInstance, lines[0], "Prepared build context")
			} else {
				require.Len(testInstance, lines, 1)
			}
			for _, line := range lines {
				require.Equal(testInstance, testCase.expectJSON, json.Valid([]byte(line)), line)
			}
		})
	}
}

func TestLoggerFactoryRejectsUnknownSettings(testInstance *testing.T) {
	factory := utils.NewLoggerFactory()

	logger, levelError := factory.CreateLogger(utils.LogLevel("trace"), utils.LogFormatStructured)
	require.Nil(testInstance, logger)
	require.EqualError(testInstance, levelError, "unsupported log level: trace")

	logger, formatError := factory.CreateLogger(utils.LogLevelInfo, utils.LogFormat("xml"))
	require.Nil(testInstance, logger)
	require.EqualError(testInstance, formatError, "unsupported log format: xml")
}

func TestParseLogLevelAndFormat(testInstance *testing.T) {
	parsedLevel, levelError := utils.ParseLogLevel(" DEBUG ")
	require.NoError(testInstance, levelError)
	require.Equal(testInstance, utils.LogLevelDebug, parsedLevel)

	_, invalidLevelError := utils.ParseLogLevel("verbose")
	require.Error(testInstance, invalidLevelError)

	parsedFormat, formatError := utils.ParseLogFormat("Console")
	require.NoError(testInstance, formatError)
	require.Equal(testInstance, utils.LogFormatConsole, parsedFormat)

	_, invalidFormatError := utils.ParseLogFormat("xml")
	require.Error(testInstance, invalidFormatError)

	require.Equal(testInstance, []string{"structured", "console"}, utils.SupportedLogFormats())
}
