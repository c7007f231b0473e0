package execshell_test

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/log2timeline/devtools/internal/execshell"
)

func TestOSCommandRunnerRun(testInstance *testing.T) {
	if _, lookupError := exec.LookPath("sh"); lookupError != nil {
		testInstance.Skip("sh is not available")
	}

	testCases := []struct {
		name             string
		script           string
		standardInput    string
		environment      map[string]string
		expectedOutput   string
		expectedExitCode int
	}{
		{
			name:           "standard_input_is_forwarded",
			script:         "cat",
			standardInput:  "Dockerfile contents",
			expectedOutput: "Dockerfile contents",
		},
		{
			name:           "environment_is_merged",
			script:         "printf '%s' \"$COLUMNS\"",
			environment:    map[string]string{"COLUMNS": "120"},
			expectedOutput: "120",
		},
		{
			name:             "exit_code_is_reported",
			script:           "exit 3",
			expectedExitCode: 3,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			var streamedOutput bytes.Buffer
			details := execshell.CommandDetails{
				Arguments:            []string{"-c", testCase.script},
				EnvironmentVariables: testCase.environment,
				OutputWriter:         &streamedOutput,
			}
			if len(testCase.standardInput) > 0 {
				details.StandardInput = strings.NewReader(testCase.standardInput)
			}

			result, runError := execshell.NewOSCommandRunner().Run(context.Background(), execshell.ShellCommand{Name: execshell.CommandName("sh"), Details: details})
			require.NoError(testInstance, runError)
			require.Equal(testInstance, testCase.expectedExitCode, result.ExitCode)
			require.Empty(testInstance, result.StandardOutput)
			require.Equal(testInstance, testCase.expectedOutput, streamedOutput.String())
		})
	}
}

func TestOSCommandRunnerBuffersOutputWithoutWriter(testInstance *testing.T) {
	if _, lookupError := exec.LookPath("sh"); lookupError != nil {
		testInstance.Skip("sh is not available")
	}

	result, runError := execshell.NewOSCommandRunner().Run(context.Background(), execshell.ShellCommand{
		Name:    execshell.CommandName("sh"),
		Details: execshell.CommandDetails{Arguments: []string{"-c", "printf 'sha256:abc'; printf 'warning' >&2"}},
	})
	require.NoError(testInstance, runError)
	require.Equal(testInstance, "sha256:abc", result.StandardOutput)
	require.Equal(testInstance, "warning", result.StandardError)
}

func TestOSCommandRunnerKeepsStandardErrorTailWhenStreaming(testInstance *testing.T) {
	if _, lookupError := exec.LookPath("sh"); lookupError != nil {
		testInstance.Skip("sh is not available")
	}

	script := "head -c 100000 /dev/zero | tr '\\0' 'a' >&2; printf 'failed' >&2; exit 1"
	var streamedOutput bytes.Buffer
	result, runError := execshell.NewOSCommandRunner().Run(context.Background(), execshell.ShellCommand{
		Name: execshell.CommandName("sh"),
		Details: execshell.CommandDetails{
			Arguments:    []string{"-c", script},
			OutputWriter: &streamedOutput,
		},
	})
	require.NoError(testInstance, runError)
	require.Equal(testInstance, 1, result.ExitCode)
	require.Equal(testInstance, 100006, streamedOutput.Len())
	require.Len(testInstance, result.StandardError, 64*1024)
	require.True(testInstance, strings.HasSuffix(result.StandardError, "afailed"))
}
