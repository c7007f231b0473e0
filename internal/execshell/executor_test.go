package execshell_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/log2timeline/devtools/internal/execshell"
)

const (
	testWorkingDirectoryConstant = "/src/plaso"
	testStandardErrorConstant    = "error: invalid command 'bdist_rpm'"
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

type recordingEventObserver struct {
	events []string
}

func (eventObserver *recordingEventObserver) CommandStarted(execshell.ShellCommand) {
	eventObserver.events = append(eventObserver.events, "started")
}

func (eventObserver *recordingEventObserver) CommandCompleted(execshell.ShellCommand, execshell.ExecutionResult) {
	eventObserver.events = append(eventObserver.events, "completed")
}

func (eventObserver *recordingEventObserver) CommandExecutionFailed(execshell.ShellCommand, error) {
	eventObserver.events = append(eventObserver.events, "execution_failed")
}

func TestShellExecutorInitializationValidation(testInstance *testing.T) {
	testCases := []struct {
		name        string
		logger      *zap.Logger
		runner      execshell.CommandRunner
		expectError error
	}{
		{
			name:        "logger_validation",
			runner:      &recordingCommandRunner{},
			expectError: execshell.ErrLoggerNotConfigured,
		},
		{
			name:        "runner_validation",
			logger:      zap.NewNop(),
			expectError: execshell.ErrCommandRunnerNotConfigured,
		},
		{
			name:   "successful_initialization",
			logger: zap.NewNop(),
			runner: &recordingCommandRunner{},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			executor, creationError := execshell.NewShellExecutor(testCase.logger, testCase.runner)
			if testCase.expectError != nil {
				require.ErrorIs(testInstance, creationError, testCase.expectError)
				require.Nil(testInstance, executor)
				return
			}
			require.NoError(testInstance, creationError)
			require.NotNil(testInstance, executor)
		})
	}
}

func TestShellExecutorExecuteBehavior(testInstance *testing.T) {
	testCases := []struct {
		name             string
		runnerResult     execshell.ExecutionResult
		runnerError      error
		expectErrorType  any
		expectedEvents   []string
		expectedLogCount int
	}{
		{
			name:             "success",
			runnerResult:     execshell.ExecutionResult{StandardOutput: "writing 'dist/plaso.spec'"},
			expectedEvents:   []string{"started", "completed"},
			expectedLogCount: 2,
		},
		{
			name:             "failure_exit_code",
			runnerResult:     execshell.ExecutionResult{StandardError: testStandardErrorConstant, ExitCode: 1},
			expectErrorType:  execshell.CommandFailedError{},
			expectedEvents:   []string{"started", "completed"},
			expectedLogCount: 2,
		},
		{
			name:             "runner_error",
			runnerError:      errors.New("executable file not found in $PATH"),
			expectErrorType:  execshell.CommandExecutionError{},
			expectedEvents:   []string{"started", "execution_failed"},
			expectedLogCount: 2,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			observerCore, observedLogs := observer.New(zap.DebugLevel)
			eventObserver := &recordingEventObserver{}
			runner := &recordingCommandRunner{executionResult: testCase.runnerResult, executionError: testCase.runnerError}

			executor, creationError := execshell.NewShellExecutor(zap.New(observerCore), runner, execshell.WithCommandEventObserver(eventObserver))
			require.NoError(testInstance, creationError)

			details := execshell.CommandDetails{Arguments: []string{"setup.py", "bdist_rpm", "--spec-only"}, WorkingDirectory: testWorkingDirectoryConstant}
			result, executionError := executor.ExecutePython(context.Background(), details)

			if testCase.expectErrorType != nil {
				require.Error(testInstance, executionError)
				require.IsType(testInstance, testCase.expectErrorType, executionError)
				require.Empty(testInstance, result.StandardOutput)
			} else {
				require.NoError(testInstance, executionError)
				require.Equal(testInstance, testCase.runnerResult.StandardOutput, result.StandardOutput)
			}

			require.Equal(testInstance, testCase.expectedEvents, eventObserver.events)
			require.Len(testInstance, observedLogs.All(), testCase.expectedLogCount)
		})
	}
}

func TestCommandErrorsDescribeFailure(testInstance *testing.T) {
	failedError := execshell.CommandFailedError{
		Command: execshell.ShellCommand{Name: execshell.CommandDocker},
		Result:  execshell.ExecutionResult{ExitCode: 125, StandardError: "Cannot connect to the Docker daemon\n"},
	}
	require.Equal(testInstance, "docker exited with code 125: Cannot connect to the Docker daemon", failedError.Error())

	cause := errors.New("permission denied")
	executionError := execshell.CommandExecutionError{Command: execshell.ShellCommand{Name: execshell.CommandGit}, Cause: cause}
	require.ErrorIs(testInstance, executionError, cause)
	require.Contains(testInstance, executionError.Error(), "git could not be executed")
}

func TestShellExecutorWrappersSetCommandNames(testInstance *testing.T) {
	testCases := []struct {
		name            string
		invoke          func(executor *execshell.ShellExecutor) error
		expectedCommand execshell.CommandName
	}{
		{
			name: "git_wrapper",
			invoke: func(executor *execshell.ShellExecutor) error {
				_, executionError := executor.ExecuteGit(context.Background(), execshell.CommandDetails{})
				return executionError
			},
			expectedCommand: execshell.CommandGit,
		},
		{
			name: "docker_wrapper",
			invoke: func(executor *execshell.ShellExecutor) error {
				_, executionError := executor.ExecuteDocker(context.Background(), execshell.CommandDetails{})
				return executionError
			},
			expectedCommand: execshell.CommandDocker,
		},
		{
			name: "python_wrapper",
			invoke: func(executor *execshell.ShellExecutor) error {
				_, executionError := executor.ExecutePython(context.Background(), execshell.CommandDetails{})
				return executionError
			},
			expectedCommand: execshell.CommandPython,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			runner := &recordingCommandRunner{executionResult: execshell.ExecutionResult{ExitCode: 1}}
			executor, creationError := execshell.NewShellExecutor(zap.NewNop(), runner)
			require.NoError(testInstance, creationError)

			require.Error(testInstance, testCase.invoke(executor))
			require.Len(testInstance, runner.recordedCommands, 1)
			require.Equal(testInstance, testCase.expectedCommand, runner.recordedCommands[0].Name)
		})
	}
}
