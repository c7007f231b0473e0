package execshell

import (
	"context"
	"strings"

	"go.uber.org/zap"
)

const (
	logFieldCommandConstant          = "command"
	logFieldArgumentsConstant        = "arguments"
	logFieldWorkingDirectoryConstant = "working_directory"
	logFieldExitCodeConstant         = "exit_code"
	logFieldStandardErrorConstant    = "stderr"
)

// ShellExecutorOption customizes a ShellExecutor.
type ShellExecutorOption func(*ShellExecutor)

// WithCommandEventObserver registers an observer notified about every command.
func WithCommandEventObserver(observer CommandEventObserver) ShellExecutorOption {
	return func(executor *ShellExecutor) {
		if observer != nil {
			executor.observer = observer
		}
	}
}

// ShellExecutor runs commands through a CommandRunner and logs their lifecycle.
type ShellExecutor struct {
	logger    *zap.Logger
	runner    CommandRunner
	observer  CommandEventObserver
	formatter CommandMessageFormatter
}

// NewShellExecutor validates dependencies and constructs a ShellExecutor.
func NewShellExecutor(logger *zap.Logger, runner CommandRunner, options ...ShellExecutorOption) (*ShellExecutor, error) {
	if logger == nil {
		return nil, ErrLoggerNotConfigured
	}
	if runner == nil {
		return nil, ErrCommandRunnerNotConfigured
	}

	executor := &ShellExecutor{
		logger:   logger,
		runner:   runner,
		observer: noopCommandEventObserver{},
	}
	for _, option := range options {
		option(executor)
	}
	return executor, nil
}

// Execute runs the command. A non-zero exit is returned as CommandFailedError
// and a runner failure as CommandExecutionError.
func (executor *ShellExecutor) Execute(executionContext context.Context, command ShellCommand) (ExecutionResult, error) {
	commandFields := []zap.Field{
		zap.String(logFieldCommandConstant, string(command.Name)),
		zap.String(logFieldArgumentsConstant, strings.Join(command.Details.Arguments, " ")),
		zap.String(logFieldWorkingDirectoryConstant, command.Details.WorkingDirectory),
	}

	executor.observer.CommandStarted(command)
	executor.logger.Debug(executor.formatter.BuildStartedMessage(command), commandFields...)

	result, runError := executor.runner.Run(executionContext, command)
	if runError != nil {
		executor.observer.CommandExecutionFailed(command, runError)
		executor.logger.Debug(executor.formatter.BuildExecutionFailureMessage(command, runError), append(commandFields, zap.Error(runError))...)
		return ExecutionResult{}, CommandExecutionError{Command: command, Cause: runError}
	}

	executor.observer.CommandCompleted(command, result)
	if result.ExitCode != 0 {
		executor.logger.Debug(
			executor.formatter.BuildFailureMessage(command, result),
			append(commandFields, zap.Int(logFieldExitCodeConstant, result.ExitCode), zap.String(logFieldStandardErrorConstant, result.StandardError))...,
		)
		return ExecutionResult{}, CommandFailedError{Command: command, Result: result}
	}

	executor.logger.Debug(executor.formatter.BuildSuccessMessage(command), commandFields...)
	return result, nil
}

// ExecuteGit runs git with the given details.
func (executor *ShellExecutor) ExecuteGit(executionContext context.Context, details CommandDetails) (ExecutionResult, error) {
	return executor.Execute(executionContext, ShellCommand{Name: CommandGit, Details: details})
}

// ExecuteDocker runs the docker client with the given details.
func (executor *ShellExecutor) ExecuteDocker(executionContext context.Context, details CommandDetails) (ExecutionResult, error) {
	return executor.Execute(executionContext, ShellCommand{Name: CommandDocker, Details: details})
}

// ExecutePython runs the default Python interpreter with the given details.
func (executor *ShellExecutor) ExecutePython(executionContext context.Context, details CommandDetails) (ExecutionResult, error) {
	return executor.Execute(executionContext, ShellCommand{Name: CommandPython, Details: details})
}
