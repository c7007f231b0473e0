package execshell

import (
	"errors"
	"fmt"
	"strings"
)

const (
	commandFailedTemplateConstant          = "%s exited with code %d"
	commandFailedWithErrorTemplateConstant = "%s exited with code %d: %s"
	commandExecutionTemplateConstant       = "%s could not be executed: %v"
)

var (
	// ErrLoggerNotConfigured indicates a ShellExecutor was constructed without a logger.
	ErrLoggerNotConfigured = errors.New("shell executor requires a logger")
	// ErrCommandRunnerNotConfigured indicates a ShellExecutor was constructed without a runner.
	ErrCommandRunnerNotConfigured = errors.New("shell executor requires a command runner")
)

// CommandFailedError reports a process that ran and exited with a non-zero code.
type CommandFailedError struct {
	Command ShellCommand
	Result  ExecutionResult
}

// Error describes the failed command.
func (failure CommandFailedError) Error() string {
	trimmedStandardError := strings.TrimSpace(failure.Result.StandardError)
	if len(trimmedStandardError) == 0 {
		return fmt.Sprintf(commandFailedTemplateConstant, failure.Command.Name, failure.Result.ExitCode)
	}
	return fmt.Sprintf(commandFailedWithErrorTemplateConstant, failure.Command.Name, failure.Result.ExitCode, trimmedStandardError)
}

// CommandExecutionError reports a process that could not be started or waited for.
type CommandExecutionError struct {
	Command ShellCommand
	Cause   error
}

// Error describes the execution failure.
func (failure CommandExecutionError) Error() string {
	return fmt.Sprintf(commandExecutionTemplateConstant, failure.Command.Name, failure.Cause)
}

// Unwrap exposes the underlying cause.
func (failure CommandExecutionError) Unwrap() error {
	return failure.Cause
}
