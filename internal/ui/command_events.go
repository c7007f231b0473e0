package ui

import (
	"go.uber.org/zap"

	"github.com/log2timeline/devtools/internal/execshell"
)

// ConsoleCommandEventLogger logs execshell command lifecycle events at info level and above.
type ConsoleCommandEventLogger struct {
	logger    *zap.Logger
	formatter execshell.CommandMessageFormatter
}

// NewConsoleCommandEventLogger constructs an event logger backed by logger.
func NewConsoleCommandEventLogger(logger *zap.Logger) *ConsoleCommandEventLogger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConsoleCommandEventLogger{logger: logger}
}

// CommandStarted implements execshell.CommandEventObserver.
func (eventLogger *ConsoleCommandEventLogger) CommandStarted(command execshell.ShellCommand) {
	if eventLogger == nil {
		return
	}
	eventLogger.logger.Info(eventLogger.formatter.BuildStartedMessage(command))
}

// CommandCompleted implements execshell.CommandEventObserver.
func (eventLogger *ConsoleCommandEventLogger) CommandCompleted(command execshell.ShellCommand, result execshell.ExecutionResult) {
	if eventLogger == nil {
		return
	}
	if result.ExitCode == 0 {
		eventLogger.logger.Info(eventLogger.formatter.BuildSuccessMessage(command))
		return
	}
	eventLogger.logger.Warn(eventLogger.formatter.BuildFailureMessage(command, result))
}

// CommandExecutionFailed implements execshell.CommandEventObserver.
func (eventLogger *ConsoleCommandEventLogger) CommandExecutionFailed(command execshell.ShellCommand, failure error) {
	if eventLogger == nil {
		return
	}
	eventLogger.logger.Error(eventLogger.formatter.BuildExecutionFailureMessage(command, failure))
}
