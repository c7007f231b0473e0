package execshell

// CommandEventObserver receives lifecycle notifications for executed commands.
type CommandEventObserver interface {
	CommandStarted(command ShellCommand)
	CommandCompleted(command ShellCommand, result ExecutionResult)
	CommandExecutionFailed(command ShellCommand, failure error)
}

type noopCommandEventObserver struct{}

func (noopCommandEventObserver) CommandStarted(ShellCommand) {}

func (noopCommandEventObserver) CommandCompleted(ShellCommand, ExecutionResult) {}

func (noopCommandEventObserver) CommandExecutionFailed(ShellCommand, error) {}
