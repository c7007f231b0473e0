package execshell

import (
	"context"
	"io"
)

// CommandName identifies the executable to run.
type CommandName string

// Executables invoked by devtools.
const (
	CommandGit    CommandName = "git"
	CommandDocker CommandName = "docker"
	CommandPython CommandName = "python"
)

// CommandDetails describes arguments and process environment for a command.
type CommandDetails struct {
	Arguments            []string
	WorkingDirectory     string
	EnvironmentVariables map[string]string
	// StandardInput is streamed to the process when set.
	StandardInput io.Reader
	// OutputWriter receives standard output and standard error as they are produced.
	// When set, ExecutionResult.StandardOutput stays empty and StandardError holds only the tail.
	OutputWriter io.Writer
}

// ShellCommand couples an executable with its details.
type ShellCommand struct {
	Name    CommandName
	Details CommandDetails
}

// ExecutionResult captures the outcome of a finished process.
type ExecutionResult struct {
	StandardOutput string
	StandardError  string
	ExitCode       int
}

// CommandRunner executes shell commands.
type CommandRunner interface {
	Run(executionContext context.Context, command ShellCommand) (ExecutionResult, error)
}
