package execshell

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
)

const (
	environmentAssignmentSeparatorConstant = "="
	streamedStandardErrorLimitConstant     = 64 * 1024
)

// OSCommandRunner executes commands using os/exec.
type OSCommandRunner struct{}

// NewOSCommandRunner constructs an OSCommandRunner.
func NewOSCommandRunner() *OSCommandRunner {
	return &OSCommandRunner{}
}

// Run executes the command and converts non-zero exits into an ExecutionResult.
func (runner *OSCommandRunner) Run(executionContext context.Context, command ShellCommand) (ExecutionResult, error) {
	executable := exec.CommandContext(executionContext, string(command.Name), command.Details.Arguments...)
	executable.Dir = command.Details.WorkingDirectory

	if len(command.Details.EnvironmentVariables) > 0 {
		environment := os.Environ()
		for environmentKey, environmentValue := range command.Details.EnvironmentVariables {
			environment = append(environment, environmentKey+environmentAssignmentSeparatorConstant+environmentValue)
		}
		executable.Env = environment
	}

	var standardOutputBuffer bytes.Buffer
	standardErrorBuffer := &tailBuffer{}
	executable.Stdout = &standardOutputBuffer
	executable.Stderr = standardErrorBuffer
	if command.Details.OutputWriter != nil {
		// Streamed output is not retained; only the tail of standard error is kept for failure messages.
		standardErrorBuffer.limit = streamedStandardErrorLimitConstant
		executable.Stdout = command.Details.OutputWriter
		executable.Stderr = io.MultiWriter(standardErrorBuffer, command.Details.OutputWriter)
	}

	if command.Details.StandardInput != nil {
		executable.Stdin = command.Details.StandardInput
	}

	runError := executable.Run()
	result := ExecutionResult{
		StandardOutput: standardOutputBuffer.String(),
		StandardError:  standardErrorBuffer.String(),
	}
	if runError == nil {
		return result, nil
	}

	var exitError *exec.ExitError
	if errors.As(runError, &exitError) {
		result.ExitCode = exitError.ExitCode()
		return result, nil
	}
	return ExecutionResult{}, runError
}

// tailBuffer keeps the last limit bytes written to it; a zero limit keeps everything.
type tailBuffer struct {
	limit  int
	buffer bytes.Buffer
}

func (tail *tailBuffer) Write(data []byte) (int, error) {
	written, _ := tail.buffer.Write(data)
	if tail.limit > 0 && tail.buffer.Len() > tail.limit {
		tail.buffer.Next(tail.buffer.Len() - tail.limit)
	}
	return written, nil
}

func (tail *tailBuffer) String() string {
	return tail.buffer.String()
}
