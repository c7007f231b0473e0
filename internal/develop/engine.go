package develop

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/log2timeline/devtools/internal/execshell"
	"github.com/log2timeline/devtools/internal/utils"
)

const (
	dockerInfoSubcommandConstant    = "info"
	dockerBuildSubcommandConstant   = "build"
	dockerImageSubcommandConstant   = "image"
	dockerInspectSubcommandConstant = "inspect"
	dockerRunSubcommandConstant     = "run"
	dockerLogsSubcommandConstant    = "logs"

	dockerFormatFlagConstant           = "--format"
	dockerTagFlagConstant              = "--tag"
	dockerNoCacheFlagConstant          = "--no-cache"
	dockerDetachFlagConstant           = "--detach"
	dockerTTYFlagConstant              = "--tty"
	dockerEnvFlagConstant              = "--env"
	dockerVolumeFlagConstant           = "--volume"
	dockerFollowFlagConstant           = "--follow"
	dockerStandardInputContextConstant = "-"

	dockerServerVersionFormatConstant = "{{.ServerVersion}}"
	dockerIdentifierFormatConstant    = "{{.Id}}"
	dockerNameFormatConstant          = "{{.Name}}"

	dockerBuildKitVariableConstant    = "DOCKER_BUILDKIT"
	dockerBuildKitDisabledConstant    = "0"
	containerNamePrefixConstant       = "/"
	emptyDockerOutputTemplateConstant = "docker %s returned no output"
)

// ErrExecutorNotConfigured indicates an engine built without a command executor.
var ErrExecutorNotConfigured = errors.New("docker command executor not configured")

// CommandExecutor runs external commands.
type CommandExecutor interface {
	Execute(executionContext context.Context, command execshell.ShellCommand) (execshell.ExecutionResult, error)
}

// BuildRequest describes an image build from a tar build context.
type BuildRequest struct {
	Tag     string
	Context io.Reader
	NoCache bool
	// Output receives each line of build progress.
	Output utils.LineHandler
}

// RunRequest describes a detached container.
type RunRequest struct {
	Image       string
	Command     []string
	Environment []string
	Volumes     []string
	TTY         bool
}

// Engine is the container engine the development environment runs on.
type Engine interface {
	Info(executionContext context.Context) error
	BuildImage(executionContext context.Context, request BuildRequest) (string, error)
	RunContainer(executionContext context.Context, request RunRequest) (string, error)
	FollowLogs(executionContext context.Context, containerIdentifier string, output io.Writer) error
	ContainerName(executionContext context.Context, containerIdentifier string) (string, error)
}

// DockerCLIEngine implements Engine with the docker command-line client.
type DockerCLIEngine struct {
	executor CommandExecutor
}

// NewDockerCLIEngine constructs an engine issuing docker commands through executor.
func NewDockerCLIEngine(executor CommandExecutor) *DockerCLIEngine {
	return &DockerCLIEngine{executor: executor}
}

// Info reports whether the docker daemon answers.
func (engine *DockerCLIEngine) Info(executionContext context.Context) error {
	_, executionError := engine.execute(executionContext, execshell.CommandDetails{
		Arguments: []string{dockerInfoSubcommandConstant, dockerFormatFlagConstant, dockerServerVersionFormatConstant},
	})
	return executionError
}

// BuildImage streams request.Context to docker build and returns the built image identifier.
func (engine *DockerCLIEngine) BuildImage(executionContext context.Context, request BuildRequest) (string, error) {
	arguments := []string{dockerBuildSubcommandConstant, dockerTagFlagConstant, request.Tag}
	if request.NoCache {
		arguments = append(arguments, dockerNoCacheFlagConstant)
	}
	arguments = append(arguments, dockerStandardInputContextConstant)

	progressWriter := utils.NewLineWriter(request.Output)
	_, buildError := engine.execute(executionContext, execshell.CommandDetails{
		Arguments:            arguments,
		EnvironmentVariables: map[string]string{dockerBuildKitVariableConstant: dockerBuildKitDisabledConstant},
		StandardInput:        request.Context,
		OutputWriter:         progressWriter,
	})
	if flushError := progressWriter.Flush(); flushError != nil && buildError == nil {
		buildError = flushError
	}
	if buildError != nil {
		return "", buildError
	}

	return engine.singleLineOutput(executionContext, dockerImageSubcommandConstant+" "+dockerInspectSubcommandConstant, execshell.CommandDetails{
		Arguments: []string{dockerImageSubcommandConstant, dockerInspectSubcommandConstant, dockerFormatFlagConstant, dockerIdentifierFormatConstant, request.Tag},
	})
}

// RunContainer starts a detached container and returns its identifier.
func (engine *DockerCLIEngine) RunContainer(executionContext context.Context, request RunRequest) (string, error) {
	arguments := []string{dockerRunSubcommandConstant, dockerDetachFlagConstant}
	if request.TTY {
		arguments = append(arguments, dockerTTYFlagConstant)
	}
	for _, environmentAssignment := range request.Environment {
		arguments = append(arguments, dockerEnvFlagConstant, environmentAssignment)
	}
	for _, volume := range request.Volumes {
		arguments = append(arguments, dockerVolumeFlagConstant, volume)
	}
	arguments = append(arguments, request.Image)
	arguments = append(arguments, request.Command...)

	return engine.singleLineOutput(executionContext, dockerRunSubcommandConstant, execshell.CommandDetails{Arguments: arguments})
}

// FollowLogs copies the container's combined output to output until the container exits.
func (engine *DockerCLIEngine) FollowLogs(executionContext context.Context, containerIdentifier string, output io.Writer) error {
	_, executionError := engine.execute(executionContext, execshell.CommandDetails{
		Arguments:    []string{dockerLogsSubcommandConstant, dockerFollowFlagConstant, containerIdentifier},
		OutputWriter: output,
	})
	return executionError
}

// ContainerName resolves the human readable name docker assigned to a container.
func (engine *DockerCLIEngine) ContainerName(executionContext context.Context, containerIdentifier string) (string, error) {
	containerName, inspectError := engine.singleLineOutput(executionContext, dockerInspectSubcommandConstant, execshell.CommandDetails{
		Arguments: []string{dockerInspectSubcommandConstant, dockerFormatFlagConstant, dockerNameFormatConstant, containerIdentifier},
	})
	if inspectError != nil {
		return "", inspectError
	}
	return strings.TrimPrefix(containerName, containerNamePrefixConstant), nil
}

func (engine *DockerCLIEngine) singleLineOutput(executionContext context.Context, description string, details execshell.CommandDetails) (string, error) {
	result, executionError := engine.execute(executionContext, details)
	if executionError != nil {
		return "", executionError
	}
	trimmedOutput := strings.TrimSpace(result.StandardOutput)
	if len(trimmedOutput) == 0 {
		return "", fmt.Errorf(emptyDockerOutputTemplateConstant, description)
	}
	return trimmedOutput, nil
}

func (engine *DockerCLIEngine) execute(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	if engine == nil || engine.executor == nil {
		return execshell.ExecutionResult{}, ErrExecutorNotConfigured
	}
	return engine.executor.Execute(executionContext, execshell.ShellCommand{Name: execshell.CommandDocker, Details: details})
}
