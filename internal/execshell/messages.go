package execshell

import (
	"fmt"
	"path/filepath"
	"strings"
)

const (
	genericSubjectTemplateConstant      = "%s%s"
	workingDirectorySuffixTemplate      = " (in %s)"
	startedTemplateConstant             = "Running %s"
	succeededTemplateConstant           = "Completed %s"
	failedTemplateConstant              = "%s failed with exit code %d"
	executionFailedTemplateConstant     = "%s failed: %s"
	standardErrorSuffixTemplateConstant = ": %s"
	unknownFailureConstant              = "unknown error"
	argumentSeparatorConstant           = " "
	currentDirectoryLabelConstant       = "current directory"
	gitLogSubcommandConstant            = "log"
	dockerInfoSubcommandConstant        = "info"
	dockerBuildSubcommandConstant       = "build"
	dockerRunSubcommandConstant         = "run"
	dockerLogsSubcommandConstant        = "logs"
	dockerInspectSubcommandConstant     = "inspect"
	dockerImageSubcommandConstant       = "image"
	dockerTagFlagConstant               = "--tag"
	bdistRPMArgumentConstant            = "bdist_rpm"
	gitHistoryActivityTemplate          = "reading commit history in %s"
	dockerInfoActivityConstant          = "checking the Docker engine"
	dockerBuildActivityTemplate         = "building image %s"
	dockerRunActivityTemplate           = "starting a container from %s"
	dockerLogsActivityTemplate          = "following logs of container %s"
	dockerInspectActivityTemplate       = "inspecting %s"
	bdistRPMActivityTemplate            = "generating a draft spec file in %s"
)

type messageStage int

const (
	messageStageStarted messageStage = iota
	messageStageSucceeded
	messageStageFailed
	messageStageExecutionFailed
)

// CommandMessageFormatter renders human readable descriptions of command lifecycle events.
type CommandMessageFormatter struct{}

// BuildStartedMessage describes a command about to run.
func (formatter CommandMessageFormatter) BuildStartedMessage(command ShellCommand) string {
	return formatter.describe(command, ExecutionResult{}, nil, messageStageStarted)
}

// BuildSuccessMessage describes a command that exited with code zero.
func (formatter CommandMessageFormatter) BuildSuccessMessage(command ShellCommand) string {
	return formatter.describe(command, ExecutionResult{}, nil, messageStageSucceeded)
}

// BuildFailureMessage describes a command that exited with a non-zero code.
func (formatter CommandMessageFormatter) BuildFailureMessage(command ShellCommand, result ExecutionResult) string {
	return formatter.describe(command, result, nil, messageStageFailed)
}

// BuildExecutionFailureMessage describes a command that could not be run.
func (formatter CommandMessageFormatter) BuildExecutionFailureMessage(command ShellCommand, failure error) string {
	return formatter.describe(command, ExecutionResult{}, failure, messageStageExecutionFailed)
}

func (formatter CommandMessageFormatter) describe(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	activity, recognized := formatter.describeActivity(command)
	if !recognized {
		activity = formatter.commandLabel(command)
	}

	switch stage {
	case messageStageStarted:
		if recognized {
			return capitalize(activity)
		}
		return fmt.Sprintf(startedTemplateConstant, activity)
	case messageStageSucceeded:
		if recognized {
			return "Finished " + activity
		}
		return fmt.Sprintf(succeededTemplateConstant, activity)
	case messageStageFailed:
		message := fmt.Sprintf(failedTemplateConstant, capitalize(activity), result.ExitCode)
		if trimmedStandardError := strings.TrimSpace(result.StandardError); len(trimmedStandardError) > 0 {
			message += fmt.Sprintf(standardErrorSuffixTemplateConstant, trimmedStandardError)
		}
		return message
	default:
		failureMessage := unknownFailureConstant
		if failure != nil {
			failureMessage = failure.Error()
		}
		return fmt.Sprintf(executionFailedTemplateConstant, capitalize(activity), failureMessage)
	}
}

func (formatter CommandMessageFormatter) describeActivity(command ShellCommand) (string, bool) {
	arguments := command.Details.Arguments
	firstArgument := argumentAt(arguments, 0)

	switch command.Name {
	case CommandGit:
		if firstArgument == gitLogSubcommandConstant {
			return fmt.Sprintf(gitHistoryActivityTemplate, formatter.workingDirectoryLabel(command)), true
		}
	case CommandDocker:
		switch firstArgument {
		case dockerInfoSubcommandConstant:
			return dockerInfoActivityConstant, true
		case dockerBuildSubcommandConstant:
			return fmt.Sprintf(dockerBuildActivityTemplate, valueAfter(arguments, dockerTagFlagConstant)), true
		case dockerRunSubcommandConstant:
			return fmt.Sprintf(dockerRunActivityTemplate, dockerRunImage(arguments)), true
		case dockerLogsSubcommandConstant:
			return fmt.Sprintf(dockerLogsActivityTemplate, argumentAt(arguments, len(arguments)-1)), true
		case dockerInspectSubcommandConstant, dockerImageSubcommandConstant:
			return fmt.Sprintf(dockerInspectActivityTemplate, argumentAt(arguments, len(arguments)-1)), true
		}
	}

	if containsArgument(arguments, bdistRPMArgumentConstant) {
		return fmt.Sprintf(bdistRPMActivityTemplate, formatter.workingDirectoryLabel(command)), true
	}
	return "", false
}

func (formatter CommandMessageFormatter) commandLabel(command ShellCommand) string {
	labelParts := []string{string(command.Name)}
	if len(command.Details.Arguments) > 0 {
		labelParts = append(labelParts, strings.Join(command.Details.Arguments, argumentSeparatorConstant))
	}
	workingDirectorySuffix := ""
	if trimmedDirectory := strings.TrimSpace(command.Details.WorkingDirectory); len(trimmedDirectory) > 0 {
		workingDirectorySuffix = fmt.Sprintf(workingDirectorySuffixTemplate, trimmedDirectory)
	}
	return fmt.Sprintf(genericSubjectTemplateConstant, strings.Join(labelParts, argumentSeparatorConstant), workingDirectorySuffix)
}

func (formatter CommandMessageFormatter) workingDirectoryLabel(command ShellCommand) string {
	trimmedDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedDirectory) == 0 {
		return currentDirectoryLabelConstant
	}
	return filepath.Clean(trimmedDirectory)
}

func argumentAt(arguments []string, index int) string {
	if index < 0 || index >= len(arguments) {
		return ""
	}
	return arguments[index]
}

func valueAfter(arguments []string, flag string) string {
	for index, argument := range arguments {
		if argument == flag {
			return argumentAt(arguments, index+1)
		}
	}
	return ""
}

func containsArgument(arguments []string, value string) bool {
	for _, argument := range arguments {
		if argument == value {
			return true
		}
	}
	return false
}

// dockerRunImage returns the image reference of a docker run invocation,
// which is the first positional argument once flags and their values are skipped.
func dockerRunImage(arguments []string) string {
	for index := 1; index < len(arguments); index++ {
		argument := arguments[index]
		if strings.HasPrefix(argument, "-") {
			if !strings.Contains(argument, "=") && flagTakesValue(argument) {
				index++
			}
			continue
		}
		return argument
	}
	return ""
}

func flagTakesValue(flag string) bool {
	switch flag {
	case "--volume", "-v", "--env", "-e", "--name", "--workdir", "-w":
		return true
	}
	return false
}

func capitalize(text string) string {
	if len(text) == 0 {
		return text
	}
	return strings.ToUpper(text[:1]) + text[1:]
}
