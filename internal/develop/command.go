package develop

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/log2timeline/devtools/internal/execshell"
	"github.com/log2timeline/devtools/internal/ui"
	"github.com/log2timeline/devtools/internal/utils/flags"
)

const (
	developCommandUseConstant              = "develop ACTION"
	developCommandShortDescriptionConstant = "Build, run and manage the dockerized development environment"
	developCommandLongDescriptionConstant  = "develop builds the development image from the source tree named by the PLASO_SRC environment variable and runs checks, tests or a long-lived container from it."
	actionDescriptionConstant              = "the action to run"
	actionArgumentsTemplateConstant        = "develop requires exactly one action: %s"
	unsupportedActionTemplateConstant      = "unsupported action %q: %s"

	actionBuildConstant             = "build"
	actionCheckDependenciesConstant = "check_dependencies"
	actionTestConstant              = "test"
	actionStartConstant             = "start"

	verboseFlagNameConstant        = "verbose"
	verboseFlagShorthandConstant   = "v"
	verboseFlagDescriptionConstant = "show all docker output"
	noCacheFlagNameConstant        = "nocache"
	noCacheFlagDescriptionConstant = "don't use cached build steps"

	checkDependenciesScriptConstant = "utils/check_dependencies.py"
	runTestsScriptConstant          = "run_tests.py"
)

var supportedActions = []string{actionBuildConstant, actionCheckDependenciesConstant, actionTestConstant, actionStartConstant}

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// ConfigurationProvider returns the current develop configuration.
type ConfigurationProvider func() Configuration

// EnvironmentLookup resolves environment variables.
type EnvironmentLookup func(name string) (string, bool)

// CommandBuilder assembles the develop command.
type CommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider ConfigurationProvider
	Engine                Engine
	Executor              CommandExecutor
	EnvironmentLookup     EnvironmentLookup
	TerminalSize          TerminalSizeProvider
}

// SupportedActions lists the accepted ACTION values.
func SupportedActions() []string {
	return append([]string(nil), supportedActions...)
}

// Build constructs the develop command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:       developCommandUseConstant,
		Short:     developCommandShortDescriptionConstant,
		Long:      developCommandLongDescriptionConstant + "\n\nACTION: " + flags.FormatChoiceUsage("", supportedActions, actionDescriptionConstant),
		ValidArgs: SupportedActions(),
		RunE:      builder.run,
	}
	command.Flags().BoolP(verboseFlagNameConstant, verboseFlagShorthandConstant, false, verboseFlagDescriptionConstant)
	command.Flags().Bool(noCacheFlagNameConstant, false, noCacheFlagDescriptionConstant)
	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	choiceUsage := flags.FormatChoiceUsage("", supportedActions, "")
	if len(arguments) != 1 {
		return fmt.Errorf(actionArgumentsTemplateConstant, choiceUsage)
	}
	action := strings.ToLower(strings.TrimSpace(arguments[0]))
	if !flags.ValidateChoice(action, supportedActions) {
		return fmt.Errorf(unsupportedActionTemplateConstant, arguments[0], choiceUsage)
	}

	configuration := builder.resolveConfiguration()
	logger := builder.resolveLogger()

	sourceDirectory, sourceFound := builder.resolveEnvironmentLookup()(configuration.SourceEnvironmentVariable)
	if !sourceFound || len(strings.TrimSpace(sourceDirectory)) == 0 {
		return SourceNotConfiguredError{Variable: configuration.SourceEnvironmentVariable}
	}

	imageReference, imageError := ParseImageReference(configuration.ImageName)
	if imageError != nil {
		return imageError
	}

	engine, engineError := builder.resolveEngine(logger)
	if engineError != nil {
		return engineError
	}

	service := NewService(
		engine,
		Environment{
			SourceDirectory:          strings.TrimSpace(sourceDirectory),
			Image:                    imageReference,
			DockerfilePath:           configuration.Dockerfile,
			InstallerScript:          configuration.InstallerScript,
			ContainerSourceDirectory: configuration.ContainerSourceDirectory,
		},
		command.OutOrStdout(),
		WithLogger(logger),
		WithTerminalSize(builder.TerminalSize),
	)

	executionContext := command.Context()
	if checkError := service.CheckEngine(executionContext); checkError != nil {
		return checkError
	}

	switch action {
	case actionBuildConstant:
		verbose, _ := command.Flags().GetBool(verboseFlagNameConstant)
		noCache, _ := command.Flags().GetBool(noCacheFlagNameConstant)
		_, buildError := service.Build(executionContext, BuildOptions{Verbose: verbose, NoCache: noCache})
		return buildError
	case actionCheckDependenciesConstant:
		return service.RunCommand(executionContext, []string{configuration.PythonExecutable, checkDependenciesScriptConstant})
	case actionTestConstant:
		return service.RunCommand(executionContext, []string{configuration.PythonExecutable, runTestsScriptConstant})
	default:
		_, startError := service.Start(executionContext)
		return startError
	}
}

func (builder *CommandBuilder) resolveEngine(logger *zap.Logger) (Engine, error) {
	if builder.Engine != nil {
		return builder.Engine, nil
	}
	if builder.Executor != nil {
		return NewDockerCLIEngine(builder.Executor), nil
	}
	shellExecutor, creationError := execshell.NewShellExecutor(
		logger,
		execshell.NewOSCommandRunner(),
		execshell.WithCommandEventObserver(ui.NewConsoleCommandEventLogger(logger)),
	)
	if creationError != nil {
		return nil, creationError
	}
	return NewDockerCLIEngine(shellExecutor), nil
}

func (builder *CommandBuilder) resolveEnvironmentLookup() EnvironmentLookup {
	if builder.EnvironmentLookup == nil {
		return os.LookupEnv
	}
	return builder.EnvironmentLookup
}

func (builder *CommandBuilder) resolveConfiguration() Configuration {
	if builder.ConfigurationProvider == nil {
		return DefaultConfiguration().Sanitize()
	}
	return builder.ConfigurationProvider().Sanitize()
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}
	logger := builder.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}
