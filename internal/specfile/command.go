package specfile

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/log2timeline/devtools/internal/execshell"
	"github.com/log2timeline/devtools/internal/projects"
)

const (
	specFileCommandUseConstant              = "spec-file"
	specFileCommandShortDescriptionConstant = "Generate RPM spec files for Python projects"
	specFileCommandLongDescriptionConstant  = "spec-file produces RPM spec files with python- and python3- sub-packages from setup.py drafts."
	generateCommandUseConstant              = "generate"
	generateCommandShortDescriptionConstant = "Run setup.py bdist_rpm --spec-only and rewrite the draft"
	rewriteCommandUseConstant               = "rewrite"
	rewriteCommandShortDescriptionConstant  = "Rewrite an existing setup.py generated spec file"
	unexpectedArgumentsMessageConstant      = "spec-file commands do not accept positional arguments"
	missingProjectMessageConstant           = "a project name is required (--project)"
	missingSourceDirectoryMessageConstant   = "a source directory is required (--source-directory)"
	missingInputMessageConstant             = "an input spec file is required (--input)"
	commandExecutionErrorTemplateConstant   = "spec-file %s failed: %w"
	projectsReadErrorTemplateConstant       = "read project definitions: %w"

	projectFlagNameConstant                = "project"
	projectFlagDescriptionConstant         = "Project name written into the spec file"
	sourceDirectoryFlagNameConstant        = "source-directory"
	sourceDirectoryFlagDescriptionConstant = "Unpacked project source directory"
	sourceFilenameFlagNameConstant         = "source-filename"
	sourceFilenameFlagDescriptionConstant  = "Source package file name, a .zip suffix selects a zip Source0"
	inputFlagNameConstant                  = "input"
	inputFlagDescriptionConstant           = "Draft spec file generated by setup.py"
	outputFlagNameConstant                 = "output"
	outputFlagDescriptionConstant          = "Destination of the rewritten spec file (default <project>.spec)"
	projectsFileFlagNameConstant           = "projects-file"
	projectsFileFlagDescriptionConstant    = "YAML file with project definitions"
	buildLogFlagNameConstant               = "build-log"
	buildLogFlagDescriptionConstant        = "File receiving setup.py output"
	oscFlagNameConstant                    = "osc"
	oscFlagDescriptionConstant             = "Use openSUSE build service build dependencies"
)

var (
	errUnexpectedArguments    = errors.New(unexpectedArgumentsMessageConstant)
	errMissingProject         = errors.New(missingProjectMessageConstant)
	errMissingSourceDirectory = errors.New(missingSourceDirectoryMessageConstant)
	errMissingInput           = errors.New(missingInputMessageConstant)
)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// ConfigurationProvider returns the current spec-file configuration.
type ConfigurationProvider func() Configuration

// CommandBuilder assembles the spec-file command hierarchy.
type CommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider ConfigurationProvider
	Executor              CommandExecutor
	Clock                 Clock
}

type commandOptions struct {
	projectName     string
	sourceDirectory string
	sourceFilename  string
	inputPath       string
	outputPath      string
	projectsFile    string
	buildLogPath    string
	osc             bool
}

// Build constructs the spec-file command with its generate and rewrite subcommands.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	specFileCommand := &cobra.Command{
		Use:   specFileCommandUseConstant,
		Short: specFileCommandShortDescriptionConstant,
		Long:  specFileCommandLongDescriptionConstant,
	}

	generateCommand := &cobra.Command{
		Use:   generateCommandUseConstant,
		Short: generateCommandShortDescriptionConstant,
		RunE:  builder.runGenerate,
	}
	builder.addCommonFlags(generateCommand)
	generateCommand.Flags().String(buildLogFlagNameConstant, "", buildLogFlagDescriptionConstant)

	rewriteCommand := &cobra.Command{
		Use:   rewriteCommandUseConstant,
		Short: rewriteCommandShortDescriptionConstant,
		RunE:  builder.runRewrite,
	}
	builder.addCommonFlags(rewriteCommand)
	rewriteCommand.Flags().String(inputFlagNameConstant, "", inputFlagDescriptionConstant)

	specFileCommand.AddCommand(generateCommand, rewriteCommand)
	return specFileCommand, nil
}

func (builder *CommandBuilder) addCommonFlags(command *cobra.Command) {
	command.Flags().String(projectFlagNameConstant, "", projectFlagDescriptionConstant)
	command.Flags().String(sourceDirectoryFlagNameConstant, "", sourceDirectoryFlagDescriptionConstant)
	command.Flags().String(sourceFilenameFlagNameConstant, "", sourceFilenameFlagDescriptionConstant)
	command.Flags().String(outputFlagNameConstant, "", outputFlagDescriptionConstant)
	command.Flags().String(projectsFileFlagNameConstant, "", projectsFileFlagDescriptionConstant)
	command.Flags().Bool(oscFlagNameConstant, false, oscFlagDescriptionConstant)
}

func (builder *CommandBuilder) runGenerate(command *cobra.Command, arguments []string) error {
	if len(arguments) > 0 {
		return errUnexpectedArguments
	}
	options, optionsError := builder.parseOptions(command)
	if optionsError != nil {
		return optionsError
	}

	logger := builder.resolveLogger()
	definition, definitionError := builder.resolveDefinition(logger, options)
	if definitionError != nil {
		return definitionError
	}
	executor, executorError := builder.resolveExecutor(logger)
	if executorError != nil {
		return executorError
	}
	generator := builder.newGenerator(logger, executor)

	if generateError := generator.GenerateWithSetupPy(command.Context(), options.sourceDirectory, options.buildLogPath); generateError != nil {
		return fmt.Errorf(commandExecutionErrorTemplateConstant, generateCommandUseConstant, generateError)
	}

	options.inputPath = DraftSpecFilePath(options.sourceDirectory, definition.PackageSetupName())
	if rewriteError := builder.rewrite(generator, definition, options); rewriteError != nil {
		return fmt.Errorf(commandExecutionErrorTemplateConstant, generateCommandUseConstant, rewriteError)
	}
	return nil
}

func (builder *CommandBuilder) runRewrite(command *cobra.Command, arguments []string) error {
	if len(arguments) > 0 {
		return errUnexpectedArguments
	}
	options, optionsError := builder.parseOptions(command)
	if optionsError != nil {
		return optionsError
	}
	if len(options.inputPath) == 0 {
		return errMissingInput
	}

	logger := builder.resolveLogger()
	definition, definitionError := builder.resolveDefinition(logger, options)
	if definitionError != nil {
		return definitionError
	}
	generator := builder.newGenerator(logger, builder.Executor)
	if rewriteError := builder.rewrite(generator, definition, options); rewriteError != nil {
		return fmt.Errorf(commandExecutionErrorTemplateConstant, rewriteCommandUseConstant, rewriteError)
	}
	return nil
}

func (builder *CommandBuilder) rewrite(generator *Generator, definition projects.ProjectDefinition, options commandOptions) error {
	if options.osc {
		return generator.RewriteSetupPyGeneratedFileForOSC(definition, options.sourceDirectory, options.sourceFilename, options.projectName, options.inputPath, options.outputPath)
	}
	return generator.RewriteSetupPyGeneratedFile(definition, options.sourceDirectory, options.sourceFilename, options.projectName, options.inputPath, options.outputPath)
}

func (builder *CommandBuilder) parseOptions(command *cobra.Command) (commandOptions, error) {
	configuration := builder.resolveConfiguration()
	flags := command.Flags()

	projectValue, _ := flags.GetString(projectFlagNameConstant)
	sourceDirectoryValue, _ := flags.GetString(sourceDirectoryFlagNameConstant)
	sourceFilenameValue, _ := flags.GetString(sourceFilenameFlagNameConstant)
	outputValue, _ := flags.GetString(outputFlagNameConstant)
	projectsFileValue, _ := flags.GetString(projectsFileFlagNameConstant)

	options := commandOptions{
		projectName:     selectStringValue(projectValue, ""),
		sourceDirectory: selectStringValue(sourceDirectoryValue, ""),
		sourceFilename:  selectStringValue(sourceFilenameValue, ""),
		outputPath:      selectStringValue(outputValue, ""),
		projectsFile:    selectStringValue(projectsFileValue, configuration.ProjectsFile),
		buildLogPath:    configuration.BuildLogFile,
		osc:             configuration.OSC,
	}
	if flags.Changed(oscFlagNameConstant) {
		options.osc, _ = flags.GetBool(oscFlagNameConstant)
	}
	if flags.Lookup(inputFlagNameConstant) != nil {
		inputValue, _ := flags.GetString(inputFlagNameConstant)
		options.inputPath = selectStringValue(inputValue, "")
	}
	if flags.Lookup(buildLogFlagNameConstant) != nil {
		buildLogValue, _ := flags.GetString(buildLogFlagNameConstant)
		options.buildLogPath = selectStringValue(buildLogValue, configuration.BuildLogFile)
	}

	if len(options.projectName) == 0 {
		return commandOptions{}, errMissingProject
	}
	if len(options.sourceDirectory) == 0 {
		return commandOptions{}, errMissingSourceDirectory
	}
	if len(options.outputPath) == 0 {
		options.outputPath = options.projectName + specFileExtensionConstant
	}
	if len(options.buildLogPath) == 0 {
		options.buildLogPath = DefaultConfiguration().BuildLogFile
	}
	if !filepath.IsAbs(options.buildLogPath) {
		options.buildLogPath = filepath.Join(options.sourceDirectory, options.buildLogPath)
	}
	return options, nil
}

// resolveDefinition looks the project up in the projects file; projects
// without an entry get a definition carrying only their name.
func (builder *CommandBuilder) resolveDefinition(logger *zap.Logger, options commandOptions) (projects.ProjectDefinition, error) {
	if len(options.projectsFile) == 0 {
		return projects.NewProjectDefinition(options.projectName), nil
	}

	definitions, readError := projects.NewDefinitionReader(logger).ReadFile(options.projectsFile)
	if readError != nil {
		return projects.ProjectDefinition{}, fmt.Errorf(projectsReadErrorTemplateConstant, readError)
	}
	definition, lookupError := definitions.Lookup(options.projectName)
	if errors.Is(lookupError, projects.ErrProjectNotDefined) {
		logger.Debug("Project not defined, using defaults", zap.String(logFieldProjectConstant, options.projectName))
		return projects.NewProjectDefinition(options.projectName), nil
	}
	return definition, lookupError
}

func (builder *CommandBuilder) newGenerator(logger *zap.Logger, executor CommandExecutor) *Generator {
	configuration := builder.resolveConfiguration()
	return NewGenerator(
		executor,
		WithLogger(logger),
		WithClock(builder.Clock),
		WithPythonExecutable(configuration.PythonExecutable),
	)
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

func (builder *CommandBuilder) resolveExecutor(logger *zap.Logger) (CommandExecutor, error) {
	if builder.Executor != nil {
		return builder.Executor, nil
	}
	shellExecutor, creationError := execshell.NewShellExecutor(logger, execshell.NewOSCommandRunner())
	if creationError != nil {
		return nil, creationError
	}
	return shellExecutor, nil
}
