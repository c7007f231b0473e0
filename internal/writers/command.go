package writers

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/log2timeline/devtools/internal/dependencies"
	"github.com/log2timeline/devtools/internal/project"
	"github.com/log2timeline/devtools/internal/projects"
)

const (
	commandUseConstant                    = "update-dependencies"
	commandShortDescriptionConstant       = "Regenerate dependency related configuration files"
	commandLongDescriptionConstant        = "update-dependencies renders CI scripts, installer scripts, the requirements files, setup.cfg, tox.ini, appveyor.yml, dependencies.py and the dpkg control file from the project's dependency definitions."
	unexpectedArgumentsMessageConstant    = "update-dependencies does not accept positional arguments"
	unknownWriterTemplateConstant         = "unknown writer %q (supported: %s)"
	commandExecutionErrorTemplateConstant = "update-dependencies failed: %w"
	projectsReadErrorTemplateConstant     = "read project definitions: %w"
	projectDirectoryFlagNameConstant      = "project-directory"
	projectDirectoryFlagDescription       = "Root directory of the project (default current directory)"
	projectFlagNameConstant               = "project"
	projectFlagDescriptionConstant        = "Project name (default derived from the project directory)"
	writerFlagNameConstant                = "writer"
	forceFlagNameConstant                 = "force"
	forceFlagDescriptionConstant          = "Also create files the project does not have yet"
	templatesFlagNameConstant             = "templates-directory"
	templatesFlagDescriptionConstant      = "Directory overriding the built-in templates"
	logFieldProjectConstant               = "project"
	logFieldSkippedWriterConstant         = "writer"
)

var errUnexpectedArguments = errors.New(unexpectedArgumentsMessageConstant)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// ConfigurationProvider returns the current update-dependencies configuration.
type ConfigurationProvider func() Configuration

// CommandBuilder assembles the update-dependencies command.
type CommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider ConfigurationProvider
	WorkingDirectory      string
}

type updateOptions struct {
	projectDirectory   string
	projectName        string
	writers            []Writer
	explicitSelection  bool
	force              bool
	templatesDirectory string
}

// Build constructs the update-dependencies command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		RunE:  builder.run,
	}

	command.Flags().String(projectDirectoryFlagNameConstant, "", projectDirectoryFlagDescription)
	command.Flags().String(projectFlagNameConstant, "", projectFlagDescriptionConstant)
	command.Flags().StringSlice(writerFlagNameConstant, nil, fmt.Sprintf("Writers to run, repeatable (%s)", strings.Join(Names(), ", ")))
	command.Flags().Bool(forceFlagNameConstant, false, forceFlagDescriptionConstant)
	command.Flags().String(templatesFlagNameConstant, "", templatesFlagDescriptionConstant)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	if len(arguments) > 0 {
		return errUnexpectedArguments
	}

	configuration := builder.resolveConfiguration()
	options, optionsError := builder.parseOptions(command, configuration)
	if optionsError != nil {
		return optionsError
	}

	logger := builder.resolveLogger()
	input, inputError := builder.loadInput(logger, configuration, options)
	if inputError != nil {
		return fmt.Errorf(commandExecutionErrorTemplateConstant, inputError)
	}

	renderer := NewRenderer(TemplateSource(options.templatesDirectory), logger)
	for _, writer := range options.writers {
		if writer.Optional() && !options.explicitSelection && !options.force && !fileExists(filepath.Join(options.projectDirectory, filepath.FromSlash(writer.Path(input.Project)))) {
			logger.Debug("Skipping writer for absent file", zap.String(logFieldSkippedWriterConstant, writer.Name()))
			continue
		}
		outputPath, writeError := renderer.Write(writer, input, options.projectDirectory)
		if writeError != nil {
			return fmt.Errorf(commandExecutionErrorTemplateConstant, writeError)
		}
		logger.Info("Updated file", zap.String(logFieldWriterConstant, writer.Name()), zap.String(logFieldPathConstant, outputPath))
	}
	return nil
}

func (builder *CommandBuilder) parseOptions(command *cobra.Command, configuration Configuration) (updateOptions, error) {
	flags := command.Flags()

	projectDirectoryValue, _ := flags.GetString(projectDirectoryFlagNameConstant)
	projectDirectory := strings.TrimSpace(projectDirectoryValue)
	if len(projectDirectory) == 0 {
		projectDirectory = builder.WorkingDirectory
	}
	if len(projectDirectory) == 0 {
		projectDirectory = "."
	}
	absoluteDirectory, absoluteError := filepath.Abs(projectDirectory)
	if absoluteError != nil {
		return updateOptions{}, absoluteError
	}

	projectValue, _ := flags.GetString(projectFlagNameConstant)
	projectName := strings.TrimSpace(projectValue)
	if len(projectName) == 0 {
		resolvedName, resolved := project.ResolveProjectName(absoluteDirectory)
		if !resolved {
			resolvedName = filepath.Base(absoluteDirectory)
		}
		projectName = resolvedName
	}

	writerNames := configuration.Writers
	explicitSelection := false
	if flags.Changed(writerFlagNameConstant) {
		flagWriterNames, _ := flags.GetStringSlice(writerFlagNameConstant)
		writerNames = sanitizeNames(flagWriterNames)
		explicitSelection = true
	}
	selectedWriters := All()
	if len(writerNames) > 0 {
		selectedWriters = make([]Writer, 0, len(writerNames))
		for _, writerName := range writerNames {
			writer, found := Lookup(writerName)
			if !found {
				return updateOptions{}, fmt.Errorf(unknownWriterTemplateConstant, writerName, strings.Join(Names(), ", "))
			}
			selectedWriters = append(selectedWriters, writer)
		}
	}

	forceValue, _ := flags.GetBool(forceFlagNameConstant)
	templatesValue, _ := flags.GetString(templatesFlagNameConstant)
	templatesDirectory := strings.TrimSpace(templatesValue)
	if len(templatesDirectory) == 0 {
		templatesDirectory = configuration.TemplatesDirectory
	}

	return updateOptions{
		projectDirectory:   absoluteDirectory,
		projectName:        projectName,
		writers:            selectedWriters,
		explicitSelection:  explicitSelection,
		force:              forceValue,
		templatesDirectory: templatesDirectory,
	}, nil
}

func (builder *CommandBuilder) loadInput(logger *zap.Logger, configuration Configuration, options updateOptions) (Input, error) {
	definition := projects.NewProjectDefinition(options.projectName)
	if len(configuration.ProjectsFile) > 0 {
		definitions, readError := projects.NewDefinitionReader(logger).ReadFile(resolvePath(options.projectDirectory, configuration.ProjectsFile))
		if readError != nil {
			return Input{}, fmt.Errorf(projectsReadErrorTemplateConstant, readError)
		}
		lookedUpDefinition, lookupError := definitions.Lookup(options.projectName)
		switch {
		case lookupError == nil:
			definition = lookedUpDefinition
		case errors.Is(lookupError, projects.ErrProjectNotDefined):
			logger.Debug("Project not defined, using defaults", zap.String(logFieldProjectConstant, options.projectName))
		default:
			return Input{}, lookupError
		}
	}

	runtimeDependencies, dependenciesError := dependencies.ReadDefinitionsFile(resolvePath(options.projectDirectory, configuration.DependenciesFile))
	if dependenciesError != nil {
		return Input{}, dependenciesError
	}
	testDependencies, testDependenciesError := dependencies.ReadDefinitionsFile(resolvePath(options.projectDirectory, configuration.TestDependenciesFile))
	if testDependenciesError != nil {
		return Input{}, testDependenciesError
	}

	return Input{
		Project:      definition,
		Dependencies: dependencies.NewHelper(runtimeDependencies, testDependencies),
		ProjectFiles: os.DirFS(options.projectDirectory),
	}, nil
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

func resolvePath(projectDirectory string, candidatePath string) string {
	if filepath.IsAbs(candidatePath) {
		return candidatePath
	}
	return filepath.Join(projectDirectory, candidatePath)
}

func fileExists(filePath string) bool {
	fileInfo, statError := os.Stat(filePath)
	return statError == nil && !fileInfo.IsDir()
}
