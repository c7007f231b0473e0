package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/log2timeline/devtools/internal/develop"
	"github.com/log2timeline/devtools/internal/project"
	"github.com/log2timeline/devtools/internal/specfile"
	"github.com/log2timeline/devtools/internal/utils"
	"github.com/log2timeline/devtools/internal/writers"
)

const (
	applicationNameConstant                 = "devtools"
	applicationShortDescriptionConstant     = "Development tools for the log2timeline projects"
	applicationLongDescriptionConstant      = "devtools maintains project metadata, regenerates dependency driven CI scripts and packaging files, rewrites RPM spec files and manages the dockerized development environment."
	configFileFlagNameConstant              = "config"
	configFileFlagUsageConstant             = "Optional path to a configuration file (YAML or JSON)."
	logLevelFlagNameConstant                = "log-level"
	logLevelFlagUsageConstant               = "Override the configured log level."
	logFormatFlagNameConstant               = "log-format"
	logFormatFlagUsageConstant              = "Override the configured log format (structured or console)."
	commonConfigurationKeyConstant          = "common"
	commonLogLevelConfigKeyConstant         = commonConfigurationKeyConstant + ".log_level"
	commonLogFormatConfigKeyConstant        = commonConfigurationKeyConstant + ".log_format"
	environmentPrefixConstant               = "DEVTOOLS"
	configurationNameConstant               = "config"
	configurationTypeConstant               = "yaml"
	configurationInitializedMessageConstant = "configuration initialized"
	configurationLogLevelFieldConstant      = "log_level"
	configurationLogFormatFieldConstant     = "log_format"
	configurationFileFieldConstant          = "config_file"
	configurationLoadErrorTemplateConstant  = "unable to load configuration: %w"
	loggerCreationErrorTemplateConstant     = "unable to create logger: %w"
	loggerSyncErrorTemplateConstant         = "unable to flush logger: %w"
	commandBuildErrorTemplateConstant       = "unable to build %s command: %w"
	rootCommandDebugMessageConstant         = "devtools CLI diagnostics"
	logFieldCommandNameConstant             = "command_name"
	logFieldArgumentsConstant               = "arguments"
	loggerNotInitializedMessageConstant     = "logger not initialized"
	defaultConfigurationSearchPathConstant  = "."
	userConfigurationSearchPathConstant     = "~/.config/devtools"
)

// applicationVersion is replaced at link time.
var applicationVersion = "dev"

// ApplicationConfiguration describes the persisted configuration for the CLI entrypoint.
type ApplicationConfiguration struct {
	Common ApplicationCommonConfiguration `mapstructure:"common"`
	Tools  ApplicationToolsConfiguration  `mapstructure:"tools"`
}

// ApplicationCommonConfiguration stores logging configuration shared across commands.
type ApplicationCommonConfiguration struct {
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

// ApplicationToolsConfiguration holds configuration for CLI subcommands grouped by tool family.
type ApplicationToolsConfiguration struct {
	Project      project.Configuration  `mapstructure:"project"`
	Dependencies writers.Configuration  `mapstructure:"dependencies"`
	SpecFile     specfile.Configuration `mapstructure:"spec_file"`
	Develop      develop.Configuration  `mapstructure:"develop"`
}

type commandBuilder interface {
	Build() (*cobra.Command, error)
}

// Application wires the Cobra root command, configuration loader, and structured logger.
type Application struct {
	rootCommand           *cobra.Command
	configurationLoader   *utils.ConfigurationLoader
	loggerFactory         *utils.LoggerFactory
	logger                *zap.Logger
	configuration         ApplicationConfiguration
	configurationMetadata utils.LoadedConfiguration
	configurationFilePath string
	logLevelFlagValue     string
	logFormatFlagValue    string
}

// NewApplication assembles a fully wired CLI application instance.
func NewApplication() (*Application, error) {
	configurationLoader := utils.NewConfigurationLoader(
		configurationNameConstant,
		configurationTypeConstant,
		environmentPrefixConstant,
		[]string{defaultConfigurationSearchPathConstant, userConfigurationSearchPathConstant},
	)
	configurationLoader.SetEmbeddedConfiguration(EmbeddedDefaultConfiguration())

	application := &Application{
		configurationLoader: configurationLoader,
		loggerFactory:       utils.NewLoggerFactory(),
		logger:              zap.NewNop(),
	}

	cobraCommand := &cobra.Command{
		Use:           applicationNameConstant,
		Short:         applicationShortDescriptionConstant,
		Long:          applicationLongDescriptionConstant,
		Version:       applicationVersion,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(command *cobra.Command, arguments []string) error {
			return application.initializeConfiguration(command)
		},
		RunE: func(command *cobra.Command, arguments []string) error {
			return application.runRootCommand(command, arguments)
		},
	}

	cobraCommand.SetContext(context.Background())
	cobraCommand.PersistentFlags().StringVar(&application.configurationFilePath, configFileFlagNameConstant, "", configFileFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVar(&application.logLevelFlagValue, logLevelFlagNameConstant, "", logLevelFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVar(&application.logFormatFlagValue, logFormatFlagNameConstant, "", logFormatFlagUsageConstant)

	loggerProvider := func() *zap.Logger {
		return application.logger
	}

	workingDirectory, _ := os.Getwd()

	builders := []commandBuilder{
		&project.CommandBuilder{
			LoggerProvider: loggerProvider,
			ConfigurationProvider: func() project.Configuration {
				return application.configuration.Tools.Project
			},
		},
		&writers.CommandBuilder{
			LoggerProvider: loggerProvider,
			ConfigurationProvider: func() writers.Configuration {
				return application.configuration.Tools.Dependencies
			},
			WorkingDirectory: workingDirectory,
		},
		&specfile.CommandBuilder{
			LoggerProvider: loggerProvider,
			ConfigurationProvider: func() specfile.Configuration {
				return application.configuration.Tools.SpecFile
			},
		},
		&develop.CommandBuilder{
			LoggerProvider: loggerProvider,
			ConfigurationProvider: func() develop.Configuration {
				return application.configuration.Tools.Develop
			},
		},
	}
	for _, builder := range builders {
		subcommand, buildError := builder.Build()
		if buildError != nil {
			return nil, fmt.Errorf(commandBuildErrorTemplateConstant, fmt.Sprintf("%T", builder), buildError)
		}
		cobraCommand.AddCommand(subcommand)
	}

	application.rootCommand = cobraCommand
	return application, nil
}

// Execute runs the configured Cobra command hierarchy and ensures logger flushing.
func (application *Application) Execute() error {
	executionError := application.rootCommand.Execute()
	if syncError := application.flushLogger(); syncError != nil && executionError == nil {
		return fmt.Errorf(loggerSyncErrorTemplateConstant, syncError)
	}
	return executionError
}

// Execute builds a fresh application instance and executes the root command hierarchy.
func Execute() error {
	application, creationError := NewApplication()
	if creationError != nil {
		return creationError
	}
	return application.Execute()
}

func (application *Application) initializeConfiguration(command *cobra.Command) error {
	defaultValues := map[string]any{
		commonLogLevelConfigKeyConstant:  string(utils.LogLevelInfo),
		commonLogFormatConfigKeyConstant: string(utils.LogFormatConsole),
	}

	loadedConfiguration, loadError := application.configurationLoader.LoadConfiguration(application.configurationFilePath, defaultValues, &application.configuration)
	if loadError != nil {
		return fmt.Errorf(configurationLoadErrorTemplateConstant, loadError)
	}

	application.configurationMetadata = loadedConfiguration

	if application.persistentFlagChanged(command, logLevelFlagNameConstant) {
		application.configuration.Common.LogLevel = application.logLevelFlagValue
	}

	if application.persistentFlagChanged(command, logFormatFlagNameConstant) {
		application.configuration.Common.LogFormat = application.logFormatFlagValue
	}

	logLevel, levelError := utils.ParseLogLevel(application.configuration.Common.LogLevel)
	if levelError != nil {
		return fmt.Errorf(loggerCreationErrorTemplateConstant, levelError)
	}
	logFormat, formatError := utils.ParseLogFormat(application.configuration.Common.LogFormat)
	if formatError != nil {
		return fmt.Errorf(loggerCreationErrorTemplateConstant, formatError)
	}

	logger, loggerCreationError := application.loggerFactory.CreateLogger(logLevel, logFormat)
	if loggerCreationError != nil {
		return fmt.Errorf(loggerCreationErrorTemplateConstant, loggerCreationError)
	}

	application.logger = logger

	application.logger.Debug(
		configurationInitializedMessageConstant,
		zap.String(configurationLogLevelFieldConstant, application.configuration.Common.LogLevel),
		zap.String(configurationLogFormatFieldConstant, application.configuration.Common.LogFormat),
		zap.String(configurationFileFieldConstant, application.configurationMetadata.ConfigFileUsed),
	)

	return nil
}

func (application *Application) runRootCommand(command *cobra.Command, arguments []string) error {
	if application.logger == nil {
		return errors.New(loggerNotInitializedMessageConstant)
	}

	application.logger.Debug(
		rootCommandDebugMessageConstant,
		zap.String(logFieldCommandNameConstant, command.Name()),
		zap.Strings(logFieldArgumentsConstant, arguments),
	)

	return command.Help()
}

func (application *Application) flushLogger() error {
	if application.logger == nil {
		return nil
	}

	syncError := application.logger.Sync()
	switch {
	case syncError == nil:
		return nil
	case errors.Is(syncError, syscall.ENOTSUP):
		return nil
	case errors.Is(syncError, syscall.EINVAL):
		return nil
	case errors.Is(syncError, syscall.ENOTTY):
		return nil
	default:
		return syncError
	}
}

func (application *Application) persistentFlagChanged(command *cobra.Command, flagName string) bool {
	if command == nil {
		return false
	}

	flagSetsToInspect := []*pflag.FlagSet{
		command.PersistentFlags(),
		command.InheritedFlags(),
	}

	rootCommand := command.Root()
	if rootCommand != nil {
		flagSetsToInspect = append(flagSetsToInspect, rootCommand.PersistentFlags())
	}

	for _, flagSet := range flagSetsToInspect {
		if flagSet == nil {
			continue
		}

		if flagSet.Changed(flagName) {
			return true
		}
	}

	return false
}
