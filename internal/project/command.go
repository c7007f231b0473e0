package project

import (
	"errors"
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
	projectCommandUseConstant              = "project"
	projectCommandShortDescriptionConstant = "Maintain version, AUTHORS and dpkg changelog of a project"
	projectCommandLongDescriptionConstant  = "project resolves the project from the directory name and maintains its version marker, AUTHORS file and dpkg changelog."

	versionCommandUseConstant                = "version"
	versionCommandShortDescriptionConstant   = "Print the project version"
	updateVersionCommandUseConstant          = "update-version"
	updateVersionShortDescriptionConstant    = "Set the version marker to today's date"
	updateAuthorsCommandUseConstant          = "update-authors"
	updateAuthorsShortDescriptionConstant    = "Regenerate AUTHORS from the commit history"
	updateChangelogCommandUseConstant        = "update-changelog"
	updateChangelogShortDescriptionConstant  = "Regenerate the dpkg changelog stub"
	projectDirectoryFlagNameConstant         = "project-directory"
	projectDirectoryFlagDescriptionConstant  = "Project source directory, its name selects the project"
	historySourceFlagNameConstant            = "history-source"
	historySourceFlagDescriptionConstant     = "Commit history reader"
	unexpectedArgumentsMessageConstant       = "project commands do not accept positional arguments"
	unsupportedHistorySourceTemplateConstant = "unsupported history source %q: %s"
	commandExecutionErrorTemplateConstant    = "project %s failed: %w"
	updatedFileMessageConstant               = "Updated file"
	logFieldFileConstant                     = "file"
	logFieldProjectConstant                  = "project"
)

var errUnexpectedArguments = errors.New(unexpectedArgumentsMessageConstant)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// ConfigurationProvider returns the current project configuration.
type ConfigurationProvider func() Configuration

// CommandBuilder assembles the project command hierarchy.
type CommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider ConfigurationProvider
	GitExecutor           GitExecutor
	Clock                 Clock
}

type helperAction func(command *cobra.Command, helper *Helper) (string, error)

// Build constructs the project command with its subcommands.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	projectCommand := &cobra.Command{
		Use:   projectCommandUseConstant,
		Short: projectCommandShortDescriptionConstant,
		Long:  projectCommandLongDescriptionConstant,
	}
	projectCommand.PersistentFlags().String(projectDirectoryFlagNameConstant, "", projectDirectoryFlagDescriptionConstant)

	versionCommand := builder.newSubcommand(versionCommandUseConstant, versionCommandShortDescriptionConstant, func(command *cobra.Command, helper *Helper) (string, error) {
		projectVersion, versionError := helper.GetVersion()
		if versionError != nil {
			return "", versionError
		}
		fmt.Fprintln(command.OutOrStdout(), projectVersion)
		return "", nil
	})

	updateVersionCommand := builder.newSubcommand(updateVersionCommandUseConstant, updateVersionShortDescriptionConstant, func(_ *cobra.Command, helper *Helper) (string, error) {
		return helper.VersionFilePath(), helper.UpdateVersionFile()
	})

	updateAuthorsCommand := builder.newSubcommand(updateAuthorsCommandUseConstant, updateAuthorsShortDescriptionConstant, func(command *cobra.Command, helper *Helper) (string, error) {
		return helper.AuthorsFilePath(), helper.UpdateAuthorsFile(command.Context())
	})
	updateAuthorsCommand.Flags().String(historySourceFlagNameConstant, "", flags.FormatChoiceUsage(historySourceGitConstant, HistorySourceNames(), historySourceFlagDescriptionConstant))

	updateChangelogCommand := builder.newSubcommand(updateChangelogCommandUseConstant, updateChangelogShortDescriptionConstant, func(_ *cobra.Command, helper *Helper) (string, error) {
		changelogPath := helper.DpkgChangelogPath()
		if _, statError := os.Stat(changelogPath); errors.Is(statError, os.ErrNotExist) {
			return "", nil
		}
		return changelogPath, helper.UpdateDpkgChangelogFile()
	})

	projectCommand.AddCommand(versionCommand, updateVersionCommand, updateAuthorsCommand, updateChangelogCommand)
	return projectCommand, nil
}

func (builder *CommandBuilder) newSubcommand(use string, shortDescription string, action helperAction) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: shortDescription,
		RunE: func(command *cobra.Command, arguments []string) error {
			if len(arguments) > 0 {
				return errUnexpectedArguments
			}
			logger := builder.resolveLogger()
			helper, helperError := builder.newHelper(command, logger)
			if helperError != nil {
				return helperError
			}

			updatedPath, actionError := action(command, helper)
			if actionError != nil {
				return fmt.Errorf(commandExecutionErrorTemplateConstant, use, actionError)
			}
			if len(updatedPath) > 0 {
				logger.Info(updatedFileMessageConstant, zap.String(logFieldFileConstant, updatedPath), zap.String(logFieldProjectConstant, helper.ProjectName()))
			}
			return nil
		},
	}
}

func (builder *CommandBuilder) newHelper(command *cobra.Command, logger *zap.Logger) (*Helper, error) {
	configuration := builder.resolveConfiguration()

	projectDirectory := configuration.ProjectDirectory
	if directoryValue, _ := command.Flags().GetString(projectDirectoryFlagNameConstant); len(strings.TrimSpace(directoryValue)) > 0 {
		projectDirectory = strings.TrimSpace(directoryValue)
	}

	options := []HelperOption{WithLogger(logger), WithClock(builder.Clock)}
	if command.Flags().Lookup(historySourceFlagNameConstant) != nil {
		historySourceName := configuration.HistorySource
		if flagValue, _ := command.Flags().GetString(historySourceFlagNameConstant); len(strings.TrimSpace(flagValue)) > 0 {
			historySourceName = strings.TrimSpace(flagValue)
		}
		if !flags.ValidateChoice(historySourceName, HistorySourceNames()) {
			return nil, fmt.Errorf(unsupportedHistorySourceTemplateConstant, historySourceName, flags.FormatChoiceUsage(historySourceGitConstant, HistorySourceNames(), ""))
		}

		gitExecutor, executorError := builder.resolveGitExecutor(logger)
		if executorError != nil {
			return nil, executorError
		}
		historySource, historyError := NewHistorySource(historySourceName, gitExecutor)
		if historyError != nil {
			return nil, historyError
		}
		options = append(options, WithHistorySource(historySource))
	}

	return NewHelper(projectDirectory, options...)
}

func (builder *CommandBuilder) resolveGitExecutor(logger *zap.Logger) (GitExecutor, error) {
	if builder.GitExecutor != nil {
		return builder.GitExecutor, nil
	}
	return execshell.NewShellExecutor(logger, execshell.NewOSCommandRunner(), execshell.WithCommandEventObserver(ui.NewConsoleCommandEventLogger(logger)))
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
