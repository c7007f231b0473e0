package specfile

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/log2timeline/devtools/internal/execshell"
	"github.com/log2timeline/devtools/internal/projects"
)

const (
	defaultPythonExecutableConstant = "python"
	setupScriptNameConstant         = "setup.py"
	bdistRPMCommandConstant         = "bdist_rpm"
	specOnlyFlagConstant            = "--spec-only"
	distDirectoryNameConstant       = "dist"
	specFileExtensionConstant       = ".spec"
	buildLogFilePermissionsConstant = 0o644
	specFilePermissionsConstant     = 0o644

	logFieldSourceDirectoryConstant = "source_directory"
	logFieldBuildLogConstant        = "build_log"
	logFieldInputPathConstant       = "input_path"
	logFieldOutputPathConstant      = "output_path"
	logFieldProjectConstant         = "project"
)

// ErrExecutorNotConfigured indicates a generator built without a command executor.
var ErrExecutorNotConfigured = errors.New("spec file command executor not configured")

// CommandExecutor runs external commands.
type CommandExecutor interface {
	Execute(executionContext context.Context, command execshell.ShellCommand) (execshell.ExecutionResult, error)
}

// Clock supplies the changelog date.
type Clock func() time.Time

// GeneratorOption customizes a Generator.
type GeneratorOption func(*Generator)

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) GeneratorOption {
	return func(generator *Generator) {
		if logger != nil {
			generator.logger = logger
		}
	}
}

// WithClock replaces the system clock.
func WithClock(clock Clock) GeneratorOption {
	return func(generator *Generator) {
		if clock != nil {
			generator.clock = clock
		}
	}
}

// WithPythonExecutable selects the interpreter that runs setup.py.
func WithPythonExecutable(executable string) GeneratorOption {
	return func(generator *Generator) {
		if len(executable) > 0 {
			generator.pythonExecutable = executable
		}
	}
}

// Generator produces draft spec files through setup.py and rewrites them.
type Generator struct {
	executor         CommandExecutor
	logger           *zap.Logger
	clock            Clock
	pythonExecutable string
}

// NewGenerator constructs a Generator.
func NewGenerator(executor CommandExecutor, options ...GeneratorOption) *Generator {
	generator := &Generator{
		executor:         executor,
		logger:           zap.NewNop(),
		clock:            time.Now,
		pythonExecutable: defaultPythonExecutableConstant,
	}
	for _, option := range options {
		option(generator)
	}
	return generator
}

// DraftSpecFilePath returns where bdist_rpm --spec-only writes its draft.
func DraftSpecFilePath(sourceDirectory string, setupName string) string {
	return filepath.Join(sourceDirectory, distDirectoryNameConstant, setupName+specFileExtensionConstant)
}

// GenerateWithSetupPy runs "setup.py bdist_rpm --spec-only" in sourceDirectory
// and appends the combined command output to buildLogPath.
func (generator *Generator) GenerateWithSetupPy(executionContext context.Context, sourceDirectory string, buildLogPath string) error {
	if generator.executor == nil {
		return ErrExecutorNotConfigured
	}

	buildLog, openError := os.OpenFile(buildLogPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, buildLogFilePermissionsConstant)
	if openError != nil {
		return fmt.Errorf("open build log %s: %w", buildLogPath, openError)
	}
	defer buildLog.Close()

	command := execshell.ShellCommand{
		Name: execshell.CommandName(generator.pythonExecutable),
		Details: execshell.CommandDetails{
			Arguments:        []string{setupScriptNameConstant, bdistRPMCommandConstant, specOnlyFlagConstant},
			WorkingDirectory: sourceDirectory,
			OutputWriter:     buildLog,
		},
	}
	if _, executeError := generator.executor.Execute(executionContext, command); executeError != nil {
		generator.logger.Error(
			"Draft spec file generation failed",
			zap.String(logFieldSourceDirectoryConstant, sourceDirectory),
			zap.String(logFieldBuildLogConstant, buildLogPath),
			zap.Error(executeError),
		)
		return fmt.Errorf("generate spec file in %s: %w", sourceDirectory, executeError)
	}
	return nil
}

// RewriteSetupPyGeneratedFile rewrites the draft at inputPath into outputPath.
func (generator *Generator) RewriteSetupPyGeneratedFile(definition projects.ProjectDefinition, sourceDirectory string, sourceFilename string, projectName string, inputPath string, outputPath string) error {
	return generator.rewriteFile(definition, sourceDirectory, sourceFilename, projectName, BuildRequires(definition), inputPath, outputPath)
}

// RewriteSetupPyGeneratedFileForOSC rewrites the draft with the openSUSE build service dependencies.
func (generator *Generator) RewriteSetupPyGeneratedFileForOSC(definition projects.ProjectDefinition, sourceDirectory string, sourceFilename string, projectName string, inputPath string, outputPath string) error {
	return generator.rewriteFile(definition, sourceDirectory, sourceFilename, projectName, OSCBuildRequires(definition), inputPath, outputPath)
}

func (generator *Generator) rewriteFile(definition projects.ProjectDefinition, sourceDirectory string, sourceFilename string, projectName string, buildDependencies []string, inputPath string, outputPath string) (resultError error) {
	inputFile, openError := os.Open(inputPath)
	if openError != nil {
		return fmt.Errorf("open spec file %s: %w", inputPath, openError)
	}
	defer inputFile.Close()

	outputFile, createError := os.OpenFile(outputPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, specFilePermissionsConstant)
	if createError != nil {
		return fmt.Errorf("create spec file %s: %w", outputPath, createError)
	}
	defer func() {
		if closeError := outputFile.Close(); closeError != nil && resultError == nil {
			resultError = fmt.Errorf("close spec file %s: %w", outputPath, closeError)
		}
	}()

	options := RewriteOptions{
		Project:           definition,
		ProjectName:       projectName,
		SourceFilename:    sourceFilename,
		SourceFiles:       os.DirFS(sourceDirectory),
		BuildDependencies: buildDependencies,
		Now:               generator.clock(),
	}
	if rewriteError := Rewrite(inputFile, outputFile, options); rewriteError != nil {
		return fmt.Errorf("rewrite spec file %s: %w", inputPath, rewriteError)
	}

	generator.logger.Debug(
		"Rewrote spec file",
		zap.String(logFieldProjectConstant, options.ProjectName),
		zap.String(logFieldInputPathConstant, inputPath),
		zap.String(logFieldOutputPathConstant, outputPath),
	)
	return nil
}
