package specfile_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/log2timeline/devtools/internal/specfile"
)

const testProjectsFileContent = `projects:
  - name: x
    architecture_dependent: true
    setup_name: x
    description_long: Long x description
`

func TestCommandBuilderGenerate(testInstance *testing.T) {
	sourceDirectory := testInstance.TempDir()
	projectsFile := filepath.Join(testInstance.TempDir(), "projects.yaml")
	require.NoError(testInstance, os.WriteFile(projectsFile, []byte(testProjectsFileContent), 0o644))
	outputPath := filepath.Join(testInstance.TempDir(), "x.spec")

	executor := &recordingExecutor{output: "writing dist/x.spec\n", draft: minimalDraftSpec}
	builder := specfile.CommandBuilder{
		Executor: executor,
		Clock:    fixedClock,
		ConfigurationProvider: func() specfile.Configuration {
			return specfile.Configuration{ProjectsFile: projectsFile, PythonExecutable: "python2", BuildLogFile: "build.log"}
		},
	}

	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)
	command.SetContext(context.Background())
	command.SetArgs([]string{"generate", "--project", "x", "--source-directory", sourceDirectory, "--output", outputPath})
	require.NoError(testInstance, command.Execute())

	require.Len(testInstance, executor.commands, 1)
	require.Equal(testInstance, "python2", string(executor.commands[0].Name))
	require.FileExists(testInstance, filepath.Join(sourceDirectory, "build.log"))

	content, readError := os.ReadFile(outputPath)
	require.NoError(testInstance, readError)
	require.Contains(testInstance, string(content), "%description -n python-x\nLong x description\n\n")
	require.Contains(testInstance, string(content), "%{_libdir}/python2*/*\n")
}

func TestCommandBuilderRewrite(testInstance *testing.T) {
	workingDirectory := testInstance.TempDir()
	inputPath := filepath.Join(workingDirectory, "draft.spec")
	require.NoError(testInstance, os.WriteFile(inputPath, []byte(minimalDraftSpec), 0o644))
	outputPath := filepath.Join(workingDirectory, "x.spec")

	builder := specfile.CommandBuilder{Clock: fixedClock}
	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)
	command.SetArgs([]string{"rewrite", "--project", "x", "--source-directory", workingDirectory, "--input", inputPath, "--output", outputPath, "--source-filename", "x-1.0.tar.gz"})
	require.NoError(testInstance, command.Execute())

	content, readError := os.ReadFile(outputPath)
	require.NoError(testInstance, readError)
	require.Equal(testInstance, expectedMinimalSpec, string(content))
}

func TestCommandBuilderValidatesFlags(testInstance *testing.T) {
	testCases := []struct {
		name      string
		arguments []string
		expected  string
	}{
		{name: "missing_project", arguments: []string{"rewrite", "--source-directory", "/src", "--input", "a.spec"}, expected: "a project name is required (--project)"},
		{name: "missing_source_directory", arguments: []string{"rewrite", "--project", "x", "--input", "a.spec"}, expected: "a source directory is required (--source-directory)"},
		{name: "missing_input", arguments: []string{"rewrite", "--project", "x", "--source-directory", "/src"}, expected: "an input spec file is required (--input)"},
		{name: "positional_arguments", arguments: []string{"generate", "extra"}, expected: "spec-file commands do not accept positional arguments"},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			builder := specfile.CommandBuilder{}
			command, buildError := builder.Build()
			require.NoError(testInstance, buildError)
			command.SilenceUsage = true
			command.SilenceErrors = true
			command.SetArgs(testCase.arguments)
			require.EqualError(testInstance, command.Execute(), testCase.expected)
		})
	}
}
