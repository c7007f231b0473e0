package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestApplication(testInstance *testing.T, arguments ...string) (*Application, *bytes.Buffer) {
	testInstance.Helper()

	application, creationError := NewApplication()
	require.NoError(testInstance, creationError)

	var output bytes.Buffer
	application.rootCommand.SetOut(&output)
	application.rootCommand.SetErr(&output)
	application.rootCommand.SetArgs(arguments)
	return application, &output
}

func TestApplicationRegistersCommands(testInstance *testing.T) {
	application, _ := newTestApplication(testInstance)

	registered := map[string]bool{}
	for _, command := range application.rootCommand.Commands() {
		registered[command.Name()] = true
	}
	for _, expected := range []string{"project", "update-dependencies", "spec-file", "develop"} {
		require.True(testInstance, registered[expected], expected)
	}
}

func TestApplicationVersionFlag(testInstance *testing.T) {
	application, output := newTestApplication(testInstance, "--version")
	require.NoError(testInstance, application.Execute())
	require.Equal(testInstance, "devtools version dev\n", output.String())
}

func TestApplicationConfigurationLayers(testInstance *testing.T) {
	projectPath := filepath.Join(testInstance.TempDir(), "plaso")
	require.NoError(testInstance, os.MkdirAll(filepath.Join(projectPath, "plaso"), 0o755))
	require.NoError(testInstance, os.WriteFile(filepath.Join(projectPath, "plaso", "__init__.py"), []byte("__version__ = '20190305'\n"), 0o644))

	configurationPath := filepath.Join(testInstance.TempDir(), "config.yaml")
	configurationContent := "common:\n  log_level: error\ntools:\n  project:\n    project_directory: " + projectPath + "\n"
	require.NoError(testInstance, os.WriteFile(configurationPath, []byte(configurationContent), 0o644))

	testInstance.Setenv("DEVTOOLS_TOOLS_DEVELOP_IMAGE_NAME", "plaso-dev:py3")

	application, output := newTestApplication(testInstance, "--config", configurationPath, "--log-format", "structured", "project", "version")
	require.NoError(testInstance, application.Execute())
	require.Equal(testInstance, "20190305\n", output.String())

	require.Equal(testInstance, "error", application.configuration.Common.LogLevel)
	require.Equal(testInstance, "structured", application.configuration.Common.LogFormat)
	require.Equal(testInstance, projectPath, application.configuration.Tools.Project.ProjectDirectory)
	require.Equal(testInstance, "git", application.configuration.Tools.Project.HistorySource)
	require.Equal(testInstance, "plaso-dev:py3", application.configuration.Tools.Develop.ImageName)
	require.Equal(testInstance, configurationPath, application.configurationMetadata.ConfigFileUsed)
}

func TestApplicationRejectsUnknownLogLevel(testInstance *testing.T) {
	projectPath := filepath.Join(testInstance.TempDir(), "plaso")
	application, _ := newTestApplication(testInstance, "--log-level", "verbose", "project", "version", "--project-directory", projectPath)

	executionError := application.Execute()
	require.Error(testInstance, executionError)
	require.Contains(testInstance, executionError.Error(), "unable to create logger: unsupported log level: verbose")
}
