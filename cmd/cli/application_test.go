package cli_test

import (
	"bytes"
	"testing"

	mapstructure "github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"

	"github.com/log2timeline/devtools/cmd/cli"
	"github.com/log2timeline/devtools/internal/develop"
	"github.com/log2timeline/devtools/internal/project"
	"github.com/log2timeline/devtools/internal/specfile"
	"github.com/log2timeline/devtools/internal/writers"
)

func decodeEmbeddedApplicationConfiguration(testingInstance testing.TB) (*viper.Viper, cli.ApplicationConfiguration) {
	testingInstance.Helper()

	configurationData, configurationType := cli.EmbeddedDefaultConfiguration()
	viperInstance := viper.New()
	viperInstance.SetConfigType(configurationType)

	readError := viperInstance.ReadConfig(bytes.NewReader(configurationData))
	require.NoError(testingInstance, readError)

	var configuration cli.ApplicationConfiguration
	unmarshalError := viperInstance.Unmarshal(&configuration)
	require.NoError(testingInstance, unmarshalError)

	return viperInstance, configuration
}

func decodeSection(testingInstance testing.TB, options map[string]any, target any) {
	testingInstance.Helper()

	decoder, decoderError := mapstructure.NewDecoder(&mapstructure.DecoderConfig{TagName: "mapstructure", Result: target})
	require.NoError(testingInstance, decoderError)
	require.NoError(testingInstance, decoder.Decode(options))
}

func TestEmbeddedDefaultsMatchPackageDefaults(testInstance *testing.T) {
	_, configuration := decodeEmbeddedApplicationConfiguration(testInstance)

	require.Equal(testInstance, "info", configuration.Common.LogLevel)
	require.Equal(testInstance, "console", configuration.Common.LogFormat)
	require.Equal(testInstance, project.DefaultConfiguration().Sanitize(), configuration.Tools.Project.Sanitize())
	require.Equal(testInstance, writers.DefaultConfiguration().Sanitize(), configuration.Tools.Dependencies.Sanitize())
	require.Equal(testInstance, specfile.DefaultConfiguration().Sanitize(), configuration.Tools.SpecFile.Sanitize())
	require.Equal(testInstance, develop.DefaultConfiguration().Sanitize(), configuration.Tools.Develop.Sanitize())
}

func TestEmbeddedDefaultsDecodePerSection(testInstance *testing.T) {
	viperInstance, _ := decodeEmbeddedApplicationConfiguration(testInstance)

	testCases := []struct {
		name      string
		section   string
		assertion func(testing.TB, map[string]any)
	}{
		{
			name:    "develop",
			section: "tools.develop",
			assertion: func(assertionTarget testing.TB, options map[string]any) {
				var configuration develop.Configuration
				decodeSection(assertionTarget, options, &configuration)
				require.Equal(assertionTarget, "PLASO_SRC", configuration.SourceEnvironmentVariable)
				require.Equal(assertionTarget, "plaso-dev-environment", configuration.ImageName)
				require.Equal(assertionTarget, "/root/plaso", configuration.ContainerSourceDirectory)
			},
		},
		{
			name:    "spec_file",
			section: "tools.spec_file",
			assertion: func(assertionTarget testing.TB, options map[string]any) {
				var configuration specfile.Configuration
				decodeSection(assertionTarget, options, &configuration)
				require.Equal(assertionTarget, "python", configuration.PythonExecutable)
				require.Equal(assertionTarget, "build.log", configuration.BuildLogFile)
				require.False(assertionTarget, configuration.OSC)
			},
		},
		{
			name:    "dependencies",
			section: "tools.dependencies",
			assertion: func(assertionTarget testing.TB, options map[string]any) {
				var configuration writers.Configuration
				decodeSection(assertionTarget, options, &configuration)
				require.Equal(assertionTarget, "dependencies.yaml", configuration.DependenciesFile)
				require.Equal(assertionTarget, "test_dependencies.yaml", configuration.TestDependenciesFile)
				require.Empty(assertionTarget, configuration.Writers)
			},
		},
		{
			name:    "project",
			section: "tools.project",
			assertion: func(assertionTarget testing.TB, options map[string]any) {
				var configuration project.Configuration
				decodeSection(assertionTarget, options, &configuration)
				require.Equal(assertionTarget, "git", configuration.HistorySource)
			},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			options := viperInstance.GetStringMap(testCase.section)
			require.NotEmpty(testInstance, options)
			testCase.assertion(testInstance, options)
		})
	}
}
