package develop

import (
	"strings"

	pathutils "github.com/log2timeline/devtools/internal/utils/path"
)

const (
	defaultSourceEnvironmentVariableConstant = "PLASO_SRC"
	defaultImageNameConstant                 = "plaso-dev-environment"
	defaultPythonExecutableConstant          = "python"
)

var developConfigurationHomeDirectoryExpander = pathutils.NewHomeExpander()

// Configuration captures the settings of the develop command.
type Configuration struct {
	SourceEnvironmentVariable string `mapstructure:"source_environment_variable"`
	ImageName                 string `mapstructure:"image_name"`
	Dockerfile                string `mapstructure:"dockerfile"`
	InstallerScript           string `mapstructure:"installer_script"`
	ContainerSourceDirectory  string `mapstructure:"container_source_directory"`
	PythonExecutable          string `mapstructure:"python_executable"`
}

// DefaultConfiguration supplies baseline values for the develop command.
func DefaultConfiguration() Configuration {
	return Configuration{
		SourceEnvironmentVariable: defaultSourceEnvironmentVariableConstant,
		ImageName:                 defaultImageNameConstant,
		InstallerScript:           defaultInstallerScriptConstant,
		ContainerSourceDirectory:  defaultContainerSourceDirectoryConstant,
		PythonExecutable:          defaultPythonExecutableConstant,
	}
}

// Sanitize trims values, expands home directory references and restores
// defaults for blank required settings.
func (configuration Configuration) Sanitize() Configuration {
	defaults := DefaultConfiguration()
	sanitized := Configuration{
		SourceEnvironmentVariable: selectStringValue(configuration.SourceEnvironmentVariable, defaults.SourceEnvironmentVariable),
		ImageName:                 selectStringValue(configuration.ImageName, defaults.ImageName),
		Dockerfile:                developConfigurationHomeDirectoryExpander.Expand(strings.TrimSpace(configuration.Dockerfile)),
		InstallerScript:           selectStringValue(configuration.InstallerScript, defaults.InstallerScript),
		ContainerSourceDirectory:  selectStringValue(configuration.ContainerSourceDirectory, defaults.ContainerSourceDirectory),
		PythonExecutable:          selectStringValue(configuration.PythonExecutable, defaults.PythonExecutable),
	}
	return sanitized
}

func selectStringValue(primaryValue string, fallbackValue string) string {
	trimmedPrimaryValue := strings.TrimSpace(primaryValue)
	if len(trimmedPrimaryValue) > 0 {
		return trimmedPrimaryValue
	}
	return strings.TrimSpace(fallbackValue)
}
