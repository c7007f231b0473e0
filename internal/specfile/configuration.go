package specfile

import (
	"strings"

	pathutils "github.com/log2timeline/devtools/internal/utils/path"
)

var specFileConfigurationHomeDirectoryExpander = pathutils.NewHomeExpander()

// Configuration captures the settings of the spec-file commands.
type Configuration struct {
	ProjectsFile     string `mapstructure:"projects_file"`
	PythonExecutable string `mapstructure:"python_executable"`
	BuildLogFile     string `mapstructure:"build_log_file"`
	OSC              bool   `mapstructure:"osc"`
}

// DefaultConfiguration supplies baseline values for the spec-file commands.
func DefaultConfiguration() Configuration {
	return Configuration{
		PythonExecutable: defaultPythonExecutableConstant,
		BuildLogFile:     "build.log",
	}
}

// Sanitize trims configured values and expands home directory references.
func (configuration Configuration) Sanitize() Configuration {
	sanitized := configuration
	sanitized.ProjectsFile = specFileConfigurationHomeDirectoryExpander.Expand(strings.TrimSpace(configuration.ProjectsFile))
	sanitized.PythonExecutable = strings.TrimSpace(configuration.PythonExecutable)
	sanitized.BuildLogFile = specFileConfigurationHomeDirectoryExpander.Expand(strings.TrimSpace(configuration.BuildLogFile))
	return sanitized
}

func selectStringValue(flagValue string, configuredValue string) string {
	trimmedFlagValue := strings.TrimSpace(flagValue)
	if len(trimmedFlagValue) > 0 {
		return trimmedFlagValue
	}
	return strings.TrimSpace(configuredValue)
}
