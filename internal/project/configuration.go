package project

import (
	"strings"

	pathutils "github.com/log2timeline/devtools/internal/utils/path"
)

const defaultProjectDirectoryConstant = "."

var projectConfigurationHomeDirectoryExpander = pathutils.NewHomeExpander()

// Configuration captures the settings of the project commands.
type Configuration struct {
	ProjectDirectory string `mapstructure:"project_directory"`
	HistorySource    string `mapstructure:"history_source"`
}

// DefaultConfiguration supplies baseline values for the project commands.
func DefaultConfiguration() Configuration {
	return Configuration{
		ProjectDirectory: defaultProjectDirectoryConstant,
		HistorySource:    historySourceGitConstant,
	}
}

// Sanitize trims values and expands home directory references.
func (configuration Configuration) Sanitize() Configuration {
	sanitized := configuration
	sanitized.ProjectDirectory = projectConfigurationHomeDirectoryExpander.Expand(strings.TrimSpace(configuration.ProjectDirectory))
	if len(sanitized.ProjectDirectory) == 0 {
		sanitized.ProjectDirectory = defaultProjectDirectoryConstant
	}
	sanitized.HistorySource = strings.ToLower(strings.TrimSpace(configuration.HistorySource))
	if len(sanitized.HistorySource) == 0 {
		sanitized.HistorySource = historySourceGitConstant
	}
	return sanitized
}
