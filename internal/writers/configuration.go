package writers

import (
	"strings"

	pathutils "github.com/log2timeline/devtools/internal/utils/path"
)

var writersConfigurationHomeDirectoryExpander = pathutils.NewHomeExpander()

const (
	defaultDependenciesFileConstant     = "dependencies.yaml"
	defaultTestDependenciesFileConstant = "test_dependencies.yaml"
)

// Configuration captures the settings of the update-dependencies command.
type Configuration struct {
	ProjectsFile         string   `mapstructure:"projects_file"`
	DependenciesFile     string   `mapstructure:"dependencies_file"`
	TestDependenciesFile string   `mapstructure:"test_dependencies_file"`
	TemplatesDirectory   string   `mapstructure:"templates_directory"`
	Writers              []string `mapstructure:"writers"`
}

// DefaultConfiguration supplies baseline values for update-dependencies.
func DefaultConfiguration() Configuration {
	return Configuration{
		DependenciesFile:     defaultDependenciesFileConstant,
		TestDependenciesFile: defaultTestDependenciesFileConstant,
	}
}

// Sanitize trims configured values, expands home directory references and
// drops empty writer names.
func (configuration Configuration) Sanitize() Configuration {
	sanitized := configuration
	sanitized.ProjectsFile = writersConfigurationHomeDirectoryExpander.Expand(strings.TrimSpace(configuration.ProjectsFile))
	sanitized.DependenciesFile = strings.TrimSpace(configuration.DependenciesFile)
	if len(sanitized.DependenciesFile) == 0 {
		sanitized.DependenciesFile = defaultDependenciesFileConstant
	}
	sanitized.TestDependenciesFile = strings.TrimSpace(configuration.TestDependenciesFile)
	if len(sanitized.TestDependenciesFile) == 0 {
		sanitized.TestDependenciesFile = defaultTestDependenciesFileConstant
	}
	sanitized.TemplatesDirectory = writersConfigurationHomeDirectoryExpander.Expand(strings.TrimSpace(configuration.TemplatesDirectory))
	sanitized.Writers = sanitizeNames(configuration.Writers)
	return sanitized
}

func sanitizeNames(candidateNames []string) []string {
	sanitizedNames := make([]string, 0, len(candidateNames))
	for _, candidateName := range candidateNames {
		trimmedName := strings.TrimSpace(candidateName)
		if len(trimmedName) == 0 {
			continue
		}
		sanitizedNames = append(sanitizedNames, trimmedName)
	}
	if len(sanitizedNames) == 0 {
		return nil
	}
	return sanitizedNames
}
