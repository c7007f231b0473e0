package dependencies

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	dependenciesOpenErrorTemplateConstant   = "unable to open dependency definitions %s: %w"
	dependenciesDecodeErrorTemplateConstant = "unable to decode dependency definitions %s: %w"
	unnamedDependencyTemplateConstant       = "dependency definition %d in %s has no name"
)

// Definition describes one Python module dependency and its distribution names.
type Definition struct {
	Name            string `yaml:"name"`
	DPKGName        string `yaml:"dpkg_name"`
	RPMName         string `yaml:"rpm_name"`
	PyPIName        string `yaml:"pypi_name"`
	L2TBinariesName string `yaml:"l2tbinaries_name"`
	MinimumVersion  string `yaml:"minimum_version"`
	MaximumVersion  string `yaml:"maximum_version"`
	VersionProperty string `yaml:"version_property"`
	IsOptional      bool   `yaml:"is_optional"`
	Python2Only     bool   `yaml:"python2_only"`
	Python3Only     bool   `yaml:"python3_only"`
}

type definitionsDocument struct {
	Dependencies []Definition `yaml:"dependencies"`
}

// ReadDefinitionsFile reads dependency definitions from the YAML file at path.
// A missing file yields no definitions.
func ReadDefinitionsFile(path string) ([]Definition, error) {
	definitionsFile, openError := os.Open(path)
	if openError != nil {
		if errors.Is(openError, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf(dependenciesOpenErrorTemplateConstant, path, openError)
	}
	defer definitionsFile.Close()

	return ReadDefinitions(definitionsFile, path)
}

// ReadDefinitions decodes dependency definitions from input; source names the input in errors.
func ReadDefinitions(input io.Reader, source string) ([]Definition, error) {
	document := definitionsDocument{}
	decodeError := yaml.NewDecoder(input).Decode(&document)
	if decodeError != nil && !errors.Is(decodeError, io.EOF) {
		return nil, fmt.Errorf(dependenciesDecodeErrorTemplateConstant, source, decodeError)
	}

	for definitionIndex := range document.Dependencies {
		definition := &document.Dependencies[definitionIndex]
		definition.Name = strings.TrimSpace(definition.Name)
		if len(definition.Name) == 0 {
			return nil, fmt.Errorf(unnamedDependencyTemplateConstant, definitionIndex, source)
		}
	}
	return document.Dependencies, nil
}
