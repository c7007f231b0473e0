package projects

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

const (
	definitionsOpenErrorTemplateConstant   = "unable to open project definitions %s: %w"
	definitionsDecodeErrorTemplateConstant = "unable to decode project definitions: %w"
	duplicateProjectTemplateConstant       = "duplicate project definition: %s"
	unknownProjectTemplateConstant         = "project %s is not defined"
	unsupportedVersionLogMessageConstant   = "Ignoring unsupported project version requirement"
	unnamedProjectLogMessageConstant       = "Skipping project definition without a name"
	logFieldProjectConstant                = "project"
	logFieldVersionConstant                = "version"
)

// ErrProjectNotDefined indicates a lookup for a project missing from the definitions.
var ErrProjectNotDefined = errors.New("project not defined")

type definitionsDocument struct {
	Projects []ProjectDefinition `yaml:"projects"`
}

// DefinitionReader decodes project definitions from YAML.
type DefinitionReader struct {
	logger *zap.Logger
}

// NewDefinitionReader constructs a reader that reports ignored input through logger.
func NewDefinitionReader(logger *zap.Logger) *DefinitionReader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DefinitionReader{logger: logger}
}

// ReadFile reads definitions from the YAML file at path.
func (reader *DefinitionReader) ReadFile(path string) (Definitions, error) {
	definitionsFile, openError := os.Open(path)
	if openError != nil {
		return Definitions{}, fmt.Errorf(definitionsOpenErrorTemplateConstant, path, openError)
	}
	defer definitionsFile.Close()

	return reader.Read(definitionsFile)
}

// Read decodes definitions from input. Entries without a name are skipped and
// unsupported version requirements are logged and left empty.
func (reader *DefinitionReader) Read(input io.Reader) (Definitions, error) {
	document := definitionsDocument{}
	decodeError := yaml.NewDecoder(input).Decode(&document)
	if decodeError != nil && !errors.Is(decodeError, io.EOF) {
		return Definitions{}, fmt.Errorf(definitionsDecodeErrorTemplateConstant, decodeError)
	}

	definitions := Definitions{byName: make(map[string]ProjectDefinition, len(document.Projects))}
	for _, definition := range document.Projects {
		definition.Name = strings.TrimSpace(definition.Name)
		if len(definition.Name) == 0 {
			reader.logger.Warn(unnamedProjectLogMessageConstant)
			continue
		}
		if _, duplicate := definitions.byName[definition.Name]; duplicate {
			return Definitions{}, fmt.Errorf(duplicateProjectTemplateConstant, definition.Name)
		}

		requirement, parseError := ParseVersionRequirement(definition.Version)
		if parseError != nil {
			reader.logger.Warn(
				unsupportedVersionLogMessageConstant,
				zap.String(logFieldProjectConstant, definition.Name),
				zap.String(logFieldVersionConstant, definition.Version),
				zap.Error(parseError),
			)
		}
		definition.versionRequirement = requirement
		definitions.byName[definition.Name] = definition
	}
	return definitions, nil
}

// Definitions is a read-only collection of project definitions keyed by name.
type Definitions struct {
	byName map[string]ProjectDefinition
}

// Lookup returns the definition named name.
func (definitions Definitions) Lookup(name string) (ProjectDefinition, error) {
	definition, exists := definitions.byName[name]
	if !exists {
		return ProjectDefinition{}, fmt.Errorf("%w: "+unknownProjectTemplateConstant, ErrProjectNotDefined, name)
	}
	return definition, nil
}

// Names lists the defined projects in sorted order.
func (definitions Definitions) Names() []string {
	names := make([]string, 0, len(definitions.byName))
	for name := range definitions.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
