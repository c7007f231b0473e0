package writers

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"go.uber.org/zap"
)

const (
	templateMissingKeyOptionConstant   = "missingkey=error"
	shellScriptExtensionConstant       = ".sh"
	scriptFilePermissionsConstant      = 0o755
	dataFilePermissionsConstant        = 0o644
	outputDirectoryPermissionsConstant = 0o755

	logFieldWriterConstant = "writer"
	logFieldPathConstant   = "path"
)

//go:embed templates/*.tmpl
var embeddedTemplates embed.FS

// ErrTemplatesNotConfigured indicates a renderer without a template source.
var ErrTemplatesNotConfigured = errors.New("writer templates not configured")

// EmbeddedTemplates returns the templates compiled into the binary.
func EmbeddedTemplates() fs.FS {
	templates, _ := fs.Sub(embeddedTemplates, "templates")
	return templates
}

// TemplateSource returns the templates found in directory, or the embedded
// templates when directory is empty.
func TemplateSource(directory string) fs.FS {
	if len(strings.TrimSpace(directory)) == 0 {
		return EmbeddedTemplates()
	}
	return os.DirFS(directory)
}

// Renderer fills writer templates and stores the results under a project directory.
type Renderer struct {
	templates fs.FS
	logger    *zap.Logger
}

// NewRenderer constructs a Renderer reading templates from templates.
func NewRenderer(templates fs.FS, logger *zap.Logger) *Renderer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Renderer{templates: templates, logger: logger}
}

// Render returns the content produced by writer for input.
func (renderer *Renderer) Render(writer Writer, input Input) (string, error) {
	if renderer.templates == nil {
		return "", ErrTemplatesNotConfigured
	}

	parsedTemplate, parseError := template.New(writer.templateName).
		Option(templateMissingKeyOptionConstant).
		ParseFS(renderer.templates, writer.templateName)
	if parseError != nil {
		return "", fmt.Errorf("load template %s: %w", writer.templateName, parseError)
	}

	mapping, mappingError := writer.mapping(input)
	if mappingError != nil {
		return "", mappingError
	}

	var content bytes.Buffer
	if executeError := parsedTemplate.Execute(&content, mapping); executeError != nil {
		return "", fmt.Errorf("render template %s: %w", writer.templateName, executeError)
	}
	return content.String(), nil
}

// Write renders writer and stores the content at its path below projectDirectory.
// It returns the path written.
func (renderer *Renderer) Write(writer Writer, input Input, projectDirectory string) (string, error) {
	content, renderError := renderer.Render(writer, input)
	if renderError != nil {
		return "", fmt.Errorf("%s writer: %w", writer.Name(), renderError)
	}

	outputPath := filepath.Join(projectDirectory, filepath.FromSlash(writer.Path(input.Project)))
	if mkdirError := os.MkdirAll(filepath.Dir(outputPath), outputDirectoryPermissionsConstant); mkdirError != nil {
		return "", fmt.Errorf("%s writer: create directory for %s: %w", writer.Name(), outputPath, mkdirError)
	}

	permissions := fs.FileMode(dataFilePermissionsConstant)
	if strings.HasSuffix(outputPath, shellScriptExtensionConstant) {
		permissions = scriptFilePermissionsConstant
	}
	if writeError := os.WriteFile(outputPath, []byte(content), permissions); writeError != nil {
		return "", fmt.Errorf("%s writer: write %s: %w", writer.Name(), outputPath, writeError)
	}

	renderer.logger.Debug("Wrote file", zap.String(logFieldWriterConstant, writer.Name()), zap.String(logFieldPathConstant, outputPath))
	return outputPath, nil
}
