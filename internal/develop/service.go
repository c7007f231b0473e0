package develop

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/log2timeline/devtools/internal/ui"
	"github.com/log2timeline/devtools/internal/utils"
)

const (
	buildingImageMessageConstant         = "Building docker image..."
	builtImageTemplateConstant           = "Built image with SHA: %s"
	runningCommandTemplateConstant       = "Running command: %s"
	startingContainerTemplateConstant    = "Starting container with image %s"
	attachInstructionsTemplateConstant   = "To enter the development environment, attach to container %s"
	attachExampleTemplateConstant        = "e.g. 'docker exec -it %s /bin/bash'"
	terminalSizeFallbackTemplateConstant = "Unable to determine the terminal size (%v), using %dx%d"
	buildStepMarkerConstant              = "Step"
	volumeTemplateConstant               = "%s:%s:rw"
	columnsVariableTemplateConstant      = "COLUMNS=%d"
	rowsVariableTemplateConstant         = "ROWS=%d"
	fallbackColumnsConstant              = 80
	fallbackRowsConstant                 = 24

	defaultInstallerScriptConstant          = "config/linux/gift_ppa_install.sh"
	defaultContainerSourceDirectoryConstant = "/root/plaso"

	engineUnavailableMessageConstant    = "Please ensure Docker is installed and running"
	sourceNotConfiguredTemplateConstant = "Please set the %s environment variable to the absolute path to your Plaso source tree"

	logFieldContainerConstant    = "container"
	logFieldImageConstant        = "image"
	logFieldBuildContextConstant = "build_context"
)

// ErrEngineUnavailable indicates the docker daemon could not be reached.
var ErrEngineUnavailable = errors.New(engineUnavailableMessageConstant)

var errEmptyTerminalSize = errors.New("terminal reported no size")

// ErrEngineNotConfigured indicates a service built without an engine.
var ErrEngineNotConfigured = errors.New("container engine not configured")

//go:embed dockerfiles/plaso_dev_dockerfile
var defaultDockerfile []byte

// DefaultDockerfile returns the Dockerfile used when none is configured.
func DefaultDockerfile() []byte {
	return append([]byte(nil), defaultDockerfile...)
}

// TerminalSizeProvider reports the host terminal dimensions.
type TerminalSizeProvider func() (columns int, rows int, err error)

// StandardInputTerminalSize measures the terminal attached to standard input.
func StandardInputTerminalSize() (int, int, error) {
	return term.GetSize(int(os.Stdin.Fd()))
}

// Environment locates the source tree and image the development environment is built from.
type Environment struct {
	SourceDirectory          string
	Image                    ImageReference
	DockerfilePath           string
	InstallerScript          string
	ContainerSourceDirectory string
}

// BuildOptions control an image build.
type BuildOptions struct {
	Verbose bool
	NoCache bool
}

// ServiceOption customizes a Service.
type ServiceOption func(*Service)

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) ServiceOption {
	return func(service *Service) {
		if logger != nil {
			service.logger = logger
		}
	}
}

// WithTerminalSize replaces the terminal size probe.
func WithTerminalSize(provider TerminalSizeProvider) ServiceOption {
	return func(service *Service) {
		if provider != nil {
			service.terminalSize = provider
		}
	}
}

// WithClock sets the modification time source for build context entries.
func WithClock(clock func() time.Time) ServiceOption {
	return func(service *Service) {
		if clock != nil {
			service.clock = clock
		}
	}
}

// Service runs the development environment actions against an Engine.
type Service struct {
	engine       Engine
	environment  Environment
	output       io.Writer
	printer      *ui.StatusPrinter
	logger       *zap.Logger
	terminalSize TerminalSizeProvider
	clock        func() time.Time
}

// NewService constructs a Service printing progress to output.
func NewService(engine Engine, environment Environment, output io.Writer, options ...ServiceOption) *Service {
	if output == nil {
		output = io.Discard
	}
	if len(strings.TrimSpace(environment.InstallerScript)) == 0 {
		environment.InstallerScript = defaultInstallerScriptConstant
	}
	if len(strings.TrimSpace(environment.ContainerSourceDirectory)) == 0 {
		environment.ContainerSourceDirectory = defaultContainerSourceDirectoryConstant
	}

	service := &Service{
		engine:       engine,
		environment:  environment,
		output:       output,
		printer:      ui.NewStatusPrinter(output),
		logger:       zap.NewNop(),
		terminalSize: StandardInputTerminalSize,
		clock:        time.Now,
	}
	for _, option := range options {
		if option != nil {
			option(service)
		}
	}
	return service
}

// CheckEngine verifies the docker daemon answers.
func (service *Service) CheckEngine(executionContext context.Context) error {
	if service.engine == nil {
		return ErrEngineNotConfigured
	}
	if infoError := service.engine.Info(executionContext); infoError != nil {
		service.logger.Debug(engineUnavailableMessageConstant, zap.Error(infoError))
		return fmt.Errorf("%w: %v", ErrEngineUnavailable, infoError)
	}
	return nil
}

// Build creates the development image and returns its identifier.
func (service *Service) Build(executionContext context.Context, options BuildOptions) (string, error) {
	if service.engine == nil {
		return "", ErrEngineNotConfigured
	}
	service.printer.Line(buildingImageMessageConstant)

	entries, entriesError := service.buildContextEntries()
	if entriesError != nil {
		return "", entriesError
	}
	archive, archiveError := newBuildContext(entries, service.clock())
	if archiveError != nil {
		return "", archiveError
	}
	defer func() {
		if closeError := archive.Close(); closeError != nil {
			service.logger.Warn("Failed to remove build context", zap.String(logFieldBuildContextConstant, archive.Path()), zap.Error(closeError))
		}
	}()
	service.logger.Debug("Prepared build context", zap.String(logFieldBuildContextConstant, archive.Path()))

	imageIdentifier, buildError := service.engine.BuildImage(executionContext, BuildRequest{
		Tag:     service.environment.Image.BuildTag,
		Context: archive,
		NoCache: options.NoCache,
		Output:  service.buildProgressHandler(options.Verbose),
	})
	if buildError != nil {
		return "", buildError
	}

	service.printer.Info(builtImageTemplateConstant, imageIdentifier)
	return imageIdentifier, nil
}

// RunCommand runs command in a fresh container and streams its output.
func (service *Service) RunCommand(executionContext context.Context, command []string) error {
	if service.engine == nil {
		return ErrEngineNotConfigured
	}
	service.printer.Info(runningCommandTemplateConstant, strings.Join(command, " "))

	containerIdentifier, runError := service.engine.RunContainer(executionContext, RunRequest{
		Image:   service.environment.Image.RunReference,
		Command: command,
		Volumes: []string{service.sourceVolume()},
	})
	if runError != nil {
		return runError
	}
	service.logger.Debug("Started container", zap.String(logFieldContainerConstant, containerIdentifier), zap.String(logFieldImageConstant, service.environment.Image.RunReference))

	return service.engine.FollowLogs(executionContext, containerIdentifier, service.output)
}

// Start launches a long-running container to attach to and returns its name.
func (service *Service) Start(executionContext context.Context) (string, error) {
	if service.engine == nil {
		return "", ErrEngineNotConfigured
	}
	service.printer.Info(startingContainerTemplateConstant, service.environment.Image.RunReference)

	columns, rows, sizeError := service.terminalSize()
	if sizeError == nil && (columns <= 0 || rows <= 0) {
		sizeError = errEmptyTerminalSize
	}
	if sizeError != nil {
		service.printer.Warn(terminalSizeFallbackTemplateConstant, sizeError, fallbackColumnsConstant, fallbackRowsConstant)
		columns, rows = fallbackColumnsConstant, fallbackRowsConstant
	}

	containerIdentifier, runError := service.engine.RunContainer(executionContext, RunRequest{
		Image: service.environment.Image.RunReference,
		TTY:   true,
		Environment: []string{
			fmt.Sprintf(columnsVariableTemplateConstant, columns),
			fmt.Sprintf(rowsVariableTemplateConstant, rows),
		},
		Volumes: []string{service.sourceVolume()},
	})
	if runError != nil {
		return "", runError
	}

	containerName, nameError := service.engine.ContainerName(executionContext, containerIdentifier)
	if nameError != nil {
		return "", nameError
	}

	service.printer.Line(fmt.Sprintf(attachInstructionsTemplateConstant, containerName))
	service.printer.Line(fmt.Sprintf(attachExampleTemplateConstant, containerName))
	return containerName, nil
}

func (service *Service) buildContextEntries() ([]buildContextEntry, error) {
	installerPath := service.environment.InstallerScript
	if !filepath.IsAbs(installerPath) {
		installerPath = filepath.Join(service.environment.SourceDirectory, filepath.FromSlash(installerPath))
	}
	installerEntry, installerError := readBuildContextEntry(installerPath, installerArchiveNameConstant, installerArchiveModeConstant)
	if installerError != nil {
		return nil, installerError
	}

	dockerfileEntry := buildContextEntry{name: dockerfileArchiveNameConstant, mode: dockerfileArchiveModeConstant, contents: DefaultDockerfile()}
	if len(service.environment.DockerfilePath) > 0 {
		configuredEntry, dockerfileError := readBuildContextEntry(service.environment.DockerfilePath, dockerfileArchiveNameConstant, dockerfileArchiveModeConstant)
		if dockerfileError != nil {
			return nil, dockerfileError
		}
		dockerfileEntry = configuredEntry
	}

	return []buildContextEntry{installerEntry, dockerfileEntry}, nil
}

func (service *Service) buildProgressHandler(verbose bool) utils.LineHandler {
	return func(line string) {
		if verbose {
			trimmedLine := strings.TrimSpace(line)
			if len(trimmedLine) > 0 {
				service.printer.Line(trimmedLine)
			}
			return
		}
		if strings.Contains(line, buildStepMarkerConstant) {
			service.printer.Line(line)
		}
	}
}

func (service *Service) sourceVolume() string {
	return fmt.Sprintf(volumeTemplateConstant, service.environment.SourceDirectory, service.environment.ContainerSourceDirectory)
}

// SourceNotConfiguredError reports a missing source tree environment variable.
type SourceNotConfiguredError struct {
	Variable string
}

// Error implements error.
func (sourceError SourceNotConfiguredError) Error() string {
	return fmt.Sprintf(sourceNotConfiguredTemplateConstant, sourceError.Variable)
}
