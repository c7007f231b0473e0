package project

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	versionFileNameConstant           = "__init__.py"
	versionLinePrefixConstant         = "__version__ = "
	versionValuePrefixConstant        = "__version__ = '"
	versionLineTemplateConstant       = "__version__ = '%s'"
	versionDateLayoutConstant         = "20060102"
	authorsFileNameConstant           = "AUTHORS"
	dpkgChangelogDirectoryConstant    = "config/dpkg"
	dpkgChangelogFileNameConstant     = "changelog"
	dpkgMaintainerConstant            = "Log2Timeline <log2timeline-dev@googlegroups.com>"
	dpkgDateLayoutConstant            = "Mon, 02 Jan 2006 15:04:05 -0700"
	dpkgChangelogTemplateConstant     = "%s (%s-1) unstable; urgency=low\n\n  * Auto-generated\n\n -- %s  %s\n"
	authorNameEmailSeparatorConstant  = "("
	lineSeparatorConstant             = "\n"
	outputFilePermissionsConstant     = 0o644
	projectPathErrorTemplateConstant  = "unable to resolve project path %s: %w"
	unsupportedProjectTemplate        = "%s does not belong to a supported project"
	versionReadErrorTemplateConstant  = "unable to read version file %s: %w"
	versionWriteErrorTemplateConstant = "unable to write version file %s: %w"
	versionMissingTemplateConstant    = "no version line in %s"
	authorsWriteErrorTemplateConstant = "unable to write %s: %w"
	changelogErrorTemplateConstant    = "unable to update dpkg changelog %s: %w"
	authorMismatchLogMessageConstant  = "Detected name mismatch for author"
	logFieldEmailConstant             = "email"
	logFieldRecordedNameConstant      = "recorded_name"
	logFieldCommitNameConstant        = "commit_name"
)

// SupportedProjects lists the project names devtools recognizes.
var SupportedProjects = []string{
	"artifacts",
	"dfdatetime",
	"dfkinds",
	"dfvfs",
	"dfwinreg",
	"dftimewolf",
	"eccemotus",
	"l2tdevtools",
	"l2tdocs",
	"l2tpreg",
	"review",
	"plaso",
}

var authorsFileHeader = []string{
	"# Names should be added to this file with this pattern:",
	"#",
	"# For individuals:",
	"#   Name (email address)",
	"#",
	"# For organizations:",
	"#   Organization (fnmatch pattern)",
	"#",
	"# See python fnmatch module documentation for more information.",
	"",
	"Google Inc. (*@google.com)",
}

var (
	// ErrUnsupportedProject indicates the project path matches no supported project name.
	ErrUnsupportedProject = errors.New("unsupported project")
	// ErrVersionNotFound indicates the version file lacks a __version__ line.
	ErrVersionNotFound = errors.New("version not found")
	// ErrHistorySourceNotConfigured indicates AUTHORS was requested without a history source.
	ErrHistorySourceNotConfigured = errors.New("commit history source not configured")
)

// Clock returns the current time.
type Clock func() time.Time

// HelperOption customizes a Helper.
type HelperOption func(*Helper)

// WithLogger sets the logger used for warnings.
func WithLogger(logger *zap.Logger) HelperOption {
	return func(helper *Helper) {
		if logger != nil {
			helper.logger = logger
		}
	}
}

// WithClock replaces the wall clock.
func WithClock(clock Clock) HelperOption {
	return func(helper *Helper) {
		if clock != nil {
			helper.clock = clock
		}
	}
}

// WithHistorySource sets the source of commit authors.
func WithHistorySource(source HistorySource) HelperOption {
	return func(helper *Helper) {
		helper.history = source
	}
}

// Helper performs housekeeping on the project rooted at a directory.
type Helper struct {
	projectPath string
	projectName string
	logger      *zap.Logger
	clock       Clock
	history     HistorySource
}

// NewHelper resolves the project at projectPath. The project name is the
// first supported name, in sorted order, contained in the directory name.
func NewHelper(projectPath string, options ...HelperOption) (*Helper, error) {
	absolutePath, absoluteError := filepath.Abs(projectPath)
	if absoluteError != nil {
		return nil, fmt.Errorf(projectPathErrorTemplateConstant, projectPath, absoluteError)
	}

	projectName, resolved := ResolveProjectName(absolutePath)
	if !resolved {
		return nil, fmt.Errorf("%w: "+unsupportedProjectTemplate, ErrUnsupportedProject, absolutePath)
	}

	helper := &Helper{
		projectPath: absolutePath,
		projectName: projectName,
		logger:      zap.NewNop(),
		clock:       time.Now,
	}
	for _, option := range options {
		option(helper)
	}
	return helper, nil
}

// ResolveProjectName matches the base name of projectPath against SupportedProjects.
func ResolveProjectName(projectPath string) (string, bool) {
	directoryName := filepath.Base(filepath.Clean(projectPath))

	candidates := append([]string(nil), SupportedProjects...)
	sort.Strings(candidates)
	for _, candidate := range candidates {
		if strings.Contains(directoryName, candidate) {
			return candidate, true
		}
	}
	return "", false
}

// ProjectName returns the resolved project name.
func (helper *Helper) ProjectName() string {
	return helper.projectName
}

// ProjectPath returns the absolute project directory.
func (helper *Helper) ProjectPath() string {
	return helper.projectPath
}

// VersionFilePath returns <project>/<name>/__init__.py.
func (helper *Helper) VersionFilePath() string {
	return filepath.Join(helper.projectPath, helper.projectName, versionFileNameConstant)
}

// GetVersion returns the quoted value of the first __version__ line.
func (helper *Helper) GetVersion() (string, error) {
	versionFilePath := helper.VersionFilePath()
	contents, readError := os.ReadFile(versionFilePath)
	if readError != nil {
		return "", fmt.Errorf(versionReadErrorTemplateConstant, versionFilePath, readError)
	}

	for _, line := range strings.Split(string(contents), lineSeparatorConstant) {
		line = strings.TrimRight(line, "\r")
		if strings.HasPrefix(line, versionValuePrefixConstant) && len(line) > len(versionValuePrefixConstant) {
			return line[len(versionValuePrefixConstant) : len(line)-1], nil
		}
	}
	return "", fmt.Errorf("%w: "+versionMissingTemplateConstant, ErrVersionNotFound, versionFilePath)
}

// UpdateVersionFile sets every __version__ line to today's YYYYMMDD date.
func (helper *Helper) UpdateVersionFile() error {
	versionFilePath := helper.VersionFilePath()
	contents, readError := os.ReadFile(versionFilePath)
	if readError != nil {
		return fmt.Errorf(versionReadErrorTemplateConstant, versionFilePath, readError)
	}

	dateVersion := helper.clock().Format(versionDateLayoutConstant)
	lines := strings.Split(string(contents), lineSeparatorConstant)
	for lineIndex, line := range lines {
		if strings.HasPrefix(line, versionLinePrefixConstant) {
			lines[lineIndex] = fmt.Sprintf(versionLineTemplateConstant, dateVersion)
		}
	}

	if writeError := os.WriteFile(versionFilePath, []byte(strings.Join(lines, lineSeparatorConstant)), outputFilePermissionsConstant); writeError != nil {
		return fmt.Errorf(versionWriteErrorTemplateConstant, versionFilePath, writeError)
	}
	return nil
}

// AuthorsFilePath returns <project>/AUTHORS.
func (helper *Helper) AuthorsFilePath() string {
	return filepath.Join(helper.projectPath, authorsFileNameConstant)
}

// DpkgChangelogPath returns <project>/config/dpkg/changelog.
func (helper *Helper) DpkgChangelogPath() string {
	return filepath.Join(helper.projectPath, filepath.FromSlash(dpkgChangelogDirectoryConstant), dpkgChangelogFileNameConstant)
}

// UpdateAuthorsFile rewrites AUTHORS with the header and every commit author,
// oldest first, keeping the first name seen for each email address.
func (helper *Helper) UpdateAuthorsFile(executionContext context.Context) error {
	if helper.history == nil {
		return ErrHistorySourceNotConfigured
	}

	commitAuthors, historyError := helper.history.CommitAuthors(executionContext, helper.projectPath)
	if historyError != nil {
		return historyError
	}

	namesByEmail := make(map[string]string, len(commitAuthors))
	orderedAuthors := make([]string, 0, len(commitAuthors))
	for authorIndex := len(commitAuthors) - 1; authorIndex >= 0; authorIndex-- {
		author := strings.TrimSpace(commitAuthors[authorIndex])
		if len(author) == 0 {
			continue
		}
		name, email := splitAuthor(author)

		if recordedName, seen := namesByEmail[email]; seen {
			if recordedName != name {
				helper.logger.Warn(
					authorMismatchLogMessageConstant,
					zap.String(logFieldEmailConstant, email),
					zap.String(logFieldRecordedNameConstant, recordedName),
					zap.String(logFieldCommitNameConstant, name),
				)
			}
			continue
		}
		namesByEmail[email] = name
		orderedAuthors = append(orderedAuthors, author)
	}

	fileLines := append(append([]string(nil), authorsFileHeader...), orderedAuthors...)
	authorsPath := helper.AuthorsFilePath()
	fileContent := strings.Join(fileLines, lineSeparatorConstant) + lineSeparatorConstant
	if writeError := os.WriteFile(authorsPath, []byte(fileContent), outputFilePermissionsConstant); writeError != nil {
		return fmt.Errorf(authorsWriteErrorTemplateConstant, authorsPath, writeError)
	}
	return nil
}

// UpdateDpkgChangelogFile rewrites config/dpkg/changelog for the current version.
// A project without a changelog is left untouched.
func (helper *Helper) UpdateDpkgChangelogFile() error {
	changelogPath := helper.DpkgChangelogPath()
	if _, statError := os.Stat(changelogPath); statError != nil {
		if errors.Is(statError, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf(changelogErrorTemplateConstant, changelogPath, statError)
	}

	projectVersion, versionError := helper.GetVersion()
	if versionError != nil {
		return fmt.Errorf(changelogErrorTemplateConstant, changelogPath, versionError)
	}

	changelogContent := fmt.Sprintf(
		dpkgChangelogTemplateConstant,
		helper.projectName,
		projectVersion,
		dpkgMaintainerConstant,
		helper.clock().Format(dpkgDateLayoutConstant),
	)
	if writeError := os.WriteFile(changelogPath, []byte(changelogContent), outputFilePermissionsConstant); writeError != nil {
		return fmt.Errorf(changelogErrorTemplateConstant, changelogPath, writeError)
	}
	return nil
}

// splitAuthor splits "Name (email)" at the last opening parenthesis.
func splitAuthor(author string) (string, string) {
	separatorIndex := strings.LastIndex(author, authorNameEmailSeparatorConstant)
	if separatorIndex < 0 {
		return author, ""
	}
	name := strings.TrimSpace(author[:separatorIndex])
	email := strings.TrimSuffix(author[separatorIndex+1:], ")")
	return name, email
}
