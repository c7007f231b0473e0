package specfile

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"regexp"
	"strings"
	"time"

	"github.com/log2timeline/devtools/internal/projects"
)

const (
	defineNamePrefixConstant              = "%define name "
	defineVersionPrefixConstant           = "%define version "
	defineUnmangledVersionPrefixConstant  = "%define unmangled_version "
	summaryPrefixConstant                 = "Summary: "
	source0PrefixConstant                 = "Source0: "
	buildRootPrefixConstant               = "BuildRoot: "
	requiresPrefixConstant                = "Requires: "
	buildArchNoarchPrefixConstant         = "BuildArch: noarch"
	buildRequiresPrefixConstant           = "BuildRequires: "
	descriptionPrefixConstant             = "%description"
	python2PackageDirectivePrefixConstant = "%package -n python-"
	python3PackageDirectivePrefixConstant = "%package -n python3-"
	prepPrefixConstant                    = "%prep"
	setupPrefixConstant                   = "%setup -n %{name}-%{unmangled_version}"
	buildCommandPrefixConstant            = "python setup.py build"
	installCommandPrefixConstant          = "python setup.py install"
	removeBuildRootLineConstant           = "rm -rf $RPM_BUILD_ROOT"
	filesPrefixConstant                   = "%files"
	macroPrefixConstant                   = "%"
	zipExtensionConstant                  = ".zip"
	lineTerminatorConstant                = "\n"

	zipSource0LineConstant     = "Source0: %{name}-%{unmangled_version}.zip\n"
	removeBuildRootReplacement = "rm -rf %{buildroot}\n"
)

var epochPattern = regexp.MustCompile(`^[0-9]+!`)

// ErrOutputNotConfigured indicates a rewrite without a destination writer.
var ErrOutputNotConfigured = errors.New("spec file output writer not configured")

// RewriteOptions configures a single rewrite of a setup.py generated spec file.
type RewriteOptions struct {
	Project projects.ProjectDefinition
	// ProjectName is the package name written into the spec, usually Project.Name.
	ProjectName string
	// SourceFilename is the source package file name, used to detect zip sources.
	SourceFilename string
	// SourceFiles is the unpacked source tree probed for license and documentation files.
	SourceFiles fs.FS
	// BuildDependencies is the BuildRequires list.
	BuildDependencies []string
	Now               time.Time
}

type scannerState uint8

const (
	statePreamble scannerState = 1 << iota
	stateInDescription
	stateAfterPrep
	stateAfterFiles
)

type ruleOutcome struct {
	output    string
	terminate bool
}

type rewriteRule struct {
	states  scannerState
	matches func(scanner *rewriteScanner, line string) bool
	apply   func(scanner *rewriteScanner, line string) ruleOutcome
}

type rewriteScanner struct {
	options  RewriteOptions
	override ProjectOverride
	state    scannerState

	summary     string
	requires    string
	description string
	version     string

	hasBuildRequires  bool
	hasPython2Package bool
	hasPython3Package bool
}

// Rewrite reads a setup.py generated spec file from input and writes the
// rewritten spec to output.
func Rewrite(input io.Reader, output io.Writer, options RewriteOptions) error {
	if output == nil {
		return ErrOutputNotConfigured
	}
	if len(options.ProjectName) == 0 {
		options.ProjectName = options.Project.Name
	}
	if options.Now.IsZero() {
		options.Now = time.Now()
	}

	scanner := &rewriteScanner{
		options:  options,
		override: OverrideFor(options.ProjectName),
		state:    statePreamble,
	}

	bufferedOutput := bufio.NewWriter(output)
	lineReader := bufio.NewReader(input)
	for scanner.state != stateAfterFiles {
		line, readError := lineReader.ReadString('\n')
		if len(line) > 0 {
			if !strings.HasSuffix(line, lineTerminatorConstant) {
				line += lineTerminatorConstant
			}
			if _, writeError := bufferedOutput.WriteString(scanner.scanLine(line)); writeError != nil {
				return fmt.Errorf("write spec file: %w", writeError)
			}
		}
		if errors.Is(readError, io.EOF) {
			break
		}
		if readError != nil {
			return fmt.Errorf("read spec file: %w", readError)
		}
	}

	if _, writeError := bufferedOutput.WriteString(scanner.trailer()); writeError != nil {
		return fmt.Errorf("write spec file: %w", writeError)
	}
	if flushError := bufferedOutput.Flush(); flushError != nil {
		return fmt.Errorf("write spec file: %w", flushError)
	}
	return nil
}

func (scanner *rewriteScanner) scanLine(line string) string {
	var output strings.Builder

	if scanner.state == stateInDescription {
		if !strings.HasPrefix(line, macroPrefixConstant) {
			if len(scanner.description) > 0 || line != lineTerminatorConstant {
				scanner.description += line
			}
			return ""
		}
		output.WriteString(scanner.closeDescription())
	}

	for _, rule := range rewriteRules {
		if rule.states&scanner.state == 0 || !rule.matches(scanner, line) {
			continue
		}
		outcome := rule.apply(scanner, line)
		output.WriteString(outcome.output)
		if outcome.terminate {
			scanner.state = stateAfterFiles
		}
		return output.String()
	}

	output.WriteString(line)
	return output.String()
}

func (scanner *rewriteScanner) closeDescription() string {
	if len(scanner.options.Project.DescriptionLong) > 0 {
		scanner.description = scanner.options.Project.DescriptionLong + "\n\n"
	}
	scanner.state = statePreamble
	return scanner.description
}

// trailer returns the text appended after the scan: an unterminated
// description, a still missing BuildRequires directive, the %files stanzas, the binary exclusion and the changelog.
func (scanner *rewriteScanner) trailer() string {
	var builder strings.Builder
	if scanner.state == stateInDescription {
		builder.WriteString(scanner.closeDescription())
	}
	builder.WriteString(scanner.pendingBuildRequires())

	python2Only := scanner.options.Project.IsPython2Only()
	license := licenseLine(scanner.options.SourceFiles)
	document := documentLine(scanner.options.SourceFiles)
	libraryDir := libraryDirectory(scanner.options.Project)

	builder.WriteString(filesStanza(python2PackagePrefixConstant+scanner.options.ProjectName, license, document, libraryDir, "python2*"))
	if !python2Only {
		builder.WriteString("\n")
		builder.WriteString(filesStanza(python3PackagePrefixConstant+scanner.options.ProjectName, license, document, libraryDir, "python3*"))
	}
	builder.WriteString(excludeBinariesDirectiveConstant)
	builder.WriteString(changelogEntry(scanner.options.Now, scanner.version))
	return builder.String()
}

func (scanner *rewriteScanner) buildRequiresDirective() string {
	scanner.hasBuildRequires = true
	return buildRequiresDirective(scanner.options.BuildDependencies)
}

// pendingBuildRequires returns the BuildRequires directive if none was written yet.
func (scanner *rewriteScanner) pendingBuildRequires() string {
	if scanner.hasBuildRequires {
		return ""
	}
	return scanner.buildRequiresDirective()
}

func (scanner *rewriteScanner) packageStanzas() string {
	var builder strings.Builder
	if !scanner.hasPython2Package {
		builder.WriteString(packageStanza(python2PackagePrefixConstant+scanner.options.ProjectName, scanner.summary, scanner.requires, scanner.description))
		scanner.hasPython2Package = true
	}
	if !scanner.options.Project.IsPython2Only() && !scanner.hasPython3Package {
		builder.WriteString(packageStanza(python3PackagePrefixConstant+scanner.options.ProjectName, scanner.summary, scanner.requires, scanner.description))
		scanner.hasPython3Package = true
	}
	for _, directive := range scanner.override.PrepDirectives {
		builder.WriteString(directive)
		builder.WriteString(lineTerminatorConstant)
	}
	return builder.String()
}

func stripEpoch(version string) string {
	return epochPattern.ReplaceAllString(version, "")
}

func definedValue(line string, prefix string) string {
	return strings.TrimSpace(strings.TrimPrefix(line, prefix))
}

func hasPrefix(prefix string) func(*rewriteScanner, string) bool {
	return func(_ *rewriteScanner, line string) bool {
		return strings.HasPrefix(line, prefix)
	}
}

func replaceWith(output string) func(*rewriteScanner, string) ruleOutcome {
	return func(*rewriteScanner, string) ruleOutcome {
		return ruleOutcome{output: output}
	}
}

func dropLine(*rewriteScanner, string) ruleOutcome {
	return ruleOutcome{}
}

const (
	preambleStates = statePreamble
	buildStates    = statePreamble | stateAfterPrep
	scanStates     = statePreamble | stateAfterPrep
)

// rewriteRules is evaluated in order; the first matching rule handles the line
// and unmatched lines are copied unchanged.
var rewriteRules = []rewriteRule{
	{
		states:  preambleStates,
		matches: hasPrefix(defineNamePrefixConstant),
		apply: func(scanner *rewriteScanner, _ string) ruleOutcome {
			return ruleOutcome{output: defineNamePrefixConstant + scanner.options.ProjectName + lineTerminatorConstant}
		},
	},
	{
		states:  preambleStates,
		matches: hasPrefix(defineVersionPrefixConstant),
		apply: func(scanner *rewriteScanner, line string) ruleOutcome {
			scanner.version = stripEpoch(definedValue(line, defineVersionPrefixConstant))
			return ruleOutcome{output: defineVersionPrefixConstant + scanner.version + lineTerminatorConstant}
		},
	},
	{
		states:  preambleStates,
		matches: hasPrefix(defineUnmangledVersionPrefixConstant),
		apply: func(scanner *rewriteScanner, line string) ruleOutcome {
			unmangledVersion := stripEpoch(definedValue(line, defineUnmangledVersionPrefixConstant))
			if scanner.override.MirrorVersion && len(scanner.version) > 0 {
				unmangledVersion = scanner.version
			}
			return ruleOutcome{output: defineUnmangledVersionPrefixConstant + unmangledVersion + lineTerminatorConstant}
		},
	},
	{
		states: preambleStates,
		matches: func(scanner *rewriteScanner, line string) bool {
			return len(scanner.summary) == 0 && strings.HasPrefix(line, summaryPrefixConstant)
		},
		apply: func(scanner *rewriteScanner, line string) ruleOutcome {
			scanner.summary = line
			return ruleOutcome{output: line}
		},
	},
	{
		states: preambleStates,
		matches: func(scanner *rewriteScanner, line string) bool {
			return strings.HasPrefix(line, source0PrefixConstant) && strings.HasSuffix(scanner.options.SourceFilename, zipExtensionConstant)
		},
		apply: replaceWith(zipSource0LineConstant),
	},
	{
		states: preambleStates,
		matches: func(scanner *rewriteScanner, line string) bool {
			return strings.HasPrefix(line, buildRootPrefixConstant) && len(scanner.override.BuildRoot) > 0
		},
		apply: func(scanner *rewriteScanner, _ string) ruleOutcome {
			return ruleOutcome{output: buildRootPrefixConstant + scanner.override.BuildRoot + lineTerminatorConstant}
		},
	},
	{
		states: preambleStates,
		matches: func(scanner *rewriteScanner, line string) bool {
			return len(scanner.description) == 0 && len(scanner.requires) == 0 && strings.HasPrefix(line, requiresPrefixConstant)
		},
		apply: func(scanner *rewriteScanner, line string) ruleOutcome {
			scanner.requires = line
			return ruleOutcome{}
		},
	},
	{
		states: preambleStates,
		matches: func(scanner *rewriteScanner, line string) bool {
			return scanner.options.Project.ArchitectureDependent && strings.HasPrefix(line, buildArchNoarchPrefixConstant)
		},
		apply: dropLine,
	},
	{
		states:  preambleStates,
		matches: hasPrefix(buildRequiresPrefixConstant),
		apply: func(scanner *rewriteScanner, _ string) ruleOutcome {
			if scanner.hasBuildRequires {
				return ruleOutcome{}
			}
			return ruleOutcome{output: scanner.buildRequiresDirective()}
		},
	},
	{
		states: preambleStates,
		matches: func(scanner *rewriteScanner, line string) bool {
			return line == lineTerminatorConstant && len(scanner.summary) > 0 && !scanner.hasBuildRequires
		},
		apply: func(scanner *rewriteScanner, _ string) ruleOutcome {
			return ruleOutcome{output: scanner.buildRequiresDirective()}
		},
	},
	{
		states: preambleStates,
		matches: func(scanner *rewriteScanner, line string) bool {
			return len(scanner.description) == 0 && strings.HasPrefix(line, descriptionPrefixConstant)
		},
		apply: func(scanner *rewriteScanner, line string) ruleOutcome {
			output := scanner.pendingBuildRequires()
			scanner.state = stateInDescription
			return ruleOutcome{output: output + line}
		},
	},
	{
		states:  preambleStates,
		matches: hasPrefix(python2PackageDirectivePrefixConstant),
		apply: func(scanner *rewriteScanner, line string) ruleOutcome {
			scanner.hasPython2Package = true
			return ruleOutcome{output: scanner.pendingBuildRequires() + line}
		},
	},
	{
		states:  preambleStates,
		matches: hasPrefix(python3PackageDirectivePrefixConstant),
		apply: func(scanner *rewriteScanner, line string) ruleOutcome {
			scanner.hasPython3Package = true
			return ruleOutcome{output: scanner.pendingBuildRequires() + line}
		},
	},
	{
		states:  preambleStates,
		matches: hasPrefix(prepPrefixConstant),
		apply: func(scanner *rewriteScanner, line string) ruleOutcome {
			output := scanner.pendingBuildRequires()
			scanner.state = stateAfterPrep
			return ruleOutcome{output: output + scanner.packageStanzas() + line}
		},
	},
	{
		states:  buildStates,
		matches: hasPrefix(setupPrefixConstant),
		apply: func(scanner *rewriteScanner, _ string) ruleOutcome {
			return ruleOutcome{output: "%autosetup -n " + scanner.override.setupDirectory() + lineTerminatorConstant}
		},
	},
	{
		states:  buildStates,
		matches: hasPrefix(buildCommandPrefixConstant),
		apply: func(scanner *rewriteScanner, _ string) ruleOutcome {
			return ruleOutcome{output: buildDefinition(scanner.options.Project.IsPython2Only())}
		},
	},
	{
		states:  buildStates,
		matches: hasPrefix(installCommandPrefixConstant),
		apply: func(scanner *rewriteScanner, _ string) ruleOutcome {
			return ruleOutcome{output: installDefinition(scanner.options.Project.IsPython2Only())}
		},
	},
	{
		states: buildStates,
		matches: func(_ *rewriteScanner, line string) bool {
			return strings.TrimRight(line, "\r\n") == removeBuildRootLineConstant
		},
		apply: replaceWith(removeBuildRootReplacement),
	},
	{
		states:  scanStates,
		matches: hasPrefix(filesPrefixConstant),
		apply: func(*rewriteScanner, string) ruleOutcome {
			return ruleOutcome{terminate: true}
		},
	},
}
