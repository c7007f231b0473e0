package specfile

import (
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/log2timeline/devtools/internal/projects"
)

const (
	buildRequiresTemplateConstant    = "BuildRequires: %s\n"
	buildRequiresSeparatorConstant   = ", "
	python2PackagePrefixConstant     = "python-"
	python3PackagePrefixConstant     = "python3-"
	architectureLibraryDirConstant   = "%{_libdir}"
	noarchLibraryDirConstant         = "%{_exec_prefix}/lib"
	changelogDateLayoutConstant      = "Mon Jan _2 2006"
	changelogAuthorConstant          = "log2timeline development team <log2timeline-dev@googlegroups.com>"
	excludeBinariesDirectiveConstant = "\n%exclude %{_bindir}/*\n"

	python2BuildDefinitionConstant = "python2 setup.py build\n"
	python3BuildDefinitionConstant = "python3 setup.py build\n"

	python2InstallDefinitionConstant = "python2 setup.py install -O1 --root=%{buildroot}\n"
	python3InstallDefinitionConstant = "python3 setup.py install -O1 --root=%{buildroot}\n"
	removeDocumentationConstant      = "rm -rf %{buildroot}/usr/share/doc/%{name}/\n"
)

var (
	licenseFileNames  = []string{"LICENSE", "LICENSE.txt", "LICENSE.TXT"}
	documentFileNames = []string{
		"CHANGES", "CHANGES.txt", "CHANGES.TXT",
		"README", "README.txt", "README.TXT",
	}
)

// BuildRequires returns the RPM build dependencies declared by the rewritten spec.
func BuildRequires(definition projects.ProjectDefinition) []string {
	buildRequires := []string{"python2-setuptools"}
	if definition.ArchitectureDependent {
		buildRequires = append(buildRequires, "python-devel")
	}
	if !definition.IsPython2Only() {
		buildRequires = append(buildRequires, "python3-setuptools")
		if definition.ArchitectureDependent {
			buildRequires = append(buildRequires, "python3-devel")
		}
	}
	return append(buildRequires, definition.RPMBuildDependencies...)
}

// OSCBuildRequires returns the RPM build dependencies used for openSUSE build service specs.
func OSCBuildRequires(definition projects.ProjectDefinition) []string {
	buildRequires := []string{"python-devel", "python-setuptools"}
	if !definition.IsPython2Only() {
		buildRequires = append(buildRequires, "python3-devel", "python3-setuptools")
	}
	return append(buildRequires, definition.RPMBuildDependencies...)
}

func buildRequiresDirective(buildDependencies []string) string {
	return fmt.Sprintf(buildRequiresTemplateConstant, strings.Join(buildDependencies, buildRequiresSeparatorConstant))
}

func buildDefinition(python2Only bool) string {
	if python2Only {
		return python2BuildDefinitionConstant
	}
	return python2BuildDefinitionConstant + python3BuildDefinitionConstant
}

func installDefinition(python2Only bool) string {
	var builder strings.Builder
	builder.WriteString(python2InstallDefinitionConstant)
	if !python2Only {
		builder.WriteString(python3InstallDefinitionConstant)
	}
	builder.WriteString(removeDocumentationConstant)
	return builder.String()
}

func packageStanza(packageName string, summary string, requires string, description string) string {
	return fmt.Sprintf("%%package -n %s\n%s%s\n%%description -n %s\n%s", packageName, summary, requires, packageName, description)
}

func filesStanza(packageName string, licenseLine string, documentLine string, libraryDirectory string, pythonGlob string) string {
	return fmt.Sprintf("%%files -n %s\n%s%s%s/%s/*\n", packageName, licenseLine, documentLine, libraryDirectory, pythonGlob)
}

func changelogEntry(now time.Time, version string) string {
	return fmt.Sprintf("\n%%changelog\n* %s %s %s-1\n- Auto-generated\n", now.Format(changelogDateLayoutConstant), changelogAuthorConstant, version)
}

func libraryDirectory(definition projects.ProjectDefinition) string {
	if definition.ArchitectureDependent {
		return architectureLibraryDirConstant
	}
	return noarchLibraryDirConstant
}

// licenseLine returns the %license line for the first license file present.
func licenseLine(sourceFiles fs.FS) string {
	for _, fileName := range licenseFileNames {
		if fileExists(sourceFiles, fileName) {
			return fmt.Sprintf("%%license %s\n", fileName)
		}
	}
	return ""
}

// documentLine returns the %doc line listing every documentation file present.
func documentLine(sourceFiles fs.FS) string {
	presentFiles := make([]string, 0, len(documentFileNames))
	for _, fileName := range documentFileNames {
		if fileExists(sourceFiles, fileName) {
			presentFiles = append(presentFiles, fileName)
		}
	}
	if len(presentFiles) == 0 {
		return ""
	}
	return fmt.Sprintf("%%doc %s\n", strings.Join(presentFiles, " "))
}

func fileExists(sourceFiles fs.FS, fileName string) bool {
	if sourceFiles == nil {
		return false
	}
	fileInfo, statError := fs.Stat(sourceFiles, fileName)
	return statError == nil && !fileInfo.IsDir()
}
