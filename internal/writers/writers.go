package writers

import (
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/log2timeline/devtools/internal/dependencies"
	"github.com/log2timeline/devtools/internal/projects"
)

// Writer names accepted by the update-dependencies command.
const (
	TravisInstallWriterName            = "travis-install"
	TravisRunTestsWriterName           = "travis-runtests"
	TravisRunPython3WriterName         = "travis-run-python3"
	TravisRunWithTimeoutWriterName     = "travis-run-with-timeout"
	JenkinsEndToEndWriterName          = "jenkins-end-to-end"
	JenkinsEndToEndPython3WriterName   = "jenkins-end-to-end-py3"
	GIFTPPAPython2WriterName           = "gift-ppa"
	GIFTPPAPython3WriterName           = "gift-ppa-py3"
	GIFTCOPRWriterName                 = "gift-copr"
	DependenciesPyWriterName           = "dependencies-py"
	RequirementsWriterName             = "requirements"
	TestRequirementsWriterName         = "test-requirements"
	SetupCfgWriterName                 = "setup-cfg"
	AppveyorYMLWriterName              = "appveyor-yml"
	DPKGControlWriterName              = "dpkg-control"
	ToxIniWriterName                   = "tox-ini"
	dpkgBuildEssentialPackageConstant  = "build-essential"
	pylintPackageConstant              = "pylint"
	sphinxPackageConstant              = "python-sphinx"
	pylintPPATemplateConstant          = "ppa:gift/pylint%d"
	plasoProjectNameConstant           = "plaso"
	dfvfsProjectNameConstant           = "dfvfs"
	timesketchProjectNameConstant      = "timesketch"
	dfvfsScriptsOptionConstant         = "--scripts-directory ./examples"
	plasoScriptsOptionConstant         = "--tools-directory ./tools"
	defaultScriptsOptionConstant       = "--scripts-directory ./scripts"
	dpkgDataDependencyTemplateConstant = "%s-data (>= ${binary:Version})"
	projectPathPlaceholderConstant     = "{project}"
	setupCfgRequiresKeyConstant        = "requires"
	setupCfgDocFilesKeyConstant        = "doc_files"
	toxEnvironmentsConstant            = "py3{6,7,8,9},coverage,pylint"
	toxEnvironmentsWithDocsConstant    = "py3{6,7,8,9},coverage,docs,pylint"
)

var (
	// setupCfgDocumentFiles are listed in setup.cfg when present, in this order.
	setupCfgDocumentFiles = []string{"ACKNOWLEDGEMENTS", "AUTHORS", "LICENSE", "README"}
	// sdistProjects ship test data and need the sdist sections in setup.cfg.
	sdistProjects = map[string]struct{}{"dfvfs": {}, "l2tpreg": {}, "plaso": {}}
)

// sourceDirectoryAliases maps project names to the directory their sources live in.
var sourceDirectoryAliases = map[string]string{
	"esedbrc":  "esedb-kb",
	"winevtrc": "winevt-kb",
	"winregrc": "winreg-kb",
}

// Input carries everything a writer derives its placeholders from.
type Input struct {
	Project      projects.ProjectDefinition
	Dependencies *dependencies.Helper
	// ProjectFiles is the project tree, probed for optional directories.
	ProjectFiles fs.FS
}

// Writer renders one template into one file of the project tree.
type Writer struct {
	name         string
	path         string
	templateName string
	// optional writers only refresh files the project already has.
	optional bool
	mapping  func(Input) (map[string]any, error)
}

// Name returns the writer name.
func (writer Writer) Name() string {
	return writer.name
}

// Path returns the slash separated output path relative to the project directory.
func (writer Writer) Path(project projects.ProjectDefinition) string {
	return strings.ReplaceAll(writer.path, projectPathPlaceholderConstant, project.Name)
}

// Optional reports whether the writer only refreshes an existing file.
func (writer Writer) Optional() bool {
	return writer.optional
}

var registeredWriters = []Writer{
	{name: TravisInstallWriterName, path: "config/travis/install.sh", templateName: "travis_install.sh.tmpl", mapping: travisInstallMapping},
	{name: TravisRunTestsWriterName, path: "config/travis/runtests.sh", templateName: "travis_runtests.sh.tmpl", mapping: sourceDirectoryMapping},
	{name: TravisRunPython3WriterName, path: "config/travis/run_python3.sh", templateName: "travis_run_python3.sh.tmpl", mapping: emptyMapping},
	{name: TravisRunWithTimeoutWriterName, path: "config/travis/run_with_timeout.sh", templateName: "travis_run_with_timeout.sh.tmpl", mapping: emptyMapping},
	{name: RequirementsWriterName, path: "requirements.txt", templateName: "requirements.txt.tmpl", mapping: requirementsMapping},
	{name: TestRequirementsWriterName, path: "test_requirements.txt", templateName: "test_requirements.txt.tmpl", mapping: testRequirementsMapping},
	{name: SetupCfgWriterName, path: "setup.cfg", templateName: "setup.cfg.tmpl", mapping: setupCfgMapping},
	{name: AppveyorYMLWriterName, path: "appveyor.yml", templateName: "appveyor.yml.tmpl", optional: true, mapping: appveyorMapping},
	{name: JenkinsEndToEndWriterName, path: "config/jenkins/linux/run_end_to_end_tests.sh", templateName: "jenkins_run_end_to_end_tests.sh.tmpl", optional: true, mapping: endToEndMapping},
	{name: JenkinsEndToEndPython3WriterName, path: "config/jenkins/linux/run_end_to_end_tests_py3.sh", templateName: "jenkins_run_end_to_end_tests_py3.sh.tmpl", optional: true, mapping: endToEndMapping},
	{name: GIFTPPAPython2WriterName, path: "config/linux/gift_ppa_install.sh", templateName: "gift_ppa_install.sh.tmpl", optional: true, mapping: giftPPAMapping(dependencies.Python2)},
	{name: GIFTPPAPython3WriterName, path: "config/linux/gift_ppa_install_py3.sh", templateName: "gift_ppa_install.sh.tmpl", optional: true, mapping: giftPPAMapping(dependencies.Python3)},
	{name: GIFTCOPRWriterName, path: "config/linux/gift_copr_install.sh", templateName: "gift_copr_install.sh.tmpl", optional: true, mapping: giftCOPRMapping},
	{name: DependenciesPyWriterName, path: projectPathPlaceholderConstant + "/dependencies.py", templateName: "dependencies.py.tmpl", optional: true, mapping: dependenciesPyMapping},
	{name: DPKGControlWriterName, path: "config/dpkg/control", templateName: "dpkg_control.tmpl", optional: true, mapping: dpkgControlMapping},
	{name: ToxIniWriterName, path: "tox.ini", templateName: "tox.ini.tmpl", optional: true, mapping: toxIniMapping},
}

// All returns every writer in the order update-dependencies runs them.
func All() []Writer {
	return append([]Writer(nil), registeredWriters...)
}

// Names returns the names of all writers.
func Names() []string {
	names := make([]string, 0, len(registeredWriters))
	for _, writer := range registeredWriters {
		names = append(names, writer.name)
	}
	return names
}

// Lookup returns the writer named name.
func Lookup(name string) (Writer, bool) {
	for _, writer := range registeredWriters {
		if writer.name == name {
			return writer, true
		}
	}
	return Writer{}, false
}

// SourceDirectory returns the directory holding the project's Python sources.
func SourceDirectory(projectName string) string {
	if alias, exists := sourceDirectoryAliases[projectName]; exists {
		return alias
	}
	return projectName
}

func emptyMapping(Input) (map[string]any, error) {
	return map[string]any{}, nil
}

func sourceDirectoryMapping(input Input) (map[string]any, error) {
	return map[string]any{"source_directory": SourceDirectory(input.Project.Name)}, nil
}

func travisInstallMapping(input Input) (map[string]any, error) {
	helper := input.dependencyHelper()
	dpkgPython3Dependencies := helper.DPKGDepends(true, dependencies.Python3)
	rpmPython3Dependencies := helper.RPMRequires(true, dependencies.Python3)

	return map[string]any{
		"dpkg_build_dependencies":        dpkgBuildEssentialPackageConstant,
		"dpkg_python3_dependencies":      strings.Join(dpkgPython3Dependencies, " "),
		"dpkg_python3_test_dependencies": strings.Join(helper.DPKGTestDependencies(dpkgPython3Dependencies, dependencies.Python3), " "),
		"rpm_python3_dependencies":       strings.Join(rpmPython3Dependencies, " "),
		"rpm_python3_test_dependencies":  strings.Join(helper.RPMTestDependencies(rpmPython3Dependencies, dependencies.Python3), " "),
		"source_directory":               SourceDirectory(input.Project.Name),
	}, nil
}

func endToEndMapping(input Input) (map[string]any, error) {
	scriptsDirectoryOption := defaultScriptsOptionConstant
	switch input.Project.Name {
	case dfvfsProjectNameConstant:
		scriptsDirectoryOption = dfvfsScriptsOptionConstant
	case plasoProjectNameConstant:
		scriptsDirectoryOption = plasoScriptsOptionConstant
	}
	return map[string]any{
		"project_name":             input.Project.Name,
		"scripts_directory_option": scriptsDirectoryOption,
	}, nil
}

func giftPPAMapping(pythonVersion dependencies.PythonVersion) func(Input) (map[string]any, error) {
	return func(input Input) (map[string]any, error) {
		helper := input.dependencyHelper()
		pythonDependencies := helper.DPKGDepends(true, pythonVersion)
		testDependencies := helper.DPKGTestDependencies(pythonDependencies, pythonVersion)

		return map[string]any{
			"debug_dependencies":       FormatShellVariable("DEBUG_DEPENDENCIES", DPKGDebugDependencies(pythonDependencies, pythonVersion)),
			"development_dependencies": FormatShellVariable("DEVELOPMENT_DEPENDENCIES", developmentDependencies(input.Project)),
			"project_name":             input.Project.Name,
			"pylint_ppa":               fmt.Sprintf(pylintPPATemplateConstant, pythonVersion),
			"python_dependencies":      FormatShellVariable(fmt.Sprintf("PYTHON%d_DEPENDENCIES", pythonVersion), pythonDependencies),
			"python_version":           fmt.Sprintf("%d", pythonVersion),
			"test_dependencies":        FormatShellVariable("TEST_DEPENDENCIES", testDependencies),
		}, nil
	}
}

func giftCOPRMapping(input Input) (map[string]any, error) {
	helper := input.dependencyHelper()
	pythonDependencies := helper.RPMRequires(true, dependencies.Python2)
	testDependencies := helper.RPMTestDependencies(pythonDependencies, dependencies.Python2)

	return map[string]any{
		"debug_dependencies":       FormatShellVariable("DEBUG_DEPENDENCIES", RPMDebugDependencies(pythonDependencies)),
		"development_dependencies": FormatShellVariable("DEVELOPMENT_DEPENDENCIES", developmentDependencies(input.Project)),
		"project_name":             input.Project.Name,
		"python_dependencies":      FormatShellVariable("PYTHON2_DEPENDENCIES", pythonDependencies),
		"python_version":           fmt.Sprintf("%d", dependencies.Python2),
		"test_dependencies":        FormatShellVariable("TEST_DEPENDENCIES", testDependencies),
	}, nil
}

func dependenciesPyMapping(input Input) (map[string]any, error) {
	return map[string]any{
		"project_name":        input.Project.Name,
		"python_dependencies": input.dependencyHelper().PythonDependencies(),
	}, nil
}

func requirementsMapping(input Input) (map[string]any, error) {
	return map[string]any{"install_requirements": input.dependencyHelper().InstallRequires()}, nil
}

func testRequirementsMapping(input Input) (map[string]any, error) {
	helper := input.dependencyHelper()
	installRequirements := make(map[string]struct{})
	for _, requirement := range helper.InstallRequires() {
		installRequirements[requirement] = struct{}{}
	}

	testRequirements := []string{}
	for _, requirement := range helper.TestInstallRequires() {
		if _, duplicate := installRequirements[requirement]; duplicate {
			continue
		}
		testRequirements = append(testRequirements, requirement)
	}
	return map[string]any{"test_requirements": testRequirements}, nil
}

func setupCfgMapping(input Input) (map[string]any, error) {
	documentFiles := []string{}
	for _, documentFile := range setupCfgDocumentFiles {
		if regularFileExists(input.ProjectFiles, documentFile) {
			documentFiles = append(documentFiles, documentFile)
		}
	}
	_, includeSdist := sdistProjects[input.Project.Name]

	return map[string]any{
		"doc_files":     FormatContinuedSetting(setupCfgDocFilesKeyConstant, documentFiles),
		"include_sdist": includeSdist,
		"maintainer":    input.Project.Maintainer,
		"requires":      FormatContinuedSetting(setupCfgRequiresKeyConstant, input.dependencyHelper().RPMRequires(false, dependencies.Python2)),
	}, nil
}

func appveyorMapping(input Input) (map[string]any, error) {
	helper := input.dependencyHelper()
	binaryNames := append(helper.L2TBinaries(dependencies.Python3), helper.TestL2TBinaries(dependencies.Python3)...)
	return map[string]any{"python3_dependencies": strings.Join(sortedUnique(binaryNames), " ")}, nil
}

func toxIniMapping(input Input) (map[string]any, error) {
	pathsToLint := []string{}
	if directoryExists(input.ProjectFiles, input.Project.Name) {
		pathsToLint = append(pathsToLint, input.Project.Name)
	}
	switch {
	case directoryExists(input.ProjectFiles, "scripts"):
		pathsToLint = append(pathsToLint, "scripts")
	case directoryExists(input.ProjectFiles, "tools"):
		pathsToLint = append(pathsToLint, "tools")
	}
	if directoryExists(input.ProjectFiles, "tests") {
		pathsToLint = append(pathsToLint, "tests")
	}
	sort.Strings(pathsToLint)

	hasDocs := directoryExists(input.ProjectFiles, "docs")
	environments := toxEnvironmentsConstant
	if hasDocs {
		environments = toxEnvironmentsWithDocsConstant
	}
	return map[string]any{
		"envlist":       environments,
		"has_docs":      hasDocs,
		"paths_to_lint": strings.Join(pathsToLint, " "),
		"project_name":  input.Project.Name,
	}, nil
}

func dpkgControlMapping(input Input) (map[string]any, error) {
	project := input.Project
	hasDataPackage := directoryExists(input.ProjectFiles, "data")
	hasToolsPackage := directoryExists(input.ProjectFiles, "scripts") ||
		directoryExists(input.ProjectFiles, "tools") ||
		project.Name == timesketchProjectNameConstant

	python3Dependencies := input.dependencyHelper().DPKGDepends(false, dependencies.Python3)
	if hasDataPackage {
		python3Dependencies = append([]string{fmt.Sprintf(dpkgDataDependencyTemplateConstant, project.Name)}, python3Dependencies...)
	}
	formattedDependencies := strings.Join(python3Dependencies, ", ")
	if len(formattedDependencies) > 0 {
		formattedDependencies += ", "
	}

	descriptionLines := strings.Split(project.DescriptionLong, "\n")
	for index, line := range descriptionLines {
		descriptionLines[index] = " " + line
	}

	nameDescription := project.DescriptionShort
	if len(nameDescription) == 0 {
		nameDescription = project.Name
	}

	return map[string]any{
		"description_long":     strings.Join(descriptionLines, "\n"),
		"has_data_package":     hasDataPackage,
		"has_tools_package":    hasToolsPackage,
		"homepage_url":         project.HomepageURL,
		"maintainer":           project.Maintainer,
		"name_description":     nameDescription,
		"project_name":         project.Name,
		"python3_dependencies": formattedDependencies,
	}, nil
}

// FormatShellVariable formats values as a sorted shell variable assignment with
// one value per line, continuation lines aligned under the first value.
func FormatShellVariable(variableName string, values []string) string {
	if len(values) == 0 {
		return ""
	}
	sortedValues := append([]string(nil), values...)
	sort.Strings(sortedValues)

	prefix := variableName + "=\""
	indentation := strings.Repeat(" ", len(prefix))
	lines := make([]string, 0, len(sortedValues))
	for index, value := range sortedValues {
		line := indentation + value
		if index == 0 {
			line = prefix + value
		}
		if index == len(sortedValues)-1 {
			line += "\";"
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// FormatContinuedSetting formats values as a setup.cfg setting with one value
// per line, continuation lines aligned under the first value. Every line ends
// with a newline; no values yield an empty string.
func FormatContinuedSetting(key string, values []string) string {
	var builder strings.Builder
	prefix := key + " = "
	indentation := strings.Repeat(" ", len(prefix))
	for index, value := range values {
		if index == 0 {
			builder.WriteString(prefix)
		} else {
			builder.WriteString(indentation)
		}
		builder.WriteString(value)
		builder.WriteString("\n")
	}
	return builder.String()
}

// DPKGDebugDependencies returns the debug packages of the libyal bindings in
// pythonDependencies: <lib>-dbg and <lib>-<python>-dbg.
func DPKGDebugDependencies(pythonDependencies []string, pythonVersion dependencies.PythonVersion) []string {
	pythonSuffix := "python"
	if pythonVersion == dependencies.Python3 {
		pythonSuffix = "python3"
	}

	sortedDependencies := append([]string(nil), pythonDependencies...)
	sort.Strings(sortedDependencies)

	debugDependencies := []string{}
	for _, dependency := range sortedDependencies {
		if !strings.HasPrefix(dependency, "lib") || !strings.HasSuffix(dependency, pythonSuffix) {
			continue
		}
		libraryName, _, _ := strings.Cut(dependency, "-")
		debugDependencies = append(debugDependencies, libraryName+"-dbg", libraryName+"-"+pythonSuffix+"-dbg")
	}
	return debugDependencies
}

// RPMDebugDependencies returns the debuginfo packages of the libyal bindings in
// pythonDependencies.
func RPMDebugDependencies(pythonDependencies []string) []string {
	sortedDependencies := append([]string(nil), pythonDependencies...)
	sort.Strings(sortedDependencies)

	debugDependencies := []string{}
	for _, dependency := range sortedDependencies {
		if !strings.HasPrefix(dependency, "lib") {
			continue
		}
		if !strings.HasSuffix(dependency, "python") && !strings.HasSuffix(dependency, "python2") && !strings.HasSuffix(dependency, "python3") {
			continue
		}
		libraryName, _, _ := strings.Cut(dependency, "-")
		debugDependencies = append(debugDependencies, libraryName+"-debuginfo", dependency+"-debuginfo")
	}
	return debugDependencies
}

func developmentDependencies(project projects.ProjectDefinition) []string {
	developmentPackages := []string{pylintPackageConstant}
	if project.Name == plasoProjectNameConstant {
		developmentPackages = append(developmentPackages, sphinxPackageConstant)
	}
	return developmentPackages
}

func (input Input) dependencyHelper() *dependencies.Helper {
	if input.Dependencies == nil {
		return dependencies.NewHelper(nil, nil)
	}
	return input.Dependencies
}

func directoryExists(projectFiles fs.FS, name string) bool {
	if projectFiles == nil {
		return false
	}
	fileInfo, statError := fs.Stat(projectFiles, path.Clean(name))
	return statError == nil && fileInfo.IsDir()
}

func regularFileExists(projectFiles fs.FS, name string) bool {
	if projectFiles == nil {
		return false
	}
	fileInfo, statError := fs.Stat(projectFiles, path.Clean(name))
	return statError == nil && fileInfo.Mode().IsRegular()
}

func sortedUnique(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	unique := make([]string, 0, len(names))
	for _, name := range names {
		if _, duplicate := seen[name]; duplicate {
			continue
		}
		seen[name] = struct{}{}
		unique = append(unique, name)
	}
	sort.Strings(unique)
	return unique
}
