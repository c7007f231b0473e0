package dependencies

import (
	"fmt"
	"sort"
	"strings"
)

// PythonVersion is a Python major version.
type PythonVersion int

// Supported Python major versions.
const (
	Python2 PythonVersion = 2
	Python3 PythonVersion = 3
)

const (
	dpkgPythonPrefixConstant        = "python-"
	rpmPython2PrefixConstant        = "python2-"
	python3PrefixConstant           = "python3-"
	python2SuffixConstant           = "-python"
	rpmPython2SuffixConstant        = "-python2"
	python3SuffixConstant           = "-python3"
	dpkgVersionedTemplateConstant   = "%s (>= %s)"
	rpmVersionedTemplateConstant    = "%s >= %s"
	pypiMinimumTemplateConstant     = "%s >= %s"
	pypiRangeTemplateConstant       = "%s >= %s,< %s"
	dpkgCoveragePackageNameConstant = "coverage"
	toxPackageNameConstant          = "tox"

	pythonDependencyTemplateConstant = "'%s': (%s, %s, %s, %s)"
	pythonNoneConstant               = "None"
	pythonTrueConstant               = "True"
	pythonFalseConstant              = "False"
)

// Helper answers package name queries over runtime and test dependency definitions.
type Helper struct {
	dependencies     []Definition
	testDependencies []Definition
}

// NewHelper constructs a Helper. The definitions are copied.
func NewHelper(dependencies []Definition, testDependencies []Definition) *Helper {
	return &Helper{
		dependencies:     append([]Definition(nil), dependencies...),
		testDependencies: append([]Definition(nil), testDependencies...),
	}
}

// Dependencies returns the runtime dependency definitions in declaration order.
func (helper *Helper) Dependencies() []Definition {
	return append([]Definition(nil), helper.dependencies...)
}

// DPKGDepends returns the dpkg packages of the runtime dependencies, as
// "name (>= version)" unless excludeVersion is set.
func (helper *Helper) DPKGDepends(excludeVersion bool, pythonVersion PythonVersion) []string {
	packageNames := make([]string, 0, len(helper.dependencies))
	for _, definition := range helper.dependenciesFor(helper.dependencies, pythonVersion) {
		packageName := dpkgPackageName(definition, pythonVersion)
		if !excludeVersion && len(definition.MinimumVersion) > 0 {
			packageName = fmt.Sprintf(dpkgVersionedTemplateConstant, packageName, definition.MinimumVersion)
		}
		packageNames = append(packageNames, packageName)
	}
	return packageNames
}

// RPMRequires returns the RPM packages of the runtime dependencies, as
// "name >= version" unless excludeVersion is set.
func (helper *Helper) RPMRequires(excludeVersion bool, pythonVersion PythonVersion) []string {
	packageNames := make([]string, 0, len(helper.dependencies))
	for _, definition := range helper.dependenciesFor(helper.dependencies, pythonVersion) {
		packageName := rpmPackageName(definition, pythonVersion)
		if !excludeVersion && len(definition.MinimumVersion) > 0 {
			packageName = fmt.Sprintf(rpmVersionedTemplateConstant, packageName, definition.MinimumVersion)
		}
		packageNames = append(packageNames, packageName)
	}
	return packageNames
}

// InstallRequires returns the PyPI requirement lines of the runtime dependencies.
func (helper *Helper) InstallRequires() []string {
	return pypiRequirements(helper.dependencies)
}

// TestInstallRequires returns the PyPI requirement lines of the test dependencies.
func (helper *Helper) TestInstallRequires() []string {
	return pypiRequirements(helper.testDependencies)
}

// L2TBinaries returns the l2tbinaries names of the runtime dependencies
// available for pythonVersion.
func (helper *Helper) L2TBinaries(pythonVersion PythonVersion) []string {
	return l2tBinariesNames(helper.dependenciesFor(helper.dependencies, pythonVersion))
}

// TestL2TBinaries returns the l2tbinaries names of the test dependencies
// available for pythonVersion.
func (helper *Helper) TestL2TBinaries(pythonVersion PythonVersion) []string {
	return l2tBinariesNames(helper.dependenciesFor(helper.testDependencies, pythonVersion))
}

// PythonDependencies returns the dependencies.py tuple entries of the runtime
// dependencies: name, version property, minimum and maximum version and the
// optional flag, written as Python literals.
func (helper *Helper) PythonDependencies() []string {
	entries := make([]string, 0, len(helper.dependencies))
	for _, definition := range helper.dependencies {
		entries = append(entries, fmt.Sprintf(
			pythonDependencyTemplateConstant,
			definition.Name,
			pythonString(definition.VersionProperty),
			pythonString(definition.MinimumVersion),
			pythonString(definition.MaximumVersion),
			pythonBool(definition.IsOptional),
		))
	}
	return entries
}

// DPKGTestDependencies returns the sorted dpkg packages needed to run the tests,
// including coverage and tox, without the packages already in pythonDependencies.
func (helper *Helper) DPKGTestDependencies(pythonDependencies []string, pythonVersion PythonVersion) []string {
	testPackages := []string{
		dpkgPackageName(Definition{Name: dpkgCoveragePackageNameConstant}, pythonVersion),
		toxPackageNameConstant,
	}
	for _, definition := range helper.dependenciesFor(helper.testDependencies, pythonVersion) {
		testPackages = append(testPackages, dpkgPackageName(definition, pythonVersion))
	}
	return subtractSorted(testPackages, pythonDependencies)
}

// RPMTestDependencies returns the sorted RPM packages needed to run the tests
// without the packages already in pythonDependencies.
func (helper *Helper) RPMTestDependencies(pythonDependencies []string, pythonVersion PythonVersion) []string {
	testPackages := make([]string, 0, len(helper.testDependencies))
	for _, definition := range helper.dependenciesFor(helper.testDependencies, pythonVersion) {
		testPackages = append(testPackages, rpmPackageName(definition, pythonVersion))
	}
	return subtractSorted(testPackages, pythonDependencies)
}

func (helper *Helper) dependenciesFor(definitions []Definition, pythonVersion PythonVersion) []Definition {
	selected := make([]Definition, 0, len(definitions))
	for _, definition := range definitions {
		if pythonVersion == Python3 && definition.Python2Only {
			continue
		}
		if pythonVersion == Python2 && definition.Python3Only {
			continue
		}
		selected = append(selected, definition)
	}
	return selected
}

func dpkgPackageName(definition Definition, pythonVersion PythonVersion) string {
	packageName := definition.DPKGName
	if len(packageName) == 0 {
		packageName = dpkgPythonPrefixConstant + definition.Name
	}
	if pythonVersion == Python3 {
		return Python3PackageName(packageName)
	}
	return packageName
}

func rpmPackageName(definition Definition, pythonVersion PythonVersion) string {
	packageName := definition.RPMName
	if len(packageName) == 0 {
		packageName = rpmPython2PrefixConstant + definition.Name
	}
	if pythonVersion == Python3 {
		return Python3PackageName(packageName)
	}
	return packageName
}

// Python3PackageName derives the Python 3 package name from a Python 2 one:
// "python-" and "python2-" prefixes and "-python" and "-python2" suffixes become "python3".
func Python3PackageName(packageName string) string {
	switch {
	case strings.HasPrefix(packageName, dpkgPythonPrefixConstant):
		return python3PrefixConstant + strings.TrimPrefix(packageName, dpkgPythonPrefixConstant)
	case strings.HasPrefix(packageName, rpmPython2PrefixConstant):
		return python3PrefixConstant + strings.TrimPrefix(packageName, rpmPython2PrefixConstant)
	case strings.HasSuffix(packageName, python2SuffixConstant):
		return strings.TrimSuffix(packageName, python2SuffixConstant) + python3SuffixConstant
	case strings.HasSuffix(packageName, rpmPython2SuffixConstant):
		return strings.TrimSuffix(packageName, rpmPython2SuffixConstant) + python3SuffixConstant
	}
	return packageName
}

func l2tBinariesNames(definitions []Definition) []string {
	binaryNames := make([]string, 0, len(definitions))
	for _, definition := range definitions {
		binaryName := definition.L2TBinariesName
		if len(binaryName) == 0 {
			binaryName = definition.Name
		}
		binaryNames = append(binaryNames, binaryName)
	}
	return binaryNames
}

func pypiRequirements(definitions []Definition) []string {
	requirements := make([]string, 0, len(definitions))
	for _, definition := range definitions {
		pypiName := definition.PyPIName
		if len(pypiName) == 0 {
			pypiName = definition.Name
		}
		switch {
		case len(definition.MinimumVersion) > 0 && len(definition.MaximumVersion) > 0:
			requirements = append(requirements, fmt.Sprintf(pypiRangeTemplateConstant, pypiName, definition.MinimumVersion, definition.MaximumVersion))
		case len(definition.MinimumVersion) > 0:
			requirements = append(requirements, fmt.Sprintf(pypiMinimumTemplateConstant, pypiName, definition.MinimumVersion))
		default:
			requirements = append(requirements, pypiName)
		}
	}
	return requirements
}

func subtractSorted(candidates []string, excluded []string) []string {
	excludedSet := make(map[string]struct{}, len(excluded))
	for _, name := range excluded {
		excludedSet[name] = struct{}{}
	}

	remaining := make([]string, 0, len(candidates))
	for _, candidate := range candidates {
		if _, skip := excludedSet[candidate]; skip {
			continue
		}
		excludedSet[candidate] = struct{}{}
		remaining = append(remaining, candidate)
	}
	sort.Strings(remaining)
	return remaining
}

func pythonString(value string) string {
	if len(value) == 0 {
		return pythonNoneConstant
	}
	return "'" + strings.ReplaceAll(value, "'", "\\'") + "'"
}

func pythonBool(value bool) string {
	if value {
		return pythonTrueConstant
	}
	return pythonFalseConstant
}
