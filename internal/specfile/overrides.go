package specfile

const defaultSetupDirectoryConstant = "%{name}-%{unmangled_version}"

// ProjectOverride holds the per-project deviations from a standard setup.py draft.
type ProjectOverride struct {
	// BuildRoot replaces the value of the BuildRoot directive when set.
	BuildRoot string
	// SetupDirectory is the %autosetup -n directory when set.
	SetupDirectory string
	// MirrorVersion sets unmangled_version to the captured version.
	MirrorVersion bool
	// PrepDirectives are written, one per line, immediately before %prep.
	PrepDirectives []string
}

// efilter is released from the dotty source tree; psutil tarballs unpack to
// <name>-release-<version>.
var projectOverrides = map[string]ProjectOverride{
	"efilter": {
		BuildRoot:      "%{_tmppath}/dotty-%{version}-%{release}-buildroot",
		SetupDirectory: "dotty-%{unmangled_version}",
		MirrorVersion:  true,
	},
	"psutil": {
		BuildRoot:      "%{_tmppath}/%{name}-release-%{version}-%{release}-buildroot",
		SetupDirectory: "%{name}-release-%{unmangled_version}",
	},
	"PyYAML": {
		PrepDirectives: []string{"%global debug_package %{nil}", ""},
	},
}

// OverrideFor returns the override registered for projectName, or the zero override.
func OverrideFor(projectName string) ProjectOverride {
	return projectOverrides[projectName]
}

func (override ProjectOverride) setupDirectory() string {
	if len(override.SetupDirectory) > 0 {
		return override.SetupDirectory
	}
	return defaultSetupDirectoryConstant
}
