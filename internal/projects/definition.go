package projects

// ProjectDefinition holds the packaging metadata of a single project.
type ProjectDefinition struct {
	Name                  string   `yaml:"name"`
	ArchitectureDependent bool     `yaml:"architecture_dependent"`
	Python2Only           bool     `yaml:"python2_only"`
	DescriptionShort      string   `yaml:"description_short"`
	DescriptionLong       string   `yaml:"description_long"`
	Maintainer            string   `yaml:"maintainer"`
	HomepageURL           string   `yaml:"homepage_url"`
	DownloadURL           string   `yaml:"download_url"`
	GitURL                string   `yaml:"git_url"`
	SetupName             string   `yaml:"setup_name"`
	RPMBuildDependencies  []string `yaml:"rpm_build_dependencies"`
	DPKGBuildDependencies []string `yaml:"dpkg_build_dependencies"`
	// Version is the raw requirement string, for example ">=1.2,<2".
	Version string `yaml:"version"`

	versionRequirement VersionRequirement
}

// NewProjectDefinition constructs a definition carrying only a name.
func NewProjectDefinition(name string) ProjectDefinition {
	return ProjectDefinition{Name: name}
}

// IsPython2Only reports whether the project only supports Python 2.
func (definition ProjectDefinition) IsPython2Only() bool {
	return definition.Python2Only
}

// VersionRequirement returns the parsed version requirement.
func (definition ProjectDefinition) VersionRequirement() VersionRequirement {
	return definition.versionRequirement
}

// PackageSetupName returns the name used by setup.py, defaulting to the project name.
func (definition ProjectDefinition) PackageSetupName() string {
	if len(definition.SetupName) > 0 {
		return definition.SetupName
	}
	return definition.Name
}
