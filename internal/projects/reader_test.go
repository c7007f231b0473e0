package projects_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/log2timeline/devtools/internal/projects"
)

const testDefinitionsDocument = `projects:
  - name: dfvfs
    description_short: Digital Forensics Virtual File System
    description_long: |-
      dfVFS provides read-only access to file-system objects
      from various storage media types and file formats.
    maintainer: Log2Timeline maintainers <log2timeline-maintainers@googlegroups.com>
    homepage_url: https://github.com/log2timeline/dfvfs
    rpm_build_dependencies: [python2-pytsk3]
    version: ">=20180630"
  - name: pytsk3
    architecture_dependent: true
    python2_only: true
    setup_name: pytsk
    version: "20180"
  - description_short: nameless
`

func TestDefinitionReaderRead(testInstance *testing.T) {
	observerCore, observedLogs := observer.New(zapcore.DebugLevel)
	reader := projects.NewDefinitionReader(zap.New(observerCore))

	definitions, readError := reader.Read(strings.NewReader(testDefinitionsDocument))
	require.NoError(testInstance, readError)
	require.Equal(testInstance, []string{"dfvfs", "pytsk3"}, definitions.Names())

	dfvfsDefinition, lookupError := definitions.Lookup("dfvfs")
	require.NoError(testInstance, lookupError)
	require.False(testInstance, dfvfsDefinition.IsPython2Only())
	require.Equal(testInstance, []string{"python2-pytsk3"}, dfvfsDefinition.RPMBuildDependencies)
	require.Equal(testInstance, "dfVFS provides read-only access to file-system objects\nfrom various storage media types and file formats.", dfvfsDefinition.DescriptionLong)
	require.Equal(testInstance, ">=20180630", dfvfsDefinition.VersionRequirement().String())
	require.Equal(testInstance, "dfvfs", dfvfsDefinition.PackageSetupName())

	pytskDefinition, lookupError := definitions.Lookup("pytsk3")
	require.NoError(testInstance, lookupError)
	require.True(testInstance, pytskDefinition.ArchitectureDependent)
	require.True(testInstance, pytskDefinition.IsPython2Only())
	require.True(testInstance, pytskDefinition.VersionRequirement().IsEmpty())
	require.Equal(testInstance, "pytsk", pytskDefinition.PackageSetupName())

	_, missingError := definitions.Lookup("plaso")
	require.ErrorIs(testInstance, missingError, projects.ErrProjectNotDefined)

	require.Equal(testInstance, 2, observedLogs.FilterLevelExact(zapcore.WarnLevel).Len())
}

func TestDefinitionReaderRejectsDuplicates(testInstance *testing.T) {
	reader := projects.NewDefinitionReader(nil)
	_, readError := reader.Read(strings.NewReader("projects:\n  - name: plaso\n  - name: plaso\n"))
	require.Error(testInstance, readError)
}

func TestDefinitionReaderReadFile(testInstance *testing.T) {
	definitionsPath := filepath.Join(testInstance.TempDir(), "projects.yaml")
	require.NoError(testInstance, os.WriteFile(definitionsPath, []byte(testDefinitionsDocument), 0o600))

	definitions, readError := projects.NewDefinitionReader(nil).ReadFile(definitionsPath)
	require.NoError(testInstance, readError)
	require.Len(testInstance, definitions.Names(), 2)

	_, missingFileError := projects.NewDefinitionReader(nil).ReadFile(filepath.Join(testInstance.TempDir(), "missing.yaml"))
	require.Error(testInstance, missingFileError)
}
