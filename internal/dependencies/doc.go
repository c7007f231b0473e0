// Package dependencies resolves the Python dependencies of a project into
// distribution package names.
//
// Dependency definitions are read from YAML. The Helper answers the questions
// the packaging writers ask: which dpkg and RPM packages provide the runtime
// and test dependencies for a given Python major version, and which PyPI
// requirements belong in requirements.txt.
package dependencies
