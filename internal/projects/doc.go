// Package projects describes the Python projects devtools maintains.
//
// A ProjectDefinition carries the packaging metadata a project needs: the
// descriptions and URLs rendered into packaging files, the architecture and
// Python 2 flags that steer spec file generation, and the build dependencies.
// Definitions are read from a YAML document listing every project.
package projects
