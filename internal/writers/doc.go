// Package writers renders the dependency related configuration files of a
// project (CI scripts, installer scripts, dependencies.py, the requirements
// files, setup.cfg, tox.ini, appveyor.yml and the dpkg control file) from
// templates and the dependency definitions.
package writers
