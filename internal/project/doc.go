// Package project performs housekeeping on a checked out project.
//
// Helper identifies the project from its directory name, reads and bumps the
// date based version in <name>/__init__.py, regenerates AUTHORS from commit
// history and rewrites the dpkg changelog stub. Commit history comes from a
// HistorySource: the git command line or an in-process go-git reader.
package project
