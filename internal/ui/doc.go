// Package ui renders devtools progress for people at a terminal.
//
// ConsoleCommandEventLogger turns execshell lifecycle events into short log
// lines, and StatusPrinter writes coloured status and error messages for the
// interactive tools.
package ui
