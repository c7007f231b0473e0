package ui

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

// StatusPrinter writes coloured progress and error lines.
type StatusPrinter struct {
	output      io.Writer
	renderInfo  func(format string, arguments ...interface{}) string
	renderWarn  func(format string, arguments ...interface{}) string
	renderError func(format string, arguments ...interface{}) string
}

// NewStatusPrinter constructs a StatusPrinter writing to output. Colours follow
// fatih/color's terminal detection.
func NewStatusPrinter(output io.Writer) *StatusPrinter {
	if output == nil {
		output = io.Discard
	}
	return &StatusPrinter{
		output:      output,
		renderInfo:  color.New(color.FgGreen).SprintfFunc(),
		renderWarn:  color.New(color.FgYellow).SprintfFunc(),
		renderError: color.New(color.FgRed, color.Bold).SprintfFunc(),
	}
}

// Line writes text verbatim followed by a newline.
func (printer *StatusPrinter) Line(text string) {
	fmt.Fprintln(printer.output, text)
}

// Info writes a highlighted progress line.
func (printer *StatusPrinter) Info(format string, arguments ...interface{}) {
	fmt.Fprintln(printer.output, printer.renderInfo(format, arguments...))
}

// Warn writes a warning line.
func (printer *StatusPrinter) Warn(format string, arguments ...interface{}) {
	fmt.Fprintln(printer.output, printer.renderWarn(format, arguments...))
}

// Error writes an error line.
func (printer *StatusPrinter) Error(format string, arguments ...interface{}) {
	fmt.Fprintln(printer.output, printer.renderError(format, arguments...))
}
