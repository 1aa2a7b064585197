// Package cli implements the wareledger command line: serve, setup,
// hash-password and completion.
package cli

import (
	"fmt"
	"io"
	"os"
)

// Color codes for terminal output
const (
	ColorReset  = "\033[0m"
	ColorRed    = "\033[31m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorBlue   = "\033[34m"
	ColorBold   = "\033[1m"
)

// Printer writes status lines, colored when the destination is a terminal.
type Printer struct {
	out   io.Writer
	color bool
}

// NewPrinter colors output only when out is a character device.
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out, color: isTerminal(out)}
}

func (p *Printer) line(color, mark, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if p.color {
		fmt.Fprintf(p.out, "%s%s%s %s\n", color, mark, ColorReset, msg)
		return
	}
	fmt.Fprintf(p.out, "%s %s\n", mark, msg)
}

// Success prints a success message
func (p *Printer) Success(format string, args ...interface{}) { p.line(ColorGreen, "✓", format, args...) }

// Error prints an error message
func (p *Printer) Error(format string, args ...interface{}) { p.line(ColorRed, "✗", format, args...) }

// Warning prints a warning message
func (p *Printer) Warning(format string, args ...interface{}) { p.line(ColorYellow, "⚠", format, args...) }

// Info prints an info message
func (p *Printer) Info(format string, args ...interface{}) { p.line(ColorBlue, "ℹ", format, args...) }

// Bold returns text in bold when coloring is enabled.
func (p *Printer) Bold(text string) string {
	if !p.color {
		return text
	}
	return ColorBold + text + ColorReset
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	return err == nil && info.Mode()&os.ModeCharDevice != 0
}
