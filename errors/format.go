package errors

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

// Formatter formats errors as Rust-style diagnostics, optionally colored.
type Formatter struct {
	// UseColor enables ANSI color codes in output.
	UseColor bool
}

// NewFormatter creates a new error formatter.
func NewFormatter(useColor bool) *Formatter {
	return &Formatter{UseColor: useColor}
}

// Colors used for error formatting
var (
	colorError     = forced(color.FgRed)
	colorErrorBold = forced(color.FgHiRed, color.Bold)
	colorCode      = forced(color.FgHiBlack)
	colorLocation  = forced(color.FgCyan)
	colorLineNum   = forced(color.FgHiBlack)
	colorSource    = forced(color.FgWhite)
	colorCaret     = forced(color.FgHiRed)
	colorHint      = forced(color.FgHiYellow)
	colorNote      = forced(color.FgHiBlue)
)

// forced builds a color that ignores the global NoColor switch; whether to
// colorize is decided per Formatter.
func forced(attrs ...color.Attribute) *color.Color {
	c := color.New(attrs...)
	c.EnableColor()
	return c
}

// FormattedError represents an error ready for display.
type FormattedError struct {
	Code        ErrorCode
	Kind        string // "error", "compile error", "runtime error", etc.
	Message     string
	Filename    string
	Line        int
	Column      int
	SourceLines []SourceLineEntry
	Hint        string
	Note        string
}

// SourceLineEntry represents a line of source code with its number.
type SourceLineEntry struct {
	Number int
	Text   string
	IsMain bool // True if this is the line with the error
}

func (f *Formatter) paint(c *color.Color, s string) string {
	if !f.UseColor {
		return s
	}
	return c.Sprint(s)
}

// Format formats the error as a multi-line diagnostic.
func (f *Formatter) Format(err *FormattedError) string {
	var b strings.Builder

	lineNumWidth := 2
	if err.Line >= 100 {
		lineNumWidth = len(fmt.Sprintf("%d", err.Line))
	}

	f.writeHeader(&b, err)
	f.writeLocation(&b, err, lineNumWidth)
	f.writeSource(&b, err, lineNumWidth)
	if err.Hint != "" {
		f.writeTrailer(&b, colorHint, "hint: ", err.Hint, lineNumWidth)
	}
	if err.Note != "" {
		f.writeTrailer(&b, colorNote, "note: ", err.Note, lineNumWidth)
	}
	return b.String()
}

func (f *Formatter) writeHeader(b *strings.Builder, err *FormattedError) {
	label := "error"
	if err.Kind != "" {
		label = err.Kind
	}
	b.WriteString(f.paint(colorErrorBold, label))
	if err.Code != "" {
		b.WriteString(f.paint(colorCode, fmt.Sprintf("[%s]", err.Code)))
	}
	b.WriteString(f.paint(colorError, ": "))
	b.WriteString(err.Message)
	b.WriteString("\n")
}

func (f *Formatter) writeLocation(b *strings.Builder, err *FormattedError, lineNumWidth int) {
	if err.Line == 0 && err.Filename == "" {
		return
	}
	b.WriteString(strings.Repeat(" ", lineNumWidth))
	b.WriteString(f.paint(colorLocation, "-->"))
	b.WriteString(" ")

	loc := ""
	if err.Filename != "" {
		loc = err.Filename
		if err.Line > 0 {
			loc += fmt.Sprintf(":%d:%d", err.Line, err.Column)
		}
	} else if err.Line > 0 {
		loc = fmt.Sprintf("%d:%d", err.Line, err.Column)
	}
	b.WriteString(f.paint(colorLocation, loc))
	b.WriteString("\n")
}

func (f *Formatter) writeSource(b *strings.Builder, err *FormattedError, lineNumWidth int) {
	if len(err.SourceLines) == 0 {
		return
	}
	padding := strings.Repeat(" ", lineNumWidth)

	b.WriteString(padding)
	b.WriteString(f.paint(colorLineNum, " |\n"))

	for _, line := range err.SourceLines {
		b.WriteString(f.paint(colorLineNum, fmt.Sprintf("%*d", lineNumWidth, line.Number)))
		b.WriteString(f.paint(colorLineNum, " | "))
		b.WriteString(f.paint(colorSource, line.Text))
		b.WriteString("\n")

		if line.IsMain && err.Column > 0 {
			b.WriteString(padding)
			b.WriteString(f.paint(colorLineNum, " | "))
			b.WriteString(strings.Repeat(" ", err.Column-1))
			b.WriteString(f.paint(colorCaret, "^"))
			b.WriteString("\n")
		}
	}
}

func (f *Formatter) writeTrailer(b *strings.Builder, c *color.Color, label, text string, lineNumWidth int) {
	b.WriteString(strings.Repeat(" ", lineNumWidth))
	b.WriteString(f.paint(colorLineNum, " = "))
	b.WriteString(f.paint(c, label))
	b.WriteString(text)
	b.WriteString("\n")
}
