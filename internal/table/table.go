// Package table renders bordered text tables.
package table

import (
	"io"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Alignment controls how a cell is padded to its column width.
type Alignment int

const (
	AlignLeft Alignment = iota
	AlignRight
	AlignCenter
)

var ansiPattern = regexp.MustCompile("\x1b\\[[0-9;]*m")

func stripAnsi(s string) string {
	return ansiPattern.ReplaceAllString(s, "")
}

// visibleWidth is the number of runes in s once color codes are removed.
func visibleWidth(s string) int {
	return utf8.RuneCountInString(stripAnsi(s))
}

// Table accumulates rows and writes them on Render.
type Table struct {
	writer      io.Writer
	header      []string
	headerAlign []Alignment
	columnAlign []Alignment
	rows        [][]string
}

// NewTable returns an empty table that renders to w.
func NewTable(w io.Writer) *Table {
	return &Table{writer: w}
}

// WithHeader sets the column titles.
func (t *Table) WithHeader(header []string) *Table {
	t.header = header
	return t
}

// WithHeaderAlignment sets the alignment of each title.
func (t *Table) WithHeaderAlignment(align []Alignment) *Table {
	t.headerAlign = align
	return t
}

// WithColumnAlignment sets the alignment of each body column.
func (t *Table) WithColumnAlignment(align []Alignment) *Table {
	t.columnAlign = align
	return t
}

// Append adds a row. Cells may contain ANSI color codes.
func (t *Table) Append(row []string) {
	t.rows = append(t.rows, row)
}

// Render writes the table.
func (t *Table) Render() error {
	widths := t.widths()
	border := separator(widths)

	var b strings.Builder
	b.WriteString(border)
	if len(t.header) > 0 {
		writeRow(&b, t.header, widths, t.headerAlign)
		b.WriteString(border)
	}
	for _, row := range t.rows {
		writeRow(&b, row, widths, t.columnAlign)
	}
	b.WriteString(border)
	_, err := io.WriteString(t.writer, b.String())
	return err
}

func (t *Table) widths() []int {
	n := len(t.header)
	for _, row := range t.rows {
		n = max(n, len(row))
	}
	widths := make([]int, n)
	for i, title := range t.header {
		widths[i] = visibleWidth(title)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			widths[i] = max(widths[i], visibleWidth(cell))
		}
	}
	return widths
}

func separator(widths []int) string {
	var b strings.Builder
	b.WriteString("+")
	for _, w := range widths {
		b.WriteString(strings.Repeat("-", w+2))
		b.WriteString("+")
	}
	b.WriteString("\n")
	return b.String()
}

func writeRow(b *strings.Builder, row []string, widths []int, align []Alignment) {
	b.WriteString("|")
	for i, w := range widths {
		var cell string
		if i < len(row) {
			cell = row[i]
		}
		a := AlignLeft
		if i < len(align) {
			a = align[i]
		}
		b.WriteString(" ")
		b.WriteString(pad(cell, w, a))
		b.WriteString(" |")
	}
	b.WriteString("\n")
}

func pad(s string, width int, align Alignment) string {
	fill := width - visibleWidth(s)
	switch align {
	case AlignRight:
		return strings.Repeat(" ", fill) + s
	case AlignCenter:
		left := fill / 2
		return strings.Repeat(" ", left) + s + strings.Repeat(" ", fill-left)
	default:
		return s + strings.Repeat(" ", fill)
	}
}
