package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Spaces between columns
const columnGap = 2

// Table renders column-aligned output capped to the terminal width.
// Rows are buffered and widths computed at Flush, so the widest cell in
// each column decides the layout. Empty tables produce no output.
type Table struct {
	out     io.Writer
	headers []string
	rows    [][]string
	prefix  string
	width   int
}

// NewTable creates a table with the given column headers.
func NewTable(headers ...string) *Table {
	return &Table{
		out:     os.Stdout,
		headers: headers,
		width:   terminalWidth(),
	}
}

// WithPrefix sets a string prepended to each line (headers, divider, rows).
// Useful for indenting sub-tables within larger output.
func (t *Table) WithPrefix(prefix string) *Table {
	t.prefix = prefix
	return t
}

// Row buffers one row. Missing cells render empty; extra cells are dropped.
func (t *Table) Row(values ...string) {
	row := make([]string, len(t.headers))
	for i := range row {
		if i < len(values) {
			row[i] = values[i]
		}
	}
	t.rows = append(t.rows, row)
}

// Flush renders headers, divider, and the buffered rows. If no rows were
// added, nothing is printed.
func (t *Table) Flush() {
	if len(t.rows) == 0 {
		return
	}

	widths := t.naturalWidths()
	if t.width > 0 {
		widths = capWidths(widths, t.headers, t.width, len(t.prefix))
	}

	t.writeLine(t.headers, widths)
	dividers := make([]string, len(t.headers))
	for i, h := range t.headers {
		dividers[i] = strings.Repeat("-", visualLen(h))
	}
	t.writeLine(dividers, widths)

	for _, row := range t.rows {
		t.writeRow(row, widths)
	}
	t.rows = nil
}

func (t *Table) naturalWidths() []int {
	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = visualLen(h)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			if l := visualLen(cell); l > widths[i] {
				widths[i] = l
			}
		}
	}
	return widths
}

func (t *Table) writeRow(row []string, widths []int) {
	wrapped := make([][]string, len(row))
	depth := 1
	for i, cell := range row {
		wrapped[i] = wrapCell(cell, widths[i])
		if len(wrapped[i]) > depth {
			depth = len(wrapped[i])
		}
	}
	for line := 0; line < depth; line++ {
		cells := make([]string, len(row))
		for i := range row {
			if line < len(wrapped[i]) {
				cells[i] = wrapped[i][line]
			}
		}
		t.writeLine(cells, widths)
	}
}

func (t *Table) writeLine(cells []string, widths []int) {
	var b strings.Builder
	b.WriteString(t.prefix)
	for i, cell := range cells {
		b.WriteString(cell)
		if i < len(cells)-1 {
			b.WriteString(strings.Repeat(" ", widths[i]-visualLen(cell)+columnGap))
		}
	}
	fmt.Fprintln(t.out, strings.TrimRight(b.String(), " "))
}

// capWidths shrinks the widest columns one space at a time until the table
// fits the terminal, never below each column's header width.
func capWidths(widths []int, headers []string, termWidth, prefix int) []int {
	out := make([]int, len(widths))
	copy(out, widths)

	minWidths := make([]int, len(headers))
	for i, h := range headers {
		minWidths[i] = visualLen(h)
	}

	limit := termWidth - prefix
	total := columnGap * (len(out) - 1)
	for _, w := range out {
		total += w
	}

	for total > limit {
		widest := -1
		for i, w := range out {
			if w > minWidths[i] && (widest < 0 || w > out[widest]) {
				widest = i
			}
		}
		if widest < 0 {
			break
		}
		out[widest]--
		total--
	}
	return out
}

// wrapCell wraps a cell value to width, breaking at spaces and hard-breaking
// words longer than the width. Values that fit are returned unchanged.
func wrapCell(s string, width int) []string {
	if visualLen(s) <= width {
		return []string{s}
	}

	var lines []string
	line := ""
	for _, word := range strings.Split(s, " ") {
		for visualLen(word) > width {
			if line != "" {
				lines = append(lines, line)
				line = ""
			}
			runes := []rune(word)
			lines = append(lines, string(runes[:width]))
			word = string(runes[width:])
		}
		switch {
		case line == "":
			line = word
		case visualLen(line)+1+visualLen(word) <= width:
			line += " " + word
		default:
			lines = append(lines, line)
			line = word
		}
	}
	if line != "" {
		lines = append(lines, line)
	}
	return lines
}

// visualLen returns the display width of s, ignoring ANSI color sequences.
func visualLen(s string) int {
	n := 0
	inEscape := false
	for _, r := range s {
		switch {
		case inEscape:
			if r == 'm' {
				inEscape = false
			}
		case r == '\x1b':
			inEscape = true
		default:
			n++
		}
	}
	return n
}

// terminalWidth returns the stdout width, or 0 (no cap) when stdout is not
// a terminal, so piped output keeps its natural column widths.
func terminalWidth() int {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return 0
	}
	if w, _, err := term.GetSize(fd); err == nil && w > 0 {
		return w
	}
	return 80
}
