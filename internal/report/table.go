package report

import (
	"bufio"
	"io"
	"strings"
	"unicode/utf16"

	"github.com/starford/tgaquery/internal/sparql"
)

// columnGap separates columns and follows the last one.
const columnGap = "  "

// Cells returns the cleaned text of every value, row by row, in the table's
// variable order.
func Cells(t *sparql.Table) [][]string {
	out := make([][]string, 0, len(t.Rows))
	for _, row := range t.Rows {
		cells := make([]string, len(t.Vars))
		for i, name := range t.Vars {
			v, _ := row.Get(name)
			cells[i] = Display(v)
		}
		out = append(out, cells)
	}
	return out
}

// Width is the display length of s in UTF-16 code units, so a character
// outside the Basic Multilingual Plane counts twice.
func Width(s string) int {
	n := 0
	for _, r := range s {
		if l := utf16.RuneLen(r); l > 0 {
			n += l
		} else {
			n++
		}
	}
	return n
}

// Widths returns, per column, the longest of the header label and every cell.
func Widths(header []string, cells [][]string) []int {
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = Width(h)
	}
	for _, row := range cells {
		for i, c := range row {
			if n := Width(c); n > widths[i] {
				widths[i] = n
			}
		}
	}
	return widths
}

// Render writes t as a header line, a blank line, a dashed separator and one
// line per row. Numeric cells are right-aligned, everything else left-aligned.
func Render(w io.Writer, t *sparql.Table) error {
	cells := Cells(t)
	widths := Widths(t.Vars, cells)

	bw := bufio.NewWriter(w)
	writeRow(bw, t.Vars, widths)
	bw.WriteString("\n")
	for _, width := range widths {
		bw.WriteString(strings.Repeat("-", width+len(columnGap)))
	}
	bw.WriteString("\n")
	for _, row := range cells {
		writeRow(bw, row, widths)
	}
	return bw.Flush()
}

func writeRow(w *bufio.Writer, row []string, widths []int) {
	for i, cell := range row {
		pad := strings.Repeat(" ", max(widths[i]-Width(cell), 0))
		if IsNumeric(cell) {
			w.WriteString(pad + cell + columnGap)
		} else {
			w.WriteString(cell + pad + columnGap)
		}
	}
	w.WriteString("\n")
}
