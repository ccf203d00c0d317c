// Package format is the command-line output formatter spec.md §1 names as
// an out-of-scope collaborator. Grounded on the teacher's cg/gen_format.go
// (title bar, border separator, per-column styling via fatih/color),
// repurposed from AWK-printf codegen to direct ColumnTable rendering since
// this module executes queries in-memory instead of emitting a script.
package format

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/outlierql/diffql/table"
)

// Options controls WriteTable's border and coloring, mirroring the
// teacher's Format entity (title styling, border string, per-column style).
type Options struct {
	Border    string // between-column separator; "-" repeated underlines the header
	NoColor   bool
	HeaderFmt *color.Color // nil leaves the header uncolored; DefaultOptions sets bold cyan
}

func DefaultOptions() Options {
	return Options{Border: "|", HeaderFmt: color.New(color.FgCyan, color.Bold)}
}

// WriteTable renders t as a bordered, column-aligned table, the CLI shell's
// terminal-facing counterpart to the teacher's title()/genNext() AWK output.
func WriteTable(w io.Writer, t *table.ColumnTable, opts Options) error {
	schema := t.Schema()
	widths := make([]int, schema.Len())
	headers := make([]string, schema.Len())
	for i := 0; i < schema.Len(); i++ {
		headers[i] = schema.NameAt(i)
		widths[i] = len(headers[i])
	}

	rows := make([][]string, t.NumRows())
	for r := 0; r < t.NumRows(); r++ {
		row := make([]string, schema.Len())
		for c := 0; c < schema.Len(); c++ {
			row[c] = cellText(t, c, r)
			if len(row[c]) > widths[c] {
				widths[c] = len(row[c])
			}
		}
		rows[r] = row
	}

	border := opts.Border
	if border == "" {
		border = "|"
	}

	if err := writeRow(w, headers, widths, border, opts); err != nil {
		return err
	}
	if err := writeSeparator(w, widths, border); err != nil {
		return err
	}
	for _, row := range rows {
		if err := writeDataRow(w, row, widths, border); err != nil {
			return err
		}
	}
	return nil
}

func cellText(t *table.ColumnTable, colIdx, rowIdx int) string {
	name := t.Schema().NameAt(colIdx)
	col, _ := t.ColumnByName(name)
	if col.Ty == table.Double {
		return strconv.FormatFloat(col.Doubles[rowIdx], 'g', -1, 64)
	}
	return col.Strings[rowIdx]
}

func writeRow(w io.Writer, cells []string, widths []int, border string, opts Options) error {
	var b strings.Builder
	for i, cell := range cells {
		padded := fmt.Sprintf("%s%-*s", border, widths[i]+1, cell)
		if !opts.NoColor && opts.HeaderFmt != nil {
			padded = opts.HeaderFmt.Sprint(padded)
		}
		b.WriteString(padded)
	}
	b.WriteString(border)
	b.WriteString("\n")
	_, err := io.WriteString(w, b.String())
	return err
}

func writeDataRow(w io.Writer, cells []string, widths []int, border string) error {
	var b strings.Builder
	for i, cell := range cells {
		b.WriteString(fmt.Sprintf("%s%-*s", border, widths[i]+1, cell))
	}
	b.WriteString(border)
	b.WriteString("\n")
	_, err := io.WriteString(w, b.String())
	return err
}

func writeSeparator(w io.Writer, widths []int, border string) error {
	total := 0
	for _, wd := range widths {
		total += wd + 1 + len(border)
	}
	total += len(border)
	_, err := io.WriteString(w, strings.Repeat("-", total)+"\n")
	return err
}
