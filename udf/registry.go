// Package udf is the scalar UDF registry collaborator from spec.md §4.7/§6:
// getFunction(name, argText) -> UDF, each UDF taking a single column
// reference and producing a double column. Grounded on the teacher's
// cg/builtin.go (a fixed, package-level table of named scalar routines),
// generalized from an embedded AWK-source blob to a Go map of closures since
// this module evaluates UDFs directly rather than emitting code for them.
package udf

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/outlierql/diffql/table"
)

// UDF is a scalar user-defined function: name + single string argument
// (interpreted as a column reference), producing a double[] of length |D|
// (spec.md §4.7).
type UDF interface {
	Name() string
	Arg() string
	Eval(t *table.ColumnTable) ([]float64, error)
}

type fn struct {
	name string
	arg  string
	eval func(t *table.ColumnTable, arg string) ([]float64, error)
}

func (f *fn) Name() string { return f.name }
func (f *fn) Arg() string  { return f.arg }
func (f *fn) Eval(t *table.ColumnTable) ([]float64, error) {
	return f.eval(t, f.arg)
}

type builder func(t *table.ColumnTable, arg string) ([]float64, error)

var registry = map[string]builder{
	"length": func(t *table.ColumnTable, arg string) ([]float64, error) {
		col, ok := t.StringColumn(arg)
		if !ok {
			return nil, fmt.Errorf("udf length: column %q is not a string column", arg)
		}
		out := make([]float64, len(col.Strings))
		for i, s := range col.Strings {
			out[i] = float64(len(s))
		}
		return out, nil
	},
	"upperlen": func(t *table.ColumnTable, arg string) ([]float64, error) {
		col, ok := t.StringColumn(arg)
		if !ok {
			return nil, fmt.Errorf("udf upperlen: column %q is not a string column", arg)
		}
		out := make([]float64, len(col.Strings))
		for i, s := range col.Strings {
			out[i] = float64(len(strings.ToUpper(s)))
		}
		return out, nil
	},
	"round": func(t *table.ColumnTable, arg string) ([]float64, error) {
		col, ok := t.DoubleColumn(arg)
		if !ok {
			return nil, fmt.Errorf("udf round: column %q is not a double column", arg)
		}
		out := make([]float64, len(col.Doubles))
		for i, v := range col.Doubles {
			out[i] = math.Round(v)
		}
		return out, nil
	},
	"numeric": func(t *table.ColumnTable, arg string) ([]float64, error) {
		col, ok := t.StringColumn(arg)
		if !ok {
			return nil, fmt.Errorf("udf numeric: column %q is not a string column", arg)
		}
		out := make([]float64, len(col.Strings))
		for i, s := range col.Strings {
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				out[i] = math.NaN()
				continue
			}
			out[i] = v
		}
		return out, nil
	},
}

// GetFunction resolves a UDF by its (possibly qualified) name: any qualifier
// is stripped here and only the trailing segment is looked up, case-
// insensitively, per spec.md §4.7 ("the trailing segment after any
// qualifier").
func GetFunction(name, argText string) (UDF, bool) {
	trailing := name
	if idx := strings.LastIndexByte(name, '.'); idx >= 0 {
		trailing = name[idx+1:]
	}
	b, ok := registry[strings.ToLower(trailing)]
	if !ok {
		return nil, false
	}
	return &fn{name: trailing, arg: argText, eval: b}, true
}
