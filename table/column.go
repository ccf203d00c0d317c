// Package table is the Column Table collaborator from spec.md §3/§6: an
// in-memory columnar row-set with named typed columns, row-count, schema
// lookup, row iteration, masked filter, projection, ordering, limit and
// vertical union. Grounded on other_examples/cyw0ng95-sqlvibe__column_store.go
// (typed-vector-per-column store, name→index map) for the overall shape, and
// on the teacher's shallow-copy convention described in spec.md §9 (a small
// header plus shared column handles; Copy clones the header only).
package table

import "fmt"

// Type is the scalar type of a column (spec.md §3: ColumnTable entity).
type Type int

const (
	Double Type = iota
	String
)

func (t Type) String() string {
	switch t {
	case Double:
		return "Double"
	case String:
		return "String"
	default:
		return "Unknown"
	}
}

// Column is one named, typed vector. Only one of Doubles/Strings is
// populated, selected by Ty.
type Column struct {
	Name    string
	Ty      Type
	Doubles []float64
	Strings []string
}

func (c *Column) Len() int {
	if c.Ty == Double {
		return len(c.Doubles)
	}
	return len(c.Strings)
}

// NewDoubleColumn and NewStringColumn build a column from its backing slice.
func NewDoubleColumn(name string, values []float64) *Column {
	return &Column{Name: name, Ty: Double, Doubles: values}
}

func NewStringColumn(name string, values []string) *Column {
	return &Column{Name: name, Ty: String, Strings: values}
}

// Schema is the ordered (name, type) list of a ColumnTable, with a
// name→index lookup (spec.md §3: Schema entity).
type Schema struct {
	columns []Column // Name/Ty only; Doubles/Strings left nil
	index   map[string]int
}

func newSchema(cols []*Column) *Schema {
	s := &Schema{
		columns: make([]Column, len(cols)),
		index:   make(map[string]int, len(cols)),
	}
	for i, c := range cols {
		s.columns[i] = Column{Name: c.Name, Ty: c.Ty}
		s.index[c.Name] = i
	}
	return s
}

func (s *Schema) Len() int { return len(s.columns) }

func (s *Schema) NameAt(i int) string { return s.columns[i].Name }

func (s *Schema) TypeAt(i int) Type { return s.columns[i].Ty }

// IndexOf returns the column's index, or -1 if the table has no such column.
func (s *Schema) IndexOf(name string) int {
	if i, ok := s.index[name]; ok {
		return i
	}
	return -1
}

func (s *Schema) Has(name string) bool {
	_, ok := s.index[name]
	return ok
}

// StringColumnNames returns the names of all String-typed columns, in
// schema order (used by the DIFF Evaluator's ON * auto-selection, §4.5).
func (s *Schema) StringColumnNames() []string {
	var out []string
	for _, c := range s.columns {
		if c.Ty == String {
			out = append(out, c.Name)
		}
	}
	return out
}

func (s *Schema) String() string {
	out := ""
	for i, c := range s.columns {
		if i > 0 {
			out += ", "
		}
		out += fmt.Sprintf("%s:%s", c.Name, c.Ty)
	}
	return out
}
