package table

import "fmt"

// ColumnTable is the row-set data structure from spec.md §3: an ordered list
// of named, typed columns sharing one row count. Instances inside the Table
// Store are conceptually immutable and shared by read-only reference; any
// operation that "mutates" (AddColumn, RenameColumn) instead returns a new
// header over the same column handles, per the invariant in spec.md §9 ("a
// small header ... plus column handles that are refcounted/shared; copy
// clones the header only").
type ColumnTable struct {
	rows    int
	columns []*Column
	schema  *Schema
}

// New builds a ColumnTable from columns, validating that every column has
// the same length (spec.md §3 invariant: "All columns of a ColumnTable have
// equal length").
func New(columns []*Column) (*ColumnTable, error) {
	rows := 0
	if len(columns) > 0 {
		rows = columns[0].Len()
	}
	for _, c := range columns {
		if c.Len() != rows {
			return nil, fmt.Errorf("column %q has length %d, expected %d", c.Name, c.Len(), rows)
		}
	}
	return &ColumnTable{rows: rows, columns: columns, schema: newSchema(columns)}, nil
}

func (t *ColumnTable) NumRows() int { return t.rows }

func (t *ColumnTable) Schema() *Schema { return t.schema }

// Copy returns a shallow copy: the column list is cloned, but the column
// handles (and their backing slices) are shared, so appending to the copy's
// list never mutates the original (spec.md §3/§9/§8 law 5).
func (t *ColumnTable) Copy() *ColumnTable {
	cols := make([]*Column, len(t.columns))
	copy(cols, t.columns)
	return &ColumnTable{rows: t.rows, columns: cols, schema: t.schema}
}

// ColumnByName returns the named column, or false if absent.
func (t *ColumnTable) ColumnByName(name string) (*Column, bool) {
	idx := t.schema.IndexOf(name)
	if idx < 0 {
		return nil, false
	}
	return t.columns[idx], true
}

// DoubleColumn and StringColumn are typed accessors (spec.md §6:
// "column-by-name (typed)").
func (t *ColumnTable) DoubleColumn(name string) (*Column, bool) {
	c, ok := t.ColumnByName(name)
	if !ok || c.Ty != Double {
		return nil, false
	}
	return c, true
}

func (t *ColumnTable) StringColumn(name string) (*Column, bool) {
	c, ok := t.ColumnByName(name)
	if !ok || c.Ty != String {
		return nil, false
	}
	return c, true
}

// StringColumnByName matches the collaborator surface named in spec.md §6.
func (t *ColumnTable) StringColumnByName(name string) (*Column, bool) {
	return t.StringColumn(name)
}

// StringColsByName returns every requested string column, keyed by name.
// Columns that don't exist or aren't String-typed are simply omitted; the
// caller is responsible for rejecting missing names explicitly.
func (t *ColumnTable) StringColsByName(names []string) map[string]*Column {
	out := make(map[string]*Column, len(names))
	for _, n := range names {
		if c, ok := t.StringColumn(n); ok {
			out[n] = c
		}
	}
	return out
}

// AddColumn returns a new table (a copy) with col appended. The receiver is
// untouched, matching spec.md §9's "mutation happens only on copies".
func (t *ColumnTable) AddColumn(col *Column) (*ColumnTable, error) {
	if col.Len() != t.rows {
		return nil, fmt.Errorf("column %q has length %d, expected %d", col.Name, col.Len(), t.rows)
	}
	out := t.Copy()
	out.columns = append(out.columns, col)
	out.schema = newSchema(out.columns)
	return out, nil
}

// RenameColumn returns a new table with the named column renamed.
func (t *ColumnTable) RenameColumn(from, to string) (*ColumnTable, error) {
	idx := t.schema.IndexOf(from)
	if idx < 0 {
		return nil, fmt.Errorf("column %q not found", from)
	}
	out := t.Copy()
	renamed := *out.columns[idx]
	renamed.Name = to
	out.columns[idx] = &renamed
	out.schema = newSchema(out.columns)
	return out, nil
}

// Project returns a new table containing only the named columns, in the
// given order (spec.md §6: project(names) -> Table).
func (t *ColumnTable) Project(names []string) (*ColumnTable, error) {
	cols := make([]*Column, 0, len(names))
	for _, n := range names {
		idx := t.schema.IndexOf(n)
		if idx < 0 {
			return nil, fmt.Errorf("column %q not found", n)
		}
		cols = append(cols, t.columns[idx])
	}
	return &ColumnTable{rows: t.rows, columns: cols, schema: newSchema(cols)}, nil
}

// Filter returns a new table containing only the rows selected by mask
// (spec.md §6: filter(mask) -> Table; §8 law 1: |filter(D,E)| <= |D|).
func (t *ColumnTable) Filter(mask *Bitset) (*ColumnTable, error) {
	if mask.Len() != t.rows {
		return nil, fmt.Errorf("mask length %d does not match table row count %d", mask.Len(), t.rows)
	}
	idx := make([]int, 0, mask.Count())
	for i := 0; i < t.rows; i++ {
		if mask.Get(i) {
			idx = append(idx, i)
		}
	}
	cols := make([]*Column, len(t.columns))
	for i, c := range t.columns {
		cols[i] = gatherColumn(c, idx)
	}
	return &ColumnTable{rows: len(idx), columns: cols, schema: t.schema}, nil
}

func gatherColumn(c *Column, idx []int) *Column {
	switch c.Ty {
	case Double:
		vals := make([]float64, len(idx))
		for i, r := range idx {
			vals[i] = c.Doubles[r]
		}
		return NewDoubleColumn(c.Name, vals)
	default:
		vals := make([]string, len(idx))
		for i, r := range idx {
			vals[i] = c.Strings[r]
		}
		return NewStringColumn(c.Name, vals)
	}
}

// GetMaskForFilter builds a Bitset by applying predicate to every row index
// (spec.md §6). colIdx is not consulted; the predicate reads whatever column
// it needs. engine.EvalPredicate builds its masks directly and does not call
// this method.
func (t *ColumnTable) GetMaskForFilter(colIdx int, predicate func(row int) bool) *Bitset {
	mask := NewBitset(t.rows)
	for i := 0; i < t.rows; i++ {
		if predicate(i) {
			mask.Set(i)
		}
	}
	return mask
}

// OrderBy returns a new table with rows sorted by a single column (spec.md
// §9 item 5: multi-column sort is out of scope).
func (t *ColumnTable) OrderBy(name string, ascending bool) (*ColumnTable, error) {
	idx := t.schema.IndexOf(name)
	if idx < 0 {
		return nil, fmt.Errorf("column %q not found", name)
	}
	order := make([]int, t.rows)
	for i := range order {
		order[i] = i
	}
	col := t.columns[idx]
	less := func(a, b int) bool {
		switch col.Ty {
		case Double:
			if ascending {
				return col.Doubles[a] < col.Doubles[b]
			}
			return col.Doubles[a] > col.Doubles[b]
		default:
			if ascending {
				return col.Strings[a] < col.Strings[b]
			}
			return col.Strings[a] > col.Strings[b]
		}
	}
	insertionSort(order, less)

	cols := make([]*Column, len(t.columns))
	for i, c := range t.columns {
		cols[i] = gatherColumn(c, order)
	}
	return &ColumnTable{rows: t.rows, columns: cols, schema: t.schema}, nil
}

// insertionSort keeps OrderBy's semantics simple and stable without pulling
// in sort.Slice's interface-boxing for a single comparator; fine at the row
// counts this in-memory engine is built for.
func insertionSort(order []int, less func(a, b int) bool) {
	for i := 1; i < len(order); i++ {
		v := order[i]
		j := i - 1
		for j >= 0 && less(v, order[j]) {
			order[j+1] = order[j]
			j--
		}
		order[j+1] = v
	}
}

// Limit returns a new table containing at most n leading rows (spec.md §6).
func (t *ColumnTable) Limit(n int) *ColumnTable {
	if n >= t.rows {
		return t.Copy()
	}
	if n < 0 {
		n = 0
	}
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	cols := make([]*Column, len(t.columns))
	for i, c := range t.columns {
		cols[i] = gatherColumn(c, idx)
	}
	return &ColumnTable{rows: n, columns: cols, schema: t.schema}
}

// RowIterator calls fn for every row index until fn returns false.
func (t *ColumnTable) RowIterator(fn func(row int) bool) {
	for i := 0; i < t.rows; i++ {
		if !fn(i) {
			return
		}
	}
}

// UnionAll vertically concatenates tables sharing a schema (spec.md §6/§4.1:
// used to build the tagged table in DIFF Shape A).
func UnionAll(tables []*ColumnTable) (*ColumnTable, error) {
	if len(tables) == 0 {
		return &ColumnTable{}, nil
	}
	base := tables[0].schema
	total := 0
	for _, t := range tables {
		if t.schema.Len() != base.Len() {
			return nil, fmt.Errorf("unionAll: schema mismatch")
		}
		for i := 0; i < base.Len(); i++ {
			if t.schema.NameAt(i) != base.NameAt(i) || t.schema.TypeAt(i) != base.TypeAt(i) {
				return nil, fmt.Errorf("unionAll: schema mismatch on column %q", base.NameAt(i))
			}
		}
		total += t.rows
	}

	cols := make([]*Column, base.Len())
	for i := 0; i < base.Len(); i++ {
		switch base.TypeAt(i) {
		case Double:
			vals := make([]float64, 0, total)
			for _, t := range tables {
				vals = append(vals, t.columns[i].Doubles...)
			}
			cols[i] = NewDoubleColumn(base.NameAt(i), vals)
		default:
			vals := make([]string, 0, total)
			for _, t := range tables {
				vals = append(vals, t.columns[i].Strings...)
			}
			cols[i] = NewStringColumn(base.NameAt(i), vals)
		}
	}
	return &ColumnTable{rows: total, columns: cols, schema: newSchema(cols)}, nil
}
