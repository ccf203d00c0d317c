package catalog

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/outlierql/diffql/table"
)

// ColumnSpec names one column of the schema an import should produce.
type ColumnSpec struct {
	Name string
	Ty   table.Type
}

// ImportTable is spec.md §6's importTable(path, schema) -> Table | error,
// delegated to the CSV loader (an out-of-scope collaborator per spec.md
// §1/§6; blocking I/O happens only here, per spec.md §5). There is no
// third-party CSV library in the retrieved corpus to ground this on — see
// DESIGN.md — so it is built directly on stdlib encoding/csv, one row at a
// time, in the single-threaded style spec.md §5 requires of table import.
func ImportTable(r io.Reader, schema []ColumnSpec) (*table.ColumnTable, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = len(schema)

	doubles := make([][]float64, len(schema))
	strs := make([][]string, len(schema))
	for i, c := range schema {
		if c.Ty == table.Double {
			doubles[i] = []float64{}
		} else {
			strs[i] = []string{}
		}
	}

	rowNum := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("csv import: row %d: %w", rowNum, err)
		}
		for i, c := range schema {
			field := record[i]
			if c.Ty == table.Double {
				v, err := strconv.ParseFloat(field, 64)
				if err != nil {
					return nil, fmt.Errorf("csv import: row %d column %q: %w", rowNum, c.Name, err)
				}
				doubles[i] = append(doubles[i], v)
			} else {
				strs[i] = append(strs[i], field)
			}
		}
		rowNum++
	}

	cols := make([]*table.Column, len(schema))
	for i, c := range schema {
		if c.Ty == table.Double {
			cols[i] = table.NewDoubleColumn(c.Name, doubles[i])
		} else {
			cols[i] = table.NewStringColumn(c.Name, strs[i])
		}
	}
	return table.New(cols)
}
