package engine

import (
	"fmt"
	"testing"

	"github.com/outlierql/diffql/sql"
	"github.com/outlierql/diffql/table"
	"github.com/stretchr/testify/assert"
)

// TestInnerJoinQualificationScenarioS4 mirrors spec.md S4: B has columns
// (id, name); S has columns (id, name); joined on id; output columns are
// id, B.name, S.name.
func TestInnerJoinQualificationScenarioS4(t *testing.T) {
	assert := assert.New(t)

	big, err := table.New([]*table.Column{
		table.NewDoubleColumn("id", []float64{1, 2, 3}),
		table.NewStringColumn("name", []string{"b1", "b2", "b3"}),
	})
	assert.NoError(err)

	small, err := table.New([]*table.Column{
		table.NewDoubleColumn("id", []float64{2, 3}),
		table.NewStringColumn("name", []string{"s2", "s3"}),
	})
	assert.NoError(err)

	out, err := executeJoin(big, "B", small, "S", &sql.OnCriteria{Column: "id"})
	assert.NoError(err)

	assert.True(out.Schema().Has("id"))
	assert.True(out.Schema().Has("B.name"))
	assert.True(out.Schema().Has("S.name"))
	assert.Equal(2, out.NumRows())

	id, _ := out.DoubleColumn("id")
	bName, _ := out.StringColumn("B.name")
	sName, _ := out.StringColumn("S.name")
	for i, v := range id.Doubles {
		if v == 2 {
			assert.Equal("b2", bName.Strings[i])
			assert.Equal("s2", sName.Strings[i])
		}
		if v == 3 {
			assert.Equal("b3", bName.Strings[i])
			assert.Equal("s3", sName.Strings[i])
		}
	}
}

func TestJoinCommutativeRowMultiset(t *testing.T) {
	assert := assert.New(t)

	a, err := table.New([]*table.Column{
		table.NewDoubleColumn("id", []float64{1, 2}),
		table.NewStringColumn("x", []string{"a1", "a2"}),
	})
	assert.NoError(err)
	b, err := table.New([]*table.Column{
		table.NewDoubleColumn("id", []float64{1, 2}),
		table.NewStringColumn("y", []string{"b1", "b2"}),
	})
	assert.NoError(err)

	forward, err := executeJoin(a, "A", b, "B", &sql.OnCriteria{Column: "id"})
	assert.NoError(err)
	backward, err := executeJoin(b, "B", a, "A", &sql.OnCriteria{Column: "id"})
	assert.NoError(err)

	assert.Equal(forward.NumRows(), backward.NumRows())

	rows := func(tab *table.ColumnTable) []string {
		id, _ := tab.DoubleColumn("id")
		x, _ := tab.StringColumn("x")
		y, _ := tab.StringColumn("y")
		out := make([]string, tab.NumRows())
		for i := range out {
			out[i] = fmt.Sprintf("%g|%s|%s", id.Doubles[i], x.Strings[i], y.Strings[i])
		}
		return out
	}
	assert.ElementsMatch(rows(forward), rows(backward))
}

func TestNaturalJoinRequiresExactlyOneSharedColumn(t *testing.T) {
	assert := assert.New(t)

	a, err := table.New([]*table.Column{table.NewDoubleColumn("x", []float64{1})})
	assert.NoError(err)
	b, err := table.New([]*table.Column{table.NewDoubleColumn("y", []float64{1})})
	assert.NoError(err)

	_, err = executeJoin(a, "A", b, "B", &sql.NaturalCriteria{})
	assert.Error(err)
	qerr, ok := err.(*QueryError)
	assert.True(ok)
	assert.Equal(InvalidJoin, qerr.Kind)
}
