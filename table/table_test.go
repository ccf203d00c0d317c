package table

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func mustTable(t *testing.T, cols []*Column) *ColumnTable {
	tab, err := New(cols)
	assert.NoError(t, err)
	return tab
}

func TestFilterAndProject(t *testing.T) {
	assert := assert.New(t)
	tab := mustTable(t, []*Column{
		NewDoubleColumn("x", []float64{1, 2, 3, 4, 5}),
	})

	mask := tab.GetMaskForFilter(0, func(row int) bool {
		x, _ := tab.DoubleColumn("x")
		return x.Doubles[row] > 2 && x.Doubles[row] <= 4
	})
	filtered, err := tab.Filter(mask)
	assert.NoError(err)
	assert.Equal(2, filtered.NumRows())

	col, ok := filtered.DoubleColumn("x")
	assert.True(ok)
	assert.Equal([]float64{3, 4}, col.Doubles)

	projected, err := filtered.Project([]string{"x"})
	assert.NoError(err)
	assert.Equal(1, projected.Schema().Len())
	_, err = filtered.Project([]string{"missing"})
	assert.Error(err)
}

func TestCopyDoesNotLeak(t *testing.T) {
	assert := assert.New(t)
	base := mustTable(t, []*Column{
		NewDoubleColumn("x", []float64{1, 2, 3}),
	})

	cp := base.Copy()
	withY, err := cp.AddColumn(NewDoubleColumn("y", []float64{9, 9, 9}))
	assert.NoError(err)

	assert.False(base.Schema().Has("y"))
	assert.True(withY.Schema().Has("y"))
}

func TestOrderByAndLimit(t *testing.T) {
	assert := assert.New(t)
	tab := mustTable(t, []*Column{
		NewDoubleColumn("x", []float64{3, 1, 2}),
		NewStringColumn("name", []string{"c", "a", "b"}),
	})

	sorted, err := tab.OrderBy("x", true)
	assert.NoError(err)
	col, _ := sorted.DoubleColumn("x")
	assert.Equal([]float64{1, 2, 3}, col.Doubles)

	limited := sorted.Limit(2)
	assert.Equal(2, limited.NumRows())
}

func TestUnionAll(t *testing.T) {
	assert := assert.New(t)
	a := mustTable(t, []*Column{NewDoubleColumn("x", []float64{1, 2})})
	b := mustTable(t, []*Column{NewDoubleColumn("x", []float64{3})})

	u, err := UnionAll([]*ColumnTable{a, b})
	assert.NoError(err)
	assert.Equal(3, u.NumRows())
}

func TestBitsetLaws(t *testing.T) {
	assert := assert.New(t)
	n := 5
	e := NewBitset(n)
	e.Set(1)
	e.Set(3)

	notE := e.Not()
	assert.Equal(n-e.Count(), notE.Count())

	and := e.And(notE)
	assert.Equal(0, and.Count())

	or := e.Or(notE)
	assert.Equal(n, or.Count())
}
