package catalog

import (
	"strings"
	"testing"

	"github.com/outlierql/diffql/table"
	"github.com/stretchr/testify/assert"
)

func TestGetReturnsIndependentCopy(t *testing.T) {
	assert := assert.New(t)

	base, err := table.New([]*table.Column{table.NewDoubleColumn("x", []float64{1, 2, 3})})
	assert.NoError(err)

	store := New()
	store.Put("t", base)

	got, ok := store.Get("t")
	assert.True(ok)

	withY, err := got.AddColumn(table.NewDoubleColumn("y", []float64{1, 1, 1}))
	assert.NoError(err)
	assert.True(withY.Schema().Has("y"))

	again, ok := store.Get("t")
	assert.True(ok)
	assert.False(again.Schema().Has("y"))
}

func TestImportTable(t *testing.T) {
	assert := assert.New(t)

	csvData := "CA,10\nTX,1\n"
	tab, err := ImportTable(strings.NewReader(csvData), []ColumnSpec{
		{Name: "state", Ty: table.String},
		{Name: "metric", Ty: table.Double},
	})
	assert.NoError(err)
	assert.Equal(2, tab.NumRows())

	metric, ok := tab.DoubleColumn("metric")
	assert.True(ok)
	assert.Equal([]float64{10, 1}, metric.Doubles)
}
