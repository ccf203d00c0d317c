package explain

import (
	"testing"

	"github.com/outlierql/diffql/table"
	"github.com/stretchr/testify/assert"
)

func TestReferenceEngineSplitScenario(t *testing.T) {
	assert := assert.New(t)

	tab, err := table.New([]*table.Column{
		table.NewStringColumn("state", []string{"CA", "CA", "CA", "TX", "TX", "FL"}),
		table.NewDoubleColumn("outlier_col", []float64{1, 1, 1, 0, 0, 0}),
	})
	assert.NoError(err)

	e := New()
	e.SetRatioMetric("global_ratio")
	e.SetMaxOrder(1)
	e.SetMinSupport(0.4)
	e.SetMinRatio(2.0)
	e.SetOutlierColumn("outlier_col")
	e.SetAttributes([]string{"state"})

	assert.NoError(e.Process(tab))
	df, err := e.Results().ToDataFrame([]string{"state"}, "global_ratio")
	assert.NoError(err)
	assert.Equal(1, df.NumRows())

	state, _ := df.StringColumn("state")
	assert.Equal("CA", state.Strings[0])

	ratio, _ := df.DoubleColumn("global_ratio")
	assert.InDelta(2.0, ratio.Doubles[0], 1e-9)

	outliers, _ := df.DoubleColumn("outliers")
	assert.Equal(3.0, outliers.Doubles[0])
}
