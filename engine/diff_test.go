package engine

import (
	"fmt"
	"testing"

	"github.com/outlierql/diffql/catalog"
	"github.com/outlierql/diffql/sql"
	"github.com/outlierql/diffql/table"
	"github.com/stretchr/testify/assert"
)

func mustParse(t *testing.T, src string) sql.QueryBody {
	t.Helper()
	qb, err := sql.NewParser(src).Parse()
	assert.NoError(t, err)
	return qb
}

// TestSplitDiffScenarioS2 exercises spec.md's SPLIT DIFF scenario end to end
// through the dispatcher, predicate evaluator and reference explanation
// engine.
func TestSplitDiffScenarioS2(t *testing.T) {
	assert := assert.New(t)

	tab, err := table.New([]*table.Column{
		table.NewStringColumn("state", []string{"CA", "CA", "CA", "TX", "TX", "FL"}),
		table.NewDoubleColumn("metric", []float64{10, 12, 11, 1, 2, 1}),
		table.NewStringColumn("city", []string{"SF", "SF", "LA", "AUS", "AUS", "MIA"}),
	})
	assert.NoError(err)

	store := catalog.New()
	store.Put("T", tab)
	d := NewDispatcher(store)
	d.Logger = NewNopLogger()

	qb := mustParse(t, "SPLIT T WHERE metric > 5 ON (state) WITH RATIO global_ratio MAXORDER 1 MINSUPPORT 0.4 MINRATIO 2.0 THREADS 1")
	result, err := d.Execute(qb)
	assert.NoError(err)
	assert.Equal(1, result.NumRows())

	state, _ := result.StringColumn("state")
	assert.Equal("CA", state.Strings[0])
	outlierCount, _ := result.DoubleColumn("outlier_count")
	assert.Equal(3.0, outlierCount.Doubles[0])
}

// TestFusedDiffJoinScenarioS3 exercises spec.md's DIFF-JOIN fused scenario.
func TestFusedDiffJoinScenarioS3(t *testing.T) {
	assert := assert.New(t)

	r, err := table.New([]*table.Column{table.NewStringColumn("key", []string{"a", "a", "b", "b"})})
	assert.NoError(err)
	s, err := table.New([]*table.Column{table.NewStringColumn("key", []string{"c", "d", "e"})})
	assert.NoError(err)
	dim, err := table.New([]*table.Column{
		table.NewStringColumn("key", []string{"a", "b", "c", "d", "e"}),
		table.NewStringColumn("state", []string{"CA", "CA", "TX", "TX", "FL"}),
	})
	assert.NoError(err)

	store := catalog.New()
	store.Put("R", r)
	store.Put("S", s)
	store.Put("Dim", dim)
	d := NewDispatcher(store)
	d.Logger = NewNopLogger()

	qb := mustParse(t, "DIFF(SELECT * FROM R NATURAL JOIN Dim, SELECT * FROM S NATURAL JOIN Dim) "+
		"ON (state) WITH RATIO global_ratio MAXORDER 1 MINSUPPORT 0.5 MINRATIO 1.5 THREADS 1")
	result, err := d.Execute(qb)
	assert.NoError(err)
	assert.Equal(1, result.NumRows())

	state, _ := result.StringColumn("state")
	assert.Equal("CA", state.Strings[0])
	outlierCount, _ := result.DoubleColumn("outlier_count")
	assert.Equal(4.0, outlierCount.Doubles[0])
	totalCount, _ := result.DoubleColumn("total_count")
	assert.Equal(4.0, totalCount.Doubles[0])
	ratio, _ := result.DoubleColumn("global_ratio")
	assert.True(ratio.Doubles[0] > 1.5)
}

// TestAutoAttributeSelectionScenarioS5 exercises spec.md's ON * scenario: a
// 1000-row table where cat1 (5 distinct) and cat3 (50 distinct) qualify but
// cat2 (900 distinct) does not.
func TestAutoAttributeSelectionScenarioS5(t *testing.T) {
	assert := assert.New(t)

	n := 1000
	cat1 := make([]string, n)
	cat2 := make([]string, n)
	cat3 := make([]string, n)
	outlier := make([]float64, n)
	for i := 0; i < n; i++ {
		cat1[i] = fmt.Sprintf("c%d", i%5)
		cat2[i] = fmt.Sprintf("c%d", i%900)
		cat3[i] = fmt.Sprintf("c%d", i%50)
		outlier[i] = 0
	}

	tab, err := table.New([]*table.Column{
		table.NewStringColumn("cat1", cat1),
		table.NewStringColumn("cat2", cat2),
		table.NewStringColumn("cat3", cat3),
		table.NewDoubleColumn("outlier_col", outlier),
	})
	assert.NoError(err)

	chosen := autoSelectAttributes(tab, NewNopLogger())
	assert.Contains(chosen, "cat1")
	assert.Contains(chosen, "cat3")
	assert.NotContains(chosen, "cat2")
}
