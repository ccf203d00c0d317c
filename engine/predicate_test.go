package engine

import (
	"testing"

	"github.com/outlierql/diffql/sql"
	"github.com/outlierql/diffql/table"
	"github.com/stretchr/testify/assert"
)

// parseWhereExpr extracts the WHERE expression from a throwaway SELECT, the
// only way to reach the expression grammar through the public Parser.
func parseWhereExpr(t *testing.T, predicate string) sql.Expr {
	t.Helper()
	p := sql.NewParser("SELECT * FROM d WHERE " + predicate)
	qb, err := p.Parse()
	assert.NoError(t, err)
	qs, ok := qb.(*sql.QuerySpec)
	assert.True(t, ok)
	return qs.Where
}

func TestPredicateMaskScenarioS1(t *testing.T) {
	assert := assert.New(t)

	d, err := table.New([]*table.Column{
		table.NewDoubleColumn("x", []float64{1, 2, 3, 4, 5}),
	})
	assert.NoError(err)

	e := parseWhereExpr(t, "x > 2 AND x <= 4")
	mask, err := EvalPredicate(d, e)
	assert.NoError(err)

	filtered, err := d.Filter(mask)
	assert.NoError(err)
	x, _ := filtered.DoubleColumn("x")
	assert.Equal([]float64{3, 4}, x.Doubles)
}

func TestPredicateLiteralVsLiteralScenarioS6(t *testing.T) {
	assert := assert.New(t)

	d, err := table.New([]*table.Column{table.NewDoubleColumn("x", []float64{1, 2, 3})})
	assert.NoError(err)

	allOnes, err := EvalPredicate(d, parseWhereExpr(t, "1 = 1"))
	assert.NoError(err)
	assert.Equal(3, allOnes.Count())

	allZeros, err := EvalPredicate(d, parseWhereExpr(t, "1 = 2"))
	assert.NoError(err)
	assert.Equal(0, allZeros.Count())
}

func TestPredicateTypeMismatch(t *testing.T) {
	assert := assert.New(t)

	d, err := table.New([]*table.Column{table.NewDoubleColumn("x", []float64{1, 2})})
	assert.NoError(err)

	_, err = EvalPredicate(d, parseWhereExpr(t, "x = 'a'"))
	assert.Error(err)
	qerr, ok := err.(*QueryError)
	assert.True(ok)
	assert.Equal(TypeMismatch, qerr.Kind)
}

func TestPredicateNotAndOrLaws(t *testing.T) {
	assert := assert.New(t)

	d, err := table.New([]*table.Column{table.NewDoubleColumn("x", []float64{1, 2, 3, 4})})
	assert.NoError(err)

	e := parseWhereExpr(t, "x > 2")
	m, err := EvalPredicate(d, e)
	assert.NoError(err)
	notM, err := EvalPredicate(d, parseWhereExpr(t, "NOT (x > 2)"))
	assert.NoError(err)
	assert.Equal(m.Not().Count(), notM.Count())

	and := m.And(notM)
	assert.Equal(0, and.Count())
	or := m.Or(notM)
	assert.Equal(d.NumRows(), or.Count())
}
