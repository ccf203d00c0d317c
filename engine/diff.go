package engine

import (
	"github.com/outlierql/diffql/sql"
	"github.com/outlierql/diffql/table"
)

// executeDiff is the DIFF Evaluator from spec.md §4.5, tried first against
// the DIFF-JOIN Fused Evaluator (spec.md §4.6) and falling back to the
// general tagged-union path when the fused shape's assumptions don't hold.
func (d *Dispatcher) executeDiff(dq *sql.DiffQuerySpec) (*table.ColumnTable, error) {
	if result, handled, err := d.tryFusedDiffJoin(dq); handled {
		return result, err
	}

	tagged, err := d.buildTaggedTable(dq)
	if err != nil {
		return nil, err
	}
	return d.runExplain(tagged, dq)
}

// buildTaggedTable produces the "table to explain" T* (spec.md §4.5): Shape
// A unions two tagged subquery results, Shape B tags a single relation by a
// WHERE predicate.
func (d *Dispatcher) buildTaggedTable(dq *sql.DiffQuerySpec) (*table.ColumnTable, error) {
	if dq.Split != nil {
		rel, _, err := d.evalRelation(dq.Split.Relation)
		if err != nil {
			return nil, err
		}
		mask, err := EvalPredicate(rel, dq.Split.Predicate)
		if err != nil {
			return nil, err
		}
		tag := make([]float64, rel.NumRows())
		for i := 0; i < rel.NumRows(); i++ {
			if mask.Get(i) {
				tag[i] = 1.0
			}
		}
		return rel.AddColumn(table.NewDoubleColumn("outlier_col", tag))
	}

	outlierT, err := d.executeQuerySpec(dq.Subqueries.Outlier)
	if err != nil {
		return nil, err
	}
	inlierT, err := d.executeQuerySpec(dq.Subqueries.Inlier)
	if err != nil {
		return nil, err
	}
	outlierT, err = tagConstant(outlierT, 1.0)
	if err != nil {
		return nil, err
	}
	inlierT, err = tagConstant(inlierT, 0.0)
	if err != nil {
		return nil, err
	}
	return table.UnionAll([]*table.ColumnTable{outlierT, inlierT})
}

func tagConstant(t *table.ColumnTable, value float64) (*table.ColumnTable, error) {
	tag := make([]float64, t.NumRows())
	for i := range tag {
		tag[i] = value
	}
	return t.AddColumn(table.NewDoubleColumn("outlier_col", tag))
}

// runExplain is spec.md §4.5 steps 1-5: attribute selection/validation,
// engine configuration, invocation, column rename, then the standard-clause
// pipeline applied to the engine's output.
func (d *Dispatcher) runExplain(tagged *table.ColumnTable, dq *sql.DiffQuerySpec) (*table.ColumnTable, error) {
	attrs, err := d.resolveDiffAttributes(tagged, dq)
	if err != nil {
		return nil, err
	}

	cfg := DiffConfig{
		RatioMetric: dq.RatioMetric,
		MaxOrder:    dq.MaxOrder,
		MinSupport:  dq.MinSupport,
		MinRatio:    dq.MinRatio,
		Threads:     dq.Threads,
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	eng := d.NewExplainEngine()
	eng.SetRatioMetric(cfg.RatioMetric)
	eng.SetMaxOrder(cfg.MaxOrder)
	eng.SetMinSupport(cfg.MinSupport)
	eng.SetMinRatio(cfg.MinRatio)
	eng.SetOutlierColumn("outlier_col")
	eng.SetAttributes(attrs)
	eng.SetThreads(cfg.Threads)

	// spec.md §9 item 2 / REDESIGN FLAGS: the source catches and logs any
	// explanation-engine error and proceeds with partial results. That is a
	// known bug, not a behavior to reproduce — propagate it as a query
	// failure instead.
	if err := eng.Process(tagged); err != nil {
		return nil, errf(ExplainError, "explain", "", "explanation engine failed: %s", err.Error())
	}

	result, err := eng.Results().ToDataFrame(attrs, cfg.RatioMetric)
	if err != nil {
		return nil, errf(ExplainError, "explain", "", "building result table: %s", err.Error())
	}
	result, err = result.RenameColumn("outliers", "outlier_count")
	if err != nil {
		return nil, err
	}
	result, err = result.RenameColumn("count", "total_count")
	if err != nil {
		return nil, err
	}

	sel := dq.Select
	if sel == nil {
		sel = []sql.SelectItem{&sql.AllColumns{}}
	}
	return applyStandardClausePipeline(result, nil, sel, dq.OrderBy, dq.Limit)
}

func (d *Dispatcher) resolveDiffAttributes(tagged *table.ColumnTable, dq *sql.DiffQuerySpec) ([]string, error) {
	if dq.OnWildcard {
		return autoSelectAttributes(tagged, d.Logger), nil
	}
	for _, n := range dq.On {
		if !tagged.Schema().Has(n) {
			return nil, errf(ColumnNotFound, "diff", n, "ON attribute not present in the tagged table")
		}
	}
	return dq.On, nil
}

// autoSelectAttributes is spec.md §4.5 step 1: sample up to the first 1000
// rows, include a string column iff its distinct-value count in the sample
// is strictly less than sample-size / 4.
func autoSelectAttributes(t *table.ColumnTable, logger Logger) []string {
	sampleSize := t.NumRows()
	if sampleSize > 1000 {
		sampleSize = 1000
	}

	var chosen []string
	for _, name := range t.Schema().StringColumnNames() {
		col, _ := t.StringColumn(name)
		distinct := make(map[string]struct{}, sampleSize)
		for i := 0; i < sampleSize; i++ {
			distinct[col.Strings[i]] = struct{}{}
		}
		if float64(len(distinct)) < float64(sampleSize)/4.0 {
			chosen = append(chosen, name)
		}
	}

	logger.Infof("ON * auto-selected explain attribute columns: %v", chosen)
	return chosen
}
