// Package explain is the explanation-engine collaborator spec.md §1/§6
// declares external ("the summarization algorithm that enumerates attribute
// combinations and computes ratio/support scores ... a black box that
// consumes a tagged table and emits a result table"). A reference
// implementation lives here so DIFF/SPLIT are runnable end to end; it is
// deliberately swappable behind the Engine interface spec.md §6 specifies
// (setters + Process + Results), and DESIGN.md documents it as a reference,
// not as part of THE CORE this specification covers.
package explain

import (
	"fmt"
	"sort"

	"github.com/outlierql/diffql/table"
)

// Engine is the setter-configured, staged collaborator spec.md §6 names:
// "setters for ratio metric, max order, min support, min ratio metric,
// outlier column, attributes, thread count; process(Table); getResults()".
type Engine interface {
	SetRatioMetric(name string)
	SetMaxOrder(n int)
	SetMinSupport(v float64)
	SetMinRatio(v float64)
	SetOutlierColumn(name string)
	SetAttributes(names []string)
	SetThreads(n int)
	Process(t *table.ColumnTable) error
	Results() *Result
}

// Result wraps the engine's raw findings; ToDataFrame renders it as a
// ColumnTable the way spec.md §6 describes
// ("getResults().toDataFrame(attrCols)").
type Result struct {
	attrs []string
	rows  []row
}

type row struct {
	values  map[string]string // attribute name -> decoded value, or "" if not part of this combination
	outlier float64
	total   float64
	ratio   float64
}

// ToDataFrame renders one row per surviving attribute combination, with
// columns {attrCols..., outliers, count, <ratio metric name>}. attrCols not
// present in a given combination render as the empty string, marking "not
// part of this explanation".
func (r *Result) ToDataFrame(attrCols []string, ratioMetricName string) (*table.ColumnTable, error) {
	cols := make([]*table.Column, 0, len(attrCols)+3)
	for _, a := range attrCols {
		vals := make([]string, len(r.rows))
		for i, rr := range r.rows {
			vals[i] = rr.values[a]
		}
		cols = append(cols, table.NewStringColumn(a, vals))
	}
	outliers := make([]float64, len(r.rows))
	counts := make([]float64, len(r.rows))
	ratios := make([]float64, len(r.rows))
	for i, rr := range r.rows {
		outliers[i] = rr.outlier
		counts[i] = rr.total
		ratios[i] = rr.ratio
	}
	cols = append(cols,
		table.NewDoubleColumn("outliers", outliers),
		table.NewDoubleColumn("count", counts),
		table.NewDoubleColumn(ratioMetricName, ratios),
	)
	return table.New(cols)
}

// referenceEngine is the default Engine: it enumerates every combination, up
// to MaxOrder attributes at a time, of the configured attribute list, and
// reports combinations whose outlier share clears MinSupport/MinRatio, per
// the GLOSSARY definitions of support and global_ratio.
type referenceEngine struct {
	ratioMetric   string
	maxOrder      int
	minSupport    float64
	minRatio      float64
	outlierColumn string
	attributes    []string
	threads       int

	result *Result
}

func New() Engine {
	return &referenceEngine{maxOrder: 1, minRatio: 1.0}
}

func (e *referenceEngine) SetRatioMetric(name string)   { e.ratioMetric = name }
func (e *referenceEngine) SetMaxOrder(n int)            { e.maxOrder = n }
func (e *referenceEngine) SetMinSupport(v float64)      { e.minSupport = v }
func (e *referenceEngine) SetMinRatio(v float64)        { e.minRatio = v }
func (e *referenceEngine) SetOutlierColumn(name string) { e.outlierColumn = name }
func (e *referenceEngine) SetAttributes(names []string) { e.attributes = names }
func (e *referenceEngine) SetThreads(n int)             { e.threads = n }

func (e *referenceEngine) Results() *Result { return e.result }

func (e *referenceEngine) Process(t *table.ColumnTable) error {
	outlierCol, ok := t.DoubleColumn(e.outlierColumn)
	if !ok {
		return fmt.Errorf("explain: outlier column %q not found or not numeric", e.outlierColumn)
	}
	totalOutlierRows := 0.0
	for _, v := range outlierCol.Doubles {
		if v != 0 {
			totalOutlierRows++
		}
	}
	totalRows := float64(t.NumRows())
	globalOutlierFraction := 0.0
	if totalRows > 0 {
		globalOutlierFraction = totalOutlierRows / totalRows
	}

	attrCols := make(map[string]*table.Column, len(e.attributes))
	for _, a := range e.attributes {
		c, ok := t.StringColumn(a)
		if !ok {
			return fmt.Errorf("explain: attribute column %q not found or not a string column", a)
		}
		attrCols[a] = c
	}

	var out []row
	for order := 1; order <= e.maxOrder && order <= len(e.attributes); order++ {
		for _, combo := range combinations(e.attributes, order) {
			for _, r := range e.scoreCombination(t, combo, attrCols, outlierCol, totalOutlierRows, globalOutlierFraction) {
				out = append(out, r)
			}
		}
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].outlier > out[j].outlier
	})

	e.result = &Result{attrs: e.attributes, rows: out}
	return nil
}

func (e *referenceEngine) scoreCombination(
	t *table.ColumnTable,
	combo []string,
	attrCols map[string]*table.Column,
	outlierCol *table.Column,
	totalOutlierRows float64,
	globalOutlierFraction float64,
) []row {
	type acc struct {
		outlier float64
		total   float64
		values  map[string]string
	}
	groups := make(map[string]*acc)

	t.RowIterator(func(rowIdx int) bool {
		key := ""
		values := make(map[string]string, len(combo))
		for _, a := range combo {
			v := attrCols[a].Strings[rowIdx]
			key += a + "=" + v + "\x00"
			values[a] = v
		}
		g, ok := groups[key]
		if !ok {
			g = &acc{values: values}
			groups[key] = g
		}
		g.total++
		if outlierCol.Doubles[rowIdx] != 0 {
			g.outlier++
		}
		return true
	})

	var out []row
	for _, g := range groups {
		if g.total == 0 {
			continue
		}
		support := 0.0
		if totalOutlierRows > 0 {
			support = g.outlier / totalOutlierRows
		}
		if support < e.minSupport {
			continue
		}
		localFraction := g.outlier / g.total
		ratio := 0.0
		if globalOutlierFraction > 0 {
			ratio = localFraction / globalOutlierFraction
		}
		if ratio < e.minRatio {
			continue
		}
		out = append(out, row{values: g.values, outlier: g.outlier, total: g.total, ratio: ratio})
	}
	return out
}

// combinations returns every size-k subset of names, preserving relative
// order (there is no natural "canonical order" requirement in spec.md for
// combination enumeration, only for the final result rows, which spec.md
// §4.6 explicitly leaves unordered absent an ORDER BY).
func combinations(names []string, k int) [][]string {
	if k <= 0 || k > len(names) {
		return nil
	}
	var out [][]string
	var pick func(start int, chosen []string)
	pick = func(start int, chosen []string) {
		if len(chosen) == k {
			combo := make([]string, k)
			copy(combo, chosen)
			out = append(out, combo)
			return
		}
		for i := start; i < len(names); i++ {
			pick(i+1, append(chosen, names[i]))
		}
	}
	pick(0, nil)
	return out
}
