package engine

import (
	"github.com/outlierql/diffql/encode"
	"github.com/outlierql/diffql/sql"
	"github.com/outlierql/diffql/table"
)

// tryFusedDiffJoin is the DIFF-JOIN Fused Evaluator's entry point (spec.md
// §4.6). It reports handled=false (no error) whenever the query doesn't fit
// the fused shape's assumptions, so the caller falls back to the general
// tagged-union path; handled=true means this evaluator owns the result (or
// the failure), matching "out-of-assumption shapes fall back to the general
// path" rather than erroring on a shape mismatch.
func (d *Dispatcher) tryFusedDiffJoin(dq *sql.DiffQuerySpec) (result *table.ColumnTable, handled bool, err error) {
	if dq.Subqueries == nil || dq.OnWildcard || len(dq.On) != 1 || dq.RatioMetric != "global_ratio" {
		return nil, false, nil
	}

	oLeft, oRight, ok1 := naturalJoinShape(dq.Subqueries.Outlier)
	iLeft, iRight, ok2 := naturalJoinShape(dq.Subqueries.Inlier)
	if !ok1 || !ok2 {
		return nil, false, nil
	}

	rName, okA := relationBaseName(oLeft)
	sName, okB := relationBaseName(iLeft)
	tNameO, okC := relationBaseName(oRight)
	tNameS, okD := relationBaseName(iRight)
	if !okA || !okB || !okC || !okD || tNameO != tNameS || rName == sName {
		return nil, false, nil
	}

	R, _, err := d.evalRelation(oLeft)
	if err != nil {
		return nil, true, err
	}
	S, _, err := d.evalRelation(iLeft)
	if err != nil {
		return nil, true, err
	}
	T, _, err := d.evalRelation(oRight)
	if err != nil {
		return nil, true, err
	}

	keyR := sharedColumns(R, T)
	keyS := sharedColumns(S, T)
	if len(keyR) != 1 || len(keyS) != 1 || keyR[0] != keyS[0] {
		return nil, false, nil
	}
	key := keyR[0]

	rKey, ok := R.ColumnByName(key)
	if !ok || rKey.Ty != table.String {
		return nil, false, nil
	}
	sKey, ok := S.ColumnByName(key)
	if !ok || sKey.Ty != table.String {
		return nil, false, nil
	}
	tKey, ok := T.ColumnByName(key)
	if !ok || tKey.Ty != table.String {
		return nil, false, nil
	}

	explainColumn := dq.On[0]
	xCol, ok := T.StringColumn(explainColumn)
	if !ok {
		return nil, true, errf(ColumnNotFound, "diff-join", explainColumn, "explain column not found in the shared dimension table, or not a string column")
	}

	out, err := d.runFusedDiffJoin(dq, explainColumn, rKey, sKey, tKey, xCol)
	return out, true, err
}

// countPair is IntPair from spec.md §3: two counters, a for the outlier
// side, b for the inlier side.
type countPair struct {
	a int
	b int
}

// runFusedDiffJoin implements spec.md §4.6 phases 1-3.
func (d *Dispatcher) runFusedDiffJoin(dq *sql.DiffQuerySpec, explainColumn string, rKey, sKey, tKey, xCol *table.Column) (*table.ColumnTable, error) {
	nR, nS, nT := len(rKey.Strings), len(sKey.Strings), len(tKey.Strings)
	if nR+nS == 0 {
		return nil, errf(ParseOrShapeError, "diff-join", "", "both the outlier and inlier relations are empty")
	}

	globalRatioDenom := float64(nR) / float64(nR+nS)
	minRatioThreshold := dq.MinRatio * globalRatioDenom
	// spec.md §9 item 1: the corrected form, multiplying before truncating.
	minSupportThreshold := int(dq.MinSupport * float64(nR))

	enc := encode.New()
	encoded := enc.EncodeKeyValueAttributes(
		[][]string{rKey.Strings, sKey.Strings, tKey.Strings},
		[][]string{xCol.Strings},
	)
	kR, kS, kT, vT := encoded[0], encoded[1], encoded[2], encoded[3]

	// Phase 1 — encode-and-diff on the join key.
	M := make(map[int32]*countPair)
	for _, k := range kR {
		p, ok := M[k]
		if !ok {
			p = &countPair{}
			M[k] = p
		}
		p.a++
	}
	for _, k := range kS {
		p, ok := M[k]
		if !ok {
			p = &countPair{}
			M[k] = p
		}
		p.b++
	}

	K := make(map[int32]bool, len(M))
	for k, p := range M {
		if float64(p.a)/float64(p.a+p.b) > minRatioThreshold {
			K[k] = true
		}
	}

	// Phase 2 — semi-join T with K, then merge counts.
	V := make(map[int32]*countPair)
	var vOrder []int32

	// Pass 2a (forward).
	for i := 0; i < nT; i++ {
		k := kT[i]
		if !K[k] {
			continue
		}
		p := M[k]
		v := vT[i]
		vp, ok := V[v]
		if !ok {
			vOrder = append(vOrder, v)
			V[v] = &countPair{a: p.a, b: p.b}
			continue
		}
		vp.a += p.a
		vp.b += p.b
	}

	// Pass 2b (backfill).
	for i := 0; i < nT; i++ {
		k := kT[i]
		if K[k] {
			continue
		}
		v := vT[i]
		vp, ok := V[v]
		if !ok {
			continue
		}
		if p, ok := M[k]; ok {
			vp.a += p.a
			vp.b += p.b
		}
	}

	// Pass 2c (prune).
	var survivors []int32
	for _, v := range vOrder {
		p := V[v]
		if p.a+p.b == 0 {
			continue
		}
		if p.a < minSupportThreshold {
			continue
		}
		if float64(p.a)/float64(p.a+p.b) < minRatioThreshold {
			continue
		}
		survivors = append(survivors, v)
	}

	// Phase 3 — materialize results.
	xVals := make([]string, 0, len(survivors))
	supportVals := make([]float64, 0, len(survivors))
	ratioVals := make([]float64, 0, len(survivors))
	outlierCountVals := make([]float64, 0, len(survivors))
	totalCountVals := make([]float64, 0, len(survivors))
	for _, v := range survivors {
		p := V[v]
		xVals = append(xVals, enc.DecodeValue(v))
		supportVals = append(supportVals, float64(p.a)/float64(nR))
		ratioVals = append(ratioVals, (float64(p.a)/float64(p.a+p.b))/globalRatioDenom)
		outlierCountVals = append(outlierCountVals, float64(p.a))
		totalCountVals = append(totalCountVals, float64(p.a+p.b))
	}

	result, err := table.New([]*table.Column{
		table.NewStringColumn(explainColumn, xVals),
		table.NewDoubleColumn("support", supportVals),
		table.NewDoubleColumn(dq.RatioMetric, ratioVals),
		table.NewDoubleColumn("outlier_count", outlierCountVals),
		table.NewDoubleColumn("total_count", totalCountVals),
	})
	if err != nil {
		return nil, err
	}

	sel := dq.Select
	if sel == nil {
		sel = []sql.SelectItem{&sql.AllColumns{}}
	}
	return applyStandardClausePipeline(result, nil, sel, dq.OrderBy, dq.Limit)
}
