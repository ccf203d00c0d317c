package engine

import (
	"github.com/outlierql/diffql/sql"
	"github.com/outlierql/diffql/table"
	"github.com/outlierql/diffql/udf"
)

// outputName is the textual form spec.md §4.7 names a materialized UDF
// column by: the alias when the SelectItem carries one, else the printed
// expression text (sql.SingleColumn.Text()).
func outputName(sc *sql.SingleColumn) string {
	if sc.Alias != "" {
		return sc.Alias
	}
	return sc.Text()
}

// materializeUDFs adds one double column per FunctionCall select item,
// named by outputName, before WHERE runs (spec.md §4.1: "UDF materialization
// → WHERE"). Non-UDF select items are left untouched; they are resolved
// directly against existing columns at projection time.
func materializeUDFs(t *table.ColumnTable, sel []sql.SelectItem) (*table.ColumnTable, error) {
	for _, item := range sel {
		sc, ok := item.(*sql.SingleColumn)
		if !ok || sc.Expr.ExprType() != sql.ExprFunctionCall {
			continue
		}
		fc := sc.Expr.(*sql.FunctionCall)
		name := outputName(sc)
		if t.Schema().Has(name) {
			continue
		}
		fn, ok := udf.GetFunction(fc.Name, fc.Arg)
		if !ok {
			return nil, errf(UnsupportedOperator, "udf-materialize", fc.Name, "no such UDF")
		}
		values, err := fn.Eval(t)
		if err != nil {
			return nil, err
		}
		t, err = t.AddColumn(table.NewDoubleColumn(name, values))
		if err != nil {
			return nil, err
		}
	}
	return t, nil
}

// projectSelect applies the SELECT clause (spec.md §4.1: "WHERE → SELECT").
// A lone AllColumns item keeps the table's full current schema; otherwise
// every SingleColumn is projected by its source name and renamed to its
// output name when an alias differs from it.
func projectSelect(t *table.ColumnTable, sel []sql.SelectItem) (*table.ColumnTable, error) {
	if len(sel) == 1 {
		if _, ok := sel[0].(*sql.AllColumns); ok {
			return t, nil
		}
	}

	sourceNames := make([]string, 0, len(sel))
	outputNames := make([]string, 0, len(sel))
	for _, item := range sel {
		sc, ok := item.(*sql.SingleColumn)
		if !ok {
			return nil, errf(ParseOrShapeError, "select", "", "unsupported select item")
		}
		src := sc.Text()
		if sc.Expr.ExprType() == sql.ExprFunctionCall {
			src = outputName(sc)
		}
		sourceNames = append(sourceNames, src)
		outputNames = append(outputNames, outputName(sc))
	}

	proj, err := t.Project(sourceNames)
	if err != nil {
		return nil, errf(ColumnNotFound, "select", "", "%s", err.Error())
	}
	for i, src := range sourceNames {
		if outputNames[i] == src {
			continue
		}
		proj, err = proj.RenameColumn(src, outputNames[i])
		if err != nil {
			return nil, errf(ColumnNotFound, "select", src, "%s", err.Error())
		}
	}
	return proj, nil
}

// applyStandardClausePipeline runs the order spec.md §4.1 requires: UDF
// materialization, WHERE, SELECT, ORDER BY, LIMIT.
func applyStandardClausePipeline(t *table.ColumnTable, where sql.Expr, sel []sql.SelectItem, orderBy *sql.OrderBy, limit *int) (*table.ColumnTable, error) {
	t, err := materializeUDFs(t, sel)
	if err != nil {
		return nil, err
	}

	if where != nil {
		mask, err := EvalPredicate(t, where)
		if err != nil {
			return nil, err
		}
		t, err = t.Filter(mask)
		if err != nil {
			return nil, err
		}
	}

	t, err = projectSelect(t, sel)
	if err != nil {
		return nil, err
	}

	if orderBy != nil {
		t, err = t.OrderBy(orderBy.Column, !orderBy.Descending)
		if err != nil {
			return nil, errf(ColumnNotFound, "order-by", orderBy.Column, "%s", err.Error())
		}
	}

	if limit != nil {
		t = t.Limit(*limit)
	}

	return t, nil
}
