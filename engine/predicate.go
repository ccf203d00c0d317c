package engine

import (
	"github.com/outlierql/diffql/sql"
	"github.com/outlierql/diffql/table"
	"github.com/outlierql/diffql/udf"
)

// EvalPredicate compiles a WHERE expression tree into a row bitmask (spec.md
// §4.2: the Predicate Mask Evaluator). Grounded on the teacher's
// cg/gen_expr.go exprCodeGen — a type-tag switch over the expression kind,
// one gen* method per node — reworked here so each branch returns a Bitset
// instead of emitting AWK text.
func EvalPredicate(t *table.ColumnTable, e sql.Expr) (*table.Bitset, error) {
	switch e.ExprType() {
	case sql.ExprNot:
		n := e.(*sql.Not)
		m, err := EvalPredicate(t, n.Operand)
		if err != nil {
			return nil, err
		}
		return m.Not(), nil

	case sql.ExprLogicalBinary:
		l := e.(*sql.LogicalBinary)
		left, err := EvalPredicate(t, l.Left)
		if err != nil {
			return nil, err
		}
		right, err := EvalPredicate(t, l.Right)
		if err != nil {
			return nil, err
		}
		if l.Op == sql.LogicalAnd {
			return left.And(right), nil
		}
		return left.Or(right), nil

	case sql.ExprComparison:
		return evalComparison(t, e.(*sql.Comparison))

	default:
		return nil, errf(ParseOrShapeError, "predicate", "", "expression of type %d is not a boolean predicate", e.ExprType())
	}
}

func evalComparison(t *table.ColumnTable, c *sql.Comparison) (*table.Bitset, error) {
	leftLit, leftIsLit := literalValue(c.Left)
	rightLit, rightIsLit := literalValue(c.Right)

	if leftIsLit && rightIsLit {
		ok, err := compareLiterals(c.Op, leftLit, rightLit)
		if err != nil {
			return nil, err
		}
		if ok {
			return table.AllOnes(t.NumRows()), nil
		}
		return table.AllZeros(t.NumRows()), nil
	}

	op := c.Op
	var operand sql.Expr
	var lit literal
	switch {
	case rightIsLit:
		operand, lit = c.Left, rightLit
	case leftIsLit:
		operand, lit = c.Right, leftLit
		op = flipOp(c.Op)
	default:
		return nil, errf(UnsupportedOperator, "predicate", "", "comparison requires one literal operand")
	}

	if operand.ExprType() == sql.ExprFunctionCall {
		return evalFunctionComparison(t, operand.(*sql.FunctionCall), op, lit)
	}
	name, ok := columnName(operand)
	if !ok {
		return nil, errf(ParseOrShapeError, "predicate", "", "left operand must be a column, dereference or function call")
	}
	return evalColumnComparison(t, name, op, lit)
}

// literal wraps the three literal kinds the grammar accepts (spec.md §4.2).
type literal struct {
	isNull bool
	isStr  bool
	str    string
	dbl    float64
}

func literalValue(e sql.Expr) (literal, bool) {
	switch e.ExprType() {
	case sql.ExprStringLiteral:
		return literal{isStr: true, str: e.(*sql.StringLiteral).Value}, true
	case sql.ExprDoubleLiteral:
		return literal{dbl: e.(*sql.DoubleLiteral).Value}, true
	case sql.ExprNullLiteral:
		return literal{isNull: true}, true
	default:
		return literal{}, false
	}
}

func columnName(e sql.Expr) (string, bool) {
	switch e.ExprType() {
	case sql.ExprIdentifier:
		return e.(*sql.Identifier).Name, true
	case sql.ExprDereference:
		d := e.(*sql.Dereference)
		return d.Qualifier + "." + d.Name, true
	default:
		return "", false
	}
}

// flipOp reverses a comparison operator when the literal appeared on the
// left (spec.md §4.2: "either argument order is accepted").
func flipOp(op int) int {
	switch op {
	case sql.CmpLt:
		return sql.CmpGt
	case sql.CmpLe:
		return sql.CmpGe
	case sql.CmpGt:
		return sql.CmpLt
	case sql.CmpGe:
		return sql.CmpLe
	default:
		return op
	}
}

func compareLiterals(op int, a, b literal) (bool, error) {
	if a.isNull || b.isNull {
		switch op {
		case sql.CmpEq:
			return false, nil
		case sql.CmpNe, sql.CmpIsDistinctFrom:
			return true, nil
		default:
			return false, errf(UnsupportedOperator, "predicate", "", "ordering operator is not defined against NULL")
		}
	}
	if a.isStr != b.isStr {
		return false, errf(TypeMismatch, "predicate", "", "cannot compare a string literal with a numeric literal")
	}
	if a.isStr {
		return compareString(a.str, op, &b.str), nil
	}
	return compareDouble(a.dbl, op, b.dbl), nil
}

func evalFunctionComparison(t *table.ColumnTable, fc *sql.FunctionCall, op int, lit literal) (*table.Bitset, error) {
	if lit.isStr || lit.isNull {
		return nil, errf(TypeMismatch, "predicate", fc.Name, "UDF comparisons require a numeric literal")
	}
	fn, ok := udf.GetFunction(fc.Name, fc.Arg)
	if !ok {
		return nil, errf(UnsupportedOperator, "predicate", fc.Name, "no such UDF")
	}
	values, err := fn.Eval(t)
	if err != nil {
		return nil, err
	}
	mask := table.NewBitset(t.NumRows())
	for i, v := range values {
		if compareDouble(v, op, lit.dbl) {
			mask.Set(i)
		}
	}
	return mask, nil
}

func evalColumnComparison(t *table.ColumnTable, name string, op int, lit literal) (*table.Bitset, error) {
	col, ok := t.ColumnByName(name)
	if !ok {
		return nil, errf(ColumnNotFound, "predicate", name, "no such column")
	}
	mask := table.NewBitset(t.NumRows())
	switch col.Ty {
	case table.Double:
		if lit.isStr || lit.isNull {
			return nil, errf(TypeMismatch, "predicate", name, "Double column compared against a non-numeric literal")
		}
		for i, v := range col.Doubles {
			if compareDouble(v, op, lit.dbl) {
				mask.Set(i)
			}
		}
	case table.String:
		if !lit.isStr && !lit.isNull {
			return nil, errf(TypeMismatch, "predicate", name, "String column compared against a non-string literal")
		}
		var litPtr *string
		if !lit.isNull {
			litPtr = &lit.str
		}
		for i, v := range col.Strings {
			ok, err := compareStringOrErr(v, op, litPtr)
			if err != nil {
				return nil, err
			}
			if ok {
				mask.Set(i)
			}
		}
	}
	return mask, nil
}

func compareStringOrErr(v string, op int, lit *string) (bool, error) {
	if lit == nil {
		switch op {
		case sql.CmpEq:
			return false, nil
		case sql.CmpNe, sql.CmpIsDistinctFrom:
			return true, nil
		default:
			return false, errf(UnsupportedOperator, "predicate", "", "ordering operator is not defined against NULL")
		}
	}
	return compareString(v, op, lit), nil
}

func compareString(v string, op int, lit *string) bool {
	switch op {
	case sql.CmpEq:
		return v == *lit
	case sql.CmpNe, sql.CmpIsDistinctFrom:
		return v != *lit
	case sql.CmpLt:
		return v < *lit
	case sql.CmpLe:
		return v <= *lit
	case sql.CmpGt:
		return v > *lit
	case sql.CmpGe:
		return v >= *lit
	default:
		return false
	}
}

// compareDouble is IEEE-754 comparison: Go's native operators already give
// NaN the "not specially handled" behavior spec.md §4.2 calls for (every
// ordered comparison against NaN is false).
func compareDouble(v float64, op int, lit float64) bool {
	switch op {
	case sql.CmpEq:
		return v == lit
	case sql.CmpNe, sql.CmpIsDistinctFrom:
		return v != lit
	case sql.CmpLt:
		return v < lit
	case sql.CmpLe:
		return v <= lit
	case sql.CmpGt:
		return v > lit
	case sql.CmpGe:
		return v >= lit
	default:
		return false
	}
}
