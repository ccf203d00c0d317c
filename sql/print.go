package sql

import "fmt"

// PrintExpr renders an expression back to text, used to name a materialized
// UDF column when the SELECT item carries no explicit alias (spec.md §4.7).
// Grounded on the teacher's sql.PrintExpr (sql2awk/sql/ast.go).
func PrintExpr(e Expr) string {
	if e == nil {
		return ""
	}
	switch e.ExprType() {
	case ExprIdentifier:
		return e.(*Identifier).Name
	case ExprDereference:
		d := e.(*Dereference)
		return fmt.Sprintf("%s.%s", d.Qualifier, d.Name)
	case ExprStringLiteral:
		return fmt.Sprintf("%q", e.(*StringLiteral).Value)
	case ExprDoubleLiteral:
		return fmt.Sprintf("%g", e.(*DoubleLiteral).Value)
	case ExprNullLiteral:
		return "NULL"
	case ExprFunctionCall:
		f := e.(*FunctionCall)
		return fmt.Sprintf("%s(%s)", f.Name, f.Arg)
	case ExprComparison:
		c := e.(*Comparison)
		return fmt.Sprintf("(%s %s %s)", PrintExpr(c.Left), cmpOpText(c.Op), PrintExpr(c.Right))
	case ExprLogicalBinary:
		l := e.(*LogicalBinary)
		op := "AND"
		if l.Op == LogicalOr {
			op = "OR"
		}
		return fmt.Sprintf("(%s %s %s)", PrintExpr(l.Left), op, PrintExpr(l.Right))
	case ExprNot:
		return fmt.Sprintf("NOT %s", PrintExpr(e.(*Not).Operand))
	default:
		return ""
	}
}

func cmpOpText(op int) string {
	switch op {
	case CmpEq:
		return "="
	case CmpNe:
		return "!="
	case CmpLt:
		return "<"
	case CmpLe:
		return "<="
	case CmpGt:
		return ">"
	case CmpGe:
		return ">="
	case CmpIsDistinctFrom:
		return "IS DISTINCT FROM"
	default:
		return "?"
	}
}
