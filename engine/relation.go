package engine

import (
	"github.com/outlierql/diffql/sql"
	"github.com/outlierql/diffql/table"
)

// evalRelation resolves a FROM-clause tree to a table, returning the name
// used to qualify that relation's columns in a subsequent join (spec.md
// §4.3). Joined relations carry no such name onward: conflicting column
// names one level further up are already unrepresentable once a join has
// run, so a Join never needs to be re-qualified as a participant in a
// further join.
func (d *Dispatcher) evalRelation(rel sql.Relation) (*table.ColumnTable, string, error) {
	switch rel.RelationType() {
	case sql.RelationTable:
		tr := rel.(*sql.TableRef)
		t, ok := d.Store.Get(tr.Name)
		if !ok {
			return nil, "", errf(TableNotFound, "from", tr.Name, "no such table")
		}
		return t, tr.Name, nil

	case sql.RelationAliased:
		a := rel.(*sql.AliasedRelation)
		t, _, err := d.evalRelation(a.Relation)
		if err != nil {
			return nil, "", err
		}
		return t, a.Alias, nil

	case sql.RelationSubquery:
		s := rel.(*sql.Subquery)
		t, err := d.executeQuerySpec(s.Query)
		if err != nil {
			return nil, "", err
		}
		return t, s.Alias, nil

	case sql.RelationJoin:
		j := rel.(*sql.Join)
		left, leftName, err := d.evalRelation(j.Left)
		if err != nil {
			return nil, "", err
		}
		right, rightName, err := d.evalRelation(j.Right)
		if err != nil {
			return nil, "", err
		}
		t, err := executeJoin(left, leftName, right, rightName, j.Criteria)
		if err != nil {
			return nil, "", err
		}
		return t, "", nil

	default:
		return nil, "", errf(ParseOrShapeError, "from", "", "unsupported FROM relation shape")
	}
}

// relationBaseName returns the underlying table name a relation resolves to
// when it is (possibly aliased) a direct table reference, used by the
// DIFF-JOIN Fused Evaluator to test whether two subqueries share the same
// dimension table (spec.md §4.6: "T shared").
func relationBaseName(rel sql.Relation) (string, bool) {
	switch r := rel.(type) {
	case *sql.TableRef:
		return r.Name, true
	case *sql.AliasedRelation:
		return relationBaseName(r.Relation)
	default:
		return "", false
	}
}

// naturalJoinShape reports whether q is exactly `SELECT ... FROM left
// NATURAL JOIN right`, the shape spec.md §4.6 requires of both DIFF
// subqueries before considering the fused evaluator.
func naturalJoinShape(q *sql.QuerySpec) (left, right sql.Relation, ok bool) {
	j, ok := q.From.(*sql.Join)
	if !ok {
		return nil, nil, false
	}
	if _, ok := j.Criteria.(*sql.NaturalCriteria); !ok {
		return nil, nil, false
	}
	return j.Left, j.Right, true
}
