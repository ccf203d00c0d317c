package engine

import (
	"github.com/outlierql/diffql/catalog"
	"github.com/outlierql/diffql/explain"
	"github.com/outlierql/diffql/sql"
	"github.com/outlierql/diffql/table"
)

// Dispatcher is the Query Dispatcher from spec.md §4.1: the single façade
// operation executeQuery(qbody) → Table, dispatching on the query body's
// variant. Grounded on the teacher's main.go staged pipeline (parse → plan →
// codegen) collapsed to parse → dispatch → execute, since this engine runs
// directly against in-memory tables rather than emitting code.
type Dispatcher struct {
	Store            *catalog.Store
	NewExplainEngine func() explain.Engine
	Logger           Logger
}

// NewDispatcher wires the default explanation engine and a stdlib-backed
// logger; both are overridable for tests.
func NewDispatcher(store *catalog.Store) *Dispatcher {
	return &Dispatcher{
		Store:            store,
		NewExplainEngine: explain.New,
		Logger:           NewStdLogger(),
	}
}

// Execute is spec.md §6's executeQuery(qbody) → Table | error.
func (d *Dispatcher) Execute(qb sql.QueryBody) (*table.ColumnTable, error) {
	d.Logger.Debugf("executing query body of type %d", qb.QueryBodyType())
	switch qb.QueryBodyType() {
	case sql.QueryBodyQuerySpec:
		return d.executeQuerySpec(qb.(*sql.QuerySpec))
	case sql.QueryBodyDiffQuerySpec:
		return d.executeDiff(qb.(*sql.DiffQuerySpec))
	default:
		return nil, errf(ParseOrShapeError, "dispatch", "", "unrecognized query body shape")
	}
}

func (d *Dispatcher) executeQuerySpec(q *sql.QuerySpec) (*table.ColumnTable, error) {
	t, _, err := d.evalRelation(q.From)
	if err != nil {
		return nil, err
	}
	return applyStandardClausePipeline(t, q.Where, q.Select, q.OrderBy, q.Limit)
}
