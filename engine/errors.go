// Package engine is THE CORE of spec.md: the Query Dispatcher, the standard
// relational operators, the Predicate Mask Evaluator, the Join Evaluator,
// the DIFF Evaluator and the DIFF-JOIN Fused Evaluator (spec.md §1).
package engine

import "fmt"

// Kind is one of the seven error kinds spec.md §7 enumerates, plus
// ExplainError for a failed explanation engine; "callers distinguish by kind
// tag" rather than by string-matching a message.
type Kind int

const (
	ParseOrShapeError Kind = iota
	TableNotFound
	ColumnNotFound
	TypeMismatch
	InvalidJoin
	UnsupportedOperator
	ImportError
	ExplainError
)

func (k Kind) String() string {
	switch k {
	case ParseOrShapeError:
		return "ParseOrShapeError"
	case TableNotFound:
		return "TableNotFound"
	case ColumnNotFound:
		return "ColumnNotFound"
	case TypeMismatch:
		return "TypeMismatch"
	case InvalidJoin:
		return "InvalidJoin"
	case UnsupportedOperator:
		return "UnsupportedOperator"
	case ImportError:
		return "ImportError"
	case ExplainError:
		return "ExplainError"
	default:
		return "UnknownError"
	}
}

// QueryError is the single query-failure variant spec.md §7 calls for: every
// error kind surfaces through this one type, carrying the offending
// identifier where applicable. Grounded on the teacher's
// Plan.err(stage, format, args...) helper (sql2awk/plan/plan.go), widened
// from a formatted string to a typed Kind so callers can switch on it.
type QueryError struct {
	Kind       Kind
	Stage      string
	Identifier string
	Message    string
}

func (e *QueryError) Error() string {
	if e.Identifier != "" {
		return fmt.Sprintf("%s [%s]: %s (%s)", e.Kind, e.Stage, e.Message, e.Identifier)
	}
	return fmt.Sprintf("%s [%s]: %s", e.Kind, e.Stage, e.Message)
}

func errf(kind Kind, stage, identifier, format string, args ...interface{}) error {
	return &QueryError{
		Kind:       kind,
		Stage:      stage,
		Identifier: identifier,
		Message:    fmt.Sprintf(format, args...),
	}
}
