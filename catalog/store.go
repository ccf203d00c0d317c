// Package catalog is the Table Store collaborator from spec.md §2 item 1: a
// process-local mapping from table name to an immutable columnar table.
// Grounded on spec.md §5's ownership rule ("reads return an independent
// shallow copy so downstream mutation cannot affect cached tables") and on
// the teacher's resolve-by-name TableDescriptor lookups
// (sql2awk/plan/table.go's findTableDescriptorByAlias), simplified here to a
// single flat map since this module has no aliasing layer at the catalog
// level (aliasing is a FROM-clause concern resolved in the engine package).
package catalog

import (
	"sync"

	"github.com/outlierql/diffql/table"
)

// Store is tablesInMemory from spec.md §3: mutated only by import
// operations; every read returns an independent shallow copy (spec.md §8
// law 5).
//
// spec.md §5 says the engine itself runs single-threaded and that a
// multi-threaded host must serialize catalog access externally; the mutex
// here is that external serialization made concrete, not a contradiction of
// the single-threaded execution model — query execution against a table
// retrieved from Get never takes this lock again.
type Store struct {
	mu     sync.RWMutex
	tables map[string]*table.ColumnTable
}

func New() *Store {
	return &Store{tables: make(map[string]*table.ColumnTable)}
}

// Get returns a shallow copy of the named table, or false if it isn't
// registered (surfaces as engine.TableNotFound at the call site).
func (s *Store) Get(name string) (*table.ColumnTable, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tables[name]
	if !ok {
		return nil, false
	}
	return t.Copy(), true
}

// Put registers (or replaces) a table under name.
func (s *Store) Put(name string, t *table.ColumnTable) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tables[name] = t
}

// Has reports whether name is registered.
func (s *Store) Has(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.tables[name]
	return ok
}
