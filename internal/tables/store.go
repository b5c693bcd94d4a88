package tables

import (
	"errors"
	"sync/atomic"
)

// Store publishes the current Tables to concurrent readers. Updates replace
// the whole snapshot; readers never observe a partially applied change.
type Store struct {
	current atomic.Pointer[Tables]
}

// NewStore creates a Store holding the given tables.
func NewStore(initial *Tables) (*Store, error) {
	if err := initial.Validate(); err != nil {
		return nil, err
	}
	s := &Store{}
	s.current.Store(initial)
	return s, nil
}

// Snapshot returns the tables in effect right now.
func (s *Store) Snapshot() *Tables {
	return s.current.Load()
}

// Swap validates next and makes it the current snapshot, returning the
// previous one.
func (s *Store) Swap(next *Tables) (*Tables, error) {
	if next == nil {
		return nil, errors.New("tables: cannot swap in nil tables")
	}
	if err := next.Validate(); err != nil {
		return nil, err
	}
	return s.current.Swap(next), nil
}
