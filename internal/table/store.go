package table

import (
	"github.com/google/uuid"
)

// ActiveIndex is a cached sort association on a store: the key columns, their
// directions, and the full-row permutation they produce. It is valid only
// while the store's version is unchanged.
type ActiveIndex struct {
	Keys []string
	Desc []bool
	Perm []int
}

// Matches reports whether the cached index covers the given ascending keys.
func (ix *ActiveIndex) Matches(keys []string, desc []bool) bool {
	if ix == nil || len(ix.Keys) != len(keys) {
		return false
	}
	for i, k := range keys {
		if ix.Keys[i] != k {
			return false
		}
		if desc != nil && ix.Desc[i] != desc[i] {
			return false
		}
		if desc == nil && ix.Desc[i] {
			return false
		}
	}
	return true
}

// ColumnStore owns the named columns of one table. All columns share a fixed
// row count; the column set may change, the row count may not. Multiple Table
// handles may alias one store, so every mutation here is visible through all
// of them.
//
// Stores are not safe for concurrent use. Evaluation is single-threaded;
// callers running queries from multiple goroutines must serialize access.
type ColumnStore struct {
	id      uuid.UUID
	names   []string
	cols    map[string]Column
	nrows   int
	version uint64
	active  *ActiveIndex
}

// NamedColumn pairs a column with its name for store construction.
type NamedColumn struct {
	Name string
	Col  Column
}

// Col is shorthand for a NamedColumn.
func Col(name string, c Column) NamedColumn {
	return NamedColumn{Name: name, Col: c}
}

// NewStore builds a store from named columns. All columns must have equal
// length; the first column fixes the row count.
func NewStore(cols ...NamedColumn) (*ColumnStore, error) {
	s := &ColumnStore{
		id:   uuid.New(),
		cols: make(map[string]Column, len(cols)),
	}
	if len(cols) > 0 {
		s.nrows = cols[0].Col.Len()
	}
	for _, nc := range cols {
		if nc.Col.Len() != s.nrows {
			return nil, NewDimensionMismatch(nc.Name, s.nrows, nc.Col.Len())
		}
		if _, dup := s.cols[nc.Name]; !dup {
			s.names = append(s.names, nc.Name)
		}
		s.cols[nc.Name] = nc.Col
	}
	return s, nil
}

// ID identifies the store. Aliased handles share it; a deep copy gets a new one.
func (s *ColumnStore) ID() uuid.UUID { return s.id }

// NumRows returns the fixed row count N.
func (s *ColumnStore) NumRows() int { return s.nrows }

// Names returns the column names in declaration order.
func (s *ColumnStore) Names() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

// Has reports whether a column exists.
func (s *ColumnStore) Has(name string) bool {
	_, ok := s.cols[name]
	return ok
}

// Get returns the named column.
func (s *ColumnStore) Get(name string) (Column, error) {
	c, ok := s.cols[name]
	if !ok {
		return nil, NewUnknownColumn(name)
	}
	return c, nil
}

// Set adds or replaces a column. The column must match the store's row count.
// Any structural change invalidates the active index.
func (s *ColumnStore) Set(name string, c Column) error {
	if c.Len() != s.nrows {
		return NewDimensionMismatch(name, s.nrows, c.Len())
	}
	if _, ok := s.cols[name]; !ok {
		s.names = append(s.names, name)
	}
	s.cols[name] = c
	s.bump()
	return nil
}

// Remove deletes a column.
func (s *ColumnStore) Remove(name string) error {
	if _, ok := s.cols[name]; !ok {
		return NewUnknownColumn(name)
	}
	delete(s.cols, name)
	for i, n := range s.names {
		if n == name {
			s.names = append(s.names[:i], s.names[i+1:]...)
			break
		}
	}
	s.bump()
	return nil
}

// Version counts structural mutations. Cached state keyed on a version is
// stale once the version moves.
func (s *ColumnStore) Version() uint64 { return s.version }

// ActiveIndex returns the cached sort association, or nil if none is valid.
func (s *ColumnStore) ActiveIndex() *ActiveIndex { return s.active }

// SetActiveIndex caches a sort association. The next structural mutation
// drops it again.
func (s *ColumnStore) SetActiveIndex(ix *ActiveIndex) { s.active = ix }

// bump records a structural mutation. The conservative rule applies: any
// mutation invalidates the active index, whether or not it touches the
// index's key columns.
func (s *ColumnStore) bump() {
	s.version++
	s.active = nil
}

// Clone deep-copies the store into a fresh arena slot with a new identity.
func (s *ColumnStore) Clone() *ColumnStore {
	out := &ColumnStore{
		id:    uuid.New(),
		names: make([]string, len(s.names)),
		cols:  make(map[string]Column, len(s.cols)),
		nrows: s.nrows,
	}
	copy(out.names, s.names)
	for name, c := range s.cols {
		out.cols[name] = c.Clone()
	}
	return out
}
