package table

import "github.com/google/uuid"

// Table is a handle to a ColumnStore. Handles are cheap to copy and share
// the store by reference: mutation through one handle is visible through
// every alias. Clone is the only way to break the aliasing relationship.
type Table struct {
	store *ColumnStore
}

// New builds a table over a fresh store.
func New(cols ...NamedColumn) (*Table, error) {
	s, err := NewStore(cols...)
	if err != nil {
		return nil, err
	}
	return &Table{store: s}, nil
}

// FromStore wraps an existing store in a new handle. The handle aliases the
// store; it does not copy it.
func FromStore(s *ColumnStore) *Table {
	return &Table{store: s}
}

// Store exposes the backing store for engine packages.
func (t *Table) Store() *ColumnStore { return t.store }

// ID identifies the backing store, not the handle.
func (t *Table) ID() uuid.UUID { return t.store.ID() }

// Clone deep-copies the backing store. The result shares no row data with
// the receiver; mutating one never changes the other.
func (t *Table) Clone() *Table {
	return &Table{store: t.store.Clone()}
}

func (t *Table) NumRows() int    { return t.store.NumRows() }
func (t *Table) NumCols() int    { return len(t.store.names) }
func (t *Table) Names() []string { return t.store.Names() }

// Column returns the named column.
func (t *Table) Column(name string) (Column, error) {
	return t.store.Get(name)
}

// Value returns the value at (column, row), nil for NA.
func (t *Table) Value(name string, row int) (any, error) {
	c, err := t.store.Get(name)
	if err != nil {
		return nil, err
	}
	if row < 0 || row >= c.Len() {
		return nil, NewBadSelection(row, c.Len())
	}
	return c.Value(row), nil
}
