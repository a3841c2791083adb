package query

import (
	"fmt"
	"time"

	"github.com/frameql/frameql/internal/table"
)

// Engine holds named tables and fans evaluation lifecycle events out to
// observers. Queries can be built without an engine; the engine exists so
// outer surfaces (REPL, HTTP) share one registry and one observer set.
type Engine struct {
	tables    map[string]*table.Table
	names     []string
	observers []Observer
}

// NewEngine creates an empty engine.
func NewEngine() *Engine {
	return &Engine{
		tables:    make(map[string]*table.Table),
		observers: make([]Observer, 0),
	}
}

// Register adds or replaces a named table. The engine keeps the handle, so
// assignment-mode queries through the engine mutate the registered store.
func (e *Engine) Register(name string, t *table.Table) {
	if _, ok := e.tables[name]; !ok {
		e.names = append(e.names, name)
	}
	e.tables[name] = t
}

// Lookup returns a registered table by name.
func (e *Engine) Lookup(name string) (*table.Table, error) {
	t, ok := e.tables[name]
	if !ok {
		return nil, fmt.Errorf("table not found: %s", name)
	}
	return t, nil
}

// Names lists registered tables in registration order.
func (e *Engine) Names() []string {
	out := make([]string, len(e.names))
	copy(out, e.names)
	return out
}

// AddObserver registers an observer for query lifecycle events.
func (e *Engine) AddObserver(o Observer) {
	e.observers = append(e.observers, o)
}

// Query starts a query against a table with this engine's observers attached.
func (e *Engine) Query(t *table.Table) *Query {
	q := New(t)
	q.eng = e
	return q
}

// QueryNamed starts a query against a registered table.
func (e *Engine) QueryNamed(name string) (*Query, error) {
	t, err := e.Lookup(name)
	if err != nil {
		return nil, err
	}
	return e.Query(t), nil
}

func (e *Engine) notify(ev Event) {
	if e == nil {
		return
	}
	ev.Timestamp = time.Now()
	for _, o := range e.observers {
		o.OnEvent(ev)
	}
}
