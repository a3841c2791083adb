// Package query composes the engine pieces into the single evaluation step:
// resolve the row selector, partition the selection, evaluate the column
// expression per group, then assemble a result table or dispatch to the
// mutation engine. Each query fully materializes before a chained query
// starts; there is no fusion across stages.
package query

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/frameql/frameql/internal/expr"
	"github.com/frameql/frameql/internal/group"
	"github.com/frameql/frameql/internal/mutate"
	"github.com/frameql/frameql/internal/sortindex"
	"github.com/frameql/frameql/internal/table"
)

// Query is one (selector, expression, grouping) evaluation against a table.
// Build it fluently, then Run it. Zero-value clauses mean "absent": no
// selector selects every row, no expression returns all columns.
type Query struct {
	t       *table.Table
	eng     *Engine
	where   string
	at      []int
	hasAt   bool
	selects string
	lets    string
	by      []string
	sorted  bool
}

// New starts a query against a table.
func New(t *table.Table) *Query {
	return &Query{t: t}
}

// Where sets the row-selector predicate, e.g. `val > 5 && grp == "A"`.
func (q *Query) Where(pred string) *Query {
	q.where = pred
	return q
}

// At selects explicit positions within the candidate row set. Position k is
// the k-th row of the selection established so far, not absolute row k once
// a Where has narrowed the candidates. Positions may repeat.
func (q *Query) At(positions ...int) *Query {
	q.at = positions
	q.hasAt = true
	return q
}

// Select sets the column expression: a projection list (`id, grp`), computed
// expressions (`val * 2`), or aggregates (`total = sum(val), n = .N`).
func (q *Query) Select(list string) *Query {
	q.selects = list
	return q
}

// By groups by the named columns in appearance order of their key tuples.
func (q *Query) By(cols ...string) *Query {
	q.by = cols
	q.sorted = false
	return q
}

// SortedBy groups by the named columns in ascending key order and caches the
// sort as the store's active index.
func (q *Query) SortedBy(cols ...string) *Query {
	q.by = cols
	q.sorted = true
	return q
}

// Let switches the query to assignment mode: `val := 0, tag := grp`.
// Run then mutates the receiving store in place and returns the same handle.
// Assigning null drops the target column.
func (q *Query) Let(assigns string) *Query {
	q.lets = assigns
	return q
}

// Order returns a new table with rows reordered by the given keys; a leading
// '-' on a key sorts it descending. Rows tied on all keys keep their
// original relative order.
func Order(t *table.Table, keys ...string) (*table.Table, error) {
	return sortindex.Order(t, keys...)
}

// Run evaluates the query. In assignment mode the receiving store is mutated
// and the original handle is returned for chaining; otherwise a new table is
// built and the input table is left untouched.
func (q *Query) Run() (*table.Table, error) {
	runID := uuid.New().String()
	s := q.t.Store()
	storeID := s.ID().String()

	q.eng.notify(Event{Type: EventQueryStart, RunID: runID, Store: storeID})

	out, err := q.run(runID, s, storeID)
	if err != nil {
		q.eng.notify(Event{Type: EventQueryFailed, RunID: runID, Store: storeID, Data: err.Error()})
		return nil, err
	}

	q.eng.notify(Event{Type: EventQueryEnd, RunID: runID, Store: storeID, Data: out.NumRows()})
	return out, nil
}

func (q *Query) run(runID string, s *table.ColumnStore, storeID string) (*table.Table, error) {
	if q.selects != "" && q.lets != "" {
		return nil, fmt.Errorf("a query cannot combine Select and Let")
	}

	sel := make([]int, s.NumRows())
	for i := range sel {
		sel[i] = i
	}

	if q.where != "" {
		pred, err := expr.ParseExpr(q.where)
		if err != nil {
			return nil, fmt.Errorf("selector: %w", err)
		}
		sel, err = expr.Selection(pred, expr.Env{Store: s, Rows: sel})
		if err != nil {
			return nil, err
		}
	}

	if q.hasAt {
		narrowed := make([]int, len(q.at))
		for i, p := range q.at {
			if p < 0 || p >= len(sel) {
				return nil, table.NewBadSelection(p, len(sel))
			}
			narrowed[i] = sel[p]
		}
		sel = narrowed
	}

	q.eng.notify(Event{Type: EventSelectEnd, RunID: runID, Store: storeID, Data: len(sel)})

	if q.lets != "" {
		if err := q.runAssign(runID, s, storeID, sel); err != nil {
			return nil, err
		}
		return q.t, nil
	}
	return q.runSelect(runID, s, storeID, sel)
}

// runAssign evaluates every assignment value against the pre-mutation store,
// then hands the staged results to the mutation engine. No write lands
// before the last read.
func (q *Query) runAssign(runID string, s *table.ColumnStore, storeID string, sel []int) error {
	list, err := expr.ParseAssigns(q.lets)
	if err != nil {
		return fmt.Errorf("assignment: %w", err)
	}

	groups, err := group.Partition(s, sel, q.by, q.sorted)
	if err != nil {
		return err
	}
	q.eng.notify(Event{Type: EventGroupEnd, RunID: runID, Store: storeID, Data: len(groups)})

	// Rows in group-emission order; assignment values align with this.
	effSel := make([]int, 0, len(sel))
	for _, g := range groups {
		effSel = append(effSel, g.Rows...)
	}

	assigns := make([]mutate.Assignment, 0, len(list.Items))
	for _, item := range list.Items {
		if item.Value.IsNullLiteral() {
			assigns = append(assigns, mutate.Assignment{Target: item.Target, Drop: true})
			continue
		}

		var vals []any
		var types []table.ColumnType

		for _, g := range groups {
			res, err := expr.Eval(item.Value, expr.Env{Store: s, Rows: g.Rows})
			if err != nil {
				return err
			}
			if !res.Scalar && res.Col.Len() != len(g.Rows) {
				return table.NewShapeMismatch(item.Target, len(g.Rows), res.Col.Len())
			}
			types = append(types, res.Col.Type())
			for i := range g.Rows {
				j := i
				if res.Scalar {
					j = 0
				}
				vals = append(vals, res.Col.Value(j))
			}
		}

		if len(groups) == 0 {
			// Empty selection still fixes the target's type, so a new
			// column can be created all-NA.
			res, err := expr.Eval(item.Value, expr.Env{Store: s, Rows: nil})
			if err != nil {
				return err
			}
			types = append(types, res.Col.Type())
		}

		col, err := columnFromValues(item.Target, types, vals)
		if err != nil {
			return err
		}
		assigns = append(assigns, mutate.Assignment{Target: item.Target, Values: col})
	}

	q.eng.notify(Event{Type: EventEvalEnd, RunID: runID, Store: storeID, Data: len(assigns)})

	if err := mutate.Apply(s, effSel, assigns); err != nil {
		return err
	}
	q.eng.notify(Event{Type: EventMutateEnd, RunID: runID, Store: storeID, Data: len(effSel)})
	return nil
}

func (q *Query) runSelect(runID string, s *table.ColumnStore, storeID string, sel []int) (*table.Table, error) {
	if q.selects == "" {
		// No column expression: the selected rows, every column.
		return gather(s, s.Names(), sel)
	}

	list, err := expr.ParseSelect(q.selects)
	if err != nil {
		return nil, fmt.Errorf("expression: %w", err)
	}

	if len(q.by) == 0 {
		if names, ok := bareProjection(list); ok {
			// Mode 1: verbatim projection, no expression evaluation.
			return gather(s, names, sel)
		}
		return q.evalUngrouped(runID, s, storeID, sel, list)
	}
	return q.evalGrouped(runID, s, storeID, sel, list)
}

func (q *Query) evalUngrouped(runID string, s *table.ColumnStore, storeID string, sel []int, list *expr.SelectList) (*table.Table, error) {
	env := expr.Env{Store: s, Rows: sel}

	results := make([]expr.Result, len(list.Items))
	allScalar := true
	for i, item := range list.Items {
		res, err := expr.Eval(item.Expr, env)
		if err != nil {
			return nil, err
		}
		if !res.Scalar {
			if res.Col.Len() != len(sel) {
				return nil, table.NewShapeMismatch(itemName(item, i), len(sel), res.Col.Len())
			}
			allScalar = false
		}
		results[i] = res
	}

	q.eng.notify(Event{Type: EventEvalEnd, RunID: runID, Store: storeID, Data: len(results)})

	n := len(sel)
	if allScalar {
		n = 1
	}
	cols := make([]table.NamedColumn, len(results))
	for i, res := range results {
		c := res.Col
		if res.Scalar && n > 1 {
			c = broadcast(c, n)
		}
		cols[i] = table.Col(itemName(list.Items[i], i), c)
	}
	return table.New(cols...)
}

// evalGrouped evaluates the expression once per group. When every item is a
// scalar in every group the output is an aggregate table: the grouping-key
// columns followed by one result row per group, in emission order.
// Otherwise each group contributes its rows, with scalars broadcast inside
// their group.
func (q *Query) evalGrouped(runID string, s *table.ColumnStore, storeID string, sel []int, list *expr.SelectList) (*table.Table, error) {
	groups, err := group.Partition(s, sel, q.by, q.sorted)
	if err != nil {
		return nil, err
	}
	q.eng.notify(Event{Type: EventGroupEnd, RunID: runID, Store: storeID, Data: len(groups)})

	perItem := make([][]expr.Result, len(list.Items))
	allScalar := true
	for _, g := range groups {
		env := expr.Env{Store: s, Rows: g.Rows}
		for i, item := range list.Items {
			res, err := expr.Eval(item.Expr, env)
			if err != nil {
				return nil, err
			}
			if !res.Scalar {
				if res.Col.Len() != len(g.Rows) {
					return nil, table.NewShapeMismatch(itemName(item, i), len(g.Rows), res.Col.Len())
				}
				allScalar = false
			}
			perItem[i] = append(perItem[i], res)
		}
	}

	q.eng.notify(Event{Type: EventEvalEnd, RunID: runID, Store: storeID, Data: len(list.Items)})

	if len(groups) == 0 {
		return q.emptyGroupedResult(s, list)
	}

	if allScalar {
		return q.aggregateResult(s, groups, list, perItem)
	}
	return q.expandedResult(s, sel, groups, list, perItem)
}

// aggregateResult builds the one-row-per-group table.
func (q *Query) aggregateResult(s *table.ColumnStore, groups []group.Group, list *expr.SelectList, perItem [][]expr.Result) (*table.Table, error) {
	cols := make([]table.NamedColumn, 0, len(q.by)+len(list.Items))

	for j, name := range q.by {
		keyCol, err := s.Get(name)
		if err != nil {
			return nil, err
		}
		vals := make([]any, len(groups))
		for gi, g := range groups {
			vals[gi] = g.Key[j]
		}
		c, err := table.FromValues(keyCol.Type(), vals)
		if err != nil {
			return nil, err
		}
		cols = append(cols, table.Col(name, c))
	}

	for i, item := range list.Items {
		vals := make([]any, len(groups))
		types := make([]table.ColumnType, len(groups))
		for gi, res := range perItem[i] {
			vals[gi] = res.Col.Value(0)
			types[gi] = res.Col.Type()
		}
		c, err := columnFromValues(itemName(item, i), types, vals)
		if err != nil {
			return nil, err
		}
		cols = append(cols, table.Col(itemName(item, i), c))
	}

	return table.New(cols...)
}

// expandedResult builds the one-row-per-selected-row table: key columns
// repeated per row, item vectors concatenated in group-emission order.
func (q *Query) expandedResult(s *table.ColumnStore, sel []int, groups []group.Group, list *expr.SelectList, perItem [][]expr.Result) (*table.Table, error) {
	cols := make([]table.NamedColumn, 0, len(q.by)+len(list.Items))

	for j, name := range q.by {
		keyCol, err := s.Get(name)
		if err != nil {
			return nil, err
		}
		vals := make([]any, 0, len(sel))
		for _, g := range groups {
			for range g.Rows {
				vals = append(vals, g.Key[j])
			}
		}
		c, err := table.FromValues(keyCol.Type(), vals)
		if err != nil {
			return nil, err
		}
		cols = append(cols, table.Col(name, c))
	}

	for i, item := range list.Items {
		vals := make([]any, 0, len(sel))
		var types []table.ColumnType
		for gi, g := range groups {
			res := perItem[i][gi]
			types = append(types, res.Col.Type())
			for k := range g.Rows {
				j := k
				if res.Scalar {
					j = 0
				}
				vals = append(vals, res.Col.Value(j))
			}
		}
		c, err := columnFromValues(itemName(item, i), types, vals)
		if err != nil {
			return nil, err
		}
		cols = append(cols, table.Col(itemName(item, i), c))
	}

	return table.New(cols...)
}

// emptyGroupedResult produces the zero-row aggregate shape: key columns and
// item columns typed by evaluating the items against an empty context.
func (q *Query) emptyGroupedResult(s *table.ColumnStore, list *expr.SelectList) (*table.Table, error) {
	cols := make([]table.NamedColumn, 0, len(q.by)+len(list.Items))

	for _, name := range q.by {
		keyCol, err := s.Get(name)
		if err != nil {
			return nil, err
		}
		cols = append(cols, table.Col(name, table.NewEmpty(keyCol.Type(), 0)))
	}

	for i, item := range list.Items {
		res, err := expr.Eval(item.Expr, expr.Env{Store: s, Rows: nil})
		if err != nil {
			return nil, err
		}
		cols = append(cols, table.Col(itemName(item, i), table.NewEmpty(res.Col.Type(), 0)))
	}

	return table.New(cols...)
}

func gather(s *table.ColumnStore, names []string, rows []int) (*table.Table, error) {
	cols := make([]table.NamedColumn, 0, len(names))
	for _, name := range names {
		c, err := s.Get(name)
		if err != nil {
			return nil, err
		}
		cols = append(cols, table.Col(name, c.Take(rows)))
	}
	return table.New(cols...)
}

// bareProjection reports whether every select item is an unaliased column
// name, i.e. the list is a verbatim projection.
func bareProjection(list *expr.SelectList) ([]string, bool) {
	names := make([]string, 0, len(list.Items))
	for _, item := range list.Items {
		if item.Alias != "" {
			return nil, false
		}
		name := item.Expr.BareIdent()
		if name == "" || name == ".N" {
			return nil, false
		}
		names = append(names, name)
	}
	return names, true
}

func itemName(item *expr.SelectItem, i int) string {
	if item.Alias != "" {
		return item.Alias
	}
	if name := item.Expr.BareIdent(); name != "" && name != ".N" {
		return name
	}
	return fmt.Sprintf("V%d", i+1)
}

// broadcast stretches a single-value column to n rows.
func broadcast(c table.Column, n int) table.Column {
	rows := make([]int, n)
	return c.Take(rows)
}

// columnFromValues builds a column from loosely-typed values, promoting a
// mix of int and float group results to float.
func columnFromValues(name string, types []table.ColumnType, vals []any) (table.Column, error) {
	final := table.ColumnTypeString
	if len(types) > 0 {
		final = types[0]
	}
	for _, t := range types[1:] {
		if t == final {
			continue
		}
		numeric := (t == table.ColumnTypeInt || t == table.ColumnTypeFloat) &&
			(final == table.ColumnTypeInt || final == table.ColumnTypeFloat)
		if !numeric {
			return nil, table.NewTypeError(
				fmt.Sprintf("column %q mixes %s and %s results across groups", name, final, t))
		}
		final = table.ColumnTypeFloat
	}
	return table.FromValues(final, vals)
}
