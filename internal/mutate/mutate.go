// Package mutate applies assignment-mode query results back into a column
// store in place. Callers evaluate every value against the pre-mutation
// store first; Apply then stages all writes and commits them together, so a
// failing assignment never leaves a partially-written store behind.
package mutate

import (
	"github.com/frameql/frameql/internal/table"
)

// Assignment is one computed target: the column to write (or drop) and the
// values aligned position-for-position with the selection handed to Apply.
type Assignment struct {
	Target string
	Drop   bool
	Values table.Column
}

// Apply writes the assignments into the store at the selected rows.
//
// A missing target column is created with NA everywhere outside the
// selection. A selection covering every row replaces the column outright,
// which may change its type; a partial selection writes only the selected
// positions and must match the existing column's type. Drop removes the
// target column.
//
// All assignments are staged before the first write lands: either every
// write commits or none do. Staging tracks the column set the plan would
// produce, so a conflicting plan (dropping the same target twice) fails
// before the commit loop, which itself cannot fail.
func Apply(s *table.ColumnStore, selection []int, assigns []Assignment) error {
	type staged struct {
		name string
		drop bool
		col  table.Column
	}

	plan := make([]staged, 0, len(assigns))
	present := make(map[string]bool, len(assigns))
	for _, a := range assigns {
		if _, seen := present[a.Target]; !seen {
			present[a.Target] = s.Has(a.Target)
		}
	}

	for _, a := range assigns {
		if a.Drop {
			if !present[a.Target] {
				return table.NewUnknownColumn(a.Target)
			}
			present[a.Target] = false
			plan = append(plan, staged{name: a.Target, drop: true})
			continue
		}
		present[a.Target] = true

		if a.Values.Len() != len(selection) {
			return table.NewShapeMismatch(a.Target, len(selection), a.Values.Len())
		}

		var dst table.Column
		existing, err := s.Get(a.Target)
		switch {
		case err != nil:
			// New column: NA outside the selection.
			dst = table.NewEmpty(a.Values.Type(), s.NumRows())
		case coversAllRows(selection, s.NumRows()):
			// Full replacement; the column may change type.
			dst = table.NewEmpty(a.Values.Type(), s.NumRows())
		default:
			// Partial update: untouched positions keep their prior
			// values exactly.
			dst = existing.Clone()
		}

		for k, row := range selection {
			if row < 0 || row >= s.NumRows() {
				return table.NewBadSelection(row, s.NumRows())
			}
			if err := dst.Set(row, a.Values.Value(k)); err != nil {
				return err
			}
		}
		plan = append(plan, staged{name: a.Target, col: dst})
	}

	for _, st := range plan {
		if st.drop {
			if err := s.Remove(st.name); err != nil {
				return err
			}
			continue
		}
		if err := s.Set(st.name, st.col); err != nil {
			return err
		}
	}
	return nil
}

// coversAllRows reports whether the selection touches every row at least
// once, i.e. the write amounts to whole-column replacement.
func coversAllRows(selection []int, n int) bool {
	if len(selection) < n {
		return false
	}
	seen := make([]bool, n)
	count := 0
	for _, row := range selection {
		if row < 0 || row >= n {
			return false
		}
		if !seen[row] {
			seen[row] = true
			count++
		}
	}
	return count == n
}
