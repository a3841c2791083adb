package testutil

import (
	"testing"

	"github.com/frameql/frameql/internal/table"
)

// SalesTable creates the six-row fixture used across the engine tests:
// id 1..6, grp A A B B C C, val 10 20 30 5 7 1.
func SalesTable(t *testing.T) *table.Table {
	t.Helper()
	tbl, err := table.New(
		table.Col("id", table.Ints(1, 2, 3, 4, 5, 6)),
		table.Col("grp", table.Strings("A", "A", "B", "B", "C", "C")),
		table.Col("val", table.Ints(10, 20, 30, 5, 7, 1)),
	)
	AssertNoError(t, err, "SalesTable")
	return tbl
}

// PeopleTable creates a fixture with missing values in both a numeric and a
// text column.
func PeopleTable(t *testing.T) *table.Table {
	t.Helper()
	tbl, err := table.New(
		table.Col("name", table.Strings("alice", "bob", "carol", "dan")),
		table.Col("age", table.IntsNA(
			[]int64{34, 0, 27, 45},
			[]bool{false, true, false, false},
		)),
		table.Col("city", table.StringsNA(
			[]string{"oslo", "lima", "", "lima"},
			[]bool{false, false, true, false},
		)),
	)
	AssertNoError(t, err, "PeopleTable")
	return tbl
}
