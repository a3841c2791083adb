package group

import (
	"testing"

	"github.com/frameql/frameql/internal/table"
	"github.com/frameql/frameql/internal/testutil"
)

func allRows(n int) []int {
	sel := make([]int, n)
	for i := range sel {
		sel[i] = i
	}
	return sel
}

func assertGroup(t *testing.T, g Group, key []any, rows []int) {
	t.Helper()
	if len(g.Key) != len(key) {
		t.Fatalf("expected key %v, got %v", key, g.Key)
	}
	for i := range key {
		if g.Key[i] != key[i] {
			t.Fatalf("expected key %v, got %v", key, g.Key)
		}
	}
	testutil.AssertSelection(t, g.Rows, rows, "group rows")
}

func TestPartitionEmptyBy(t *testing.T) {
	tbl := testutil.SalesTable(t)
	groups, err := Partition(tbl.Store(), []int{1, 3, 5}, nil, false)
	testutil.AssertNoError(t, err, "Partition")
	if len(groups) != 1 {
		t.Fatalf("expected 1 group, got %d", len(groups))
	}
	assertGroup(t, groups[0], []any{}, []int{1, 3, 5})
}

func TestPartitionAppearanceOrder(t *testing.T) {
	tbl, err := table.New(
		table.Col("grp", table.Strings("B", "A", "B", "C", "A")),
	)
	testutil.AssertNoError(t, err, "New")

	groups, err := Partition(tbl.Store(), allRows(5), []string{"grp"}, false)
	testutil.AssertNoError(t, err, "Partition")
	if len(groups) != 3 {
		t.Fatalf("expected 3 groups, got %d", len(groups))
	}
	assertGroup(t, groups[0], []any{"B"}, []int{0, 2})
	assertGroup(t, groups[1], []any{"A"}, []int{1, 4})
	assertGroup(t, groups[2], []any{"C"}, []int{3})
}

func TestPartitionSortedOrder(t *testing.T) {
	tbl, err := table.New(
		table.Col("grp", table.Strings("B", "A", "B", "C", "A")),
	)
	testutil.AssertNoError(t, err, "New")

	groups, err := Partition(tbl.Store(), allRows(5), []string{"grp"}, true)
	testutil.AssertNoError(t, err, "Partition")
	if len(groups) != 3 {
		t.Fatalf("expected 3 groups, got %d", len(groups))
	}
	assertGroup(t, groups[0], []any{"A"}, []int{1, 4})
	assertGroup(t, groups[1], []any{"B"}, []int{0, 2})
	assertGroup(t, groups[2], []any{"C"}, []int{3})
}

func TestPartitionCoversSelectionExactly(t *testing.T) {
	tbl := testutil.SalesTable(t)
	sel := []int{0, 2, 3, 5}

	for _, sorted := range []bool{false, true} {
		groups, err := Partition(tbl.Store(), sel, []string{"grp"}, sorted)
		testutil.AssertNoError(t, err, "Partition")

		seen := make(map[int]int)
		for _, g := range groups {
			for _, row := range g.Rows {
				seen[row]++
			}
		}
		if len(seen) != len(sel) {
			t.Errorf("sorted=%v: groups cover %d rows, selection has %d", sorted, len(seen), len(sel))
		}
		for _, row := range sel {
			if seen[row] != 1 {
				t.Errorf("sorted=%v: row %d appears %d times", sorted, row, seen[row])
			}
		}
	}
}

func TestPartitionMultiKey(t *testing.T) {
	tbl, err := table.New(
		table.Col("a", table.Strings("x", "x", "y", "x")),
		table.Col("b", table.Ints(1, 2, 1, 1)),
	)
	testutil.AssertNoError(t, err, "New")

	groups, err := Partition(tbl.Store(), allRows(4), []string{"a", "b"}, false)
	testutil.AssertNoError(t, err, "Partition")
	if len(groups) != 3 {
		t.Fatalf("expected 3 groups, got %d", len(groups))
	}
	assertGroup(t, groups[0], []any{"x", int64(1)}, []int{0, 3})
	assertGroup(t, groups[1], []any{"x", int64(2)}, []int{1})
	assertGroup(t, groups[2], []any{"y", int64(1)}, []int{2})
}

func TestPartitionNAKeyIsItsOwnGroup(t *testing.T) {
	tbl, err := table.New(
		table.Col("k", table.StringsNA(
			[]string{"a", "", "a", ""},
			[]bool{false, true, false, true},
		)),
	)
	testutil.AssertNoError(t, err, "New")

	groups, err := Partition(tbl.Store(), allRows(4), []string{"k"}, false)
	testutil.AssertNoError(t, err, "Partition")
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(groups))
	}
	assertGroup(t, groups[0], []any{"a"}, []int{0, 2})
	assertGroup(t, groups[1], []any{nil}, []int{1, 3})
}

func TestPartitionUnknownColumn(t *testing.T) {
	tbl := testutil.SalesTable(t)
	_, err := Partition(tbl.Store(), allRows(6), []string{"nope"}, false)
	testutil.AssertKind(t, err, table.KindUnknownColumn, "Partition")
}

func TestSortedPartitionCachesFullTablePermutation(t *testing.T) {
	tbl := testutil.SalesTable(t)
	s := tbl.Store()

	_, err := Partition(s, allRows(6), []string{"grp"}, true)
	testutil.AssertNoError(t, err, "Partition full")
	if s.ActiveIndex() == nil {
		t.Error("full-table sorted partition should cache the permutation")
	}

	// A subset selection must not disturb the cache with its own permutation.
	s.SetActiveIndex(nil)
	_, err = Partition(s, []int{1, 2, 3}, []string{"grp"}, true)
	testutil.AssertNoError(t, err, "Partition subset")
	if s.ActiveIndex() != nil {
		t.Error("subset sorted partition should not populate the cache")
	}
}

func TestPartitionKeysDoNotCollideAcrossTypes(t *testing.T) {
	tbl, err := table.New(
		table.Col("i", table.Ints(1, 1)),
		table.Col("s", table.Strings("1", "1")),
	)
	testutil.AssertNoError(t, err, "New")

	groups, err := Partition(tbl.Store(), allRows(2), []string{"i", "s"}, false)
	testutil.AssertNoError(t, err, "Partition")
	if len(groups) != 1 {
		t.Fatalf("expected 1 group, got %d", len(groups))
	}
	assertGroup(t, groups[0], []any{int64(1), "1"}, []int{0, 1})
}
