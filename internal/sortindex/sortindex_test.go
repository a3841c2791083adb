package sortindex

import (
	"testing"

	"github.com/frameql/frameql/internal/table"
	"github.com/frameql/frameql/internal/testutil"
)

func TestParseKeys(t *testing.T) {
	keys := ParseKeys("grp", "-val")
	if keys[0] != (Key{Column: "grp"}) {
		t.Errorf("unexpected first key: %+v", keys[0])
	}
	if keys[1] != (Key{Column: "val", Desc: true}) {
		t.Errorf("unexpected second key: %+v", keys[1])
	}
}

func TestPermutationSingleKey(t *testing.T) {
	tbl := testutil.SalesTable(t)
	perm, err := Permutation(tbl.Store(), []int{0, 1, 2, 3, 4, 5}, ParseKeys("val"))
	testutil.AssertNoError(t, err, "Permutation")
	// val 10 20 30 5 7 1 ascending -> rows 5 3 4 0 1 2
	testutil.AssertSelection(t, perm, []int{5, 3, 4, 0, 1, 2}, "ascending by val")
}

func TestPermutationDescending(t *testing.T) {
	tbl := testutil.SalesTable(t)
	perm, err := Permutation(tbl.Store(), []int{0, 1, 2, 3, 4, 5}, ParseKeys("-val"))
	testutil.AssertNoError(t, err, "Permutation")
	testutil.AssertSelection(t, perm, []int{2, 1, 0, 4, 3, 5}, "descending by val")
}

func TestPermutationMultiKeyStable(t *testing.T) {
	tbl, err := table.New(
		table.Col("grp", table.Strings("B", "A", "B", "A")),
		table.Col("val", table.Ints(1, 2, 1, 2)),
	)
	testutil.AssertNoError(t, err, "New")

	// All rows tie on (grp, val) within their group, so original relative
	// order must survive.
	perm, err := Permutation(tbl.Store(), []int{0, 1, 2, 3}, ParseKeys("grp", "val"))
	testutil.AssertNoError(t, err, "Permutation")
	testutil.AssertSelection(t, perm, []int{1, 3, 0, 2}, "stable multi-key")
}

func TestPermutationNASortsFirst(t *testing.T) {
	tbl, err := table.New(
		table.Col("x", table.IntsNA(
			[]int64{5, 0, 1, 0},
			[]bool{false, true, false, true},
		)),
	)
	testutil.AssertNoError(t, err, "New")

	perm, err := Permutation(tbl.Store(), []int{0, 1, 2, 3}, ParseKeys("x"))
	testutil.AssertNoError(t, err, "Permutation")
	// NAs first (rows 1 and 3 keep relative order), then 1, then 5.
	testutil.AssertSelection(t, perm, []int{1, 3, 2, 0}, "NA first")
}

func TestPermutationSubsetSelection(t *testing.T) {
	tbl := testutil.SalesTable(t)
	perm, err := Permutation(tbl.Store(), []int{2, 4, 5}, ParseKeys("val"))
	testutil.AssertNoError(t, err, "Permutation")
	// val at rows 2,4,5 is 30,7,1 -> 5 4 2 ascending.
	testutil.AssertSelection(t, perm, []int{5, 4, 2}, "subset selection")
}

func TestPermutationUnknownColumn(t *testing.T) {
	tbl := testutil.SalesTable(t)
	_, err := Permutation(tbl.Store(), []int{0}, ParseKeys("nope"))
	testutil.AssertKind(t, err, table.KindUnknownColumn, "Permutation")
}

func TestOrderReversalRestoresTies(t *testing.T) {
	tbl, err := table.New(
		table.Col("id", table.Ints(1, 2, 3, 4)),
		table.Col("key", table.Ints(2, 1, 2, 1)),
	)
	testutil.AssertNoError(t, err, "New")

	asc, err := Order(tbl, "key")
	testutil.AssertNoError(t, err, "Order asc")
	testutil.AssertValues(t, asc, "id", []any{int64(2), int64(4), int64(1), int64(3)}, "ascending")

	desc, err := Order(asc, "-key")
	testutil.AssertNoError(t, err, "Order desc")
	// Rows tied on key return to their original relative order.
	testutil.AssertValues(t, desc, "id", []any{int64(1), int64(3), int64(2), int64(4)}, "reversal")
}

func TestOrderLeavesSourceUntouched(t *testing.T) {
	tbl := testutil.SalesTable(t)
	_, err := Order(tbl, "-val")
	testutil.AssertNoError(t, err, "Order")
	testutil.AssertValues(t, tbl, "val",
		[]any{int64(10), int64(20), int64(30), int64(5), int64(7), int64(1)}, "source")
}

func TestCachedPermutationReuse(t *testing.T) {
	tbl := testutil.SalesTable(t)
	s := tbl.Store()

	first, err := CachedPermutation(s, ParseKeys("val"))
	testutil.AssertNoError(t, err, "first")

	ix := s.ActiveIndex()
	if ix == nil {
		t.Fatal("permutation was not cached")
	}

	second, err := CachedPermutation(s, ParseKeys("val"))
	testutil.AssertNoError(t, err, "second")
	if &second[0] != &first[0] {
		t.Error("expected the cached permutation to be reused")
	}

	// A different key set must not hit the cache.
	byGrp, err := CachedPermutation(s, ParseKeys("grp"))
	testutil.AssertNoError(t, err, "byGrp")
	testutil.AssertSelection(t, byGrp, []int{0, 1, 2, 3, 4, 5}, "grp permutation")

	// Mutation invalidates; the next request recomputes.
	testutil.AssertNoError(t, s.Set("val", table.Ints(6, 5, 4, 3, 2, 1)), "Set")
	if s.ActiveIndex() != nil {
		t.Fatal("mutation left the active index in place")
	}
	fresh, err := CachedPermutation(s, ParseKeys("val"))
	testutil.AssertNoError(t, err, "fresh")
	testutil.AssertSelection(t, fresh, []int{5, 4, 3, 2, 1, 0}, "recomputed")
}

func TestCompareAtBool(t *testing.T) {
	c := table.Bools(true, false)
	if CompareAt(c, 1, 0) >= 0 {
		t.Error("false should sort before true")
	}
	if CompareAt(c, 0, 0) != 0 {
		t.Error("equal bools should tie")
	}
}
