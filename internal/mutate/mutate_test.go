package mutate

import (
	"testing"

	"github.com/frameql/frameql/internal/table"
	"github.com/frameql/frameql/internal/testutil"
)

func TestApplyPartialWrite(t *testing.T) {
	tbl := testutil.SalesTable(t)
	err := Apply(tbl.Store(), []int{1, 3}, []Assignment{
		{Target: "val", Values: table.Ints(100, 200)},
	})
	testutil.AssertNoError(t, err, "Apply")
	testutil.AssertValues(t, tbl, "val",
		[]any{int64(10), int64(100), int64(30), int64(200), int64(7), int64(1)}, "partial")
}

func TestApplyFullCoverageReplacesColumn(t *testing.T) {
	tbl := testutil.SalesTable(t)
	err := Apply(tbl.Store(), []int{0, 1, 2, 3, 4, 5}, []Assignment{
		{Target: "val", Values: table.Floats(1, 2, 3, 4, 5, 6)},
	})
	testutil.AssertNoError(t, err, "Apply")

	c, err := tbl.Column("val")
	testutil.AssertNoError(t, err, "Column")
	if c.Type() != table.ColumnTypeFloat {
		t.Errorf("full coverage should allow a type change, got %s", c.Type())
	}
}

func TestApplyPartialRejectsTypeChange(t *testing.T) {
	tbl := testutil.SalesTable(t)
	err := Apply(tbl.Store(), []int{0}, []Assignment{
		{Target: "val", Values: table.Floats(1.5)},
	})
	testutil.AssertKind(t, err, table.KindTypeMismatch, "partial type change")
}

func TestApplyNewColumnIsNAOutsideSelection(t *testing.T) {
	tbl := testutil.SalesTable(t)
	err := Apply(tbl.Store(), []int{2, 4}, []Assignment{
		{Target: "note", Values: table.Strings("x", "y")},
	})
	testutil.AssertNoError(t, err, "Apply")
	testutil.AssertValues(t, tbl, "note", []any{nil, nil, "x", nil, "y", nil}, "NA fill")
}

func TestApplyDrop(t *testing.T) {
	tbl := testutil.SalesTable(t)
	err := Apply(tbl.Store(), nil, []Assignment{{Target: "grp", Drop: true}})
	testutil.AssertNoError(t, err, "Apply")
	testutil.AssertColumnNames(t, tbl, []string{"id", "val"}, "dropped")

	err = Apply(tbl.Store(), nil, []Assignment{{Target: "grp", Drop: true}})
	testutil.AssertKind(t, err, table.KindUnknownColumn, "dropping a missing column")
}

func TestApplyShapeMismatch(t *testing.T) {
	tbl := testutil.SalesTable(t)
	err := Apply(tbl.Store(), []int{0, 1}, []Assignment{
		{Target: "val", Values: table.Ints(1, 2, 3)},
	})
	testutil.AssertKind(t, err, table.KindShapeMismatch, "values vs selection")
}

func TestApplyBadSelection(t *testing.T) {
	tbl := testutil.SalesTable(t)
	err := Apply(tbl.Store(), []int{99}, []Assignment{
		{Target: "val", Values: table.Ints(1)},
	})
	testutil.AssertKind(t, err, table.KindBadSelection, "out of range row")
}

func TestApplyIsAtomic(t *testing.T) {
	tbl := testutil.SalesTable(t)
	// The second assignment fails its type check, so the first must not land.
	err := Apply(tbl.Store(), []int{0}, []Assignment{
		{Target: "val", Values: table.Ints(999)},
		{Target: "grp", Values: table.Ints(1)},
	})
	testutil.AssertKind(t, err, table.KindTypeMismatch, "Apply")
	testutil.AssertValues(t, tbl, "val",
		[]any{int64(10), int64(20), int64(30), int64(5), int64(7), int64(1)}, "first write rolled back")
}

func TestApplyDuplicateDropFailsBeforeCommit(t *testing.T) {
	tbl := testutil.SalesTable(t)
	// The second drop conflicts with the first; the plan must be rejected
	// with the store untouched, not fail halfway through the commit.
	err := Apply(tbl.Store(), nil, []Assignment{
		{Target: "grp", Drop: true},
		{Target: "grp", Drop: true},
	})
	testutil.AssertKind(t, err, table.KindUnknownColumn, "Apply")
	testutil.AssertColumnNames(t, tbl, []string{"id", "grp", "val"}, "no write committed")
}

func TestApplyDropThenReassign(t *testing.T) {
	tbl := testutil.SalesTable(t)
	err := Apply(tbl.Store(), []int{0, 1, 2, 3, 4, 5}, []Assignment{
		{Target: "grp", Drop: true},
		{Target: "grp", Values: table.Ints(1, 2, 3, 4, 5, 6)},
	})
	testutil.AssertNoError(t, err, "Apply")
	testutil.AssertValues(t, tbl, "grp",
		[]any{int64(1), int64(2), int64(3), int64(4), int64(5), int64(6)}, "recreated")
}

func TestApplyNAValueWritesNA(t *testing.T) {
	tbl := testutil.SalesTable(t)
	err := Apply(tbl.Store(), []int{1}, []Assignment{
		{Target: "val", Values: table.IntsNA([]int64{0}, []bool{true})},
	})
	testutil.AssertNoError(t, err, "Apply")
	testutil.AssertValues(t, tbl, "val",
		[]any{int64(10), nil, int64(30), int64(5), int64(7), int64(1)}, "NA written")
}

func TestCoversAllRows(t *testing.T) {
	if !coversAllRows([]int{2, 0, 1}, 3) {
		t.Error("permuted full selection should count as full coverage")
	}
	if !coversAllRows([]int{0, 1, 1, 2}, 3) {
		t.Error("duplicates should not defeat full coverage")
	}
	if coversAllRows([]int{0, 1}, 3) {
		t.Error("short selection is not full coverage")
	}
	if coversAllRows([]int{0, 0, 1}, 3) {
		t.Error("duplicated partial selection is not full coverage")
	}
}
