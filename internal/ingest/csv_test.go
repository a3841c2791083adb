package ingest

import (
	"strings"
	"testing"

	"github.com/frameql/frameql/internal/table"
	"github.com/frameql/frameql/internal/testutil"
)

func TestReadCSVTypeSniffing(t *testing.T) {
	src := strings.TrimSpace(`
id,score,name,active
1,1.5,alice,true
2,2.0,bob,false
3,0.25,carol,true
`)
	tbl, err := ReadCSV(strings.NewReader(src))
	testutil.AssertNoError(t, err, "ReadCSV")
	testutil.AssertRowCount(t, tbl, 3, "rows")
	testutil.AssertColumnNames(t, tbl, []string{"id", "score", "name", "active"}, "headers")

	types := map[string]table.ColumnType{
		"id":     table.ColumnTypeInt,
		"score":  table.ColumnTypeFloat,
		"name":   table.ColumnTypeString,
		"active": table.ColumnTypeBool,
	}
	for name, want := range types {
		c, err := tbl.Column(name)
		testutil.AssertNoError(t, err, name)
		if c.Type() != want {
			t.Errorf("column %s: expected %s, got %s", name, want, c.Type())
		}
	}

	testutil.AssertValues(t, tbl, "id", []any{int64(1), int64(2), int64(3)}, "ids")
	testutil.AssertValues(t, tbl, "score", []any{1.5, 2.0, 0.25}, "scores")
	testutil.AssertValues(t, tbl, "active", []any{true, false, true}, "flags")
}

func TestReadCSVMissingValues(t *testing.T) {
	src := strings.TrimSpace(`
id,name
1,alice
NA,bob
3,
`)
	tbl, err := ReadCSV(strings.NewReader(src))
	testutil.AssertNoError(t, err, "ReadCSV")
	testutil.AssertValues(t, tbl, "id", []any{int64(1), nil, int64(3)}, "NA literal")
	testutil.AssertValues(t, tbl, "name", []any{"alice", "bob", nil}, "empty cell")

	// Missing cells must not widen the sniffed type.
	c, err := tbl.Column("id")
	testutil.AssertNoError(t, err, "Column")
	if c.Type() != table.ColumnTypeInt {
		t.Errorf("expected INT despite NA, got %s", c.Type())
	}
}

func TestReadCSVMixedNumbersWidenToFloat(t *testing.T) {
	src := "x\n1\n2.5\n"
	tbl, err := ReadCSV(strings.NewReader(src))
	testutil.AssertNoError(t, err, "ReadCSV")
	c, err := tbl.Column("x")
	testutil.AssertNoError(t, err, "Column")
	if c.Type() != table.ColumnTypeFloat {
		t.Errorf("expected FLOAT, got %s", c.Type())
	}
	testutil.AssertValues(t, tbl, "x", []any{1.0, 2.5}, "widened")
}

func TestReadCSVHeaderOnly(t *testing.T) {
	tbl, err := ReadCSV(strings.NewReader("a,b\n"))
	testutil.AssertNoError(t, err, "ReadCSV")
	testutil.AssertRowCount(t, tbl, 0, "no rows")
	testutil.AssertColumnNames(t, tbl, []string{"a", "b"}, "headers survive")
}

func TestReadCSVErrors(t *testing.T) {
	if _, err := ReadCSV(strings.NewReader("")); err == nil {
		t.Error("empty input should fail on the header read")
	}
}
