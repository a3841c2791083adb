package render

import (
	"strings"
	"testing"

	"github.com/frameql/frameql/internal/table"
	"github.com/frameql/frameql/internal/testutil"
)

func TestPrintTable(t *testing.T) {
	tbl := testutil.PeopleTable(t)
	var buf strings.Builder

	err := PrintTable(&buf, tbl)
	testutil.AssertNoError(t, err, "PrintTable")
	out := buf.String()

	for _, want := range []string{"name (TEXT)", "age (INT)", "city (TEXT)", "alice", "NA", "(4 rows)"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	// Header, separator, four data rows, footer.
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 7 {
		t.Errorf("expected 7 lines, got %d:\n%s", len(lines), out)
	}
}

func TestPrintEmptyTable(t *testing.T) {
	tbl, err := table.New(table.Col("x", table.Ints()))
	testutil.AssertNoError(t, err, "New")

	var buf strings.Builder
	testutil.AssertNoError(t, PrintTable(&buf, tbl), "PrintTable")
	if !strings.Contains(buf.String(), "(0 rows)") {
		t.Errorf("missing row count footer:\n%s", buf.String())
	}
}
