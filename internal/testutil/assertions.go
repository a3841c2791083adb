package testutil

import (
	"testing"

	"github.com/frameql/frameql/internal/table"
)

// AssertNoError checks that an error is nil
func AssertNoError(t *testing.T, err error, context string) {
	t.Helper()
	if err != nil {
		t.Fatalf("%s: expected no error, got: %v", context, err)
	}
}

// AssertError checks that an error is not nil
func AssertError(t *testing.T, err error, context string) {
	t.Helper()
	if err == nil {
		t.Errorf("%s: expected an error, got nil", context)
	}
}

// AssertKind checks that an error is an engine error of the given kind
func AssertKind(t *testing.T, err error, kind table.ErrorKind, context string) {
	t.Helper()
	if err == nil {
		t.Errorf("%s: expected %s error, got nil", context, kind)
		return
	}
	if !table.IsKind(err, kind) {
		t.Errorf("%s: expected %s error, got: %v", context, kind, err)
	}
}

// AssertRowCount checks if the table has the expected number of rows
func AssertRowCount(t *testing.T, tbl *table.Table, expected int, context string) {
	t.Helper()
	if tbl.NumRows() != expected {
		t.Errorf("%s: expected %d rows, got %d", context, expected, tbl.NumRows())
	}
}

// AssertColumnNames checks the table's column names and order
func AssertColumnNames(t *testing.T, tbl *table.Table, expected []string, context string) {
	t.Helper()
	names := tbl.Names()
	if len(names) != len(expected) {
		t.Errorf("%s: expected columns %v, got %v", context, expected, names)
		return
	}
	for i, name := range expected {
		if names[i] != name {
			t.Errorf("%s: expected columns %v, got %v", context, expected, names)
			return
		}
	}
}

// AssertValues checks a column's values top to bottom; nil entries mean NA
func AssertValues(t *testing.T, tbl *table.Table, column string, expected []any, context string) {
	t.Helper()
	c, err := tbl.Column(column)
	if err != nil {
		t.Errorf("%s: %v", context, err)
		return
	}
	if c.Len() != len(expected) {
		t.Errorf("%s: column %q has %d values, expected %d", context, column, c.Len(), len(expected))
		return
	}
	for i, want := range expected {
		got := c.Value(i)
		if got != want {
			t.Errorf("%s: column %q row %d: expected %v (%T), got %v (%T)",
				context, column, i, want, want, got, got)
		}
	}
}

// AssertSelection checks a row-index slice
func AssertSelection(t *testing.T, got, expected []int, context string) {
	t.Helper()
	if len(got) != len(expected) {
		t.Errorf("%s: expected selection %v, got %v", context, expected, got)
		return
	}
	for i := range expected {
		if got[i] != expected[i] {
			t.Errorf("%s: expected selection %v, got %v", context, expected, got)
			return
		}
	}
}
