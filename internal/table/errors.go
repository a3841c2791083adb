package table

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies engine failures.
type ErrorKind string

const (
	KindUnknownColumn     ErrorKind = "unknown_column"
	KindDimensionMismatch ErrorKind = "dimension_mismatch"
	KindShapeMismatch     ErrorKind = "shape_mismatch"
	KindTypeMismatch      ErrorKind = "type_mismatch"
	KindBadSelection      ErrorKind = "bad_selection"
)

// Represents a failed table or query operation
// (missing column, wrong column length, incompatible result shape, etc.)
type Error struct {
	Kind   ErrorKind
	Column string // column name (empty if not column-specific)
	Reason string // human-readable explanation (optional)
	Want   int    // expected length/position bound (-1 if unused)
	Got    int    // actual length/position (-1 if unused)
}

func (e *Error) Error() string {
	var parts []string

	parts = append(parts, string(e.Kind))

	if e.Column != "" {
		parts = append(parts, fmt.Sprintf("column %q", e.Column))
	}

	if e.Reason != "" {
		parts = append(parts, e.Reason)
	}

	if e.Want >= 0 || e.Got >= 0 {
		parts = append(parts, fmt.Sprintf("want %d, got %d", e.Want, e.Got))
	}

	return strings.Join(parts, " - ")
}

func NewUnknownColumn(name string) *Error {
	return &Error{
		Kind:   KindUnknownColumn,
		Column: name,
		Reason: "no such column",
		Want:   -1,
		Got:    -1,
	}
}

func NewDimensionMismatch(column string, want, got int) *Error {
	return &Error{
		Kind:   KindDimensionMismatch,
		Column: column,
		Reason: "column length differs from table row count",
		Want:   want,
		Got:    got,
	}
}

func NewShapeMismatch(column string, want, got int) *Error {
	return &Error{
		Kind:   KindShapeMismatch,
		Column: column,
		Reason: "result length incompatible with selection",
		Want:   want,
		Got:    got,
	}
}

func NewTypeMismatch(column string, want ColumnType, got any) *Error {
	return &Error{
		Kind:   KindTypeMismatch,
		Column: column,
		Reason: fmt.Sprintf("expected %s, got %T", want, got),
		Want:   -1,
		Got:    -1,
	}
}

// NewTypeError reports an operation applied across incompatible types.
func NewTypeError(reason string) *Error {
	return &Error{Kind: KindTypeMismatch, Reason: reason, Want: -1, Got: -1}
}

func NewBadSelection(pos, size int) *Error {
	return &Error{
		Kind:   KindBadSelection,
		Reason: "selection position out of range",
		Want:   size,
		Got:    pos,
	}
}

// IsKind reports whether err is an engine Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}
