package table

// ColumnType identifies the scalar type of a column.
type ColumnType string

const (
	ColumnTypeInt    ColumnType = "INT"
	ColumnTypeFloat  ColumnType = "FLOAT"
	ColumnTypeString ColumnType = "TEXT"
	ColumnTypeBool   ColumnType = "BOOL"
)

// Column is a homogeneous sequence of values of one scalar type.
// Every position is either a concrete value or NA. Value returns nil for NA
// positions so callers never see a placeholder that could be mistaken for data.
type Column interface {
	Type() ColumnType
	Len() int
	IsNA(i int) bool
	// Value returns the value at i as int64, float64, string or bool,
	// or nil when the position is NA.
	Value(i int) any
	// Take gathers the given row positions into a new column.
	// Positions may repeat and appear in any order.
	Take(rows []int) Column
	Clone() Column
	// Set writes a value at position i, converting compatible numeric
	// types. nil writes NA. Incompatible values fail with TypeMismatch.
	Set(i int, v any) error
}

type intColumn struct {
	vals []int64
	na   []bool
}

type floatColumn struct {
	vals []float64
	na   []bool
}

type stringColumn struct {
	vals []string
	na   []bool
}

type boolColumn struct {
	vals []bool
	na   []bool
}

// Ints builds an integer column with no missing values.
func Ints(vals ...int64) Column {
	return &intColumn{vals: vals, na: make([]bool, len(vals))}
}

// IntsNA builds an integer column; na[i] == true marks position i missing.
func IntsNA(vals []int64, na []bool) Column {
	return &intColumn{vals: vals, na: na}
}

// Floats builds a float column with no missing values.
func Floats(vals ...float64) Column {
	return &floatColumn{vals: vals, na: make([]bool, len(vals))}
}

// FloatsNA builds a float column; na[i] == true marks position i missing.
func FloatsNA(vals []float64, na []bool) Column {
	return &floatColumn{vals: vals, na: na}
}

// Strings builds a text column with no missing values.
func Strings(vals ...string) Column {
	return &stringColumn{vals: vals, na: make([]bool, len(vals))}
}

// StringsNA builds a text column; na[i] == true marks position i missing.
func StringsNA(vals []string, na []bool) Column {
	return &stringColumn{vals: vals, na: na}
}

// Bools builds a boolean column with no missing values.
func Bools(vals ...bool) Column {
	return &boolColumn{vals: vals, na: make([]bool, len(vals))}
}

// BoolsNA builds a boolean column; na[i] == true marks position i missing.
func BoolsNA(vals []bool, na []bool) Column {
	return &boolColumn{vals: vals, na: na}
}

// NewEmpty builds an all-NA column of the given type and length.
func NewEmpty(t ColumnType, n int) Column {
	na := make([]bool, n)
	for i := range na {
		na[i] = true
	}
	switch t {
	case ColumnTypeInt:
		return &intColumn{vals: make([]int64, n), na: na}
	case ColumnTypeFloat:
		return &floatColumn{vals: make([]float64, n), na: na}
	case ColumnTypeBool:
		return &boolColumn{vals: make([]bool, n), na: na}
	default:
		return &stringColumn{vals: make([]string, n), na: na}
	}
}

// FromValues builds a column of the given type from loosely-typed values,
// applying the same conversions as Column.Set. nil entries become NA.
func FromValues(t ColumnType, vals []any) (Column, error) {
	col := NewEmpty(t, len(vals))
	for i, v := range vals {
		if err := col.Set(i, v); err != nil {
			return nil, err
		}
	}
	return col, nil
}

// TypeOf reports the column type a single Go value belongs to.
func TypeOf(v any) (ColumnType, bool) {
	switch v.(type) {
	case int, int64:
		return ColumnTypeInt, true
	case float64:
		return ColumnTypeFloat, true
	case string:
		return ColumnTypeString, true
	case bool:
		return ColumnTypeBool, true
	}
	return "", false
}

func takeNA(na []bool, rows []int) []bool {
	out := make([]bool, len(rows))
	for i, r := range rows {
		out[i] = na[r]
	}
	return out
}

func (c *intColumn) Type() ColumnType { return ColumnTypeInt }
func (c *intColumn) Len() int         { return len(c.vals) }
func (c *intColumn) IsNA(i int) bool  { return c.na[i] }

func (c *intColumn) Value(i int) any {
	if c.na[i] {
		return nil
	}
	return c.vals[i]
}

func (c *intColumn) Take(rows []int) Column {
	vals := make([]int64, len(rows))
	for i, r := range rows {
		vals[i] = c.vals[r]
	}
	return &intColumn{vals: vals, na: takeNA(c.na, rows)}
}

func (c *intColumn) Clone() Column {
	vals := make([]int64, len(c.vals))
	copy(vals, c.vals)
	na := make([]bool, len(c.na))
	copy(na, c.na)
	return &intColumn{vals: vals, na: na}
}

func (c *intColumn) Set(i int, v any) error {
	switch val := v.(type) {
	case nil:
		c.na[i] = true
		c.vals[i] = 0
	case int64:
		c.vals[i] = val
		c.na[i] = false
	case int:
		c.vals[i] = int64(val)
		c.na[i] = false
	default:
		return NewTypeMismatch("", ColumnTypeInt, v)
	}
	return nil
}

func (c *floatColumn) Type() ColumnType { return ColumnTypeFloat }
func (c *floatColumn) Len() int         { return len(c.vals) }
func (c *floatColumn) IsNA(i int) bool  { return c.na[i] }

func (c *floatColumn) Value(i int) any {
	if c.na[i] {
		return nil
	}
	return c.vals[i]
}

func (c *floatColumn) Take(rows []int) Column {
	vals := make([]float64, len(rows))
	for i, r := range rows {
		vals[i] = c.vals[r]
	}
	return &floatColumn{vals: vals, na: takeNA(c.na, rows)}
}

func (c *floatColumn) Clone() Column {
	vals := make([]float64, len(c.vals))
	copy(vals, c.vals)
	na := make([]bool, len(c.na))
	copy(na, c.na)
	return &floatColumn{vals: vals, na: na}
}

func (c *floatColumn) Set(i int, v any) error {
	switch val := v.(type) {
	case nil:
		c.na[i] = true
		c.vals[i] = 0
	case float64:
		c.vals[i] = val
		c.na[i] = false
	case int64:
		c.vals[i] = float64(val)
		c.na[i] = false
	case int:
		c.vals[i] = float64(val)
		c.na[i] = false
	default:
		return NewTypeMismatch("", ColumnTypeFloat, v)
	}
	return nil
}

func (c *stringColumn) Type() ColumnType { return ColumnTypeString }
func (c *stringColumn) Len() int         { return len(c.vals) }
func (c *stringColumn) IsNA(i int) bool  { return c.na[i] }

func (c *stringColumn) Value(i int) any {
	if c.na[i] {
		return nil
	}
	return c.vals[i]
}

func (c *stringColumn) Take(rows []int) Column {
	vals := make([]string, len(rows))
	for i, r := range rows {
		vals[i] = c.vals[r]
	}
	return &stringColumn{vals: vals, na: takeNA(c.na, rows)}
}

func (c *stringColumn) Clone() Column {
	vals := make([]string, len(c.vals))
	copy(vals, c.vals)
	na := make([]bool, len(c.na))
	copy(na, c.na)
	return &stringColumn{vals: vals, na: na}
}

func (c *stringColumn) Set(i int, v any) error {
	switch val := v.(type) {
	case nil:
		c.na[i] = true
		c.vals[i] = ""
	case string:
		c.vals[i] = val
		c.na[i] = false
	default:
		return NewTypeMismatch("", ColumnTypeString, v)
	}
	return nil
}

func (c *boolColumn) Type() ColumnType { return ColumnTypeBool }
func (c *boolColumn) Len() int         { return len(c.vals) }
func (c *boolColumn) IsNA(i int) bool  { return c.na[i] }

func (c *boolColumn) Value(i int) any {
	if c.na[i] {
		return nil
	}
	return c.vals[i]
}

func (c *boolColumn) Take(rows []int) Column {
	vals := make([]bool, len(rows))
	for i, r := range rows {
		vals[i] = c.vals[r]
	}
	return &boolColumn{vals: vals, na: takeNA(c.na, rows)}
}

func (c *boolColumn) Clone() Column {
	vals := make([]bool, len(c.vals))
	copy(vals, c.vals)
	na := make([]bool, len(c.na))
	copy(na, c.na)
	return &boolColumn{vals: vals, na: na}
}

func (c *boolColumn) Set(i int, v any) error {
	switch val := v.(type) {
	case nil:
		c.na[i] = true
		c.vals[i] = false
	case bool:
		c.vals[i] = val
		c.na[i] = false
	default:
		return NewTypeMismatch("", ColumnTypeBool, v)
	}
	return nil
}
