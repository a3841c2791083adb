package expr

import (
	"math"

	"github.com/frameql/frameql/internal/table"
)

func isNumeric(t table.ColumnType) bool {
	return t == table.ColumnTypeInt || t == table.ColumnTypeFloat
}

func asFloat(c table.Column, i int) float64 {
	switch v := c.Value(i).(type) {
	case int64:
		return float64(v)
	case float64:
		return v
	}
	return 0
}

// broadcastLen resolves the common length of two operands. Two scalars stay
// scalar; a scalar stretches to the vector's length; two vectors must agree.
func broadcastLen(a, b Result) (int, bool, error) {
	if a.Scalar && b.Scalar {
		return 1, true, nil
	}
	if a.Scalar {
		return b.Col.Len(), false, nil
	}
	if b.Scalar {
		return a.Col.Len(), false, nil
	}
	if a.Col.Len() != b.Col.Len() {
		return 0, false, table.NewShapeMismatch("", a.Col.Len(), b.Col.Len())
	}
	return a.Col.Len(), false, nil
}

// arith applies + - * / % elementwise with numeric promotion. Integer
// operands keep integer results except for /, which is always float.
// NA in either operand makes the result NA, as does a zero % divisor.
func arith(op string, a, b Result) (Result, error) {
	if !isNumeric(a.Col.Type()) || !isNumeric(b.Col.Type()) {
		return Result{}, table.NewTypeError("arithmetic requires numeric operands")
	}
	length, scalar, err := broadcastLen(a, b)
	if err != nil {
		return Result{}, err
	}

	asFloatResult := op == "/" ||
		a.Col.Type() == table.ColumnTypeFloat ||
		b.Col.Type() == table.ColumnTypeFloat

	na := make([]bool, length)
	if asFloatResult {
		vals := make([]float64, length)
		for i := 0; i < length; i++ {
			ai, bi := a.at(i), b.at(i)
			if a.Col.IsNA(ai) || b.Col.IsNA(bi) {
				na[i] = true
				continue
			}
			x, y := asFloat(a.Col, ai), asFloat(b.Col, bi)
			switch op {
			case "+":
				vals[i] = x + y
			case "-":
				vals[i] = x - y
			case "*":
				vals[i] = x * y
			case "/":
				vals[i] = x / y
			case "%":
				if y == 0 {
					na[i] = true
				} else {
					vals[i] = math.Mod(x, y)
				}
			}
		}
		return Result{Col: table.FloatsNA(vals, na), Scalar: scalar}, nil
	}

	vals := make([]int64, length)
	for i := 0; i < length; i++ {
		ai, bi := a.at(i), b.at(i)
		if a.Col.IsNA(ai) || b.Col.IsNA(bi) {
			na[i] = true
			continue
		}
		x := a.Col.Value(ai).(int64)
		y := b.Col.Value(bi).(int64)
		switch op {
		case "+":
			vals[i] = x + y
		case "-":
			vals[i] = x - y
		case "*":
			vals[i] = x * y
		case "%":
			if y == 0 {
				na[i] = true
			} else {
				vals[i] = x % y
			}
		}
	}
	return Result{Col: table.IntsNA(vals, na), Scalar: scalar}, nil
}

// compare applies a comparison elementwise, yielding a boolean result.
// Any comparison involving NA yields NA.
func compare(op string, a, b Result) (Result, error) {
	at, bt := a.Col.Type(), b.Col.Type()
	numeric := isNumeric(at) && isNumeric(bt)
	if !numeric && at != bt {
		return Result{}, table.NewTypeError("comparison across incompatible column types")
	}

	length, scalar, err := broadcastLen(a, b)
	if err != nil {
		return Result{}, err
	}

	vals := make([]bool, length)
	na := make([]bool, length)
	for i := 0; i < length; i++ {
		ai, bi := a.at(i), b.at(i)
		if a.Col.IsNA(ai) || b.Col.IsNA(bi) {
			na[i] = true
			continue
		}

		var cmp int
		switch {
		case numeric:
			x, y := asFloat(a.Col, ai), asFloat(b.Col, bi)
			switch {
			case x < y:
				cmp = -1
			case x > y:
				cmp = 1
			}
		case at == table.ColumnTypeString:
			x := a.Col.Value(ai).(string)
			y := b.Col.Value(bi).(string)
			switch {
			case x < y:
				cmp = -1
			case x > y:
				cmp = 1
			}
		case at == table.ColumnTypeBool:
			x := a.Col.Value(ai).(bool)
			y := b.Col.Value(bi).(bool)
			switch {
			case !x && y:
				cmp = -1
			case x && !y:
				cmp = 1
			}
		}

		switch op {
		case "==":
			vals[i] = cmp == 0
		case "!=":
			vals[i] = cmp != 0
		case "<":
			vals[i] = cmp < 0
		case "<=":
			vals[i] = cmp <= 0
		case ">":
			vals[i] = cmp > 0
		case ">=":
			vals[i] = cmp >= 0
		}
	}
	return Result{Col: table.BoolsNA(vals, na), Scalar: scalar}, nil
}

// logical applies && or || with three-valued semantics: NA && false is
// false, NA || true is true, anything else touching NA is NA.
func logical(op string, a, b Result) (Result, error) {
	if a.Col.Type() != table.ColumnTypeBool || b.Col.Type() != table.ColumnTypeBool {
		return Result{}, table.NewTypeError("logical operators require boolean operands")
	}
	length, scalar, err := broadcastLen(a, b)
	if err != nil {
		return Result{}, err
	}

	vals := make([]bool, length)
	na := make([]bool, length)
	for i := 0; i < length; i++ {
		ai, bi := a.at(i), b.at(i)
		ana, bna := a.Col.IsNA(ai), b.Col.IsNA(bi)
		var av, bv bool
		if !ana {
			av = a.Col.Value(ai).(bool)
		}
		if !bna {
			bv = b.Col.Value(bi).(bool)
		}

		if op == "&&" {
			switch {
			case !ana && !av, !bna && !bv:
				vals[i] = false
			case ana || bna:
				na[i] = true
			default:
				vals[i] = true
			}
		} else {
			switch {
			case !ana && av, !bna && bv:
				vals[i] = true
			case ana || bna:
				na[i] = true
			default:
				vals[i] = false
			}
		}
	}
	return Result{Col: table.BoolsNA(vals, na), Scalar: scalar}, nil
}

func negate(r Result) (Result, error) {
	n := r.Col.Len()
	na := make([]bool, n)
	switch r.Col.Type() {
	case table.ColumnTypeInt:
		vals := make([]int64, n)
		for i := 0; i < n; i++ {
			if r.Col.IsNA(i) {
				na[i] = true
				continue
			}
			vals[i] = -r.Col.Value(i).(int64)
		}
		return Result{Col: table.IntsNA(vals, na), Scalar: r.Scalar}, nil
	case table.ColumnTypeFloat:
		vals := make([]float64, n)
		for i := 0; i < n; i++ {
			if r.Col.IsNA(i) {
				na[i] = true
				continue
			}
			vals[i] = -r.Col.Value(i).(float64)
		}
		return Result{Col: table.FloatsNA(vals, na), Scalar: r.Scalar}, nil
	}
	return Result{}, table.NewTypeError("unary minus requires a numeric operand")
}

func not(r Result) (Result, error) {
	if r.Col.Type() != table.ColumnTypeBool {
		return Result{}, table.NewTypeError("negation requires a boolean operand")
	}
	n := r.Col.Len()
	vals := make([]bool, n)
	na := make([]bool, n)
	for i := 0; i < n; i++ {
		if r.Col.IsNA(i) {
			na[i] = true
			continue
		}
		vals[i] = !r.Col.Value(i).(bool)
	}
	return Result{Col: table.BoolsNA(vals, na), Scalar: r.Scalar}, nil
}

// Aggregates skip NA positions; an empty or all-NA input yields an NA
// scalar of the input's type.

func aggSum(arg Result) (Result, error) {
	switch arg.Col.Type() {
	case table.ColumnTypeInt:
		var sum int64
		seen := false
		for i := 0; i < arg.Col.Len(); i++ {
			if arg.Col.IsNA(i) {
				continue
			}
			sum += arg.Col.Value(i).(int64)
			seen = true
		}
		if !seen {
			return Result{Col: table.IntsNA([]int64{0}, []bool{true}), Scalar: true}, nil
		}
		return Result{Col: table.Ints(sum), Scalar: true}, nil
	case table.ColumnTypeFloat:
		var sum float64
		seen := false
		for i := 0; i < arg.Col.Len(); i++ {
			if arg.Col.IsNA(i) {
				continue
			}
			sum += arg.Col.Value(i).(float64)
			seen = true
		}
		if !seen {
			return Result{Col: table.FloatsNA([]float64{0}, []bool{true}), Scalar: true}, nil
		}
		return Result{Col: table.Floats(sum), Scalar: true}, nil
	}
	return Result{}, table.NewTypeError("sum requires a numeric argument")
}

func aggMean(arg Result) (Result, error) {
	if !isNumeric(arg.Col.Type()) {
		return Result{}, table.NewTypeError("mean requires a numeric argument")
	}
	var sum float64
	count := 0
	for i := 0; i < arg.Col.Len(); i++ {
		if arg.Col.IsNA(i) {
			continue
		}
		sum += asFloat(arg.Col, i)
		count++
	}
	if count == 0 {
		return Result{Col: table.FloatsNA([]float64{0}, []bool{true}), Scalar: true}, nil
	}
	return Result{Col: table.Floats(sum / float64(count)), Scalar: true}, nil
}

func aggExtreme(arg Result, min bool) (Result, error) {
	t := arg.Col.Type()
	if !isNumeric(t) && t != table.ColumnTypeString {
		return Result{}, table.NewTypeError("min/max requires a numeric or text argument")
	}

	best := -1
	for i := 0; i < arg.Col.Len(); i++ {
		if arg.Col.IsNA(i) {
			continue
		}
		if best < 0 {
			best = i
			continue
		}
		var less bool
		if t == table.ColumnTypeString {
			less = arg.Col.Value(i).(string) < arg.Col.Value(best).(string)
		} else {
			less = asFloat(arg.Col, i) < asFloat(arg.Col, best)
		}
		if less == min {
			best = i
		}
	}

	if best < 0 {
		return Result{Col: table.NewEmpty(t, 1), Scalar: true}, nil
	}
	return Result{Col: arg.Col.Take([]int{best}), Scalar: true}, nil
}

func aggCount(arg Result) Result {
	var n int64
	for i := 0; i < arg.Col.Len(); i++ {
		if !arg.Col.IsNA(i) {
			n++
		}
	}
	return Result{Col: table.Ints(n), Scalar: true}
}

func absElem(arg Result) (Result, error) {
	n := arg.Col.Len()
	na := make([]bool, n)
	switch arg.Col.Type() {
	case table.ColumnTypeInt:
		vals := make([]int64, n)
		for i := 0; i < n; i++ {
			if arg.Col.IsNA(i) {
				na[i] = true
				continue
			}
			v := arg.Col.Value(i).(int64)
			if v < 0 {
				v = -v
			}
			vals[i] = v
		}
		return Result{Col: table.IntsNA(vals, na), Scalar: arg.Scalar}, nil
	case table.ColumnTypeFloat:
		vals := make([]float64, n)
		for i := 0; i < n; i++ {
			if arg.Col.IsNA(i) {
				na[i] = true
				continue
			}
			vals[i] = math.Abs(arg.Col.Value(i).(float64))
		}
		return Result{Col: table.FloatsNA(vals, na), Scalar: arg.Scalar}, nil
	}
	return Result{}, table.NewTypeError("abs requires a numeric argument")
}
