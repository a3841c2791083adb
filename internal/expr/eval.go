package expr

import (
	"fmt"

	"github.com/frameql/frameql/internal/table"
)

// Env is the evaluation context: a store and the row indices visible to the
// expression. Identifiers resolve to the named column restricted to Rows;
// the .N symbol resolves to len(Rows).
type Env struct {
	Store *table.ColumnStore
	Rows  []int
}

// Result is an evaluated expression: a column of length len(Env.Rows), or a
// single-value column with Scalar set, to be broadcast by the caller.
type Result struct {
	Col    table.Column
	Scalar bool
}

// Len returns the broadcast length of the result against n rows.
func (r Result) Len(n int) int {
	if r.Scalar {
		return n
	}
	return r.Col.Len()
}

func (r Result) at(i int) int {
	if r.Scalar {
		return 0
	}
	return i
}

// Eval evaluates an expression in the given context.
func Eval(x *Expr, env Env) (Result, error) {
	return x.Or.eval(env)
}

// Selection evaluates a predicate over the candidate rows and returns the
// rows where it is true, in candidate order. NA results never select a row:
// a comparison touching NA is NA, and NA is excluded, not raised.
func Selection(x *Expr, env Env) ([]int, error) {
	res, err := Eval(x, env)
	if err != nil {
		return nil, err
	}
	if res.Col.Type() != table.ColumnTypeBool {
		return nil, table.NewTypeError("selector predicate must be boolean")
	}

	selected := make([]int, 0, len(env.Rows))
	for i, row := range env.Rows {
		j := res.at(i)
		if res.Col.IsNA(j) {
			continue
		}
		if res.Col.Value(j).(bool) {
			selected = append(selected, row)
		}
	}
	return selected, nil
}

func (x *OrExpr) eval(env Env) (Result, error) {
	left, err := x.Left.eval(env)
	if err != nil {
		return Result{}, err
	}
	for _, rhs := range x.Right {
		right, err := rhs.eval(env)
		if err != nil {
			return Result{}, err
		}
		left, err = logical("||", left, right)
		if err != nil {
			return Result{}, err
		}
	}
	return left, nil
}

func (x *AndExpr) eval(env Env) (Result, error) {
	left, err := x.Left.eval(env)
	if err != nil {
		return Result{}, err
	}
	for _, rhs := range x.Right {
		right, err := rhs.eval(env)
		if err != nil {
			return Result{}, err
		}
		left, err = logical("&&", left, right)
		if err != nil {
			return Result{}, err
		}
	}
	return left, nil
}

func (x *CmpExpr) eval(env Env) (Result, error) {
	left, err := x.Left.eval(env)
	if err != nil {
		return Result{}, err
	}
	if x.Op == "" {
		return left, nil
	}
	right, err := x.Right.eval(env)
	if err != nil {
		return Result{}, err
	}
	return compare(x.Op, left, right)
}

func (x *AddExpr) eval(env Env) (Result, error) {
	left, err := x.Left.eval(env)
	if err != nil {
		return Result{}, err
	}
	for _, tail := range x.Rest {
		right, err := tail.Term.eval(env)
		if err != nil {
			return Result{}, err
		}
		left, err = arith(tail.Op, left, right)
		if err != nil {
			return Result{}, err
		}
	}
	return left, nil
}

func (x *MulExpr) eval(env Env) (Result, error) {
	left, err := x.Left.eval(env)
	if err != nil {
		return Result{}, err
	}
	for _, tail := range x.Rest {
		right, err := tail.Term.eval(env)
		if err != nil {
			return Result{}, err
		}
		left, err = arith(tail.Op, left, right)
		if err != nil {
			return Result{}, err
		}
	}
	return left, nil
}

func (x *Unary) eval(env Env) (Result, error) {
	res, err := x.Atom.eval(env)
	if err != nil {
		return Result{}, err
	}
	switch x.Op {
	case "":
		return res, nil
	case "-":
		return negate(res)
	case "!":
		return not(res)
	}
	return Result{}, table.NewTypeError(fmt.Sprintf("unsupported unary operator %q", x.Op))
}

func (x *Atom) eval(env Env) (Result, error) {
	switch {
	case x.Float != nil:
		return Result{Col: table.Floats(*x.Float), Scalar: true}, nil
	case x.Int != nil:
		return Result{Col: table.Ints(*x.Int), Scalar: true}, nil
	case x.Str != nil:
		return Result{Col: table.Strings(*x.Str), Scalar: true}, nil
	case x.Bool != nil:
		return Result{Col: table.Bools(*x.Bool == "true"), Scalar: true}, nil
	case x.NA:
		return Result{Col: table.IntsNA([]int64{0}, []bool{true}), Scalar: true}, nil
	case x.Null:
		return Result{}, table.NewTypeError("null is only valid as an assignment drop marker")
	case x.Call != nil:
		return x.Call.eval(env)
	case x.Ident != nil:
		return evalIdent(*x.Ident, env)
	case x.Sub != nil:
		return Eval(x.Sub, env)
	}
	return Result{}, table.NewTypeError("empty expression")
}

func evalIdent(name string, env Env) (Result, error) {
	if name == ".N" {
		return Result{Col: table.Ints(int64(len(env.Rows))), Scalar: true}, nil
	}
	c, err := env.Store.Get(name)
	if err != nil {
		return Result{}, err
	}
	return Result{Col: c.Take(env.Rows)}, nil
}

func (x *Call) eval(env Env) (Result, error) {
	if len(x.Args) != 1 {
		return Result{}, table.NewTypeError(fmt.Sprintf("%s expects exactly one argument", x.Func))
	}
	arg, err := Eval(x.Args[0], env)
	if err != nil {
		return Result{}, err
	}

	switch x.Func {
	case "sum":
		return aggSum(arg)
	case "mean":
		return aggMean(arg)
	case "min":
		return aggExtreme(arg, true)
	case "max":
		return aggExtreme(arg, false)
	case "count":
		return aggCount(arg), nil
	case "abs":
		return absElem(arg)
	}
	return Result{}, table.NewTypeError(fmt.Sprintf("unknown function %q", x.Func))
}
