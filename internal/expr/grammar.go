// Package expr parses and evaluates the query expression language: selector
// predicates, computed column expressions, projection lists, and assignment
// lists. Column names are bound at evaluation time to the group-restricted
// slice of that column, never looked up from any ambient scope.
package expr

import (
	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// exprLexer tokenizes the expression language.
// Note: Ident allows a leading dot so the row-count symbol .N lexes as a
// single identifier token.
var exprLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Float", Pattern: `\d+\.\d+`},
	{Name: "Int", Pattern: `\d+`},
	{Name: "String", Pattern: `"(\\"|[^"])*"`},
	{Name: "Ident", Pattern: `\.?[A-Za-z_][A-Za-z0-9_]*`},
	{Name: "Op", Pattern: `:=|==|!=|<=|>=|&&|\|\||[-+*/%<>!=(),]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

// Expr is the grammar root: || over && over comparison over arithmetic.
type Expr struct {
	Or *OrExpr `parser:"@@"`
}

type OrExpr struct {
	Left  *AndExpr   `parser:"@@"`
	Right []*AndExpr `parser:"( \"||\" @@ )*"`
}

type AndExpr struct {
	Left  *CmpExpr   `parser:"@@"`
	Right []*CmpExpr `parser:"( \"&&\" @@ )*"`
}

type CmpExpr struct {
	Left  *AddExpr `parser:"@@"`
	Op    string   `parser:"( @(\"==\" | \"!=\" | \"<=\" | \">=\" | \"<\" | \">\")"`
	Right *AddExpr `parser:"  @@ )?"`
}

type AddExpr struct {
	Left *MulExpr   `parser:"@@"`
	Rest []*AddTail `parser:"@@*"`
}

type AddTail struct {
	Op   string   `parser:"@(\"+\" | \"-\")"`
	Term *MulExpr `parser:"@@"`
}

type MulExpr struct {
	Left *Unary     `parser:"@@"`
	Rest []*MulTail `parser:"@@*"`
}

type MulTail struct {
	Op   string `parser:"@(\"*\" | \"/\" | \"%\")"`
	Term *Unary `parser:"@@"`
}

type Unary struct {
	Op   string `parser:"@(\"-\" | \"!\")?"`
	Atom *Atom  `parser:"@@"`
}

type Atom struct {
	Float *float64 `parser:"  @Float"`
	Int   *int64   `parser:"| @Int"`
	Str   *string  `parser:"| @String"`
	Bool  *string  `parser:"| @(\"true\" | \"false\")"`
	NA    bool     `parser:"| @\"na\""`
	Null  bool     `parser:"| @\"null\""`
	Call  *Call    `parser:"| @@"`
	Ident *string  `parser:"| @Ident"`
	Sub   *Expr    `parser:"| \"(\" @@ \")\""`
}

type Call struct {
	Func string  `parser:"@Ident \"(\""`
	Args []*Expr `parser:"( @@ ( \",\" @@ )* )? \")\""`
}

// SelectList is the column-expression clause: a comma list of optionally
// aliased expressions, e.g. `grp, total = sum(val)`.
type SelectList struct {
	Items []*SelectItem `parser:"@@ ( \",\" @@ )*"`
}

type SelectItem struct {
	Alias string `parser:"( @Ident \"=\" )?"`
	Expr  *Expr  `parser:"@@"`
}

// AssignList is the assignment-mode clause: `val := 0, tag := grp`.
// A bare null value is the drop marker for the target column.
type AssignList struct {
	Items []*Assign `parser:"@@ ( \",\" @@ )*"`
}

type Assign struct {
	Target string `parser:"@Ident \":=\""`
	Value  *Expr  `parser:"@@"`
}

var (
	exprParser = participle.MustBuild[Expr](
		participle.Lexer(exprLexer),
		participle.Elide("Whitespace"),
		participle.Unquote("String"),
		participle.UseLookahead(2),
	)

	selectParser = participle.MustBuild[SelectList](
		participle.Lexer(exprLexer),
		participle.Elide("Whitespace"),
		participle.Unquote("String"),
		participle.UseLookahead(2),
	)

	assignParser = participle.MustBuild[AssignList](
		participle.Lexer(exprLexer),
		participle.Elide("Whitespace"),
		participle.Unquote("String"),
		participle.UseLookahead(2),
	)
)

// ParseExpr parses a single expression (selector predicate or computed value).
func ParseExpr(src string) (*Expr, error) {
	return exprParser.ParseString("", src)
}

// ParseSelect parses a column-expression clause.
func ParseSelect(src string) (*SelectList, error) {
	return selectParser.ParseString("", src)
}

// ParseAssigns parses an assignment-mode clause.
func ParseAssigns(src string) (*AssignList, error) {
	return assignParser.ParseString("", src)
}

// BareIdent returns the column name when the expression is a plain column
// reference with no operators, and "" otherwise. A select list of only bare
// idents is a verbatim projection.
func (x *Expr) BareIdent() string {
	if x == nil || x.Or == nil || len(x.Or.Right) > 0 {
		return ""
	}
	and := x.Or.Left
	if and == nil || len(and.Right) > 0 {
		return ""
	}
	cmp := and.Left
	if cmp == nil || cmp.Op != "" {
		return ""
	}
	add := cmp.Left
	if add == nil || len(add.Rest) > 0 {
		return ""
	}
	mul := add.Left
	if mul == nil || len(mul.Rest) > 0 {
		return ""
	}
	u := mul.Left
	if u == nil || u.Op != "" || u.Atom == nil || u.Atom.Ident == nil {
		return ""
	}
	return *u.Atom.Ident
}

// IsNullLiteral reports whether the expression is the bare drop marker.
func (x *Expr) IsNullLiteral() bool {
	if x == nil || x.Or == nil || len(x.Or.Right) > 0 {
		return false
	}
	and := x.Or.Left
	if and == nil || len(and.Right) > 0 {
		return false
	}
	cmp := and.Left
	if cmp == nil || cmp.Op != "" {
		return false
	}
	add := cmp.Left
	if add == nil || len(add.Rest) > 0 {
		return false
	}
	mul := add.Left
	if mul == nil || len(mul.Rest) > 0 {
		return false
	}
	u := mul.Left
	return u != nil && u.Op == "" && u.Atom != nil && u.Atom.Null
}
