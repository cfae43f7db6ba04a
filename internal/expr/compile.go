// Package expr compiles position formulas into pure numeric functions.
//
// A formula is parsed with go/parser and lowered into a closed tree that
// only knows numbers, the parameters t_1 … t_N, the four arithmetic
// operators, a fixed set of real math functions and the constants PI and
// E. Nothing else in the program is reachable from a formula.
package expr

import (
	"go/ast"
	"go/parser"
	"go/scanner"
	"go/token"
	"math"
	"strconv"
	"strings"
)

// Func evaluates a compiled formula at a parameter vector.
type Func func(params []float64) (float64, error)

// Expr is a compiled formula of fixed arity.
type Expr struct {
	src   string
	arity int
	root  node
}

// Compile parses formula and binds it to arity parameters.
func Compile(formula string, arity int) (*Expr, error) {
	if arity < 0 {
		return nil, &CompileError{Formula: formula, Pos: -1, Reason: "negative arity"}
	}
	if strings.TrimSpace(formula) == "" {
		return nil, &CompileError{Formula: formula, Pos: -1, Reason: "empty formula"}
	}

	fset := token.NewFileSet()
	tree, err := parser.ParseExprFrom(fset, "", formula, 0)
	if err != nil {
		ce := &CompileError{Formula: formula, Pos: -1, Reason: err.Error()}
		if list, ok := err.(scanner.ErrorList); ok && len(list) > 0 {
			ce.Pos = list[0].Pos.Offset
			ce.Reason = list[0].Msg
		}
		return nil, ce
	}

	l := lowerer{src: formula, fset: fset, arity: arity}
	root, err := l.lower(tree)
	if err != nil {
		return nil, err
	}
	return &Expr{src: formula, arity: arity, root: root}, nil
}

// MustCompile is like Compile but panics on error. Only for formulas
// that are part of the program itself.
func MustCompile(formula string, arity int) *Expr {
	e, err := Compile(formula, arity)
	if err != nil {
		panic(err)
	}
	return e
}

// Value compiles a zero-parameter formula and evaluates it.
func Value(formula string) (float64, error) {
	e, err := Compile(formula, 0)
	if err != nil {
		return 0, err
	}
	return e.Eval(nil)
}

// Eval evaluates the formula. len(params) must equal the compiled arity.
func (e *Expr) Eval(params []float64) (float64, error) {
	if len(params) != e.arity {
		return 0, &ArityError{Want: e.arity, Got: len(params)}
	}
	return e.root.eval(params), nil
}

// Func returns Eval as a Func value.
func (e *Expr) Func() Func { return e.Eval }

// Arity returns the number of parameters the formula was compiled with.
func (e *Expr) Arity() int { return e.arity }

// Const reports the folded value of a formula that does not depend on
// any parameter.
func (e *Expr) Const() (float64, bool) {
	n, ok := e.root.(num)
	return float64(n), ok
}

func (e *Expr) String() string { return e.src }

type fn struct {
	args int
	f1   func(float64) float64
	f2   func(float64, float64) float64
}

var functions = map[string]fn{
	"sin":   {args: 1, f1: math.Sin},
	"cos":   {args: 1, f1: math.Cos},
	"tan":   {args: 1, f1: math.Tan},
	"asin":  {args: 1, f1: math.Asin},
	"acos":  {args: 1, f1: math.Acos},
	"atan":  {args: 1, f1: math.Atan},
	"sqrt":  {args: 1, f1: math.Sqrt},
	"cbrt":  {args: 1, f1: math.Cbrt},
	"exp":   {args: 1, f1: math.Exp},
	"log":   {args: 1, f1: math.Log},
	"abs":   {args: 1, f1: math.Abs},
	"pow":   {args: 2, f2: math.Pow},
	"atan2": {args: 2, f2: math.Atan2},
}

var constants = map[string]float64{
	"PI": math.Pi,
	"pi": math.Pi,
	"E":  math.E,
}

type lowerer struct {
	src   string
	fset  *token.FileSet
	arity int
}

func (l *lowerer) fail(n ast.Node, reason string) error {
	pos := -1
	if n != nil && n.Pos().IsValid() {
		pos = l.fset.Position(n.Pos()).Offset
	}
	return &CompileError{Formula: l.src, Pos: pos, Reason: reason}
}

func (l *lowerer) lower(e ast.Expr) (node, error) {
	switch v := e.(type) {
	case *ast.BasicLit:
		return l.lowerLit(v)
	case *ast.Ident:
		return l.lowerIdent(v)
	case *ast.ParenExpr:
		return l.lower(v.X)
	case *ast.UnaryExpr:
		return l.lowerUnary(v)
	case *ast.BinaryExpr:
		return l.lowerBinary(v)
	case *ast.CallExpr:
		return l.lowerCall(v)
	default:
		return nil, l.fail(e, "unsupported expression")
	}
}

func (l *lowerer) lowerLit(lit *ast.BasicLit) (node, error) {
	if lit.Kind != token.INT && lit.Kind != token.FLOAT {
		return nil, l.fail(lit, "unsupported literal "+lit.Value)
	}
	v, err := strconv.ParseFloat(lit.Value, 64)
	if err != nil {
		return nil, l.fail(lit, "invalid number "+lit.Value)
	}
	return num(v), nil
}

func (l *lowerer) lowerIdent(id *ast.Ident) (node, error) {
	if c, ok := constants[id.Name]; ok {
		return num(c), nil
	}
	if rest, ok := strings.CutPrefix(id.Name, "t_"); ok {
		// One spelling per parameter: no sign, no leading zeros.
		if rest == "" || rest[0] < '1' || rest[0] > '9' {
			return nil, l.fail(id, "invalid parameter name "+id.Name)
		}
		k, err := strconv.Atoi(rest)
		if err != nil {
			return nil, l.fail(id, "invalid parameter name "+id.Name)
		}
		if k > l.arity {
			return nil, l.fail(id, "parameter "+id.Name+" out of range for arity "+strconv.Itoa(l.arity))
		}
		return param(k - 1), nil
	}
	return nil, l.fail(id, "unknown identifier "+id.Name)
}

func (l *lowerer) lowerUnary(u *ast.UnaryExpr) (node, error) {
	x, err := l.lower(u.X)
	if err != nil {
		return nil, err
	}
	switch u.Op {
	case token.ADD:
		return x, nil
	case token.SUB:
		if c, ok := x.(num); ok {
			return -c, nil
		}
		return neg{x}, nil
	}
	return nil, l.fail(u, "unsupported operator "+u.Op.String())
}

func (l *lowerer) lowerBinary(b *ast.BinaryExpr) (node, error) {
	switch b.Op {
	case token.ADD, token.SUB, token.MUL, token.QUO:
	default:
		return nil, l.fail(b, "unsupported operator "+b.Op.String())
	}
	x, err := l.lower(b.X)
	if err != nil {
		return nil, err
	}
	y, err := l.lower(b.Y)
	if err != nil {
		return nil, err
	}
	n := binary{op: b.Op, x: x, y: y}
	if _, ok := x.(num); ok {
		if _, ok := y.(num); ok {
			return num(n.eval(nil)), nil
		}
	}
	return n, nil
}

func (l *lowerer) lowerCall(c *ast.CallExpr) (node, error) {
	id, ok := c.Fun.(*ast.Ident)
	if !ok {
		return nil, l.fail(c.Fun, "unsupported call target")
	}
	f, ok := functions[id.Name]
	if !ok {
		return nil, l.fail(id, "unknown function "+id.Name)
	}
	if c.Ellipsis.IsValid() {
		return nil, l.fail(c, "variadic call")
	}
	if len(c.Args) != f.args {
		return nil, l.fail(c, id.Name+" takes "+strconv.Itoa(f.args)+" argument(s)")
	}

	args := make([]node, len(c.Args))
	folded := true
	for i, a := range c.Args {
		n, err := l.lower(a)
		if err != nil {
			return nil, err
		}
		if _, ok := n.(num); !ok {
			folded = false
		}
		args[i] = n
	}

	var n node
	if f.args == 1 {
		n = call1{f: f.f1, x: args[0]}
	} else {
		n = call2{f: f.f2, x: args[0], y: args[1]}
	}
	if folded {
		return num(n.eval(nil)), nil
	}
	return n, nil
}
