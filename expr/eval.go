package expr

import (
	"fmt"
	"math"
	"sort"
	"strconv"
)

// Expr is a compiled expression.
type Expr struct {
	src  string
	root node
	vars []string
}

// String returns the source the expression was parsed from.
func (e *Expr) String() string { return e.src }

// Variables returns the free variable names, sorted.
func (e *Expr) Variables() []string {
	return append([]string(nil), e.vars...)
}

// Eval evaluates the expression. Every free variable must be bound in vars,
// and every intermediate value must be finite.
func (e *Expr) Eval(vars map[string]float64) (float64, error) {
	return e.root.eval(vars)
}

// Evaluate parses and evaluates src in one step.
func Evaluate(src string, vars map[string]float64) (float64, error) {
	e, err := Parse(src)
	if err != nil {
		return 0, err
	}
	return e.Eval(vars)
}

type node interface {
	eval(vars map[string]float64) (float64, error)
}

type numberNode float64

func (n numberNode) eval(map[string]float64) (float64, error) { return float64(n), nil }

type varNode string

func (n varNode) eval(vars map[string]float64) (float64, error) {
	v, ok := vars[string(n)]
	if !ok {
		return 0, fmt.Errorf("%w %q", ErrUnknownIdentifier, string(n))
	}
	return checked(string(n), v)
}

type negNode struct{ x node }

func (n *negNode) eval(vars map[string]float64) (float64, error) {
	v, err := n.x.eval(vars)
	return -v, err
}

type binaryNode struct {
	op          TokenType
	left, right node
}

func (n *binaryNode) eval(vars map[string]float64) (float64, error) {
	l, err := n.left.eval(vars)
	if err != nil {
		return 0, err
	}
	r, err := n.right.eval(vars)
	if err != nil {
		return 0, err
	}
	var v float64
	switch n.op {
	case TOKEN_PLUS:
		v = l + r
	case TOKEN_MINUS:
		v = l - r
	case TOKEN_STAR:
		v = l * r
	case TOKEN_SLASH:
		v = l / r
	case TOKEN_PERCENT:
		v = math.Mod(l, r)
	case TOKEN_CARET:
		v = math.Pow(l, r)
	}
	return checked(n.op.String(), v)
}

type callNode struct {
	name string
	fn   function
	args []node
}

func (n *callNode) eval(vars map[string]float64) (float64, error) {
	args := make([]float64, len(n.args))
	for i, a := range n.args {
		v, err := a.eval(vars)
		if err != nil {
			return 0, err
		}
		args[i] = v
	}
	return checked(n.name, n.fn.call(args))
}

func checked(what string, v float64) (float64, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w from %s", ErrNonFinite, what)
	}
	return v, nil
}

var constants = map[string]float64{
	"pi": math.Pi,
	"e":  math.E,
}

type function struct {
	minArgs, maxArgs int // maxArgs < 0 means variadic
	call             func(args []float64) float64
}

func (f function) arity() string {
	switch {
	case f.maxArgs < 0:
		return "at least " + strconv.Itoa(f.minArgs) + " arguments"
	case f.minArgs == f.maxArgs && f.minArgs == 1:
		return "1 argument"
	case f.minArgs == f.maxArgs:
		return strconv.Itoa(f.minArgs) + " arguments"
	}
	return strconv.Itoa(f.minArgs) + " to " + strconv.Itoa(f.maxArgs) + " arguments"
}

func unary(fn func(float64) float64) function {
	return function{minArgs: 1, maxArgs: 1, call: func(a []float64) float64 { return fn(a[0]) }}
}

func binary(fn func(float64, float64) float64) function {
	return function{minArgs: 2, maxArgs: 2, call: func(a []float64) float64 { return fn(a[0], a[1]) }}
}

func fold(fn func(float64, float64) float64) function {
	return function{minArgs: 1, maxArgs: -1, call: func(a []float64) float64 {
		acc := a[0]
		for _, x := range a[1:] {
			acc = fn(acc, x)
		}
		return acc
	}}
}

// functions is the complete allow-list. Nothing else can be called.
var functions = map[string]function{
	"sin":   unary(math.Sin),
	"cos":   unary(math.Cos),
	"tan":   unary(math.Tan),
	"asin":  unary(math.Asin),
	"acos":  unary(math.Acos),
	"atan":  unary(math.Atan),
	"atan2": binary(math.Atan2),
	"sqrt":  unary(math.Sqrt),
	"abs":   unary(math.Abs),
	"exp":   unary(math.Exp),
	"ln":    unary(math.Log),
	"log":   unary(math.Log),
	"log10": unary(math.Log10),
	"pow":   binary(math.Pow),
	"min":   fold(math.Min),
	"max":   fold(math.Max),
	"floor": unary(math.Floor),
	"ceil":  unary(math.Ceil),
	"round": unary(math.Round),
	"hypot": binary(math.Hypot),
}

// Functions returns the names of the allowed functions.
func Functions() []string {
	names := make([]string, 0, len(functions))
	for name := range functions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
