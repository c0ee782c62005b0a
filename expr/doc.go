// Package expr evaluates restricted arithmetic expressions.
//
// The grammar covers numbers, variables, + - * / % ^, unary signs,
// parentheses and calls to a fixed allow-list of math functions. There is no
// assignment, no string type, no loops and no way to reach host code, so
// operator-supplied formulas can be evaluated without sandboxing:
//
//	e, err := expr.Parse("1000 * V / (pi * D)")
//	if err != nil {
//	    return err
//	}
//	rpm, err := e.Eval(map[string]float64{"V": 200, "D": 12})
//
// Source longer than MaxSourceLength or nested deeper than MaxDepth is
// rejected at parse time. Any NaN or ±Inf, including an intermediate one,
// is an evaluation error.
package expr
