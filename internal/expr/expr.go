// Package expr implements the forward-mode (symbolic) differentiation engine.
//
// An Expr is an immutable tree of scalar operations over a single variable x.
// Evaluation and differentiation are pure functions of the point x: the tree
// carries no scratch state and may be reused across points and goroutines.
//
// Internally both Evaluate and Differentiate run one bottom-up pass that
// propagates a (value, tangent) pair per node, so shared subexpressions such
// as the log argument in the quotient rule are computed exactly once per
// call instead of once per recursion.
package expr

import (
	"fmt"
	"math"

	"github.com/gradix-ml/gradix/internal/scalar"
)

type kind int

const (
	kindConstant kind = iota
	kindPower
	kindLog
	kindAdd
	kindSub
	kindMul
	kindDiv
)

// Expr is a node in an immutable scalar expression tree.
//
// The primitive set is closed: constants, powers of x, natural log, and the
// four arithmetic combinators. Composite constructors take ownership of
// their children; a subtree must not be mutated after construction.
type Expr struct {
	kind kind

	// c holds the constant value for kindConstant and the exponent for
	// kindPower. Unused otherwise.
	c float64

	// left is the only child for kindLog; binary kinds use both.
	left, right *Expr
}

// Constant returns the constant function f(x) = c.
func Constant(c float64) *Expr {
	return &Expr{kind: kindConstant, c: c}
}

// Power returns the power function f(x) = x^n.
func Power(n float64) *Expr {
	return &Expr{kind: kindPower, c: n}
}

// Log returns the natural logarithm f(x) = ln(u(x)).
func Log(u *Expr) *Expr {
	return &Expr{kind: kindLog, left: u}
}

// Add returns f(x) = l(x) + r(x).
func Add(l, r *Expr) *Expr {
	return &Expr{kind: kindAdd, left: l, right: r}
}

// Subtract returns f(x) = l(x) - r(x).
func Subtract(l, r *Expr) *Expr {
	return &Expr{kind: kindSub, left: l, right: r}
}

// Product returns f(x) = l(x) * r(x).
func Product(l, r *Expr) *Expr {
	return &Expr{kind: kindMul, left: l, right: r}
}

// Divide returns f(x) = num(x) / den(x).
func Divide(num, den *Expr) *Expr {
	return &Expr{kind: kindDiv, left: num, right: den}
}

// dual carries a subexpression's value together with its derivative with
// respect to x, both at the same point.
type dual struct {
	val float64
	tan float64
}

// eval computes the (value, tangent) pair at x in a single bottom-up pass.
//
// Derivative rules per kind:
//   - Constant: 0
//   - Power:    n * x^(n-1); x = 0 with n < 1 is not special-cased and
//     yields whatever math.Pow produces (Inf/NaN)
//   - Log:      u' / u, with u > 0 required
//   - Add/Sub:  linearity
//   - Mul:      product rule
//   - Div:      quotient rule, with a nonzero denominator required
func (e *Expr) eval(x float64) (dual, error) {
	switch e.kind {
	case kindConstant:
		return dual{val: e.c}, nil

	case kindPower:
		return dual{
			val: math.Pow(x, e.c),
			tan: e.c * math.Pow(x, e.c-1),
		}, nil

	case kindLog:
		u, err := e.left.eval(x)
		if err != nil {
			return dual{}, err
		}
		if err := scalar.CheckLog(u.val); err != nil {
			return dual{}, err
		}
		return dual{val: math.Log(u.val), tan: u.tan / u.val}, nil

	case kindAdd:
		l, r, err := e.evalChildren(x)
		if err != nil {
			return dual{}, err
		}
		return dual{val: l.val + r.val, tan: l.tan + r.tan}, nil

	case kindSub:
		l, r, err := e.evalChildren(x)
		if err != nil {
			return dual{}, err
		}
		return dual{val: l.val - r.val, tan: l.tan - r.tan}, nil

	case kindMul:
		l, r, err := e.evalChildren(x)
		if err != nil {
			return dual{}, err
		}
		return dual{
			val: l.val * r.val,
			tan: l.tan*r.val + l.val*r.tan,
		}, nil

	case kindDiv:
		num, den, err := e.evalChildren(x)
		if err != nil {
			return dual{}, err
		}
		if err := scalar.CheckDivision(den.val); err != nil {
			return dual{}, err
		}
		return dual{
			val: num.val / den.val,
			tan: (num.tan*den.val - num.val*den.tan) / (den.val * den.val),
		}, nil

	default:
		panic(fmt.Sprintf("expr: unknown node kind %d", e.kind))
	}
}

// evalChildren evaluates both children of a binary node.
func (e *Expr) evalChildren(x float64) (dual, dual, error) {
	l, err := e.left.eval(x)
	if err != nil {
		return dual{}, dual{}, err
	}
	r, err := e.right.eval(x)
	if err != nil {
		return dual{}, dual{}, err
	}
	return l, r, nil
}

// Evaluate computes f(x). It fails with a scalar.DomainError when a log
// argument is non-positive or a denominator is zero at x.
func (e *Expr) Evaluate(x float64) (float64, error) {
	d, err := e.eval(x)
	if err != nil {
		return 0, err
	}
	return d.val, nil
}

// Differentiate computes f'(x) by structural application of the calculus
// rules. The same domain preconditions as Evaluate apply.
func (e *Expr) Differentiate(x float64) (float64, error) {
	d, err := e.eval(x)
	if err != nil {
		return 0, err
	}
	return d.tan, nil
}

// String renders the expression in infix notation, fully parenthesized.
func (e *Expr) String() string {
	switch e.kind {
	case kindConstant:
		return fmt.Sprintf("%g", e.c)
	case kindPower:
		if e.c == 1 {
			return "x"
		}
		return fmt.Sprintf("x^%g", e.c)
	case kindLog:
		return fmt.Sprintf("ln(%s)", e.left)
	case kindAdd:
		return fmt.Sprintf("(%s + %s)", e.left, e.right)
	case kindSub:
		return fmt.Sprintf("(%s - %s)", e.left, e.right)
	case kindMul:
		return fmt.Sprintf("(%s * %s)", e.left, e.right)
	case kindDiv:
		return fmt.Sprintf("(%s / %s)", e.left, e.right)
	default:
		panic(fmt.Sprintf("expr: unknown node kind %d", e.kind))
	}
}
