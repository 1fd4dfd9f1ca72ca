// Copyright 2025 The Gradix Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package expr provides the public API for the forward-mode (symbolic)
// differentiation engine.
//
// An expression is an immutable tree built from a closed set of scalar
// primitives. Evaluate and Differentiate are pure functions of the point x
// and report domain violations (non-positive log argument, zero divisor)
// as errors instead of propagating NaN/Inf.
//
// Example:
//
//	// f(x) = x^2 * 3
//	f := expr.Product(expr.Power(2), expr.Constant(3))
//	v, _ := f.Evaluate(2)      // 12
//	d, _ := f.Differentiate(2) // 12
package expr

import (
	"github.com/gradix-ml/gradix/internal/expr"
)

// Expr is an immutable scalar expression tree over a single variable x.
type Expr = expr.Expr

// Constant returns the constant function f(x) = c.
func Constant(c float64) *Expr {
	return expr.Constant(c)
}

// Power returns the power function f(x) = x^n.
func Power(n float64) *Expr {
	return expr.Power(n)
}

// Log returns the natural logarithm f(x) = ln(u(x)).
func Log(u *Expr) *Expr {
	return expr.Log(u)
}

// Add returns f(x) = l(x) + r(x).
func Add(l, r *Expr) *Expr {
	return expr.Add(l, r)
}

// Subtract returns f(x) = l(x) - r(x).
func Subtract(l, r *Expr) *Expr {
	return expr.Subtract(l, r)
}

// Product returns f(x) = l(x) * r(x).
func Product(l, r *Expr) *Expr {
	return expr.Product(l, r)
}

// Divide returns f(x) = num(x) / den(x).
func Divide(num, den *Expr) *Expr {
	return expr.Divide(num, den)
}
