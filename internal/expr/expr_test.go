package expr_test

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/num/dual"

	"github.com/gradix-ml/gradix/internal/expr"
	"github.com/gradix-ml/gradix/internal/scalar"
)

// worked builds f(x) = (5 + x^3) - ln((x^2-5)(4-3x)) / (x-4).
func worked() *expr.Expr {
	inner := expr.Product(
		expr.Subtract(expr.Power(2), expr.Constant(5)),
		expr.Subtract(expr.Constant(4), expr.Product(expr.Constant(3), expr.Power(1))),
	)
	return expr.Subtract(
		expr.Add(expr.Constant(5), expr.Power(3)),
		expr.Divide(expr.Log(inner), expr.Subtract(expr.Power(1), expr.Constant(4))),
	)
}

func TestConstant(t *testing.T) {
	c := expr.Constant(3.5)
	for _, x := range []float64{-2, 0, 1.5, 100} {
		v, err := c.Evaluate(x)
		require.NoError(t, err)
		assert.Equal(t, 3.5, v)

		d, err := c.Differentiate(x)
		require.NoError(t, err)
		assert.Equal(t, 0.0, d)
	}
}

func TestPower(t *testing.T) {
	tests := []struct {
		name    string
		n, x    float64
		val, de float64
	}{
		{"square", 2, 3, 9, 6},
		{"cube", 3, 2, 8, 12},
		{"identity", 1, 7, 7, 1},
		{"sqrt", 0.5, 4, 2, 0.25},
		{"negative exponent", -1, 2, 0.5, -0.25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := expr.Power(tt.n)
			v, err := p.Evaluate(tt.x)
			require.NoError(t, err)
			assert.InDelta(t, tt.val, v, 1e-12)

			d, err := p.Differentiate(tt.x)
			require.NoError(t, err)
			assert.InDelta(t, tt.de, d, 1e-12)
		})
	}
}

// Power at x=0 with n<1 is not special-cased: the derivative follows IEEE
// pow semantics and comes back infinite.
func TestPower_ZeroBaseFractionalExponent(t *testing.T) {
	p := expr.Power(0.5)
	d, err := p.Differentiate(0)
	require.NoError(t, err)
	assert.True(t, math.IsInf(d, 1), "d/dx x^0.5 at 0 = %g, want +Inf", d)
}

func TestLinearity(t *testing.T) {
	a := expr.Product(expr.Power(2), expr.Constant(2)) // 2x^2
	b := expr.Log(expr.Power(1))                       // ln x

	sum := expr.Add(a, b)
	diff := expr.Subtract(a, b)

	for _, x := range []float64{0.5, 1, 2, 3.25} {
		da, err := a.Differentiate(x)
		require.NoError(t, err)
		db, err := b.Differentiate(x)
		require.NoError(t, err)

		ds, err := sum.Differentiate(x)
		require.NoError(t, err)
		assert.InDelta(t, da+db, ds, 1e-12, "x=%g", x)

		dd, err := diff.Differentiate(x)
		require.NoError(t, err)
		assert.InDelta(t, da-db, dd, 1e-12, "x=%g", x)
	}
}

func TestProductRule(t *testing.T) {
	// x^2 * 3 at x=2: value 12, derivative (2*2)*3 + 4*0 = 12.
	f := expr.Product(expr.Power(2), expr.Constant(3))

	v, err := f.Evaluate(2)
	require.NoError(t, err)
	assert.Equal(t, 12.0, v)

	d, err := f.Differentiate(2)
	require.NoError(t, err)
	assert.Equal(t, 12.0, d)
}

func TestQuotientRule(t *testing.T) {
	// x^2 / (x+1) at x=1: value 1/2, derivative (2x(x+1) - x^2)/(x+1)^2 = 3/4.
	f := expr.Divide(expr.Power(2), expr.Add(expr.Power(1), expr.Constant(1)))

	v, err := f.Evaluate(1)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, v, 1e-12)

	d, err := f.Differentiate(1)
	require.NoError(t, err)
	assert.InDelta(t, 0.75, d, 1e-12)
}

func TestChainRuleThroughLog(t *testing.T) {
	// ln(x^2) derivative is 2x/x^2 = 2/x.
	f := expr.Log(expr.Power(2))
	for _, x := range []float64{0.5, 1, 4} {
		d, err := f.Differentiate(x)
		require.NoError(t, err)
		assert.InDelta(t, 2/x, d, 1e-12, "x=%g", x)
	}
}

func TestDomainError_LogNonPositive(t *testing.T) {
	f := expr.Log(expr.Constant(-1))

	for _, x := range []float64{-1, 0, 1.5, 42} {
		_, err := f.Evaluate(x)
		require.Error(t, err, "x=%g", x)

		var de *scalar.DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, scalar.OpLog, de.Op)
		assert.Equal(t, -1.0, de.Value)

		_, err = f.Differentiate(x)
		require.Error(t, err, "x=%g", x)
		assert.True(t, scalar.IsDomainError(err))
	}
}

func TestDomainError_DivisionByZero(t *testing.T) {
	// 1 / (x - 4) is undefined at x=4.
	f := expr.Divide(expr.Constant(1), expr.Subtract(expr.Power(1), expr.Constant(4)))

	v, err := f.Evaluate(3)
	require.NoError(t, err)
	assert.InDelta(t, -1, v, 1e-12)

	_, err = f.Evaluate(4)
	var de *scalar.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, scalar.OpDivision, de.Op)
	assert.Equal(t, 0.0, de.Value)

	_, err = f.Differentiate(4)
	require.Error(t, err)
	assert.True(t, scalar.IsDomainError(err))
}

// The error from a failed subtree aborts the whole evaluation, not just the
// offending node.
func TestDomainError_Propagates(t *testing.T) {
	f := expr.Add(expr.Constant(1), expr.Product(expr.Power(2), expr.Log(expr.Constant(0))))
	_, err := f.Evaluate(2)
	require.Error(t, err)
	assert.True(t, scalar.IsDomainError(err))
}

func TestWorkedExample(t *testing.T) {
	f := worked()

	v, err := f.Evaluate(1.5)
	require.NoError(t, err)
	assert.InDelta(t, 8.502381492447414, v, 1e-9)

	d, err := f.Differentiate(1.5)
	require.NoError(t, err)
	assert.InDelta(t, 8.76458896061533, d, 1e-9)
}

// Expressions carry no state: repeated calls at shuffled points must agree
// with fresh calls.
func TestPurity_RepeatedEvaluation(t *testing.T) {
	f := worked()
	// Points inside (4/3, sqrt 5), where the log argument stays positive.
	points := []float64{1.5, 1.4, 1.5, 1.8, 1.5}

	want := make([]float64, len(points))
	for i, x := range points {
		d, err := f.Differentiate(x)
		require.NoError(t, err)
		want[i] = d
	}
	for i, x := range points {
		d, err := f.Differentiate(x)
		require.NoError(t, err)
		assert.Equal(t, want[i], d, "call %d at x=%g", i, x)

		v1, err := f.Evaluate(x)
		require.NoError(t, err)
		v2, err := f.Evaluate(x)
		require.NoError(t, err)
		assert.Equal(t, v1, v2)
	}
}

// workedDual mirrors the worked function on gonum dual numbers, giving an
// independent forward-mode oracle.
func workedDual(x dual.Number) dual.Number {
	five := dual.Number{Real: 5}
	four := dual.Number{Real: 4}
	three := dual.Number{Real: 3}

	inner := dual.Mul(
		dual.Sub(dual.Mul(x, x), five),
		dual.Sub(four, dual.Mul(three, x)),
	)
	return dual.Sub(
		dual.Add(five, dual.PowReal(x, 3)),
		dual.Mul(dual.Log(inner), dual.Inv(dual.Sub(x, four))),
	)
}

func TestAgainstGonumDual(t *testing.T) {
	f := worked()

	for _, x := range []float64{1.4, 1.5, 1.7, 1.9, 2.1} {
		want := workedDual(dual.Number{Real: x, Emag: 1})

		v, err := f.Evaluate(x)
		require.NoError(t, err, "x=%g", x)
		assert.InDelta(t, want.Real, v, 1e-9, "value at x=%g", x)

		d, err := f.Differentiate(x)
		require.NoError(t, err, "x=%g", x)
		assert.InDelta(t, want.Emag, d, 1e-9, "derivative at x=%g", x)
	}
}

func TestString(t *testing.T) {
	f := expr.Divide(
		expr.Log(expr.Subtract(expr.Power(2), expr.Constant(5))),
		expr.Add(expr.Power(1), expr.Constant(4)),
	)
	assert.Equal(t, "(ln((x^2 - 5)) / (x + 4))", f.String())

	var errTarget *scalar.DomainError
	_, err := f.Evaluate(1)
	require.True(t, errors.As(err, &errTarget))
}
