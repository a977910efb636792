// Package bignum provides arbitrary-precision transcendental functions and
// polynomial approximation used for evaluating CKKS bootstrapping and
// circuit-evaluator coefficients at construction time, where double
// precision is insufficient. Exp/Log/Pow delegate to ALTree/bigfloat; the
// remaining trigonometric/hyperbolic functions are derived from that small
// transcendental basis.
package bignum

import (
	"math/big"

	"github.com/ALTree/bigfloat"
)

// NewFloat returns x rounded to prec bits of precision.
func NewFloat(x float64, prec uint) *big.Float {
	if prec == 0 {
		prec = 53
	}
	return new(big.Float).SetPrec(prec).SetFloat64(x)
}

// Exp returns e^x.
func Exp(x *big.Float) *big.Float { return bigfloat.Exp(x) }

// Log returns the natural logarithm of x.
func Log(x *big.Float) *big.Float { return bigfloat.Log(x) }

// Pow returns x^y.
func Pow(x, y *big.Float) *big.Float { return bigfloat.Pow(x, y) }

// Sin returns sin(x) = (e^{ix} - e^{-ix}) / 2i, computed on the real axis
// via the complex-exponential identity expanded into cos/sin Taylor pairs:
// concretely, via argument reduction modulo 2*pi followed by a Taylor
// series, since big.Float has no complex counterpart.
func Sin(x *big.Float) *big.Float {
	prec := x.Prec()
	r := reduceAngle(x)
	return taylorSin(r, prec)
}

// Cos returns cos(x), by the same angle-reduced Taylor approach as Sin.
func Cos(x *big.Float) *big.Float {
	prec := x.Prec()
	r := reduceAngle(x)
	return taylorCos(r, prec)
}

// SinH returns sinh(x) = (e^x - e^-x)/2.
func SinH(x *big.Float) *big.Float {
	prec := x.Prec()
	ex := Exp(x)
	enx := Exp(new(big.Float).SetPrec(prec).Neg(x))
	num := new(big.Float).SetPrec(prec).Sub(ex, enx)
	return num.Quo(num, NewFloat(2, prec))
}

// TanH returns tanh(x) = sinh(x)/cosh(x).
func TanH(x *big.Float) *big.Float {
	prec := x.Prec()
	ex := Exp(x)
	enx := Exp(new(big.Float).SetPrec(prec).Neg(x))
	num := new(big.Float).SetPrec(prec).Sub(ex, enx)
	den := new(big.Float).SetPrec(prec).Add(ex, enx)
	return num.Quo(num, den)
}

var twoPi = func() *big.Float {
	pi := piConstant(200)
	return new(big.Float).SetPrec(200).Mul(pi, big.NewFloat(2))
}()

// piConstant computes pi to prec bits via the Chudnovsky-free Machin-like
// arctan series 16*atan(1/5) - 4*atan(1/239), summed with big.Float.
func piConstant(prec uint) *big.Float {
	atan := func(invX int64, terms int) *big.Float {
		x := new(big.Float).SetPrec(prec).Quo(big.NewFloat(1), big.NewFloat(float64(invX)))
		xx := new(big.Float).SetPrec(prec).Mul(x, x)
		term := new(big.Float).SetPrec(prec).Set(x)
		sum := new(big.Float).SetPrec(prec).Set(x)
		pow := new(big.Float).SetPrec(prec).Set(x)
		for n := 1; n < terms; n++ {
			pow.Mul(pow, xx)
			term.Quo(pow, big.NewFloat(float64(2*n+1)))
			if n%2 == 0 {
				sum.Add(sum, term)
			} else {
				sum.Sub(sum, term)
			}
		}
		return sum
	}
	a := atan(5, int(prec/2+8))
	b := atan(239, int(prec/2+8))
	pi := new(big.Float).SetPrec(prec).Mul(a, big.NewFloat(16))
	bb := new(big.Float).SetPrec(prec).Mul(b, big.NewFloat(4))
	return pi.Sub(pi, bb)
}

// reduceAngle reduces x into [-pi, pi] by subtracting the nearest multiple
// of 2*pi.
func reduceAngle(x *big.Float) *big.Float {
	prec := x.Prec()
	tp := new(big.Float).SetPrec(prec).Set(twoPi)
	q := new(big.Float).SetPrec(prec).Quo(x, tp)
	if q.Sign() >= 0 {
		q.Add(q, big.NewFloat(0.5))
	} else {
		q.Sub(q, big.NewFloat(0.5))
	}
	qi, _ := q.Int(nil)
	k := new(big.Float).SetPrec(prec).SetInt(qi)
	r := new(big.Float).SetPrec(prec).Sub(x, new(big.Float).SetPrec(prec).Mul(k, tp))
	return r
}

// taylorSin evaluates sin(x) for |x| <= pi via its Taylor series.
func taylorSin(x *big.Float, prec uint) *big.Float {
	xx := new(big.Float).SetPrec(prec).Mul(x, x)
	term := new(big.Float).SetPrec(prec).Set(x)
	sum := new(big.Float).SetPrec(prec).Set(x)
	n := int64(1)
	for i := 0; i < 60; i++ {
		term.Mul(term, xx)
		term.Quo(term, big.NewFloat(float64(-(n + 1) * (n + 2))))
		sum.Add(sum, term)
		n += 2
	}
	return sum
}

// taylorCos evaluates cos(x) for |x| <= pi via its Taylor series.
func taylorCos(x *big.Float, prec uint) *big.Float {
	xx := new(big.Float).SetPrec(prec).Mul(x, x)
	term := big.NewFloat(1).SetPrec(prec)
	sum := big.NewFloat(1).SetPrec(prec)
	n := int64(0)
	for i := 0; i < 60; i++ {
		term.Mul(term, xx)
		term.Quo(term, big.NewFloat(float64(-(n + 1) * (n + 2))))
		sum.Add(sum, term)
		n += 2
	}
	return sum
}
