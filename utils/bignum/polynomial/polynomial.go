// Package polynomial implements fixed-precision polynomial evaluation over
// a choice of bases (monomial or Chebyshev), the representation the
// approximation package's Remez fit returns and the circuits/*/polynomial
// evaluators consume.
package polynomial

import "math/big"

// Basis selects the polynomial basis a Polynomial's coefficients are
// expressed in.
type Basis int

const (
	// Monomial is the standard power basis 1, x, x^2, ...
	Monomial Basis = iota
	// Chebyshev is the first-kind Chebyshev basis T0, T1, T2, ...
	Chebyshev
)

// Polynomial is a fixed-precision polynomial, its coefficients ordered from
// the constant term up, expressed in Basis.
type Polynomial struct {
	Basis  Basis
	Coeffs []*big.Float
}

// New constructs a Polynomial from coeffs in the given basis.
func New(basis Basis, coeffs []*big.Float) Polynomial {
	return Polynomial{Basis: basis, Coeffs: coeffs}
}

// Degree returns the polynomial's degree (len(Coeffs)-1, or -1 if empty).
func (p Polynomial) Degree() int { return len(p.Coeffs) - 1 }

// Evaluate evaluates p at each of xs, returning one result per input.
func (p Polynomial) Evaluate(xs ...*big.Float) []*big.Float {
	out := make([]*big.Float, len(xs))
	for i, x := range xs {
		switch p.Basis {
		case Chebyshev:
			out[i] = p.evalChebyshev(x)
		default:
			out[i] = p.evalMonomial(x)
		}
	}
	return out
}

// evalMonomial uses Horner's method.
func (p Polynomial) evalMonomial(x *big.Float) *big.Float {
	prec := x.Prec()
	result := new(big.Float).SetPrec(prec)
	for i := len(p.Coeffs) - 1; i >= 0; i-- {
		result.Mul(result, x)
		result.Add(result, new(big.Float).SetPrec(prec).Set(p.Coeffs[i]))
	}
	return result
}

// evalChebyshev uses Clenshaw's recurrence for the first-kind basis:
// b_k = c_k + 2x*b_{k+1} - b_{k+2}, result = c_0 + x*b_1 - b_2.
func (p Polynomial) evalChebyshev(x *big.Float) *big.Float {
	prec := x.Prec()
	n := len(p.Coeffs)
	if n == 0 {
		return new(big.Float).SetPrec(prec)
	}
	bk1 := new(big.Float).SetPrec(prec)
	bk2 := new(big.Float).SetPrec(prec)
	twoX := new(big.Float).SetPrec(prec).Mul(x, big.NewFloat(2))
	for k := n - 1; k >= 1; k-- {
		bk := new(big.Float).SetPrec(prec).Mul(twoX, bk1)
		bk.Sub(bk, bk2)
		bk.Add(bk, p.Coeffs[k])
		bk2 = bk1
		bk1 = bk
	}
	result := new(big.Float).SetPrec(prec).Mul(x, bk1)
	result.Sub(result, bk2)
	result.Add(result, p.Coeffs[0])
	return result
}
