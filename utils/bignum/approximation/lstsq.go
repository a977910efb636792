package approximation

import (
	"math/big"

	"github.com/latticeforge/ringmpc/utils/bignum/polynomial"
)

// basisValues returns [phi_0(x), ..., phi_deg(x)] for the chosen basis.
func basisValues(x *big.Float, deg int, basis polynomial.Basis, prec uint) []*big.Float {
	out := make([]*big.Float, deg+1)
	out[0] = big.NewFloat(1).SetPrec(prec)
	if deg == 0 {
		return out
	}
	out[1] = new(big.Float).SetPrec(prec).Set(x)
	switch basis {
	case polynomial.Chebyshev:
		for k := 2; k <= deg; k++ {
			t := new(big.Float).SetPrec(prec).Mul(big.NewFloat(2), x)
			t.Mul(t, out[k-1])
			t.Sub(t, out[k-2])
			out[k] = t
		}
	default:
		for k := 2; k <= deg; k++ {
			out[k] = new(big.Float).SetPrec(prec).Mul(out[k-1], x)
		}
	}
	return out
}

// weightedLeastSquares solves for the degree-`deg` basis coefficients
// minimizing sum_i weights[i]*(poly(xs[i]) - ys[i])^2, via the normal
// equations A^T W A c = A^T W y solved by Gaussian elimination.
func weightedLeastSquares(xs, ys []*big.Float, weights []float64, deg int, basis polynomial.Basis, prec uint) []*big.Float {
	n := deg + 1
	ata := make([][]*big.Float, n)
	atb := make([]*big.Float, n)
	for i := range ata {
		ata[i] = make([]*big.Float, n)
		for j := range ata[i] {
			ata[i][j] = big.NewFloat(0).SetPrec(prec)
		}
		atb[i] = big.NewFloat(0).SetPrec(prec)
	}

	for idx, x := range xs {
		phi := basisValues(x, deg, basis, prec)
		w := big.NewFloat(weights[idx]).SetPrec(prec)
		for i := 0; i < n; i++ {
			wi := new(big.Float).SetPrec(prec).Mul(w, phi[i])
			for j := 0; j < n; j++ {
				term := new(big.Float).SetPrec(prec).Mul(wi, phi[j])
				ata[i][j].Add(ata[i][j], term)
			}
			term := new(big.Float).SetPrec(prec).Mul(wi, ys[idx])
			atb[i].Add(atb[i], term)
		}
	}

	return solveLinearSystem(ata, atb, prec)
}

// solveLinearSystem solves a*x = b for x via Gaussian elimination with
// partial pivoting, all in big.Float arithmetic.
func solveLinearSystem(a [][]*big.Float, b []*big.Float, prec uint) []*big.Float {
	n := len(b)
	// Deep-copy so the caller's matrices are left untouched.
	m := make([][]*big.Float, n)
	rhs := make([]*big.Float, n)
	for i := range m {
		m[i] = make([]*big.Float, n)
		for j := range m[i] {
			m[i][j] = new(big.Float).SetPrec(prec).Set(a[i][j])
		}
		rhs[i] = new(big.Float).SetPrec(prec).Set(b[i])
	}

	for col := 0; col < n; col++ {
		pivot := col
		best := new(big.Float).Abs(m[col][col])
		for r := col + 1; r < n; r++ {
			v := new(big.Float).Abs(m[r][col])
			if v.Cmp(best) > 0 {
				best, pivot = v, r
			}
		}
		m[col], m[pivot] = m[pivot], m[col]
		rhs[col], rhs[pivot] = rhs[pivot], rhs[col]

		piv := m[col][col]
		if piv.Sign() == 0 {
			continue
		}
		for r := col + 1; r < n; r++ {
			factor := new(big.Float).SetPrec(prec).Quo(m[r][col], piv)
			for c := col; c < n; c++ {
				t := new(big.Float).SetPrec(prec).Mul(factor, m[col][c])
				m[r][c].Sub(m[r][c], t)
			}
			t := new(big.Float).SetPrec(prec).Mul(factor, rhs[col])
			rhs[r].Sub(rhs[r], t)
		}
	}

	x := make([]*big.Float, n)
	for i := n - 1; i >= 0; i-- {
		sum := new(big.Float).SetPrec(prec).Set(rhs[i])
		for j := i + 1; j < n; j++ {
			t := new(big.Float).SetPrec(prec).Mul(m[i][j], x[j])
			sum.Sub(sum, t)
		}
		if m[i][i].Sign() == 0 {
			x[i] = big.NewFloat(0).SetPrec(prec)
			continue
		}
		x[i] = new(big.Float).SetPrec(prec).Quo(sum, m[i][i])
	}
	return x
}
