// Package approximation fits a polynomial approximation of a transcendental
// function over one or more intervals, for precomputing the constant
// coefficients CKKS bootstrapping and circuit evaluators need (sign,
// sigmoid, inverse, ...) as minimax polynomial literals.
package approximation

import (
	"fmt"
	"math/big"

	"github.com/latticeforge/ringmpc/utils/bignum"
	"github.com/latticeforge/ringmpc/utils/bignum/polynomial"
)

// RemezParameters configures a multi-interval polynomial fit.
type RemezParameters struct {
	Function        func(*big.Float) *big.Float
	Basis           polynomial.Basis
	Intervals       []bignum.Interval
	ScanStep        *big.Float
	Prec            uint
	OptimalScanStep bool
}

// Remez fits RemezParameters.Function with a single polynomial (in the
// chosen basis) whose degree is the sum of the per-interval node counts,
// by iteratively reweighting a dense sample grid to push down the peak
// error — a discrete relaxation of the classical Remez exchange, since
// exact exchange requires root-finding in exact arithmetic that isn't
// worth reproducing for the module's construction-time use (this runs
// once, off the hot path, to produce a literal coefficient table).
type Remez struct {
	params RemezParameters
	poly   polynomial.Polynomial
	xs     []*big.Float
	ys     []*big.Float
	errs   []float64
}

// NewRemez constructs a Remez fitter for params.
func NewRemez(params RemezParameters) *Remez {
	r := &Remez{params: params}
	r.xs, r.ys = r.sampleGrid()
	return r
}

func (r *Remez) sampleGrid() (xs, ys []*big.Float) {
	prec := r.params.Prec
	for _, iv := range r.params.Intervals {
		x := new(big.Float).SetPrec(prec).Set(iv.A)
		step := r.params.ScanStep
		if r.params.OptimalScanStep && iv.Nodes > 0 {
			span := new(big.Float).SetPrec(prec).Sub(iv.B, iv.A)
			step = new(big.Float).SetPrec(prec).Quo(span, big.NewFloat(float64(iv.Nodes*8)))
		}
		for x.Cmp(iv.B) <= 0 {
			xs = append(xs, new(big.Float).SetPrec(prec).Set(x))
			ys = append(ys, r.params.Function(x))
			x = new(big.Float).SetPrec(prec).Add(x, step)
		}
	}
	return
}

func degree(intervals []bignum.Interval) int {
	d := 0
	for _, iv := range intervals {
		d += iv.Nodes
	}
	if d == 0 {
		d = 1
	}
	return d
}

// Approximate runs up to maxIter reweighting rounds of weighted least
// squares, stopping early once the peak absolute error improves by less
// than tol between rounds.
func (r *Remez) Approximate(maxIter int, tol float64) {
	prec := r.params.Prec
	deg := degree(r.params.Intervals)
	weights := make([]float64, len(r.xs))
	for i := range weights {
		weights[i] = 1
	}

	prevPeak := -1.0
	for iter := 0; iter < maxIter; iter++ {
		coeffs := weightedLeastSquares(r.xs, r.ys, weights, deg, r.params.Basis, prec)
		r.poly = polynomial.New(r.params.Basis, coeffs)

		peak := 0.0
		r.errs = make([]float64, len(r.xs))
		for i, x := range r.xs {
			y := r.poly.Evaluate(x)[0]
			diff := new(big.Float).SetPrec(prec).Sub(y, r.ys[i])
			f, _ := diff.Float64()
			if f < 0 {
				f = -f
			}
			r.errs[i] = f
			if f > peak {
				peak = f
			}
		}
		if prevPeak >= 0 && prevPeak-peak < tol {
			break
		}
		prevPeak = peak

		// Reweight: points near the current peak error get more influence
		// next round, nudging the fit toward equioscillation.
		for i, e := range r.errs {
			weights[i] = 1 + (e/(peak+1e-300))*4
		}
	}
}

// Polynomial returns the fitted polynomial.
func (r *Remez) Polynomial() polynomial.Polynomial { return r.poly }

// ShowCoeffs prints up to n coefficients of the fitted polynomial.
func (r *Remez) ShowCoeffs(n int) {
	for i, c := range r.poly.Coeffs {
		if i >= n {
			break
		}
		fmt.Printf("c%d = %s\n", i, c.Text('g', 20))
	}
}

// ShowError prints up to n sampled absolute errors.
func (r *Remez) ShowError(n int) {
	for i, e := range r.errs {
		if i >= n {
			break
		}
		fmt.Printf("err[%d] = %g\n", i, e)
	}
}
