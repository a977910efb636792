package bignum

import "math/big"

// Interval is a sub-domain [A, B] over which an approximation is fit, with
// Nodes sample points used for the initial Chebyshev node placement.
type Interval struct {
	A, B  *big.Float
	Nodes int
}

// ChebyshevNodes returns the Interval's Nodes Chebyshev points of the
// second kind, mapped from [-1, 1] onto [A, B].
func (iv Interval) ChebyshevNodes() []*big.Float {
	prec := iv.A.Prec()
	nodes := make([]*big.Float, iv.Nodes)
	half := new(big.Float).SetPrec(prec).Sub(iv.B, iv.A)
	half.Quo(half, big.NewFloat(2))
	mid := new(big.Float).SetPrec(prec).Add(iv.A, iv.B)
	mid.Quo(mid, big.NewFloat(2))
	for i := 0; i < iv.Nodes; i++ {
		theta := NewFloat(piFraction(i, iv.Nodes), prec)
		c := Cos(theta)
		x := new(big.Float).SetPrec(prec).Mul(c, half)
		x.Add(x, mid)
		nodes[i] = x
	}
	return nodes
}

func piFraction(i, n int) float64 {
	if n <= 1 {
		return 0
	}
	return 3.141592653589793 * (float64(i) + 0.5) / float64(n)
}
