package ring

import "math/bits"

// MultByMonomial multiplies p1 by x^monomialDeg in Z[x]/(x^N+1) and writes
// the result on p2, per spec §4.6.1: the bit-monomial is just a rotation of
// the coefficient vector modulo 2N, with a sign flip on wraparound (since
// x^N = -1 in the quotient ring). Every coefficient is moved with the same
// branch-free computation: reduce the shifted source index modulo 2N, pull
// out the bit that marks a wrap past N, and use it as an all-ones/all-zero
// mask to select between the source coefficient and its negation, instead
// of branching on shift<N, shift==0, etc. The one branch is on a zero source
// coefficient, whose negation is taken as 0 rather than qi.
func (r *Ring) MultByMonomial(p1 Poly, monomialDeg int, p2 Poly) {
	N := r.N()
	twoN := N << 1
	logN := bits.Len64(uint64(N)) - 1

	shift := monomialDeg % twoN
	if shift < 0 {
		shift += twoN
	}

	mask2N := uint64(twoN - 1)
	maskN := uint64(N - 1)
	ushift := uint64(shift)

	for i, table := range r.Tables[:r.level+1] {
		qi := table.Modulus
		p1c, p2c := p1.Coeffs[i][:N], p2.Coeffs[i][:N]
		for j := 0; j < N; j++ {
			// idx = (j - shift) mod 2N, kept non-negative by adding a
			// multiple of 2N before the mask (2N is a power of two, so the
			// mask is an exact modulo reduction).
			idx := (uint64(j) - ushift + uint64(twoN)*2) & mask2N

			// wrapMask is all-ones if idx>=N (the shift wrapped past the
			// x^N=-1 point), all-zero otherwise: idx<2N has exactly logN+1
			// significant bits, so bit logN is the wrap indicator.
			wrapMask := -(idx >> uint(logN))

			v := p1c[idx&maskN]
			neg := qi - v
			if v == 0 {
				neg = 0
			}
			p2c[j] = (v &^ wrapMask) | (neg & wrapMask)
		}
	}
}
