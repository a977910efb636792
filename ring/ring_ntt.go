package ring

// NTT evaluates p1 in the NTT domain and writes the result on p2.
func (r *Ring) NTT(p1, p2 Poly) {
	r.NumberTheoreticTransformer.Forward(r, p1, p2)
}

// NTTLazy evaluates p1 in the NTT domain and writes the result on p2.
// Output values are in the range [0, 2q-1].
func (r *Ring) NTTLazy(p1, p2 Poly) {
	r.NumberTheoreticTransformer.ForwardLazy(r, p1, p2)
}

// InvNTT maps p1 out of the NTT domain and writes the result on p2.
func (r *Ring) InvNTT(p1, p2 Poly) {
	r.NumberTheoreticTransformer.Backward(r, p1, p2)
}

// InvNTTLazy maps p1 out of the NTT domain and writes the result on p2.
// Output values are in the range [0, 2q-1].
func (r *Ring) InvNTTLazy(p1, p2 Poly) {
	r.NumberTheoreticTransformer.BackwardLazy(r, p1, p2)
}

// INTT is an alias for InvNTT.
func (r *Ring) INTT(p1, p2 Poly) {
	r.InvNTT(p1, p2)
}

// INTTLazy is an alias for InvNTTLazy.
func (r *Ring) INTTLazy(p1, p2 Poly) {
	r.InvNTTLazy(p1, p2)
}

// butterfly computes X, Y = U + V*Psi, U - V*Psi mod Q, operating on values in Montgomery form.
func butterfly(U, V, Psi, twoQ, Q, mredParams uint64) (uint64, uint64) {
	if U >= twoQ {
		U -= twoQ
	}
	V = MRedConstant(V, Psi, Q, mredParams)
	return U + V, U + twoQ - V
}

// invbutterfly computes X, Y = U + V, (U - V)*Psi mod Q, operating on values in Montgomery form.
func invbutterfly(U, V, Psi, twoQ, Q, mredParams uint64) (X, Y uint64) {
	X = U + V
	if X >= twoQ {
		X -= twoQ
	}
	Y = MRedConstant(U+twoQ-V, Psi, Q, mredParams)
	return
}

// NTT evaluates coeffsIn in the NTT domain of table and writes the result on coeffsOut.
func NTT(table *Table, coeffsIn, coeffsOut []uint64) {
	NTTLazy(table, coeffsIn, coeffsOut)
	Q := table.Modulus
	bredParams := table.BRedParams
	for i := range coeffsOut {
		coeffsOut[i] = BRedAdd(coeffsOut[i], Q, bredParams)
	}
}

// NTTLazy evaluates coeffsIn in the NTT domain of table and writes the result on coeffsOut.
// Output values are in the range [0, 2q-1].
func NTTLazy(table *Table, coeffsIn, coeffsOut []uint64) {
	N := uint64(table.N)
	Q := table.Modulus
	mredParams := table.MRedParams
	roots := table.RootsForward
	twoQ := Q << 1

	t := N >> 1
	for j := uint64(0); j < t; j++ {
		F := roots[1]
		V := MRedConstant(coeffsIn[j+t], F, Q, mredParams)
		coeffsOut[j] = coeffsIn[j] + V
		coeffsOut[j+t] = coeffsIn[j] + twoQ - V
	}

	for m := uint64(2); m < N; m <<= 1 {
		t >>= 1
		for i := uint64(0); i < m; i++ {
			j1 := (i * t) << 1
			j2 := j1 + t
			F := roots[m+i]
			for j := j1; j < j2; j++ {
				coeffsOut[j], coeffsOut[j+t] = butterfly(coeffsOut[j], coeffsOut[j+t], F, twoQ, Q, mredParams)
			}
		}
	}
}

// InvNTT maps coeffsIn out of the NTT domain of table and writes the result on coeffsOut.
func InvNTT(table *Table, coeffsIn, coeffsOut []uint64) {
	InvNTTLazy(table, coeffsIn, coeffsOut)
	Q := table.Modulus
	NInv := table.NInv
	mredParams := table.MRedParams
	for i := range coeffsOut {
		coeffsOut[i] = MRedConstant(coeffsOut[i], NInv, Q, mredParams)
	}
}

// InvNTTLazy maps coeffsIn out of the NTT domain of table and writes the result on coeffsOut.
// Output values are in the range [0, 2q-1].
func InvNTTLazy(table *Table, coeffsIn, coeffsOut []uint64) {
	N := uint64(table.N)
	Q := table.Modulus
	mredParams := table.MRedParams
	roots := table.RootsBackward
	twoQ := Q << 1

	copy(coeffsOut, coeffsIn)

	t := uint64(1)
	for m := N >> 1; m > 1; m >>= 1 {
		j1 := uint64(0)
		for i := uint64(0); i < m; i++ {
			j2 := j1 + t
			F := roots[m+i]
			for j := j1; j < j2; j++ {
				coeffsOut[j], coeffsOut[j+t] = invbutterfly(coeffsOut[j], coeffsOut[j+t], F, twoQ, Q, mredParams)
			}
			j1 += t << 1
		}
		t <<= 1
	}

	F := roots[1]
	for j := uint64(0); j < t; j++ {
		coeffsOut[j], coeffsOut[j+t] = invbutterfly(coeffsOut[j], coeffsOut[j+t], F, twoQ, Q, mredParams)
	}

	for i := range coeffsOut {
		if coeffsOut[i] >= twoQ {
			coeffsOut[i] -= twoQ
		}
	}
}

// NTTConjugateInvariant evaluates coeffsIn, representing a polynomial in Z[X+X^-1]/(X^2N+1),
// in the NTT domain of table and writes the result on coeffsOut.
// It reuses the standard negacyclic butterfly network: the conjugate-invariant structure is
// entirely carried by the roots precomputed for a 4N-th root of unity in table.
func NTTConjugateInvariant(table *Table, coeffsIn, coeffsOut []uint64) {
	NTT(table, coeffsIn, coeffsOut)
}

// NTTConjugateInvariantLazy evaluates coeffsIn in the NTT domain of table and writes the
// result on coeffsOut. Output values are in the range [0, 2q-1].
func NTTConjugateInvariantLazy(table *Table, coeffsIn, coeffsOut []uint64) {
	NTTLazy(table, coeffsIn, coeffsOut)
}

// InvNTTConjugateInvariant maps coeffsIn out of the NTT domain of table and writes the
// result on coeffsOut.
func InvNTTConjugateInvariant(table *Table, coeffsIn, coeffsOut []uint64) {
	InvNTT(table, coeffsIn, coeffsOut)
}

// InvNTTConjugateInvariantLazy maps coeffsIn out of the NTT domain of table and writes the
// result on coeffsOut. Output values are in the range [0, 2q-1].
func InvNTTConjugateInvariantLazy(table *Table, coeffsIn, coeffsOut []uint64) {
	InvNTTLazy(table, coeffsIn, coeffsOut)
}
