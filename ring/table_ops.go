package ring

// Add evaluates p3 = p1 + p2 (mod modulus).
// Iteration is done with respect to len(p1).
func (t *Table) Add(p1, p2, p3 []uint64) {
	AddVec(p1, p2, p3, t.Modulus)
}

// AddLazy evaluates p3 = p1 + p2, without a modular reduction.
// Iteration is done with respect to len(p1).
func (t *Table) AddLazy(p1, p2, p3 []uint64) {
	AddVecNoMod(p1, p2, p3)
}

// MulCoeffsMontgomery evaluates p3 = p1*p2 (mod modulus), operating on values in Montgomery form.
// Iteration is done with respect to len(p1).
func (t *Table) MulCoeffsMontgomery(p1, p2, p3 []uint64) {
	MulCoeffsMontgomeryVec(p1, p2, p3, t.Modulus, t.MRedParams)
}

// MulCoeffsMontgomeryThenAdd evaluates p3 = p3 + p1*p2 (mod modulus), operating on values in Montgomery form.
func (t *Table) MulCoeffsMontgomeryThenAdd(p1, p2, p3 []uint64) {
	MulCoeffsMontgomeryAndAddVec(p1, p2, p3, t.Modulus, t.MRedParams)
}

// MulCoeffsMontgomeryLazy evaluates p3 = p1*p2 (mod modulus), operating on values in Montgomery
// form. Output coefficients are in the range [0, 2*modulus-1].
func (t *Table) MulCoeffsMontgomeryLazy(p1, p2, p3 []uint64) {
	MulCoeffsMontgomeryConstantVec(p1, p2, p3, t.Modulus, t.MRedParams)
}

// MulCoeffsMontgomeryLazyThenAddLazy evaluates p3 = p3 + p1*p2 (mod modulus), operating on values
// in Montgomery form. Output coefficients are in the range [0, 3*modulus-2].
func (t *Table) MulCoeffsMontgomeryLazyThenAddLazy(p1, p2, p3 []uint64) {
	MulCoeffsMontgomeryConstantAndAddNoModVec(p1, p2, p3, t.Modulus, t.MRedParams)
}

// MulCoeffsLazy evaluates p3 = p1*p2 (mod modulus), operating on values in the standard domain.
func (t *Table) MulCoeffsLazy(p1, p2, p3 []uint64) {
	MulCoeffsVec(p1, p2, p3, t.Modulus, t.BRedParams)
}

// MulCoeffsLazyThenAddLazy evaluates p3 = p3 + p1*p2 (mod modulus), without a final reduction on
// the accumulator, operating on values in the standard domain.
func (t *Table) MulCoeffsLazyThenAddLazy(p1, p2, p3 []uint64) {
	MulCoeffsAndAddNoModVec(p1, p2, p3, t.Modulus, t.BRedParams)
}

// MulScalarMontgomeryThenAdd evaluates p2 = p2 + p1*scalarMont (mod modulus).
// Iteration is done with respect to len(p1).
func (t *Table) MulScalarMontgomeryThenAdd(p1 []uint64, scalarMont uint64, p2 []uint64) {
	MulScalarMontgomeryAndAddVec(p1, p2, scalarMont, t.Modulus, t.MRedParams)
}

// SubScalar evaluates p2 = p1 - scalar (mod modulus).
// Iteration is done with respect to len(p1).
func (t *Table) SubScalar(p1 []uint64, scalar uint64, p2 []uint64) {
	SubScalarVec(p1, p2, scalar, t.Modulus)
}

// SubThenMulScalarMontgomeryTwoModulus evaluates p3 = (p1 + 2*modulus - p2) * scalarMont (mod modulus).
// Iteration is done with respect to len(p1).
func (t *Table) SubThenMulScalarMontgomeryTwoModulus(p1, p2 []uint64, scalarMont uint64, p3 []uint64) {
	SubVecAndMulScalarMontgomeryTwoQiVec(p1, p2, p3, scalarMont, t.Modulus, t.MRedParams)
}
