package ring

// NTT evaluates p2 = NTT(p1) modulo the table's modulus.
func (t *Table) NTT(p1, p2 []uint64) {
	t.ntt.ForwardVec(t, p1, p2)
}

// NTTLazy evaluates p2 = NTT(p1) modulo the table's modulus, with p2 in [0, 2*modulus-1].
func (t *Table) NTTLazy(p1, p2 []uint64) {
	t.ntt.ForwardLazyVec(t, p1, p2)
}

// INTT evaluates p2 = INTT(p1) modulo the table's modulus.
func (t *Table) INTT(p1, p2 []uint64) {
	t.ntt.BackwardVec(t, p1, p2)
}

// INTTLazy evaluates p2 = INTT(p1) modulo the table's modulus, with p2 in [0, 2*modulus-1].
func (t *Table) INTTLazy(p1, p2 []uint64) {
	t.ntt.BackwardLazyVec(t, p1, p2)
}

// MForm switches p1 to the Montgomery domain and writes the result on p2.
func (t *Table) MForm(p1, p2 []uint64) {
	MFormVec(p1, p2, t.Modulus, t.BRedParams)
}

// IMForm switches back p1 from the Montgomery domain to the conventional domain and writes the result on p2.
func (t *Table) IMForm(p1, p2 []uint64) {
	InvMFormVec(p1, p2, t.Modulus, t.MRedParams)
}
