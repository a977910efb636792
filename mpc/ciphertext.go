package mpc

import (
	"github.com/latticeforge/ringmpc/expr"
	"github.com/latticeforge/ringmpc/planner"
	"github.com/latticeforge/ringmpc/ring"
	"github.com/latticeforge/ringmpc/shape"
	"github.com/latticeforge/ringmpc/tensor"
)

// Ciphertext is a pair of NTT-domain tensors (c0, c1), per spec §4.11:
// "Ciphertext: pair (c0, c1)". Both components share the ring's (levels, N)
// shape.
type Ciphertext struct {
	C0, C1 *tensor.Tensor[uint64]
}

func polyShapeFor(r *ring.Ring) shape.Shape {
	return shape.New(shape.Extent(r.Level()+1), shape.Extent(r.N()))
}

// polyFromTensor views t's backing buffer as a ring.Poly, re-slicing one
// row per RNS level the same way ring.NewPoly lays its own Buff out. The
// tensor and the returned Poly alias the same storage.
func polyFromTensor(r *ring.Ring, t *tensor.Tensor[uint64]) ring.Poly {
	N := r.N()
	levels := r.Level() + 1
	buf := t.Raw()
	coeffs := make([][]uint64, levels)
	for i := 0; i < levels; i++ {
		coeffs[i] = buf[i*N : (i+1)*N]
	}
	return ring.Poly{Coeffs: coeffs, Buff: buf}
}

// Encrypt builds Enc(m; u, v, w) = (b*u + p*v + m, a*u + p*w) over the
// expression graph (spec §4.11) and dispatches it, seeding the randomness
// triple (u, v, w) from seed. m and p (the plaintext modulus injected as a
// scaling polynomial) are supplied already in NTT domain.
func Encrypt(r *ring.Ring, pk *PublicKey, m, p *tensor.Tensor[uint64], seed []byte, eta int) *Ciphertext {
	ps := polyShapeFor(r)
	pkA := expr.NewTensorView(pk.A)
	pkB := expr.NewTensorView(pk.B)
	pNode := expr.NewTensorView(p)
	mNode := expr.NewTensorView(m)

	u := expr.NewRandomSource(ps, expr.DistCenteredBinomial, eta)
	v := expr.NewRandomSource(ps, expr.DistCenteredBinomial, eta)
	w := expr.NewRandomSource(ps, expr.DistCenteredBinomial, eta)

	ct := expr.EncryptShell(pkA, pkB, pNode, mNode, u, v, w)
	roots := []expr.Node{ct.At(0), ct.At(1)}
	plan := planner.Build(roots)
	out := planner.EvalRoots(plan, roots, seed, r)
	return &Ciphertext{C0: out[0], C1: out[1]}
}

// Decrypt builds c0 + c1*s (spec §4.11's DecryptShell) and dispatches it.
// The plaintext-modulus reduction on top is the caller's concern (Encoder.Decode
// in bgv_codec.go).
func Decrypt(r *ring.Ring, sk *SecretKey, ct *Ciphertext) *tensor.Tensor[uint64] {
	c0 := expr.NewTensorView(ct.C0)
	c1 := expr.NewTensorView(ct.C1)
	s := expr.NewTensorView(sk.NTT)

	m := expr.DecryptShell(s, expr.NewTuple(c0, c1))
	roots := []expr.Node{m}
	plan := planner.Build(roots)
	out := planner.EvalRoots(plan, roots, nil, r)
	return out[0]
}

// Rescale divides both ciphertext components by the current top RNS
// modulus and drops that level, rounding to the nearest integer (BGV
// modulus-switching, SUPPLEMENTED FEATURES item 5), via the ring's own
// DivRoundByLastModulusNTT — kept from the teacher's ring/scaling.go.
func (ct *Ciphertext) Rescale(r *ring.Ring) *Ciphertext {
	level := r.Level()
	buff := r.NewPoly()

	c0 := polyFromTensor(r, ct.C0)
	c1 := polyFromTensor(r, ct.C1)

	out0 := ring.NewPoly(r.N(), level-1)
	out1 := ring.NewPoly(r.N(), level-1)
	r.DivRoundByLastModulusNTT(c0, buff, out0)
	r.DivRoundByLastModulusNTT(c1, buff, out1)

	return &Ciphertext{
		C0: tensor.FromSlice[uint64](shape.New(shape.Extent(level), shape.Extent(r.N())), out0.Buff),
		C1: tensor.FromSlice[uint64](shape.New(shape.Extent(level), shape.Extent(r.N())), out1.Buff),
	}
}
