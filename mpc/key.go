package mpc

import (
	"github.com/latticeforge/ringmpc/expr"
	"github.com/latticeforge/ringmpc/planner"
	"github.com/latticeforge/ringmpc/ring"
	"github.com/latticeforge/ringmpc/shape"
	"github.com/latticeforge/ringmpc/tensor"
)

// SecretKey holds a party's RLWE secret s, both in the domain it was
// sampled in and the NTT domain every ciphertext component is kept in
// (spec §4.11: "Ciphertext: pair (c0, c1)" of NTT-domain tensors, so a
// secret multiplied against a ciphertext component has to already live
// there).
type SecretKey struct {
	Coeffs *tensor.Tensor[uint64]
	NTT    *tensor.Tensor[uint64]
}

// PublicKey is the pair (a, b) with b = -(a*s + e), both in NTT domain,
// matching the "public key tuple (a, b)" spec §4.11's Enc takes as input.
type PublicKey struct {
	A *tensor.Tensor[uint64]
	B *tensor.Tensor[uint64]
}

// KeyGenerator builds secret and public keys over a fixed polynomial ring,
// per the teacher's core/rlwe.KeyGenerator pattern (small secret and
// error, both drawn here from the centered binomial; uniform a) kept but re-expressed as expr nodes: every
// sample is drawn and reduced by the same trace/decide/plan/dispatch path
// (spec §4.10) that evaluates a ciphertext, instead of a sampler's Read
// method being called directly against a *rlwe.SecretKey.
type KeyGenerator struct {
	Ring *ring.Ring
	Eta  int // centered-binomial parameter for secret and error polynomials
}

// NewKeyGenerator returns a generator drawing secret/error coefficients
// from a centered binomial distribution of parameter eta.
func NewKeyGenerator(r *ring.Ring, eta int) *KeyGenerator {
	return &KeyGenerator{Ring: r, Eta: eta}
}

func (kg *KeyGenerator) polyShape() shape.Shape {
	return shape.New(shape.Extent(kg.Ring.Level()+1), shape.Extent(kg.Ring.N()))
}

// GenSecretKey samples s ~ CenteredBinomial(eta) in coefficient domain and
// lifts it into NTT domain via a Transform node, seeded from seed.
func (kg *KeyGenerator) GenSecretKey(seed []byte) *SecretKey {
	s := expr.NewRandomSource(kg.polyShape(), expr.DistCenteredBinomial, kg.Eta)
	sNTT := expr.NewTransform(s, false)
	roots := []expr.Node{s, sNTT}
	p := planner.Build(roots)
	out := planner.EvalRoots(p, roots, seed, kg.Ring)
	return &SecretKey{Coeffs: out[0], NTT: out[1]}
}

// GenPublicKey draws a uniform a and a centered-binomial error e (both
// already treated as NTT-domain samples, the usual trick on an NTT-friendly
// ring where a uniform coefficient vector and its NTT are both uniform) and
// returns (a, -(a*s+e)), per spec §4.11.
func (kg *KeyGenerator) GenPublicKey(seed []byte, sk *SecretKey) *PublicKey {
	a := expr.NewRandomSource(kg.polyShape(), expr.DistUniform, 64)
	e := expr.NewRandomSource(kg.polyShape(), expr.DistCenteredBinomial, kg.Eta)
	sNTT := expr.NewTensorView(sk.NTT)

	as := expr.NewPointwise("mul", a, sNTT)
	ase := expr.NewPointwise("add", as, e)
	zero := expr.NewConstant(tensor.New[uint64](kg.polyShape()))
	b := expr.NewPointwise("sub", zero, ase)

	roots := []expr.Node{a, b}
	p := planner.Build(roots)
	out := planner.EvalRoots(p, roots, seed, kg.Ring)
	return &PublicKey{A: out[0], B: out[1]}
}

// GenKeyPair is a convenience wrapper generating both keys from
// independent seeds derived from seed.
func (kg *KeyGenerator) GenKeyPair(seed []byte) (*SecretKey, *PublicKey) {
	skSeed := append(append([]byte{}, seed...), 's')
	pkSeed := append(append([]byte{}, seed...), 'p')
	sk := kg.GenSecretKey(skSeed)
	pk := kg.GenPublicKey(pkSeed, sk)
	return sk, pk
}
