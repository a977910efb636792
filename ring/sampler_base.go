package ring

import (
	"fmt"

	"github.com/latticeforge/ringmpc/utils/sampling"
)

// GaloisGen is an integer of order N=2^d modulo M=2N and that spans Z_M with the integer -1.
// The j-th ring automorphism takes the root zeta to zeta^(5j).
const GaloisGen uint64 = 5

// Sampler is a common interface for samplers of polynomials in a Ring.
type Sampler interface {
	Read(pol Poly)
	ReadNew() (pol Poly)
	ReadAndAdd(pol Poly)
	AtLevel(level int) Sampler
}

// baseSampler holds the state shared by all polynomial samplers: the source of randomness
// and the ring in which polynomials are sampled.
type baseSampler struct {
	prng     sampling.PRNG
	baseRing *Ring
}

// AtLevel returns a shallow copy of the base sampler that operates at the target level.
func (b *baseSampler) AtLevel(level int) *baseSampler {
	return &baseSampler{
		prng:     b.prng,
		baseRing: b.baseRing.AtLevel(level),
	}
}

// WithPRNG returns a shallow copy of the base sampler using prng as its source of randomness.
func (b *baseSampler) WithPRNG(prng sampling.PRNG) *baseSampler {
	return &baseSampler{
		prng:     prng,
		baseRing: b.baseRing,
	}
}

const randomBufferSize = 1 << 12

// randomBuffer is a reusable pool of random bytes shared by samplers that consume randomness
// in chunks smaller than a full refill (e.g. the Gaussian sampler's ziggurat algorithm).
type randomBuffer struct {
	randomBufferN []byte
	ptr           int
}

func newRandomBuffer() *randomBuffer {
	return &randomBuffer{randomBufferN: make([]byte, randomBufferSize)}
}

// DistributionParameters is implemented by the concrete distribution-parameter types
// (Ternary, DiscreteGaussian) that can be fed to NewSampler. It intentionally does not
// declare any method: it exists to give call sites expecting "a distribution's
// parameters" a named type to accept instead of interface{}, while construction of a
// sampler from it still goes through a type switch.
type DistributionParameters interface{}

// Ternary is the parameterization of a ternary distribution with coefficients in {-1, 0, 1}.
// Exactly one of P (probability of a zero coefficient is 1-P, shared equally between -1 and
// +1) or H (a fixed Hamming weight) must be set.
type Ternary struct {
	P float64
	H int
}

// DiscreteGaussian is the parameterization of a truncated discrete Gaussian distribution
// with standard deviation Sigma and truncation bound Bound (in absolute coefficient value).
type DiscreteGaussian struct {
	Sigma float64
	Bound float64
}

// NewSampler instantiates the concrete Sampler matching the given distribution parameters.
func NewSampler(prng sampling.PRNG, baseRing *Ring, X DistributionParameters, montgomery bool) (Sampler, error) {
	switch X := X.(type) {
	case Ternary:
		return NewTernarySampler(prng, baseRing, X, montgomery)
	case DiscreteGaussian:
		return NewGaussianSampler(prng, baseRing, X, montgomery), nil
	default:
		return nil, fmt.Errorf("invalid distribution: must be Ternary or DiscreteGaussian but is %T", X)
	}
}
