package ring

import (
	"encoding/binary"

	"github.com/latticeforge/ringmpc/utils/sampling"
)

// UniformSampler keeps the state of a sampler of uniformly distributed polynomials.
type UniformSampler struct {
	*baseSampler
	randomBufferN []byte
}

// NewUniformSampler creates a new instance of UniformSampler from a PRNG and ring definition.
func NewUniformSampler(prng sampling.PRNG, baseRing *Ring) *UniformSampler {
	u := new(UniformSampler)
	u.baseSampler = &baseSampler{prng: prng, baseRing: baseRing}
	u.randomBufferN = make([]byte, baseRing.N())
	return u
}

// AtLevel returns an instance of the target UniformSampler that operates at the target level.
// This instance is not thread safe and cannot be used concurrently to the base instance.
func (u *UniformSampler) AtLevel(level int) Sampler {
	return &UniformSampler{
		baseSampler:   u.baseSampler.AtLevel(level),
		randomBufferN: u.randomBufferN,
	}
}

// WithPRNG returns an instance of the target UniformSampler that uses prng as its source of randomness.
func (u *UniformSampler) WithPRNG(prng sampling.PRNG) *UniformSampler {
	return &UniformSampler{
		baseSampler:   u.baseSampler.WithPRNG(prng),
		randomBufferN: u.randomBufferN,
	}
}

// Read generates a polynomial with coefficients following a uniform distribution over [0, Qi-1] and writes it on pol.
func (u *UniformSampler) Read(pol Poly) {

	var randomUint, mask, qi uint64
	ptr := len(u.randomBufferN)

	moduli := u.baseRing.ModuliChain()[:u.baseRing.Level()+1]
	N := u.baseRing.N()

	for j, s := range u.baseRing.Tables[:u.baseRing.Level()+1] {

		qi = moduli[j]
		mask = s.Mask

		ptmp := pol.Coeffs[j]

		for i := 0; i < N; i++ {

			for {

				if ptr+8 > len(u.randomBufferN) {
					if _, err := u.prng.Read(u.randomBufferN); err != nil {
						// Sanity check, this error should not happen.
						panic(err)
					}
					ptr = 0
				}

				randomUint = binary.BigEndian.Uint64(u.randomBufferN[ptr:ptr+8]) & mask
				ptr += 8

				if randomUint < qi {
					break
				}
			}

			ptmp[i] = randomUint
		}
	}
}

// ReadNew allocates and samples a new polynomial with coefficients following a uniform
// distribution over [0, Qi-1], at the sampler's level.
func (u *UniformSampler) ReadNew() (pol Poly) {
	pol = u.baseRing.NewPoly()
	u.Read(pol)
	return pol
}

// ReadAndAdd samples a uniform polynomial and adds it on pol.
func (u *UniformSampler) ReadAndAdd(pol Poly) {
	tmp := u.ReadNew()
	u.baseRing.Add(tmp, pol, pol)
}

// randInt32 samples a uniform variable in the range [0, mask], where mask is of the form 2^n-1, with n in [0, 32].
func randInt32(prng sampling.PRNG, mask uint64) uint64 {
	randomBytes := make([]byte, 4)
	if _, err := prng.Read(randomBytes); err != nil {
		// Sanity check, this error should not happen.
		panic(err)
	}
	return mask & uint64(binary.BigEndian.Uint32(randomBytes))
}
