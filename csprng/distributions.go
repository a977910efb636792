package csprng

import (
	"math/big"
	"math/bits"

	"github.com/latticeforge/ringmpc/bigint"
)

// UniformUint samples a uniform value over ubigint<bits>: fill every limb
// from the keystream, then mask the top limb to the declared width, per
// spec §4.8.
func UniformUint(e *Engine, width int) bigint.Uint {
	n := (width + 63) / 64
	if n == 0 {
		return bigint.NewUint(width)
	}
	words := make([]uint64, n)
	e.uint64s(words)
	return bigint.UintFromWords(words, width)
}

// UniformMod samples a uniform residue over mod<Q>: draw 2*Bits(Q)+kappa
// uniform bits as a wide ubigint, reduce modulo Q, and feed the remainder
// through the Montgomery constructor, per spec §4.8 ("the Montgomery
// reducer... is injective and preserves uniformity").
func UniformMod(e *Engine, m *bigint.Modulus, kappa int) bigint.Mod {
	wide := UniformUint(e, 2*m.Bits()+kappa)
	_, r := bigint.DivMod(wide, bigint.UintFromBig(m.Q(), wide.BitLen()))
	return m.NewMod(r.Big())
}

// Binomial returns the sum of n independent uniform bits, i.e. the
// popcount of n keystream bits, per spec §4.8.
func Binomial(e *Engine, n int) int {
	if n <= 0 {
		return 0
	}
	nbytes := (n + 7) / 8
	buf := make([]byte, nbytes)
	e.uniform(buf)

	// Mask off any bits beyond n in the final byte so they don't
	// contribute to the popcount.
	if rem := n % 8; rem != 0 {
		buf[nbytes-1] &= byte(1<<uint(rem) - 1)
	}

	count := 0
	for _, b := range buf {
		count += bits.OnesCount8(b)
	}
	return count
}

// CenteredBinomial returns Binomial(4*eta) - 2*eta, the standard ring-LWE
// small-error distribution of spec §4.8 (mean 0, variance eta).
func CenteredBinomial(e *Engine, eta int) int {
	return Binomial(e, 4*eta) - 2*eta
}

// DrownedUniform samples a value uniform over [0, span) with
// span = bound*2^kappa, or, when signed is true, that value shifted down by
// span/2 (floor), i.e. uniform over [-span/2, span-span/2), per spec §4.8 ("used to statistically hide small values in
// homomorphic ciphertexts").
func DrownedUniform(e *Engine, bound *big.Int, kappa int, signed bool) *big.Int {
	span := new(big.Int).Lsh(bound, uint(kappa))
	width := span.BitLen() + 8 // a few extra bits to keep the mod-reduction bias negligible
	wide := UniformUint(e, width)
	v := new(big.Int).Mod(wide.Big(), span)
	if signed {
		v.Sub(v, new(big.Int).Rsh(span, 1))
	}
	return v
}
