package ring

import (
	"crypto/rand"
	"math/big"

	"github.com/latticeforge/ringmpc/utils/factorization"
)

// NewInt creates a new big.Int with a given int64 value.
func NewInt(v int64) *big.Int {
	return new(big.Int).SetInt64(v)
}

// NewUint creates a new big.Int with a given uint64 value.
func NewUint(v uint64) *big.Int {
	return new(big.Int).SetUint64(v)
}

// RandInt generates a random big.Int in [0, max-1].
func RandInt(max *big.Int) *big.Int {
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		panic("error : crypto/rand/bigint")
	}
	return n
}

// NewIntFromString creates a new big.Int from a string.
// A prefix of ``0x'' or ``0X'' selects base 16;
// the ``0'' prefix selects base 8, and
// a ``0b'' or ``0B'' prefix selects base 2.
// Otherwise the selected base is 10.
func NewIntFromString(s string) *big.Int {
	i, _ := new(big.Int).SetString(s, 0)
	return i
}

// IsPrime returns true if q is probably prime, else false.
func IsPrime(q uint64) bool {
	return factorization.IsPrime(new(big.Int).SetUint64(q))
}

// DivRound sets z to round(x/y), rounding half away from zero.
func DivRound(x, y, z *big.Int) {
	quo, rem := new(big.Int), new(big.Int)
	quo.QuoRem(x, y, rem)

	twiceRem := new(big.Int).Abs(rem)
	twiceRem.Lsh(twiceRem, 1)

	if twiceRem.CmpAbs(new(big.Int).Abs(y)) >= 0 {
		if x.Sign() == y.Sign() {
			quo.Add(quo, big.NewInt(1))
		} else {
			quo.Sub(quo, big.NewInt(1))
		}
	}

	z.Set(quo)
}
