package utils

import (
	"math/big"

	"github.com/latticeforge/ringmpc/utils/factorization"
)

// GetFactors returns the distinct prime factors of n, delegating to the
// factorization package (kept separate so callers that only need
// primality/factoring, like parameter-generation tooling, can depend on it
// without pulling in the rest of this grab-bag package).
func GetFactors(n *big.Int) []*big.Int {
	return factorization.GetDistinctFactors(n)
}
