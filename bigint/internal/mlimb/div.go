package mlimb

import "math/bits"

// DivMod divides a by b (unsigned magnitudes, little-endian words) and
// returns quotient and remainder, per spec §4.3: "recursive base-2B long
// division ... assuming the divisor is normalized to a limb boundary; for
// unnormalized divisors, both operands are pre-shifted, and the remainder
// is post-shifted." This realizes that contract with Knuth's Algorithm D
// (TAOCP vol.2 §4.3.1), the word-at-a-time long division Hasselström's
// thesis refines: normalize the divisor so its top word's high bit is set,
// estimate each quotient word from the top two dividend words, then
// correct by at most two subtract-and-compare steps.
//
// Panics if b is all-zero.
func DivMod(a, b []uint64) (q, r []uint64) {
	b = trim(b)
	if len(b) == 0 {
		panic("mlimb: division by zero")
	}
	a = trim(a)
	if Cmp(a, b) < 0 {
		return nil, append([]uint64(nil), a...)
	}
	if len(b) == 1 {
		return divModSingle(a, b[0])
	}

	shift := bits.LeadingZeros64(b[len(b)-1])

	// Normalize: bn = b << shift, an = a << shift (one extra word).
	bn := make([]uint64, len(b))
	copy(bn, b)
	shlBits(bn, shift)

	an := make([]uint64, len(a)+1)
	copy(an, a)
	shlBits(an, shift)

	n := len(bn)
	m := len(an) - n - 1
	if m < 0 {
		m = 0
	}
	qout := make([]uint64, m+1)

	for j := m; j >= 0; j-- {
		// Estimate qhat from the top three words of the working dividend
		// window and the top two of the divisor (Knuth's D3).
		var hi, lo uint64
		if j+n < len(an) {
			hi = an[j+n]
		}
		lo = an[j+n-1]

		var qhat, rhat uint64
		if hi == bn[n-1] {
			qhat = ^uint64(0)
		} else {
			qhat, rhat = bits.Div64(hi, lo, bn[n-1])
		}

		for {
			if qhat == 0 {
				break
			}
			hi2, lo2 := bits.Mul64(qhat, bn[n-2])
			_ = hi2
			var lo3 uint64
			if j+n-2 < len(an) {
				lo3 = an[j+n-2]
			}
			overflow := false
			if hi2 > rhat {
				overflow = true
			} else if hi2 == rhat && lo2 > lo3 {
				overflow = true
			}
			if !overflow {
				break
			}
			qhat--
			newRhat, carry := bits.Add64(rhat, bn[n-1], 0)
			rhat = newRhat
			if carry != 0 {
				break
			}
		}

		// Multiply-subtract qhat*bn from an[j:j+n+1].
		var borrow, carry uint64
		for i := 0; i < n; i++ {
			hiMul, loMul := bits.Mul64(qhat, bn[i])
			loMul, c := bits.Add64(loMul, carry, 0)
			if c != 0 {
				hiMul++
			}
			carry = hiMul
			d, b2 := bits.Sub64(an[j+i], loMul, borrow)
			an[j+i] = d
			borrow = b2
		}
		top := uint64(0)
		if j+n < len(an) {
			top = an[j+n]
		}
		d, b2 := bits.Sub64(top, carry, borrow)
		if j+n < len(an) {
			an[j+n] = d
		}
		borrow = b2

		if borrow != 0 {
			// qhat was one too large: add bn back and decrement.
			qhat--
			c := add(an[j:j+n], an[j:j+n], bn)
			if j+n < len(an) {
				an[j+n] += c
			}
		}

		qout[j] = qhat
	}

	rem := make([]uint64, n)
	copy(rem, an[:n])
	shrBits(rem, shift)

	return trim(qout), trim(rem)
}

func divModSingle(a []uint64, b uint64) (q, r []uint64) {
	qout := make([]uint64, len(a))
	var rem uint64
	for i := len(a) - 1; i >= 0; i-- {
		qout[i], rem = bits.Div64(rem, a[i], b)
	}
	if rem == 0 {
		return trim(qout), nil
	}
	return trim(qout), []uint64{rem}
}

// shlBits shifts a left by shift bits (0<=shift<64) in place, assuming a
// has enough high words to absorb the overflow.
func shlBits(a []uint64, shift int) {
	if shift == 0 {
		return
	}
	var carry uint64
	for i := range a {
		next := a[i] >> (64 - shift)
		a[i] = (a[i] << shift) | carry
		carry = next
	}
}

// shrBits shifts a right by shift bits (0<=shift<64) in place.
func shrBits(a []uint64, shift int) {
	if shift == 0 {
		return
	}
	var carry uint64
	for i := len(a) - 1; i >= 0; i-- {
		next := a[i] << (64 - shift)
		a[i] = (a[i] >> shift) | carry
		carry = next
	}
}
