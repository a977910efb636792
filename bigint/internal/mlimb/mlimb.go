// Package mlimb implements the multi-limb numeric kernels of spec §4.3:
// long division, binary GCD, and the alternating-tuple extended GCD, all
// operating directly on little-endian []uint64 magnitudes rather than
// delegating to math/big. bigint.Uint and bigint.Mod call into this package
// for their one-shot, construction-time numeric routines; the hot-path
// arithmetic (add/sub/mul/Montgomery REDC) stays in the bigint package
// itself, built on limb.
package mlimb

import "math/bits"

// trim returns the shortest prefix of a with no nonzero high words beyond
// the returned length; it does not allocate.
func trim(a []uint64) []uint64 {
	n := len(a)
	for n > 0 && a[n-1] == 0 {
		n--
	}
	return a[:n]
}

// IsZero reports whether every word of a is zero.
func IsZero(a []uint64) bool {
	for _, w := range a {
		if w != 0 {
			return false
		}
	}
	return true
}

// Cmp compares a and b as unsigned magnitudes, ignoring trailing (high)
// zero words, returning -1, 0, or 1.
func Cmp(a, b []uint64) int {
	a, b = trim(a), trim(b)
	if len(a) != len(b) {
		if len(a) < len(b) {
			return -1
		}
		return 1
	}
	for i := len(a) - 1; i >= 0; i-- {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}

// add sets dst = a+b (dst sized to hold the larger of a, b, plus a final
// carry word which callers must account for in dst's length) and returns
// the carry out of the top word.
func add(dst, a, b []uint64) uint64 {
	var carry uint64
	n := len(dst)
	for i := 0; i < n; i++ {
		var av, bv uint64
		if i < len(a) {
			av = a[i]
		}
		if i < len(b) {
			bv = b[i]
		}
		s, c := bits.Add64(av, bv, carry)
		dst[i] = s
		carry = c
	}
	return carry
}

// sub sets dst = a-b assuming a >= b (both trimmed to dst's length) and
// returns the borrow (0 if a>=b held).
func sub(dst, a, b []uint64) uint64 {
	var borrow uint64
	n := len(dst)
	for i := 0; i < n; i++ {
		var av, bv uint64
		if i < len(a) {
			av = a[i]
		}
		if i < len(b) {
			bv = b[i]
		}
		d, bo := bits.Sub64(av, bv, borrow)
		dst[i] = d
		borrow = bo
	}
	return borrow
}

// shr1 shifts a right by one bit in place and returns the bit shifted out.
func shr1(a []uint64) uint64 {
	var carry uint64
	for i := len(a) - 1; i >= 0; i-- {
		next := a[i] & 1
		a[i] = (a[i] >> 1) | (carry << 63)
		carry = next
	}
	return carry
}

// shl1 shifts a left by one bit in place, into a buffer one word longer
// than the input if needed; returns the bit shifted out of the top word.
func shl1(a []uint64) uint64 {
	var carry uint64
	for i := range a {
		next := a[i] >> 63
		a[i] = (a[i] << 1) | carry
		carry = next
	}
	return carry
}

// trailingZeroWords counts the low all-zero words of a.
func trailingZeroWords(a []uint64) int {
	n := 0
	for n < len(a) && a[n] == 0 {
		n++
	}
	return n
}

// TrailingZeros returns the number of trailing zero bits in a (countr_zero
// of the whole multi-word value), or len(a)*64 if a is all-zero.
func TrailingZeros(a []uint64) int {
	w := trailingZeroWords(a)
	if w == len(a) {
		return len(a) * 64
	}
	return w*64 + bits.TrailingZeros64(a[w])
}
