package mlimb

import "math/bits"

// GCD returns gcd(a, b) via Stein's binary algorithm (countr_zero-driven,
// no division), per spec §4.3.
func GCD(a, b []uint64) []uint64 {
	a, b = trim(append([]uint64(nil), a...)), trim(append([]uint64(nil), b...))
	if IsZero(a) {
		return b
	}
	if IsZero(b) {
		return a
	}

	za, zb := TrailingZeros(a), TrailingZeros(b)
	shift := za
	if zb < shift {
		shift = zb
	}
	a = ShiftRight(a, za)
	b = ShiftRight(b, zb)

	for {
		if Cmp(a, b) > 0 {
			a, b = b, a
		}
		b = subMag(b, a)
		if IsZero(b) {
			break
		}
		b = ShiftRight(b, TrailingZeros(b))
	}
	return ShiftLeft(a, shift)
}

// ShiftRight returns a copy of a shifted right by n bits (trimmed).
func ShiftRight(a []uint64, n int) []uint64 {
	if n == 0 {
		return trim(append([]uint64(nil), a...))
	}
	wordShift := n / 64
	bitShift := n % 64
	if wordShift >= len(a) {
		return nil
	}
	out := append([]uint64(nil), a[wordShift:]...)
	shrBits(out, bitShift)
	return trim(out)
}

// ShiftLeft returns a copy of a shifted left by n bits (trimmed).
func ShiftLeft(a []uint64, n int) []uint64 {
	if n == 0 {
		return trim(append([]uint64(nil), a...))
	}
	wordShift := n / 64
	bitShift := n % 64
	out := make([]uint64, len(a)+wordShift+1)
	copy(out[wordShift:], a)
	if bitShift > 0 {
		shlBits(out[wordShift:], bitShift)
	}
	return trim(out)
}

// subMag returns a-b assuming a>=b.
func subMag(a, b []uint64) []uint64 {
	out := make([]uint64, len(a))
	sub(out, a, b)
	return trim(out)
}

// addMag returns a+b.
func addMag(a, b []uint64) []uint64 {
	n := len(a)
	if len(b) > n {
		n = len(b)
	}
	out := make([]uint64, n+1)
	carry := add(out[:n], a, b)
	out[n] = carry
	return trim(out)
}

// mulMag returns a*b, schoolbook.
func mulMag(a, b []uint64) []uint64 {
	a, b = trim(a), trim(b)
	if len(a) == 0 || len(b) == 0 {
		return nil
	}
	out := make([]uint64, len(a)+len(b))
	for i, av := range a {
		if av == 0 {
			continue
		}
		var carry uint64
		for j, bv := range b {
			hi, lo := bits.Mul64(av, bv)
			lo, c0 := bits.Add64(lo, out[i+j], 0)
			lo, c1 := bits.Add64(lo, carry, 0)
			out[i+j] = lo
			carry = hi + c0 + c1
		}
		k := i + len(b)
		for carry != 0 {
			s, c := bits.Add64(out[k], carry, 0)
			out[k] = s
			carry = c
			k++
		}
	}
	return trim(out)
}

// signed is a nonnegative magnitude paired with a sign bit, the
// "alternating tuple" representation spec §4.3 calls for: every update is
// an unsigned add or subtract on the magnitude, with the sign tracked
// out-of-band instead of via two's-complement borrow.
type signed struct {
	mag []uint64
	neg bool
}

func (s signed) add(o signed) signed {
	if s.neg == o.neg {
		return signed{mag: addMag(s.mag, o.mag), neg: s.neg}
	}
	switch Cmp(s.mag, o.mag) {
	case 0:
		return signed{mag: nil, neg: false}
	case 1:
		return signed{mag: subMag(s.mag, o.mag), neg: s.neg}
	default:
		return signed{mag: subMag(o.mag, s.mag), neg: o.neg}
	}
}

func (s signed) sub(o signed) signed {
	return s.add(signed{mag: o.mag, neg: !o.neg && !IsZero(o.mag)})
}

func (s signed) mulMagBy(q []uint64) signed {
	return signed{mag: mulMag(s.mag, q), neg: s.neg}
}

// ExtGCD returns g, x, y, xNeg, yNeg such that g = gcd(a,b) and
// a*x' + b*y' = g where x' = x (negated if xNeg) and y' = y (negated if
// yNeg). It runs the standard Euclidean recurrence, but represents the
// Bezout coefficients as the two alternating (magnitude, sign) tuples of
// spec §4.3 rather than as two's-complement signed integers, so every
// intermediate update is an unsigned magnitude add or subtract.
func ExtGCD(a, b []uint64) (g []uint64, x []uint64, xNeg bool, y []uint64, yNeg bool) {
	r0, r1 := trim(append([]uint64(nil), a...)), trim(append([]uint64(nil), b...))

	s0 := signed{mag: []uint64{1}}
	s1 := signed{}
	t0 := signed{}
	t1 := signed{mag: []uint64{1}}

	for !IsZero(r1) {
		q, r2 := DivMod(r0, r1)
		newS := s0.sub(s1.mulMagBy(q))
		newT := t0.sub(t1.mulMagBy(q))
		r0, r1 = r1, r2
		s0, s1 = s1, newS
		t0, t1 = t1, newT
	}

	return r0, s0.mag, s0.neg, t0.mag, t0.neg
}
