// Package bigint implements fixed-precision unsigned (Uint), signed (Int),
// and Montgomery-form modular (Mod) integers over the limb/bitspan layers.
package bigint

import (
	"math/big"

	"github.com/latticeforge/ringmpc/bigint/internal/mlimb"
	"github.com/latticeforge/ringmpc/limb"
)

// Uint is a fixed-width unsigned integer (ubigint<B>). Operations return
// fresh Uints and leave their operands unchanged; plain assignment copies
// the header but shares the limb slice, while Clone always deep-copies.
type Uint struct {
	bits  int
	limbs []limb.Word
}

// NewUint constructs a zero-valued Uint of the given bit width. bits == 0
// yields the zero-size zero value per spec §3.3.
func NewUint(bits int) Uint {
	if bits < 0 {
		panic("bigint: negative bit width")
	}
	n := (bits + limb.WordBits - 1) / limb.WordBits
	return Uint{bits: bits, limbs: make([]limb.Word, n)}
}

// UintFromUint64 constructs a Uint of the minimum width needed to hold v
// (at least 1 bit), per the literal rule of spec §6.4.
func UintFromUint64(v uint64) Uint {
	bl := bitLen64(v)
	if bl == 0 {
		bl = 1
	}
	u := NewUint(bl)
	if len(u.limbs) > 0 {
		u.limbs[0] = v
	}
	return u
}

// UintFromBig constructs a Uint of the given bit width from a *big.Int,
// truncating (per the width's natural masking) if v does not fit.
func UintFromBig(v *big.Int, bits int) Uint {
	u := NewUint(bits)
	words := v.Bits()
	for i := range u.limbs {
		if i < len(words) {
			u.limbs[i] = uint64(words[i])
		}
	}
	u.maskTop()
	return u
}

func bitLen64(v uint64) int {
	n := 0
	for v != 0 {
		v >>= 1
		n++
	}
	return n
}

// BitLen returns the Uint's declared bit width (not the position of its
// highest set bit).
func (u Uint) BitLen() int { return u.bits }

// LimbCount returns the number of limbs backing u.
func (u Uint) LimbCount() int { return len(u.limbs) }

// Limb returns limb i, zero-extended beyond LimbCount().
func (u Uint) Limb(i int) limb.Word {
	if i < 0 {
		panic("bigint: negative limb index")
	}
	if i >= len(u.limbs) {
		return 0
	}
	return u.limbs[i]
}

// Clone returns a deep copy.
func (u Uint) Clone() Uint {
	out := Uint{bits: u.bits, limbs: make([]limb.Word, len(u.limbs))}
	copy(out.limbs, u.limbs)
	return out
}

func (u *Uint) topMask() limb.Word {
	n := u.bits % limb.WordBits
	if n == 0 {
		return ^limb.Word(0)
	}
	return limb.Mask(uint(n))
}

func (u *Uint) maskTop() {
	if len(u.limbs) == 0 {
		return
	}
	u.limbs[len(u.limbs)-1] &= u.topMask()
}

// Big converts u to a *big.Int.
func (u Uint) Big() *big.Int {
	out := new(big.Int)
	for i := len(u.limbs) - 1; i >= 0; i-- {
		out.Lsh(out, limb.WordBits)
		out.Or(out, new(big.Int).SetUint64(uint64(u.limbs[i])))
	}
	return out
}

// IsZero reports whether every limb of u is zero.
func (u Uint) IsZero() bool {
	for _, w := range u.limbs {
		if w != 0 {
			return false
		}
	}
	return true
}

// addWidth and mulWidth mirror spec §4.4's natural-width rules for binary operators.
func addWidth(a, b int) int { return max(a, b) + 1 }

func mulWidth(a, b int) int {
	if a == 0 || b == 0 {
		return 0
	}
	if a == 1 {
		return b
	}
	if b == 1 {
		return a
	}
	return a + b
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// Add returns a+b with width max(Ba,Bb)+1, per spec §4.4.
func Add(a, b Uint) Uint {
	out := NewUint(addWidth(a.bits, b.bits))
	var carry limb.Word
	for i := range out.limbs {
		s, c1 := limb.Add(a.Limb(i), b.Limb(i))
		s, c2 := limb.AddCarry(s, 0, carry)
		out.limbs[i] = s
		carry = c1 + c2
	}
	out.maskTop()
	return out
}

// Sub returns a-b with width max(Ba,Bb)+1, computed in two's complement
// (matches spec's "width grows by 1" rule; result must be reinterpreted as
// signed by the caller if a<b, exactly like sbigint subtraction does).
func Sub(a, b Uint) Uint {
	out := NewUint(addWidth(a.bits, b.bits))
	var borrow limb.Word
	for i := range out.limbs {
		d, b1 := limb.Sub(a.Limb(i), b.Limb(i))
		d, b2 := limb.SubBorrow(d, 0, borrow)
		out.limbs[i] = d
		borrow = b1 + b2
	}
	out.maskTop()
	return out
}

// Mul returns a*b with width per spec §4.4 (Ba+Bb, or 0/B_other for zero
// width / unit width operands), schoolbook with multiply_add accumulation.
func Mul(a, b Uint) Uint {
	out := NewUint(mulWidth(a.bits, b.bits))
	n := out.LimbCount()
	for i := 0; i < a.LimbCount() && i < n; i++ {
		var carry limb.Word
		ai := a.Limb(i)
		if ai == 0 {
			continue
		}
		for j := 0; i+j < n && j < b.LimbCount(); j++ {
			lo, hi := limb.MulAddAdd(ai, b.Limb(j), out.limbs[i+j], carry)
			out.limbs[i+j] = lo
			carry = hi
		}
		k := i + b.LimbCount()
		for carry != 0 && k < n {
			s, c := limb.Add(out.limbs[k], carry)
			out.limbs[k] = s
			carry = c
			k++
		}
	}
	out.maskTop()
	return out
}

// Shl shifts a left by s bits (compile-time constant in spec's model;
// here s is any non-negative int), growing the width by s.
func Shl(a Uint, s int) Uint {
	if s < 0 {
		panic("bigint: negative shift")
	}
	out := NewUint(a.bits + s)
	limbShift := s / limb.WordBits
	bitShift := uint(s % limb.WordBits)
	for i := out.LimbCount() - 1; i >= 0; i-- {
		srcIdx := i - limbShift
		if srcIdx < 0 {
			out.limbs[i] = 0
			continue
		}
		hi := a.Limb(srcIdx)
		var lo limb.Word
		if bitShift == 0 {
			out.limbs[i] = hi
			continue
		}
		if srcIdx-1 >= 0 {
			lo = a.Limb(srcIdx - 1)
		}
		out.limbs[i] = (hi << bitShift) | (lo >> (limb.WordBits - bitShift))
	}
	out.maskTop()
	return out
}

// Shr shifts a right by s bits logically, width unchanged.
func Shr(a Uint, s int) Uint {
	if s < 0 {
		panic("bigint: negative shift")
	}
	out := NewUint(a.bits)
	limbShift := s / limb.WordBits
	bitShift := uint(s % limb.WordBits)
	for i := 0; i < out.LimbCount(); i++ {
		srcIdx := i + limbShift
		lo := a.Limb(srcIdx)
		var hi limb.Word
		if bitShift == 0 {
			out.limbs[i] = lo
			continue
		}
		hi = a.Limb(srcIdx + 1)
		out.limbs[i] = (lo >> bitShift) | (hi << (limb.WordBits - bitShift))
	}
	out.maskTop()
	return out
}

// Compare returns -1, 0, or 1 as a<b, a==b, a>b, scanning from the most
// significant limb of the wider width, per spec §4.3.
func Compare(a, b Uint) int {
	n := max(a.LimbCount(), b.LimbCount())
	for i := n - 1; i >= 0; i-- {
		av, bv := a.Limb(i), b.Limb(i)
		if av != bv {
			if av < bv {
				return -1
			}
			return 1
		}
	}
	return 0
}

// uintFromWords builds a Uint of the given bit width from a little-endian
// magnitude, masking/truncating to that width.
func uintFromWords(words []uint64, bits int) Uint {
	u := NewUint(bits)
	for i := range u.limbs {
		if i < len(words) {
			u.limbs[i] = words[i]
		}
	}
	u.maskTop()
	return u
}

// UintFromWords builds a Uint of the given bit width from a little-endian
// []uint64 magnitude (e.g. raw keystream words), masking/truncating to that
// width. Exported for callers outside the package (csprng's uniform
// sampler) that need to fill limbs directly rather than via a *big.Int.
func UintFromWords(words []uint64, bits int) Uint {
	return uintFromWords(words, bits)
}

// DivMod performs unsigned division, compile-time/one-shot only per spec
// §4.3 ("Divide (compile-time only)"): realized here via mlimb's Knuth
// Algorithm D long division over the limb magnitudes directly, rather than
// through math/big. Panics if b is zero (programmer-contract violation).
func DivMod(a, b Uint) (q, r Uint) {
	if b.IsZero() {
		panic("bigint: division by zero")
	}
	qw, rw := mlimb.DivMod(a.limbs, b.limbs)
	return uintFromWords(qw, a.bits), uintFromWords(rw, b.bits)
}

// GCD returns gcd(a,b), compile-time-only per spec §4.3, via mlimb's binary
// GCD over the limb magnitudes.
func GCD(a, b Uint) Uint {
	g := mlimb.GCD(a.limbs, b.limbs)
	return uintFromWords(g, max(a.bits, b.bits))
}

// ExtGCD returns (g, x, y) such that a*x + b*y = g = gcd(a,b), compile-time
// only per spec §4.3, via mlimb's alternating-tuple extended GCD. x, y are
// returned as big.Int since they may be negative; callers needing a
// fixed-width Int should convert explicitly.
func ExtGCD(a, b Uint) (g, x, y *big.Int) {
	gw, xw, xNeg, yw, yNeg := mlimb.ExtGCD(a.limbs, b.limbs)
	g = uintFromWords(gw, max(a.bits, b.bits)).Big()
	x = uintFromWords(xw, a.bits+b.bits).Big()
	if xNeg {
		x.Neg(x)
	}
	y = uintFromWords(yw, a.bits+b.bits).Big()
	if yNeg {
		y.Neg(y)
	}
	return
}
