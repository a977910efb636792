// Package limb implements single-word arithmetic with explicit carry/borrow
// propagation, the primitive the rest of the numeric stack is built on.
package limb

import (
	"math/bits"

	"github.com/klauspost/cpuid/v2"
)

// Word is one machine limb.
type Word = uint64

// WordBits is the bit width of a Word.
const WordBits = 64

// hasADX records whether the host CPU advertises ADX/BMI2, queried once at
// package init. Only the portable bits.Mul64 path is implemented below; a
// caller that wants to know whether a faster path is even possible on this
// host can query HasADX, but Add/Mul/etc. behave identically either way.
var hasADX = cpuid.CPU.Supports(cpuid.ADX, cpuid.BMI2)

// HasADX reports whether the host CPU supports the ADX+BMI2 instruction
// pairs an assembly limb kernel could use. The pure-Go kernels in this
// package do not branch on it; it exists so callers that care about
// constant-time guarantees on a given host can make an informed choice.
func HasADX() bool { return hasADX }

// Add returns x+y and the carry out of the top bit.
func Add(x, y Word) (sum, carry Word) {
	s, c := bits.Add64(x, y, 0)
	return s, c
}

// AddCarry returns x+y+carryIn and the carry out of the top bit.
func AddCarry(x, y, carryIn Word) (sum, carry Word) {
	s, c := bits.Add64(x, y, carryIn)
	return s, c
}

// Sub returns x-y and the borrow out of the top bit.
func Sub(x, y Word) (diff, borrow Word) {
	d, b := bits.Sub64(x, y, 0)
	return d, b
}

// SubBorrow returns x-y-borrowIn and the borrow out of the top bit.
func SubBorrow(x, y, borrowIn Word) (diff, borrow Word) {
	d, b := bits.Sub64(x, y, borrowIn)
	return d, b
}

// Mul returns the full 128-bit product of x and y as (low, high).
func Mul(x, y Word) (lo, hi Word) {
	hi, lo = bits.Mul64(x, y)
	return lo, hi
}

// MulAddAdd computes x*y + a + b without overflow, returning (low, high).
// This is the primitive the multi-limb Montgomery reducer (bigint) uses to
// accumulate a_i*b_j + r_{i+j} + carry in one step.
func MulAddAdd(x, y, a, b Word) (lo, hi Word) {
	hi, lo = bits.Mul64(x, y)
	var c0, c1 Word
	lo, c0 = bits.Add64(lo, a, 0)
	lo, c1 = bits.Add64(lo, b, 0)
	hi += c0 + c1
	return lo, hi
}

// And, Or, Xor, Not are provided for symmetry with §3.1's limb primitive
// list; Go's operators already cover them inline, but a shared name lets
// call sites read uniformly alongside Add/Sub/Mul.
func And(x, y Word) Word { return x & y }
func Or(x, y Word) Word  { return x | y }
func Xor(x, y Word) Word { return x ^ y }
func Not(x Word) Word    { return ^x }

// Shl shifts x left by s bits (0 <= s < WordBits).
func Shl(x Word, s uint) Word { return x << s }

// Shr shifts x right by s bits (0 <= s < WordBits).
func Shr(x Word, s uint) Word { return x >> s }

// Rotl rotates x left by s bits.
func Rotl(x Word, s uint) Word { return bits.RotateLeft64(x, int(s)) }

// Rotr rotates x right by s bits.
func Rotr(x Word, s uint) Word { return bits.RotateLeft64(x, -int(s)) }

// Mask returns a Word with its lowest n bits set (n in [0, WordBits]).
func Mask(n uint) Word {
	if n >= WordBits {
		return ^Word(0)
	}
	if n == 0 {
		return 0
	}
	return (Word(1) << n) - 1
}

// Select returns a lane-wise choice between x and y using a boolean bit-mask
// m that must be all-ones (select y) or all-zero (select x). This is the
// single-word building block bitspan.Select composes over a limb buffer.
func Select(mask, x, y Word) Word {
	return (mask & y) | (^mask & x)
}
