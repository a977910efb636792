package bigint

import (
	"math/big"

	"github.com/latticeforge/ringmpc/limb"
)

// Int is a fixed-width signed integer (sbigint<B>), stored in two's
// complement across its limb buffer, per spec §3.3/§4.4.
type Int struct {
	u Uint
}

// NewInt constructs a zero-valued Int of the given bit width.
func NewInt(bits int) Int { return Int{u: NewUint(bits)} }

// IntFromInt64 constructs an Int of the minimum width representing v.
func IntFromInt64(v int64) Int {
	bl := 1
	x := v
	if x < 0 {
		x = ^x
	}
	for x != 0 {
		x >>= 1
		bl++
	}
	out := NewInt(bl)
	if len(out.u.limbs) > 0 {
		out.u.limbs[0] = uint64(v)
	}
	out.signExtend()
	return out
}

// IntFromBig constructs an Int of the given bit width from v (two's
// complement truncation if v does not fit).
func IntFromBig(v *big.Int, bits int) Int {
	mod := new(big.Int).Lsh(big.NewInt(1), uint(bits))
	vv := new(big.Int).Mod(v, mod)
	out := Int{u: UintFromBig(vv, bits)}
	return out
}

func (x Int) BitLen() int     { return x.u.bits }
func (x Int) LimbCount() int  { return x.u.LimbCount() }
func (x Int) Limb(i int) limb.Word { return x.u.Limb(i) }
func (x Int) Clone() Int      { return Int{u: x.u.Clone()} }

// SignMask returns all-ones if x is negative, else 0.
func (x Int) SignMask() limb.Word {
	if x.u.bits == 0 {
		return 0
	}
	top := x.u.Limb(x.u.LimbCount() - 1)
	pos := uint((x.u.bits - 1) % limb.WordBits)
	if (top>>pos)&1 == 1 {
		return ^limb.Word(0)
	}
	return 0
}

func (x *Int) signExtend() {
	mask := x.SignMask()
	n := x.u.LimbCount()
	topBits := x.u.bits % limb.WordBits
	if topBits == 0 {
		topBits = limb.WordBits
	}
	if n == 0 {
		return
	}
	keep := limb.Mask(uint(topBits))
	x.u.limbs[n-1] = (x.u.limbs[n-1] & keep) | (mask &^ keep)
}

// ExtendedRead returns limb i, sign-extended beyond the Int's own limb count.
func (x Int) ExtendedRead(i int) limb.Word {
	if i < x.LimbCount() {
		return x.Limb(i)
	}
	return x.SignMask()
}

// Big converts x to a signed *big.Int.
func (x Int) Big() *big.Int {
	u := x.u.Clone()
	u.maskTop()
	v := u.Big()
	if x.SignMask() != 0 {
		mod := new(big.Int).Lsh(big.NewInt(1), uint(x.u.bits))
		v.Sub(v, mod)
	}
	return v
}

func (x Int) IsZero() bool { return x.u.IsZero() }

// AddInt returns a+b, width max(Ba,Bb)+1, sign-extending each operand to the
// output width before ripple-adding (so the result is correctly signed).
func AddInt(a, b Int) Int {
	w := addWidth(a.u.bits, b.u.bits)
	out := NewInt(w)
	var carry limb.Word
	for i := range out.u.limbs {
		s, c1 := limb.Add(a.ExtendedRead(i), b.ExtendedRead(i))
		s, c2 := limb.AddCarry(s, 0, carry)
		out.u.limbs[i] = s
		carry = c1 + c2
	}
	out.signExtend()
	return out
}

// SubInt returns a-b, width max(Ba,Bb)+1.
func SubInt(a, b Int) Int {
	w := addWidth(a.u.bits, b.u.bits)
	out := NewInt(w)
	var borrow limb.Word
	for i := range out.u.limbs {
		d, b1 := limb.Sub(a.ExtendedRead(i), b.ExtendedRead(i))
		d, b2 := limb.SubBorrow(d, 0, borrow)
		out.u.limbs[i] = d
		borrow = b1 + b2
	}
	out.signExtend()
	return out
}

// Neg returns -x as a plain subtract-from-zero (SubInt of a zero Int and
// x), so there is no branch on the sign; the result is one bit wider than x.
func Neg(x Int) Int {
	zero := NewInt(x.u.bits)
	return SubInt(zero, x)
}

// MulInt returns a*b, width Ba+Bb (or the 0/unit-width special cases of
// §4.4), via sign-magnitude schoolbook multiply and a final conditional
// negation selected by the xor of input signs.
func MulInt(a, b Int) Int {
	w := mulWidth(a.u.bits, b.u.bits)
	aNeg, bNeg := a.SignMask() != 0, b.SignMask() != 0
	am, bm := a, b
	if aNeg {
		am = Neg(a)
	}
	if bNeg {
		bm = Neg(b)
	}
	prod := Mul(am.u, bm.u)
	out := Int{u: NewUint(w)}
	copy(out.u.limbs, prod.limbs)
	out.u.maskTop()
	if aNeg != bNeg {
		out = Neg(out)
	}
	return out
}

// CompareInt returns -1, 0, 1 comparing the sign relationship first, then
// scanning from the most significant limb, per spec §4.3.
func CompareInt(a, b Int) int {
	as, bs := a.SignMask() != 0, b.SignMask() != 0
	if as != bs {
		if as {
			return -1
		}
		return 1
	}
	n := max(a.LimbCount(), b.LimbCount())
	for i := n - 1; i >= 0; i-- {
		av, bv := a.ExtendedRead(i), b.ExtendedRead(i)
		if av != bv {
			if av < bv {
				return -1
			}
			return 1
		}
	}
	return 0
}
