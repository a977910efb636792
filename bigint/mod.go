package bigint

import (
	"fmt"
	"math/big"

	"github.com/latticeforge/ringmpc/limb"
)

// Modulus is the compile-time-constructed parameter set for mod<Q>: the
// modulus itself plus the derived Montgomery constants of spec §3.4. It is
// built once by NewModulus and then shared read-only by every Mod value
// over that Q.
type Modulus struct {
	q       Uint
	k       int // limb count of Q
	qInvNeg limb.Word // -Q^-1 mod 2^64 (CIOS Montgomery constant)
	rModQ   Uint       // R mod Q
	r2ModQ  Uint       // R^2 mod Q
	r3ModQ  Uint       // R^3 mod Q
}

// NewModulus constructs the Montgomery parameter set for Q. Q must be odd
// (equivalently gcd(R,Q)=1 since R is a power of two) and non-zero; either
// violation is a numerical-exactness failure reported at construction time
// per spec §7, not a runtime assertion deep in arithmetic.
func NewModulus(qBig *big.Int) *Modulus {
	if qBig.Sign() <= 0 {
		panic("bigint: modulus must be > 0")
	}
	if qBig.Bit(0) == 0 {
		panic("bigint: modulus must be odd (gcd(R,Q)=1 required)")
	}
	bits := qBig.BitLen()
	k := LimbCount(bits)
	if k == 0 {
		k = 1
	}
	m := &Modulus{q: UintFromBig(qBig, k*limb.WordBits), k: k}
	m.qInvNeg = negInvModB(m.q.Limb(0))

	r := new(big.Int).Lsh(big.NewInt(1), uint(k*limb.WordBits))
	rModQ := new(big.Int).Mod(r, qBig)
	r2 := new(big.Int).Mod(new(big.Int).Mul(rModQ, rModQ), qBig)
	r3 := new(big.Int).Mod(new(big.Int).Mul(r2, rModQ), qBig)

	m.rModQ = UintFromBig(rModQ, k*limb.WordBits)
	m.r2ModQ = UintFromBig(r2, k*limb.WordBits)
	m.r3ModQ = UintFromBig(r3, k*limb.WordBits)
	return m
}

// negInvModB returns -q0^-1 mod 2^64 for odd q0, by Newton-Raphson
// iteration on the 2-adic inverse, doubling precision each round.
func negInvModB(q0 limb.Word) limb.Word {
	x := q0 // correct mod 2^3
	for i := 0; i < 5; i++ {
		x = x * (2 - q0*x)
	}
	return -x
}

// Bits returns the declared bit width of Q (k*WordBits).
func (m *Modulus) Bits() int { return m.k * limb.WordBits }

// Q returns the modulus as a *big.Int.
func (m *Modulus) Q() *big.Int { return m.q.Big() }

// Mod is an element of Z_Q stored in Montgomery form: value = x*R mod Q.
type Mod struct {
	m   *Modulus
	rep Uint // Montgomery representative, in [0, Q)
}

// NewMod converts v (an ordinary residue, reduced mod Q) into Montgomery
// form by one Montgomery multiplication by R^2 mod Q.
func (m *Modulus) NewMod(v *big.Int) Mod {
	vv := new(big.Int).Mod(v, m.Q())
	x := UintFromBig(vv, m.Bits())
	return Mod{m: m, rep: m.montMul(x, m.r2ModQ)}
}

// Zero returns the additive identity of Z_Q.
func (m *Modulus) Zero() Mod { return Mod{m: m, rep: NewUint(m.Bits())} }

// One returns the multiplicative identity of Z_Q (Montgomery form of 1 is
// R mod Q).
func (m *Modulus) One() Mod { return Mod{m: m, rep: m.rModQ.Clone()} }

// montMul computes a*b*R^-1 mod Q via schoolbook multiply-then-REDC
// (separate multiply step kept distinct from REDC to mirror spec §4.3's
// "Montgomery reduction: given T < R*Q, compute T*R^-1 mod Q").
func (m *Modulus) montMul(a, b Uint) Uint {
	t := Mul(a, b) // up to 2k limbs
	return m.redc(t)
}

// redc implements multi-precision CIOS REDC: T (up to 2k limbs, T < R*Q)
// reduces to T*R^-1 mod Q, returned in [0, Q).
func (m *Modulus) redc(t Uint) Uint {
	k := m.k
	buf := make([]limb.Word, 2*k+2)
	for i := 0; i < 2*k; i++ {
		buf[i] = t.Limb(i)
	}

	for i := 0; i < k; i++ {
		mLimb := buf[i] * m.qInvNeg
		var carry limb.Word
		for j := 0; j < k; j++ {
			lo, hi := limb.MulAddAdd(mLimb, m.q.Limb(j), buf[i+j], carry)
			buf[i+j] = lo
			carry = hi
		}
		// propagate carry into the remaining buffer
		idx := i + k
		for carry != 0 {
			s, c := limb.Add(buf[idx], carry)
			buf[idx] = s
			carry = c
			idx++
		}
	}

	out := NewUint(k * limb.WordBits)
	copy(out.limbs, buf[k:2*k])

	// final conditional subtraction(s): buf[2k] holds any residual carry
	// from the reduction, which (together with one subtract of Q) brings
	// the result into [0, Q).
	if buf[2*k] != 0 {
		out = subMod(out, m.q)
	}
	if Compare(out, m.q) >= 0 {
		out = subMod(out, m.q)
	}
	return out
}

// subMod computes a-b assuming a>=b, without growing width (internal
// helper; unlike the public Sub it does not track a signed result).
func subMod(a, b Uint) Uint {
	out := NewUint(a.bits)
	var borrow limb.Word
	for i := range out.limbs {
		d, b1 := limb.Sub(a.Limb(i), b.Limb(i))
		d, b2 := limb.SubBorrow(d, 0, borrow)
		out.limbs[i] = d
		borrow = b1 + b2
	}
	return out
}

func addNoGrow(a, b Uint) (Uint, limb.Word) {
	out := NewUint(a.bits)
	var carry limb.Word
	for i := range out.limbs {
		s, c1 := limb.Add(a.Limb(i), b.Limb(i))
		s, c2 := limb.AddCarry(s, 0, carry)
		out.limbs[i] = s
		carry = c1 + c2
	}
	return out, carry
}

// AddMod returns a+b, using a masked conditional subtraction of Q so the
// branch is expressed as a mask, not an `if`, per spec §4.4.
func AddMod(a, b Mod) Mod {
	if a.m != b.m {
		panic("bigint: mismatched moduli")
	}
	sum, carry := addNoGrow(a.rep, b.rep)
	overQ := carry != 0 || Compare(sum, a.m.q) >= 0
	reduced := subMod(sum, a.m.q)
	return Mod{m: a.m, rep: maskedSelect(boolMask(overQ), sum, reduced)}
}

// SubMod returns a-b, adding Q back once using the borrow bit as a mask.
func SubMod(a, b Mod) Mod {
	if a.m != b.m {
		panic("bigint: mismatched moduli")
	}
	out := NewUint(a.rep.bits)
	var borrow limb.Word
	for i := range out.limbs {
		d, b1 := limb.Sub(a.rep.Limb(i), b.rep.Limb(i))
		d, b2 := limb.SubBorrow(d, 0, borrow)
		out.limbs[i] = d
		borrow = b1 + b2
	}
	mask := boolMask(borrow != 0)
	corrected, _ := addNoGrow(out, maskedValue(mask, a.m.q))
	return Mod{m: a.m, rep: maskedSelect(mask, out, corrected)}
}

// MulMod returns a*b via Montgomery multiplication.
func MulMod(a, b Mod) Mod {
	if a.m != b.m {
		panic("bigint: mismatched moduli")
	}
	return Mod{m: a.m, rep: a.m.montMul(a.rep, b.rep)}
}

// NegMod returns -a, via a masked subtract of a from Q*[a!=0].
func NegMod(a Mod) Mod {
	nz := !a.rep.IsZero()
	qOrZero := maskedValue(boolMask(nz), a.m.q)
	return Mod{m: a.m, rep: subMod(qOrZero, a.rep)}
}

func boolMask(b bool) limb.Word {
	if b {
		return ^limb.Word(0)
	}
	return 0
}

func maskedValue(mask limb.Word, v Uint) Uint {
	out := NewUint(v.bits)
	for i := range out.limbs {
		out.limbs[i] = mask & v.Limb(i)
	}
	return out
}

func maskedSelect(mask limb.Word, a, b Uint) Uint {
	out := NewUint(a.bits)
	for i := range out.limbs {
		out.limbs[i] = limb.Select(mask, a.Limb(i), b.Limb(i))
	}
	return out
}

// Invert returns a^-1, via extended GCD (mlimb.ExtGCD) on the Montgomery
// representative a·R, which yields a^-1·R^-1, followed by one Montgomery
// multiplication by R^3 mod Q, which lands on a^-1·R, the Montgomery form
// of the inverse. Compile-time only: this is a one-shot construction-time
// operation (e.g. deriving a public-key inverse), not part of the
// per-ciphertext hot path.
func Invert(a Mod) Mod {
	if a.rep.IsZero() {
		panic("bigint: invert of zero")
	}
	g, x, _ := ExtGCD(a.rep, a.m.q)
	if g.Cmp(big.NewInt(1)) != 0 {
		panic("bigint: modulus not coprime with value, invert undefined")
	}
	inv := new(big.Int).Mod(x, a.m.Q())
	invUint := UintFromBig(inv, a.m.Bits())
	return Mod{m: a.m, rep: a.m.montMul(invUint, a.m.r3ModQ)}
}

// Pow returns a^e for a compile-time-known exponent e (square-and-multiply
// over e's bits, per spec §4.4).
func Pow(a Mod, e *big.Int) Mod {
	result := a.m.One()
	base := a
	for i := 0; i < e.BitLen(); i++ {
		if e.Bit(i) == 1 {
			result = MulMod(result, base)
		}
		base = MulMod(base, base)
	}
	return result
}

// Standard converts a Mod back to its ordinary (non-Montgomery) *big.Int
// representative, via one Montgomery multiplication by 1.
func (a Mod) Standard() *big.Int {
	one := NewUint(a.m.Bits())
	if len(one.limbs) > 0 {
		one.limbs[0] = 1
	}
	return a.m.montMul(a.rep, one).Big()
}

func (a Mod) String() string { return fmt.Sprintf("Mod(%s mod %s)", a.Standard(), a.m.Q()) }

// Equal reports whether a and b denote the same residue under the same
// modulus.
func Equal(a, b Mod) bool {
	return a.m == b.m && Compare(a.rep, b.rep) == 0
}
