// Package ring implements RNS-accelerated modular arithmetic operations for polynomials, including:
// RNS basis extension; RNS rescaling; number theoretic transform (NTT); uniform, Gaussian and ternary sampling.
package ring

import (
	"bytes"
	"encoding/gob"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"

	"github.com/latticeforge/ringmpc/utils"
)

// Type is the type of ring used by the cryptographic scheme
type Type int

// RingStandard and RingConjugateInvariant are two types of Rings.
const (
	Standard           = Type(0) // Z[X]/(X^N + 1) (Default)
	ConjugateInvariant = Type(1) // Z[X+X^-1]/(X^2N + 1)
)

// String returns the string representation of the ring Type
func (rt Type) String() string {
	switch rt {
	case Standard:
		return "Standard"
	case ConjugateInvariant:
		return "ConjugateInvariant"
	default:
		return "Invalid"
	}
}

// UnmarshalJSON reads a JSON byte slice into the receiver Type
func (rt *Type) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	switch s {
	default:
		return fmt.Errorf("invalid ring type: %s", s)
	case "Standard":
		*rt = Standard
	case "ConjugateInvariant":
		*rt = ConjugateInvariant
	}

	return nil
}

// MarshalJSON marshals the receiver Type into a JSON []byte
func (rt Type) MarshalJSON() ([]byte, error) {
	return json.Marshal(rt.String())
}

// Ring is a structure that keeps all the variables required to operate on a
// polynomial represented in this ring. Tables holds one precomputed Table
// per modulus in the RNS basis; level selects how many of those moduli are
// currently active, so a Ring can be restricted to a lower level without
// recomputing anything (see AtLevel).
type Ring struct {
	NumberTheoreticTransformer

	Tables []Table
	level  int

	// Product of the moduli for each level.
	ModulusAtLevel []*big.Int

	// RescaleParams[j-1][i] rescales from level j down to level j-1 for modulus i.
	RescaleParams [][]uint64
}

// NewRing creates a new RNS Ring with degree N and coefficient moduli Moduli with Standard NTT. N must be a power of two larger than 8. Moduli should be
// a non-empty []uint64 with distinct prime elements. All moduli must also be equal to 1 modulo 2*N.
// An error is returned with a nil *Ring in the case of non NTT-enabling parameters.
func NewRing(N int, Moduli []uint64) (r *Ring, err error) {
	return NewRingWithCustomNTT(N, Moduli, NumberTheoreticTransformerStandard{}, 2*N)
}

// NewRingConjugateInvariant creates a new RNS Ring with degree N and coefficient moduli Moduli with Conjugate Invariant NTT. N must be a power of two larger than 8. Moduli should be
// a non-empty []uint64 with distinct prime elements. All moduli must also be equal to 1 modulo 4*N.
// An error is returned with a nil *Ring in the case of non NTT-enabling parameters.
func NewRingConjugateInvariant(N int, Moduli []uint64) (r *Ring, err error) {
	return NewRingWithCustomNTT(N, Moduli, NumberTheoreticTransformerConjugateInvariant{}, 4*N)
}

// NewRingFromType creates a new RNS Ring with degree N and coefficient moduli Moduli for which the type of NTT is determined by the ringType argument.
// If ringType==Standard, the ring is instantiated with standard NTT with the Nth root of unity 2*N. If ringType==ConjugateInvariant, the ring
// is instantiated with a ConjugateInvariant NTT with Nth root of unity 4*N. N must be a power of two larger than 8.
// Moduli should be a non-empty []uint64 with distinct prime elements. All moduli must also be equal to 1 modulo the root of unity.
// An error is returned with a nil *Ring in the case of non NTT-enabling parameters.
func NewRingFromType(N int, Moduli []uint64, ringType Type) (r *Ring, err error) {
	switch ringType {
	case Standard:
		return NewRingWithCustomNTT(N, Moduli, NumberTheoreticTransformerStandard{}, 2*N)
	case ConjugateInvariant:
		return NewRingWithCustomNTT(N, Moduli, NumberTheoreticTransformerConjugateInvariant{}, 4*N)
	default:
		return nil, fmt.Errorf("invalid ring type")
	}
}

// NewRingWithCustomNTT creates a new RNS Ring with degree N and coefficient moduli Moduli with user-defined NTT transform and primitive Nth root of unity.
// Moduli should be a non-empty []uint64 with distinct prime elements. All moduli must also be equal to 1 modulo the root of unity.
// N must be a power of two larger than 8. An error is returned with a nil *Ring in the case of non NTT-enabling parameters.
func NewRingWithCustomNTT(N int, Moduli []uint64, ntt NumberTheoreticTransformer, NthRoot int) (r *Ring, err error) {
	if (N < 16) || (N&(N-1)) != 0 && N != 0 {
		return nil, errors.New("invalid ring degree (must be a power of 2 >= 8)")
	}

	if len(Moduli) == 0 {
		return nil, errors.New("invalid modulus (must be a non-empty []uint64)")
	}

	if !utils.AllDistinct(Moduli) {
		return nil, errors.New("invalid modulus (moduli are not distinct)")
	}

	r = &Ring{
		NumberTheoreticTransformer: ntt,
		Tables:                     make([]Table, len(Moduli)),
		level:                      len(Moduli) - 1,
	}

	for i, qi := range Moduli {
		r.Tables[i] = *NewTable(N, qi)
		r.Tables[i].ntt = ntt
		if err = r.Tables[i].GenNTTParams(uint64(NthRoot)); err != nil {
			return r, err
		}
	}

	r.genModulusAtLevel()
	r.genRescaleParams()

	return r, nil
}

// AtLevel returns a shallow copy of the receiver Ring restricted to the
// given level. The copy shares the same Tables, ModulusAtLevel and
// RescaleParams backing arrays as the receiver.
func (r *Ring) AtLevel(level int) *Ring {
	return &Ring{
		NumberTheoreticTransformer: r.NumberTheoreticTransformer,
		Tables:                     r.Tables,
		level:                      level,
		ModulusAtLevel:             r.ModulusAtLevel,
		RescaleParams:              r.RescaleParams,
	}
}

// N returns the ring degree.
func (r *Ring) N() int {
	return r.Tables[0].N
}

// Level returns the current number of active moduli minus one.
func (r *Ring) Level() int {
	return r.level
}

// MaxLevel returns the maximum level the ring can be restricted to, i.e.
// the full RNS basis size minus one.
func (r *Ring) MaxLevel() int {
	return len(r.Tables) - 1
}

// NbModuli returns the current number of active moduli.
func (r *Ring) NbModuli() int {
	return r.level + 1
}

// NthRoot returns the Nth root of unity used to generate the NTT tables.
func (r *Ring) NthRoot() uint64 {
	return r.Tables[0].NthRoot
}

// ModuliChain returns the full list of moduli of the ring, independent of
// the current level.
func (r *Ring) ModuliChain() []uint64 {
	moduli := make([]uint64, len(r.Tables))
	for i := range r.Tables {
		moduli[i] = r.Tables[i].Modulus
	}
	return moduli
}

// ModuliChainLength returns the number of moduli in the full RNS basis.
func (r *Ring) ModuliChainLength() int {
	return len(r.Tables)
}

// BRedConstants returns the Barrett reduction constants of each active modulus.
func (r *Ring) BRedConstants() [][]uint64 {
	out := make([][]uint64, r.level+1)
	for i := 0; i < r.level+1; i++ {
		out[i] = r.Tables[i].BRedParams
	}
	return out
}

// MRedConstants returns the Montgomery reduction constants of each active modulus.
func (r *Ring) MRedConstants() []uint64 {
	out := make([]uint64, r.level+1)
	for i := 0; i < r.level+1; i++ {
		out[i] = r.Tables[i].MRedParams
	}
	return out
}

// ConjugateInvariantRing returns the conjugate invariant ring of the receiver ring.
// If `r.Type()==ConjugateInvariant`, then the method returns the receiver.
// if `r.Type()==Standard`, then the method returns a ring with ring degree N/2.
// The returned Ring is a shallow copy of the receiver.
func (r *Ring) ConjugateInvariantRing() (*Ring, error) {
	if r.Type() == ConjugateInvariant {
		return r, nil
	}

	moduli := r.ModuliChain()
	return NewRingWithCustomNTT(r.N()>>1, moduli, NumberTheoreticTransformerConjugateInvariant{}, r.N()<<1)
}

// StandardRing returns the standard ring of the receiver ring.
// If `r.Type()==Standard`, then the method returns the receiver.
// if `r.Type()==ConjugateInvariant`, then the method returns a ring with ring degree 2N.
// The returned Ring is a shallow copy of the receiver.
func (r *Ring) StandardRing() (*Ring, error) {
	if r.Type() == Standard {
		return r, nil
	}

	moduli := r.ModuliChain()
	return NewRingWithCustomNTT(r.N()<<1, moduli, NumberTheoreticTransformerStandard{}, r.N()<<2)
}

// Type returns the Type of the ring which might be either `Standard` or `ConjugateInvariant`.
func (r *Ring) Type() Type {
	switch r.NumberTheoreticTransformer.(type) {
	case NumberTheoreticTransformerStandard:
		return Standard
	case NumberTheoreticTransformerConjugateInvariant:
		return ConjugateInvariant
	default:
		panic("invalid NumberTheoreticTransformer type")
	}
}

// genModulusAtLevel precomputes the product of the moduli at each level.
func (r *Ring) genModulusAtLevel() {
	r.ModulusAtLevel = make([]*big.Int, len(r.Tables))
	r.ModulusAtLevel[0] = NewUint(r.Tables[0].Modulus)
	for i := 1; i < len(r.Tables); i++ {
		r.ModulusAtLevel[i] = new(big.Int).Mul(r.ModulusAtLevel[i-1], NewUint(r.Tables[i].Modulus))
	}
}

// genRescaleParams precomputes the constants used to rescale a polynomial
// from level j down to level j-1, for every level of the RNS basis.
func (r *Ring) genRescaleParams() {
	n := len(r.Tables)
	r.RescaleParams = make([][]uint64, n-1)

	for j := n - 1; j > 0; j-- {
		r.RescaleParams[j-1] = make([]uint64, j)
		qj := r.Tables[j].Modulus
		for i := 0; i < j; i++ {
			qi := r.Tables[i].Modulus
			r.RescaleParams[j-1][i] = MForm(qi-ModExp(qj, qi-2, qi), qi, r.Tables[i].BRedParams)
		}
	}
}

// Minimal required information to recover the full ring. Used to import and export the ring.
type ringParams struct {
	N       int
	NthRoot uint64
	Modulus []uint64
}

// MarshalBinary encodes the target ring on a slice of bytes.
func (r *Ring) MarshalBinary() ([]byte, error) {

	parameters := ringParams{r.N(), r.NthRoot(), r.ModuliChain()}

	var buf bytes.Buffer
	enc := gob.NewEncoder(&buf)
	if err := enc.Encode(parameters); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalBinary decodes a slice of bytes on the target Ring.
func (r *Ring) UnmarshalBinary(data []byte) error {

	parameters := ringParams{}

	reader := bytes.NewReader(data)
	dec := gob.NewDecoder(reader)
	if err := dec.Decode(&parameters); err != nil {
		return err
	}

	nr, err := NewRingWithCustomNTT(parameters.N, parameters.Modulus, r.NumberTheoreticTransformer, int(parameters.NthRoot))
	if err != nil {
		return err
	}
	*r = *nr

	return nil
}

// NewPoly creates a new polynomial with all coefficients set to 0, sized for
// the ring's current level.
func (r *Ring) NewPoly() Poly {
	return NewPoly(r.N(), r.level)
}

// NewPolyLvl creates a new polynomial with all coefficients set to 0, sized
// for the given level.
func (r *Ring) NewPolyLvl(level int) Poly {
	return NewPoly(r.N(), level)
}

// SetCoefficientsInt64 sets the coefficients of p1 from an int64 array.
func (r *Ring) SetCoefficientsInt64(coeffs []int64, p1 Poly) {
	for i, coeff := range coeffs {
		for j := 0; j < r.level+1; j++ {
			Qi := r.Tables[j].Modulus
			p1.Coeffs[j][i] = CRed(uint64((coeff%int64(Qi) + int64(Qi))), Qi)
		}
	}
}

// SetCoefficientsUint64 sets the coefficients of p1 from an uint64 array.
func (r *Ring) SetCoefficientsUint64(coeffs []uint64, p1 Poly) {
	for i, coeff := range coeffs {
		for j := 0; j < r.level+1; j++ {
			Qi := r.Tables[j].Modulus
			p1.Coeffs[j][i] = coeff % Qi
		}
	}
}

// SetCoefficientsString parses an array of string as Int variables, and sets the
// coefficients of p1 with these Int variables.
func (r *Ring) SetCoefficientsString(coeffs []string, p1 Poly) {
	QiBigint := new(big.Int)
	coeffTmp := new(big.Int)
	for i := 0; i < r.level+1; i++ {
		QiBigint.SetUint64(r.Tables[i].Modulus)
		for j, coeff := range coeffs {
			p1.Coeffs[i][j] = coeffTmp.Mod(NewIntFromString(coeff), QiBigint).Uint64()
		}
	}
}

// SetCoefficientsBigint sets the coefficients of p1 from an array of Int variables.
func (r *Ring) SetCoefficientsBigint(coeffs []*big.Int, p1 Poly) {
	r.SetCoefficientsBigintLvl(r.level, coeffs, p1)
}

// SetCoefficientsBigintLvl sets the coefficients of p1 from an array of Int variables.
func (r *Ring) SetCoefficientsBigintLvl(level int, coeffs []*big.Int, p1 Poly) {

	QiBigint := new(big.Int)
	coeffTmp := new(big.Int)
	for i := 0; i < level+1; i++ {
		QiBigint.SetUint64(r.Tables[i].Modulus)
		for j, coeff := range coeffs {
			p1.Coeffs[i][j] = coeffTmp.Mod(coeff, QiBigint).Uint64()
		}
	}
}

// PolyToString reconstructs p1 and returns the result in an array of string.
func (r *Ring) PolyToString(p1 Poly) []string {

	N := r.N()
	coeffsBigint := make([]*big.Int, N)
	r.PolyToBigint(p1, 1, coeffsBigint)
	coeffsString := make([]string, len(coeffsBigint))

	for i := range coeffsBigint {
		coeffsString[i] = coeffsBigint[i].String()
	}

	return coeffsString
}

// PolyToBigint reconstructs p1 and returns the result in an array of Int.
// gap defines coefficients X^{i*gap} that will be reconstructed.
// For example, if gap = 1, then all coefficients are reconstructed, while
// if gap = 2 then only coefficients X^{2*i} are reconstructed.
func (r *Ring) PolyToBigint(p1 Poly, gap int, coeffsBigint []*big.Int) {
	r.PolyToBigintLvl(p1.Level(), p1, gap, coeffsBigint)
}

// PolyToBigintLvl reconstructs p1 and returns the result in an array of Int.
// gap defines coefficients X^{i*gap} that will be reconstructed.
// For example, if gap = 1, then all coefficients are reconstructed, while
// if gap = 2 then only coefficients X^{2*i} are reconstructed.
func (r *Ring) PolyToBigintLvl(level int, p1 Poly, gap int, coeffsBigint []*big.Int) {

	N := r.N()
	crtReconstruction := make([]*big.Int, level+1)

	QiB := new(big.Int)
	tmp := new(big.Int)
	modulusBigint := r.ModulusAtLevel[level]

	for i := 0; i < level+1; i++ {
		QiB.SetUint64(r.Tables[i].Modulus)
		crtReconstruction[i] = new(big.Int).Quo(modulusBigint, QiB)
		tmp.ModInverse(crtReconstruction[i], QiB)
		tmp.Mod(tmp, QiB)
		crtReconstruction[i].Mul(crtReconstruction[i], tmp)
	}

	for i, j := 0, 0; j < N; i, j = i+1, j+gap {

		tmp.SetUint64(0)
		coeffsBigint[i] = new(big.Int)

		for k := 0; k < level+1; k++ {
			coeffsBigint[i].Add(coeffsBigint[i], tmp.Mul(NewUint(p1.Coeffs[k][j]), crtReconstruction[k]))
		}

		coeffsBigint[i].Mod(coeffsBigint[i], modulusBigint)
	}
}

// PolyToBigintCenteredLvl reconstructs p1 and returns the result in an array of Int.
// Coefficients are centered around Q/2
// gap defines coefficients X^{i*gap} that will be reconstructed.
// For example, if gap = 1, then all coefficients are reconstructed, while
// if gap = 2 then only coefficients X^{2*i} are reconstructed.
func (r *Ring) PolyToBigintCenteredLvl(level int, p1 Poly, gap int, coeffsBigint []*big.Int) {

	N := r.N()
	crtReconstruction := make([]*big.Int, level+1)

	QiB := new(big.Int)
	tmp := new(big.Int)
	modulusBigint := r.ModulusAtLevel[level]

	for i := 0; i < level+1; i++ {
		QiB.SetUint64(r.Tables[i].Modulus)
		crtReconstruction[i] = new(big.Int).Quo(modulusBigint, QiB)
		tmp.ModInverse(crtReconstruction[i], QiB)
		tmp.Mod(tmp, QiB)
		crtReconstruction[i].Mul(crtReconstruction[i], tmp)
	}

	modulusBigintHalf := new(big.Int)
	modulusBigintHalf.Rsh(modulusBigint, 1)

	var sign int
	for i, j := 0, 0; j < N; i, j = i+1, j+gap {

		tmp.SetUint64(0)
		coeffsBigint[i].SetUint64(0)

		for k := 0; k < level+1; k++ {
			coeffsBigint[i].Add(coeffsBigint[i], tmp.Mul(NewUint(p1.Coeffs[k][j]), crtReconstruction[k]))
		}

		coeffsBigint[i].Mod(coeffsBigint[i], modulusBigint)

		// Centers the coefficients
		sign = coeffsBigint[i].Cmp(modulusBigintHalf)

		if sign == 1 || sign == 0 {
			coeffsBigint[i].Sub(coeffsBigint[i], modulusBigint)
		}
	}
}

// Equal checks if p1 = p2 in the given Ring.
func (r *Ring) Equal(p1, p2 Poly) bool {

	N := r.N()
	for i := 0; i < r.level+1; i++ {
		if len(p1.Coeffs[i]) != len(p2.Coeffs[i]) {
			return false
		}
	}

	r.Reduce(p1, p1)
	r.Reduce(p2, p2)

	for i := 0; i < r.level+1; i++ {
		for j := 0; j < N; j++ {
			if p1.Coeffs[i][j] != p2.Coeffs[i][j] {
				return false
			}
		}
	}

	return true
}

// EqualLvl checks if p1 = p2 in the given Ring, up to a given level.
func (r *Ring) EqualLvl(level int, p1, p2 Poly) bool {
	return r.AtLevel(level).Equal(p1, p2)
}
