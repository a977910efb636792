package rlwe

import (
	"fmt"

	"github.com/latticeforge/ringmpc/ring"
)

// Plaintext is a generic type for RLWE plaintexts: a single polynomial plus
// the MetaData (NTT domain flag, scale) describing how to interpret it.
type Plaintext struct {
	*MetaData
	Value ring.Poly
}

// NewPlaintext returns a new Plaintext with zero value at the given level
// (maximum level if omitted) and MetaData set to the Parameters default.
func NewPlaintext(params ParameterProvider, level ...int) (pt *Plaintext) {
	p := params.GetRLWEParameters()
	lvlq, _ := p.UnpackLevelParams(level)
	return &Plaintext{
		Value: p.RingQ().AtLevel(lvlq).NewPoly(),
		MetaData: &MetaData{
			CiphertextMetaData: CiphertextMetaData{
				IsNTT: p.NTTFlag(),
			},
		},
	}
}

// NewPlaintextAtLevelFromPoly constructs a new Plaintext at a specific level
// where the message is set to the passed poly. No checks are performed on poly
// and the returned Plaintext shares its backing array of coefficients.
func NewPlaintextAtLevelFromPoly(level int, poly ring.Poly) (*Plaintext, error) {
	if len(poly.Coeffs) < level+1 {
		return nil, fmt.Errorf("cannot NewPlaintextAtLevelFromPoly: provided poly level is too small")
	}
	return &Plaintext{
		Value:    ring.Poly{Coeffs: poly.Coeffs[:level+1], Buff: poly.Buff},
		MetaData: &MetaData{},
	}, nil
}

// Degree returns 0: a plaintext has no second ciphertext component.
func (pt Plaintext) Degree() int { return 0 }

// Level returns the plaintext's current RNS level.
func (pt Plaintext) Level() int { return len(pt.Value.Coeffs) - 1 }

// Resize adapts the plaintext's backing polynomial to level, truncating or
// zero-extending the RNS tower as needed. degree must be 0: a plaintext has
// no second ciphertext component.
func (pt *Plaintext) Resize(degree, level int) {
	if degree != 0 {
		panic("rlwe: plaintext degree must be 0")
	}
	if pt.Level() == level {
		return
	}
	coeffs := make([][]uint64, level+1)
	for i := range coeffs {
		if i < len(pt.Value.Coeffs) {
			coeffs[i] = pt.Value.Coeffs[i]
		} else {
			coeffs[i] = make([]uint64, pt.Value.N())
		}
	}
	pt.Value.Coeffs = coeffs
}

// El packages the plaintext as a degree-0 [Element].
func (pt Plaintext) El() *Element[ring.Poly] {
	return &Element[ring.Poly]{Value: []ring.Poly{pt.Value}, MetaData: pt.MetaData}
}

// CopyNew returns a deep copy of pt.
func (pt Plaintext) CopyNew() *Plaintext {
	return &Plaintext{Value: *pt.Value.CopyNew(), MetaData: pt.MetaData.CopyNew()}
}

// Copy copies pt into ptCopy.
func (pt Plaintext) Copy(ptCopy *Plaintext) {
	ptCopy.Value.Copy(pt.Value)
	*ptCopy.MetaData = *pt.MetaData
}

// Equal reports whether pt and other hold the same value and metadata.
func (pt Plaintext) Equal(other *Plaintext) bool {
	return pt.Value.Equal(&other.Value) && pt.MetaData.Equal(other.MetaData)
}
