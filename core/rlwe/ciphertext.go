package rlwe

import (
	"fmt"

	"github.com/latticeforge/ringmpc/ring"
	"github.com/latticeforge/ringmpc/utils/sampling"
	"github.com/latticeforge/ringmpc/utils/structs"
)

// Ciphertext is a generic type for RLWE ciphertexts.
type Ciphertext struct {
	Element[ring.Poly]
}

// NewCiphertext returns a new Ciphertext with zero values and an associated
// MetaData set to the Parameters default value.
func NewCiphertext(params ParameterProvider, degree int, level ...int) (ct *Ciphertext) {
	op := *NewElement(params, degree, level...)
	return &Ciphertext{op}
}

// NewCiphertextAtLevelFromPoly constructs a new Ciphertext at a specific level
// where the message is set to the passed poly. No checks are performed on poly and
// the returned Ciphertext will share its backing array of coefficients.
// Returned Ciphertext's MetaData is allocated but empty	.
func NewCiphertextAtLevelFromPoly(level int, poly []ring.Poly) (*Ciphertext, error) {

	operand, err := NewElementAtLevelFromPoly(level, poly)

	if err != nil {
		return nil, fmt.Errorf("cannot NewCiphertextAtLevelFromPoly: %w", err)
	}

	operand.MetaData = &MetaData{}

	return &Ciphertext{*operand}, nil
}

// NewCiphertextRandom generates a new uniformly distributed Ciphertext of degree, level.
func NewCiphertextRandom(prng sampling.PRNG, params ParameterProvider, degree, level int) (ciphertext *Ciphertext) {
	ciphertext = NewCiphertext(params, degree, level)
	PopulateElementRandom(prng, params, ciphertext.El())
	return
}

// CopyNew creates a new element as a copy of the target element.
func (ct Ciphertext) CopyNew() *Ciphertext {
	return &Ciphertext{Element: *ct.Element.CopyNew()}
}

// Copy copies the input element and its parameters on the target element.
func (ct Ciphertext) Copy(ctxCopy *Ciphertext) {
	ct.Element.Copy(&ctxCopy.Element)
}

// Equal performs a deep equal.
func (ct Ciphertext) Equal(other *Ciphertext) bool {
	return ct.Element.Equal(&other.Element)
}

// NewCiphertextFromUintPool returns a new Ciphertext of the given degree and level whose
// polynomials are drawn from pool instead of freshly allocated.
// After use, the Ciphertext should be recycled using [RecycleCiphertextInUintPool].
func NewCiphertextFromUintPool(pool structs.BufferPool[*[]uint64], params ParameterProvider, degree, level int) (ct *Ciphertext) {
	p := params.GetRLWEParameters()
	ringQ := p.RingQ().AtLevel(level)

	value := make([]ring.Poly, degree+1)
	for i := range value {
		value[i] = *ring.NewPolyFromUintPool(pool, ringQ.N(), level)
	}

	return &Ciphertext{Element[ring.Poly]{
		Value: value,
		MetaData: &MetaData{
			CiphertextMetaData: CiphertextMetaData{
				IsNTT: p.NTTFlag(),
			},
		},
	}}
}

// RecycleCiphertextInUintPool returns ct's polynomials to pool. ct must have been obtained
// from [NewCiphertextFromUintPool] against the same pool, and must not be used after this call.
func RecycleCiphertextInUintPool(pool structs.BufferPool[*[]uint64], ct *Ciphertext) {
	for i := range ct.Value {
		ring.RecyclePolyInUintPool(pool, &ct.Value[i])
	}
	ct.Value = nil
}
