package expr

import (
	"github.com/latticeforge/ringmpc/shape"
	"github.com/latticeforge/ringmpc/tensor"
)

// TensorView is a leaf wrapping already-materialized coefficient storage
// (e.g. a ciphertext component, an encoder's output buffer). It is the
// bridge between externally-owned tensor.Tensor values and the expression
// graph, per spec §3.9's "tensor-view" leaf kind.
type TensorView struct {
	t *tensor.Tensor[uint64]
}

// NewTensorView wraps t as a graph leaf.
func NewTensorView(t *tensor.Tensor[uint64]) *TensorView { return &TensorView{t: t} }

// Tensor returns the wrapped tensor.
func (v *TensorView) Tensor() *tensor.Tensor[uint64] { return v.t }

func (v *TensorView) Shape() shape.Shape         { return v.t.Shape() }
func (v *TensorView) Children() []Node           { return nil }
func (v *TensorView) Access(i int) Access        { panic("expr: leaf has no children") }
func (v *TensorView) Capabilities() []Capability { return nil }
func (v *TensorView) Cacheable() bool            { return true }
func (v *TensorView) Complex() bool              { return false }
func (v *TensorView) Kind() string               { return "tensor_view" }

// Constant is a leaf whose values are fixed at graph-construction time
// (e.g. a plaintext-encoded literal, a public modulus vector).
type Constant struct {
	t *tensor.Tensor[uint64]
}

// NewConstant wraps a compile-time-fixed tensor as a graph leaf.
func NewConstant(t *tensor.Tensor[uint64]) *Constant { return &Constant{t: t} }

// Tensor returns the constant's backing values.
func (c *Constant) Tensor() *tensor.Tensor[uint64] { return c.t }

func (c *Constant) Shape() shape.Shape         { return c.t.Shape() }
func (c *Constant) Children() []Node           { return nil }
func (c *Constant) Access(i int) Access        { panic("expr: leaf has no children") }
func (c *Constant) Capabilities() []Capability { return nil }
func (c *Constant) Cacheable() bool            { return true }
func (c *Constant) Complex() bool              { return false }
func (c *Constant) Kind() string               { return "constant" }

// Scalar is a rank-0 leaf holding a single value, used as a broadcast
// operand (e.g. a per-invocation plaintext modulus, a public exponent).
type Scalar struct {
	v uint64
}

// NewScalar wraps v as a rank-0 leaf.
func NewScalar(v uint64) *Scalar { return &Scalar{v: v} }

// Value returns the scalar's value.
func (s *Scalar) Value() uint64 { return s.v }

func (s *Scalar) Shape() shape.Shape         { return shape.New() }
func (s *Scalar) Children() []Node           { return nil }
func (s *Scalar) Access(i int) Access        { panic("expr: leaf has no children") }
func (s *Scalar) Capabilities() []Capability { return nil }
func (s *Scalar) Cacheable() bool            { return true }
func (s *Scalar) Complex() bool              { return false }
func (s *Scalar) Kind() string               { return "scalar" }

// Distribution identifies which csprng derived distribution a RandomSource
// leaf draws from, per spec §4.8.
type Distribution int

const (
	DistUniform Distribution = iota
	DistBinomial
	DistCenteredBinomial
	DistDrownedUniform
)

// RandomSource is a leaf declaring the Randomness capability: its values
// are not fixed until dispatch, when the planner seeds a per-work-item
// PRNG derived from this node's identity and the output's linear index
// (spec §4.10 step 5).
type RandomSource struct {
	shape shape.Shape
	dist  Distribution
	// Param is the distribution parameter: bit width for DistUniform,
	// n for DistBinomial, eta for DistCenteredBinomial, bound (as a small
	// integer) for DistDrownedUniform. Schemes needing wider parameters
	// wrap RandomSource instead of overloading this field.
	param int
}

// NewRandomSource declares a leaf of the given shape drawing from dist with
// parameter param.
func NewRandomSource(s shape.Shape, dist Distribution, param int) *RandomSource {
	return &RandomSource{shape: s, dist: dist, param: param}
}

// Distribution returns the leaf's sampling distribution.
func (r *RandomSource) Distribution() Distribution { return r.dist }

// Param returns the leaf's distribution parameter.
func (r *RandomSource) Param() int { return r.param }

func (r *RandomSource) Shape() shape.Shape         { return r.shape }
func (r *RandomSource) Children() []Node           { return nil }
func (r *RandomSource) Access(i int) Access        { panic("expr: leaf has no children") }
func (r *RandomSource) Capabilities() []Capability { return []Capability{Randomness} }
func (r *RandomSource) Cacheable() bool            { return true }
func (r *RandomSource) Complex() bool              { return false }
func (r *RandomSource) Kind() string               { return "random_source" }
