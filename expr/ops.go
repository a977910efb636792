package expr

import (
	"fmt"

	"github.com/latticeforge/ringmpc/shape"
)

// Pointwise is a binary elementwise operator (add, sub, mul, cmp-eq, ...):
// shape = common_shape(children), access is Once on both children unless a
// child's shape broadcasts along a placeholder axis, in which case that
// side turns into Multiple (spec §9's "shape broadcasts... turn a once
// input into a multiple input"). Interior pointwise nodes are not
// cacheable by default: they fuse into their consumer.
type Pointwise struct {
	op       string
	lhs, rhs Node
	shape    shape.Shape
	accessL  Access
	accessR  Access
}

// NewPointwise builds a binary pointwise node for op (e.g. "add", "mul",
// "eq") over lhs and rhs. Panics if the operand shapes do not broadcast.
func NewPointwise(op string, lhs, rhs Node) *Pointwise {
	s, ok := shape.CommonShape(lhs.Shape(), rhs.Shape())
	if !ok {
		panic(fmt.Sprintf("expr: %s: incompatible shapes %s and %s", op, lhs.Shape(), rhs.Shape()))
	}
	return &Pointwise{
		op:      op,
		lhs:     lhs,
		rhs:     rhs,
		shape:   s,
		accessL: broadcastAccess(lhs.Shape(), s),
		accessR: broadcastAccess(rhs.Shape(), s),
	}
}

// broadcastAccess returns Multiple if in is rank 0 while out is not, or if
// some axis of in (aligned to out from the right) is a placeholder where
// out has a concrete extent, meaning elements of in are read more than once
// to fill out; Once otherwise.
func broadcastAccess(in, out shape.Shape) Access {
	if in.Rank() == 0 && out.Rank() > 0 {
		return Multiple
	}
	offset := out.Rank() - in.Rank()
	for i := 0; i < in.Rank(); i++ {
		ie, oe := in.Extent(i), out.Extent(i+offset)
		if ie.IsPlaceholder() && !oe.IsPlaceholder() {
			return Multiple
		}
	}
	return Once
}

func (p *Pointwise) Shape() shape.Shape         { return p.shape }
func (p *Pointwise) Children() []Node           { return []Node{p.lhs, p.rhs} }
func (p *Pointwise) Capabilities() []Capability { return nil }
func (p *Pointwise) Cacheable() bool            { return false }
func (p *Pointwise) Complex() bool              { return false }
func (p *Pointwise) Kind() string               { return "pointwise:" + p.op }
func (p *Pointwise) Op() string                 { return p.op }
func (p *Pointwise) Access(i int) Access {
	switch i {
	case 0:
		return p.accessL
	case 1:
		return p.accessR
	default:
		panic("expr: pointwise has exactly two children")
	}
}

// Reduction folds its operand to a rank-0 shape (sum, product, ...). It
// reads every input element exactly once per output element (there is only
// one output element), but since that one output reads every input, the
// access pattern is Multiple by spec §9's definition ("how many times is
// each input element read per output element produced").
type Reduction struct {
	op    string
	child Node
}

// NewReduction builds a reduction node for op over child.
func NewReduction(op string, child Node) *Reduction {
	return &Reduction{op: op, child: child}
}

func (r *Reduction) Shape() shape.Shape         { return shape.New() }
func (r *Reduction) Children() []Node           { return []Node{r.child} }
func (r *Reduction) Access(i int) Access        { return Multiple }
func (r *Reduction) Capabilities() []Capability { return nil }
func (r *Reduction) Cacheable() bool            { return false }
func (r *Reduction) Complex() bool              { return true }
func (r *Reduction) Kind() string               { return "reduction:" + r.op }
func (r *Reduction) Op() string                 { return r.op }

// Transform is the NTT/INTT node: shape is preserved, the child is read
// once per output element (each butterfly pass still touches every
// coefficient exactly once overall), and the node is complex since it owns
// a multi-pass (log N round) dispatch rather than a single elementwise
// kernel.
type Transform struct {
	inverse bool
	child   Node
}

// NewTransform builds an NTT (inverse=false) or INTT (inverse=true) node.
func NewTransform(child Node, inverse bool) *Transform {
	return &Transform{inverse: inverse, child: child}
}

// Inverse reports whether this is the inverse transform (INTT).
func (t *Transform) Inverse() bool { return t.inverse }

func (t *Transform) Shape() shape.Shape         { return t.child.Shape() }
func (t *Transform) Children() []Node           { return []Node{t.child} }
func (t *Transform) Access(i int) Access        { return Once }
func (t *Transform) Capabilities() []Capability { return nil }
func (t *Transform) Cacheable() bool            { return true }
func (t *Transform) Complex() bool              { return true }
func (t *Transform) Kind() string {
	if t.inverse {
		return "intt"
	}
	return "ntt"
}

// MatMul contracts the last two axes of its rank->=2 operands, per spec
// §4.9. Both operands are read Multiple times per output element (a
// classic O(n^3) contraction), and the node is complex: it owns its own
// tiled multi-pass dispatch rather than a single elementwise kernel.
type MatMul struct {
	lhs, rhs Node
	shape    shape.Shape
}

// NewMatMul builds a matrix-product node contracting the last axis of lhs
// against the second-to-last axis of rhs. Panics if either operand has
// rank < 2 or the contraction dimensions mismatch.
func NewMatMul(lhs, rhs Node) *MatMul {
	ls, rs := lhs.Shape(), rhs.Shape()
	if ls.Rank() < 2 || rs.Rank() < 2 {
		panic("expr: matmul requires rank >= 2 operands")
	}
	lk := ls.Extent(ls.Rank() - 1)
	rk := rs.Extent(rs.Rank() - 2)
	if lk != rk {
		panic("expr: matmul contraction dimension mismatch")
	}
	extents := append(append([]shape.Extent{}, ls.Extents()[:ls.Rank()-1]...), rs.Extent(rs.Rank()-1))
	return &MatMul{lhs: lhs, rhs: rhs, shape: shape.New(extents...)}
}

func (m *MatMul) Shape() shape.Shape         { return m.shape }
func (m *MatMul) Children() []Node           { return []Node{m.lhs, m.rhs} }
func (m *MatMul) Access(i int) Access        { return Multiple }
func (m *MatMul) Capabilities() []Capability { return nil }
func (m *MatMul) Cacheable() bool            { return false }
func (m *MatMul) Complex() bool              { return true }
func (m *MatMul) Kind() string               { return "matmul" }

// MonomialLift multiplies a polynomial tensor by x^degree where degree is
// itself a tensor (so the shift can vary per lane), per spec §3.9/§4.6.1.
// Per the open question recorded in spec §9, broadcasting between the
// polynomial and the degree tensor is restricted to non-lane axes: the
// degree tensor must either match the polynomial's non-lane shape exactly
// or be a scalar, and the lane axis (the last axis, the N coefficients)
// belongs to the polynomial alone.
type MonomialLift struct {
	poly, degree Node
	shape        shape.Shape
}

// NewMonomialLift builds a bit-monomial multiplication node. Panics if
// degree's shape is neither scalar nor equal to poly's shape stripped of
// its lane (last) axis.
func NewMonomialLift(poly, degree Node) *MonomialLift {
	ps := poly.Shape()
	if ps.Rank() == 0 {
		panic("expr: monomial_lift requires a polynomial with a lane axis")
	}
	nonLane := shape.New(ps.Extents()[:ps.Rank()-1]...)
	ds := degree.Shape()
	if ds.Rank() != 0 && !sameExtents(ds, nonLane) {
		panic("expr: monomial_lift degree shape must be scalar or match the polynomial's non-lane shape")
	}
	return &MonomialLift{poly: poly, degree: degree, shape: ps}
}

func sameExtents(a, b shape.Shape) bool {
	if a.Rank() != b.Rank() {
		return false
	}
	for i := 0; i < a.Rank(); i++ {
		if a.Extent(i) != b.Extent(i) {
			return false
		}
	}
	return true
}

func (m *MonomialLift) Shape() shape.Shape         { return m.shape }
func (m *MonomialLift) Children() []Node           { return []Node{m.poly, m.degree} }
func (m *MonomialLift) Access(i int) Access        { return Once }
func (m *MonomialLift) Capabilities() []Capability { return nil }
func (m *MonomialLift) Cacheable() bool            { return false }
func (m *MonomialLift) Complex() bool              { return false }
func (m *MonomialLift) Kind() string               { return "monomial_lift" }
