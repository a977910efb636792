// Package expr implements the typed, lazy expression graph of spec §3.9:
// a Node describes a deferred tensor computation (shape, children, access
// pattern per child, capabilities) without performing any arithmetic
// itself. planner walks these graphs to decide what gets materialized and
// emits the actual kernels; expr only ever builds and introspects the DAG.
package expr

import "github.com/latticeforge/ringmpc/shape"

// Access describes how many times a node's result elements are read per
// output element produced by its consumer, the single property spec §9
// says drives every caching decision.
type Access int

const (
	// Once means each output element reads its corresponding input element
	// at most once (elementwise add, NTT, ...).
	Once Access = iota
	// Multiple means at least one output element may read more than one
	// input element (matrix product, broadcast along a placeholder axis).
	Multiple
)

// Capability is a tag a node declares about a resource dispatch needs to
// provide, beyond the inputs already wired into the graph.
type Capability string

// Randomness is the one capability spec §4.10/§9 names: a node that
// consumes PRNG output (a random leaf, or a sampler built from one).
const Randomness Capability = "randomness"

// Node is one vertex of the expression graph. Implementations must be
// comparable by pointer identity: the planner keys its trace map by Node
// identity, not structural equality.
type Node interface {
	// Shape is the shape of the node's eventual tensor, per spec §3.9.
	// Reduction nodes return a rank-0 shape; pointwise nodes return
	// shape.CommonShape of their children's shapes.
	Shape() shape.Shape

	// Children returns the node's operands in order. A leaf returns nil.
	Children() []Node

	// Access reports the access pattern of child i. Out-of-range i panics;
	// callers iterate len(Children()).
	Access(i int) Access

	// Capabilities returns the resource capabilities this node (not its
	// children) declares.
	Capabilities() []Capability

	// Cacheable reports whether the planner may choose to materialize this
	// node into its own tensor. Most leaves are cacheable; interior
	// pointwise nodes are not (they fuse into their consumer by default).
	Cacheable() bool

	// Complex reports whether the node owns its own multi-pass dispatch
	// (NTT, reduction, stream cipher) rather than being emitted as a
	// single data-parallel kernel.
	Complex() bool

	// Kind returns a short, stable tag identifying the node's operator,
	// used by the planner's structural fingerprint.
	Kind() string
}

// base implements the Cacheable/Complex/Capabilities/Kind boilerplate
// shared by most node constructors; embedding it and overriding what
// differs keeps each operator's file to its actual semantics.
type base struct {
	kind      string
	shape     shape.Shape
	children  []Node
	access    []Access
	caps      []Capability
	cacheable bool
	complex   bool
}

func (b *base) Shape() shape.Shape          { return b.shape }
func (b *base) Children() []Node            { return b.children }
func (b *base) Capabilities() []Capability  { return b.caps }
func (b *base) Cacheable() bool             { return b.cacheable }
func (b *base) Complex() bool               { return b.complex }
func (b *base) Kind() string                { return b.kind }
func (b *base) Access(i int) Access {
	if i < 0 || i >= len(b.access) {
		panic("expr: child access index out of range")
	}
	return b.access[i]
}

// Cache wraps e in an explicit caching barrier (spec §4.9's `cache(e)`):
// the planner materializes e into a single tensor no matter how many times
// the wrapped node is subsequently referenced, satisfying the "sharing is
// expressed via an explicit cache(e) barrier" rule.
type Cache struct {
	inner Node
}

// NewCache returns a Cache barrier over e.
func NewCache(e Node) *Cache { return &Cache{inner: e} }

func (c *Cache) Shape() shape.Shape         { return c.inner.Shape() }
func (c *Cache) Children() []Node           { return []Node{c.inner} }
func (c *Cache) Access(i int) Access        { return Once }
func (c *Cache) Capabilities() []Capability { return nil }
func (c *Cache) Cacheable() bool            { return true }
func (c *Cache) Complex() bool              { return false }
func (c *Cache) Kind() string               { return "cache" }

// Inner returns the wrapped node.
func (c *Cache) Inner() Node { return c.inner }
