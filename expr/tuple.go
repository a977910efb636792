package expr

// Tuple is a typed record of expressions — a ciphertext's (c0, c1), a
// share triple, a randomness triple (u, v, w) — per spec §3.9's
// "expression tuples... operators on them distribute componentwise."
// Tuple itself is not a Node: its elements are independently traced,
// decided, and planned, and only come back together when a caller (e.g.
// mpc.Ciphertext) reassembles the materialized results.
type Tuple struct {
	elems []Node
}

// NewTuple builds a Tuple from its elements in order.
func NewTuple(elems ...Node) Tuple { return Tuple{elems: elems} }

// Len returns the number of elements.
func (t Tuple) Len() int { return len(t.elems) }

// At returns element i.
func (t Tuple) At(i int) Node { return t.elems[i] }

// Elems returns the tuple's elements.
func (t Tuple) Elems() []Node { return t.elems }

// MapTuple applies f to every element of t, returning a new Tuple of equal
// length. This is how componentwise operators (tuple+tuple, tuple*scalar)
// are built: zip two tuples' elements through the scalar operator and wrap
// the results back into a Tuple.
func MapTuple(t Tuple, f func(Node) Node) Tuple {
	out := make([]Node, len(t.elems))
	for i, e := range t.elems {
		out[i] = f(e)
	}
	return Tuple{elems: out}
}

// ZipTuple applies f componentwise across two equal-length tuples.
func ZipTuple(a, b Tuple, f func(x, y Node) Node) Tuple {
	if a.Len() != b.Len() {
		panic("expr: zipped tuples must have equal length")
	}
	out := make([]Node, a.Len())
	for i := range a.elems {
		out[i] = f(a.elems[i], b.elems[i])
	}
	return Tuple{elems: out}
}

// EncryptShell lifts plaintext-encryption into the expression graph: given
// a message m, a public key tuple (a, b), and randomness (u, v, w), it
// produces the ciphertext tuple (c0, c1) = (b*u + p*v + m, a*u + p*w),
// per spec §4.11, in NTT-domain arithmetic. It owns no arithmetic itself —
// it is a builder that wires Pointwise nodes together and returns the
// resulting Tuple; the graph the planner actually sees is plain
// Pointwise/MatMul/etc nodes.
func EncryptShell(pkA, pkB, p, m, u, v, w Node) Tuple {
	c0 := NewPointwise("add",
		NewPointwise("add", NewPointwise("mul", pkB, u), NewPointwise("mul", p, v)),
		m,
	)
	c1 := NewPointwise("add", NewPointwise("mul", pkA, u), NewPointwise("mul", p, w))
	return NewTuple(c0, c1)
}

// DecryptShell lifts plaintext-decryption into the expression graph: given
// a secret key s and a ciphertext tuple (c0, c1), it produces c0 + c1*s
// (the reduction to the plaintext modulus is a scheme-level concern
// layered on top; this shell only builds the c0 + c1*s polynomial).
func DecryptShell(s Node, ct Tuple) Node {
	c0, c1 := ct.At(0), ct.At(1)
	return NewPointwise("add", c0, NewPointwise("mul", c1, s))
}
