package planner

import "github.com/latticeforge/ringmpc/expr"

// Hop is one (parent, access-pattern, child-position) step in a Trace.
type Hop struct {
	Parent    expr.Node
	Access    expr.Access
	ChildPos  int
}

// Trace is the ordered path from the nearest enclosing cacheable ancestor
// down to a cacheable node, per spec §4.10 step 1.
type Trace []Hop

// Traces maps a cacheable node to the set of ways it is reached while
// tracing the root set. A node reached from more than one place has more
// than one entry here.
type Traces map[expr.Node][]Trace

// Trace walks each root top-down and records, for every cacheable node
// encountered, the path from the nearest enclosing cacheable ancestor
// (spec §4.10 step 1). A cacheable root is recorded with an empty
// (zero-hop) trace; a root that is not cacheable gets no entry of its own.
func Trace_(roots []expr.Node) Traces {
	t := make(Traces)
	for _, r := range roots {
		walk(r, nil, nil, t)
	}
	return t
}

// walk recurses down the graph. path accumulates hops since the nearest
// enclosing cacheable ancestor (nearest is nil at the very start, matching
// a root's implicit ancestor).
func walk(n expr.Node, nearestCacheable expr.Node, path Trace, t Traces) {
	if n.Cacheable() {
		// Record how we reached n (an empty path means n is a root; a node
		// directly below its enclosing cacheable ancestor has a one-hop path).
		t[n] = append(t[n], append(Trace{}, path...))
		path = nil
		nearestCacheable = n
	}

	for i, c := range n.Children() {
		hop := Hop{Parent: n, Access: n.Access(i), ChildPos: i}
		childPath := append(append(Trace{}, path...), hop)
		walk(c, nearestCacheable, childPath, t)
	}
}
