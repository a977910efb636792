package planner

import "github.com/latticeforge/ringmpc/expr"

// Decide chooses which cacheable nodes get materialized into their own
// tensor, per spec §4.10 step 2: a node is chosen iff it is a root, it is
// complex, or it is reached from more than one place (or once, but via a
// Multiple access pattern on that one path — a broadcast consumer would
// otherwise duplicate the work fusing saves). Everything else fuses into
// its consumer.
func Decide(roots []expr.Node, traces Traces) map[expr.Node]bool {
	isRoot := make(map[expr.Node]bool, len(roots))
	for _, r := range roots {
		isRoot[r] = true
	}

	chosen := make(map[expr.Node]bool)
	for n, ts := range traces {
		if isRoot[n] || n.Complex() {
			chosen[n] = true
			continue
		}
		if len(ts) > 1 {
			chosen[n] = true
			continue
		}
		if len(ts) == 1 {
			path := ts[0]
			// Rank-0 expressions used as broadcast operands do not force
			// materialization on their own (spec §4.10 tie-break rules).
			if n.Shape().Rank() == 0 {
				continue
			}
			if len(path) > 0 && lastHopIsMultiple(path) {
				chosen[n] = true
			}
		}
	}
	return chosen
}

// lastHopIsMultiple reports whether the final hop into a node (the direct
// parent -> child edge) uses the Multiple access pattern: per spec §4.10's
// tie-break rule, "a multiple-access consumer forces its input to be
// materialized regardless of sharing count."
func lastHopIsMultiple(path Trace) bool {
	return path[len(path)-1].Access == expr.Multiple
}
