package planner

import (
	"github.com/latticeforge/ringmpc/expr"
	"github.com/latticeforge/ringmpc/tensor"
)

// Plan is the output of the planner's third step: one tensor slot per
// chosen node, keyed by structural fingerprint so that two chosen nodes
// computing the same expression (e.g. a shared constant lifted into two
// separate roots) share a single allocation, plus the dependency order to
// dispatch them in.
type Plan struct {
	Chosen      map[expr.Node]bool
	fingerprint map[expr.Node]Fingerprint
	slots       map[Fingerprint]*tensor.Tensor[uint64]
	order       []expr.Node // topological, leaves first
}

// Build runs Trace, Decide, and the tensor-allocation step (spec §4.10
// steps 1-3) over roots, returning a Plan ready for Dispatch.
func Build(roots []expr.Node) *Plan {
	traces := Trace_(roots)
	chosen := Decide(roots, traces)

	fpCache := make(map[expr.Node]Fingerprint)
	for n := range traces {
		fingerprintOf(n, fpCache)
	}
	for _, r := range roots {
		fingerprintOf(r, fpCache)
	}

	p := &Plan{
		Chosen:      chosen,
		fingerprint: fpCache,
		slots:       make(map[Fingerprint]*tensor.Tensor[uint64]),
	}
	visited := make(map[expr.Node]bool)
	for _, r := range roots {
		p.topoSort(r, visited)
	}
	return p
}

func (p *Plan) topoSort(n expr.Node, visited map[expr.Node]bool) {
	if visited[n] {
		return
	}
	visited[n] = true
	for _, c := range n.Children() {
		p.topoSort(c, visited)
	}
	p.order = append(p.order, n)
}

// Order returns the dependency order (leaves first) of every node reached
// from the roots.
func (p *Plan) Order() []expr.Node { return p.order }

// slotFor allocates (or returns the existing) tensor for a chosen node,
// keyed by its structural fingerprint: two chosen nodes with the same
// fingerprint share one allocation, per spec §4.10 step 3.
func (p *Plan) slotFor(n expr.Node) *tensor.Tensor[uint64] {
	fp := p.fingerprint[n]
	if t, ok := p.slots[fp]; ok {
		return t
	}
	t := tensor.New[uint64](n.Shape())
	p.slots[fp] = t
	return t
}
