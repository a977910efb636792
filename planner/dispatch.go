package planner

import (
	"math/bits"

	"github.com/latticeforge/ringmpc/csprng"
	"github.com/latticeforge/ringmpc/expr"
	"github.com/latticeforge/ringmpc/ring"
	"github.com/latticeforge/ringmpc/tensor"
)

// Dispatch evaluates the plan's graph and returns one tensor per node of
// the plan's dependency order, in that order, per spec §4.10 step 4: nodes are visited in dependency
// order, simple nodes as a single pass over their output shape, complex
// nodes (NTT, reductions) via their own multi-pass routine. seed is the
// random engine's master key (spec §4.10 step 5, "each node declaring
// randomness receives a seeded PRNG state whose nonce is derived from the
// node's identity"); baseRing provides the NTT tables Transform nodes need.
func Dispatch(p *Plan, seed []byte, baseRing *ring.Ring) []*tensor.Tensor[uint64] {
	d := &dispatcher{plan: p, seed: seed, baseRing: baseRing, cache: make(map[expr.Node]*tensor.Tensor[uint64])}
	out := make([]*tensor.Tensor[uint64], 0, len(p.order))
	for _, n := range p.order {
		out = append(out, d.eval(n))
	}
	return out
}

// EvalRoots evaluates exactly the given roots (in the plan built from
// them) and returns their materialized tensors in order.
func EvalRoots(p *Plan, roots []expr.Node, seed []byte, baseRing *ring.Ring) []*tensor.Tensor[uint64] {
	d := &dispatcher{plan: p, seed: seed, baseRing: baseRing, cache: make(map[expr.Node]*tensor.Tensor[uint64])}
	out := make([]*tensor.Tensor[uint64], len(roots))
	for i, r := range roots {
		out[i] = d.eval(r)
	}
	return out
}

type dispatcher struct {
	plan     *Plan
	seed     []byte
	baseRing *ring.Ring
	cache    map[expr.Node]*tensor.Tensor[uint64]
}

// eval computes n's tensor, memoizing chosen nodes (and, harmlessly, any
// other node visited more than once within a single Dispatch call) so a
// materialized node's kernel runs exactly once regardless of how many
// consumers read it.
func (d *dispatcher) eval(n expr.Node) *tensor.Tensor[uint64] {
	if t, ok := d.cache[n]; ok {
		return t
	}

	var out *tensor.Tensor[uint64]
	switch v := n.(type) {
	case *expr.TensorView:
		out = v.Tensor()
	case *expr.Constant:
		out = v.Tensor()
	case *expr.Scalar:
		out = tensor.New[uint64](v.Shape())
		out.Raw()[0] = v.Value()
	case *expr.RandomSource:
		out = d.evalRandom(n, v)
	case *expr.Pointwise:
		out = d.evalPointwise(v)
	case *expr.Reduction:
		out = d.evalReduction(v)
	case *expr.Transform:
		out = d.evalTransform(v)
	case *expr.MatMul:
		out = d.evalMatMul(v)
	case *expr.MonomialLift:
		out = d.evalMonomialLift(v)
	case *expr.Cache:
		out = d.eval(v.Inner())
	default:
		panic("planner: dispatch: unknown node type")
	}

	if d.plan.Chosen[n] {
		dst := d.plan.slotFor(n)
		copy(dst.Raw(), out.Raw())
		out = dst
	}
	d.cache[n] = out
	return out
}

// evalRandom seeds a per-node engine from (seed, node fingerprint) and
// draws one sample per output element, per spec §4.10 step 5: the nonce is
// derived from the node's identity so two distinct random leaves never
// share a stream, and re-evaluating the same graph reproduces the same
// values (the node's elements take successive draws from that one stream,
// in index order).
func (d *dispatcher) evalRandom(n expr.Node, v *expr.RandomSource) *tensor.Tensor[uint64] {
	fp := d.plan.fingerprint[n]
	eng, err := csprng.NewEngine(d.seed, fp[:12])
	if err != nil {
		panic(err)
	}

	out := tensor.New[uint64](v.Shape())
	raw := out.Raw()
	for i := range raw {
		qi := d.ringModulus(i, len(raw))
		var signed int64
		var unsigned uint64
		switch v.Distribution() {
		case expr.DistUniform:
			unsigned = csprng.UniformUint(eng, v.Param()).Big().Uint64()
		case expr.DistBinomial:
			unsigned = uint64(csprng.Binomial(eng, v.Param()))
		case expr.DistCenteredBinomial:
			signed = int64(csprng.CenteredBinomial(eng, v.Param()))
		case expr.DistDrownedUniform:
			// drowned-uniform results are scheme-scale big.Int and are
			// not sampled here: every element of such a leaf stays zero.
		}
		switch {
		case qi != 0 && signed != 0:
			// A negative centered-binomial draw reduces to qi-|signed| mod
			// qi, not its two's-complement uint64 bit pattern: addMod and
			// subMod assume every operand is already a residue below its
			// lane's modulus.
			m := signed % int64(qi)
			if m < 0 {
				m += int64(qi)
			}
			raw[i] = uint64(m)
		case qi != 0:
			raw[i] = (unsigned + uint64(signed)) % qi
		default:
			raw[i] = unsigned + uint64(signed)
		}
	}
	return out
}

// ringModulus returns the RNS modulus governing element i of a length-total
// buffer, or 0 if the buffer does not look like ring polynomial data (its
// length isn't a whole multiple of the base ring's N, or there is no base
// ring at all). A lane's modulus is the table owning the coefficient's RNS
// level: lane = i/N indexes d.baseRing.Tables the same way evalTransform
// indexes lanes for NTT/INTT.
func (d *dispatcher) ringModulus(i, total int) uint64 {
	if d.baseRing == nil {
		return 0
	}
	N := d.baseRing.N()
	if N == 0 || total%N != 0 {
		return 0
	}
	lane := i / N
	tables := d.baseRing.Tables
	if lane >= len(tables) {
		lane = len(tables) - 1
	}
	return tables[lane].Modulus
}

func (d *dispatcher) evalPointwise(p *expr.Pointwise) *tensor.Tensor[uint64] {
	lhs := d.eval(p.Children()[0])
	rhs := d.eval(p.Children()[1])
	out := tensor.New[uint64](p.Shape())
	dst := out.Raw()
	l, r := lhs.Raw(), rhs.Raw()
	for i := range dst {
		lv := broadcastElem(l, i, len(dst))
		rv := broadcastElem(r, i, len(dst))
		qi := d.ringModulus(i, len(dst))
		switch p.Op() {
		case "add":
			if qi != 0 {
				dst[i] = addMod(lv, rv, qi)
			} else {
				dst[i] = lv + rv
			}
		case "sub":
			if qi != 0 {
				dst[i] = subMod(lv, rv, qi)
			} else {
				dst[i] = lv - rv
			}
		case "mul":
			if qi != 0 {
				dst[i] = mulMod(lv, rv, qi)
			} else {
				dst[i] = lv * rv
			}
		case "eq":
			if lv == rv {
				dst[i] = 1
			}
		default:
			panic("planner: unknown pointwise op " + p.Op())
		}
	}
	return out
}

// broadcastElem reads element i of src, treating a length-1 src as a
// broadcast scalar over an output of length n.
func broadcastElem(src []uint64, i, n int) uint64 {
	if len(src) == 1 {
		return src[0]
	}
	return src[i]
}

// addMod, subMod and mulMod perform the modular arithmetic RNS polynomial
// data needs: every Pointwise/Reduction/MonomialLift op over ring-shaped
// tensors must stay reduced mod its lane's modulus, the same invariant
// ring.Ring's own Add/Sub/MulCoeffsMontgomery methods maintain.
func addMod(a, b, qi uint64) uint64 {
	s := a + b
	if s >= qi {
		s -= qi
	}
	return s
}

func subMod(a, b, qi uint64) uint64 {
	if a >= b {
		return a - b
	}
	return qi - (b - a)
}

func mulMod(a, b, qi uint64) uint64 {
	hi, lo := bits.Mul64(a, b)
	_, rem := bits.Div64(hi%qi, lo, qi)
	return rem
}

func (d *dispatcher) evalReduction(r *expr.Reduction) *tensor.Tensor[uint64] {
	child := d.eval(r.Children()[0])
	raw := child.Raw()
	qi := d.ringModulus(0, len(raw))
	var acc uint64
	switch r.Op() {
	case "sum":
		for i, v := range raw {
			if qi != 0 {
				acc = addMod(acc, v, d.ringModulus(i, len(raw)))
			} else {
				acc += v
			}
		}
	case "product":
		acc = 1
		for i, v := range raw {
			if qi != 0 {
				acc = mulMod(acc, v, d.ringModulus(i, len(raw)))
			} else {
				acc *= v
			}
		}
	default:
		panic("planner: unknown reduction op " + r.Op())
	}
	out := tensor.New[uint64](r.Shape())
	out.Raw()[0] = acc
	return out
}

// evalTransform applies the base ring's NTT/INTT over the child's data,
// one limb-level polynomial at a time. The child's last axis is the N
// coefficients; any leading axes are independent RNS levels/components.
func (d *dispatcher) evalTransform(t *expr.Transform) *tensor.Tensor[uint64] {
	child := d.eval(t.Children()[0])
	N := d.baseRing.N()
	raw := child.Raw()
	out := tensor.New[uint64](t.Shape())
	outRaw := out.Raw()
	copy(outRaw, raw)

	tables := d.baseRing.Tables
	for off := 0; off+N <= len(outRaw); off += N {
		lane := off / N
		if lane >= len(tables) {
			lane = len(tables) - 1
		}
		coeffs := outRaw[off : off+N]
		if t.Inverse() {
			tables[lane].INTT(coeffs, coeffs)
		} else {
			tables[lane].NTT(coeffs, coeffs)
		}
	}
	return out
}

func (d *dispatcher) evalMatMul(m *expr.MatMul) *tensor.Tensor[uint64] {
	lhs := d.eval(m.Children()[0])
	rhs := d.eval(m.Children()[1])
	ls, rs := m.Children()[0].Shape(), m.Children()[1].Shape()
	k := int(ls.Extent(ls.Rank() - 1))
	rows := ls.Size() / k
	cols := rs.Size() / k

	out := tensor.New[uint64](m.Shape())
	dst := out.Raw()
	l, r := lhs.Raw(), rhs.Raw()
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			var acc uint64
			for kk := 0; kk < k; kk++ {
				acc += l[i*k+kk] * r[kk*cols+j]
			}
			dst[i*cols+j] = acc
		}
	}
	return out
}

func (d *dispatcher) evalMonomialLift(m *expr.MonomialLift) *tensor.Tensor[uint64] {
	poly := d.eval(m.Children()[0])
	degree := d.eval(m.Children()[1])
	N := int(m.Shape().Extent(m.Shape().Rank() - 1))

	out := tensor.New[uint64](m.Shape())
	src, dst := poly.Raw(), out.Raw()
	degs := degree.Raw()

	lanes := len(src) / N
	for lane := 0; lane < lanes; lane++ {
		deg := int(broadcastElem(degs, lane, lanes))
		shift := ((deg % (2 * N)) + 2*N) % (2 * N)
		p1 := src[lane*N : lane*N+N]
		p2 := dst[lane*N : lane*N+N]
		qi := d.ringModulus(lane*N, len(src))
		for j := 0; j < N; j++ {
			idx := (j - shift + 4*N) % (2 * N)
			switch {
			case idx < N:
				p2[j] = p1[idx]
			case qi != 0:
				v := p1[idx-N]
				if v == 0 {
					p2[j] = 0
				} else {
					p2[j] = qi - v
				}
			default:
				p2[j] = -p1[idx-N]
			}
		}
	}
	return out
}
