// Package planner implements the execution planner of spec §4.10: trace
// each root expression graph, decide which cacheable nodes must be
// materialized, allocate tensors keyed by structural fingerprint, and
// dispatch kernels in dependency order, seeding per-work-item randomness
// from the node's identity and output index along the way.
package planner

import (
	"encoding/binary"
	"fmt"

	"github.com/latticeforge/ringmpc/expr"
	"github.com/zeebo/blake3"
)

// Fingerprint identifies a node by its structure (kind, shape, and its
// children's fingerprints in order), not by pointer identity: two
// independently-built subtrees that compute the same thing hash to the
// same Fingerprint, which is how Plan shares one tensor between them (spec
// §4.10 step 3, "tensors are keyed by a structural fingerprint so that
// identical expressions share a tensor").
type Fingerprint [32]byte

// fingerprintOf computes n's Fingerprint, memoizing results in cache so a
// shared subtree is hashed once per Trace/Plan pass rather than once per
// occurrence.
func fingerprintOf(n expr.Node, cache map[expr.Node]Fingerprint) Fingerprint {
	if fp, ok := cache[n]; ok {
		return fp
	}

	h := blake3.New()
	h.Write([]byte(n.Kind()))
	h.Write([]byte(n.Shape().String()))

	for _, c := range n.Children() {
		cfp := fingerprintOf(c, cache)
		h.Write(cfp[:])
	}

	// Leaves carry identity-distinguishing data the Kind/Shape pair alone
	// does not: two distinct Scalar or RandomSource leaves of identical
	// shape must not collide, since they are not the same value.
	switch v := n.(type) {
	case *expr.Scalar:
		var buf [8]byte
		binary.LittleEndian.PutUint64(buf[:], v.Value())
		h.Write(buf[:])
	case *expr.RandomSource:
		var buf [16]byte
		binary.LittleEndian.PutUint64(buf[:8], uint64(v.Distribution()))
		binary.LittleEndian.PutUint64(buf[8:], uint64(v.Param()))
		h.Write(buf[:])
		// Distribution and parameter alone are shared by every leaf drawing
		// from the same distribution, so the leaf's own identity is hashed too.
		h.Write([]byte(fmt.Sprintf("%p", v)))
	case *expr.TensorView:
		// Identity-sensitive: a tensor-view's fingerprint must track which
		// backing tensor it wraps, not just that it is "some tensor-view".
		h.Write([]byte(fmt.Sprintf("%p", v.Tensor())))
	}

	var out Fingerprint
	sum := h.Sum(nil)
	copy(out[:], sum)
	cache[n] = out
	return out
}
