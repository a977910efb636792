// Package utils collects the small cross-cutting helpers shared by the
// ring, core, multiparty and circuits packages: distinctness checks and
// slice rotation.
package utils

// AllDistinct reports whether every element of s is unique.
func AllDistinct(s []uint64) bool {
	seen := make(map[uint64]struct{}, len(s))
	for _, v := range s {
		if _, ok := seen[v]; ok {
			return false
		}
		seen[v] = struct{}{}
	}
	return true
}

// RotateUint64SliceAllocFree writes into out the left-rotation of in by k
// positions: out[i] = in[(i+k) mod len(in)]. k may be negative or exceed
// len(in); both are normalized modulo len(in). in and out may alias (in
// which case a scratch copy of in is taken internally, since an in-place
// rotation cannot otherwise avoid clobbering source elements it still
// needs).
func RotateUint64SliceAllocFree(in []uint64, k int, out []uint64) {
	n := len(in)
	if n == 0 {
		return
	}
	k = ((k % n) + n) % n
	if k == 0 {
		if &in[0] != &out[0] {
			copy(out, in)
		}
		return
	}
	src := in
	if &in[0] == &out[0] {
		src = make([]uint64, n)
		copy(src, in)
	}
	copy(out, src[k:])
	copy(out[n-k:], src[:k])
}
