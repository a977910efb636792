package shape

import "fmt"

// strides computes row-major strides for s, treating placeholder extents as
// stride 0 (they do not consume linear-index capacity), per spec §3.5.
func strides(s Shape) []int {
	st := make([]int, s.Rank())
	acc := 1
	for i := s.Rank() - 1; i >= 0; i-- {
		e := s.extents[i]
		if e.IsPlaceholder() {
			st[i] = 0
			continue
		}
		st[i] = acc
		acc *= int(e)
	}
	return st
}

// ToLinear converts a multi-dimensional index into a flat offset, row-major,
// skipping placeholder dimensions (their index component is ignored).
func ToLinear(s Shape, idx []int) int {
	if len(idx) != s.Rank() {
		panic(fmt.Sprintf("shape: index rank %d does not match shape rank %d", len(idx), s.Rank()))
	}
	st := strides(s)
	off := 0
	for i, e := range s.extents {
		if e.IsPlaceholder() {
			continue
		}
		if idx[i] < 0 || idx[i] >= int(e) {
			panic(fmt.Sprintf("shape: index %d out of range [0,%d) at dim %d", idx[i], e, i))
		}
		off += idx[i] * st[i]
	}
	return off
}

// FromLinear recovers the multi-dimensional index for a flat offset.
// Placeholder dimensions always report index 0.
func FromLinear(s Shape, linear int) []int {
	st := strides(s)
	idx := make([]int, s.Rank())
	rem := linear
	for i := 0; i < s.Rank(); i++ {
		if s.extents[i].IsPlaceholder() {
			idx[i] = 0
			continue
		}
		idx[i] = rem / st[i]
		rem -= idx[i] * st[i]
	}
	return idx
}
