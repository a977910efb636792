package utils

import "golang.org/x/exp/constraints"

// GetSortedKeys returns the keys of m in ascending order.
func GetSortedKeys[K constraints.Ordered, V any](m map[K]V) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	insertionSort(keys)
	return keys
}

func insertionSort[K constraints.Ordered](s []K) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}

// GetKeys returns the keys of m in unspecified order.
func GetKeys[K comparable, V any](m map[K]V) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}

// RotateSliceAllocFree writes into out the left-rotation of in by k
// positions. in and out must not alias.
func RotateSliceAllocFree[T any](in []T, k int, out []T) {
	n := len(in)
	if n == 0 {
		return
	}
	k = ((k % n) + n) % n
	copy(out, in[k:])
	copy(out[n-k:], in[:k])
}

// GetDistincts returns the unique elements of s, order unspecified.
func GetDistincts[T comparable](s []T) []T {
	seen := make(map[T]struct{}, len(s))
	out := make([]T, 0, len(s))
	for _, v := range s {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// RotateSlice returns a new slice holding the left-rotation of s by k
// positions.
func RotateSlice[T any](s []T, k int) []T {
	out := make([]T, len(s))
	n := len(s)
	if n == 0 {
		return out
	}
	k = ((k % n) + n) % n
	copy(out, s[k:])
	copy(out[n-k:], s[:k])
	return out
}

// RotateSliceInPlace rotates s left by k positions in place.
func RotateSliceInPlace[T any](s []T, k int) {
	n := len(s)
	if n == 0 {
		return
	}
	k = ((k % n) + n) % n
	if k == 0 {
		return
	}
	reverse(s[:k])
	reverse(s[k:])
	reverse(s)
}

func reverse[T any](s []T) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}
