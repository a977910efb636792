// Package tensor implements the owning, shape-indexed element buffer used
// throughout the ring/expression layers, generalizing a flat []uint64
// coefficient buffer addressed by one implicit shape (as ring.Poly is) to
// a rank-polymorphic Shape.
package tensor

import (
	"github.com/latticeforge/ringmpc/shape"
)

// Tensor is a dense, row-major buffer of T over Shape s. T is typically a
// scalar (bigint.Mod, uint64) or another fixed-size value type; vector-like
// elements are expressed by giving s a trailing limb-count dimension via
// shape.ElementShape rather than by nesting Tensor[Tensor[T]].
type Tensor[T any] struct {
	shape shape.Shape
	data  []T
}

// New allocates a zero-valued Tensor over s.
func New[T any](s shape.Shape) *Tensor[T] {
	return &Tensor[T]{shape: s, data: make([]T, s.Size())}
}

// FromSlice wraps an existing row-major slice without copying. Panics if
// len(data) != s.Size().
func FromSlice[T any](s shape.Shape, data []T) *Tensor[T] {
	if len(data) != s.Size() {
		panic("tensor: data length does not match shape size")
	}
	return &Tensor[T]{shape: s, data: data}
}

// Shape returns the tensor's shape.
func (t *Tensor[T]) Shape() shape.Shape { return t.shape }

// Len returns the total element count (shape.Size()).
func (t *Tensor[T]) Len() int { return len(t.data) }

// At returns the element at multi-index idx.
func (t *Tensor[T]) At(idx ...int) T {
	return t.data[shape.ToLinear(t.shape, idx)]
}

// Set writes the element at multi-index idx.
func (t *Tensor[T]) Set(v T, idx ...int) {
	t.data[shape.ToLinear(t.shape, idx)] = v
}

// Raw exposes the underlying row-major backing slice, for kernels that want
// to operate on it directly (e.g. the ring layer's NTT butterflies).
func (t *Tensor[T]) Raw() []T { return t.data }

// Clone deep-copies the tensor.
func (t *Tensor[T]) Clone() *Tensor[T] {
	out := &Tensor[T]{shape: t.shape, data: make([]T, len(t.data))}
	copy(out.data, t.data)
	return out
}

// Reshape returns a view over the same backing data under a new shape of
// equal size. Panics on size mismatch.
func (t *Tensor[T]) Reshape(s shape.Shape) *Tensor[T] {
	if s.Size() != len(t.data) {
		panic("tensor: reshape size mismatch")
	}
	return &Tensor[T]{shape: s, data: t.data}
}

// Map applies f element-wise, returning a new Tensor of the same shape.
func Map[T, U any](t *Tensor[T], f func(T) U) *Tensor[U] {
	out := &Tensor[U]{shape: t.shape, data: make([]U, len(t.data))}
	for i, v := range t.data {
		out.data[i] = f(v)
	}
	return out
}

// Zip applies f element-wise across two tensors broadcast to their common
// shape (shape.CommonShape); it panics if the shapes are incompatible.
func Zip[A, B, C any](a *Tensor[A], b *Tensor[B], f func(A, B) C) *Tensor[C] {
	common, ok := shape.CommonShape(a.shape, b.shape)
	if !ok {
		panic("tensor: incompatible shapes in Zip")
	}
	out := &Tensor[C]{shape: common, data: make([]C, common.Size())}
	for i := range out.data {
		idx := shape.FromLinear(common, i)
		out.data[i] = f(a.At(idx...), b.At(idx...))
	}
	return out
}
