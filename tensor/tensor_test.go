package tensor_test

import (
	"testing"

	"github.com/latticeforge/ringmpc/shape"
	"github.com/latticeforge/ringmpc/tensor"
	"github.com/stretchr/testify/require"
)

func TestSetAtRoundTrip(t *testing.T) {
	s := shape.New(2, 3)
	tn := tensor.New[int](s)
	tn.Set(7, 1, 2)
	require.Equal(t, 7, tn.At(1, 2))
	require.Equal(t, 6, tn.Len())
}

func TestMap(t *testing.T) {
	s := shape.New(4)
	tn := tensor.FromSlice[int](s, []int{1, 2, 3, 4})
	doubled := tensor.Map(tn, func(v int) int { return v * 2 })
	require.Equal(t, []int{2, 4, 6, 8}, doubled.Raw())
}

func TestZipBroadcast(t *testing.T) {
	a := tensor.FromSlice[int](shape.New(3, shape.Placeholder), []int{1, 2, 3})
	b := tensor.FromSlice[int](shape.New(3, 2), []int{10, 11, 20, 21, 30, 31})
	sum := tensor.Zip(a, b, func(x, y int) int { return x + y })
	require.Equal(t, []int{11, 12, 22, 23, 33, 34}, sum.Raw())
}

func TestReshape(t *testing.T) {
	tn := tensor.FromSlice[int](shape.New(6), []int{0, 1, 2, 3, 4, 5})
	r := tn.Reshape(shape.New(2, 3))
	require.Equal(t, 4, r.At(1, 1))
}
