package shape_test

import (
	"testing"

	"github.com/latticeforge/ringmpc/shape"
	"github.com/stretchr/testify/require"
)

func TestToFromLinearRoundTrip(t *testing.T) {
	s := shape.New(3, 4, 5)
	for lin := 0; lin < s.Size(); lin++ {
		idx := shape.FromLinear(s, lin)
		require.Equal(t, lin, shape.ToLinear(s, idx))
	}
}

func TestToLinearRowMajor(t *testing.T) {
	s := shape.New(2, 3)
	require.Equal(t, 0, shape.ToLinear(s, []int{0, 0}))
	require.Equal(t, 1, shape.ToLinear(s, []int{0, 1}))
	require.Equal(t, 3, shape.ToLinear(s, []int{1, 0}))
	require.Equal(t, 5, shape.ToLinear(s, []int{1, 2}))
}

func TestPlaceholderDimensionIgnored(t *testing.T) {
	s := shape.New(2, shape.Placeholder, 3)
	require.Equal(t, 6, s.Size())
	require.Equal(t, 3, shape.ToLinear(s, []int{1, 999, 0}))
}
