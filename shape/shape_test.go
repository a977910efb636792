package shape_test

import (
	"testing"

	"github.com/latticeforge/ringmpc/shape"
	"github.com/stretchr/testify/require"
)

func TestSize(t *testing.T) {
	s := shape.New(4, 8, 16)
	require.Equal(t, 512, s.Size())
}

func TestSizeIgnoresPlaceholder(t *testing.T) {
	s := shape.New(4, shape.Placeholder, 16)
	require.Equal(t, 64, s.Size())
}

func TestCommonShapeBroadcast(t *testing.T) {
	a := shape.New(4, shape.Placeholder)
	b := shape.New(4, 16)
	c, ok := shape.CommonShape(a, b)
	require.True(t, ok)
	require.Equal(t, []shape.Extent{4, 16}, c.Extents())
}

func TestCommonShapeMismatch(t *testing.T) {
	a := shape.New(4, 8)
	b := shape.New(4, 16)
	_, ok := shape.CommonShape(a, b)
	require.False(t, ok)
}

func TestCommonShapeRankZeroPromotes(t *testing.T) {
	a := shape.Shape{}
	b := shape.New(2, 3)
	c, ok := shape.CommonShape(a, b)
	require.True(t, ok)
	require.Equal(t, b.Extents(), c.Extents())
}

func TestUnsqueezeSqueeze(t *testing.T) {
	s := shape.New(4, 16)
	u := shape.Unsqueeze(s, 1)
	require.Equal(t, 3, u.Rank())
	require.True(t, u.Extent(1).IsPlaceholder())

	back := shape.Squeeze(u, 1, false)
	require.Equal(t, s.Extents(), back.Extents())
}

func TestElementShape(t *testing.T) {
	s := shape.New(4, 16)
	es := shape.ElementShape(s, 1)
	require.Equal(t, s.Extents(), es.Extents())

	es4 := shape.ElementShape(s, 4)
	require.Equal(t, []shape.Extent{4, 16, 4}, es4.Extents())
}
