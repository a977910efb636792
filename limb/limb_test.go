package limb_test

import (
	"math"
	"testing"

	"github.com/latticeforge/ringmpc/limb"
	"github.com/stretchr/testify/require"
)

func TestAddSub(t *testing.T) {
	s, c := limb.Add(math.MaxUint64, 1)
	require.Equal(t, limb.Word(0), s)
	require.Equal(t, limb.Word(1), c)

	d, b := limb.Sub(0, 1)
	require.Equal(t, limb.Word(math.MaxUint64), d)
	require.Equal(t, limb.Word(1), b)
}

func TestMul(t *testing.T) {
	lo, hi := limb.Mul(math.MaxUint64, math.MaxUint64)
	require.Equal(t, limb.Word(1), lo)
	require.Equal(t, limb.Word(math.MaxUint64-1), hi)
}

func TestMulAddAdd(t *testing.T) {
	lo, hi := limb.MulAddAdd(math.MaxUint64, math.MaxUint64, math.MaxUint64, math.MaxUint64)
	// x*y = (1, 2^64-2) in (lo,hi); + a + b where a=b=2^64-1 must not silently overflow.
	wantLo, wantHi := limb.Mul(math.MaxUint64, math.MaxUint64)
	wantLo, c0 := limb.Add(wantLo, math.MaxUint64)
	wantLo, c1 := limb.Add(wantLo, math.MaxUint64)
	wantHi += c0 + c1
	require.Equal(t, wantLo, lo)
	require.Equal(t, wantHi, hi)
}

func TestSelect(t *testing.T) {
	require.Equal(t, limb.Word(7), limb.Select(0, 7, 9))
	require.Equal(t, limb.Word(9), limb.Select(^limb.Word(0), 7, 9))
}

func TestRotate(t *testing.T) {
	require.Equal(t, limb.Word(1), limb.Rotl(1<<63, 1))
	require.Equal(t, limb.Word(1<<63), limb.Rotr(1, 1))
}
