package bigint_test

import (
	"math/big"
	"math/rand"
	"testing"

	"github.com/latticeforge/ringmpc/bigint"
	"github.com/stretchr/testify/require"
)

func TestFixedWidthAdd(t *testing.T) {
	// Scenario 1 of spec §8: ubigint<10>{42} + ubigint<3>{4} has bit width
	// 11 and value 46.
	a := bigint.UintFromBig(big.NewInt(42), 10)
	b := bigint.UintFromBig(big.NewInt(4), 3)
	sum := bigint.Add(a, b)
	require.Equal(t, 11, sum.BitLen())
	require.Equal(t, int64(46), sum.Big().Int64())
}

func TestMulWidth(t *testing.T) {
	a := bigint.UintFromBig(big.NewInt(7), 4)
	b := bigint.UintFromBig(big.NewInt(6), 5)
	p := bigint.Mul(a, b)
	require.Equal(t, 9, p.BitLen())
	require.Equal(t, int64(42), p.Big().Int64())
}

func TestCompareAndShift(t *testing.T) {
	a := bigint.UintFromBig(big.NewInt(300), 16)
	b := bigint.UintFromBig(big.NewInt(5), 16)
	require.Equal(t, 1, bigint.Compare(a, b))
	require.Equal(t, -1, bigint.Compare(b, a))

	shifted := bigint.Shl(bigint.UintFromBig(big.NewInt(1), 4), 66)
	require.Equal(t, new(big.Int).Lsh(big.NewInt(1), 66), shifted.Big())
}

func TestDivModGCD(t *testing.T) {
	a := bigint.UintFromBig(big.NewInt(100), 32)
	b := bigint.UintFromBig(big.NewInt(7), 32)
	q, r := bigint.DivMod(a, b)
	require.Equal(t, int64(14), q.Big().Int64())
	require.Equal(t, int64(2), r.Big().Int64())

	g := bigint.GCD(bigint.UintFromBig(big.NewInt(48), 32), bigint.UintFromBig(big.NewInt(18), 32))
	require.Equal(t, int64(6), g.Big().Int64())
}

func TestIntSignedArithmetic(t *testing.T) {
	a := bigint.IntFromInt64(-5)
	b := bigint.IntFromInt64(3)
	require.Equal(t, int64(-2), bigint.AddInt(a, b).Big().Int64())
	require.Equal(t, int64(-8), bigint.SubInt(a, b).Big().Int64())
	require.Equal(t, int64(-15), bigint.MulInt(a, b).Big().Int64())
	require.Equal(t, int64(5), bigint.Neg(a).Big().Int64())
}

func TestModuloInverse(t *testing.T) {
	// Scenario 2 of spec §8: with Q=99, invert(mod<99>(5)) * mod<99>(5) == 1.
	m := bigint.NewModulus(big.NewInt(99))
	five := m.NewMod(big.NewInt(5))
	inv := bigint.Invert(five)
	one := bigint.MulMod(inv, five)
	require.Equal(t, int64(1), one.Standard().Int64())
}

func TestModuloArithmeticAgainstBigInt(t *testing.T) {
	q := big.NewInt(676310504550516370 + 7) // an arbitrary odd-ish modulus
	if q.Bit(0) == 0 {
		q.Add(q, big.NewInt(1))
	}
	m := bigint.NewModulus(q)
	rng := rand.New(rand.NewSource(1))

	for i := 0; i < 200; i++ {
		av := new(big.Int).Rand(rng, q)
		bv := new(big.Int).Rand(rng, q)
		a := m.NewMod(av)
		b := m.NewMod(bv)

		gotAdd := bigint.AddMod(a, b).Standard()
		wantAdd := new(big.Int).Mod(new(big.Int).Add(av, bv), q)
		require.Equal(t, wantAdd, gotAdd)

		gotMul := bigint.MulMod(a, b).Standard()
		wantMul := new(big.Int).Mod(new(big.Int).Mul(av, bv), q)
		require.Equal(t, wantMul, gotMul)

		gotSub := bigint.SubMod(a, b).Standard()
		wantSub := new(big.Int).Mod(new(big.Int).Sub(av, bv), q)
		require.Equal(t, wantSub, gotSub)
	}
}

func TestLiteralParsing(t *testing.T) {
	for _, tc := range []struct {
		in   string
		want int64
	}{
		{"0b1010", 10},
		{"0x2A", 42},
		{"1_000", 1000},
	} {
		v, err := bigint.ParseLiteral(tc.in)
		require.NoError(t, err)
		require.Equal(t, tc.want, v.Big().Int64())
	}
}
