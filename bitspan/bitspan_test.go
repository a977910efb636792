package bitspan_test

import (
	"testing"

	"github.com/latticeforge/ringmpc/bitspan"
	"github.com/latticeforge/ringmpc/limb"
	"github.com/stretchr/testify/require"
)

func TestReadWrite(t *testing.T) {
	buf := make([]limb.Word, 2)
	s := bitspan.New(buf, 70, bitspan.Unsigned, bitspan.ReadWrite, bitspan.Normal)
	s.Write(0, 0xdeadbeef)
	s.Write(1, 0x3f)
	require.Equal(t, limb.Word(0xdeadbeef), s.Read(0))
	require.Equal(t, limb.Word(0x3f), s.Read(1))
}

func TestExtendedReadSignExtends(t *testing.T) {
	buf := []limb.Word{0, ^limb.Word(0)}
	s := bitspan.New(buf, 128, bitspan.Signed, bitspan.Read, bitspan.Normal)
	require.Equal(t, ^limb.Word(0), s.ExtendedRead(2))
	require.Equal(t, ^limb.Word(0), s.ExtendedRead(5))
}

func TestExtendedReadZeroExtendsUnsigned(t *testing.T) {
	buf := []limb.Word{1, 2}
	s := bitspan.New(buf, 128, bitspan.Unsigned, bitspan.Read, bitspan.Normal)
	require.Equal(t, limb.Word(0), s.ExtendedRead(5))
}

func TestSelect(t *testing.T) {
	a := bitspan.New([]limb.Word{1, 2}, 128, bitspan.Unsigned, bitspan.Read, bitspan.Normal)
	b := bitspan.New([]limb.Word{9, 9}, 128, bitspan.Unsigned, bitspan.Read, bitspan.Normal)

	require.Equal(t, []limb.Word{1, 2}, bitspan.Select(0, a, b))
	require.Equal(t, []limb.Word{9, 9}, bitspan.Select(^limb.Word(0), a, b))
}

func TestNormalize(t *testing.T) {
	buf := []limb.Word{0, 0xff}
	s := bitspan.New(buf, 70, bitspan.Unsigned, bitspan.ReadWrite, bitspan.Unnormal)
	s.Normalize()
	require.Equal(t, limb.Word(0x3f), buf[1])
}

func TestSub(t *testing.T) {
	buf := []limb.Word{1, 2, 3, 4}
	s := bitspan.New(buf, 256, bitspan.Unsigned, bitspan.Read, bitspan.Normal)
	lead := s.Leading(2)
	require.Equal(t, limb.Word(3), lead.Read(0))
	require.Equal(t, limb.Word(4), lead.Read(1))
}
