package pmmr

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPosHeight(t *testing.T) {
	// positions from the canonical 18-node MMR:
	//
	//  3            15
	//  2       7          14
	//  1    3     6    10     13      18
	//  0   1  2  4  5  8  9  11  12  16  17
	cases := map[uint64]uint64{
		1: 0, 2: 0, 3: 1, 4: 0, 5: 0, 6: 1, 7: 2,
		8: 0, 9: 0, 10: 1, 11: 0, 12: 0, 13: 1, 14: 2, 15: 3,
		16: 0, 17: 0, 18: 1,
	}
	for pos, want := range cases {
		require.Equal(t, want, PosHeight(pos), "pos=%d", pos)
	}
}

func TestSiblingAndParent(t *testing.T) {
	type pair struct{ pos, sibling, parent uint64 }
	cases := []pair{
		{1, 2, 3},
		{2, 1, 3},
		{4, 5, 6},
		{5, 4, 6},
		{3, 6, 7},
		{6, 3, 7},
		{10, 13, 14},
		{13, 10, 14},
		{7, 14, 15},
		{14, 7, 15},
	}
	for _, c := range cases {
		h := PosHeight(c.pos)
		require.Equal(t, c.sibling, SiblingPos(c.pos, h), "sibling of %d", c.pos)
		require.Equal(t, c.parent, ParentPos(c.pos, h), "parent of %d", c.pos)
	}
}

func TestAllOnes(t *testing.T) {
	require.True(t, AllOnes(1))
	require.True(t, AllOnes(3))
	require.True(t, AllOnes(7))
	require.False(t, AllOnes(2))
	require.False(t, AllOnes(4))
	require.False(t, AllOnes(6))
}
