package pmmr

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPruneListEmpty(t *testing.T) {
	pl := New()
	shift, ok := pl.GetShift(1)
	require.True(t, ok)
	require.Equal(t, uint64(0), shift)

	_, pruned := pl.PrunedPos(1)
	require.False(t, pruned)
}

func TestPruneListSingleLeaves(t *testing.T) {
	// Mirrors spec.md scenario 4/5: append positions 1..5, prune leaves 2
	// and 4 (2's sibling is 1 and 4's sibling is 5, neither of which is
	// pruned -- neither pair coalesces).
	pl := New()
	pl.Add(2)
	pl.Add(4)

	require.Equal(t, []uint64{2, 4}, pl.PrunedNodes)

	_, pruned := pl.PrunedPos(2)
	require.True(t, pruned)
	_, pruned = pl.PrunedPos(4)
	require.True(t, pruned)

	shift, ok := pl.GetShift(3)
	require.True(t, ok)
	require.Equal(t, uint64(1), shift)

	shift, ok = pl.GetShift(5)
	require.True(t, ok)
	require.Equal(t, uint64(2), shift)

	shift, ok = pl.GetShift(1)
	require.True(t, ok)
	require.Equal(t, uint64(0), shift)
}

func TestPruneListCoalesces(t *testing.T) {
	// Prune both leaves of the first mountain (1, 2): they share parent 3,
	// so once both are pruned the list should collapse to a single root.
	pl := New()
	pl.Add(1)
	require.Equal(t, []uint64{1}, pl.PrunedNodes)

	pl.Add(2)
	require.Equal(t, []uint64{3}, pl.PrunedNodes, "sibling leaves coalesce into their parent")

	// 3 and its descendants (1, 2) are all unaddressable now.
	for _, pos := range []uint64{1, 2, 3} {
		_, pruned := pl.PrunedPos(pos)
		require.True(t, pruned, "pos=%d", pos)
	}

	shift, ok := pl.GetShift(4)
	require.True(t, ok)
	require.Equal(t, uint64(3), shift)
}

func TestPruneListCoalescesUpward(t *testing.T) {
	// Prune leaves 1, 2, 4, 5 -- their parents 3 and 6 are siblings too, so
	// the whole mountain collapses to the single root 7.
	pl := New()
	for _, pos := range []uint64{1, 2, 4, 5} {
		pl.Add(pos)
	}
	require.Equal(t, []uint64{7}, pl.PrunedNodes)

	shift, ok := pl.GetShift(8)
	require.True(t, ok)
	require.Equal(t, uint64(7), shift)
}

func TestPruneListAddIsIdempotent(t *testing.T) {
	pl := New()
	pl.Add(2)
	before := append([]uint64(nil), pl.PrunedNodes...)
	pl.Add(2)
	require.Equal(t, before, pl.PrunedNodes)
}
