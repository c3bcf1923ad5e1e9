package buffer

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/sumtree/pmmrstore/record"
)

func mkRecord(b byte, sum uint64) record.Record {
	r := record.Record{Sum: record.Uint64Sum(sum)}
	r.Hash[0] = b
	return r
}

func TestVecBufferAppendGet(t *testing.T) {
	buf := New()
	require.Equal(t, 0, buf.Len())

	pos := buf.Append(mkRecord(1, 10))
	require.Equal(t, 0, pos)
	pos = buf.Append(mkRecord(2, 20))
	require.Equal(t, 1, pos)
	require.Equal(t, 2, buf.Len())

	got, err := buf.Get(0)
	require.NoError(t, err)
	require.Equal(t, byte(1), got.Hash[0])

	got, err = buf.Get(1)
	require.NoError(t, err)
	require.Equal(t, byte(2), got.Hash[0])
}

func TestVecBufferGetOutOfRange(t *testing.T) {
	buf := New()
	buf.Append(mkRecord(1, 10))

	_, err := buf.Get(-1)
	require.Error(t, err)

	_, err = buf.Get(1)
	require.Error(t, err)
}

func TestVecBufferClear(t *testing.T) {
	buf := New()
	buf.Append(mkRecord(1, 10))
	buf.Append(mkRecord(2, 20))
	require.Equal(t, 2, buf.Len())

	buf.Clear()
	require.Equal(t, 0, buf.Len())
	_, err := buf.Get(0)
	require.Error(t, err)
}

func TestVecBufferRemoveTombstonesWithoutShiftingPositions(t *testing.T) {
	buf := New()
	buf.Append(mkRecord(1, 10))
	buf.Append(mkRecord(2, 20))
	buf.Append(mkRecord(3, 30))
	require.Equal(t, 3, buf.Len())
	require.Equal(t, 3, buf.UsedSize())

	buf.Remove([]int{1})

	_, err := buf.Get(1)
	require.Error(t, err)

	require.Equal(t, 3, buf.Len(), "len must stay in lockstep with positions ever appended")
	require.Equal(t, 2, buf.UsedSize())

	got, err := buf.Get(0)
	require.NoError(t, err)
	require.Equal(t, byte(1), got.Hash[0])

	got, err = buf.Get(2)
	require.NoError(t, err)
	require.Equal(t, byte(3), got.Hash[0])
}

func TestVecBufferRemoveOutOfRangeIsIgnored(t *testing.T) {
	buf := New()
	buf.Append(mkRecord(1, 10))

	require.NotPanics(t, func() {
		buf.Remove([]int{-1, 5})
	})
	require.Equal(t, 1, buf.UsedSize())
}

func TestVecBufferClearResetsTombstones(t *testing.T) {
	buf := New()
	buf.Append(mkRecord(1, 10))
	buf.Remove([]int{0})
	require.Equal(t, 0, buf.UsedSize())

	buf.Clear()
	require.Equal(t, 0, buf.Len())

	pos := buf.Append(mkRecord(2, 20))
	require.Equal(t, 0, pos)
	got, err := buf.Get(0)
	require.NoError(t, err)
	require.Equal(t, byte(2), got.Hash[0])
}
