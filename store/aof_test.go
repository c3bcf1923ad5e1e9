package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAppendOnlyFileAppendSyncRead(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.bin")

	f, err := openAppendOnlyFile(path)
	require.NoError(t, err)
	defer f.Close()

	require.Nil(t, f.Read(0, 4), "no mmap yet, read must return nil")

	require.NoError(t, f.Append([]byte("abcd")))
	require.NoError(t, f.Append([]byte("efgh")))

	size, err := f.Size()
	require.NoError(t, err)
	require.EqualValues(t, 8, size)

	require.NoError(t, f.Sync())

	require.Equal(t, []byte("abcd"), f.Read(0, 4))
	require.Equal(t, []byte("efgh"), f.Read(4, 4))
	require.Equal(t, []byte("bcde"), f.Read(1, 4))
}

func TestAppendOnlyFileSavePruneSkipsRanges(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.bin")

	f, err := openAppendOnlyFile(path)
	require.NoError(t, err)
	defer f.Close()

	// Four 4-byte records.
	require.NoError(t, f.Append([]byte("aaaa")))
	require.NoError(t, f.Append([]byte("bbbb")))
	require.NoError(t, f.Append([]byte("cccc")))
	require.NoError(t, f.Append([]byte("dddd")))
	require.NoError(t, f.Sync())

	target := filepath.Join(dir, "data.bin.prune")
	// Skip bbbb (offset 4) and dddd (offset 12); keep aaaa and cccc.
	require.NoError(t, f.SavePrune(target, []uint64{4, 12}, 4))

	out, err := os.ReadFile(target)
	require.NoError(t, err)
	require.Equal(t, "aaaacccc", string(out))
}

func TestAppendOnlyFileSavePruneEmptyIsCopy(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.bin")

	f, err := openAppendOnlyFile(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, f.Append([]byte("aaaabbbb")))
	require.NoError(t, f.Sync())

	target := filepath.Join(dir, "copy.bin")
	require.NoError(t, f.SavePrune(target, nil, 4))

	out, err := os.ReadFile(target)
	require.NoError(t, err)
	require.Equal(t, "aaaabbbb", string(out))
}
