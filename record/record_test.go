package record

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func newUint64Sum() Sum {
	var s Uint64Sum
	return &s
}

func TestRecordRoundTrip(t *testing.T) {
	var sum Uint64Sum = 42
	r := Record{Sum: sum}
	for i := range r.Hash {
		r.Hash[i] = byte(i)
	}

	buf := r.Encode(nil)
	require.Len(t, buf, RecordLen(8))

	got, err := Decode(buf, newUint64Sum)
	require.NoError(t, err)
	require.Equal(t, r.Hash, got.Hash)
	require.Equal(t, sum, *got.Sum.(*Uint64Sum))
}

func TestRecordDecodeShortBuffer(t *testing.T) {
	_, err := Decode(make([]byte, HashLen-1), newUint64Sum)
	require.ErrorIs(t, err, ErrShortBuffer)

	_, err = Decode(make([]byte, HashLen+4), newUint64Sum)
	require.ErrorIs(t, err, ErrShortBuffer)
}

func TestBinaryCodecRoundTrip(t *testing.T) {
	codec := NewBinaryCodec(newUint64Sum)
	require.Equal(t, 40, codec.RecordLen())

	var sum Uint64Sum = 7
	r := Record{Sum: sum}
	r.Hash[0] = 0xAB

	buf := codec.EncodeRecord(nil, r)
	require.Len(t, buf, 40)

	got, err := codec.DecodeRecord(buf)
	require.NoError(t, err)
	require.Equal(t, r.Hash, got.Hash)
}

func TestBinaryCodecDecodeMultipleRecords(t *testing.T) {
	codec := NewBinaryCodec(newUint64Sum)
	var buf []byte
	for i := uint64(0); i < 3; i++ {
		r := Record{Sum: Uint64Sum(i * 10)}
		r.Hash[0] = byte(i)
		buf = codec.EncodeRecord(buf, r)
	}
	require.Len(t, buf, 3*40)

	for i := 0; i < 3; i++ {
		rec, err := codec.DecodeRecord(buf[i*40:])
		require.NoError(t, err)
		require.Equal(t, byte(i), rec.Hash[0])
		require.Equal(t, Uint64Sum(uint64(i)*10), *rec.Sum.(*Uint64Sum))
	}
}

func TestEncodeDecodePositions(t *testing.T) {
	positions := []uint64{1, 2, 4, 5, 100, 1 << 40}
	buf := EncodePositions(positions)
	require.Len(t, buf, len(positions)*8)

	got, err := DecodePositions(buf)
	require.NoError(t, err)
	require.Equal(t, positions, got)
}

func TestDecodePositionsEmpty(t *testing.T) {
	got, err := DecodePositions(nil)
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestDecodePositionsCorrupt(t *testing.T) {
	_, err := DecodePositions([]byte{1, 2, 3})
	require.ErrorIs(t, err, ErrCorrupt)
}

func TestFixedWidthSumRoundTrip(t *testing.T) {
	s := NewFixedWidthSum(16).(*FixedWidthSum)
	require.Equal(t, 16, s.Len())
	require.NoError(t, s.SetBytes(make([]byte, 16)))

	buf := s.Encode(nil)
	require.Len(t, buf, 16)

	var s2 FixedWidthSum
	s2.width = 16
	require.NoError(t, s2.Decode(buf))
}

func TestFixedWidthSumSetBytesWrongLength(t *testing.T) {
	s := NewFixedWidthSum(8).(*FixedWidthSum)
	require.Error(t, s.SetBytes([]byte{1, 2, 3}))
}
