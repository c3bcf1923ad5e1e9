package record

import (
	"encoding/binary"
	"fmt"
)

// Codec encodes and decodes the fixed-width Record stream the storage
// engine reads out of the append-only data file. A Codec is tied to one
// concrete Sum type: NewSum must always return a fresh zero value of that
// type, and every record the codec decodes is assumed to carry a sum of
// that width.
type Codec interface {
	// RecordLen is the fixed on-disk width of one record under this codec.
	RecordLen() int
	// EncodeRecord appends r's wire encoding to dst.
	EncodeRecord(dst []byte, r Record) []byte
	// DecodeRecord reads exactly RecordLen() bytes off the front of src.
	DecodeRecord(src []byte) (Record, error)
}

// BinaryCodec is the default Codec: hash followed by a little-endian sum,
// the same fixed-width-field layout dittofs's WAL persister uses for its
// own on-disk records rather than a general-purpose marshaller.
type BinaryCodec struct {
	NewSum func() Sum
}

// NewBinaryCodec returns a BinaryCodec bound to the given sum constructor.
func NewBinaryCodec(newSum func() Sum) *BinaryCodec {
	return &BinaryCodec{NewSum: newSum}
}

// RecordLen implements Codec.
func (c *BinaryCodec) RecordLen() int {
	return RecordLen(c.NewSum().Len())
}

// EncodeRecord implements Codec.
func (c *BinaryCodec) EncodeRecord(dst []byte, r Record) []byte {
	return r.Encode(dst)
}

// DecodeRecord implements Codec.
func (c *BinaryCodec) DecodeRecord(src []byte) (Record, error) {
	want := c.RecordLen()
	if len(src) < want {
		return Record{}, fmt.Errorf("record: %w: need %d bytes, have %d", ErrShortBuffer, want, len(src))
	}
	return Decode(src[:want], c.NewSum)
}

// ErrCorrupt is returned by DecodePositions when the byte stream is not an
// exact multiple of 8 bytes -- the ordered-vector file can only ever hold
// whole uint64 positions.
var ErrCorrupt = fmt.Errorf("record: corrupted position stream")

// EncodePositions serializes a sorted slice of one-based positions as
// consecutive little-endian uint64s. There is no length prefix: like the
// codec it mirrors, the stream is self-delimiting by virtue of every
// element having the same width, and the file's own size marks the end.
func EncodePositions(positions []uint64) []byte {
	buf := make([]byte, 0, len(positions)*8)
	for _, p := range positions {
		buf = binary.LittleEndian.AppendUint64(buf, p)
	}
	return buf
}

// DecodePositions parses a stream produced by EncodePositions. It returns
// ErrCorrupt if the buffer length is not a multiple of 8.
func DecodePositions(buf []byte) ([]uint64, error) {
	if len(buf)%8 != 0 {
		return nil, fmt.Errorf("%w: length %d not a multiple of 8", ErrCorrupt, len(buf))
	}
	out := make([]uint64, 0, len(buf)/8)
	for i := 0; i < len(buf); i += 8 {
		out = append(out, binary.LittleEndian.Uint64(buf[i:i+8]))
	}
	return out, nil
}
