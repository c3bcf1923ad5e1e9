// Package record defines the node record stored per MMR position and the
// codec used to put it on disk. The PMMR storage engine (package store)
// treats both as external collaborators: it only needs a fixed record
// width and a way to encode/decode it and the position stream, never the
// tree algebra that produced the hash or the sum.
package record

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// HashLen is the width, in bytes, of the hash half of every record.
const HashLen = 32

// ErrShortBuffer is returned by Decode when the supplied buffer is smaller
// than the record's fixed width.
var ErrShortBuffer = errors.New("record: buffer too short to decode")

// Sum is a fixed-width numeric aggregate carried alongside a node's hash.
// Implementations are expected to be small value types (a uint64 balance,
// a [16]byte total, and so on) -- Len is fixed by the concrete type (or,
// for FixedWidthSum, by the width it was constructed with), never
// data-dependent.
type Sum interface {
	// Len returns the encoded width in bytes. Must be the same for every
	// value a given sum constructor returns.
	Len() int
	// Encode appends the sum's binary encoding to dst and returns the
	// result.
	Encode(dst []byte) []byte
	// Decode populates the sum from the first Len() bytes of src.
	Decode(src []byte) error
}

// Uint64Sum is the common case: a single little-endian uint64, e.g. a
// monetary total aggregated up the tree. Len() == 8, so record_len == 40.
type Uint64Sum uint64

// Len implements Sum.
func (Uint64Sum) Len() int { return 8 }

// Encode implements Sum.
func (s Uint64Sum) Encode(dst []byte) []byte {
	return binary.LittleEndian.AppendUint64(dst, uint64(s))
}

// Decode implements Sum.
func (s *Uint64Sum) Decode(src []byte) error {
	if len(src) < 8 {
		return ErrShortBuffer
	}
	*s = Uint64Sum(binary.LittleEndian.Uint64(src))
	return nil
}

// FixedWidthSum is an opaque byte blob of a width fixed at construction
// time, for callers (like the CLI) that need to address an arbitrary sum
// width chosen at runtime rather than baked into a Go type.
type FixedWidthSum struct {
	width int
	bytes []byte
}

// NewFixedWidthSum returns a zero-valued FixedWidthSum of the given width,
// suitable as the newSum constructor passed to a BinaryCodec or to
// store.Open.
func NewFixedWidthSum(width int) Sum {
	return &FixedWidthSum{width: width, bytes: make([]byte, width)}
}

// Len implements Sum.
func (s *FixedWidthSum) Len() int { return s.width }

// Bytes returns the sum's raw bytes.
func (s *FixedWidthSum) Bytes() []byte { return s.bytes }

// SetBytes overwrites the sum's value. src must be exactly Len() bytes.
func (s *FixedWidthSum) SetBytes(src []byte) error {
	if len(src) != s.width {
		return fmt.Errorf("record: fixed-width sum expects %d bytes, got %d", s.width, len(src))
	}
	copy(s.bytes, src)
	return nil
}

// Encode implements Sum.
func (s *FixedWidthSum) Encode(dst []byte) []byte {
	return append(dst, s.bytes...)
}

// Decode implements Sum.
func (s *FixedWidthSum) Decode(src []byte) error {
	if len(src) < s.width {
		return ErrShortBuffer
	}
	if s.bytes == nil {
		s.bytes = make([]byte, s.width)
	}
	copy(s.bytes, src[:s.width])
	return nil
}

// Record is the payload stored per MMR position: a 32-byte hash plus a
// fixed-width Sum. RecordLen, for a given Sum width S, is always 32+S --
// records are fixed width so that logical index -> byte offset is a
// multiplication, never a scan.
type Record struct {
	Hash [HashLen]byte
	Sum  Sum
}

// RecordLen returns the on-disk width of a record carrying a sum of the
// given width.
func RecordLen(sumLen int) int {
	return HashLen + sumLen
}

// Encode appends the record's wire encoding (hash, then sum) to dst.
func (r Record) Encode(dst []byte) []byte {
	dst = append(dst, r.Hash[:]...)
	return r.Sum.Encode(dst)
}

// Decode populates r from src, which must be at least RecordLen(newSum().Len())
// bytes. newSum constructs a zero-value Sum of the caller's concrete type so
// Decode knows what to unmarshal into.
func Decode(src []byte, newSum func() Sum) (Record, error) {
	if len(src) < HashLen {
		return Record{}, ErrShortBuffer
	}
	var r Record
	copy(r.Hash[:], src[:HashLen])
	sum := newSum()
	rest := src[HashLen:]
	if len(rest) < sum.Len() {
		return Record{}, fmt.Errorf("record: %w: need %d sum bytes, have %d", ErrShortBuffer, sum.Len(), len(rest))
	}
	if err := sum.Decode(rest); err != nil {
		return Record{}, err
	}
	r.Sum = sum
	return r, nil
}
