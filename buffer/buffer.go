// Package buffer implements the write buffer the PMMR backend stages
// freshly appended records in before they are flushed to the append-only
// data file. Positions it is addressed by are relative to the first
// position the buffer holds, not absolute MMR positions -- the backend
// owns the translation between the two.
package buffer

import (
	"fmt"
	"sync"

	"github.com/sumtree/pmmrstore/record"
)

// VecBuffer is a slice-backed staging area for records that have been
// appended to the logical MMR but not yet synced to the backing file. It
// mirrors the Rust VecBackend referenced by the original sumtree store:
// a plain growable vector, addressed by an offset relative to its own
// start, with no notion of absolute position or persistence. Removed
// slots are tombstoned rather than spliced out, since every later
// relative position is derived from the buffer's own length -- splicing
// would shift every position after the removed one out from under the
// backend's bufferIndex arithmetic.
type VecBuffer struct {
	mu        sync.RWMutex
	records   []record.Record
	tombstone []bool
}

// New returns an empty VecBuffer.
func New() *VecBuffer {
	return &VecBuffer{}
}

// Append adds r to the end of the buffer and returns its relative
// position (zero-based offset from the buffer's own start).
func (b *VecBuffer) Append(r record.Record) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.records = append(b.records, r)
	b.tombstone = append(b.tombstone, false)
	return len(b.records) - 1
}

// Get returns the record at the given relative position, or an error if
// the position is out of range or has been removed.
func (b *VecBuffer) Get(relPos int) (record.Record, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if relPos < 0 || relPos >= len(b.records) {
		return record.Record{}, fmt.Errorf("buffer: relative position %d out of range [0,%d)", relPos, len(b.records))
	}
	if b.tombstone[relPos] {
		return record.Record{}, fmt.Errorf("buffer: relative position %d has been removed", relPos)
	}
	return b.records[relPos], nil
}

// Remove tombstones the records at the given relative positions, so that
// Get no longer returns them. Out-of-range positions are ignored. Len is
// unaffected: the buffer's length must stay in lockstep with the number
// of positions ever appended to it, since the backend derives later
// relative positions from it.
func (b *VecBuffer) Remove(relPositions []int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, rp := range relPositions {
		if rp >= 0 && rp < len(b.tombstone) {
			b.tombstone[rp] = true
		}
	}
}

// Len returns the number of records ever appended to the buffer since the
// last Clear, including tombstoned ones.
func (b *VecBuffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.records)
}

// UsedSize reports how many staged records are still live (appended and
// not tombstoned), mirroring VecBackend's used_size -- the gate the
// original store checks before bothering to translate positions into the
// buffer's own addressing at all.
func (b *VecBuffer) UsedSize() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	n := 0
	for _, t := range b.tombstone {
		if !t {
			n++
		}
	}
	return n
}

// Clear discards every staged record, e.g. after a successful flush to
// the append-only file.
func (b *VecBuffer) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.records = nil
	b.tombstone = nil
}
