package store

import (
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/sumtree/pmmrstore/record"
)

// removeLog is a durable, in-memory-cached ordered set of MMR positions
// that have been logically removed but whose records still occupy the
// data file, pending compaction.
type removeLog struct {
	mu      sync.RWMutex
	path    string
	file    *os.File
	removed []uint64 // sorted ascending, no duplicates
}

// openRemoveLog loads path (if present) via readOrderedVec into removed,
// then opens path for append.
func openRemoveLog(path string) (*removeLog, error) {
	removed, err := readOrderedVec(path)
	if err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrIO, path, err)
	}
	return &removeLog{path: path, file: f, removed: removed}, nil
}

// Append inserts each position into the in-memory set and the file,
// skipping any already present. Duplicates within positions itself are
// absorbed the same way. Ends with an fsync whenever at least one position
// was written.
func (r *removeLog) Append(positions []uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	wrote := false
	for _, pos := range positions {
		idx := sort.Search(len(r.removed), func(i int) bool { return r.removed[i] >= pos })
		if idx < len(r.removed) && r.removed[idx] == pos {
			continue
		}
		if _, err := r.file.Write(record.EncodePositions([]uint64{pos})); err != nil {
			return fmt.Errorf("%w: append %s: %v", ErrStorageFull, r.path, err)
		}
		r.removed = append(r.removed, 0)
		copy(r.removed[idx+1:], r.removed[idx:])
		r.removed[idx] = pos
		wrote = true
	}
	if !wrote {
		return nil
	}
	if err := r.file.Sync(); err != nil {
		return fmt.Errorf("%w: fsync %s: %v", ErrIO, r.path, err)
	}
	return nil
}

// Includes reports whether position is currently in the removal log.
func (r *removeLog) Includes(position uint64) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	idx := sort.Search(len(r.removed), func(i int) bool { return r.removed[i] >= position })
	return idx < len(r.removed) && r.removed[idx] == position
}

// Len returns the number of positions currently tracked.
func (r *removeLog) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.removed)
}

// Positions returns a copy of the removal log's contents in ascending
// order.
func (r *removeLog) Positions() []uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]uint64, len(r.removed))
	copy(out, r.removed)
	return out
}

// Truncate clears the in-memory set and truncates the backing file to
// zero length. Called at the end of a successful compaction.
func (r *removeLog) Truncate() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.removed = nil
	if err := r.file.Truncate(0); err != nil {
		return fmt.Errorf("%w: truncate %s: %v", ErrIO, r.path, err)
	}
	if _, err := r.file.Seek(0, 0); err != nil {
		return fmt.Errorf("%w: seek %s: %v", ErrIO, r.path, err)
	}
	return nil
}

// Close closes the backing file.
func (r *removeLog) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.file.Close(); err != nil {
		return fmt.Errorf("%w: close %s: %v", ErrIO, r.path, err)
	}
	return nil
}
