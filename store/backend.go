// Package store implements the PMMR storage engine: an append-only,
// memory-mapped data file indexed by monotonic MMR position, a durable
// removal log, and periodic compaction that physically reclaims pruned
// space while keeping every live position addressable.
package store

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/sumtree/pmmrstore/buffer"
	"github.com/sumtree/pmmrstore/internal/metrics"
	"github.com/sumtree/pmmrstore/internal/telemetry/logging"
	"github.com/sumtree/pmmrstore/pmmr"
	"github.com/sumtree/pmmrstore/record"
)

// File names under a configured data directory.
const (
	dataFileName    = "pmmr_dat.bin"
	removeLogName   = "pmmr_rm_log.bin"
	prunedFileName  = "pmmr_pruned.bin"
	pruneTmpSuffix  = ".prune"
	defaultRmLogMax = 10000 // RM_LOG_MAX_NODES
)

// Backend is the composite PMMR store: it orchestrates the write buffer,
// the append-only data file, the removal log and the prune list behind a
// single position-indexed get/append/remove/sync/compact surface.
type Backend struct {
	dataDir string
	codec   *record.BinaryCodec

	dataFile  *appendOnlyFile
	removeLog *removeLog
	pruneList *pmmr.PruneList
	buf       *buffer.VecBuffer

	recordLen   int
	bufferIndex uint64 // count of positions fully persisted as of the last sync

	metrics *metrics.Collectors // nil-safe; only set via WithMetrics
}

// Option configures optional Backend behavior at Open time.
type Option func(*Backend)

// WithMetrics attaches a Prometheus collector set. The backend reports
// into it on every mutating operation.
func WithMetrics(m *metrics.Collectors) Option {
	return func(b *Backend) { b.metrics = m }
}

// Open constructs a Backend rooted at dataDir, creating the directory, the
// data file and the removal log if absent (pmmr_pruned.bin is first
// written by a compaction). newSum must construct a zero-value Sum
// of the concrete type this store's records carry; its Len() determines
// record_len = 32 + S for the lifetime of the store.
func Open(dataDir string, newSum func() record.Sum, opts ...Option) (*Backend, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("%w: mkdir %s: %v", ErrIO, dataDir, err)
	}

	codec := record.NewBinaryCodec(newSum)
	recordLen := codec.RecordLen()

	dataFile, err := openAppendOnlyFile(filepath.Join(dataDir, dataFileName))
	if err != nil {
		return nil, err
	}
	size, err := dataFile.Size()
	if err != nil {
		return nil, err
	}

	rmLog, err := openRemoveLog(filepath.Join(dataDir, removeLogName))
	if err != nil {
		return nil, err
	}

	prunedNodes, err := readOrderedVec(filepath.Join(dataDir, prunedFileName))
	if err != nil {
		return nil, err
	}

	// Make the bytes already on disk readable immediately: an
	// AppendOnlyFile has no mmap until the first Sync.
	if err := dataFile.Sync(); err != nil {
		return nil, err
	}

	b := &Backend{
		dataDir:     dataDir,
		codec:       codec,
		dataFile:    dataFile,
		removeLog:   rmLog,
		pruneList:   &pmmr.PruneList{PrunedNodes: prunedNodes},
		buf:         buffer.New(),
		recordLen:   recordLen,
		bufferIndex: uint64(size) / uint64(recordLen),
	}
	for _, opt := range opts {
		opt(b)
	}
	logging.With(logging.DataDir(dataDir)).Info("opened pmmr backend",
		slog.Uint64("buffer_index", b.bufferIndex), slog.Int("record_len", recordLen))
	return b, nil
}

// Append inserts records at contiguous positions starting at position.
// position must equal the current write frontier (bufferIndex +
// len(buffer) + 1); anything else is a programmer error.
func (b *Backend) Append(position uint64, records []record.Record) error {
	frontier := b.bufferIndex + uint64(b.buf.Len()) + 1
	if position != frontier {
		return fmt.Errorf("%w: got %d, want %d", ErrOutOfOrderAppend, position, frontier)
	}

	for _, r := range records {
		b.buf.Append(r)
		buf := b.codec.EncodeRecord(nil, r)
		if err := b.dataFile.Append(buf); err != nil {
			return err
		}
		b.metrics.ObserveAppend(1)
	}
	return nil
}

// resolution tags which layer satisfied a Get, matching the "small
// enumeration of resolution outcomes" the layered read design calls for.
type resolution int

const (
	resolvedNone resolution = iota
	resolvedBuffer
	resolvedRemoved
	resolvedPruned
	resolvedDisk
)

// Get returns the record at position, or (Record{}, false) if it is
// absent: removed, pruned, or never written.
func (b *Backend) Get(position uint64) (record.Record, bool) {
	switch res, relOrShift := b.resolve(position); res {
	case resolvedBuffer:
		r, err := b.buf.Get(int(relOrShift))
		if err != nil {
			return record.Record{}, false
		}
		return r, true
	case resolvedRemoved, resolvedPruned, resolvedNone:
		return record.Record{}, false
	case resolvedDisk:
		offset := (int64(position) - 1 - int64(relOrShift)) * int64(b.recordLen)
		raw := b.dataFile.Read(int(offset), b.recordLen)
		if raw == nil {
			return record.Record{}, false
		}
		rec, err := b.codec.DecodeRecord(raw)
		if err != nil {
			logging.With(logging.Position(position), logging.Err(err)).
				Error("corrupted storage, could not decode record")
			return record.Record{}, false
		}
		return rec, true
	default:
		return record.Record{}, false
	}
}

// resolve classifies position into one of the four disjoint addressable
// layers (buffer, removal log, pruned, disk) and returns the extra datum
// each branch needs: the buffer's relative offset, or the prune-list
// shift. Positions classified resolvedNone/resolvedRemoved/resolvedPruned
// carry no meaningful second value.
func (b *Backend) resolve(position uint64) (resolution, uint64) {
	if position > b.bufferIndex && position <= b.bufferIndex+uint64(b.buf.Len()) {
		return resolvedBuffer, position - b.bufferIndex - 1
	}
	if b.removeLog.Includes(position) {
		return resolvedRemoved, 0
	}
	shift, ok := b.pruneList.GetShift(position)
	if !ok {
		return resolvedPruned, 0
	}
	return resolvedDisk, shift
}

// Remove stages positions for deletion: they are dropped from the buffer
// (if still resident there) and appended to the durable removal log.
// Removing an already-removed position is a no-op for that position.
func (b *Backend) Remove(positions []uint64) error {
	if b.buf.UsedSize() > 0 {
		relPositions := make([]int, 0, len(positions))
		for _, pos := range positions {
			if pos > b.bufferIndex && pos <= b.bufferIndex+uint64(b.buf.Len()) {
				relPositions = append(relPositions, int(pos-b.bufferIndex-1))
			}
		}
		if len(relPositions) > 0 {
			b.buf.Remove(relPositions)
		}
	}

	if err := b.removeLog.Append(positions); err != nil {
		return err
	}
	b.metrics.ObserveRemove(len(positions))
	b.metrics.SetRemoveLogSize(b.removeLog.Len())
	return nil
}

// Sync advances bufferIndex past every currently buffered record, clears
// the buffer, and fsyncs + remaps the data file so every appended record
// becomes visible to Get.
func (b *Backend) Sync() error {
	b.bufferIndex += uint64(b.buf.Len())
	b.buf.Clear()
	if err := b.dataFile.Sync(); err != nil {
		return err
	}
	if size, err := b.dataFile.Size(); err == nil {
		b.metrics.SetDataFileBytes(size)
	}
	return nil
}

// CheckCompact compacts the data file if the removal log exceeds maxLen
// (or defaultRmLogMax when maxLen is 0). It is a no-op otherwise.
//
// Compaction aborts without side effect if any removal-log position is
// already present in the prune list -- the safer precondition polarity
// the design notes call for, since re-applying an offset shift to an
// already-shifted position would corrupt the rewrite.
func (b *Backend) CheckCompact(maxLen int) error {
	threshold := defaultRmLogMax
	if maxLen > 0 {
		threshold = maxLen
	}
	if b.removeLog.Len() <= threshold {
		return nil
	}

	removed := b.removeLog.Positions()

	for _, pos := range removed {
		if _, alreadyPruned := b.pruneList.PrunedPos(pos); alreadyPruned {
			logging.With(logging.Position(pos)).
				Error("removal log contains a position already in the prune list, a previous compaction likely failed")
			return fmt.Errorf("%w: position %d already pruned", ErrPrecondition, pos)
		}
	}

	// 1. Rewrite the data file, skipping every removed record's current
	// byte range.
	offsets := make([]uint64, 0, len(removed))
	for _, pos := range removed {
		shift, ok := b.pruneList.GetShift(pos)
		if !ok {
			return fmt.Errorf("%w: position %d unexpectedly already pruned mid-compaction", ErrPrecondition, pos)
		}
		offsets = append(offsets, (pos-1-shift)*uint64(b.recordLen))
	}

	tmpPath := filepath.Join(b.dataDir, dataFileName+pruneTmpSuffix)
	if err := b.dataFile.SavePrune(tmpPath, offsets, b.recordLen); err != nil {
		return err
	}

	// 2. Absorb the removed positions into the prune list and persist it.
	for _, pos := range removed {
		b.pruneList.Add(pos)
	}
	if err := writeVec(filepath.Join(b.dataDir, prunedFileName), b.pruneList.PrunedNodes); err != nil {
		return err
	}

	// 3. Swap the compacted file in as the commit point, then re-open and
	// sync it so reads work immediately.
	dataPath := filepath.Join(b.dataDir, dataFileName)
	if err := b.dataFile.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmpPath, dataPath); err != nil {
		return fmt.Errorf("%w: rename %s -> %s: %v", ErrIO, tmpPath, dataPath, err)
	}
	newFile, err := openAppendOnlyFile(dataPath)
	if err != nil {
		return err
	}
	if err := newFile.Sync(); err != nil {
		return err
	}
	b.dataFile = newFile

	// 4. Truncate the removal log. The original store leaves this
	// commented out; without it the next compaction recomputes offsets
	// for positions the prune list already accounts for and the shift
	// arithmetic diverges.
	if err := b.removeLog.Truncate(); err != nil {
		return err
	}

	b.metrics.ObserveCompaction()
	b.metrics.SetRemoveLogSize(0)
	b.metrics.SetPruneListSize(b.pruneList.Len())
	if size, err := b.dataFile.Size(); err == nil {
		b.metrics.SetDataFileBytes(size)
	}

	logging.With(logging.Count(len(removed))).Info("compaction complete")
	return nil
}

// Stats is a read-only snapshot of the backend's current bookkeeping,
// consumed by the CLI's stat subcommand.
type Stats struct {
	BufferLen    int
	RemoveLogLen int
	PruneListLen int
	DataFileSize int64
}

// Stats returns a point-in-time snapshot of the backend's state.
func (b *Backend) Stats() (Stats, error) {
	size, err := b.dataFile.Size()
	if err != nil {
		return Stats{}, err
	}
	return Stats{
		BufferLen:    b.buf.Len(),
		RemoveLogLen: b.removeLog.Len(),
		PruneListLen: b.pruneList.Len(),
		DataFileSize: size,
	}, nil
}

// RecordLen returns the fixed on-disk width of one record under this
// backend's sum type.
func (b *Backend) RecordLen() int {
	return b.recordLen
}

// Close releases the backend's open file handles.
func (b *Backend) Close() error {
	if err := b.removeLog.Close(); err != nil {
		return err
	}
	return b.dataFile.Close()
}
