package store

import (
	"fmt"
	"io"
	"os"
	"sync"

	"golang.org/x/sys/unix"
)

// pruneBufferMultiple sizes the save_prune scratch buffer as a multiple of
// prune_len so that any given record straddles at most one buffer
// boundary, matching the original store's "align the buffer on prune_len"
// trade-off.
const pruneBufferMultiple = 256

// appendOnlyFile is a file that accepts only appends but supports random
// reads via a memory map. It mirrors the shape of dittofs's MmapPersister
// (mutex-guarded path/file/data/size, mmap recreated on every sync) but
// carries no header framing of its own: this file's bytes are nothing but
// concatenated fixed-width node records, and offset accounting for those
// records is the caller's (PMMRBackend's) job, not this type's.
type appendOnlyFile struct {
	mu   sync.RWMutex
	path string
	file *os.File
	data []byte // mmap'd region, nil until the first sync
}

// openAppendOnlyFile creates path if absent and opens it for read+append.
// No memory map is created until the first Sync call.
func openAppendOnlyFile(path string) (*appendOnlyFile, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrIO, path, err)
	}
	return &appendOnlyFile{path: path, file: f}, nil
}

// Append writes buf at the current end of the file. The write is not
// synced and not reflected in the memory map until Sync is called.
func (a *appendOnlyFile) Append(buf []byte) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, err := a.file.Write(buf); err != nil {
		return fmt.Errorf("%w: append %s: %v", ErrStorageFull, a.path, err)
	}
	return nil
}

// Sync fsyncs the file, then (re)creates a read-only-by-convention memory
// map over the file's current length. Any slice previously returned by
// Read is logically invalidated: Read always returns a fresh copy, so
// callers never hold a reference into the old mapping.
func (a *appendOnlyFile) Sync() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.file.Sync(); err != nil {
		return fmt.Errorf("%w: fsync %s: %v", ErrIO, a.path, err)
	}

	info, err := a.file.Stat()
	if err != nil {
		return fmt.Errorf("%w: stat %s: %v", ErrIO, a.path, err)
	}

	if a.data != nil {
		if err := unix.Munmap(a.data); err != nil {
			return fmt.Errorf("%w: munmap %s: %v", ErrIO, a.path, err)
		}
		a.data = nil
	}

	size := info.Size()
	if size == 0 {
		return nil
	}

	data, err := unix.Mmap(int(a.file.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return fmt.Errorf("%w: mmap %s: %v", ErrIO, a.path, err)
	}
	a.data = data
	return nil
}

// Read returns a copy of [offset, offset+length) from the current memory
// map, or nil if no map has been established yet (nothing has been synced
// since open) or the range does not lie inside the mapped bytes.
func (a *appendOnlyFile) Read(offset, length int) []byte {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.data == nil || offset < 0 || length < 0 || offset+length > len(a.data) {
		return nil
	}
	out := make([]byte, length)
	copy(out, a.data[offset:offset+length])
	return out
}

// Size returns the current on-disk length of the file, from filesystem
// metadata rather than the memory map (which may be stale or absent).
func (a *appendOnlyFile) Size() (int64, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	info, err := a.file.Stat()
	if err != nil {
		return 0, fmt.Errorf("%w: stat %s: %v", ErrIO, a.path, err)
	}
	return info.Size(), nil
}

// Close releases the memory map and the underlying file descriptor.
func (a *appendOnlyFile) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.data != nil {
		if err := unix.Munmap(a.data); err != nil {
			return fmt.Errorf("%w: munmap %s: %v", ErrIO, a.path, err)
		}
		a.data = nil
	}
	if err := a.file.Close(); err != nil {
		return fmt.Errorf("%w: close %s: %v", ErrIO, a.path, err)
	}
	return nil
}

// SavePrune streams this file's content into target, omitting the byte
// ranges [o, o+pruneLen) for each o in pruneOffsets. pruneOffsets must be
// sorted strictly ascending, every offset aligned to pruneLen, with no two
// ranges overlapping -- the same precondition the original store placed on
// its compaction routine.
func (a *appendOnlyFile) SavePrune(targetPath string, pruneOffsets []uint64, pruneLen int) error {
	if len(pruneOffsets) == 0 {
		return copyFile(a.path, targetPath)
	}

	reader, err := os.Open(a.path)
	if err != nil {
		return fmt.Errorf("%w: open %s: %v", ErrIO, a.path, err)
	}
	defer reader.Close()

	writer, err := os.Create(targetPath)
	if err != nil {
		return fmt.Errorf("%w: create %s: %v", ErrIO, targetPath, err)
	}
	defer writer.Close()

	buf := make([]byte, pruneBufferMultiple*pruneLen)
	var read uint64
	prunePos := 0

	for {
		// io.ReadFull (rather than a raw Read) keeps read a multiple of
		// pruneLen across every iteration but the last: a short Read that
		// isn't record-aligned would otherwise desynchronize `read` from
		// the file's actual record boundaries, letting the back half of a
		// record meant to be pruned leak past prunePos into the output.
		n, err := io.ReadFull(reader, buf)
		if n == 0 && (err == io.EOF || err == io.ErrUnexpectedEOF) {
			return nil
		}
		if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
			return fmt.Errorf("%w: read %s: %v", ErrIO, a.path, err)
		}
		length := uint64(n)

		bufStart := uint64(0)
		for prunePos < len(pruneOffsets) &&
			pruneOffsets[prunePos] >= read && pruneOffsets[prunePos] < read+length {
			pruneAt := pruneOffsets[prunePos] - read
			if pruneAt != bufStart {
				if _, werr := writer.Write(buf[bufStart:pruneAt]); werr != nil {
					return fmt.Errorf("%w: write %s: %v", ErrIO, targetPath, werr)
				}
			}
			bufStart = pruneAt + uint64(pruneLen)
			prunePos++
		}
		if bufStart < length {
			if _, werr := writer.Write(buf[bufStart:length]); werr != nil {
				return fmt.Errorf("%w: write %s: %v", ErrIO, targetPath, werr)
			}
		}
		read += length

		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil
		}
	}
}

func copyFile(srcPath, dstPath string) error {
	src, err := os.Open(srcPath)
	if err != nil {
		return fmt.Errorf("%w: open %s: %v", ErrIO, srcPath, err)
	}
	defer src.Close()

	dst, err := os.Create(dstPath)
	if err != nil {
		return fmt.Errorf("%w: create %s: %v", ErrIO, dstPath, err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("%w: copy %s -> %s: %v", ErrIO, srcPath, dstPath, err)
	}
	return nil
}
