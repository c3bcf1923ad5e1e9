package store

import (
	"errors"
	"fmt"
)

// Sentinel errors identifying the semantic error kinds described for this
// engine: callers match on these with errors.Is rather than on wrapped
// message text.
var (
	// ErrIO covers open/read/write/fsync/rename failures. Returned errors
	// wrap it together with path context.
	ErrIO = errors.New("store: i/o failure")

	// ErrStorageFull is a subclass of ErrIO raised when an append fails in
	// a way consistent with the disk being out of space.
	ErrStorageFull = fmt.Errorf("%w: append failed, disk may be full", ErrIO)

	// ErrCorrupt marks a decode failure reading the removal log, the
	// prune list, or the ordered-vector codec. Single-record corruption
	// inside get() is logged and swallowed rather than returned.
	ErrCorrupt = errors.New("store: corrupted on-disk data")

	// ErrPrecondition marks an operation refused because a precondition
	// was violated, e.g. compacting while the removal log and prune list
	// already overlap.
	ErrPrecondition = errors.New("store: precondition violated")

	// ErrOutOfOrderAppend is returned when append is called with a
	// position that does not sit at the current write frontier.
	ErrOutOfOrderAppend = errors.New("store: append position is not contiguous with the write frontier")
)
