package store

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/sumtree/pmmrstore/record"
)

// readChunkSize is the buffered-reader chunk size used by
// readOrderedVec, matching the "8 * 1000 bytes" buffer the original store
// used for its ordered-vector reader.
const readChunkSize = 8000

// readOrderedVec loads a sorted, duplicate-free vector of positions from
// path. A missing file yields an empty vector. The file is read through a
// buffered reader in fixed-size chunks; each chunk is decoded as a run of
// self-delimiting 8-byte positions and every decoded value is inserted at
// its sorted index only if not already present.
func readOrderedVec(path string) ([]uint64, error) {
	ovec := make([]uint64, 0, 1024)

	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return ovec, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrIO, path, err)
	}
	defer f.Close()

	reader := bufio.NewReaderSize(f, readChunkSize)
	chunk := make([]byte, readChunkSize)
	var carry []byte

	for {
		n, rerr := reader.Read(chunk)
		if n > 0 {
			buf := append(carry, chunk[:n]...)
			usable := len(buf) - (len(buf) % 8)
			elems, derr := record.DecodePositions(buf[:usable])
			if derr != nil {
				return nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, path, derr)
			}
			for _, e := range elems {
				idx := sort.Search(len(ovec), func(i int) bool { return ovec[i] >= e })
				if idx < len(ovec) && ovec[idx] == e {
					continue
				}
				ovec = append(ovec, 0)
				copy(ovec[idx+1:], ovec[idx:])
				ovec[idx] = e
			}
			carry = append(carry[:0], buf[usable:]...)
		}
		if rerr == io.EOF {
			if len(carry) != 0 {
				return nil, fmt.Errorf("%w: truncated position at %s", ErrCorrupt, path)
			}
			return ovec, nil
		}
		if rerr != nil {
			return nil, fmt.Errorf("%w: read %s: %v", ErrIO, path, rerr)
		}
	}
}

// writeVec creates (or truncates) path and writes the encoded vector.
func writeVec(path string, v []uint64) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: create %s: %v", ErrIO, path, err)
	}
	defer f.Close()

	if _, err := f.Write(record.EncodePositions(v)); err != nil {
		return fmt.Errorf("%w: write %s: %v", ErrIO, path, err)
	}
	return nil
}
