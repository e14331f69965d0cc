package cache

import (
	"context"
	"fmt"
)

// Region is a named key→result store backing memoized computations.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use;
//   mutation is protected by a region-local lock.
// - Errors: Get never errors; it returns (nil, false) on miss, including
//   when a persisted entry cannot be decoded.
// - Isolation: operations on distinct keys must not serialize behind
//   blocking I/O for unrelated keys beyond the store's own locking.
type Region interface {
	// Get retrieves a stored result. Returns (nil, false) on miss.
	Get(ctx context.Context, key Key) (any, bool)

	// Set stores a result under key, replacing any previous entry.
	Set(ctx context.Context, key Key, value any) error

	// Clear removes every entry in the region.
	Clear(ctx context.Context) error

	// Len returns the number of stored entries.
	Len() int

	// Close releases backend resources. The region must not be used
	// afterwards.
	Close() error
}

// Kind selects a region backend.
type Kind int

const (
	// KindMemory is an in-process store; its lifetime ends with the
	// process.
	KindMemory Kind = iota

	// KindPersistent is a filesystem-backed store that survives process
	// restarts until explicitly cleared.
	KindPersistent
)

func (k Kind) String() string {
	switch k {
	case KindMemory:
		return "memory"
	case KindPersistent:
		return "persistent"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Config describes a region at definition time. Regions are created
// lazily on first reference using this configuration.
type Config struct {
	// Kind selects the backend.
	Kind Kind

	// MaxSize bounds a memory region's entry count; the least recently
	// used entry is evicted when the bound is exceeded. Zero or
	// negative means unbounded. Ignored by persistent regions.
	MaxSize int

	// Location is the filesystem path of a persistent region's store.
	// If empty, a unique path under the system temporary directory is
	// generated at creation time.
	Location string
}
