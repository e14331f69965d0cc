package cache

import (
	"container/list"
	"context"
	"sync"
)

// MemoryRegion is an in-process Region with optional least-recently-used
// eviction. The zero bound means unbounded.
type MemoryRegion struct {
	mu      sync.Mutex
	maxSize int
	entries map[Key]*list.Element
	order   *list.List // front = most recently used
}

type memoryEntry struct {
	key   Key
	value any
}

// NewMemoryRegion creates a memory region holding at most maxSize
// entries; maxSize <= 0 means unbounded.
func NewMemoryRegion(maxSize int) *MemoryRegion {
	return &MemoryRegion{
		maxSize: maxSize,
		entries: make(map[Key]*list.Element),
		order:   list.New(),
	}
}

// Get retrieves a stored result and promotes the entry to most recently
// used. Returns (nil, false) on miss.
func (r *MemoryRegion) Get(_ context.Context, key Key) (any, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	elem, ok := r.entries[key]
	if !ok {
		return nil, false
	}
	r.order.MoveToFront(elem)
	return elem.Value.(*memoryEntry).value, true
}

// Set stores a result under key, evicting the least recently used entry
// when the region is over capacity.
func (r *MemoryRegion) Set(_ context.Context, key Key, value any) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if elem, ok := r.entries[key]; ok {
		elem.Value.(*memoryEntry).value = value
		r.order.MoveToFront(elem)
		return nil
	}

	r.entries[key] = r.order.PushFront(&memoryEntry{key: key, value: value})

	if r.maxSize > 0 && r.order.Len() > r.maxSize {
		oldest := r.order.Back()
		if oldest != nil {
			r.order.Remove(oldest)
			delete(r.entries, oldest.Value.(*memoryEntry).key)
		}
	}
	return nil
}

// Clear empties the region.
func (r *MemoryRegion) Clear(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries = make(map[Key]*list.Element)
	r.order.Init()
	return nil
}

// Len returns the number of stored entries.
func (r *MemoryRegion) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Close empties the region; a memory region holds no external resources.
func (r *MemoryRegion) Close() error {
	return r.Clear(context.Background())
}

// Ensure MemoryRegion implements Region
var _ Region = (*MemoryRegion)(nil)
