package sequence

import (
	"context"
	"sync"
)

// MemoryAllocator is an in-process Allocator used by tests and tools that run
// without a database. Counters are owned by the struct, never package state.
type MemoryAllocator struct {
	mu   sync.Mutex
	next map[string]int64
}

// NewMemoryAllocator builds an empty in-memory allocator.
func NewMemoryAllocator() *MemoryAllocator {
	return &MemoryAllocator{next: make(map[string]int64)}
}

// Next returns the next formatted number for prefix, starting at 1.
func (a *MemoryAllocator) Next(_ context.Context, prefix string) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.next[prefix]++
	return Format(prefix, a.next[prefix]), nil
}
