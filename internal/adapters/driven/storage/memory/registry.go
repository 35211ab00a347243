package memory

import (
	"sync"

	"github.com/fragvis/fragvis-cli/internal/core/ports/driven"
)

// Ensure DedupeRegistry implements the interface.
var _ driven.DedupeRegistry = (*DedupeRegistry)(nil)

// DedupeRegistry is an in-memory implementation of driven.DedupeRegistry.
type DedupeRegistry struct {
	mu   sync.Mutex
	keys map[string]struct{}
}

// NewDedupeRegistry creates a new in-memory registry, optionally pre-seeded
// with keys to simulate state left behind by earlier runs.
func NewDedupeRegistry(seed ...string) *DedupeRegistry {
	r := &DedupeRegistry{keys: make(map[string]struct{})}
	for _, k := range seed {
		r.keys[k] = struct{}{}
	}
	return r
}

// Contains reports whether key is present.
func (r *DedupeRegistry) Contains(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.keys[key]
	return ok
}

// Add inserts key atomically, reporting whether it was newly inserted.
func (r *DedupeRegistry) Add(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.keys[key]; ok {
		return false
	}
	r.keys[key] = struct{}{}
	return true
}

// Len returns the number of keys.
func (r *DedupeRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.keys)
}

// Flush is a no-op.
func (r *DedupeRegistry) Flush() error { return nil }

// Close is a no-op.
func (r *DedupeRegistry) Close() error { return nil }
