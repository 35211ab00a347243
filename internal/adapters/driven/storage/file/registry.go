package file

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/fragvis/fragvis-cli/internal/core/domain"
	"github.com/fragvis/fragvis-cli/internal/core/ports/driven"
)

// Ensure DedupeRegistry implements the interface.
var _ driven.DedupeRegistry = (*DedupeRegistry)(nil)

// DedupeRegistry is a file-based implementation of driven.DedupeRegistry.
// The full key set lives in memory and is persisted as a JSON array of hex
// digests. The set grows monotonically; there is no eviction.
type DedupeRegistry struct {
	mu    sync.Mutex
	path  string
	keys  map[string]struct{}
	dirty bool
}

// NewDedupeRegistry loads the persisted key set from path. A missing file
// starts empty; an unparsable file is a fatal domain.ErrCorruptState, since
// discarding known digests would re-export already-seen questions.
func NewDedupeRegistry(path string) (*DedupeRegistry, error) {
	r := &DedupeRegistry{
		path: path,
		keys: make(map[string]struct{}),
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return r, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read registry %s: %w", path, err)
	}

	var digests []string
	if err := json.Unmarshal(data, &digests); err != nil {
		return nil, fmt.Errorf("%w: registry file %s: %v", domain.ErrCorruptState, path, err)
	}
	for _, d := range digests {
		r.keys[d] = struct{}{}
	}
	return r, nil
}

// Contains reports whether key has already been exported.
func (r *DedupeRegistry) Contains(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.keys[key]
	return ok
}

// Add inserts key, reporting whether it was newly inserted. The check and
// the insert happen under one lock, so concurrent tasks racing on the same
// key cannot both observe "new".
func (r *DedupeRegistry) Add(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.keys[key]; ok {
		return false
	}
	r.keys[key] = struct{}{}
	r.dirty = true
	return true
}

// Len returns the number of keys in the set.
func (r *DedupeRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.keys)
}

// Flush durably persists the full set via temp-file-then-rename. Digests
// are written sorted so reruns produce byte-identical files.
func (r *DedupeRegistry) Flush() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.dirty {
		return nil
	}
	digests := make([]string, 0, len(r.keys))
	for k := range r.keys {
		digests = append(digests, k)
	}
	sort.Strings(digests)

	data, err := json.Marshal(digests)
	if err != nil {
		return fmt.Errorf("encode registry: %w", err)
	}
	if err := writeFileAtomic(r.path, data); err != nil {
		return fmt.Errorf("write registry %s: %w", r.path, err)
	}
	r.dirty = false
	return nil
}

// Close flushes any pending keys.
func (r *DedupeRegistry) Close() error {
	return r.Flush()
}
