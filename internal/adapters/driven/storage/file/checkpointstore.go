package file

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/fragvis/fragvis-cli/internal/core/domain"
	"github.com/fragvis/fragvis-cli/internal/core/ports/driven"
)

// Ensure CheckpointStore implements the interface.
var _ driven.CheckpointStore = (*CheckpointStore)(nil)

// CheckpointStore is a file-based implementation of driven.CheckpointStore.
// Cursors are held in memory and persisted as a JSON map of channel id to
// last processed message id.
type CheckpointStore struct {
	mu         sync.Mutex
	path       string
	cursors    map[string]string
	flushEvery int // advances between automatic flushes, 0 = explicit only
	pending    int
	dirty      bool
}

// NewCheckpointStore loads cursors from path. A missing file starts empty;
// an unparsable file is a fatal domain.ErrCorruptState. flushEvery bounds
// how many Advance calls may pass before an automatic durable flush.
func NewCheckpointStore(path string, flushEvery int) (*CheckpointStore, error) {
	s := &CheckpointStore{
		path:       path,
		cursors:    make(map[string]string),
		flushEvery: flushEvery,
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read checkpoints %s: %w", path, err)
	}
	if err := json.Unmarshal(data, &s.cursors); err != nil {
		return nil, fmt.Errorf("%w: checkpoint file %s: %v", domain.ErrCorruptState, path, err)
	}
	return s, nil
}

// Get returns the last committed cursor for a channel.
func (s *CheckpointStore) Get(channelID string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cursor, ok := s.cursors[channelID]
	return cursor, ok
}

// Advance records a new cursor position. Positions that do not strictly
// increase are ignored, keeping the cursor monotone across runs.
func (s *CheckpointStore) Advance(channelID, messageID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if current, ok := s.cursors[channelID]; ok && !domain.NewerID(messageID, current) {
		return
	}
	s.cursors[channelID] = messageID
	s.dirty = true
	s.pending++

	if s.flushEvery > 0 && s.pending >= s.flushEvery {
		// Best effort: the periodic flush only narrows the crash window.
		// A failure here surfaces on the next explicit Flush.
		_ = s.flushLocked()
	}
}

// Flush durably persists the cursors via temp-file-then-rename.
func (s *CheckpointStore) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flushLocked()
}

func (s *CheckpointStore) flushLocked() error {
	if !s.dirty {
		return nil
	}
	data, err := json.MarshalIndent(s.cursors, "", "  ")
	if err != nil {
		return fmt.Errorf("encode checkpoints: %w", err)
	}
	if err := writeFileAtomic(s.path, data); err != nil {
		return fmt.Errorf("write checkpoints %s: %w", s.path, err)
	}
	s.dirty = false
	s.pending = 0
	return nil
}

// Close flushes any pending cursors.
func (s *CheckpointStore) Close() error {
	return s.Flush()
}
