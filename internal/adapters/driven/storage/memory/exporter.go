package memory

import (
	"sync"

	"github.com/fragvis/fragvis-cli/internal/core/domain"
	"github.com/fragvis/fragvis-cli/internal/core/ports/driven"
)

// Ensure ExportWriter implements the interface.
var _ driven.ExportWriter = (*ExportWriter)(nil)

// ExportWriter is an in-memory implementation of driven.ExportWriter that
// records appended questions for inspection. Tests can inject an append
// failure to exercise the engine's ordering guarantees.
type ExportWriter struct {
	mu         sync.Mutex
	records    []domain.QuestionRecord
	scanned    int
	duplicates int

	// FailAppendAfter makes Append return an error once this many records
	// have been accepted. Zero disables the failure.
	FailAppendAfter int
	// AppendErr is returned when the failure triggers.
	AppendErr error
}

// NewExportWriter creates a new in-memory export writer.
func NewExportWriter() *ExportWriter {
	return &ExportWriter{}
}

// Append records rec, or fails if the configured failure point is reached.
func (w *ExportWriter) Append(rec domain.QuestionRecord) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.FailAppendAfter > 0 && len(w.records) >= w.FailAppendAfter {
		return w.AppendErr
	}
	w.records = append(w.records, rec)
	return nil
}

// Observe accumulates traversal counters.
func (w *ExportWriter) Observe(scanned, duplicates int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.scanned += scanned
	w.duplicates += duplicates
}

// Records returns a copy of the appended records in order.
func (w *ExportWriter) Records() []domain.QuestionRecord {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]domain.QuestionRecord, len(w.records))
	copy(out, w.records)
	return out
}

// Texts returns the appended question texts in order.
func (w *ExportWriter) Texts() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	texts := make([]string, len(w.records))
	for i, r := range w.records {
		texts[i] = r.Text
	}
	return texts
}

// Counters returns the accumulated scanned and duplicate counts.
func (w *ExportWriter) Counters() (scanned, duplicates int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.scanned, w.duplicates
}

// Flush is a no-op.
func (w *ExportWriter) Flush() error { return nil }

// Close is a no-op.
func (w *ExportWriter) Close() error { return nil }
