package driven

import "github.com/fragvis/fragvis-cli/internal/core/domain"

// ExportWriter appends accepted questions to the export artifact and
// maintains the sibling run metadata record. Implementations must be safe
// for concurrent use across channel tasks.
type ExportWriter interface {
	// Append formats and writes one export line for rec. In durable mode the
	// write is flushed to stable storage before Append returns.
	Append(rec domain.QuestionRecord) error

	// Observe merges traversal counters (messages scanned, duplicates
	// suppressed) into the run metadata.
	Observe(scanned, duplicates int)

	// Flush persists buffered lines and atomically rewrites the metadata.
	Flush() error

	// Close flushes and releases resources.
	Close() error
}
