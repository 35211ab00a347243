package file

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fragvis/fragvis-cli/internal/core/domain"
	"github.com/fragvis/fragvis-cli/internal/core/ports/driven"
	"github.com/fragvis/fragvis-cli/internal/logger"
)

// MetadataFormatVersion is the export metadata schema version.
const MetadataFormatVersion = 1

// Metadata is the sibling record describing the export artifact. Totals
// accumulate across runs; the run id identifies the most recent writer.
type Metadata struct {
	FormatVersion     int       `json:"format_version"`
	RunID             string    `json:"run_id"`
	TotalScanned      int64     `json:"total_scanned"`
	TotalExported     int64     `json:"total_exported"`
	DuplicatesSkipped int64     `json:"duplicates_skipped"`
	FirstMessage      time.Time `json:"first_message,omitzero"`
	LastMessage       time.Time `json:"last_message,omitzero"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// Ensure ExportWriter implements the interface.
var _ driven.ExportWriter = (*ExportWriter)(nil)

// ExportWriter appends question lines to a UTF-8 text file and maintains the
// metadata record next to it. In durable mode every append is fsynced before
// returning; otherwise lines are synced on Flush only, trading a wider crash
// window for throughput.
type ExportWriter struct {
	mu       sync.Mutex
	f        *os.File
	path     string
	metaPath string
	durable  bool
	meta     Metadata
}

// NewExportWriter opens (or creates) the export file for appending. Existing
// metadata is carried forward so totals accumulate across runs; an
// unparsable metadata file is replaced after a warning, since unlike the
// registry it holds no dedupe-relevant state.
func NewExportWriter(path, metaPath string, durable bool, runID string) (*ExportWriter, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open export %s: %w", path, err)
	}

	w := &ExportWriter{
		f:        f,
		path:     path,
		metaPath: metaPath,
		durable:  durable,
		meta: Metadata{
			FormatVersion: MetadataFormatVersion,
			RunID:         runID,
		},
	}

	if data, err := os.ReadFile(metaPath); err == nil {
		var prev Metadata
		if err := json.Unmarshal(data, &prev); err != nil {
			logger.Warn("export metadata %s unparsable, starting fresh: %v", metaPath, err)
		} else {
			w.meta = prev
			w.meta.FormatVersion = MetadataFormatVersion
			w.meta.RunID = runID
		}
	}
	return w, nil
}

// Append writes one export line in the fixed layout
// "[channel name] - [YYYY-MM-DD] text". Newlines inside the question are
// flattened to spaces so the artifact stays one line per question.
func (w *ExportWriter) Append(rec domain.QuestionRecord) error {
	line := fmt.Sprintf("[%s] - [%s] %s\n",
		rec.ChannelName, rec.Timestamp.Format("2006-01-02"), flatten(rec.Text))

	w.mu.Lock()
	defer w.mu.Unlock()

	if _, err := w.f.WriteString(line); err != nil {
		return fmt.Errorf("append export line: %w", err)
	}
	if w.durable {
		if err := w.f.Sync(); err != nil {
			return fmt.Errorf("sync export: %w", err)
		}
	}

	w.meta.TotalExported++
	if w.meta.FirstMessage.IsZero() || rec.Timestamp.Before(w.meta.FirstMessage) {
		w.meta.FirstMessage = rec.Timestamp
	}
	if rec.Timestamp.After(w.meta.LastMessage) {
		w.meta.LastMessage = rec.Timestamp
	}
	return nil
}

// Observe merges traversal counters into the metadata.
func (w *ExportWriter) Observe(scanned, duplicates int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.meta.TotalScanned += int64(scanned)
	w.meta.DuplicatesSkipped += int64(duplicates)
}

// Flush syncs buffered lines and atomically rewrites the metadata record.
func (w *ExportWriter) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.durable {
		if err := w.f.Sync(); err != nil {
			return fmt.Errorf("sync export: %w", err)
		}
	}

	w.meta.UpdatedAt = time.Now().UTC()
	data, err := json.MarshalIndent(w.meta, "", "  ")
	if err != nil {
		return fmt.Errorf("encode export metadata: %w", err)
	}
	if err := writeFileAtomic(w.metaPath, data); err != nil {
		return fmt.Errorf("write export metadata %s: %w", w.metaPath, err)
	}
	return nil
}

// Close flushes and closes the export file.
func (w *ExportWriter) Close() error {
	if err := w.Flush(); err != nil {
		w.f.Close()
		return err
	}
	return w.f.Close()
}

// flatten keeps the export one line per question.
func flatten(text string) string {
	text = strings.ReplaceAll(text, "\r\n", " ")
	text = strings.ReplaceAll(text, "\n", " ")
	text = strings.ReplaceAll(text, "\r", " ")
	return strings.TrimSpace(text)
}
