package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// Detection is a classifier verdict for a piece of text.
type Detection struct {
	// IsQuestion reports whether the text was classified as a question.
	IsQuestion bool

	// Confidence is the classifier's confidence in [0, 1].
	Confidence float64

	// Source identifies which classifier produced the verdict
	// (e.g. "keyword", "ai").
	Source string
}

// QuestionRecord is the unit considered for export: constructed per message,
// consumed immediately by the dedupe check and the export writer, never
// persisted on its own.
type QuestionRecord struct {
	// ChannelID identifies the channel the question was asked in.
	ChannelID string

	// ChannelName is the channel display name used in the export line.
	ChannelName string

	// Timestamp is when the message was sent. Exported at date granularity.
	Timestamp time.Time

	// Text is the original-case question text.
	Text string

	// Detection carries the classifier verdict that admitted the record.
	Detection Detection
}

// Normalize canonicalises text for deduplication: surrounding whitespace is
// trimmed, internal whitespace runs (including newlines) collapse to single
// spaces, and the result is lowercased. Original case is preserved separately
// for export.
func Normalize(text string) string {
	return strings.ToLower(strings.Join(strings.Fields(text), " "))
}

// DedupeKey computes the registry key for a question: the SHA-256 hex digest
// of the canonical triple (channel, normalized text, language). Two records
// with the same channel, normalized text and language always map to the same
// key; uniqueness of meaning is not guaranteed.
func DedupeKey(channelID, text, language string) string {
	canonical := channelID + "|" + Normalize(text) + "|" + language
	sum := sha256.Sum256([]byte(canonical))
	return hex.EncodeToString(sum[:])
}
