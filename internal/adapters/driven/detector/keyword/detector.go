// Package keyword implements local heuristic question detection for Swedish.
package keyword

import (
	"context"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/fragvis/fragvis-cli/internal/core/domain"
	"github.com/fragvis/fragvis-cli/internal/core/ports/driven"
)

// Ensure Detector implements the interface.
var _ driven.Detector = (*Detector)(nil)

// Source identifies verdicts produced by this detector.
const Source = "keyword"

// minLength is the shortest trimmed text worth classifying, in runes.
const minLength = 3

// swedishStrongKeywords are interrogative openers that mark a question even
// without a question mark.
var swedishStrongKeywords = []string{
	"varför", "hur", "vad", "när", "vem", "vilken", "vilket", "vilka",
	"var", "vart", "hurdan",
}

var (
	urlPattern = regexp.MustCompile(`https?://\S+`)
	// wordPattern must stay Unicode-aware so å, ä and ö count as letters.
	wordPattern = regexp.MustCompile(`[\p{L}\p{N}_]+`)
)

// Detector classifies text with question-mark and keyword rules. It is
// stateless after construction and safe for concurrent use.
type Detector struct {
	strong map[string]struct{}
}

// NewDetector creates a detector, optionally extending the strong keyword
// set with lowercased extras from configuration.
func NewDetector(extraKeywords ...string) *Detector {
	strong := make(map[string]struct{}, len(swedishStrongKeywords)+len(extraKeywords))
	for _, k := range swedishStrongKeywords {
		strong[k] = struct{}{}
	}
	for _, k := range extraKeywords {
		strong[strings.ToLower(k)] = struct{}{}
	}
	return &Detector{strong: strong}
}

// Classify applies the heuristic rules in order: length gate, URL stripping,
// question-mark check, then strong-keyword opener. URLs are stripped first so
// query strings like ?client_id=123 never count as question marks. It never
// returns an error.
func (d *Detector) Classify(_ context.Context, text string) (domain.Detection, error) {
	text = strings.TrimSpace(text)
	if utf8.RuneCountInString(text) < minLength {
		return domain.Detection{Source: Source}, nil
	}

	withoutURLs := urlPattern.ReplaceAllString(text, "")

	if strings.Contains(withoutURLs, "?") {
		return domain.Detection{IsQuestion: true, Confidence: 0.9, Source: Source}, nil
	}

	words := wordPattern.FindAllString(strings.ToLower(withoutURLs), 1)
	if len(words) > 0 {
		if _, ok := d.strong[words[0]]; ok {
			return domain.Detection{IsQuestion: true, Confidence: 0.7, Source: Source}, nil
		}
	}

	return domain.Detection{Source: Source}, nil
}
