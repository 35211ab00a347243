package driven

import (
	"context"

	"github.com/fragvis/fragvis-cli/internal/core/domain"
)

// Detector classifies whether a piece of text is a question.
// Implementations must be safe for concurrent use; remote implementations
// wrap recoverable failures with domain.ErrTransient.
type Detector interface {
	// Classify returns a verdict for text. It must not mutate any state
	// observable by callers beyond internal caches or health counters.
	Classify(ctx context.Context, text string) (domain.Detection, error)
}
