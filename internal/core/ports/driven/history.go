package driven

import (
	"context"

	"github.com/fragvis/fragvis-cli/internal/core/domain"
)

// HistorySource provides paginated access to a channel's message history.
// Implementations must distinguish transient from permanent failures by
// wrapping errors with domain.ErrTransient or domain.ErrPermanent.
type HistorySource interface {
	// FetchPage returns up to limit messages strictly newer than afterID,
	// ordered oldest first. An empty afterID means "start from the oldest
	// message". An empty page means the history is exhausted.
	FetchPage(ctx context.Context, channelID, afterID string, limit int) ([]domain.Message, error)

	// Channel resolves channel metadata (display name) for export lines.
	Channel(ctx context.Context, channelID string) (*domain.Channel, error)
}

// ChannelLister enumerates the text channels a history source can read.
// Implemented by sources that support channel discovery ("all accessible").
type ChannelLister interface {
	// ListChannels returns the readable text channels of a guild.
	ListChannels(ctx context.Context, guildID string) ([]domain.Channel, error)
}
