package discord

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/fragvis/fragvis-cli/internal/core/domain"
	"github.com/fragvis/fragvis-cli/internal/core/ports/driven"
)

// Ensure Client implements the history ports.
var (
	_ driven.HistorySource = (*Client)(nil)
	_ driven.ChannelLister = (*Client)(nil)
)

// channelTypeGuildText is the wire value for a plain guild text channel.
const channelTypeGuildText = 0

// wireMessage is the subset of the message payload the traversal needs.
type wireMessage struct {
	ID        string    `json:"id"`
	ChannelID string    `json:"channel_id"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	Author    struct {
		ID       string `json:"id"`
		Username string `json:"username"`
		Bot      bool   `json:"bot"`
	} `json:"author"`
}

// wireChannel is the subset of the channel payload the traversal needs.
type wireChannel struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Type    int    `json:"type"`
	GuildID string `json:"guild_id"`
}

// FetchPage returns up to limit messages strictly newer than afterID,
// oldest first. The API returns newest-first, so the page is re-sorted by
// snowflake before it is handed to the traversal.
func (c *Client) FetchPage(ctx context.Context, channelID, afterID string, limit int) ([]domain.Message, error) {
	if limit <= 0 || limit > MaxPageSize {
		limit = MaxPageSize
	}

	query := url.Values{"limit": {strconv.Itoa(limit)}}
	if afterID != "" {
		query.Set("after", afterID)
	} else {
		// An explicit zero snowflake pins the page to the very start of the
		// history; without it the API serves the newest messages instead.
		query.Set("after", "0")
	}

	var wire []wireMessage
	route := "/channels/" + channelID + "/messages"
	if err := c.get(ctx, route, query, &wire); err != nil {
		return nil, fmt.Errorf("fetch messages: %w", err)
	}

	sort.Slice(wire, func(i, j int) bool {
		return domain.NewerID(wire[j].ID, wire[i].ID)
	})

	msgs := make([]domain.Message, 0, len(wire))
	for _, m := range wire {
		msgs = append(msgs, domain.Message{
			ID:        m.ID,
			ChannelID: m.ChannelID,
			Author:    m.Author.Username,
			Bot:       m.Author.Bot,
			Text:      m.Content,
			Timestamp: m.Timestamp,
		})
	}
	return msgs, nil
}

// Channel resolves a channel's metadata.
func (c *Client) Channel(ctx context.Context, channelID string) (*domain.Channel, error) {
	var wire wireChannel
	if err := c.get(ctx, "/channels/"+channelID, nil, &wire); err != nil {
		return nil, fmt.Errorf("get channel %s: %w", channelID, err)
	}
	return &domain.Channel{ID: wire.ID, Name: wire.Name, GuildID: wire.GuildID}, nil
}

// ListChannels returns the guild's plain text channels, the only kind the
// traversal reads. Voice, category and thread containers are skipped.
func (c *Client) ListChannels(ctx context.Context, guildID string) ([]domain.Channel, error) {
	var wire []wireChannel
	if err := c.get(ctx, "/guilds/"+guildID+"/channels", nil, &wire); err != nil {
		return nil, fmt.Errorf("list channels of guild %s: %w", guildID, err)
	}

	var channels []domain.Channel
	for _, ch := range wire {
		if ch.Type != channelTypeGuildText {
			continue
		}
		channels = append(channels, domain.Channel{ID: ch.ID, Name: ch.Name, GuildID: guildID})
	}
	sort.Slice(channels, func(i, j int) bool {
		return domain.NewerID(channels[j].ID, channels[i].ID)
	})
	return channels, nil
}
