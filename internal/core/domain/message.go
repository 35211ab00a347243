package domain

import (
	"strconv"
	"time"
)

// Message is one chat message as returned by a history source.
type Message struct {
	// ID is the platform message identifier (a snowflake: decimal uint64,
	// strictly increasing with send time within a channel).
	ID string

	// ChannelID identifies the channel the message was posted in.
	ChannelID string

	// Author is the display name of the message author.
	Author string

	// Bot reports whether the author is an automated account.
	Bot bool

	// Text is the raw message content. May be empty for attachment-only messages.
	Text string

	// Timestamp is when the message was sent.
	Timestamp time.Time
}

// Channel is the minimal channel metadata the traversal needs.
type Channel struct {
	// ID is the platform channel identifier.
	ID string

	// Name is the human-readable channel name.
	Name string

	// GuildID is the guild (server) the channel belongs to.
	GuildID string
}

// NewerID reports whether snowflake a identifies a later message than b.
// An empty b means "no cursor yet", so any a is newer.
// Malformed identifiers fall back to lexicographic comparison.
func NewerID(a, b string) bool {
	if b == "" {
		return a != ""
	}
	av, aerr := strconv.ParseUint(a, 10, 64)
	bv, berr := strconv.ParseUint(b, 10, 64)
	if aerr != nil || berr != nil {
		return a > b
	}
	return av > bv
}
