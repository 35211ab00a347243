package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsTransient(t *testing.T) {
	assert.True(t, IsTransient(ErrTransient))
	assert.True(t, IsTransient(fmt.Errorf("fetch page: %w", ErrTransient)))
	assert.False(t, IsTransient(ErrPermanent))
	assert.False(t, IsTransient(errors.New("plain")))
	assert.False(t, IsTransient(nil))
}

func TestIsPermanent(t *testing.T) {
	assert.True(t, IsPermanent(ErrPermanent))
	assert.True(t, IsPermanent(fmt.Errorf("channel: %w", ErrPermanent)))
	assert.False(t, IsPermanent(ErrTransient))
	assert.False(t, IsPermanent(nil))
}

func TestChannelStateString(t *testing.T) {
	assert.Equal(t, "pending", ChannelPending.String())
	assert.Equal(t, "completed", ChannelCompleted.String())
	assert.Equal(t, "failed", ChannelFailed.String())
	assert.Equal(t, "interrupted", ChannelInterrupted.String())
	assert.Equal(t, "unknown", ChannelState(99).String())
}
