package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/fragvis/fragvis-cli/internal/core/domain"
)

var testEpoch = time.Date(2024, 3, 17, 12, 0, 0, 0, time.UTC)

// testMessage builds a message with a numeric snowflake and a timestamp
// derived from the id so ordering is obvious in assertions.
func testMessage(id int, text string) domain.Message {
	return domain.Message{
		ID:        strconv.Itoa(id),
		ChannelID: "123",
		Author:    "anna",
		Text:      text,
		Timestamp: testEpoch.Add(time.Duration(id) * time.Minute),
	}
}

// fakeSource serves scripted channel histories and can inject one-shot
// failures on specific fetch calls.
type fakeSource struct {
	mu       sync.Mutex
	channels map[string]domain.Channel
	messages map[string][]domain.Message // ascending by ID

	failOnFetch map[int]error // 1-based fetch call index -> one-shot error
	onFetch     func(call int)
	fetchCalls  int
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		channels:    make(map[string]domain.Channel),
		messages:    make(map[string][]domain.Message),
		failOnFetch: make(map[int]error),
	}
}

func (f *fakeSource) addChannel(id, name string, msgs ...domain.Message) {
	f.channels[id] = domain.Channel{ID: id, Name: name, GuildID: "guild-1"}
	f.messages[id] = msgs
}

func (f *fakeSource) Channel(_ context.Context, channelID string) (*domain.Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch, ok := f.channels[channelID]
	if !ok {
		return nil, fmt.Errorf("%w: %w: %s", domain.ErrPermanent, domain.ErrChannelNotFound, channelID)
	}
	return &ch, nil
}

func (f *fakeSource) FetchPage(_ context.Context, channelID, afterID string, limit int) ([]domain.Message, error) {
	f.mu.Lock()
	f.fetchCalls++
	call := f.fetchCalls
	err, failing := f.failOnFetch[call]
	if failing {
		delete(f.failOnFetch, call)
	}
	hook := f.onFetch
	msgs := f.messages[channelID]
	f.mu.Unlock()

	if hook != nil {
		hook(call)
	}
	if failing {
		return nil, err
	}

	var page []domain.Message
	for _, m := range msgs {
		if !domain.NewerID(m.ID, afterID) {
			continue
		}
		page = append(page, m)
		if len(page) == limit {
			break
		}
	}
	return page, nil
}

func (f *fakeSource) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fetchCalls
}

// fakeDetector classifies anything containing a question mark as a question.
// Specific texts can be scripted to fail.
type fakeDetector struct {
	mu     sync.Mutex
	failOn map[string]error
}

func newFakeDetector() *fakeDetector {
	return &fakeDetector{failOn: make(map[string]error)}
}

func (d *fakeDetector) Classify(_ context.Context, text string) (domain.Detection, error) {
	d.mu.Lock()
	err := d.failOn[text]
	d.mu.Unlock()
	if err != nil {
		return domain.Detection{}, err
	}
	if strings.Contains(text, "?") {
		return domain.Detection{IsQuestion: true, Confidence: 1, Source: "fake"}, nil
	}
	return domain.Detection{Source: "fake"}, nil
}

// fastRetry keeps test backoff delays negligible.
var fastRetry = RetryPolicy{MaxAttempts: 3, BaseDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond}
