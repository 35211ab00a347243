package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fragvis/fragvis-cli/internal/adapters/driven/storage/memory"
	"github.com/fragvis/fragvis-cli/internal/core/domain"
)

type engineFixture struct {
	source      *fakeSource
	detector    *fakeDetector
	checkpoints *memory.CheckpointStore
	registry    *memory.DedupeRegistry
	exporter    *memory.ExportWriter
}

func newEngineFixture() *engineFixture {
	return &engineFixture{
		source:      newFakeSource(),
		detector:    newFakeDetector(),
		checkpoints: memory.NewCheckpointStore(),
		registry:    memory.NewDedupeRegistry(),
		exporter:    memory.NewExportWriter(),
	}
}

func (f *engineFixture) engine(cfg EngineConfig) *Engine {
	if cfg.Language == "" {
		cfg.Language = "sv"
	}
	if cfg.Retry.MaxAttempts == 0 {
		cfg.Retry = fastRetry
	}
	return NewEngine(f.source, f.detector, f.checkpoints, f.registry, f.exporter, cfg)
}

func TestEngine_NearDuplicateSuppressed(t *testing.T) {
	f := newEngineFixture()
	f.source.addChannel("123", "allmänt",
		testMessage(1, "hello"),
		testMessage(2, "Hur mår du?"),
		testMessage(3, "  hur MÅR du?  \n"), // case/spacing variant of message 2
	)

	out := f.engine(EngineConfig{}).Run(context.Background(), "123")

	assert.Equal(t, domain.ChannelCompleted, out.State)
	assert.Equal(t, "allmänt", out.ChannelName)
	assert.Equal(t, 3, out.Scanned)
	assert.Equal(t, 1, out.Questions)
	assert.Equal(t, 1, out.Duplicates)
	assert.Equal(t, []string{"Hur mår du?"}, f.exporter.Texts(), "the first occurrence keeps its original case")

	cursor, ok := f.checkpoints.Get("123")
	require.True(t, ok)
	assert.Equal(t, "3", cursor)
}

func TestEngine_SecondRunIsNoOp(t *testing.T) {
	f := newEngineFixture()
	f.source.addChannel("123", "allmänt",
		testMessage(1, "Vad är detta?"),
		testMessage(2, "hejsan"),
	)

	first := f.engine(EngineConfig{}).Run(context.Background(), "123")
	require.Equal(t, domain.ChannelCompleted, first.State)
	require.Equal(t, 1, first.Questions)

	// Untouched history: the second run resumes past everything.
	second := f.engine(EngineConfig{}).Run(context.Background(), "123")
	assert.Equal(t, domain.ChannelCompleted, second.State)
	assert.Equal(t, 0, second.Scanned)
	assert.Len(t, f.exporter.Texts(), 1)
}

func TestEngine_RegistryAloneMakesRerunIdempotent(t *testing.T) {
	f := newEngineFixture()
	f.source.addChannel("123", "allmänt",
		testMessage(1, "Vad är detta?"),
		testMessage(2, "Hur gör man?"),
	)

	first := f.engine(EngineConfig{}).Run(context.Background(), "123")
	require.Equal(t, 2, first.Questions)

	// Simulate a lost checkpoint file: history is re-scanned, but the
	// registry must suppress every re-emission.
	f.checkpoints = memory.NewCheckpointStore()
	second := f.engine(EngineConfig{}).Run(context.Background(), "123")

	assert.Equal(t, domain.ChannelCompleted, second.State)
	assert.Equal(t, 2, second.Scanned)
	assert.Equal(t, 0, second.Questions)
	assert.Equal(t, 2, second.Duplicates)
	assert.Len(t, f.exporter.Texts(), 2, "no additional lines on the rerun")
}

func TestEngine_SkipsBotsByDefault(t *testing.T) {
	f := newEngineFixture()
	bot := testMessage(2, "Är jag en bot?")
	bot.Bot = true
	f.source.addChannel("123", "allmänt",
		testMessage(1, "Hur mår du?"),
		bot,
		testMessage(3, ""), // attachment-only
	)

	out := f.engine(EngineConfig{}).Run(context.Background(), "123")

	assert.Equal(t, 3, out.Scanned)
	assert.Equal(t, 1, out.Questions)
	assert.Equal(t, []string{"Hur mår du?"}, f.exporter.Texts())
}

func TestEngine_IncludeBots(t *testing.T) {
	f := newEngineFixture()
	bot := testMessage(1, "Är jag en bot?")
	bot.Bot = true
	f.source.addChannel("123", "allmänt", bot)

	out := f.engine(EngineConfig{IncludeBots: true}).Run(context.Background(), "123")

	assert.Equal(t, 1, out.Questions)
}

func TestEngine_TransientFetchFailureRetried(t *testing.T) {
	f := newEngineFixture()
	msgs := []domain.Message{
		testMessage(1, "Fråga ett?"),
		testMessage(2, "Fråga två?"),
		testMessage(3, "Fråga tre?"),
	}
	f.source.addChannel("123", "allmänt", msgs...)
	// Page size 1 gives four fetches (three pages plus the empty one);
	// the second fetch fails once with a transient error.
	f.source.failOnFetch[2] = fmt.Errorf("gateway timeout: %w", domain.ErrTransient)

	out := f.engine(EngineConfig{PageSize: 1}).Run(context.Background(), "123")

	assert.Equal(t, domain.ChannelCompleted, out.State)
	assert.Equal(t, 3, out.Questions)
	assert.Equal(t, []string{"Fråga ett?", "Fråga två?", "Fråga tre?"}, f.exporter.Texts(),
		"a retried transient failure leaves the export identical to a clean run")
}

func TestEngine_PermanentFetchFailureFailsChannel(t *testing.T) {
	f := newEngineFixture()
	f.source.addChannel("123", "allmänt",
		testMessage(1, "Fråga ett?"),
		testMessage(2, "Fråga två?"),
	)
	f.source.failOnFetch[2] = fmt.Errorf("forbidden: %w", domain.ErrPermanent)

	out := f.engine(EngineConfig{PageSize: 1}).Run(context.Background(), "123")

	assert.Equal(t, domain.ChannelFailed, out.State)
	require.Error(t, out.Err)
	assert.ErrorIs(t, out.Err, domain.ErrPermanent)

	// The first page was committed, so a future run resumes after it.
	cursor, ok := f.checkpoints.Get("123")
	require.True(t, ok)
	assert.Equal(t, "1", cursor)
	assert.Equal(t, []string{"Fråga ett?"}, f.exporter.Texts())
}

func TestEngine_UnknownChannelFails(t *testing.T) {
	f := newEngineFixture()

	out := f.engine(EngineConfig{}).Run(context.Background(), "999")

	assert.Equal(t, domain.ChannelFailed, out.State)
	assert.ErrorIs(t, out.Err, domain.ErrChannelNotFound)
}

func TestEngine_ResumeAfterCrashBetweenRegistryAndCheckpoint(t *testing.T) {
	// Crash model from the durability contract: messages 1-5 were appended
	// and registered, but the checkpoint flush never happened. On resume the
	// whole history is refetched; 1-5 dedupe away, 6-10 export normally.
	f := newEngineFixture()
	var msgs []domain.Message
	for i := 1; i <= 10; i++ {
		msgs = append(msgs, testMessage(i, fmt.Sprintf("Fråga nummer %d?", i)))
	}
	f.source.addChannel("123", "allmänt", msgs...)
	for i := 1; i <= 5; i++ {
		f.registry.Add(domain.DedupeKey("123", fmt.Sprintf("Fråga nummer %d?", i), "sv"))
	}

	out := f.engine(EngineConfig{}).Run(context.Background(), "123")

	assert.Equal(t, domain.ChannelCompleted, out.State)
	assert.Equal(t, 10, out.Scanned)
	assert.Equal(t, 5, out.Questions)
	assert.Equal(t, 5, out.Duplicates)
	assert.Equal(t, []string{
		"Fråga nummer 6?", "Fråga nummer 7?", "Fråga nummer 8?",
		"Fråga nummer 9?", "Fråga nummer 10?",
	}, f.exporter.Texts())
}

func TestEngine_InterruptAtPageBoundaryResumesWithoutLoss(t *testing.T) {
	f := newEngineFixture()
	f.source.addChannel("123", "allmänt",
		testMessage(1, "Fråga ett?"),
		testMessage(2, "Fråga två?"),
		testMessage(3, "Fråga tre?"),
		testMessage(4, "Fråga fyra?"),
	)

	ctx, cancel := context.WithCancel(context.Background())
	f.source.onFetch = func(call int) {
		if call == 2 {
			cancel() // arrives after the first page was committed
		}
	}

	out := f.engine(EngineConfig{PageSize: 2}).Run(ctx, "123")

	assert.Equal(t, domain.ChannelInterrupted, out.State)
	assert.NoError(t, out.Err)
	assert.Equal(t, 2, out.Scanned, "the committed page survives the interrupt")
	assert.Equal(t, []string{"Fråga ett?", "Fråga två?"}, f.exporter.Texts())

	cursor, ok := f.checkpoints.Get("123")
	require.True(t, ok)
	assert.Equal(t, "2", cursor)

	// Resuming with a fresh context picks up exactly where we stopped.
	f.source.onFetch = nil
	resumed := f.engine(EngineConfig{PageSize: 2}).Run(context.Background(), "123")
	assert.Equal(t, domain.ChannelCompleted, resumed.State)
	assert.Equal(t, []string{"Fråga ett?", "Fråga två?", "Fråga tre?", "Fråga fyra?"},
		f.exporter.Texts(), "resume yields a superset with no missing question")
}

func TestEngine_AppendFailureDoesNotRegisterOrAdvance(t *testing.T) {
	f := newEngineFixture()
	f.source.addChannel("123", "allmänt",
		testMessage(1, "Fråga ett?"),
		testMessage(2, "Fråga två?"),
	)
	f.exporter.FailAppendAfter = 1
	f.exporter.AppendErr = errors.New("disk full")

	out := f.engine(EngineConfig{}).Run(context.Background(), "123")

	assert.Equal(t, domain.ChannelFailed, out.State)
	assert.Len(t, f.exporter.Texts(), 1)

	// The failed message's key must not be registered: a resume re-exports
	// it instead of silently losing it.
	assert.True(t, f.registry.Contains(domain.DedupeKey("123", "Fråga ett?", "sv")))
	assert.False(t, f.registry.Contains(domain.DedupeKey("123", "Fråga två?", "sv")))

	_, ok := f.checkpoints.Get("123")
	assert.False(t, ok, "the cursor must not move past an unexported question")
}

func TestEngine_DryRunMutatesNothing(t *testing.T) {
	f := newEngineFixture()
	f.source.addChannel("123", "allmänt",
		testMessage(1, "Hur mår du?"),
		testMessage(2, "hur mår du?"), // within-run near duplicate
		testMessage(3, "inget särskilt"),
	)

	out := f.engine(EngineConfig{DryRun: true}).Run(context.Background(), "123")

	assert.Equal(t, domain.ChannelCompleted, out.State)
	assert.Equal(t, 3, out.Scanned)
	assert.Equal(t, 1, out.Questions)
	assert.Equal(t, 1, out.Duplicates)

	assert.Empty(t, f.exporter.Texts())
	assert.Equal(t, 0, f.registry.Len())
	_, ok := f.checkpoints.Get("123")
	assert.False(t, ok)
}

func TestEngine_DetectorExhaustionSkipsMessage(t *testing.T) {
	f := newEngineFixture()
	f.source.addChannel("123", "allmänt",
		testMessage(1, "Fråga ett?"),
		testMessage(2, "krånglig text?"),
		testMessage(3, "Fråga tre?"),
	)
	f.detector.failOn["krånglig text?"] = fmt.Errorf("classifier timeout: %w", domain.ErrTransient)

	out := f.engine(EngineConfig{}).Run(context.Background(), "123")

	assert.Equal(t, domain.ChannelCompleted, out.State, "classifier failures never fail the channel")
	assert.Equal(t, []string{"Fråga ett?", "Fråga tre?"}, f.exporter.Texts())

	cursor, ok := f.checkpoints.Get("123")
	require.True(t, ok)
	assert.Equal(t, "3", cursor)
}

func TestEngine_CursorMonotoneAcrossRuns(t *testing.T) {
	f := newEngineFixture()
	f.source.addChannel("123", "allmänt",
		testMessage(1, "Fråga ett?"),
		testMessage(2, "Fråga två?"),
	)

	f.engine(EngineConfig{PageSize: 1}).Run(context.Background(), "123")
	first, _ := f.checkpoints.Get("123")

	f.engine(EngineConfig{PageSize: 1}).Run(context.Background(), "123")
	second, _ := f.checkpoints.Get("123")

	assert.False(t, domain.NewerID(first, second), "cursor never decreases across runs")
	assert.Equal(t, "2", second)
}

func TestEngine_ObservesCountersOnFinish(t *testing.T) {
	f := newEngineFixture()
	f.source.addChannel("123", "allmänt",
		testMessage(1, "Hur mår du?"),
		testMessage(2, "hur mår du?"),
		testMessage(3, "hejsan"),
	)

	f.engine(EngineConfig{}).Run(context.Background(), "123")

	scanned, duplicates := f.exporter.Counters()
	assert.Equal(t, 3, scanned)
	assert.Equal(t, 1, duplicates)
}
