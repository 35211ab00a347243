package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/fragvis/fragvis-cli/internal/core/domain"
	"github.com/fragvis/fragvis-cli/internal/core/ports/driven"
	"github.com/fragvis/fragvis-cli/internal/logger"
)

// DefaultPageSize is the history page size used when none is configured.
// 100 is the platform maximum per request.
const DefaultPageSize = 100

// EngineConfig configures per-channel traversal behaviour.
type EngineConfig struct {
	// PageSize is the number of messages requested per page.
	PageSize int

	// IncludeBots keeps messages from automated accounts in the scan.
	IncludeBots bool

	// Language is the classifier language tag, part of every dedupe key.
	Language string

	// DryRun classifies and counts without mutating any store.
	DryRun bool

	// Retry bounds backoff for page fetches and remote classification.
	Retry RetryPolicy
}

// Engine traverses one channel's history at a time, oldest first, resuming
// strictly after the channel's checkpoint. All stores are injected, shared
// across channels and safe for concurrent use; the engine itself holds no
// per-channel state, so a single instance serves the whole run.
type Engine struct {
	source      driven.HistorySource
	detector    driven.Detector
	checkpoints driven.CheckpointStore
	registry    driven.DedupeRegistry
	exporter    driven.ExportWriter
	cfg         EngineConfig
}

// NewEngine creates a traversal engine over the given collaborators.
func NewEngine(
	source driven.HistorySource,
	detector driven.Detector,
	checkpoints driven.CheckpointStore,
	registry driven.DedupeRegistry,
	exporter driven.ExportWriter,
	cfg EngineConfig,
) *Engine {
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultPageSize
	}
	return &Engine{
		source:      source,
		detector:    detector,
		checkpoints: checkpoints,
		registry:    registry,
		exporter:    exporter,
		cfg:         cfg,
	}
}

// Run traverses a single channel to a terminal state. The durability order
// for every exported message is: export append, then registry add, then
// checkpoint advance. A crash between any two steps is recoverable; the only
// tolerated anomaly is a re-appended line when the crash lands between the
// append and the registry flush.
func (e *Engine) Run(ctx context.Context, channelID string) domain.ChannelOutcome {
	out := domain.ChannelOutcome{ChannelID: channelID, State: domain.ChannelRunning}

	var ch *domain.Channel
	err := Retry(ctx, e.cfg.Retry, func(ctx context.Context) error {
		c, err := e.source.Channel(ctx, channelID)
		if err == nil {
			ch = c
		}
		return err
	})
	if err != nil {
		if ctx.Err() != nil {
			return e.finish(out, domain.ChannelInterrupted, nil)
		}
		return e.finish(out, domain.ChannelFailed, fmt.Errorf("resolve channel %s: %w", channelID, err))
	}
	out.ChannelName = ch.Name

	cursor, resuming := e.checkpoints.Get(channelID)
	if resuming {
		logger.Info("channel %s: resuming after message %s", ch.Name, cursor)
	} else {
		logger.Info("channel %s: starting from oldest message", ch.Name)
	}

	// Dry runs must not touch the shared registry, so near-duplicates inside
	// the same run are tracked in a local overlay instead.
	var dryKeys map[string]struct{}
	if e.cfg.DryRun {
		dryKeys = make(map[string]struct{})
	}

	for {
		// Cancellation is observed only here, at page boundaries. The
		// in-flight page below always runs to completion and is flushed.
		if ctx.Err() != nil {
			return e.finish(out, domain.ChannelInterrupted, nil)
		}

		var page []domain.Message
		err := Retry(ctx, e.cfg.Retry, func(ctx context.Context) error {
			p, err := e.source.FetchPage(ctx, channelID, cursor, e.cfg.PageSize)
			if err == nil {
				page = p
			}
			return err
		})
		if err != nil {
			if ctx.Err() != nil {
				return e.finish(out, domain.ChannelInterrupted, nil)
			}
			return e.finish(out, domain.ChannelFailed, fmt.Errorf("fetch page after %q: %w", cursor, err))
		}
		if len(page) == 0 {
			logger.Info("channel %s: history exhausted (%d scanned, %d questions, %d duplicates)",
				ch.Name, out.Scanned, out.Questions, out.Duplicates)
			return e.finish(out, domain.ChannelCompleted, nil)
		}

		last, err := e.processPage(ctx, ch, page, dryKeys, &out)
		if err != nil {
			return e.finish(out, domain.ChannelFailed, err)
		}
		if last == "" {
			// Nothing in the page was fully processed (cancelled mid-page
			// before the first commit); keep the previous cursor.
			continue
		}

		if !e.cfg.DryRun {
			// Registry keys become durable before the cursor moves past the
			// page. A crash in between refetches the page and dedupes it.
			if err := e.exporter.Flush(); err != nil {
				return e.finish(out, domain.ChannelFailed, fmt.Errorf("flush export: %w", err))
			}
			if err := e.registry.Flush(); err != nil {
				return e.finish(out, domain.ChannelFailed, fmt.Errorf("flush registry: %w", err))
			}
			e.checkpoints.Advance(channelID, last)
		}
		cursor = last
	}
}

// processPage handles one fetched page in order. It returns the identifier
// of the last fully processed message, or empty if none was.
func (e *Engine) processPage(
	ctx context.Context,
	ch *domain.Channel,
	page []domain.Message,
	dryKeys map[string]struct{},
	out *domain.ChannelOutcome,
) (string, error) {
	var last string
	for _, msg := range page {
		out.Scanned++

		if msg.Bot && !e.cfg.IncludeBots {
			last = msg.ID
			continue
		}
		if strings.TrimSpace(msg.Text) == "" {
			last = msg.ID
			continue
		}

		det, err := e.classify(ctx, msg.Text)
		if err != nil {
			if ctx.Err() != nil {
				// Do not advance past a message we could not classify.
				out.Scanned--
				return last, nil
			}
			// Classifier exhausted its retries: skip this message rather
			// than failing the channel.
			logger.Warn("channel %s: classifier unavailable for message %s, skipping: %v",
				ch.Name, msg.ID, err)
			last = msg.ID
			continue
		}
		if !det.IsQuestion {
			last = msg.ID
			continue
		}

		key := domain.DedupeKey(ch.ID, msg.Text, e.cfg.Language)

		if e.cfg.DryRun {
			if _, seen := dryKeys[key]; seen || e.registry.Contains(key) {
				out.Duplicates++
			} else {
				dryKeys[key] = struct{}{}
				out.Questions++
			}
			last = msg.ID
			continue
		}

		if e.registry.Contains(key) {
			out.Duplicates++
			last = msg.ID
			continue
		}

		rec := domain.QuestionRecord{
			ChannelID:   ch.ID,
			ChannelName: ch.Name,
			Timestamp:   msg.Timestamp,
			Text:        msg.Text,
			Detection:   det,
		}
		// Append before the registry add: if the append fails or the process
		// dies here, the key is absent and a resume re-exports the question
		// instead of silently losing it.
		if err := e.exporter.Append(rec); err != nil {
			return last, fmt.Errorf("append question from message %s: %w", msg.ID, err)
		}
		e.registry.Add(key)
		out.Questions++
		last = msg.ID
	}
	return last, nil
}

// classify runs the detector under the retry policy. Remote detectors report
// transient failures; local ones never fail.
func (e *Engine) classify(ctx context.Context, text string) (domain.Detection, error) {
	var det domain.Detection
	err := Retry(ctx, e.cfg.Retry, func(ctx context.Context) error {
		d, err := e.detector.Classify(ctx, text)
		if err == nil {
			det = d
		}
		return err
	})
	return det, err
}

// finish flushes all stores and seals the outcome. Flush order follows the
// durability contract: export lines, registry keys, checkpoint cursors.
func (e *Engine) finish(out domain.ChannelOutcome, state domain.ChannelState, err error) domain.ChannelOutcome {
	if !e.cfg.DryRun {
		e.exporter.Observe(out.Scanned, out.Duplicates)
		if ferr := e.flushAll(); ferr != nil {
			if err == nil {
				state, err = domain.ChannelFailed, ferr
			} else {
				logger.Warn("channel %s: flush during shutdown failed: %v", out.ChannelID, ferr)
			}
		}
	}
	out.State = state
	out.Err = err
	if err != nil {
		logger.Warn("channel %s: %s: %v", out.ChannelID, state, err)
	}
	return out
}

func (e *Engine) flushAll() error {
	if err := e.exporter.Flush(); err != nil {
		return fmt.Errorf("flush export: %w", err)
	}
	if err := e.registry.Flush(); err != nil {
		return fmt.Errorf("flush registry: %w", err)
	}
	if err := e.checkpoints.Flush(); err != nil {
		return fmt.Errorf("flush checkpoints: %w", err)
	}
	return nil
}
