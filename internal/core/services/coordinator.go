package services

import (
	"context"
	"sync"

	"github.com/fragvis/fragvis-cli/internal/core/domain"
	"github.com/fragvis/fragvis-cli/internal/logger"
)

// Coordinator runs traversal engines for multiple channels under a
// bounded-parallelism policy. Failed channels are not retried within a run;
// a subsequent invocation resumes them from their last checkpoint.
type Coordinator struct {
	engine      *Engine
	parallelism int
}

// NewCoordinator creates a coordinator that runs at most parallelism
// channel traversals concurrently.
func NewCoordinator(engine *Engine, parallelism int) *Coordinator {
	if parallelism < 1 {
		parallelism = 1
	}
	return &Coordinator{engine: engine, parallelism: parallelism}
}

// Run traverses all channels to a terminal state and aggregates the
// per-channel outcomes. Channels still waiting for a slot when the context
// is cancelled are reported as interrupted without starting.
func (c *Coordinator) Run(ctx context.Context, channelIDs []string) domain.RunSummary {
	logger.Info("processing %d channel(s) with parallelism %d", len(channelIDs), c.parallelism)

	sem := make(chan struct{}, c.parallelism)
	outcomes := make([]domain.ChannelOutcome, len(channelIDs))

	var wg sync.WaitGroup
	for i, id := range channelIDs {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				outcomes[i] = domain.ChannelOutcome{
					ChannelID: id,
					State:     domain.ChannelInterrupted,
				}
				return
			}
			defer func() { <-sem }()

			outcomes[i] = c.engine.Run(ctx, id)
		}(i, id)
	}
	wg.Wait()

	summary := domain.RunSummary{Outcomes: outcomes}
	logger.Info("run finished: %d completed, %d failed, %d interrupted",
		summary.Completed(), summary.Failed(), summary.Interrupted())
	return summary
}
