package domain

// ChannelState is the terminal-state machine position of a channel traversal.
type ChannelState int

const (
	// ChannelPending means the traversal has not started yet.
	ChannelPending ChannelState = iota

	// ChannelRunning means pages are being fetched and processed.
	ChannelRunning

	// ChannelCompleted means the history was exhausted.
	ChannelCompleted

	// ChannelFailed means a non-recoverable error stopped the traversal.
	// The last durable checkpoint remains valid for a future resume.
	ChannelFailed

	// ChannelInterrupted means cancellation stopped the traversal after the
	// in-flight page was finished and flushed. Resumable like Failed.
	ChannelInterrupted
)

// String returns the state name for logs and summaries.
func (s ChannelState) String() string {
	switch s {
	case ChannelPending:
		return "pending"
	case ChannelRunning:
		return "running"
	case ChannelCompleted:
		return "completed"
	case ChannelFailed:
		return "failed"
	case ChannelInterrupted:
		return "interrupted"
	default:
		return "unknown"
	}
}

// ChannelOutcome aggregates the result of traversing one channel.
type ChannelOutcome struct {
	// ChannelID identifies the channel.
	ChannelID string

	// ChannelName is the resolved display name, empty if resolution failed.
	ChannelName string

	// State is the terminal state the traversal reached.
	State ChannelState

	// Scanned counts messages fetched and considered.
	Scanned int

	// Questions counts newly exported questions.
	Questions int

	// Duplicates counts questions suppressed by the dedupe registry.
	Duplicates int

	// Err is the error that caused a Failed state, nil otherwise.
	Err error
}

// RunSummary aggregates outcomes across all channels of a run.
type RunSummary struct {
	Outcomes []ChannelOutcome
}

// Completed counts channels that exhausted their history.
func (s *RunSummary) Completed() int { return s.countState(ChannelCompleted) }

// Failed counts channels stopped by a non-recoverable error.
func (s *RunSummary) Failed() int { return s.countState(ChannelFailed) }

// Interrupted counts channels stopped by cancellation.
func (s *RunSummary) Interrupted() int { return s.countState(ChannelInterrupted) }

func (s *RunSummary) countState(state ChannelState) int {
	n := 0
	for _, o := range s.Outcomes {
		if o.State == state {
			n++
		}
	}
	return n
}

// TotalScanned sums scanned messages across channels.
func (s *RunSummary) TotalScanned() int {
	n := 0
	for _, o := range s.Outcomes {
		n += o.Scanned
	}
	return n
}

// TotalQuestions sums exported questions across channels.
func (s *RunSummary) TotalQuestions() int {
	n := 0
	for _, o := range s.Outcomes {
		n += o.Questions
	}
	return n
}

// TotalDuplicates sums suppressed duplicates across channels.
func (s *RunSummary) TotalDuplicates() int {
	n := 0
	for _, o := range s.Outcomes {
		n += o.Duplicates
	}
	return n
}
