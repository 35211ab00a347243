package cli

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/spf13/cobra"

	configfile "github.com/fragvis/fragvis-cli/internal/adapters/driven/config/file"
	"github.com/fragvis/fragvis-cli/internal/adapters/driven/detector/ai"
	"github.com/fragvis/fragvis-cli/internal/adapters/driven/detector/keyword"
	"github.com/fragvis/fragvis-cli/internal/adapters/driven/discord"
	storagefile "github.com/fragvis/fragvis-cli/internal/adapters/driven/storage/file"
	"github.com/fragvis/fragvis-cli/internal/core/domain"
	"github.com/fragvis/fragvis-cli/internal/core/ports/driven"
	"github.com/fragvis/fragvis-cli/internal/core/services"
	"github.com/fragvis/fragvis-cli/internal/logger"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62"))

	completedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	failedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	interruptedStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("214"))

	countStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))
)

var (
	harvestChannels    []string
	harvestAllChannels bool
	harvestConcurrency int
	harvestDryRun      bool
	harvestIncludeBots bool
)

var harvestCmd = &cobra.Command{
	Use:   "harvest",
	Short: "Harvest questions from channel history",
	Long: `Walks the configured channels oldest-first, classifies every message,
and appends newly seen questions to the export file.

Each channel resumes strictly after its last checkpoint, so reruns scan only
new history. Ctrl-C finishes the in-flight page, flushes all state and exits;
the next run picks up where this one stopped.`,
	RunE: runHarvest,
}

func init() {
	harvestCmd.Flags().StringSliceVar(&harvestChannels, "channels", nil,
		"channel IDs to harvest (overrides the configured list)")
	harvestCmd.Flags().BoolVar(&harvestAllChannels, "all-channels", false,
		"harvest every readable text channel of the configured guild")
	harvestCmd.Flags().IntVar(&harvestConcurrency, "concurrency", 0,
		"channels traversed in parallel (overrides the configured value)")
	harvestCmd.Flags().BoolVar(&harvestDryRun, "dry-run", false,
		"classify and count without writing export, registry or checkpoints")
	harvestCmd.Flags().BoolVar(&harvestIncludeBots, "include-bots", false,
		"include messages from bot accounts")
	rootCmd.AddCommand(harvestCmd)
}

func runHarvest(cmd *cobra.Command, _ []string) error {
	cfg, err := configfile.Load(configPath)
	if err != nil {
		return err
	}
	if len(harvestChannels) > 0 {
		cfg.Discord.ChannelIDs = harvestChannels
	}
	if harvestAllChannels {
		cfg.Discord.ChannelIDs = nil
	}
	if harvestConcurrency > 0 {
		cfg.Run.Concurrency = harvestConcurrency
	}
	if harvestIncludeBots {
		cfg.Discord.IncludeBots = true
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	token, err := configfile.Token()
	if err != nil {
		return err
	}
	client, err := discord.NewClient(token)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := client.ValidateCredentials(ctx); err != nil {
		return fmt.Errorf("validate credentials: %w", err)
	}

	channelIDs := cfg.Discord.ChannelIDs
	if len(channelIDs) == 0 {
		channels, err := client.ListChannels(ctx, cfg.Discord.GuildID)
		if err != nil {
			return fmt.Errorf("discover channels: %w", err)
		}
		for _, ch := range channels {
			channelIDs = append(channelIDs, ch.ID)
		}
	}
	if len(channelIDs) == 0 {
		return errors.New("no text channels to harvest")
	}

	checkpoints, err := storagefile.NewCheckpointStore(cfg.State.CheckpointPath, cfg.State.CheckpointFlushEvery)
	if err != nil {
		return err
	}
	registry, err := storagefile.NewDedupeRegistry(cfg.State.RegistryPath)
	if err != nil {
		return err
	}

	runID := uuid.NewString()
	exporter, err := storagefile.NewExportWriter(
		cfg.Export.QuestionsPath, cfg.Export.MetadataPath, cfg.Export.Durable, runID)
	if err != nil {
		return err
	}

	logger.Info("run %s: %d channel(s), registry holds %d question(s)",
		runID, len(channelIDs), registry.Len())
	if harvestDryRun {
		logger.Info("dry run: no state will be written")
	}

	engine := services.NewEngine(client, buildDetector(&cfg), checkpoints, registry, exporter,
		services.EngineConfig{
			PageSize:    cfg.Discord.PageSize,
			IncludeBots: cfg.Discord.IncludeBots,
			Language:    cfg.Detection.Language,
			DryRun:      harvestDryRun,
			Retry: services.RetryPolicy{
				MaxAttempts: cfg.Run.MaxRetries,
				BaseDelay:   services.DefaultRetryPolicy.BaseDelay,
				MaxDelay:    services.DefaultRetryPolicy.MaxDelay,
			},
		})

	started := time.Now()
	summary := services.NewCoordinator(engine, cfg.Run.Concurrency).Run(ctx, channelIDs)

	var closeErrs []error
	if !harvestDryRun {
		closeErrs = append(closeErrs, exporter.Close(), registry.Close(), checkpoints.Close())
	}

	cmd.Println(renderSummary(&summary, time.Since(started)))

	if err := errors.Join(closeErrs...); err != nil {
		return fmt.Errorf("close stores: %w", err)
	}
	if n := summary.Failed(); n > 0 {
		return fmt.Errorf("%d channel(s) failed", n)
	}
	return nil
}

// buildDetector assembles the classifier chain: keyword heuristics, wrapped
// by the AI detector when enabled and an API key is present.
func buildDetector(cfg *configfile.Config) driven.Detector {
	kw := keyword.NewDetector(cfg.Detection.ExtraKeywords...)
	if !cfg.Detection.AI.Enabled {
		return kw
	}

	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		logger.Warn("ai detection enabled but OPENAI_API_KEY is not set, using keyword heuristics only")
		return kw
	}
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return ai.NewDetector(&client, cfg.Detection.AI.Model, kw)
}

// renderSummary formats the per-channel outcomes and run totals.
func renderSummary(summary *domain.RunSummary, elapsed time.Duration) string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(headerStyle.Render("Harvest summary"))
	b.WriteString("\n\n")

	for _, out := range summary.Outcomes {
		name := out.ChannelName
		if name == "" {
			name = out.ChannelID
		}

		state := out.State.String()
		switch out.State {
		case domain.ChannelCompleted:
			state = completedStyle.Render(state)
		case domain.ChannelFailed:
			state = failedStyle.Render(state)
		case domain.ChannelInterrupted:
			state = interruptedStyle.Render(state)
		}

		b.WriteString(fmt.Sprintf("  %-24s %s  %s scanned, %s new, %s duplicates\n",
			name, state,
			dimStyle.Render(fmt.Sprintf("%d", out.Scanned)),
			countStyle.Render(fmt.Sprintf("%d", out.Questions)),
			dimStyle.Render(fmt.Sprintf("%d", out.Duplicates))))
		if out.Err != nil {
			b.WriteString("    " + failedStyle.Render(out.Err.Error()) + "\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  %d completed, %d failed, %d interrupted in %s\n",
		summary.Completed(), summary.Failed(), summary.Interrupted(),
		elapsed.Round(time.Millisecond)))
	b.WriteString(fmt.Sprintf("  %s questions exported (%d scanned, %d duplicates suppressed)\n",
		countStyle.Render(fmt.Sprintf("%d", summary.TotalQuestions())),
		summary.TotalScanned(), summary.TotalDuplicates()))
	return b.String()
}
