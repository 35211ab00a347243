package file

import (
	"errors"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/fragvis/fragvis-cli/internal/core/domain"
)

// TokenEnvVar is the environment variable holding the Discord bot token.
const TokenEnvVar = "FRAGVIS_DISCORD_TOKEN"

// Config is the full harvest configuration.
type Config struct {
	Discord   DiscordConfig   `toml:"discord"`
	Detection DetectionConfig `toml:"detection"`
	Export    ExportConfig    `toml:"export"`
	State     StateConfig     `toml:"state"`
	Run       RunConfig       `toml:"run"`
}

// DiscordConfig selects what to harvest.
type DiscordConfig struct {
	// GuildID is the server whose channels are harvested. Required when
	// ChannelIDs is empty (channel discovery needs a guild).
	GuildID string `toml:"guild_id"`

	// ChannelIDs limits the run to these channels. Empty means all readable
	// text channels of the guild.
	ChannelIDs []string `toml:"channel_ids"`

	// IncludeBots keeps messages from automated accounts.
	IncludeBots bool `toml:"include_bots"`

	// PageSize is the history page size, capped at the API maximum of 100.
	PageSize int `toml:"page_size"`
}

// DetectionConfig tunes the question classifiers.
type DetectionConfig struct {
	// Language is the classifier language tag, part of every dedupe key.
	Language string `toml:"language"`

	// ExtraKeywords extend the strong interrogative set.
	ExtraKeywords []string `toml:"extra_keywords"`

	AI AIConfig `toml:"ai"`
}

// AIConfig controls the optional remote classifier.
type AIConfig struct {
	Enabled bool   `toml:"enabled"`
	Model   string `toml:"model"`
}

// ExportConfig locates the export artifacts.
type ExportConfig struct {
	// QuestionsPath is the append-only export file.
	QuestionsPath string `toml:"questions_path"`

	// MetadataPath is the sibling metadata JSON.
	MetadataPath string `toml:"metadata_path"`

	// Durable syncs the export file after every append instead of at flush.
	Durable bool `toml:"durable"`
}

// StateConfig locates the resumable run state.
type StateConfig struct {
	// RegistryPath is the dedupe registry JSON.
	RegistryPath string `toml:"registry_path"`

	// CheckpointPath is the per-channel cursor JSON.
	CheckpointPath string `toml:"checkpoint_path"`

	// CheckpointFlushEvery is the advance count between checkpoint flushes.
	CheckpointFlushEvery int `toml:"checkpoint_flush_every"`
}

// RunConfig tunes run-wide behaviour.
type RunConfig struct {
	// Concurrency is the number of channels traversed in parallel.
	Concurrency int `toml:"concurrency"`

	// MaxRetries is the attempt budget for transient remote failures.
	MaxRetries int `toml:"max_retries"`
}

// Default returns the configuration used when the file omits a field.
func Default() Config {
	return Config{
		Discord: DiscordConfig{
			PageSize: 100,
		},
		Detection: DetectionConfig{
			Language: "sv",
			AI:       AIConfig{Model: "gpt-4o-mini"},
		},
		Export: ExportConfig{
			QuestionsPath: "questions.txt",
			MetadataPath:  "questions.meta.json",
		},
		State: StateConfig{
			RegistryPath:         "exported_questions.json",
			CheckpointPath:       "channel_checkpoints.json",
			CheckpointFlushEvery: 5,
		},
		Run: RunConfig{
			Concurrency: 2,
			MaxRetries:  5,
		},
	}
}

// Load reads path over the defaults. A missing file yields the defaults; a
// file that does not parse is an error. Validation happens after the command
// layer has merged its flags, so Load does not validate.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("%w: parse %s: %w", domain.ErrInvalidConfig, path, err)
	}
	return cfg, nil
}

// Validate checks the configuration invariants.
func (c *Config) Validate() error {
	var errs []error
	if c.Discord.GuildID == "" && len(c.Discord.ChannelIDs) == 0 {
		errs = append(errs, errors.New("discord.guild_id or discord.channel_ids must be set"))
	}
	if c.Discord.PageSize < 1 || c.Discord.PageSize > 100 {
		errs = append(errs, fmt.Errorf("discord.page_size must be in [1, 100], got %d", c.Discord.PageSize))
	}
	if c.Detection.Language == "" {
		errs = append(errs, errors.New("detection.language must be set"))
	}
	if c.Export.QuestionsPath == "" {
		errs = append(errs, errors.New("export.questions_path must be set"))
	}
	if c.State.RegistryPath == "" {
		errs = append(errs, errors.New("state.registry_path must be set"))
	}
	if c.State.CheckpointPath == "" {
		errs = append(errs, errors.New("state.checkpoint_path must be set"))
	}
	if c.State.CheckpointFlushEvery < 1 {
		errs = append(errs, fmt.Errorf("state.checkpoint_flush_every must be positive, got %d", c.State.CheckpointFlushEvery))
	}
	if c.Run.Concurrency < 1 {
		errs = append(errs, fmt.Errorf("run.concurrency must be positive, got %d", c.Run.Concurrency))
	}
	if c.Run.MaxRetries < 1 {
		errs = append(errs, fmt.Errorf("run.max_retries must be positive, got %d", c.Run.MaxRetries))
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", domain.ErrInvalidConfig, errors.Join(errs...))
}

// Token returns the Discord bot token from the environment.
func Token() (string, error) {
	token := os.Getenv(TokenEnvVar)
	if token == "" {
		return "", fmt.Errorf("%w: set %s", domain.ErrAuthRequired, TokenEnvVar)
	}
	return token, nil
}
