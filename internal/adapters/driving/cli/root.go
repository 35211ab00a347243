// Package cli implements the fragvis command surface.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/fragvis/fragvis-cli/internal/logger"
)

// version is overridden at build time via -ldflags.
var version = "dev"

var (
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "fragvis",
	Short: "Harvest Swedish questions from Discord channel history",
	Long: `fragvis walks Discord channel history oldest-first, detects Swedish
questions with keyword heuristics (optionally backed by AI classification),
deduplicates them across runs and appends them to a text export.

Runs are resumable: per-channel checkpoints and the dedupe registry persist
between invocations, so interrupting a run never loses exported questions.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "fragvis.toml",
		"path to the TOML configuration file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"enable debug logging")
}

// Execute runs the root command and returns its error for main to exit on.
func Execute() error {
	return rootCmd.Execute()
}
