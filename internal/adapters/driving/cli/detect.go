package cli

import (
	"strings"

	"github.com/spf13/cobra"

	configfile "github.com/fragvis/fragvis-cli/internal/adapters/driven/config/file"
)

var detectCmd = &cobra.Command{
	Use:   "detect [text]",
	Short: "Classify a piece of text",
	Long: `Runs the configured question detector on the given text and prints the
verdict. Handy for tuning extra_keywords without touching any channel.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDetect,
}

func init() {
	rootCmd.AddCommand(detectCmd)
}

func runDetect(cmd *cobra.Command, args []string) error {
	cfg, err := configfile.Load(configPath)
	if err != nil {
		return err
	}

	text := strings.Join(args, " ")
	det, err := buildDetector(&cfg).Classify(cmd.Context(), text)
	if err != nil {
		return err
	}

	if det.IsQuestion {
		cmd.Printf("question (source %s, confidence %.2f)\n", det.Source, det.Confidence)
	} else {
		cmd.Println("not a question")
	}
	return nil
}
