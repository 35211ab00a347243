package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	configfile "github.com/fragvis/fragvis-cli/internal/adapters/driven/config/file"
	"github.com/fragvis/fragvis-cli/internal/adapters/driven/discord"
)

var channelsCmd = &cobra.Command{
	Use:   "channels",
	Short: "List the guild's readable text channels",
	Long: `Lists the text channels of the configured guild that the bot can read.
Useful for picking channel IDs for the configuration or the --channels flag.`,
	RunE: runChannels,
}

func init() {
	rootCmd.AddCommand(channelsCmd)
}

func runChannels(cmd *cobra.Command, _ []string) error {
	cfg, err := configfile.Load(configPath)
	if err != nil {
		return err
	}
	if cfg.Discord.GuildID == "" {
		return fmt.Errorf("discord.guild_id must be set in %s", configPath)
	}

	token, err := configfile.Token()
	if err != nil {
		return err
	}
	client, err := discord.NewClient(token)
	if err != nil {
		return err
	}

	channels, err := client.ListChannels(cmd.Context(), cfg.Discord.GuildID)
	if err != nil {
		return fmt.Errorf("list channels: %w", err)
	}
	if len(channels) == 0 {
		cmd.Println("No readable text channels found.")
		return nil
	}

	cmd.Println(headerStyle.Render("Text channels"))
	for _, ch := range channels {
		cmd.Printf("  %s  %s\n", dimStyle.Render(ch.ID), ch.Name)
	}
	return nil
}
