// Package file loads the TOML configuration that drives a harvest run.
//
// Secrets never live in the file: the Discord bot token comes from the
// FRAGVIS_DISCORD_TOKEN environment variable and the OpenAI key from
// OPENAI_API_KEY.
package file
