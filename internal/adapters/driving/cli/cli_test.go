package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute drives the root command the way main does, capturing output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		configPath = "fragvis.toml" // persistent flag values survive Execute
	})
	err := rootCmd.Execute()
	return buf.String(), err
}

func TestVersionCmd(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "fragvis version")
}

func TestDetectCmd_Question(t *testing.T) {
	out, err := execute(t, "detect", "Hur mår du?")
	require.NoError(t, err)
	assert.Contains(t, out, "question")
	assert.Contains(t, out, "keyword")
}

func TestDetectCmd_Statement(t *testing.T) {
	out, err := execute(t, "detect", "det regnar idag")
	require.NoError(t, err)
	assert.Contains(t, out, "not a question")
}

func TestDetectCmd_JoinsArgs(t *testing.T) {
	out, err := execute(t, "detect", "Hur", "fungerar", "detta")
	require.NoError(t, err)
	assert.Contains(t, out, "question", "strong opener without a question mark")
}

func TestDetectCmd_ExtraKeywordsFromConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fragvis.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[detection]
extra_keywords = ["undrar"]
`), 0600))

	out, err := execute(t, "--config", path, "detect", "undrar om någon testat detta")
	require.NoError(t, err)
	assert.Contains(t, out, "question")
}

func TestDetectCmd_RequiresText(t *testing.T) {
	_, err := execute(t, "detect")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires at least 1 arg")
}

func TestHarvestCmd_Flags(t *testing.T) {
	for _, name := range []string{"channels", "all-channels", "concurrency", "dry-run", "include-bots"} {
		assert.NotNil(t, harvestCmd.Flags().Lookup(name), "flag %s should exist", name)
	}
}

func TestHarvestCmd_RejectsInvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fragvis.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[discord]
guild_id = "42"
page_size = 500
`), 0600))

	_, err := execute(t, "--config", path, "harvest")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "page_size")
}

func TestHarvestCmd_RequiresTargets(t *testing.T) {
	_, err := execute(t, "--config", filepath.Join(t.TempDir(), "absent.toml"), "harvest")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "guild_id")
}

func TestHarvestCmd_RequiresToken(t *testing.T) {
	t.Setenv("FRAGVIS_DISCORD_TOKEN", "")

	path := filepath.Join(t.TempDir(), "fragvis.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[discord]
guild_id = "42"
`), 0600))

	_, err := execute(t, "--config", path, "harvest")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "FRAGVIS_DISCORD_TOKEN")
}

func TestChannelsCmd_RequiresGuild(t *testing.T) {
	_, err := execute(t, "--config", filepath.Join(t.TempDir(), "absent.toml"), "channels")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "guild_id")
}
