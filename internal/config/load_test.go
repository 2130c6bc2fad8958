package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"modguard/internal/tracker"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "env-token")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	require.NoError(t, err)
	assert.Equal(t, "env-token", cfg.Bot.Token)
	assert.Equal(t, "modguard.db", cfg.Database.Path)
	assert.Equal(t, 300, cfg.Filter.CacheTTLSeconds)
	assert.Equal(t, 5, cfg.Filter.CooldownSeconds)
	assert.Equal(t, "ban", cfg.Mitigation.Action)
}

func TestLoadFileAndEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"bot": {"token": "file-token"},
		"database": {"path": "custom.db"},
		"filter": {"cache_ttl_seconds": 60, "cooldown_seconds": 10}
	}`), 0o644))

	t.Setenv("DISCORD_TOKEN", "")
	t.Setenv("DATABASE_PATH", "")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "file-token", cfg.Bot.Token)
	assert.Equal(t, "custom.db", cfg.Database.Path)
	assert.Equal(t, 60, cfg.Filter.CacheTTLSeconds)

	// Env wins over the file.
	t.Setenv("DATABASE_PATH", "/tmp/other.db")
	cfg, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/other.db", cfg.Database.Path)
}

func TestLoadRequiresToken(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "")

	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestLoadRejectsMalformedJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	t.Setenv("DISCORD_TOKEN", "x")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestDefaultLimitsCoverEveryAction(t *testing.T) {
	limits := DefaultLimits()
	for _, action := range tracker.AllActionTypes {
		l, ok := limits[action]
		require.True(t, ok, "no default for %s", action)
		assert.Greater(t, l.Max, 0)
		assert.Greater(t, int64(l.Window), int64(0))
	}

	// A single bot addition is already suspicious.
	assert.Equal(t, 1, limits[tracker.ActionBotAdd].Max)
}
