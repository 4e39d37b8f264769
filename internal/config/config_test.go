package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storyweave/linksync/internal/domain"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("API_KEY", "test-key")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "linksync", cfg.ServiceName)
	assert.False(t, cfg.DiscordEnabled())

	require.Len(t, cfg.Workers, len(domain.ProviderKinds))
	for kind, settings := range cfg.Workers {
		assert.True(t, settings.Enabled, "worker %q enabled by default", kind)
		assert.Equal(t, DefaultCheckInterval, settings.CheckInterval)
		assert.Equal(t, DefaultFullSyncInterval, settings.FullSyncInterval)
		assert.Equal(t, DefaultFullRefetchInterval, settings.FullRefetchInterval)
		assert.Equal(t, DefaultBatchSize, settings.BatchSize)
	}
}

func TestLoad_WorkerOverrides(t *testing.T) {
	t.Setenv("API_KEY", "test-key")
	t.Setenv("SYNC_GITHUB_ENABLED", "false")
	t.Setenv("SYNC_GITHUB_FULL_SYNC_INTERVAL", "15m")
	t.Setenv("SYNC_GITHUB_BATCH_SIZE", "50")

	cfg, err := Load()
	require.NoError(t, err)

	github := cfg.Workers[domain.KindGitHub]
	assert.False(t, github.Enabled)
	assert.Equal(t, 15*time.Minute, github.FullSyncInterval)
	assert.Equal(t, 50, github.BatchSize)

	// Other kinds keep their defaults
	youtube := cfg.Workers[domain.KindYouTube]
	assert.True(t, youtube.Enabled)
	assert.Equal(t, DefaultFullSyncInterval, youtube.FullSyncInterval)
}

func TestLoad_InvalidDuration(t *testing.T) {
	t.Setenv("API_KEY", "test-key")
	t.Setenv("SYNC_YOUTUBE_CHECK_INTERVAL", "every-so-often")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SYNC_YOUTUBE_CHECK_INTERVAL")
}

func TestLoad_InvalidBatchSize(t *testing.T) {
	t.Setenv("API_KEY", "test-key")
	t.Setenv("SYNC_SLIDES_BATCH_SIZE", "many")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_MissingAPIKey(t *testing.T) {
	t.Setenv("API_KEY", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}

func TestLoad_BatchSizeCap(t *testing.T) {
	t.Setenv("API_KEY", "test-key")
	t.Setenv("SYNC_GITHUB_BATCH_SIZE", "10000")

	_, err := Load()
	assert.Error(t, err, "batch size above the cap fails validation")
}

func TestDiscordEnabled_RequiresBoth(t *testing.T) {
	cfg := &Config{DiscordBotToken: "token"}
	assert.False(t, cfg.DiscordEnabled())

	cfg.DiscordOpsChannelID = "chan"
	assert.True(t, cfg.DiscordEnabled())
}

func TestGetDBConnString(t *testing.T) {
	cfg := &Config{
		DBUser:     "app",
		DBPassword: "secret",
		DBHost:     "db",
		DBPort:     "5433",
		DBName:     "linksync",
	}
	assert.Equal(t, "postgres://app:secret@db:5433/linksync?sslmode=disable", cfg.GetDBConnString())
}
