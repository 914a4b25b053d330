package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "ARK_API_KEY", "ARK_ACCESS_KEY", "ARK_SECRET_KEY", "Model", "ARK_TEMPERATURE",
		"ARK_TOP_P", "ARK_MAX_TOKENS", "AI_HISTORY_LIMIT", "NATS_URL", "NATS_SUBJECT_PREFIX",
		"CUREVERSE_SERVER_URL", "CUREVERSE_STORE", "CUREVERSE_STORE_DSN", "CUREVERSE_STORAGE_KEY",
		"CUREVERSE_SESSION", "CUREVERSE_REPLAY_LIMIT", "CUREVERSE_MIN_DWELL_MS", "LOG_LEVEL",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.False(t, cfg.AI.Enabled())
	assert.Equal(t, 10, cfg.AI.HistoryLimit)
	assert.False(t, cfg.NATS.Enabled())
	assert.Equal(t, "cureverse", cfg.NATS.SubjectPrefix)
	assert.Equal(t, "ws://localhost:8080/ws", cfg.Client.ServerURL)
	assert.Equal(t, "file", cfg.Client.Store)
	assert.Equal(t, "cureverse_chat_history", cfg.Client.StorageKey)
	assert.Equal(t, 20, cfg.Client.ReplayLimit)
	assert.Equal(t, 1500*time.Millisecond, cfg.Client.MinDwell)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "127.0.0.1:9000")
	t.Setenv("ARK_API_KEY", "key")
	t.Setenv("Model", "ep-1")
	t.Setenv("ARK_TEMPERATURE", "0.3")
	t.Setenv("AI_HISTORY_LIMIT", "0")
	t.Setenv("NATS_URL", "nats://localhost:4222")
	t.Setenv("CUREVERSE_STORE", "SQLite")
	t.Setenv("CUREVERSE_REPLAY_LIMIT", "5")
	t.Setenv("CUREVERSE_MIN_DWELL_MS", "0")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr)
	assert.True(t, cfg.AI.Enabled())
	require.NotNil(t, cfg.AI.Temperature)
	assert.InDelta(t, 0.3, *cfg.AI.Temperature, 1e-9)
	assert.Equal(t, 1, cfg.AI.HistoryLimit)
	assert.True(t, cfg.NATS.Enabled())
	assert.Equal(t, "sqlite", cfg.Client.Store)
	assert.Equal(t, 5, cfg.Client.ReplayLimit)
	assert.Zero(t, cfg.Client.MinDwell)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"PORT":                   "80 80",
		"ARK_MAX_TOKENS":         "lots",
		"CUREVERSE_STORE":        "tape",
		"CUREVERSE_REPLAY_LIMIT": "0",
		"CUREVERSE_MIN_DWELL_MS": "-1",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(key, value)
			_, err := Load()
			require.Error(t, err)
			if key != "PORT" && key != "CUREVERSE_STORE" {
				assert.Contains(t, err.Error(), key)
			}
		})
	}
}
