package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "ws://127.0.0.1:9123/channel", cfg.Tray.URL)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, "9123", cfg.Server.Port)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.False(t, cfg.Logging.Development)
	assert.Equal(t, uint32(5), cfg.Breaker.FailureThreshold)
	assert.Equal(t, 30*time.Second, cfg.Breaker.Cooldown)
}

func TestLoadUsesDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Default().Tray.URL, cfg.Tray.URL)
}

func TestLoadWithEnvironmentVariables(t *testing.T) {
	t.Setenv("TRAYBRIDGE_TRAY_URL", "ws://10.0.0.5:7000/channel")
	t.Setenv("TRAYBRIDGE_LOG_LEVEL", "debug")
	t.Setenv("TRAYBRIDGE_LOG_DEV", "true")
	t.Setenv("TRAYBRIDGE_BREAKER_FAILURES", "2")
	t.Setenv("TRAYBRIDGE_BREAKER_COOLDOWN", "5s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "ws://10.0.0.5:7000/channel", cfg.Tray.URL)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Logging.Development)
	assert.Equal(t, uint32(2), cfg.Breaker.FailureThreshold)
	assert.Equal(t, 5*time.Second, cfg.Breaker.Cooldown)
}
