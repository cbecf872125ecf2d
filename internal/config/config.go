// Package config loads traybridge configuration from environment
// variables.
package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all traybridge configuration.
type Config struct {
	Tray    TrayConfig
	Server  ServerConfig
	Logging LogConfig
	Breaker BreakerConfig
}

// ServerConfig holds the mock tray daemon's listen address.
type ServerConfig struct {
	Host string `envconfig:"HOST" default:"127.0.0.1"`
	Port string `envconfig:"PORT" default:"9123"`
}

// TrayConfig holds tray process channel configuration.
type TrayConfig struct {
	// URL is the websocket endpoint the tray process listens on.
	URL string `envconfig:"TRAY_URL" default:"ws://127.0.0.1:9123/channel"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// BreakerConfig holds circuit breaker configuration for tray calls.
type BreakerConfig struct {
	FailureThreshold uint32        `envconfig:"BREAKER_FAILURES" default:"5"`
	Cooldown         time.Duration `envconfig:"BREAKER_COOLDOWN" default:"30s"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("TRAYBRIDGE", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns
// defaults.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Tray: TrayConfig{
			URL: "ws://127.0.0.1:9123/channel",
		},
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: "9123",
		},
		Logging: LogConfig{
			Level: "info",
		},
		Breaker: BreakerConfig{
			FailureThreshold: 5,
			Cooldown:         30 * time.Second,
		},
	}
}
