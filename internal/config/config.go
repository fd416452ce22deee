package config

import (
	"time"

	"taskbeacon/internal/channel"
)

// Config is the root configuration for taskbeacon.
type Config struct {
	Server   ServerConfig                  `yaml:"server"`
	Engine   EngineConfig                  `yaml:"engine"`
	Database DatabaseConfig                `yaml:"database"`
	Channels map[string]channel.Descriptor `yaml:"channels"`
	Auth     AuthConfig                    `yaml:"auth"`
}

type ServerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	LogLevel string `yaml:"log_level"`
	LogFile  string `yaml:"log_file"`
	// MockReceiver mounts a local mock push endpoint under /mock for
	// development and testing.
	MockReceiver bool `yaml:"mock_receiver"`
}

type EngineConfig struct {
	// DefaultChannel receives notifications when the caller names none.
	DefaultChannel string `yaml:"default_channel"`
	// FineGrained selects the open category profile instead of the
	// coarse Bash/Write/Edit/Custom one.
	FineGrained bool `yaml:"fine_grained"`
	// DispatchTimeout bounds each HTTP dispatch attempt.
	DispatchTimeout time.Duration `yaml:"dispatch_timeout"`
	// MaxSessionOutput bounds a session's raw output buffer in bytes.
	MaxSessionOutput int `yaml:"max_session_output"`
}

type DatabaseConfig struct {
	Path          string `yaml:"path"`
	RetentionDays int    `yaml:"retention_days"`
}

type AuthConfig struct {
	// APITokens guard the HTTP API. Empty means no auth (bind to
	// localhost in that case).
	APITokens []string `yaml:"api_tokens"`
}

// Defaults returns a Config with sensible default values.
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Host:     "127.0.0.1",
			Port:     8430,
			LogLevel: "info",
		},
		Engine: EngineConfig{
			DispatchTimeout:  10 * time.Second,
			MaxSessionOutput: 262144, // 256KB
		},
		Database: DatabaseConfig{
			Path:          "~/.config/taskbeacon/deliveries.db",
			RetentionDays: 90,
		},
	}
}
