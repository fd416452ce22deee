package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// searchPaths returns the ordered list of config file locations to try.
func searchPaths() []string {
	paths := []string{
		"/etc/taskbeacon/taskbeacon.yaml",
	}

	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "taskbeacon", "taskbeacon.yaml"))
	}

	paths = append(paths, "taskbeacon.yaml")

	if envPath := os.Getenv("TASKBEACON_CONFIG"); envPath != "" {
		paths = append(paths, envPath)
	}

	return paths
}

// Load reads configuration from YAML files and environment variables.
// Files are loaded in order (each overrides the previous):
// /etc/taskbeacon/taskbeacon.yaml < ~/.config/taskbeacon/taskbeacon.yaml < ./taskbeacon.yaml < $TASKBEACON_CONFIG
func Load() (*Config, error) {
	cfg := Defaults()

	for _, path := range searchPaths() {
		if err := loadFile(cfg, path); err != nil {
			return nil, fmt.Errorf("loading config %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	cfg := Defaults()

	if err := loadFile(cfg, path); err != nil {
		return nil, fmt.Errorf("loading config %s: %w", path, err)
	}

	applyEnvOverrides(cfg)

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the
// configuration. Environment variables have higher priority than YAML
// config values.
func applyEnvOverrides(cfg *Config) {
	if name := os.Getenv("TASKBEACON_DEFAULT_CHANNEL"); name != "" {
		cfg.Engine.DefaultChannel = name
	}
}

func loadFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from trusted config search paths
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading file: %w", err)
	}

	slog.Debug("loading config file", "path", path)

	expanded := os.ExpandEnv(string(data))

	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return fmt.Errorf("parsing YAML: %w", err)
	}

	return nil
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}

func validate(cfg *Config) error {
	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", cfg.Server.Port)
	}

	if cfg.Engine.DispatchTimeout <= 0 {
		return fmt.Errorf("engine.dispatch_timeout must be positive")
	}

	for name, d := range cfg.Channels {
		d.Name = name
		if err := d.Validate(); err != nil {
			return err
		}
		cfg.Channels[name] = d
	}

	if cfg.Engine.DefaultChannel != "" {
		if _, ok := cfg.Channels[cfg.Engine.DefaultChannel]; !ok {
			return fmt.Errorf("engine.default_channel %q is not configured", cfg.Engine.DefaultChannel)
		}
	}

	cfg.Database.Path = ExpandHome(cfg.Database.Path)

	return nil
}
