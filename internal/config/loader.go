package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// envOverrides collects environment variables that take priority over file
// values. All variables carry the CADENCE_ prefix.
type envOverrides struct {
	Host      string `envconfig:"HOST"`
	Port      int    `envconfig:"PORT"`
	LogLevel  string `envconfig:"LOG_LEVEL"`
	DBPath    string `envconfig:"DB_PATH"`
	NtfyTopic string `envconfig:"NTFY_TOPIC"`
	NtfyToken string `envconfig:"NTFY_TOKEN"`
}

const envNamespace = "CADENCE"

// searchPaths returns the ordered list of config file locations to try.
func searchPaths() []string {
	paths := []string{
		"/etc/cadence/cadence.yaml",
	}

	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "cadence", "cadence.yaml"))
	}

	paths = append(paths, "cadence.yaml")

	if envPath := os.Getenv("CADENCE_CONFIG"); envPath != "" {
		paths = append(paths, envPath)
	}

	return paths
}

// Load reads configuration from YAML files and environment variables.
// Files are loaded in order (each overrides the previous):
// /etc/cadence/cadence.yaml < ~/.config/cadence/cadence.yaml < ./cadence.yaml < $CADENCE_CONFIG
func Load() (*Config, error) {
	cfg := Defaults()

	for _, path := range searchPaths() {
		if err := loadFile(cfg, path); err != nil {
			return nil, fmt.Errorf("loading config %s: %w", path, err)
		}
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

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

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies CADENCE_* environment variables on top of the
// file-derived configuration.
func applyEnvOverrides(cfg *Config) error {
	var env envOverrides
	if err := envconfig.Process(envNamespace, &env); err != nil {
		return fmt.Errorf("reading environment overrides: %w", err)
	}

	if env.Host != "" {
		cfg.Server.Host = env.Host
	}
	if env.Port != 0 {
		cfg.Server.Port = env.Port
	}
	if env.LogLevel != "" {
		cfg.Server.LogLevel = env.LogLevel
	}
	if env.DBPath != "" {
		cfg.Database.Path = env.DBPath
	}
	if env.NtfyTopic != "" {
		cfg.Notifications.Ntfy.Topic = env.NtfyTopic
	}
	if env.NtfyToken != "" {
		cfg.Notifications.Ntfy.Token = env.NtfyToken
	}

	return nil
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

	if cfg.Notifications.Ntfy.Enabled && cfg.Notifications.Ntfy.Topic == "" {
		return fmt.Errorf("notifications.ntfy.topic is required when ntfy is enabled")
	}

	if cfg.Digest.Enabled && cfg.Digest.Cron == "" {
		return fmt.Errorf("digest.cron is required when the digest is enabled")
	}

	cfg.Database.Path = ExpandHome(cfg.Database.Path)

	return nil
}
