package config

// Config is the root configuration for Cadence.
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Database      DatabaseConfig      `yaml:"database"`
	Digest        DigestConfig        `yaml:"digest"`
	Notifications NotificationsConfig `yaml:"notifications"`
}

type ServerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	LogLevel string `yaml:"log_level"`
	LogFile  string `yaml:"log_file"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// DigestConfig controls the scheduled "what is due today" notification.
type DigestConfig struct {
	Enabled bool `yaml:"enabled"`
	// Cron is a standard five-field cron expression evaluated in local time.
	Cron string `yaml:"cron"`
}

type NotificationsConfig struct {
	Ntfy NtfyConfig `yaml:"ntfy"`
}

type NtfyConfig struct {
	Enabled bool     `yaml:"enabled"`
	Server  string   `yaml:"server"`
	Topic   string   `yaml:"topic"`
	Token   string   `yaml:"token"`
	Events  []string `yaml:"events"`
}

// Defaults returns a Config with sensible default values.
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Host:     "127.0.0.1",
			Port:     8430,
			LogLevel: "info",
		},
		Database: DatabaseConfig{
			Path: "~/.config/cadence/cadence.db",
		},
		Digest: DigestConfig{
			Cron: "0 7 * * *",
		},
		Notifications: NotificationsConfig{
			Ntfy: NtfyConfig{
				Server: "https://ntfy.sh",
				Events: []string{"digest.due"},
			},
		},
	}
}
