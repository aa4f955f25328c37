package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults_SetsExpectedValues(t *testing.T) {
	t.Parallel()

	cfg := Defaults()

	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, 8430, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Server.LogLevel)
	assert.Equal(t, "~/.config/cadence/cadence.db", cfg.Database.Path)
	assert.Equal(t, "0 7 * * *", cfg.Digest.Cron)
	assert.False(t, cfg.Digest.Enabled)
	assert.Equal(t, "https://ntfy.sh", cfg.Notifications.Ntfy.Server)
	assert.Equal(t, []string{"digest.due"}, cfg.Notifications.Ntfy.Events)
}

func TestLoadFromFile_ParsesYAML(t *testing.T) {
	content := `
server:
  host: "127.0.0.1"
  port: 9000
  log_level: "debug"

database:
  path: "/tmp/cadence-test.db"

digest:
  enabled: true
  cron: "30 6 * * *"

notifications:
  ntfy:
    enabled: true
    topic: "cadence-tasks"
    events:
      - "task.completed"
      - "digest.due"
`

	tmpFile := filepath.Join(t.TempDir(), "cadence.yaml")
	require.NoError(t, os.WriteFile(tmpFile, []byte(content), 0644))

	cfg, err := LoadFromFile(tmpFile)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Server.LogLevel)
	assert.Equal(t, "/tmp/cadence-test.db", cfg.Database.Path)
	assert.True(t, cfg.Digest.Enabled)
	assert.Equal(t, "30 6 * * *", cfg.Digest.Cron)
	assert.True(t, cfg.Notifications.Ntfy.Enabled)
	assert.Equal(t, "cadence-tasks", cfg.Notifications.Ntfy.Topic)
	assert.Equal(t, []string{"task.completed", "digest.due"}, cfg.Notifications.Ntfy.Events)
}

func TestLoadFromFile_MissingFileKeepsDefaults(t *testing.T) {
	cfg, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 8430, cfg.Server.Port)
}

func TestLoadFromFile_RejectsInvalidPort(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "cadence.yaml")
	require.NoError(t, os.WriteFile(tmpFile, []byte("server:\n  port: 99999\n"), 0644))

	_, err := LoadFromFile(tmpFile)
	assert.ErrorContains(t, err, "server.port")
}

func TestLoadFromFile_RejectsNtfyWithoutTopic(t *testing.T) {
	content := `
notifications:
  ntfy:
    enabled: true
`
	tmpFile := filepath.Join(t.TempDir(), "cadence.yaml")
	require.NoError(t, os.WriteFile(tmpFile, []byte(content), 0644))

	_, err := LoadFromFile(tmpFile)
	assert.ErrorContains(t, err, "ntfy.topic")
}

func TestEnvOverrides_TakePriority(t *testing.T) {
	t.Setenv("CADENCE_PORT", "7777")
	t.Setenv("CADENCE_NTFY_TOPIC", "from-env")

	tmpFile := filepath.Join(t.TempDir(), "cadence.yaml")
	require.NoError(t, os.WriteFile(tmpFile, []byte("server:\n  port: 9000\n"), 0644))

	cfg, err := LoadFromFile(tmpFile)
	require.NoError(t, err)

	assert.Equal(t, 7777, cfg.Server.Port)
	assert.Equal(t, "from-env", cfg.Notifications.Ntfy.Topic)
}

func TestExpandHome(t *testing.T) {
	t.Parallel()

	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, "data.db"), ExpandHome("~/data.db"))
	assert.Equal(t, "/var/lib/cadence.db", ExpandHome("/var/lib/cadence.db"))
}
