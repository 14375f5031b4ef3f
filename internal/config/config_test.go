package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
server:
  port: 9090
  host: "0.0.0.0"

database:
  url: "postgres://localhost:5432/campaigner?sslmode=disable"

email:
  provider: "sparkpost"
  from_email: "news@example.com"
  from_name: "Example News"
  app_base_url: "https://mail.example.com"

sparkpost:
  api_key: "test-api-key"
  timeout_seconds: 45

dispatch:
  send_rate_per_second: 5
  flush_every: 10
`
	err := os.WriteFile(configPath, []byte(configContent), 0644)
	require.NoError(t, err)

	cfg, err := Load(configPath)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, "sparkpost", cfg.Email.Provider)
	assert.Equal(t, "news@example.com", cfg.Email.FromEmail)
	assert.Equal(t, "test-api-key", cfg.SparkPost.APIKey)
	assert.Equal(t, 45, cfg.SparkPost.TimeoutSeconds)
	assert.Equal(t, 5.0, cfg.Dispatch.SendRatePerSecond)
	assert.Equal(t, 10, cfg.Dispatch.FlushEvery)
}

func TestLoadDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	err := os.WriteFile(configPath, []byte("server:\n  port: 0\n"), 0644)
	require.NoError(t, err)

	cfg, err := Load(configPath)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.Equal(t, "ses", cfg.Email.Provider)
	assert.Equal(t, "us-west-2", cfg.SES.Region)
	assert.Equal(t, 10.0, cfg.Dispatch.SendRatePerSecond)
	assert.Equal(t, 25, cfg.Dispatch.FlushEvery)
	assert.Equal(t, 600, cfg.Dispatch.LockTTLSeconds)
	assert.False(t, cfg.Redis.Enabled())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("/nonexistent/config.yaml")
	assert.Error(t, err)
}

func TestLoadFromEnvOverrides(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	err := os.WriteFile(configPath, []byte("email:\n  from_email: file@example.com\n"), 0644)
	require.NoError(t, err)

	t.Setenv("FROM_EMAIL", "env@example.com")
	t.Setenv("DATABASE_URL", "postgres://env-host:5432/db")
	t.Setenv("DISPATCH_SEND_RATE", "2.5")

	cfg, err := LoadFromEnv(configPath)
	require.NoError(t, err)

	assert.Equal(t, "env@example.com", cfg.Email.FromEmail)
	assert.Equal(t, "postgres://env-host:5432/db", cfg.Database.URL)
	assert.Equal(t, 2.5, cfg.Dispatch.SendRatePerSecond)
}

func TestReplyToOrFrom(t *testing.T) {
	c := EmailConfig{FromEmail: "from@example.com"}
	assert.Equal(t, "from@example.com", c.ReplyToOrFrom())

	c.ReplyTo = "reply@example.com"
	assert.Equal(t, "reply@example.com", c.ReplyToOrFrom())
}
