package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "worldforge.db", cfg.Database.Path)
	assert.Equal(t, "worldforge_session", cfg.Auth.CookieName)
	assert.Equal(t, 7*24*time.Hour, cfg.Auth.SessionTTL)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "worldforge.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[server]
port = 9000
dev = true

[database]
path = "/tmp/file.db"
busy_timeout = "2s"

[logging]
format = "json"
`), 0644))

	t.Setenv("WORLDFORGE_SERVER_PORT", "9100")
	t.Setenv("WORLDFORGE_AUTH_SESSION_TTL", "1h")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.Server.Port)
	assert.True(t, cfg.Server.Dev)
	assert.Equal(t, "/tmp/file.db", cfg.Database.Path)
	assert.Equal(t, 2*time.Second, cfg.Database.BusyTimeout)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, time.Hour, cfg.Auth.SessionTTL)
	assert.Equal(t, "localhost:9100", cfg.Addr())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"port", func(c *Config) { c.Server.Port = 70000 }, "server.port"},
		{"path", func(c *Config) { c.Database.Path = " " }, "database.path"},
		{"short secret", func(c *Config) { c.Auth.Secret = "short" }, "auth.secret"},
		{"format", func(c *Config) { c.Logging.Format = "xml" }, "logging.format"},
		{"rate limit", func(c *Config) { c.RateLimit.AuthPerMinute = 0 }, "rate_limit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaults()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}

	cfg := defaults()
	cfg.Server.Dev = true
	cfg.Auth.Secret = "short"
	assert.NoError(t, cfg.Validate(), "dev mode accepts any secret")
}
