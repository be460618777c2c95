package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("CONFIG_FILE", "")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, 15*time.Minute, cfg.JWTAccessExpiry)
	assert.Equal(t, 10*time.Minute, cfg.ShareCacheTTL)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: "9000"
  env: production
dependencies:
  postgres_url: postgres://file/db
  redis_url: redis://file:6379/0
shares:
  cache_ttl: 30s
smtp:
  host: smtp.file.test
`), 0o600))

	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("PORT", "9100")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "9100", cfg.Port, "env wins over file")
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "postgres://file/db", cfg.DatabaseURL)
	assert.Equal(t, "redis://file:6379/0", cfg.RedisURL)
	assert.Equal(t, 30*time.Second, cfg.ShareCacheTTL)
	assert.Equal(t, "smtp.file.test", cfg.SMTP.Host)
	assert.Equal(t, "587", cfg.SMTP.Port)
}

func TestLoad_BadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [unclosed"), 0o600))
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("CONFIG_FILE", path)

	_, err := Load()

	assert.ErrorContains(t, err, "parse config file")
}

func TestLoad_MissingSecretPanics(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("CONFIG_FILE", "")

	assert.Panics(t, func() { _, _ = Load() })
}
