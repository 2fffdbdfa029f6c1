package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://tv:tv@localhost:5432/tv?sslmode=disable")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("DB_CONNECT_TIMEOUT", "3s")
	t.Setenv("CACHE_TTL", "not-a-duration")

	c, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "postgres://tv:tv@localhost:5432/tv?sslmode=disable", c.DatabaseURL)
	assert.Equal(t, "redis://localhost:6379/0", c.RedisURL)
	assert.Equal(t, "debug", c.LogLevel)
	assert.Equal(t, 3*time.Second, c.ConnectTimeout)
	assert.Equal(t, defaultCacheTTL, c.CacheTTL)
}

func TestLoadReadsEnvFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("DATABASE_URL=postgres://from-env-file/tv\n"), 0o600))
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	t.Setenv("DATABASE_URL", "")
	t.Setenv("LOG_LEVEL", "")
	// Unset so godotenv may populate it; t.Setenv restores the original afterwards.
	require.NoError(t, os.Unsetenv("DATABASE_URL"))

	c, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "postgres://from-env-file/tv", c.DatabaseURL)
	assert.Equal(t, "info", c.LogLevel)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
database_url: postgres://tv@db/tv
log_level: warn
connect_timeout: 2s
cache_ttl: 1m
`), 0o600))

	c, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "postgres://tv@db/tv", c.DatabaseURL)
	assert.Empty(t, c.RedisURL)
	assert.Equal(t, "warn", c.LogLevel)
	assert.Equal(t, 2*time.Second, c.ConnectTimeout)
	assert.Equal(t, time.Minute, c.CacheTTL)
}

func TestLoadFromFileErrors(t *testing.T) {
	dir := t.TempDir()

	missing := filepath.Join(dir, "missing.yaml")
	require.NoError(t, os.WriteFile(missing, []byte("log_level: info\n"), 0o600))
	_, err := LoadFromFile(missing)
	assert.ErrorIs(t, err, ErrMissingDatabaseURL)

	badLevel := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(badLevel, []byte("database_url: postgres://x/y\nlog_level: loud\n"), 0o600))
	_, err = LoadFromFile(badLevel)
	assert.Error(t, err)

	_, err = LoadFromFile(filepath.Join(dir, "nope.yaml"))
	assert.Error(t, err)
}
