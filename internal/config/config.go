package config

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// ErrMissingDatabaseURL is returned when no database URL is configured.
var ErrMissingDatabaseURL = errors.New("DATABASE_URL is required")

const (
	defaultLogLevel       = "info"
	defaultConnectTimeout = 10 * time.Second
	defaultCacheTTL       = 5 * time.Minute
)

// Config holds application configuration (database, optional Redis cache, logging).
type Config struct {
	DatabaseURL    string        `yaml:"database_url" env:"DATABASE_URL" validate:"required"`
	RedisURL       string        `yaml:"redis_url" env:"REDIS_URL"`
	LogLevel       string        `yaml:"log_level" env:"LOG_LEVEL" validate:"oneof=trace debug info warn warning error fatal"`
	ConnectTimeout time.Duration `yaml:"connect_timeout" env:"DB_CONNECT_TIMEOUT" validate:"gt=0"`
	CacheTTL       time.Duration `yaml:"cache_ttl" env:"CACHE_TTL" validate:"gt=0"`
}

// Load builds config from environment variables.
// If DATABASE_URL is not set, Load first reads .env.local and .env from the
// current directory and the executable's directory. Variables already set win.
func Load() (*Config, error) {
	if os.Getenv("DATABASE_URL") == "" {
		loadEnvFiles()
	}
	c := &Config{
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		RedisURL:       os.Getenv("REDIS_URL"),
		LogLevel:       os.Getenv("LOG_LEVEL"),
		ConnectTimeout: parseDuration(os.Getenv("DB_CONNECT_TIMEOUT"), defaultConnectTimeout),
		CacheTTL:       parseDuration(os.Getenv("CACHE_TTL"), defaultCacheTTL),
	}
	return c.finish()
}

func (c *Config) finish() (*Config, error) {
	if c.DatabaseURL == "" {
		return nil, ErrMissingDatabaseURL
	}
	if c.LogLevel == "" {
		c.LogLevel = defaultLogLevel
	}
	if err := validator.New().Struct(c); err != nil {
		return nil, err
	}
	return c, nil
}

func loadEnvFiles() {
	var dirs []string
	if cwd, err := os.Getwd(); err == nil {
		dirs = append(dirs, cwd)
	}
	if exe, err := os.Executable(); err == nil {
		if dir := filepath.Dir(exe); dir != "" {
			dirs = append(dirs, dir)
		}
	}
	for _, dir := range dirs {
		for _, name := range []string{".env.local", ".env"} {
			// godotenv.Load never overrides variables that are already set.
			_ = godotenv.Load(filepath.Join(dir, name))
		}
	}
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}
