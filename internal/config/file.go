package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type fileConfig struct {
	DatabaseURL    string `yaml:"database_url"`
	RedisURL       string `yaml:"redis_url"`
	LogLevel       string `yaml:"log_level"`
	ConnectTimeout string `yaml:"connect_timeout"`
	CacheTTL       string `yaml:"cache_ttl"`
}

// LoadFromFile loads config from a YAML file. database_url is required.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f fileConfig
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	c := &Config{
		DatabaseURL:    f.DatabaseURL,
		RedisURL:       f.RedisURL,
		LogLevel:       f.LogLevel,
		ConnectTimeout: parseDuration(f.ConnectTimeout, defaultConnectTimeout),
		CacheTTL:       parseDuration(f.CacheTTL, defaultCacheTTL),
	}
	return c.finish()
}
