package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// EnvDatabaseURL is the environment variable holding the connection descriptor.
const EnvDatabaseURL = "DATABASE_URL"

// Load reads a YAML config file and expands environment variables.
// An empty database.url falls back to DATABASE_URL.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	// Expand ${VAR} environment variables
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parse config yaml: %w", err)
	}

	if cfg.Database.URL == "" {
		cfg.Database.URL = os.Getenv(EnvDatabaseURL)
	}

	return &cfg, nil
}

// FromEnv builds a config from the environment alone.
func FromEnv() *Config {
	return &Config{
		Database: DatabaseConfig{URL: os.Getenv(EnvDatabaseURL)},
	}
}

// LoadWithDefaults loads config and applies default values.
// An empty path reads the environment only.
func LoadWithDefaults(path string) (*Config, error) {
	var cfg *Config
	if path == "" {
		cfg = FromEnv()
	} else {
		var err error
		cfg, err = Load(path)
		if err != nil {
			return nil, err
		}
	}
	cfg.applyDefaults()
	return cfg, nil
}

// LoadAndValidate loads config, applies defaults, and validates.
func LoadAndValidate(path string) (*Config, error) {
	cfg, err := LoadWithDefaults(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}
