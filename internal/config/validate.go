package config

import (
	"errors"
	"fmt"
)

// ErrMissingDatabaseURL means no connection descriptor was supplied.
// The process cannot start without one.
var ErrMissingDatabaseURL = errors.New("database.url is required (set " + EnvDatabaseURL + ")")

// Validate checks that all required fields are set and values are valid.
func (c *Config) Validate() error {
	if err := c.Database.validate("database"); err != nil {
		return err
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be one of debug, info, warn, error, got %q", c.Log.Level)
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}

	return nil
}

func (db *DatabaseConfig) validate(prefix string) error {
	if db.URL == "" {
		return ErrMissingDatabaseURL
	}
	if db.PoolSize < 1 {
		return fmt.Errorf("%s.pool_size must be >= 1", prefix)
	}
	if db.MaxOverflow < 0 {
		return fmt.Errorf("%s.max_overflow must be >= 0", prefix)
	}
	if db.AcquireTimeout <= 0 {
		return fmt.Errorf("%s.acquire_timeout must be > 0", prefix)
	}
	if db.MaxConnLifetime < 0 {
		return fmt.Errorf("%s.max_conn_lifetime must be >= 0", prefix)
	}
	return nil
}
