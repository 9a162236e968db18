package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultPoolSize        = 5
	DefaultMaxOverflow     = 10
	DefaultMaxConnLifetime = 5 * time.Minute
	DefaultMaxConnIdleTime = 30 * time.Second
	DefaultAcquireTimeout  = 30 * time.Second
	DefaultConnectTimeout  = 10 * time.Second
	DefaultLogLevel        = "info"
	DefaultLogFormat       = "text"
	DefaultLogMaxSizeMB    = 50
	DefaultLogMaxBackups   = 5
	DefaultLogMaxAgeDays   = 30
	DefaultServerPort      = 8080
	DefaultStatsSchedule   = "@every 1m"
)

func (c *Config) applyDefaults() {
	applyDBDefaults(&c.Database)

	// Log defaults
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if c.Log.Format == "" {
		c.Log.Format = DefaultLogFormat
	}
	if c.Log.MaxSizeMB == 0 {
		c.Log.MaxSizeMB = DefaultLogMaxSizeMB
	}
	if c.Log.MaxBackups == 0 {
		c.Log.MaxBackups = DefaultLogMaxBackups
	}
	if c.Log.MaxAgeDays == 0 {
		c.Log.MaxAgeDays = DefaultLogMaxAgeDays
	}

	// Server defaults
	if c.Server.Port == 0 {
		c.Server.Port = DefaultServerPort
	}
	if c.Server.StatsSchedule == "" {
		c.Server.StatsSchedule = DefaultStatsSchedule
	}
}

func applyDBDefaults(db *DatabaseConfig) {
	if db.PoolSize == 0 {
		db.PoolSize = DefaultPoolSize
	}
	if db.MaxOverflow == 0 {
		db.MaxOverflow = DefaultMaxOverflow
	}
	if db.MaxConnLifetime == 0 {
		db.MaxConnLifetime = DefaultMaxConnLifetime
	}
	if db.MaxConnIdleTime == 0 {
		db.MaxConnIdleTime = DefaultMaxConnIdleTime
	}
	if db.AcquireTimeout == 0 {
		db.AcquireTimeout = DefaultAcquireTimeout
	}
	if db.ConnectTimeout == 0 {
		db.ConnectTimeout = DefaultConnectTimeout
	}
}

// ApplyDatabaseDefaults fills unset pool settings. Callers that build a
// DatabaseConfig by hand (tests, tools) use this instead of a full load.
func ApplyDatabaseDefaults(db *DatabaseConfig) {
	applyDBDefaults(db)
}
