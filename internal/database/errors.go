package database

import (
	"errors"
	"fmt"
)

// ErrPoolExhausted means every connection stayed in use for the whole
// acquire timeout. The store is saturated, not down.
var ErrPoolExhausted = errors.New("connection pool exhausted")

// ErrSessionClosed is returned by a Session used after Commit or Rollback.
var ErrSessionClosed = errors.New("session closed")

// ConfigError is a missing or malformed connection descriptor.
// It is fatal: the process cannot start.
type ConfigError struct {
	Reason string
	Err    error
}

func (e *ConfigError) Error() string {
	switch {
	case e.Reason != "" && e.Err != nil:
		return fmt.Sprintf("invalid database configuration: %s: %v", e.Reason, e.Err)
	case e.Err != nil:
		return "invalid database configuration: " + e.Err.Error()
	default:
		return "invalid database configuration: " + e.Reason
	}
}

func (e *ConfigError) Unwrap() error { return e.Err }

// ConnectivityError is a network failure or an unavailable server.
// It is transient; retry policy belongs to the caller.
type ConnectivityError struct {
	Op  string
	Err error
}

func (e *ConnectivityError) Error() string {
	return fmt.Sprintf("database %s: %v", e.Op, e.Err)
}

func (e *ConnectivityError) Unwrap() error { return e.Err }

// IsConnectivity reports whether err is a ConnectivityError.
func IsConnectivity(err error) bool {
	var ce *ConnectivityError
	return errors.As(err, &ce)
}
