package database

import (
	"context"
	"fmt"
	"time"
)

// HealthStatus is the result of a liveness round trip.
type HealthStatus struct {
	OK      bool          `json:"ok"`
	Error   string        `json:"error,omitempty"`
	Latency time.Duration `json:"latency_ns"`
}

// Health runs SELECT 1 on a pooled connection. It never returns an error
// and never panics; failures are reported in the status.
func (s *Store) Health(ctx context.Context) (status HealthStatus) {
	start := time.Now()
	defer func() {
		if p := recover(); p != nil {
			status = HealthStatus{Error: fmt.Sprintf("panic: %v", p), Latency: time.Since(start)}
		}
	}()

	err := s.selectOne(ctx)
	status.Latency = time.Since(start)
	if err != nil {
		status.Error = err.Error()
		return status
	}
	status.OK = true
	return status
}

// CheckConnection reports whether the database answers. Failures are
// logged, never returned.
func (s *Store) CheckConnection(ctx context.Context) bool {
	status := s.Health(ctx)
	if !status.OK {
		s.logger.Warn("database connection check failed", "error", status.Error)
	}
	return status.OK
}

func (s *Store) selectOne(ctx context.Context) error {
	c, err := s.acquire(ctx)
	if err != nil {
		return err
	}
	defer c.Release()

	var one int
	if err := c.QueryRow(ctx, "SELECT 1").Scan(&one); err != nil {
		return &ConnectivityError{Op: "health query", Err: err}
	}
	return nil
}

// Diagnostics describes the store for operators.
type Diagnostics struct {
	Connected bool      `json:"connected"`
	Database  *string   `json:"database"`
	Host      *string   `json:"host"`
	PoolSize  int       `json:"pool_size"`
	Pool      PoolStats `json:"pool"`
	Error     string    `json:"error,omitempty"`
}

// Info returns pool details and server metadata. A failed introspection
// query is reported in Error; Info itself never fails.
func (s *Store) Info(ctx context.Context) (d Diagnostics) {
	d.PoolSize = s.cfg.PoolSize
	defer func() {
		if p := recover(); p != nil {
			d.Connected = false
			d.Error = fmt.Sprintf("panic: %v", p)
		}
	}()
	d.Pool = s.pool.Stat()

	c, err := s.acquire(ctx)
	if err != nil {
		d.Error = err.Error()
		return d
	}
	defer c.Release()

	var (
		database string
		host     *string
	)
	err = c.QueryRow(ctx, "SELECT current_database(), host(inet_server_addr())").Scan(&database, &host)
	if err != nil {
		d.Error = (&ConnectivityError{Op: "introspection query", Err: err}).Error()
		return d
	}

	// inet_server_addr is NULL over a Unix socket.
	if host == nil {
		local := "localhost"
		host = &local
	}

	d.Connected = true
	d.Database = &database
	d.Host = host
	return d
}
