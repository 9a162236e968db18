package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rickgao/abri-data/internal/config"
)

// Session outcomes reported to a SessionObserver.
const (
	OutcomeCommit      = "commit"
	OutcomeRollback    = "rollback"
	OutcomeCommitError = "commit_error"
)

// SessionObserver is notified when a session releases its connection.
type SessionObserver interface {
	ObserveSession(outcome string, d time.Duration)
}

// Store is the process-wide handle to the database. It is safe for
// concurrent use; construct one at startup and pass it to collaborators.
type Store struct {
	cfg      config.DatabaseConfig
	info     ConnInfo
	pool     pool
	logger   *slog.Logger
	observer SessionObserver
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithObserver registers a session observer.
func WithObserver(o SessionObserver) Option {
	return func(s *Store) {
		s.observer = o
	}
}

// New creates a Store from cfg. A missing or malformed descriptor yields a
// *ConfigError. No round trip is made, so an unreachable server still
// gives a usable Store whose Health reports the failure.
func New(ctx context.Context, cfg config.DatabaseConfig, opts ...Option) (*Store, error) {
	connStr, info, err := ParseConnString(cfg.URL)
	if err != nil {
		return nil, err
	}
	config.ApplyDatabaseDefaults(&cfg)

	poolCfg, err := poolConfig(connStr, cfg)
	if err != nil {
		return nil, err
	}

	p, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, &ConnectivityError{Op: "create pool", Err: err}
	}

	s := newStore(cfg, info, pgxPool{p: p}, opts...)
	s.logger.Info("database pool created",
		"host", info.Host,
		"port", info.Port,
		"database", info.Database,
		"pool_size", cfg.PoolSize,
		"max_conns", cfg.MaxConns(),
	)
	return s, nil
}

// poolConfig maps the pool policy onto pgxpool settings. With pre-ping
// on, every acquired connection is pinged and a dead one is destroyed
// and replaced; with it off no connection is pinged.
func poolConfig(connStr string, cfg config.DatabaseConfig) (*pgxpool.Config, error) {
	poolCfg, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, &ConfigError{Reason: "parse connection string", Err: err}
	}

	poolCfg.MinConns = int32(cfg.PoolSize)
	poolCfg.MaxConns = int32(cfg.MaxConns())
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	poolCfg.MaxConnIdleTime = cfg.MaxConnIdleTime
	poolCfg.ConnConfig.ConnectTimeout = cfg.ConnectTimeout

	prePing := !cfg.DisablePrePing
	poolCfg.ShouldPing = func(context.Context, pgxpool.ShouldPingParams) bool {
		return prePing
	}
	return poolCfg, nil
}

func newStore(cfg config.DatabaseConfig, info ConnInfo, p pool, opts ...Option) *Store {
	config.ApplyDatabaseDefaults(&cfg)
	s := &Store{
		cfg:    cfg,
		info:   info,
		pool:   p,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Close closes every pooled connection. Sessions still open are broken.
func (s *Store) Close() {
	s.pool.Close()
	s.logger.Info("database pool closed")
}

// Stat returns a snapshot of pool counters.
func (s *Store) Stat() PoolStats {
	return s.pool.Stat()
}

// PoolSize returns the configured baseline size.
func (s *Store) PoolSize() int {
	return s.cfg.PoolSize
}

// ConnInfo returns the non-secret parts of the descriptor.
func (s *Store) ConnInfo() ConnInfo {
	return s.info
}

// Ping acquires a connection and checks the server answers.
func (s *Store) Ping(ctx context.Context) error {
	c, err := s.acquire(ctx)
	if err != nil {
		return err
	}
	defer c.Release()

	if err := c.Ping(ctx); err != nil {
		return &ConnectivityError{Op: "ping", Err: err}
	}
	return nil
}

// acquire takes a connection, waiting at most the acquire timeout.
func (s *Store) acquire(ctx context.Context) (conn, error) {
	actx, cancel := context.WithTimeout(ctx, s.cfg.AcquireTimeout)
	defer cancel()

	c, err := s.pool.Acquire(actx)
	if err == nil {
		return c, nil
	}

	// A deadline, ours or the caller's, on a saturated pool is exhaustion.
	if errors.Is(actx.Err(), context.DeadlineExceeded) {
		st := s.pool.Stat()
		if st.MaxConns > 0 && st.AcquiredConns >= st.MaxConns {
			return nil, fmt.Errorf("%w: %d of %d connections in use",
				ErrPoolExhausted, st.AcquiredConns, st.MaxConns)
		}
	}

	// The caller gave up; not a store condition.
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	return nil, &ConnectivityError{Op: "acquire", Err: err}
}

func (s *Store) observe(outcome string, d time.Duration) {
	if s.observer != nil {
		s.observer.ObserveSession(outcome, d)
	}
}
