package database

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// pool is the subset of pgxpool the Store depends on.
type pool interface {
	Acquire(ctx context.Context) (conn, error)
	Stat() PoolStats
	Close()
}

// conn is a pooled connection. *pgxpool.Conn satisfies it.
type conn interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Ping(ctx context.Context) error
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Release()
}

// PoolStats is a snapshot of pool counters.
type PoolStats struct {
	TotalConns           int32         `json:"total_conns"`
	IdleConns            int32         `json:"idle_conns"`
	AcquiredConns        int32         `json:"acquired_conns"`
	ConstructingConns    int32         `json:"constructing_conns"`
	MaxConns             int32         `json:"max_conns"`
	AcquireCount         int64         `json:"acquire_count"`
	EmptyAcquireCount    int64         `json:"empty_acquire_count"`
	CanceledAcquireCount int64         `json:"canceled_acquire_count"`
	AcquireDuration      time.Duration `json:"acquire_duration_ns"`
	NewConnsCount        int64         `json:"new_conns_count"`
	LifetimeDestroyCount int64         `json:"lifetime_destroy_count"`
	IdleDestroyCount     int64         `json:"idle_destroy_count"`
}

type pgxPool struct {
	p *pgxpool.Pool
}

func (p pgxPool) Acquire(ctx context.Context) (conn, error) {
	c, err := p.p.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (p pgxPool) Stat() PoolStats {
	s := p.p.Stat()
	return PoolStats{
		TotalConns:           s.TotalConns(),
		IdleConns:            s.IdleConns(),
		AcquiredConns:        s.AcquiredConns(),
		ConstructingConns:    s.ConstructingConns(),
		MaxConns:             s.MaxConns(),
		AcquireCount:         s.AcquireCount(),
		EmptyAcquireCount:    s.EmptyAcquireCount(),
		CanceledAcquireCount: s.CanceledAcquireCount(),
		AcquireDuration:      s.AcquireDuration(),
		NewConnsCount:        s.NewConnsCount(),
		LifetimeDestroyCount: s.MaxLifetimeDestroyCount(),
		IdleDestroyCount:     s.MaxIdleDestroyCount(),
	}
}

func (p pgxPool) Close() {
	p.p.Close()
}
