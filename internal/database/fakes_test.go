package database

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/rickgao/abri-data/internal/config"
)

// fakePool hands out at most max connections, blocking like pgxpool
// until the context is done.
type fakePool struct {
	mu             sync.Mutex
	slots          chan struct{}
	max            int32
	acquireErr     error
	beginErr       error
	pingErr        error
	scan           func(dest ...any) error
	txs            []*fakeTx
	txTemplate     fakeTx
	released       int
	doubleReleases int
	closed         bool
}

func newFakePool(max int32) *fakePool {
	return &fakePool{
		slots: make(chan struct{}, max),
		max:   max,
		scan: func(dest ...any) error {
			if p, ok := dest[0].(*int); ok {
				*p = 1
			}
			return nil
		},
	}
}

func (p *fakePool) Acquire(ctx context.Context) (conn, error) {
	if p.acquireErr != nil {
		return nil, p.acquireErr
	}
	select {
	case p.slots <- struct{}{}:
		return &fakeConn{pool: p}, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (p *fakePool) Stat() PoolStats {
	return PoolStats{
		AcquiredConns: int32(len(p.slots)),
		MaxConns:      p.max,
		TotalConns:    int32(len(p.slots)),
	}
}

func (p *fakePool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
}

func (p *fakePool) inUse() int {
	return len(p.slots)
}

func (p *fakePool) lastTx() *fakeTx {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.txs) == 0 {
		return nil
	}
	return p.txs[len(p.txs)-1]
}

type fakeConn struct {
	pool     *fakePool
	released bool
}

func (c *fakeConn) Begin(ctx context.Context) (pgx.Tx, error) {
	if c.pool.beginErr != nil {
		return nil, c.pool.beginErr
	}
	c.pool.mu.Lock()
	defer c.pool.mu.Unlock()
	tx := c.pool.txTemplate
	c.pool.txs = append(c.pool.txs, &tx)
	return &tx, nil
}

func (c *fakeConn) Ping(ctx context.Context) error {
	return c.pool.pingErr
}

func (c *fakeConn) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return fakeRow{scan: c.pool.scan}
}

func (c *fakeConn) Release() {
	c.pool.mu.Lock()
	defer c.pool.mu.Unlock()
	if c.released {
		c.pool.doubleReleases++
		return
	}
	c.released = true
	c.pool.released++
	<-c.pool.slots
}

type fakeRow struct {
	scan func(dest ...any) error
}

func (r fakeRow) Scan(dest ...any) error {
	return r.scan(dest...)
}

// fakeTx implements the pgx.Tx methods a Session uses; the embedded nil
// interface panics on anything else.
type fakeTx struct {
	pgx.Tx

	commitErr   error
	rollbackErr error
	execErr     error

	committed      bool
	rolledBack     bool
	rollbackCtxErr error
	execs          []string
}

func (t *fakeTx) Commit(ctx context.Context) error {
	t.committed = true
	return t.commitErr
}

func (t *fakeTx) Rollback(ctx context.Context) error {
	t.rolledBack = true
	t.rollbackCtxErr = ctx.Err()
	return t.rollbackErr
}

func (t *fakeTx) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	t.execs = append(t.execs, sql)
	return pgconn.NewCommandTag("INSERT 0 1"), t.execErr
}

type recordingObserver struct {
	mu       sync.Mutex
	outcomes []string
}

func (o *recordingObserver) ObserveSession(outcome string, d time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.outcomes = append(o.outcomes, outcome)
}

func (o *recordingObserver) last() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	if len(o.outcomes) == 0 {
		return ""
	}
	return o.outcomes[len(o.outcomes)-1]
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestStore(p *fakePool, opts ...Option) *Store {
	cfg := config.DatabaseConfig{
		URL:            "postgresql://u:p@localhost:5432/abri",
		PoolSize:       2,
		MaxOverflow:    int(p.max) - 2,
		AcquireTimeout: 50 * time.Millisecond,
	}
	opts = append([]Option{WithLogger(discardLogger())}, opts...)
	return newStore(cfg, ConnInfo{Host: "localhost", Port: 5432, Database: "abri"}, p, opts...)
}
