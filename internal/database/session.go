package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// rollbackTimeout bounds a rollback that runs after the caller's context
// has been canceled.
const rollbackTimeout = 5 * time.Second

// Session is one unit of work: a transaction on a connection it owns
// exclusively until Commit or Rollback. A Session is not safe for
// concurrent use.
type Session struct {
	id    uuid.UUID
	store *Store
	conn  conn
	tx    pgx.Tx
	start time.Time
	done  bool
}

// Begin acquires a connection and opens a transaction on it.
func (s *Store) Begin(ctx context.Context) (*Session, error) {
	c, err := s.acquire(ctx)
	if err != nil {
		return nil, err
	}

	tx, err := c.Begin(ctx)
	if err != nil {
		c.Release()
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &ConnectivityError{Op: "begin", Err: err}
	}

	sess := &Session{
		id:    uuid.New(),
		store: s,
		conn:  c,
		tx:    tx,
		start: time.Now(),
	}
	s.logger.Debug("session started", "session", sess.id)
	return sess, nil
}

// WithSession runs fn in a new session. It commits when fn returns nil and
// rolls back otherwise, returning fn's error unchanged. A panic in fn rolls
// back and is re-raised. The connection is released on every path.
func (s *Store) WithSession(ctx context.Context, fn func(ctx context.Context, sess *Session) error) error {
	sess, err := s.Begin(ctx)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			if rbErr := sess.Rollback(ctx); rbErr != nil {
				s.logger.Error("rollback after panic failed", "session", sess.id, "error", rbErr)
			}
			panic(p)
		}
	}()

	if err := fn(ctx, sess); err != nil {
		if rbErr := sess.Rollback(ctx); rbErr != nil {
			s.logger.Error("rollback failed",
				"session", sess.id,
				"error", rbErr,
				"cause", err,
			)
		}
		return err
	}

	// fn ended the session itself.
	if sess.done {
		return nil
	}
	return sess.Commit(ctx)
}

// ID identifies the session in logs.
func (s *Session) ID() uuid.UUID {
	return s.id
}

// Done reports whether the session has been committed or rolled back.
func (s *Session) Done() bool {
	return s.done
}

// Exec runs a statement in the session transaction.
func (s *Session) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if s.done {
		return pgconn.CommandTag{}, ErrSessionClosed
	}
	return s.tx.Exec(ctx, sql, args...)
}

// Query runs a query in the session transaction.
func (s *Session) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if s.done {
		return nil, ErrSessionClosed
	}
	return s.tx.Query(ctx, sql, args...)
}

// QueryRow runs a single-row query in the session transaction.
func (s *Session) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if s.done {
		return errRow{err: ErrSessionClosed}
	}
	return s.tx.QueryRow(ctx, sql, args...)
}

// SendBatch sends a batch in the session transaction.
func (s *Session) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults {
	if s.done {
		return errBatchResults{err: ErrSessionClosed}
	}
	return s.tx.SendBatch(ctx, b)
}

// Commit commits every write of the session and releases the connection.
// The connection is released even when the commit fails.
func (s *Session) Commit(ctx context.Context) error {
	if s.done {
		return ErrSessionClosed
	}
	s.done = true

	if err := s.tx.Commit(ctx); err != nil {
		s.release(OutcomeCommitError)
		return fmt.Errorf("commit session %s: %w", s.id, err)
	}
	s.release(OutcomeCommit)
	return nil
}

// Rollback discards every write of the session and releases the
// connection. It runs even if ctx is already canceled. Calling Rollback on
// a finished session is a no-op.
func (s *Session) Rollback(ctx context.Context) error {
	if s.done {
		return nil
	}
	s.done = true
	defer s.release(OutcomeRollback)

	rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), rollbackTimeout)
	defer cancel()

	if err := s.tx.Rollback(rctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return fmt.Errorf("rollback session %s: %w", s.id, err)
	}
	return nil
}

// release hands the connection back. pgxpool destroys a connection that
// is still inside a failed transaction instead of reusing it.
func (s *Session) release(outcome string) {
	s.conn.Release()
	d := time.Since(s.start)
	s.store.observe(outcome, d)
	s.store.logger.Debug("session finished",
		"session", s.id,
		"outcome", outcome,
		"duration", d,
	)
}

type errRow struct {
	err error
}

func (r errRow) Scan(...any) error { return r.err }

type errBatchResults struct {
	err error
}

func (b errBatchResults) Exec() (pgconn.CommandTag, error) { return pgconn.CommandTag{}, b.err }
func (b errBatchResults) Query() (pgx.Rows, error)         { return nil, b.err }
func (b errBatchResults) QueryRow() pgx.Row                { return errRow{err: b.err} }
func (b errBatchResults) Close() error                     { return b.err }
