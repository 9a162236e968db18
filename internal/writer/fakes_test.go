package writer

import (
	"context"
	"errors"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type call struct {
	sql  string
	args []any
}

// fakeDB records every statement. Batched statements report INSERT 0 1
// unless batchTag says otherwise.
type fakeDB struct {
	batches  []*pgx.Batch
	execs    []call
	queries  []call
	batchTag func(i int, q *pgx.QueuedQuery) (pgconn.CommandTag, error)
	execTag  string
	execErr  error
	scan     func(sql string, dest ...any) error
}

func (f *fakeDB) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.execs = append(f.execs, call{sql: sql, args: args})
	if f.execErr != nil {
		return pgconn.CommandTag{}, f.execErr
	}
	tag := f.execTag
	if tag == "" {
		tag = "UPDATE 1"
	}
	return pgconn.NewCommandTag(tag), nil
}

func (f *fakeDB) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	f.queries = append(f.queries, call{sql: sql, args: args})
	return fakeRow{sql: sql, scan: f.scan}
}

func (f *fakeDB) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults {
	f.batches = append(f.batches, b)
	return &fakeBatchResults{db: f, batch: b}
}

// queued returns the statements of the only batch sent.
func (f *fakeDB) queued() []*pgx.QueuedQuery {
	if len(f.batches) != 1 {
		return nil
	}
	return f.batches[0].QueuedQueries
}

type fakeRow struct {
	sql  string
	scan func(sql string, dest ...any) error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.scan == nil {
		return errors.New("no rows configured")
	}
	return r.scan(r.sql, dest...)
}

type fakeBatchResults struct {
	db     *fakeDB
	batch  *pgx.Batch
	next   int
	closed bool
}

func (r *fakeBatchResults) Exec() (pgconn.CommandTag, error) {
	i := r.next
	r.next++
	if r.db.batchTag != nil {
		return r.db.batchTag(i, r.batch.QueuedQueries[i])
	}
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func (r *fakeBatchResults) Query() (pgx.Rows, error) {
	return nil, errors.New("fake batch: Query not supported")
}

func (r *fakeBatchResults) QueryRow() pgx.Row {
	return fakeRow{}
}

func (r *fakeBatchResults) Close() error {
	r.closed = true
	return nil
}

// fakeRunner hands each unit of work a fresh fakeDB.
type fakeRunner struct {
	mu   sync.Mutex
	runs int
	rows int
	err  error
}

func (r *fakeRunner) Run(ctx context.Context, fn func(ctx context.Context, db DB) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs++
	if r.err != nil {
		return r.err
	}
	db := &fakeDB{}
	if err := fn(ctx, db); err != nil {
		return err
	}
	for _, b := range db.batches {
		r.rows += b.Len()
	}
	return nil
}

func (r *fakeRunner) counts() (runs, rows int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.runs, r.rows
}

func f64(v float64) *float64 { return &v }
