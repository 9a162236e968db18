package query

import (
	"context"
	"fmt"
	"reflect"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type call struct {
	sql  string
	args []any
}

// fakeDB answers Query with rows and QueryRow with the first of rows,
// or rowErr when set.
type fakeDB struct {
	rows     [][]any
	queryErr error
	rowErr   error
	calls    []call
}

func (f *fakeDB) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	f.calls = append(f.calls, call{sql: sql, args: args})
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return &fakeRows{data: f.rows}, nil
}

func (f *fakeDB) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	f.calls = append(f.calls, call{sql: sql, args: args})
	if f.rowErr != nil {
		return errRow{err: f.rowErr}
	}
	if len(f.rows) == 0 {
		return errRow{err: pgx.ErrNoRows}
	}
	return &fakeRows{data: f.rows[:1], pos: 1}
}

func (f *fakeDB) last() call {
	return f.calls[len(f.calls)-1]
}

type errRow struct{ err error }

func (r errRow) Scan(...any) error { return r.err }

// fakeRows assigns each value to its destination by reflection; a nil
// value zeroes the destination.
type fakeRows struct {
	data   [][]any
	pos    int
	closed bool
}

func (r *fakeRows) Close()                                       { r.closed = true }
func (r *fakeRows) Err() error                                   { return nil }
func (r *fakeRows) CommandTag() pgconn.CommandTag                { return pgconn.NewCommandTag("SELECT") }
func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *fakeRows) RawValues() [][]byte                          { return nil }
func (r *fakeRows) Conn() *pgx.Conn                              { return nil }

func (r *fakeRows) Next() bool {
	if r.pos >= len(r.data) {
		return false
	}
	r.pos++
	return true
}

func (r *fakeRows) Values() ([]any, error) {
	return r.data[r.pos-1], nil
}

func (r *fakeRows) Scan(dest ...any) error {
	row := r.data[r.pos-1]
	if len(dest) != len(row) {
		return fmt.Errorf("fake rows: %d destinations for %d values", len(dest), len(row))
	}
	for i, d := range dest {
		dv := reflect.ValueOf(d).Elem()
		if row[i] == nil {
			dv.Set(reflect.Zero(dv.Type()))
			continue
		}
		v := reflect.ValueOf(row[i])
		if !v.Type().AssignableTo(dv.Type()) {
			return fmt.Errorf("fake rows: column %d: %T not assignable to %s", i, row[i], dv.Type())
		}
		dv.Set(v)
	}
	return nil
}

func f64(v float64) *float64 { return &v }
func str(v string) *string   { return &v }
