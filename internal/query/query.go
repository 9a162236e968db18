// Package query implements the reads of every ABRI entity.
//
// Functions take a DB, normally a *database.Session, and return model
// types. Range reads are ordered by date ascending; "Latest" lookups
// return ErrNotFound when the table has no matching row.
package query

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/rickgao/abri-data/internal/model"
)

// DB is the subset of a session the reads need.
// *database.Session satisfies it.
type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// ErrNotFound means no row matched.
var ErrNotFound = model.ErrNotFound

// DefaultLimit caps list reads called with limit <= 0.
const DefaultLimit = 100

// Range is an inclusive calendar date range. A zero bound is open.
type Range struct {
	From time.Time
	To   time.Time
}

// Since returns the range from the given date onwards.
func Since(from time.Time) Range {
	return Range{From: from}
}

// Between returns the inclusive range [from, to].
func Between(from, to time.Time) Range {
	return Range{From: from, To: to}
}

// bounds returns the range as nullable date arguments.
func (r Range) bounds() (from, to *time.Time) {
	if !r.From.IsZero() {
		d := model.Date(r.From)
		from = &d
	}
	if !r.To.IsZero() {
		d := model.Date(r.To)
		to = &d
	}
	return from, to
}

// rangeClause filters col by positional parameters $n and $n+1.
func rangeClause(col string, n int) string {
	return fmt.Sprintf("($%d::date IS NULL OR %s >= $%d) AND ($%d::date IS NULL OR %s <= $%d)",
		n, col, n, n+1, col, n+1)
}

func limitOrDefault(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	return limit
}

// scanner is satisfied by pgx.Row and pgx.CollectableRow.
type scanner interface {
	Scan(dest ...any) error
}

// collect runs a multi-row query and scans each row with scan.
func collect[T any](ctx context.Context, db DB, what string, scan func(scanner) (T, error), sql string, args ...any) ([]T, error) {
	rows, err := db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", what, err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (T, error) {
		return scan(row)
	})
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", what, err)
	}
	return out, nil
}

// one runs a single-row query. No row maps to ErrNotFound.
func one[T any](ctx context.Context, db DB, what string, scan func(scanner) (T, error), sql string, args ...any) (T, error) {
	v, err := scan(db.QueryRow(ctx, sql, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		var zero T
		return zero, fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	if err != nil {
		var zero T
		return zero, fmt.Errorf("query %s: %w", what, err)
	}
	return v, nil
}
