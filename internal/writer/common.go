package writer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/rickgao/abri-data/internal/model"
)

// DB is the subset of a session the writers need.
// *database.Session satisfies it.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

var (
	// ErrInvalidRecord means a required field is missing or malformed.
	ErrInvalidRecord = errors.New("invalid record")

	// ErrInvalidStatus means a status is outside its vocabulary.
	ErrInvalidStatus = errors.New("invalid status")

	// ErrInvalidTransition means a task cannot move to the requested status.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrInvalidPriority means a task priority is outside 1..10.
	ErrInvalidPriority = errors.New("priority out of range")

	// ErrNotFound means the row to update does not exist.
	ErrNotFound = model.ErrNotFound
)

// invalid builds an ErrInvalidRecord for item i of a write.
func invalid(entity string, i int, format string, args ...any) error {
	return fmt.Errorf("%w: %s %d: %s", ErrInvalidRecord, entity, i+1, fmt.Sprintf(format, args...))
}

// sendBatch runs every queued statement and returns the rows affected.
func sendBatch(ctx context.Context, db DB, b *pgx.Batch) (int64, error) {
	if b.Len() == 0 {
		return 0, nil
	}

	results := db.SendBatch(ctx, b)
	defer results.Close()

	var affected int64
	for i := 0; i < b.Len(); i++ {
		ct, err := results.Exec()
		if err != nil {
			return affected, fmt.Errorf("batch statement %d: %w", i+1, err)
		}
		affected += ct.RowsAffected()
	}
	return affected, nil
}

// payloadToJSONB encodes a payload for a JSONB column. A nil payload is
// stored as SQL NULL.
func payloadToJSONB(p model.Payload) (any, error) {
	if p == nil {
		return nil, nil
	}
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}
	return string(data), nil
}

// dateArg normalizes a calendar date to UTC midnight.
func dateArg(t time.Time) time.Time {
	return model.Date(t)
}

// optionalDate normalizes an optional calendar date.
func optionalDate(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	d := model.Date(*t)
	return &d
}

// timestampArg stores wall-clock UTC in TIMESTAMP WITHOUT TIME ZONE
// columns. A zero time means now.
func timestampArg(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now().UTC()
	}
	return t.UTC()
}

func timeOrZero(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}

func optionalTimestamp(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
