package writer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/rickgao/abri-data/internal/model"
)

const (
	maxCollectionTypeLen = 50
	maxTaskTypeLen       = 50
)

// -----------------------------------------------------------------------------
// Collection log
// -----------------------------------------------------------------------------

// StartCollection opens a collection log entry for a job run starting now.
func StartCollection(ctx context.Context, db DB, collectionType string) (model.CollectionLog, error) {
	if err := checkKeyString("collection", 0, "collection_type", collectionType, maxCollectionTypeLen); err != nil {
		return model.CollectionLog{}, err
	}

	entry := model.CollectionLog{
		CollectionType: collectionType,
		StartedAt:      time.Now().UTC(),
	}
	err := db.QueryRow(ctx, `
		INSERT INTO collection_log (collection_type, started_at, records_added)
		VALUES ($1, $2, 0)
		RETURNING log_id
	`, entry.CollectionType, entry.StartedAt).Scan(&entry.LogID)
	if err != nil {
		return model.CollectionLog{}, fmt.Errorf("start collection %s: %w", collectionType, err)
	}
	return entry, nil
}

// CollectionResult is the outcome of a job run.
type CollectionResult struct {
	Status       model.CollectionStatus
	RecordsAdded int
	ErrorMessage *string
}

// FinishCollection closes a collection log entry with its outcome.
func FinishCollection(ctx context.Context, db DB, logID int64, res CollectionResult) error {
	if !res.Status.Valid() {
		return fmt.Errorf("%w: collection status %q", ErrInvalidStatus, res.Status)
	}
	if res.RecordsAdded < 0 {
		return invalid("collection", 0, "records_added %d is negative", res.RecordsAdded)
	}

	ct, err := db.Exec(ctx, `
		UPDATE collection_log
		SET completed_at = $2, status = $3, records_added = $4, error_message = $5
		WHERE log_id = $1
	`, logID, time.Now().UTC(), string(res.Status), res.RecordsAdded, res.ErrorMessage)
	if err != nil {
		return fmt.Errorf("finish collection %d: %w", logID, err)
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("collection %d: %w", logID, ErrNotFound)
	}
	return nil
}

// -----------------------------------------------------------------------------
// Manual entry tasks
// -----------------------------------------------------------------------------

// EnqueueTask adds a manual entry task. Priority 0 means the default and
// an empty status means pending. A task enqueued as completed or skipped
// gets completed_at (now unless given); an open task gets neither
// completion field. The stored task is returned with its
// generated id and creation time.
func EnqueueTask(ctx context.Context, db DB, t model.PendingManualTask) (model.PendingManualTask, error) {
	if err := checkKeyString("task", 0, "task_type", t.TaskType, maxTaskTypeLen); err != nil {
		return model.PendingManualTask{}, err
	}
	if t.Priority == 0 {
		t.Priority = model.PriorityDefault
	}
	if t.Priority < model.PriorityHighest || t.Priority > model.PriorityLowest {
		return model.PendingManualTask{}, fmt.Errorf("%w: %d", ErrInvalidPriority, t.Priority)
	}
	if t.Status == "" {
		t.Status = model.TaskPending
	}
	if !t.Status.Valid() {
		return model.PendingManualTask{}, fmt.Errorf("%w: task status %q", ErrInvalidStatus, t.Status)
	}

	payload, err := payloadToJSONB(t.DataPayload)
	if err != nil {
		return model.PendingManualTask{}, err
	}

	t.DueDate = optionalDate(t.DueDate)
	if t.Status.Terminal() {
		// A finished task always has a completion time.
		stamp := timestampArg(timeOrZero(t.CompletedAt))
		t.CompletedAt = &stamp
	} else {
		t.CompletedAt = nil
		t.CompletedBy = nil
	}
	err = db.QueryRow(ctx, `
		INSERT INTO pending_manual_tasks (task_type, due_date, priority, status, data_payload, completed_at, completed_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING task_id, created_at
	`, t.TaskType, t.DueDate, t.Priority, string(t.Status), payload, t.CompletedAt, t.CompletedBy,
	).Scan(&t.TaskID, &t.CreatedAt)
	if err != nil {
		return model.PendingManualTask{}, fmt.Errorf("enqueue task: %w", err)
	}
	return t, nil
}

// UpdateTaskStatus moves a task to next. The row is locked for the rest
// of the session so concurrent updates are serialized. Moving to a
// terminal status stamps completed_at and completed_by; moving back to an
// open status clears them.
func UpdateTaskStatus(ctx context.Context, db DB, taskID int64, next model.TaskStatus, completedBy *string) error {
	if !next.Valid() {
		return fmt.Errorf("%w: task status %q", ErrInvalidStatus, next)
	}

	var current string
	err := db.QueryRow(ctx, `SELECT status FROM pending_manual_tasks WHERE task_id = $1 FOR UPDATE`, taskID).Scan(&current)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("task %d: %w", taskID, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("lock task %d: %w", taskID, err)
	}

	from := model.TaskStatus(current)
	if !from.CanTransition(next) {
		return fmt.Errorf("%w: task %d %s -> %s", ErrInvalidTransition, taskID, from, next)
	}

	var completedAt *time.Time
	if next.Terminal() {
		now := time.Now().UTC()
		completedAt = &now
	} else {
		completedBy = nil
	}

	_, err = db.Exec(ctx, `
		UPDATE pending_manual_tasks
		SET status = $2, completed_at = $3, completed_by = $4
		WHERE task_id = $1
	`, taskID, string(next), completedAt, completedBy)
	if err != nil {
		return fmt.Errorf("update task %d: %w", taskID, err)
	}
	return nil
}
