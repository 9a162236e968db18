package query

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/rickgao/abri-data/internal/model"
)

// -----------------------------------------------------------------------------
// ABRI history and alerts
// -----------------------------------------------------------------------------

const abriColumns = `date, concentration_score, correlation_score, credit_stress_score, gpu_deflation_score,
	capex_intensity_score, revenue_gap_score, deal_flow_score, composite_score, calculated_at`

func scanABRIHistory(row scanner) (model.ABRIHistory, error) {
	var h model.ABRIHistory
	err := row.Scan(
		&h.Date, &h.ConcentrationScore, &h.CorrelationScore, &h.CreditStressScore, &h.GPUDeflationScore,
		&h.CapexIntensityScore, &h.RevenueGapScore, &h.DealFlowScore, &h.CompositeScore, &h.CalculatedAt,
	)
	return h, err
}

// ABRIHistory returns composite index rows within r, oldest first.
func ABRIHistory(ctx context.Context, db DB, r Range) ([]model.ABRIHistory, error) {
	from, to := r.bounds()
	return collect(ctx, db, "abri history", scanABRIHistory, `
		SELECT `+abriColumns+`
		FROM abri_history
		WHERE `+rangeClause("date", 1)+`
		ORDER BY date
	`, from, to)
}

// LatestABRI returns the most recent composite index row.
func LatestABRI(ctx context.Context, db DB) (model.ABRIHistory, error) {
	return one(ctx, db, "latest abri", scanABRIHistory, `
		SELECT `+abriColumns+`
		FROM abri_history
		ORDER BY date DESC
		LIMIT 1
	`)
}

func scanAlert(row scanner) (model.AlertLog, error) {
	var a model.AlertLog
	err := row.Scan(&a.AlertID, &a.TriggeredAt, &a.MetricName, &a.Threshold, &a.ActualValue, &a.AlertType, &a.SentAt, &a.Acknowledged)
	return a, err
}

// UnacknowledgedAlerts returns open alerts, newest first.
func UnacknowledgedAlerts(ctx context.Context, db DB) ([]model.AlertLog, error) {
	return collect(ctx, db, "alerts", scanAlert, `
		SELECT alert_id, triggered_at, metric_name, threshold, actual_value, alert_type, sent_at, acknowledged
		FROM alert_log
		WHERE NOT acknowledged
		ORDER BY triggered_at DESC, alert_id DESC
	`)
}

// -----------------------------------------------------------------------------
// Collection log
// -----------------------------------------------------------------------------

const collectionColumns = `log_id, collection_type, started_at, completed_at, status, records_added, error_message`

func scanCollection(row scanner) (model.CollectionLog, error) {
	var (
		c      model.CollectionLog
		status *string
	)
	err := row.Scan(&c.LogID, &c.CollectionType, &c.StartedAt, &c.CompletedAt, &status, &c.RecordsAdded, &c.ErrorMessage)
	if status != nil {
		s := model.CollectionStatus(*status)
		c.Status = &s
	}
	return c, err
}

// RecentCollections returns the latest job runs, newest first.
// limit <= 0 means DefaultLimit.
func RecentCollections(ctx context.Context, db DB, limit int) ([]model.CollectionLog, error) {
	return collect(ctx, db, "collections", scanCollection, `
		SELECT `+collectionColumns+`
		FROM collection_log
		ORDER BY started_at DESC, log_id DESC
		LIMIT $1
	`, limitOrDefault(limit))
}

// LastSuccessfulCollection returns the newest successful run of a job.
func LastSuccessfulCollection(ctx context.Context, db DB, collectionType string) (model.CollectionLog, error) {
	return one(ctx, db, "last successful "+collectionType+" collection", scanCollection, `
		SELECT `+collectionColumns+`
		FROM collection_log
		WHERE collection_type = $1 AND status = $2
		ORDER BY started_at DESC, log_id DESC
		LIMIT 1
	`, collectionType, string(model.CollectionSuccess))
}

// -----------------------------------------------------------------------------
// Manual entry tasks
// -----------------------------------------------------------------------------

func scanTask(row scanner) (model.PendingManualTask, error) {
	var (
		t       model.PendingManualTask
		status  string
		payload []byte
	)
	err := row.Scan(&t.TaskID, &t.TaskType, &t.CreatedAt, &t.DueDate, &t.Priority, &status, &payload, &t.CompletedAt, &t.CompletedBy)
	if err != nil {
		return t, err
	}
	t.Status = model.TaskStatus(status)
	if payload != nil {
		// Numbers stay json.Number so large integers survive the round trip.
		dec := json.NewDecoder(bytes.NewReader(payload))
		dec.UseNumber()
		if err := dec.Decode(&t.DataPayload); err != nil {
			return t, fmt.Errorf("decode payload of task %d: %w", t.TaskID, err)
		}
	}
	return t, nil
}

// PendingTasks returns open tasks (pending or in progress) in work order:
// priority, then due date with undated tasks last, then age.
// limit <= 0 means DefaultLimit.
func PendingTasks(ctx context.Context, db DB, limit int) ([]model.PendingManualTask, error) {
	return collect(ctx, db, "pending tasks", scanTask, `
		SELECT task_id, task_type, created_at, due_date, priority, status, data_payload, completed_at, completed_by
		FROM pending_manual_tasks
		WHERE status IN ($1, $2)
		ORDER BY priority, due_date NULLS LAST, created_at, task_id
		LIMIT $3
	`, string(model.TaskPending), string(model.TaskInProgress), limitOrDefault(limit))
}

// Task returns one task by id.
func Task(ctx context.Context, db DB, taskID int64) (model.PendingManualTask, error) {
	return one(ctx, db, fmt.Sprintf("task %d", taskID), scanTask, `
		SELECT task_id, task_type, created_at, due_date, priority, status, data_payload, completed_at, completed_by
		FROM pending_manual_tasks
		WHERE task_id = $1
	`, taskID)
}
