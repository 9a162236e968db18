package writer

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/rickgao/abri-data/internal/model"
)

const maxMetricNameLen = 50

// UpsertABRIHistory writes composite index rows keyed by date. Scores are
// stored as supplied by the scoring job.
func UpsertABRIHistory(ctx context.Context, db DB, rows []model.ABRIHistory) (int64, error) {
	batch := &pgx.Batch{}
	for i, h := range rows {
		if h.Date.IsZero() {
			return 0, invalid("abri history", i, "date is required")
		}
		batch.Queue(`
			INSERT INTO abri_history (
				date, concentration_score, correlation_score, credit_stress_score, gpu_deflation_score,
				capex_intensity_score, revenue_gap_score, deal_flow_score, composite_score
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			ON CONFLICT (date) DO UPDATE SET
				concentration_score = EXCLUDED.concentration_score,
				correlation_score = EXCLUDED.correlation_score,
				credit_stress_score = EXCLUDED.credit_stress_score,
				gpu_deflation_score = EXCLUDED.gpu_deflation_score,
				capex_intensity_score = EXCLUDED.capex_intensity_score,
				revenue_gap_score = EXCLUDED.revenue_gap_score,
				deal_flow_score = EXCLUDED.deal_flow_score,
				composite_score = EXCLUDED.composite_score,
				calculated_at = now()
		`,
			dateArg(h.Date), h.ConcentrationScore, h.CorrelationScore, h.CreditStressScore, h.GPUDeflationScore,
			h.CapexIntensityScore, h.RevenueGapScore, h.DealFlowScore, h.CompositeScore,
		)
	}

	n, err := sendBatch(ctx, db, batch)
	if err != nil {
		return 0, fmt.Errorf("upsert abri history: %w", err)
	}
	return n, nil
}

// RecordAlert appends a threshold breach. A zero TriggeredAt means now.
// The stored alert is returned with its generated id.
func RecordAlert(ctx context.Context, db DB, a model.AlertLog) (model.AlertLog, error) {
	if err := checkKeyString("alert", 0, "metric_name", a.MetricName, maxMetricNameLen); err != nil {
		return model.AlertLog{}, err
	}

	a.TriggeredAt = timestampArg(a.TriggeredAt)
	a.SentAt = optionalTimestamp(a.SentAt)
	err := db.QueryRow(ctx, `
		INSERT INTO alert_log (triggered_at, metric_name, threshold, actual_value, alert_type, sent_at, acknowledged)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING alert_id
	`, a.TriggeredAt, a.MetricName, a.Threshold, a.ActualValue, a.AlertType, a.SentAt, a.Acknowledged,
	).Scan(&a.AlertID)
	if err != nil {
		return model.AlertLog{}, fmt.Errorf("record alert: %w", err)
	}
	return a, nil
}

// MarkAlertSent records delivery of an alert. A zero sentAt means now.
func MarkAlertSent(ctx context.Context, db DB, alertID int64, sentAt time.Time) error {
	ct, err := db.Exec(ctx, `UPDATE alert_log SET sent_at = $2 WHERE alert_id = $1`, alertID, timestampArg(sentAt))
	if err != nil {
		return fmt.Errorf("mark alert %d sent: %w", alertID, err)
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("alert %d: %w", alertID, ErrNotFound)
	}
	return nil
}

// AcknowledgeAlert flags an alert as seen by an operator.
func AcknowledgeAlert(ctx context.Context, db DB, alertID int64) error {
	ct, err := db.Exec(ctx, `UPDATE alert_log SET acknowledged = true WHERE alert_id = $1`, alertID)
	if err != nil {
		return fmt.Errorf("acknowledge alert %d: %w", alertID, err)
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("alert %d: %w", alertID, ErrNotFound)
	}
	return nil
}
