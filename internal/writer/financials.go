package writer

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/rickgao/abri-data/internal/model"
)

const (
	maxFiscalPeriodLen = 20
	maxCompanyLen      = 100
)

// UpsertHyperscalerMetrics writes quarterly financials keyed by
// (fiscal_period, ticker). CapexOCFRatio and AdjDebtEquity are recomputed
// from their inputs.
func UpsertHyperscalerMetrics(ctx context.Context, db DB, metrics []model.HyperscalerMetric) (int64, error) {
	batch := &pgx.Batch{}
	for i, m := range metrics {
		if err := checkKeyString("hyperscaler metric", i, "fiscal_period", m.FiscalPeriod, maxFiscalPeriodLen); err != nil {
			return 0, err
		}
		if err := checkKeyString("hyperscaler metric", i, "ticker", m.Ticker, maxTickerLen); err != nil {
			return 0, err
		}
		m.Derive()
		batch.Queue(`
			INSERT INTO hyperscaler_metrics (
				fiscal_period, ticker, capex, operating_cf, capex_ocf_ratio,
				ai_revenue, ai_revenue_growth, total_debt, total_equity, adj_debt_equity,
				days_sales_outstanding, depreciation_expense, source_url, ai_revenue_methodology
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
			ON CONFLICT (fiscal_period, ticker) DO UPDATE SET
				capex = EXCLUDED.capex,
				operating_cf = EXCLUDED.operating_cf,
				capex_ocf_ratio = EXCLUDED.capex_ocf_ratio,
				ai_revenue = EXCLUDED.ai_revenue,
				ai_revenue_growth = EXCLUDED.ai_revenue_growth,
				total_debt = EXCLUDED.total_debt,
				total_equity = EXCLUDED.total_equity,
				adj_debt_equity = EXCLUDED.adj_debt_equity,
				days_sales_outstanding = EXCLUDED.days_sales_outstanding,
				depreciation_expense = EXCLUDED.depreciation_expense,
				source_url = EXCLUDED.source_url,
				ai_revenue_methodology = EXCLUDED.ai_revenue_methodology,
				entered_at = now()
		`,
			m.FiscalPeriod, m.Ticker, m.Capex, m.OperatingCF, m.CapexOCFRatio,
			m.AIRevenue, m.AIRevenueGrowth, m.TotalDebt, m.TotalEquity, m.AdjDebtEquity,
			m.DaysSalesOutstanding, m.DepreciationExpense, m.SourceURL, m.AIRevenueMethodology,
		)
	}

	n, err := sendBatch(ctx, db, batch)
	if err != nil {
		return 0, fmt.Errorf("upsert hyperscaler metrics: %w", err)
	}
	return n, nil
}

// InsertDeal appends a financing deal and returns it with its generated
// id and entry timestamp.
func InsertDeal(ctx context.Context, db DB, d model.Deal) (model.Deal, error) {
	if d.AnnouncedDate.IsZero() {
		return model.Deal{}, invalid("deal", 0, "announced_date is required")
	}
	if err := checkKeyString("deal", 0, "company", d.Company, maxCompanyLen); err != nil {
		return model.Deal{}, err
	}

	d.AnnouncedDate = dateArg(d.AnnouncedDate)
	err := db.QueryRow(ctx, `
		INSERT INTO deal_tracker (announced_date, company, amount_usd, structure_type, counterparty, is_circular, source_url, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING deal_id, entered_at
	`, d.AnnouncedDate, d.Company, d.AmountUSD, d.StructureType, d.Counterparty, d.IsCircular, d.SourceURL, d.Notes,
	).Scan(&d.DealID, &d.EnteredAt)
	if err != nil {
		return model.Deal{}, fmt.Errorf("insert deal: %w", err)
	}
	return d, nil
}
