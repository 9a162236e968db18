package query

import (
	"context"

	"github.com/rickgao/abri-data/internal/model"
)

func scanHyperscalerMetric(row scanner) (model.HyperscalerMetric, error) {
	var h model.HyperscalerMetric
	err := row.Scan(
		&h.FiscalPeriod, &h.Ticker, &h.Capex, &h.OperatingCF, &h.CapexOCFRatio,
		&h.AIRevenue, &h.AIRevenueGrowth, &h.TotalDebt, &h.TotalEquity, &h.AdjDebtEquity,
		&h.DaysSalesOutstanding, &h.DepreciationExpense, &h.SourceURL, &h.AIRevenueMethodology,
		&h.EnteredAt,
	)
	return h, err
}

// HyperscalerMetrics returns quarterly financials ordered by ticker and
// entry time. An empty ticker returns every company. Fiscal periods are
// free text and are not sorted.
func HyperscalerMetrics(ctx context.Context, db DB, ticker string) ([]model.HyperscalerMetric, error) {
	return collect(ctx, db, "hyperscaler metrics", scanHyperscalerMetric, `
		SELECT fiscal_period, ticker, capex, operating_cf, capex_ocf_ratio,
			ai_revenue, ai_revenue_growth, total_debt, total_equity, adj_debt_equity,
			days_sales_outstanding, depreciation_expense, source_url, ai_revenue_methodology,
			entered_at
		FROM hyperscaler_metrics
		WHERE $1::text = '' OR ticker = $1
		ORDER BY ticker, entered_at
	`, ticker)
}

func scanDeal(row scanner) (model.Deal, error) {
	var d model.Deal
	err := row.Scan(
		&d.DealID, &d.AnnouncedDate, &d.Company, &d.AmountUSD, &d.StructureType,
		&d.Counterparty, &d.IsCircular, &d.SourceURL, &d.Notes, &d.EnteredAt,
	)
	return d, err
}

// Deals returns deals announced within r, oldest first.
func Deals(ctx context.Context, db DB, r Range) ([]model.Deal, error) {
	from, to := r.bounds()
	return collect(ctx, db, "deals", scanDeal, `
		SELECT deal_id, announced_date, company, amount_usd, structure_type,
			counterparty, is_circular, source_url, notes, entered_at
		FROM deal_tracker
		WHERE `+rangeClause("announced_date", 1)+`
		ORDER BY announced_date, deal_id
	`, from, to)
}

func scanNewsItem(row scanner) (model.NewsItem, error) {
	var n model.NewsItem
	err := row.Scan(&n.ItemID, &n.PublishedDate, &n.Title, &n.Source, &n.URL, &n.Summary, &n.RelevanceScore, &n.CollectedAt)
	return n, err
}

// RecentNews returns the newest items by published date, undated items
// last. limit <= 0 means DefaultLimit.
func RecentNews(ctx context.Context, db DB, limit int) ([]model.NewsItem, error) {
	return collect(ctx, db, "news items", scanNewsItem, `
		SELECT item_id, published_date, title, source, url, summary, relevance_score, collected_at
		FROM news_items
		ORDER BY published_date DESC NULLS LAST, item_id DESC
		LIMIT $1
	`, limitOrDefault(limit))
}
