package query

import (
	"context"

	"github.com/rickgao/abri-data/internal/model"
)

// -----------------------------------------------------------------------------
// Equity prices
// -----------------------------------------------------------------------------

const equityColumns = `date, ticker, close, volume, market_cap, collected_at`

func scanEquityPrice(row scanner) (model.EquityPrice, error) {
	var p model.EquityPrice
	err := row.Scan(&p.Date, &p.Ticker, &p.Close, &p.Volume, &p.MarketCap, &p.CollectedAt)
	return p, err
}

// EquityPrices returns daily closes for ticker within r, oldest first.
func EquityPrices(ctx context.Context, db DB, ticker string, r Range) ([]model.EquityPrice, error) {
	from, to := r.bounds()
	return collect(ctx, db, "equity prices", scanEquityPrice, `
		SELECT `+equityColumns+`
		FROM equity_prices
		WHERE ticker = $1 AND `+rangeClause("date", 2)+`
		ORDER BY date
	`, ticker, from, to)
}

// LatestEquityPrice returns the most recent close for ticker.
func LatestEquityPrice(ctx context.Context, db DB, ticker string) (model.EquityPrice, error) {
	return one(ctx, db, "latest equity price "+ticker, scanEquityPrice, `
		SELECT `+equityColumns+`
		FROM equity_prices
		WHERE ticker = $1
		ORDER BY date DESC
		LIMIT 1
	`, ticker)
}

// -----------------------------------------------------------------------------
// Market metrics
// -----------------------------------------------------------------------------

const marketMetricColumns = `date, mag7_weight, tech_weight, nvda_spy_corr, mag7_spy_corr, leveraged_etf_aum, collected_at`

func scanMarketMetric(row scanner) (model.MarketMetric, error) {
	var m model.MarketMetric
	err := row.Scan(&m.Date, &m.Mag7Weight, &m.TechWeight, &m.NVDASPYCorr, &m.Mag7SPYCorr, &m.LeveragedETFAUM, &m.CollectedAt)
	return m, err
}

// MarketMetrics returns market structure rows within r, oldest first.
func MarketMetrics(ctx context.Context, db DB, r Range) ([]model.MarketMetric, error) {
	from, to := r.bounds()
	return collect(ctx, db, "market metrics", scanMarketMetric, `
		SELECT `+marketMetricColumns+`
		FROM market_metrics
		WHERE `+rangeClause("date", 1)+`
		ORDER BY date
	`, from, to)
}

// LatestMarketMetric returns the most recent market structure row.
func LatestMarketMetric(ctx context.Context, db DB) (model.MarketMetric, error) {
	return one(ctx, db, "latest market metric", scanMarketMetric, `
		SELECT `+marketMetricColumns+`
		FROM market_metrics
		ORDER BY date DESC
		LIMIT 1
	`)
}

// -----------------------------------------------------------------------------
// Credit spreads
// -----------------------------------------------------------------------------

const creditSpreadColumns = `date, hy_oas, ig_bbb_oas, hy_ig_diff, treasury_10y, collected_at`

func scanCreditSpread(row scanner) (model.CreditSpread, error) {
	var c model.CreditSpread
	err := row.Scan(&c.Date, &c.HYOAS, &c.IGBBBOAS, &c.HYIGDiff, &c.Treasury10Y, &c.CollectedAt)
	return c, err
}

// CreditSpreads returns spread rows within r, oldest first.
func CreditSpreads(ctx context.Context, db DB, r Range) ([]model.CreditSpread, error) {
	from, to := r.bounds()
	return collect(ctx, db, "credit spreads", scanCreditSpread, `
		SELECT `+creditSpreadColumns+`
		FROM credit_spreads
		WHERE `+rangeClause("date", 1)+`
		ORDER BY date
	`, from, to)
}

// LatestCreditSpread returns the most recent spread row.
func LatestCreditSpread(ctx context.Context, db DB) (model.CreditSpread, error) {
	return one(ctx, db, "latest credit spread", scanCreditSpread, `
		SELECT `+creditSpreadColumns+`
		FROM credit_spreads
		ORDER BY date DESC
		LIMIT 1
	`)
}

// -----------------------------------------------------------------------------
// GPU pricing
// -----------------------------------------------------------------------------

func scanGPUPricing(row scanner) (model.GPUPricing, error) {
	var g model.GPUPricing
	err := row.Scan(&g.Date, &g.GPUModel, &g.Source, &g.PricePerHour, &g.Notes, &g.CollectedAt)
	return g, err
}

// GPUPricing returns rental quotes within r ordered by date, model and
// source. An empty gpuModel returns every model.
func GPUPricing(ctx context.Context, db DB, gpuModel string, r Range) ([]model.GPUPricing, error) {
	from, to := r.bounds()
	return collect(ctx, db, "gpu pricing", scanGPUPricing, `
		SELECT date, gpu_model, source, price_per_hour, notes, collected_at
		FROM gpu_pricing
		WHERE ($1::text = '' OR gpu_model = $1) AND `+rangeClause("date", 2)+`
		ORDER BY date, gpu_model, source
	`, gpuModel, from, to)
}
