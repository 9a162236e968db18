package writer

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/rickgao/abri-data/internal/model"
)

const (
	maxTickerLen   = 10
	maxGPUModelLen = 50
	maxSourceLen   = 50
)

// UpsertEquityPrices writes daily closes keyed by (date, ticker) and
// returns the number of rows written.
func UpsertEquityPrices(ctx context.Context, db DB, prices []model.EquityPrice) (int64, error) {
	batch := &pgx.Batch{}
	for i, p := range prices {
		if err := checkKeyString("equity price", i, "ticker", p.Ticker, maxTickerLen); err != nil {
			return 0, err
		}
		if p.Date.IsZero() {
			return 0, invalid("equity price", i, "date is required")
		}
		batch.Queue(`
			INSERT INTO equity_prices (date, ticker, close, volume, market_cap)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (date, ticker) DO UPDATE SET
				close = EXCLUDED.close,
				volume = EXCLUDED.volume,
				market_cap = EXCLUDED.market_cap,
				collected_at = now()
		`, dateArg(p.Date), p.Ticker, p.Close, p.Volume, p.MarketCap)
	}

	n, err := sendBatch(ctx, db, batch)
	if err != nil {
		return 0, fmt.Errorf("upsert equity prices: %w", err)
	}
	return n, nil
}

// UpsertMarketMetrics writes one row of market structure metrics per date.
func UpsertMarketMetrics(ctx context.Context, db DB, metrics []model.MarketMetric) (int64, error) {
	batch := &pgx.Batch{}
	for i, m := range metrics {
		if m.Date.IsZero() {
			return 0, invalid("market metric", i, "date is required")
		}
		batch.Queue(`
			INSERT INTO market_metrics (date, mag7_weight, tech_weight, nvda_spy_corr, mag7_spy_corr, leveraged_etf_aum)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (date) DO UPDATE SET
				mag7_weight = EXCLUDED.mag7_weight,
				tech_weight = EXCLUDED.tech_weight,
				nvda_spy_corr = EXCLUDED.nvda_spy_corr,
				mag7_spy_corr = EXCLUDED.mag7_spy_corr,
				leveraged_etf_aum = EXCLUDED.leveraged_etf_aum,
				collected_at = now()
		`, dateArg(m.Date), m.Mag7Weight, m.TechWeight, m.NVDASPYCorr, m.Mag7SPYCorr, m.LeveragedETFAUM)
	}

	n, err := sendBatch(ctx, db, batch)
	if err != nil {
		return 0, fmt.Errorf("upsert market metrics: %w", err)
	}
	return n, nil
}

// UpsertCreditSpreads writes one row of spreads per date. HYIGDiff is
// recomputed from the two spreads; any value the caller set is ignored.
func UpsertCreditSpreads(ctx context.Context, db DB, spreads []model.CreditSpread) (int64, error) {
	batch := &pgx.Batch{}
	for i, s := range spreads {
		if s.Date.IsZero() {
			return 0, invalid("credit spread", i, "date is required")
		}
		s.Derive()
		batch.Queue(`
			INSERT INTO credit_spreads (date, hy_oas, ig_bbb_oas, hy_ig_diff, treasury_10y)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (date) DO UPDATE SET
				hy_oas = EXCLUDED.hy_oas,
				ig_bbb_oas = EXCLUDED.ig_bbb_oas,
				hy_ig_diff = EXCLUDED.hy_ig_diff,
				treasury_10y = EXCLUDED.treasury_10y,
				collected_at = now()
		`, dateArg(s.Date), s.HYOAS, s.IGBBBOAS, s.HYIGDiff, s.Treasury10Y)
	}

	n, err := sendBatch(ctx, db, batch)
	if err != nil {
		return 0, fmt.Errorf("upsert credit spreads: %w", err)
	}
	return n, nil
}

// UpsertGPUPricing writes rental quotes keyed by (date, gpu_model, source).
func UpsertGPUPricing(ctx context.Context, db DB, quotes []model.GPUPricing) (int64, error) {
	batch := &pgx.Batch{}
	for i, q := range quotes {
		if q.Date.IsZero() {
			return 0, invalid("gpu pricing", i, "date is required")
		}
		if err := checkKeyString("gpu pricing", i, "gpu_model", q.GPUModel, maxGPUModelLen); err != nil {
			return 0, err
		}
		if err := checkKeyString("gpu pricing", i, "source", q.Source, maxSourceLen); err != nil {
			return 0, err
		}
		batch.Queue(`
			INSERT INTO gpu_pricing (date, gpu_model, source, price_per_hour, notes)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (date, gpu_model, source) DO UPDATE SET
				price_per_hour = EXCLUDED.price_per_hour,
				notes = EXCLUDED.notes,
				collected_at = now()
		`, dateArg(q.Date), q.GPUModel, q.Source, q.PricePerHour, q.Notes)
	}

	n, err := sendBatch(ctx, db, batch)
	if err != nil {
		return 0, fmt.Errorf("upsert gpu pricing: %w", err)
	}
	return n, nil
}

// checkKeyString rejects an empty key column or one longer than its
// VARCHAR bound.
func checkKeyString(entity string, i int, field, v string, max int) error {
	if v == "" {
		return invalid(entity, i, "%s is required", field)
	}
	if n := len([]rune(v)); n > max {
		return invalid(entity, i, "%s %q is %d characters, max %d", field, v, n, max)
	}
	return nil
}
