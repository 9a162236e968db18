// Package writer implements the writes of every ABRI entity.
//
// Writers:
//   - Market data: equity prices, market metrics, credit spreads, GPU pricing
//   - Hyperscaler financials and the deal tracker
//   - News items (skip on duplicate url)
//   - ABRI history and the alert log
//   - Collection log and the manual entry task queue
//
// Every function runs on a DB, normally a *database.Session, so the
// caller decides the unit of work. Rows keyed by date or a natural key
// are upserted: non-key columns are replaced and the server timestamp is
// refreshed. Derived columns (hy_ig_diff, capex_ocf_ratio,
// adj_debt_equity) are computed here before the write; the store itself
// does not check them.
//
// BatchWriter buffers rows from a collector and flushes them in sessions
// of its own.
package writer
