// Package metrics provides Prometheus metrics for monitoring.
//
// Key metrics:
//   - Database connection pool stats (open, idle, in use, ceiling)
//   - Pool acquisition counts, including waits on an empty pool
//   - Session outcomes (commit, rollback, commit_error) and durations
package metrics
