// Package database implements the Connection Manager for the ABRI PostgreSQL store.
//
// A Store owns one bounded pgxpool:
//   - pool_size persistent connections plus max_overflow extra under load
//   - connections are pinged before being handed out and recycled after max_conn_lifetime
//   - acquisition waits at most acquire_timeout, then fails with ErrPoolExhausted
//
// Work happens in a Session, one transaction on one pooled connection.
// WithSession commits when the callback returns nil and rolls back otherwise;
// the connection goes back to the pool on every path.
//
// Health and Info never fail the caller. Everything else propagates errors.
package database
