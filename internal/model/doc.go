// Package model defines the entities persisted by the ABRI data store.
//
// All types mirror the tables created by package schema.
//
// Conventions:
//   - Optional columns are pointers (nil = NULL)
//   - Dates: time.Time at UTC midnight (calendar date, no time component)
//   - Timestamps: time.Time in UTC
//   - Money: float64 millions of USD unless noted; spreads in basis points
//   - Server-stamped columns (CollectedAt, EnteredAt, ...) are read-only;
//     writers never supply them
//
// Derived fields (HYIGDiff, CapexOCFRatio, AdjDebtEquity) are computed by
// writers with the helpers in derive.go. The store never checks them.
package model
