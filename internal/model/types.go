package model

import "time"

// -----------------------------------------------------------------------------
// Market Data
// -----------------------------------------------------------------------------

// EquityPrice is a daily close for a tracked ticker.
type EquityPrice struct {
	Date        time.Time // Primary key
	Ticker      string    // Primary key (e.g., "NVDA")
	Close       float64   // Closing price (USD)
	Volume      *int64    // Shares traded
	MarketCap   *float64  // Market capitalization
	CollectedAt time.Time // Server-stamped
}

// MarketMetric holds market structure metrics for a day.
type MarketMetric struct {
	Date            time.Time // Primary key
	Mag7Weight      *float64  // Mag7 % of S&P 500
	TechWeight      *float64  // Tech sector % of S&P 500
	NVDASPYCorr     *float64  // 60-day rolling correlation
	Mag7SPYCorr     *float64  // Equal-weight Mag7 correlation
	LeveragedETFAUM *float64  // Combined AUM
	CollectedAt     time.Time // Server-stamped
}

// -----------------------------------------------------------------------------
// Credit Markets
// -----------------------------------------------------------------------------

// CreditSpread holds daily credit spread observations.
type CreditSpread struct {
	Date        time.Time // Primary key
	HYOAS       *float64  // High yield OAS (bps)
	IGBBBOAS    *float64  // Investment grade BBB OAS (bps)
	HYIGDiff    *float64  // Derived: HYOAS - IGBBBOAS (bps)
	Treasury10Y *float64  // 10-year Treasury yield (%)
	CollectedAt time.Time // Server-stamped
}

// -----------------------------------------------------------------------------
// GPU Market
// -----------------------------------------------------------------------------

// GPUPricing is a rental quote for one GPU model from one source on one day.
type GPUPricing struct {
	Date         time.Time // Primary key
	GPUModel     string    // Primary key (e.g., "H100-80GB")
	Source       string    // Primary key (e.g., "vast.ai")
	PricePerHour float64   // USD per GPU-hour
	Notes        *string
	CollectedAt  time.Time // Server-stamped
}

// -----------------------------------------------------------------------------
// Hyperscaler Financials
// -----------------------------------------------------------------------------

// HyperscalerMetric holds quarterly financials for one hyperscaler.
type HyperscalerMetric struct {
	FiscalPeriod         string   // Primary key, free text (e.g., "Q3 2024", "FY 2024")
	Ticker               string   // Primary key (e.g., "MSFT")
	Capex                *float64 // Capital expenditures ($M)
	OperatingCF          *float64 // Operating cash flow ($M)
	CapexOCFRatio        *float64 // Derived: Capex / OperatingCF
	AIRevenue            *float64 // AI-attributed revenue ($M)
	AIRevenueGrowth      *float64 // QoQ growth rate
	TotalDebt            *float64 // Total long-term debt ($M)
	TotalEquity          *float64 // Total shareholders' equity ($M)
	AdjDebtEquity        *float64 // Derived: TotalDebt / TotalEquity
	DaysSalesOutstanding *float64
	DepreciationExpense  *float64 // For tracking against capex ($M)
	SourceURL            *string  // Link to 10-K/10-Q
	AIRevenueMethodology *string  // How AI revenue was estimated
	EnteredAt            time.Time
}

// -----------------------------------------------------------------------------
// Deal Flow
// -----------------------------------------------------------------------------

// Deal is an AI infrastructure financing deal.
type Deal struct {
	DealID        int64     // Generated
	AnnouncedDate time.Time // Required
	Company       string    // Required
	AmountUSD     *float64  // Deal size ($M)
	StructureType *string   // e.g., "corporate_debt", "spv"
	Counterparty  *string
	IsCircular    bool // Involves circular financing
	SourceURL     *string
	Notes         *string
	EnteredAt     time.Time
}

// -----------------------------------------------------------------------------
// News
// -----------------------------------------------------------------------------

// NewsItem is an aggregated news article.
type NewsItem struct {
	ItemID         int64 // Generated
	PublishedDate  *time.Time
	Title          string // Required
	Source         *string
	URL            *string  // Unique when present
	Summary        *string
	RelevanceScore *float64 // Expected in [0, 1]
	CollectedAt    time.Time
}

// -----------------------------------------------------------------------------
// ABRI
// -----------------------------------------------------------------------------

// ABRIHistory is one day of the composite risk index. Component scores
// are expected in [0, 100].
type ABRIHistory struct {
	Date                time.Time // Primary key
	ConcentrationScore  *float64
	CorrelationScore    *float64
	CreditStressScore   *float64
	GPUDeflationScore   *float64
	CapexIntensityScore *float64
	RevenueGapScore     *float64
	DealFlowScore       *float64
	CompositeScore      *float64 // Weighted by the scoring job
	CalculatedAt        time.Time
}

// -----------------------------------------------------------------------------
// Alerts & Job Logs
// -----------------------------------------------------------------------------

// AlertLog records a threshold breach. Delivery happens elsewhere; SentAt
// and Acknowledged track it.
type AlertLog struct {
	AlertID      int64     // Generated
	TriggeredAt  time.Time // Required
	MetricName   string    // Required, informal reference to a metric column
	Threshold    float64
	ActualValue  float64
	AlertType    *string // e.g., "breach_high", "breach_low", "trend"
	SentAt       *time.Time
	Acknowledged bool
}

// CollectionLog is one run of a collection job.
type CollectionLog struct {
	LogID          int64     // Generated
	CollectionType string    // e.g., "equity", "credit"
	StartedAt      time.Time // Required
	CompletedAt    *time.Time
	Status         *CollectionStatus // Set on completion
	RecordsAdded   int
	ErrorMessage   *string
}

// -----------------------------------------------------------------------------
// Manual Entry Queue
// -----------------------------------------------------------------------------

// PendingManualTask is a data point waiting for human entry.
type PendingManualTask struct {
	TaskID      int64  // Generated
	TaskType    string // e.g., "gpu_pricing", "hyperscaler", "deal"
	CreatedAt   time.Time
	DueDate     *time.Time
	Priority    int        // 1 = highest, 10 = lowest
	Status      TaskStatus // Defaults to pending
	DataPayload Payload    // Pre-populated form data, opaque
	CompletedAt *time.Time
	CompletedBy *string
}
