// Package schema describes the tables of the ABRI data store and renders
// their DDL.
//
// The metadata here is the single source of table names, columns, keys
// and nullability. It is used at schema-creation time and to check a live
// database against the mapping; it is not a query builder.
package schema

import "strconv"

// ColumnType is a PostgreSQL column type.
type ColumnType string

const (
	Date      ColumnType = "DATE"
	Timestamp ColumnType = "TIMESTAMP WITHOUT TIME ZONE"
	Float     ColumnType = "DOUBLE PRECISION"
	Integer   ColumnType = "INTEGER"
	Serial    ColumnType = "SERIAL"
	Text      ColumnType = "TEXT"
	Boolean   ColumnType = "BOOLEAN"
	JSONB     ColumnType = "JSONB"
)

// Varchar returns VARCHAR(n).
func Varchar(n int) ColumnType {
	return ColumnType("VARCHAR(" + strconv.Itoa(n) + ")")
}

// Column describes one column.
type Column struct {
	Name     string
	Type     ColumnType
	Nullable bool
	Unique   bool
	Default  string // SQL expression, empty for none
}

// Index is a secondary index.
type Index struct {
	Name    string
	Columns []string
}

// Table describes one table.
type Table struct {
	Entity     string // Go type name in package model
	Name       string
	Columns    []Column
	PrimaryKey []string
	Indexes    []Index
}

// Column returns the named column and whether it exists.
func (t Table) Column(name string) (Column, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// ColumnNames returns column names in declaration order.
func (t Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

func required(name string, typ ColumnType) Column {
	return Column{Name: name, Type: typ}
}

func optional(name string, typ ColumnType) Column {
	return Column{Name: name, Type: typ, Nullable: true}
}

func stamped(name string) Column {
	return Column{Name: name, Type: Timestamp, Default: "now()"}
}

func serialKey(name string) Column {
	return Column{Name: name, Type: Serial}
}

// Tables lists every table in creation order.
var Tables = []Table{
	{
		Entity: "EquityPrice",
		Name:   "equity_prices",
		Columns: []Column{
			required("date", Date),
			required("ticker", Varchar(10)),
			required("close", Float),
			optional("volume", Integer),
			optional("market_cap", Float),
			stamped("collected_at"),
		},
		PrimaryKey: []string{"date", "ticker"},
		Indexes: []Index{
			{Name: "idx_equity_ticker_date", Columns: []string{"ticker", "date"}},
		},
	},
	{
		Entity: "MarketMetric",
		Name:   "market_metrics",
		Columns: []Column{
			required("date", Date),
			optional("mag7_weight", Float),
			optional("tech_weight", Float),
			optional("nvda_spy_corr", Float),
			optional("mag7_spy_corr", Float),
			optional("leveraged_etf_aum", Float),
			stamped("collected_at"),
		},
		PrimaryKey: []string{"date"},
	},
	{
		Entity: "CreditSpread",
		Name:   "credit_spreads",
		Columns: []Column{
			required("date", Date),
			optional("hy_oas", Float),
			optional("ig_bbb_oas", Float),
			optional("hy_ig_diff", Float),
			optional("treasury_10y", Float),
			stamped("collected_at"),
		},
		PrimaryKey: []string{"date"},
	},
	{
		Entity: "GPUPricing",
		Name:   "gpu_pricing",
		Columns: []Column{
			required("date", Date),
			required("gpu_model", Varchar(50)),
			required("source", Varchar(50)),
			required("price_per_hour", Float),
			optional("notes", Text),
			stamped("collected_at"),
		},
		PrimaryKey: []string{"date", "gpu_model", "source"},
		Indexes: []Index{
			{Name: "idx_gpu_model_date", Columns: []string{"gpu_model", "date"}},
		},
	},
	{
		Entity: "HyperscalerMetric",
		Name:   "hyperscaler_metrics",
		Columns: []Column{
			required("fiscal_period", Varchar(20)),
			required("ticker", Varchar(10)),
			optional("capex", Float),
			optional("operating_cf", Float),
			optional("capex_ocf_ratio", Float),
			optional("ai_revenue", Float),
			optional("ai_revenue_growth", Float),
			optional("total_debt", Float),
			optional("total_equity", Float),
			optional("adj_debt_equity", Float),
			optional("days_sales_outstanding", Float),
			optional("depreciation_expense", Float),
			optional("source_url", Text),
			optional("ai_revenue_methodology", Text),
			stamped("entered_at"),
		},
		PrimaryKey: []string{"fiscal_period", "ticker"},
	},
	{
		Entity: "Deal",
		Name:   "deal_tracker",
		Columns: []Column{
			serialKey("deal_id"),
			required("announced_date", Date),
			required("company", Varchar(100)),
			optional("amount_usd", Float),
			optional("structure_type", Varchar(50)),
			optional("counterparty", Varchar(200)),
			{Name: "is_circular", Type: Boolean, Default: "false"},
			optional("source_url", Text),
			optional("notes", Text),
			stamped("entered_at"),
		},
		PrimaryKey: []string{"deal_id"},
		Indexes: []Index{
			{Name: "idx_deal_date", Columns: []string{"announced_date"}},
		},
	},
	{
		Entity: "NewsItem",
		Name:   "news_items",
		Columns: []Column{
			serialKey("item_id"),
			optional("published_date", Date),
			required("title", Text),
			optional("source", Varchar(100)),
			{Name: "url", Type: Text, Nullable: true, Unique: true},
			optional("summary", Text),
			optional("relevance_score", Float),
			stamped("collected_at"),
		},
		PrimaryKey: []string{"item_id"},
		Indexes: []Index{
			{Name: "idx_news_date", Columns: []string{"published_date"}},
		},
	},
	{
		Entity: "ABRIHistory",
		Name:   "abri_history",
		Columns: []Column{
			required("date", Date),
			optional("concentration_score", Float),
			optional("correlation_score", Float),
			optional("credit_stress_score", Float),
			optional("gpu_deflation_score", Float),
			optional("capex_intensity_score", Float),
			optional("revenue_gap_score", Float),
			optional("deal_flow_score", Float),
			optional("composite_score", Float),
			stamped("calculated_at"),
		},
		PrimaryKey: []string{"date"},
	},
	{
		Entity: "AlertLog",
		Name:   "alert_log",
		Columns: []Column{
			serialKey("alert_id"),
			required("triggered_at", Timestamp),
			required("metric_name", Varchar(50)),
			required("threshold", Float),
			required("actual_value", Float),
			optional("alert_type", Varchar(20)),
			optional("sent_at", Timestamp),
			{Name: "acknowledged", Type: Boolean, Default: "false"},
		},
		PrimaryKey: []string{"alert_id"},
	},
	{
		Entity: "CollectionLog",
		Name:   "collection_log",
		Columns: []Column{
			serialKey("log_id"),
			required("collection_type", Varchar(50)),
			required("started_at", Timestamp),
			optional("completed_at", Timestamp),
			optional("status", Varchar(20)),
			{Name: "records_added", Type: Integer, Default: "0"},
			optional("error_message", Text),
		},
		PrimaryKey: []string{"log_id"},
	},
	{
		Entity: "PendingManualTask",
		Name:   "pending_manual_tasks",
		Columns: []Column{
			serialKey("task_id"),
			required("task_type", Varchar(50)),
			stamped("created_at"),
			optional("due_date", Date),
			{Name: "priority", Type: Integer, Default: "5"},
			{Name: "status", Type: Varchar(20), Default: "'pending'"},
			optional("data_payload", JSONB),
			optional("completed_at", Timestamp),
			optional("completed_by", Varchar(100)),
		},
		PrimaryKey: []string{"task_id"},
	},
}

// TableNames returns the name of every table in creation order.
func TableNames() []string {
	names := make([]string, len(Tables))
	for i, t := range Tables {
		names[i] = t.Name
	}
	return names
}

// Lookup returns the table with the given name.
func Lookup(name string) (Table, bool) {
	for _, t := range Tables {
		if t.Name == name {
			return t, true
		}
	}
	return Table{}, false
}
