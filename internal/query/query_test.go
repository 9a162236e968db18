package query

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rickgao/abri-data/internal/model"
)

var (
	day       = time.Date(2024, 11, 4, 0, 0, 0, 0, time.UTC)
	collected = time.Date(2024, 11, 4, 22, 0, 0, 0, time.UTC)
)

func TestRangeBounds(t *testing.T) {
	tests := []struct {
		name     string
		r        Range
		wantFrom *time.Time
		wantTo   *time.Time
	}{
		{"open", Range{}, nil, nil},
		{"since", Since(time.Date(2024, 11, 4, 15, 0, 0, 0, time.UTC)), &day, nil},
		{"between", Between(day, day.AddDate(0, 0, 7)), &day, model.Ptr(day.AddDate(0, 0, 7))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			from, to := tt.r.bounds()
			if !sameDate(from, tt.wantFrom) {
				t.Errorf("from = %v, want %v", from, tt.wantFrom)
			}
			if !sameDate(to, tt.wantTo) {
				t.Errorf("to = %v, want %v", to, tt.wantTo)
			}
		})
	}
}

func sameDate(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

func TestEquityPrices(t *testing.T) {
	db := &fakeDB{rows: [][]any{
		{day, "NVDA", 136.05, model.Ptr[int64](194220000), nil, collected},
		{day.AddDate(0, 0, 1), "NVDA", 139.91, nil, f64(3.43e6), collected},
	}}

	prices, err := EquityPrices(context.Background(), db, "NVDA", Since(day))
	if err != nil {
		t.Fatalf("EquityPrices() error = %v", err)
	}
	if len(prices) != 2 {
		t.Fatalf("len = %d, want 2", len(prices))
	}
	if prices[0].Volume == nil || *prices[0].Volume != 194220000 {
		t.Errorf("Volume = %v, want 194220000", prices[0].Volume)
	}
	if prices[1].MarketCap == nil || prices[1].Volume != nil {
		t.Errorf("row 2 = %+v, want market cap and no volume", prices[1])
	}

	c := db.last()
	if !strings.Contains(c.sql, "ORDER BY date") {
		t.Errorf("SQL is not ordered by date:\n%s", c.sql)
	}
	if c.args[0] != "NVDA" {
		t.Errorf("ticker arg = %v, want NVDA", c.args[0])
	}
	if from := c.args[1].(*time.Time); from == nil || !from.Equal(day) {
		t.Errorf("from arg = %v, want %v", from, day)
	}
	if to := c.args[2].(*time.Time); to != nil {
		t.Errorf("to arg = %v, want nil", to)
	}
}

func TestLatest_NotFound(t *testing.T) {
	tests := []struct {
		name string
		fn   func(DB) error
	}{
		{"equity", func(db DB) error { _, err := LatestEquityPrice(context.Background(), db, "NVDA"); return err }},
		{"market", func(db DB) error { _, err := LatestMarketMetric(context.Background(), db); return err }},
		{"credit", func(db DB) error { _, err := LatestCreditSpread(context.Background(), db); return err }},
		{"abri", func(db DB) error { _, err := LatestABRI(context.Background(), db); return err }},
		{"collection", func(db DB) error {
			_, err := LastSuccessfulCollection(context.Background(), db, "equity")
			return err
		}},
		{"task", func(db DB) error { _, err := Task(context.Background(), db, 9); return err }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.fn(&fakeDB{}); !errors.Is(err, ErrNotFound) {
				t.Errorf("error = %v, want ErrNotFound", err)
			}
		})
	}
}

func TestLatest_OtherErrorsAreNotNotFound(t *testing.T) {
	cause := errors.New("conn closed")
	_, err := LatestCreditSpread(context.Background(), &fakeDB{rowErr: cause})
	if !errors.Is(err, cause) {
		t.Fatalf("error = %v, want wrapping %v", err, cause)
	}
	if errors.Is(err, ErrNotFound) {
		t.Error("connection failure reported as ErrNotFound")
	}
}

func TestLatestCreditSpread(t *testing.T) {
	db := &fakeDB{rows: [][]any{
		{day, f64(412), f64(128.5), f64(283.5), f64(4.28), collected},
	}}

	c, err := LatestCreditSpread(context.Background(), db)
	if err != nil {
		t.Fatalf("LatestCreditSpread() error = %v", err)
	}
	if c.HYIGDiff == nil || *c.HYIGDiff != 283.5 {
		t.Errorf("HYIGDiff = %v, want 283.5", c.HYIGDiff)
	}
	if !strings.Contains(db.last().sql, "ORDER BY date DESC") {
		t.Errorf("SQL does not pick the newest row:\n%s", db.last().sql)
	}
}

func TestQueryErrorPropagates(t *testing.T) {
	cause := errors.New("relation \"gpu_pricing\" does not exist")
	_, err := GPUPricing(context.Background(), &fakeDB{queryErr: cause}, "", Range{})
	if !errors.Is(err, cause) {
		t.Errorf("error = %v, want wrapping %v", err, cause)
	}
}

func TestCollections_Status(t *testing.T) {
	started := time.Date(2024, 11, 4, 6, 0, 0, 0, time.UTC)
	db := &fakeDB{rows: [][]any{
		{int64(2), "credit", started, nil, nil, 0, nil},
		{int64(1), "equity", started, model.Ptr(started.Add(time.Minute)), str("success"), 40, nil},
	}}

	logs, err := RecentCollections(context.Background(), db, 0)
	if err != nil {
		t.Fatalf("RecentCollections() error = %v", err)
	}
	if logs[0].Status != nil {
		t.Errorf("running job Status = %v, want nil", *logs[0].Status)
	}
	if logs[1].Status == nil || *logs[1].Status != model.CollectionSuccess {
		t.Errorf("Status = %v, want success", logs[1].Status)
	}
	if got := db.last().args[0]; got != DefaultLimit {
		t.Errorf("limit arg = %v, want %d", got, DefaultLimit)
	}
}

func TestPendingTasks(t *testing.T) {
	created := time.Date(2024, 11, 1, 8, 0, 0, 0, time.UTC)
	db := &fakeDB{rows: [][]any{
		{int64(3), "gpu_pricing", created, &day, 1, "in_progress", []byte(`{"gpu_model":"H100-80GB","sources":["vast.ai"]}`), nil, nil},
		{int64(4), "deal", created, nil, 5, "pending", nil, nil, nil},
	}}

	tasks, err := PendingTasks(context.Background(), db, 20)
	if err != nil {
		t.Fatalf("PendingTasks() error = %v", err)
	}
	if tasks[0].Status != model.TaskInProgress {
		t.Errorf("Status = %q, want in_progress", tasks[0].Status)
	}
	if tasks[0].DataPayload["gpu_model"] != "H100-80GB" {
		t.Errorf("payload = %v, want gpu_model H100-80GB", tasks[0].DataPayload)
	}
	if tasks[1].DataPayload != nil {
		t.Errorf("payload = %v, want nil", tasks[1].DataPayload)
	}

	c := db.last()
	if !strings.Contains(c.sql, "ORDER BY priority, due_date NULLS LAST, created_at") {
		t.Errorf("SQL is not in work order:\n%s", c.sql)
	}
	if c.args[0] != "pending" || c.args[1] != "in_progress" || c.args[2] != 20 {
		t.Errorf("args = %v, want [pending in_progress 20]", c.args)
	}
}

func TestPendingTasks_BadPayload(t *testing.T) {
	db := &fakeDB{rows: [][]any{
		{int64(3), "deal", day, nil, 5, "pending", []byte(`{not json`), nil, nil},
	}}

	if _, err := PendingTasks(context.Background(), db, 0); err == nil {
		t.Error("PendingTasks() error = nil, want decode error")
	}
}

func TestTask_PayloadKeepsLargeIntegers(t *testing.T) {
	stored := `{"filing_id":9007199254740993,"nested":{"n":1234567890123456789},"ratio":0.5}`
	db := &fakeDB{rows: [][]any{
		{int64(11), "hyperscaler", day, nil, 2, "pending", []byte(stored), nil, nil},
	}}

	task, err := Task(context.Background(), db, 11)
	if err != nil {
		t.Fatalf("Task() error = %v", err)
	}
	if got := task.DataPayload["filing_id"]; got != json.Number("9007199254740993") {
		t.Errorf("filing_id = %#v, want json.Number 9007199254740993", got)
	}
	nested, ok := task.DataPayload["nested"].(map[string]any)
	if !ok || nested["n"] != json.Number("1234567890123456789") {
		t.Errorf("nested = %#v, want n = 1234567890123456789", task.DataPayload["nested"])
	}

	// Encoding the payload again gives back the stored document.
	back, err := json.Marshal(task.DataPayload)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if string(back) != stored {
		t.Errorf("round trip = %s, want %s", back, stored)
	}
}

func TestUnacknowledgedAlerts(t *testing.T) {
	db := &fakeDB{rows: [][]any{
		{int64(8), collected, "hy_ig_diff", 300.0, 312.5, str("breach_high"), nil, false},
	}}

	alerts, err := UnacknowledgedAlerts(context.Background(), db)
	if err != nil {
		t.Fatalf("UnacknowledgedAlerts() error = %v", err)
	}
	if len(alerts) != 1 || alerts[0].MetricName != "hy_ig_diff" {
		t.Errorf("alerts = %+v, want one hy_ig_diff alert", alerts)
	}
	if !strings.Contains(db.last().sql, "WHERE NOT acknowledged") {
		t.Errorf("SQL does not filter acknowledged alerts:\n%s", db.last().sql)
	}
}

func TestRecentNews_UndatedLast(t *testing.T) {
	db := &fakeDB{rows: [][]any{
		{int64(5), &day, "Capex guidance raised", str("Reuters"), str("https://example.com/a"), nil, f64(0.8), collected},
	}}

	items, err := RecentNews(context.Background(), db, 10)
	if err != nil {
		t.Fatalf("RecentNews() error = %v", err)
	}
	if len(items) != 1 || items[0].URL == nil {
		t.Errorf("items = %+v, want one item with url", items)
	}
	if !strings.Contains(db.last().sql, "published_date DESC NULLS LAST") {
		t.Errorf("SQL does not put undated items last:\n%s", db.last().sql)
	}
}
