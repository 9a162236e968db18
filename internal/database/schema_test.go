package database

import (
	"reflect"
	"testing"

	"github.com/rickgao/abri-data/internal/schema"
)

// mappedColumns returns the columns a freshly initialized server reports.
func mappedColumns() []ColumnInfo {
	var cols []ColumnInfo
	for _, tbl := range schema.Tables {
		for _, c := range tbl.Columns {
			cols = append(cols, ColumnInfo{Table: tbl.Name, Column: c.Name, Nullable: c.Nullable})
		}
	}
	return cols
}

func TestDiffSchema_Matches(t *testing.T) {
	if d := DiffSchema(mappedColumns()); !d.Empty() {
		t.Errorf("DiffSchema() = %+v, want no drift", d)
	}
}

func TestDiffSchema_Drift(t *testing.T) {
	var cols []ColumnInfo
	for _, c := range mappedColumns() {
		switch {
		case c.Table == "deal_tracker" && c.Column == "is_circular":
			continue
		case c.Table == "news_items" && c.Column == "title":
			c.Nullable = true
		}
		cols = append(cols, c)
	}
	cols = append(cols,
		ColumnInfo{Table: "equity_prices", Column: "open", Nullable: true},
		ColumnInfo{Table: "legacy_quotes", Column: "id"},
	)

	d := DiffSchema(cols)
	if want := []string{"deal_tracker.is_circular"}; !reflect.DeepEqual(d.Missing, want) {
		t.Errorf("Missing = %v, want %v", d.Missing, want)
	}
	if want := []string{"equity_prices.open", "legacy_quotes.id"}; !reflect.DeepEqual(d.Unexpected, want) {
		t.Errorf("Unexpected = %v, want %v", d.Unexpected, want)
	}
	if want := []string{"news_items.title"}; !reflect.DeepEqual(d.Nullability, want) {
		t.Errorf("Nullability = %v, want %v", d.Nullability, want)
	}
	if d.Empty() {
		t.Error("Empty() = true with drift")
	}
}

func TestDiffSchema_EmptyServer(t *testing.T) {
	d := DiffSchema(nil)
	total := 0
	for _, tbl := range schema.Tables {
		total += len(tbl.Columns)
	}
	if len(d.Missing) != total {
		t.Errorf("Missing = %d columns, want %d", len(d.Missing), total)
	}
}
