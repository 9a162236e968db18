package writer

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/rickgao/abri-data/internal/model"
)

// InsertNewsItems appends news items and returns how many were inserted.
// An item whose url is already stored is skipped; items without a url
// are always inserted. A blank url counts as no url.
func InsertNewsItems(ctx context.Context, db DB, items []model.NewsItem) (int64, error) {
	batch := &pgx.Batch{}
	for i, it := range items {
		if it.Title == "" {
			return 0, invalid("news item", i, "title is required")
		}
		url := it.URL
		if url != nil && strings.TrimSpace(*url) == "" {
			url = nil
		}
		batch.Queue(`
			INSERT INTO news_items (published_date, title, source, url, summary, relevance_score)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (url) DO NOTHING
		`, optionalDate(it.PublishedDate), it.Title, it.Source, url, it.Summary, it.RelevanceScore)
	}

	inserted, err := sendBatch(ctx, db, batch)
	if err != nil {
		return 0, fmt.Errorf("insert news items: %w", err)
	}
	return inserted, nil
}
