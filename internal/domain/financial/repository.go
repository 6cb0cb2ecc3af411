package financial

import (
	"context"
	"time"
)

// Repository defines persistence for financial metric records (ClickHouse)
type Repository interface {
	// Insert appends one record. Nil fields are written as NULL.
	Insert(ctx context.Context, metric *Metric) error

	// ListRange returns the latest row per date for ticker with start <= date <= end, ascending by date
	ListRange(ctx context.Context, ticker string, start, end time.Time) ([]Metric, error)

	// Latest returns the most recently ingested record for ticker, or errors.ErrNotFound
	Latest(ctx context.Context, ticker string) (*Metric, error)
}
