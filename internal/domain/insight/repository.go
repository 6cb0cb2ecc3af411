package insight

import (
	"context"
	"time"
)

// Repository defines persistence for insight records (ClickHouse)
type Repository interface {
	// InsertBatch appends all insights in a single batch
	InsertBatch(ctx context.Context, insights []Insight) error

	// ListSince returns insights for ticker generated on or after since, newest first
	ListSince(ctx context.Context, ticker string, since time.Time) ([]Insight, error)
}

// Embedding is the vector form of an insight summary
type Embedding struct {
	ID          string
	Ticker      string
	InsightType string
	Date        time.Time
	Content     string
	Model       string
	Vector      []float32
}

// EmbeddingStore persists summary embeddings (Postgres + pgvector)
type EmbeddingStore interface {
	// Save stores the embedding and returns its id
	Save(ctx context.Context, e *Embedding) (string, error)
}
