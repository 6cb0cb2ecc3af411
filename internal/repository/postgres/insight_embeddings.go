package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"

	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/internal/domain/insight"
	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/internal/metrics"
	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/pkg/errors"
)

// Compile-time check
var _ insight.EmbeddingStore = (*InsightEmbeddingRepository)(nil)

// InsightEmbeddingRepository stores summary vectors with pgvector
type InsightEmbeddingRepository struct {
	db DBTX
}

// NewInsightEmbeddingRepository creates a new embedding repository
func NewInsightEmbeddingRepository(db DBTX) *InsightEmbeddingRepository {
	return &InsightEmbeddingRepository{db: db}
}

// Save inserts the embedding and returns its id. A new id is assigned when e.ID is empty.
func (r *InsightEmbeddingRepository) Save(ctx context.Context, e *insight.Embedding) (string, error) {
	if len(e.Vector) == 0 {
		return "", errors.NewValidationError("vector", "embedding is empty", nil)
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}

	query := `
		INSERT INTO insight_embeddings (
			id, ticker, insight_type, insight_date, content, model, embedding
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7
		)`

	start := time.Now()
	_, err := r.db.ExecContext(ctx, query,
		e.ID, e.Ticker, e.InsightType, e.Date, e.Content, e.Model, pgvector.NewVector(e.Vector),
	)
	metrics.RecordDBQuery("postgres", "insert_embedding", time.Since(start), err)
	if err != nil {
		return "", errors.Wrap(err, "failed to insert insight embedding")
	}

	return e.ID, nil
}
