package clickhouse

import (
	"context"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/internal/domain/insight"
	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/internal/metrics"
	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/pkg/errors"
)

// Compile-time check
var _ insight.Repository = (*InsightRepository)(nil)

// InsightRepository implements insight.Repository using ClickHouse
type InsightRepository struct {
	conn driver.Conn
}

// NewInsightRepository creates a new insight repository
func NewInsightRepository(conn driver.Conn) *InsightRepository {
	return &InsightRepository{conn: conn}
}

// InsertBatch sends all insights in one batch, so either every row lands or none does
func (r *InsightRepository) InsertBatch(ctx context.Context, insights []insight.Insight) error {
	if len(insights) == 0 {
		return nil
	}

	start := time.Now()
	err := r.insertBatch(ctx, insights)
	metrics.RecordDBQuery("clickhouse", "insert_insights", time.Since(start), err)
	return err
}

func (r *InsightRepository) insertBatch(ctx context.Context, insights []insight.Insight) error {
	batch, err := r.conn.PrepareBatch(ctx, `
		INSERT INTO numerical_insights (
			ticker, insight_type, summary_text, generation_date,
			source_metrics, embedding_id, request_id, ingestion_timestamp
		)
	`)
	if err != nil {
		return errors.Wrap(err, "failed to prepare batch")
	}

	for _, in := range insights {
		err := batch.Append(
			in.Ticker, in.InsightType, in.SummaryText, in.GenerationDate,
			in.SourceMetrics, in.EmbeddingID, in.RequestID, in.IngestionTimestamp,
		)
		if err != nil {
			_ = batch.Abort()
			return errors.Wrap(err, "failed to append insight")
		}
	}

	if err := batch.Send(); err != nil {
		return errors.Wrap(err, "failed to send insights")
	}
	return nil
}

// ListSince returns insights for ticker generated on or after since, newest first
func (r *InsightRepository) ListSince(ctx context.Context, ticker string, since time.Time) ([]insight.Insight, error) {
	var rows []insight.Insight

	sql := `
		SELECT ticker, insight_type, summary_text, generation_date,
			source_metrics, embedding_id, request_id, ingestion_timestamp
		FROM numerical_insights
		WHERE ticker = $1 AND generation_date >= $2
		ORDER BY generation_date DESC, ingestion_timestamp DESC`

	start := time.Now()
	err := r.conn.Select(ctx, &rows, sql, ticker, since)
	metrics.RecordDBQuery("clickhouse", "list_insights", time.Since(start), err)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list insights")
	}
	return rows, nil
}
