package postgres

import (
	"context"
	"fmt"
)

// Schema creates the insight embedding store. The vector column is left
// unsized so providers with different dimensions can share the table.
var Schema = []string{
	`CREATE EXTENSION IF NOT EXISTS vector`,
	`CREATE TABLE IF NOT EXISTS insight_embeddings (
		id           UUID PRIMARY KEY,
		ticker       TEXT NOT NULL,
		insight_type TEXT NOT NULL,
		insight_date DATE NOT NULL,
		content      TEXT NOT NULL,
		model        TEXT NOT NULL,
		embedding    vector NOT NULL,
		created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_insight_embeddings_ticker_date
		ON insight_embeddings (ticker, insight_date DESC)`,
}

// Migrate applies Schema. Safe to run repeatedly.
func (c *Client) Migrate(ctx context.Context) error {
	for _, stmt := range Schema {
		if _, err := c.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply postgres schema: %w", err)
		}
	}
	return nil
}
