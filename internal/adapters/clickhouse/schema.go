package clickhouse

import (
	"context"

	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/pkg/errors"
)

// Schema lists the warehouse tables in creation order.
// Every table is append-only; readers pick the latest row per key.
var Schema = []string{
	`CREATE TABLE IF NOT EXISTS financial_metrics (
		ticker                   String,
		date                     Date,
		open                     Nullable(Float64),
		high                     Nullable(Float64),
		low                      Nullable(Float64),
		close                    Nullable(Float64),
		volume                   Nullable(Int64),
		market_cap               Nullable(Float64),
		pe_ratio                 Nullable(Float64),
		eps                      Nullable(Float64),
		revenue                  Nullable(Float64),
		net_income               Nullable(Float64),
		debt_to_equity           Nullable(Float64),
		roe                      Nullable(Float64),
		current_price            Nullable(Float64),
		day_change_percent       Nullable(Float64),
		fifty_two_week_high      Nullable(Float64),
		fifty_two_week_low       Nullable(Float64),
		moving_average_50        Nullable(Float64),
		moving_average_200       Nullable(Float64),
		rsi                      Nullable(Float64),
		beta                     Nullable(Float64),
		cagr                     Nullable(Float64),
		geographical_exposure    Nullable(String),
		risk_signals             Nullable(String),
		sector_performance_index Nullable(Float64),
		data_source              Nullable(String),
		symbol_used              Nullable(String),
		data_availability        Nullable(String),
		ingestion_timestamp      DateTime64(3, 'UTC')
	) ENGINE = MergeTree()
	PARTITION BY toYYYYMM(date)
	ORDER BY (ticker, date, ingestion_timestamp)`,

	`CREATE TABLE IF NOT EXISTS numerical_insights (
		ticker              String,
		insight_type        LowCardinality(String),
		summary_text        String,
		generation_date     Date,
		source_metrics      Array(String),
		embedding_id        Nullable(String),
		request_id          String,
		ingestion_timestamp DateTime64(3, 'UTC')
	) ENGINE = MergeTree()
	PARTITION BY toYYYYMM(generation_date)
	ORDER BY (ticker, generation_date, insight_type, ingestion_timestamp)`,

	`CREATE TABLE IF NOT EXISTS report_metadata (
		report_id      String,
		report_type    LowCardinality(String),
		company_ticker String,
		sector         String,
		report_date    Date,
		status         LowCardinality(String),
		gcs_uri        String,
		error_message  String,
		request_id     String,
		updated_at     DateTime64(6, 'UTC')
	) ENGINE = MergeTree()
	ORDER BY (report_id, updated_at)`,
}

// Migrate applies Schema. Safe to run repeatedly.
func (c *Client) Migrate(ctx context.Context) error {
	for _, stmt := range Schema {
		if err := c.conn.Exec(ctx, stmt); err != nil {
			return errors.Wrap(err, "failed to apply clickhouse schema")
		}
	}
	return nil
}
