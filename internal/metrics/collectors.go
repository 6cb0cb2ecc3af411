package metrics

import (
	"context"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/pkg/logger"
)

// PipelineCollector reports warehouse row counts at scrape time.
// postgres may be nil when the embedding store is disabled.
type PipelineCollector struct {
	log        *logger.Logger
	clickhouse driver.Conn
	postgres   *sqlx.DB

	metricsIngested *prometheus.Desc
	insights        *prometheus.Desc
	reports         *prometheus.Desc
	embeddings      *prometheus.Desc
}

// NewPipelineCollector creates a new warehouse collector
func NewPipelineCollector(log *logger.Logger, clickhouse driver.Conn, postgres *sqlx.DB) *PipelineCollector {
	return &PipelineCollector{
		log:        log,
		clickhouse: clickhouse,
		postgres:   postgres,

		metricsIngested: prometheus.NewDesc(
			"assetmgmt_financial_metrics_rows_24h",
			"Financial metric rows ingested in the last 24h",
			nil, nil,
		),
		insights: prometheus.NewDesc(
			"assetmgmt_insights_rows_24h",
			"Numerical insights generated in the last 24h by type",
			[]string{"insight_type"}, nil,
		),
		reports: prometheus.NewDesc(
			"assetmgmt_reports",
			"Reports by current lifecycle status",
			[]string{"status"}, nil,
		),
		embeddings: prometheus.NewDesc(
			"assetmgmt_insight_embeddings",
			"Stored insight embeddings",
			nil, nil,
		),
	}
}

// Describe implements prometheus.Collector
func (c *PipelineCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.metricsIngested
	ch <- c.insights
	ch <- c.reports
	ch <- c.embeddings
}

// Collect implements prometheus.Collector
func (c *PipelineCollector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	c.collectMetricRows(ctx, ch)
	c.collectInsightRows(ctx, ch)
	c.collectReportStatuses(ctx, ch)
	c.collectEmbeddings(ctx, ch)
}

func (c *PipelineCollector) collectMetricRows(ctx context.Context, ch chan<- prometheus.Metric) {
	var count uint64
	row := c.clickhouse.QueryRow(ctx, `
		SELECT count()
		FROM financial_metrics
		WHERE ingestion_timestamp > now() - INTERVAL 1 DAY
	`)
	if err := row.Scan(&count); err != nil {
		c.log.Warnw("Failed to collect financial metric rows", "error", err)
		return
	}

	ch <- prometheus.MustNewConstMetric(c.metricsIngested, prometheus.GaugeValue, float64(count))
}

func (c *PipelineCollector) collectInsightRows(ctx context.Context, ch chan<- prometheus.Metric) {
	type insightStat struct {
		InsightType string `ch:"insight_type"`
		Count       uint64 `ch:"count"`
	}

	var stats []insightStat
	err := c.clickhouse.Select(ctx, &stats, `
		SELECT insight_type, count() AS count
		FROM numerical_insights
		WHERE ingestion_timestamp > now() - INTERVAL 1 DAY
		GROUP BY insight_type
	`)
	if err != nil {
		c.log.Warnw("Failed to collect insight rows", "error", err)
		return
	}

	for _, stat := range stats {
		ch <- prometheus.MustNewConstMetric(c.insights, prometheus.GaugeValue, float64(stat.Count), stat.InsightType)
	}
}

func (c *PipelineCollector) collectReportStatuses(ctx context.Context, ch chan<- prometheus.Metric) {
	type reportStat struct {
		Status string `ch:"status"`
		Count  uint64 `ch:"count"`
	}

	var stats []reportStat
	err := c.clickhouse.Select(ctx, &stats, `
		SELECT status, count() AS count
		FROM (
			SELECT report_id, argMax(status, updated_at) AS status
			FROM report_metadata
			GROUP BY report_id
		)
		GROUP BY status
	`)
	if err != nil {
		c.log.Warnw("Failed to collect report statuses", "error", err)
		return
	}

	for _, stat := range stats {
		ch <- prometheus.MustNewConstMetric(c.reports, prometheus.GaugeValue, float64(stat.Count), stat.Status)
	}
}

func (c *PipelineCollector) collectEmbeddings(ctx context.Context, ch chan<- prometheus.Metric) {
	if c.postgres == nil {
		return
	}

	var count int
	if err := c.postgres.GetContext(ctx, &count, "SELECT COUNT(*) FROM insight_embeddings"); err != nil {
		c.log.Warnw("Failed to collect embedding count", "error", err)
		return
	}

	ch <- prometheus.MustNewConstMetric(c.embeddings, prometheus.GaugeValue, float64(count))
}

// RegisterPipelineCollector registers the warehouse collector
func RegisterPipelineCollector(collector *PipelineCollector) {
	prometheus.MustRegister(collector)
}
