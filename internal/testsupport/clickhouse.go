package testsupport

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/internal/adapters/clickhouse"
	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/internal/adapters/config"
	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/internal/domain/financial"
)

// ClickHouseTestHelper manages schema and cleanup for ClickHouse integration tests.
type ClickHouseTestHelper struct {
	client *clickhouse.Client
}

// NewClickHouseTestHelper connects, applies the warehouse schema and closes the client on cleanup.
func NewClickHouseTestHelper(t *testing.T, cfg config.ClickHouseConfig) *ClickHouseTestHelper {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := clickhouse.NewClient(ctx, cfg)
	if err != nil {
		t.Fatalf("failed to connect to clickhouse: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })

	if err := client.Migrate(ctx); err != nil {
		t.Fatalf("failed to migrate clickhouse: %v", err)
	}

	return &ClickHouseTestHelper{client: client}
}

// Client exposes the raw ClickHouse client for queries.
func (h *ClickHouseTestHelper) Client() *clickhouse.Client {
	return h.client
}

// Count returns the number of rows in table matching condition
func (h *ClickHouseTestHelper) Count(t *testing.T, table, condition string, args ...interface{}) uint64 {
	t.Helper()

	var count uint64
	row := h.client.Conn().QueryRow(context.Background(), fmt.Sprintf("SELECT count() FROM %s WHERE %s", table, condition), args...)
	if err := row.Scan(&count); err != nil {
		t.Fatalf("failed to count %s rows: %v", table, err)
	}
	return count
}

// RegisterTableCleanup deletes rows matching condition after the test completes.
// Tables are shared, so tests scope their rows with unique tickers or ids.
func (h *ClickHouseTestHelper) RegisterTableCleanup(t *testing.T, table, condition string) {
	t.Helper()
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		query := fmt.Sprintf("DELETE FROM %s WHERE %s", table, condition)
		_ = h.client.Exec(ctx, query)
	})
}

// ========================================
// Fixture Builders for ClickHouse Tests
// ========================================

// MetricFixture provides builder pattern for creating test metric records
type MetricFixture struct {
	metric financial.Metric
}

// NewMetricFixture creates a default record for RELIANCE.NS dated today (UTC)
func NewMetricFixture() *MetricFixture {
	today := time.Now().UTC().Truncate(24 * time.Hour)
	return &MetricFixture{
		metric: financial.Metric{
			Ticker:             "RELIANCE.NS",
			Date:               today,
			Open:               financial.Float(2900),
			High:               financial.Float(2950),
			Low:                financial.Float(2880),
			Close:              financial.Float(2935.5),
			Volume:             financial.Int(5_250_000),
			CurrentPrice:       financial.Float(2935.5),
			DayChangePercent:   financial.Float(1.2),
			DataSource:         financial.String("alpha_vantage"),
			SymbolUsed:         financial.String("RELIANCE.BSE"),
			DataAvailability:   financial.String("daily_time_series"),
			IngestionTimestamp: time.Now().UTC(),
		},
	}
}

// WithTicker sets the ticker
func (f *MetricFixture) WithTicker(ticker string) *MetricFixture {
	f.metric.Ticker = ticker
	return f
}

// WithDate sets the record date
func (f *MetricFixture) WithDate(date time.Time) *MetricFixture {
	f.metric.Date = date
	return f
}

// WithClose sets close and current price
func (f *MetricFixture) WithClose(close float64) *MetricFixture {
	f.metric.Close = financial.Float(close)
	f.metric.CurrentPrice = financial.Float(close)
	return f
}

// WithVolume sets the volume
func (f *MetricFixture) WithVolume(volume int64) *MetricFixture {
	f.metric.Volume = financial.Int(volume)
	return f
}

// WithIngestion sets the ingestion timestamp
func (f *MetricFixture) WithIngestion(ts time.Time) *MetricFixture {
	f.metric.IngestionTimestamp = ts
	return f
}

// Build returns a copy of the record
func (f *MetricFixture) Build() financial.Metric {
	return f.metric
}

// BuildDaily returns n records on consecutive days ending at the fixture date,
// closing one unit higher each day.
func (f *MetricFixture) BuildDaily(n int) []financial.Metric {
	out := make([]financial.Metric, 0, n)
	base := 0.0
	if f.metric.Close != nil {
		base = *f.metric.Close
	}
	for i := n - 1; i >= 0; i-- {
		m := f.metric
		m.Date = f.metric.Date.AddDate(0, 0, -i)
		closePrice := base - float64(i)
		m.Close = financial.Float(closePrice)
		m.CurrentPrice = financial.Float(closePrice)
		out = append(out, m)
	}
	return out
}
