package clickhouse

import (
	"context"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/internal/domain/financial"
	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/internal/metrics"
	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/pkg/errors"
)

// Compile-time check
var _ financial.Repository = (*FinancialMetricsRepository)(nil)

const metricColumns = `
	ticker, date, open, high, low, close, volume,
	market_cap, pe_ratio, eps, revenue, net_income, debt_to_equity, roe,
	current_price, day_change_percent, fifty_two_week_high, fifty_two_week_low,
	moving_average_50, moving_average_200, rsi, beta, cagr,
	geographical_exposure, risk_signals, sector_performance_index,
	data_source, symbol_used, data_availability, ingestion_timestamp`

// FinancialMetricsRepository implements financial.Repository using ClickHouse
type FinancialMetricsRepository struct {
	conn driver.Conn
}

// NewFinancialMetricsRepository creates a new financial metrics repository
func NewFinancialMetricsRepository(conn driver.Conn) *FinancialMetricsRepository {
	return &FinancialMetricsRepository{conn: conn}
}

// Insert appends one record
func (r *FinancialMetricsRepository) Insert(ctx context.Context, m *financial.Metric) error {
	if m == nil {
		return errors.NewValidationError("metric", "is nil", nil)
	}
	if m.IngestionTimestamp.IsZero() {
		m.IngestionTimestamp = time.Now().UTC()
	}

	start := time.Now()
	err := r.insert(ctx, m)
	metrics.RecordDBQuery("clickhouse", "insert_financial_metric", time.Since(start), err)
	return err
}

func (r *FinancialMetricsRepository) insert(ctx context.Context, m *financial.Metric) error {
	batch, err := r.conn.PrepareBatch(ctx, `INSERT INTO financial_metrics (`+metricColumns+`)`)
	if err != nil {
		return errors.Wrap(err, "failed to prepare batch")
	}

	err = batch.Append(
		m.Ticker, m.Date, m.Open, m.High, m.Low, m.Close, m.Volume,
		m.MarketCap, m.PERatio, m.EPS, m.Revenue, m.NetIncome, m.DebtToEquity, m.ROE,
		m.CurrentPrice, m.DayChangePercent, m.FiftyTwoWeekHigh, m.FiftyTwoWeekLow,
		m.MovingAverage50, m.MovingAverage200, m.RSI, m.Beta, m.CAGR,
		m.GeographicalExposure, m.RiskSignals, m.SectorPerformanceIndex,
		m.DataSource, m.SymbolUsed, m.DataAvailability, m.IngestionTimestamp,
	)
	if err != nil {
		return errors.Wrap(err, "failed to append financial metric")
	}

	if err := batch.Send(); err != nil {
		return errors.Wrap(err, "failed to send financial metric")
	}
	return nil
}

// ListRange returns the latest ingested row per date within [start, end], ascending by date
func (r *FinancialMetricsRepository) ListRange(ctx context.Context, ticker string, start, end time.Time) ([]financial.Metric, error) {
	var rows []financial.Metric

	sql := `
		SELECT * FROM (
			SELECT ` + metricColumns + `
			FROM financial_metrics
			WHERE ticker = $1 AND date >= $2 AND date <= $3
			ORDER BY date, ingestion_timestamp DESC
			LIMIT 1 BY ticker, date
		)
		ORDER BY date ASC`

	began := time.Now()
	err := r.conn.Select(ctx, &rows, sql, ticker, start, end)
	metrics.RecordDBQuery("clickhouse", "list_financial_metrics", time.Since(began), err)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list financial metrics")
	}
	return rows, nil
}

// Latest returns the most recent record for ticker
func (r *FinancialMetricsRepository) Latest(ctx context.Context, ticker string) (*financial.Metric, error) {
	var rows []financial.Metric

	sql := `
		SELECT ` + metricColumns + `
		FROM financial_metrics
		WHERE ticker = $1
		ORDER BY date DESC, ingestion_timestamp DESC
		LIMIT 1`

	start := time.Now()
	err := r.conn.Select(ctx, &rows, sql, ticker)
	metrics.RecordDBQuery("clickhouse", "latest_financial_metric", time.Since(start), err)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query latest financial metric")
	}
	if len(rows) == 0 {
		return nil, errors.ErrNotFound
	}
	return &rows[0], nil
}
