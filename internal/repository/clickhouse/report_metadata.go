package clickhouse

import (
	"context"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/internal/domain/report"
	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/internal/metrics"
	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/pkg/errors"
)

// Compile-time check
var _ report.Repository = (*ReportMetadataRepository)(nil)

// ReportMetadataRepository implements report.Repository using ClickHouse.
// Lifecycle changes are appended; argMax over updated_at gives the current row.
type ReportMetadataRepository struct {
	conn driver.Conn
}

// NewReportMetadataRepository creates a new report metadata repository
func NewReportMetadataRepository(conn driver.Conn) *ReportMetadataRepository {
	return &ReportMetadataRepository{conn: conn}
}

// Append writes a new lifecycle row. UpdatedAt defaults to now.
func (r *ReportMetadataRepository) Append(ctx context.Context, m *report.Metadata) error {
	if m.UpdatedAt.IsZero() {
		m.UpdatedAt = time.Now().UTC()
	}

	start := time.Now()
	err := r.conn.Exec(ctx, `
		INSERT INTO report_metadata (
			report_id, report_type, company_ticker, sector, report_date,
			status, gcs_uri, error_message, request_id, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10
		)`,
		m.ReportID, m.ReportType, m.CompanyTicker, m.Sector, m.ReportDate,
		m.Status, m.GCSURI, m.ErrorMessage, m.RequestID, m.UpdatedAt,
	)
	metrics.RecordDBQuery("clickhouse", "append_report_metadata", time.Since(start), err)
	if err != nil {
		return errors.Wrapf(err, "failed to append %s row for report %s", m.Status, m.ReportID)
	}
	return nil
}

// Latest returns the newest row for reportID
func (r *ReportMetadataRepository) Latest(ctx context.Context, reportID string) (*report.Metadata, error) {
	var rows []report.Metadata

	sql := `
		SELECT
			report_id,
			argMax(report_type, updated_at) AS report_type,
			argMax(company_ticker, updated_at) AS company_ticker,
			argMax(sector, updated_at) AS sector,
			argMax(report_date, updated_at) AS report_date,
			argMax(status, updated_at) AS status,
			argMax(gcs_uri, updated_at) AS gcs_uri,
			argMax(error_message, updated_at) AS error_message,
			argMax(request_id, updated_at) AS request_id,
			max(updated_at) AS updated_at
		FROM report_metadata
		WHERE report_id = $1
		GROUP BY report_id`

	start := time.Now()
	err := r.conn.Select(ctx, &rows, sql, reportID)
	metrics.RecordDBQuery("clickhouse", "latest_report_metadata", time.Since(start), err)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query report metadata")
	}
	if len(rows) == 0 {
		return nil, errors.ErrNotFound
	}
	return &rows[0], nil
}

// History returns every row for reportID, oldest first
func (r *ReportMetadataRepository) History(ctx context.Context, reportID string) ([]report.Metadata, error) {
	var rows []report.Metadata

	sql := `
		SELECT report_id, report_type, company_ticker, sector, report_date,
			status, gcs_uri, error_message, request_id, updated_at
		FROM report_metadata
		WHERE report_id = $1
		ORDER BY updated_at ASC`

	start := time.Now()
	err := r.conn.Select(ctx, &rows, sql, reportID)
	metrics.RecordDBQuery("clickhouse", "report_history", time.Since(start), err)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query report history")
	}
	return rows, nil
}
