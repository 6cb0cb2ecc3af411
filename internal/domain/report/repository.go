package report

import "context"

// Repository defines persistence for report metadata (ClickHouse)
type Repository interface {
	// Append writes a new lifecycle row
	Append(ctx context.Context, m *Metadata) error

	// Latest returns the newest row for reportID, or errors.ErrNotFound
	Latest(ctx context.Context, reportID string) (*Metadata, error)

	// History returns every row for reportID, oldest first
	History(ctx context.Context, reportID string) ([]Metadata, error)
}
