package events

import "time"

// Status is the state reported on the dashboard topic
type Status string

const (
	StatusInProgress Status = "IN_PROGRESS"
	StatusRouted     Status = "ROUTED"
	StatusCompleted  Status = "COMPLETED"
	StatusSkipped    Status = "SKIPPED"
	StatusFailed     Status = "FAILED"
)

// Snapshot is the price summary attached to a fetcher COMPLETED update
type Snapshot struct {
	CurrentPrice     *float64 `json:"current_price"`
	DayChangePercent *float64 `json:"day_change_percent"`
}

// StatusUpdate is a fire-and-forget progress broadcast for dashboards
type StatusUpdate struct {
	RequestID     string    `json:"request_id"`
	Status        Status    `json:"status"`
	Agent         string    `json:"agent"`
	Message       string    `json:"message"`
	Timestamp     time.Time `json:"timestamp"`
	DataSnapshot  *Snapshot `json:"data_snapshot,omitempty"`
	ReportID      string    `json:"report_id,omitempty"`
	GCSURI        string    `json:"gcs_uri,omitempty"`
	InsightsCount int       `json:"insights_count,omitempty"`
}

