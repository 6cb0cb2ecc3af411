package report

import "time"

// Status is the lifecycle state of a report
type Status string

const (
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
	StatusFailed     Status = "FAILED"
)

// Metadata is one lifecycle row of a report. Rows are appended, never updated;
// the current state of a report is its row with the greatest UpdatedAt.
type Metadata struct {
	ReportID      string    `ch:"report_id"`
	ReportType    string    `ch:"report_type"`
	CompanyTicker string    `ch:"company_ticker"`
	Sector        string    `ch:"sector"`
	ReportDate    time.Time `ch:"report_date"`
	Status        string    `ch:"status"`
	GCSURI        string    `ch:"gcs_uri"`
	ErrorMessage  string    `ch:"error_message"`
	RequestID     string    `ch:"request_id"`
	UpdatedAt     time.Time `ch:"updated_at"`
}

// ArtifactPath returns the artifact key for a report id
func ArtifactPath(reportID string) string {
	return "reports/" + reportID + ".txt"
}
