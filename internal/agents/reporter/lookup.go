package reporter

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/internal/domain/report"
	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/pkg/errors"
	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/pkg/logger"
)

// ReportView is the JSON body of GET /reports/{id}
type ReportView struct {
	ReportID      string      `json:"report_id"`
	ReportType    string      `json:"report_type"`
	CompanyTicker string      `json:"company_ticker,omitempty"`
	Sector        string      `json:"sector,omitempty"`
	ReportDate    string      `json:"report_date"`
	Status        string      `json:"status"`
	GCSURI        string      `json:"gcs_uri,omitempty"`
	ErrorMessage  string      `json:"error_message,omitempty"`
	RequestID     string      `json:"request_id,omitempty"`
	UpdatedAt     time.Time   `json:"updated_at"`
	History       []StatusRow `json:"history"`
}

// StatusRow is one lifecycle row in ReportView.History
type StatusRow struct {
	Status       string    `json:"status"`
	GCSURI       string    `json:"gcs_uri,omitempty"`
	ErrorMessage string    `json:"error_message,omitempty"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// LookupHandler serves report status by id. Register it on a pattern with an {id} wildcard.
type LookupHandler struct {
	reports report.Repository
	log     *logger.Logger
}

func NewLookupHandler(reports report.Repository) *LookupHandler {
	return &LookupHandler{
		reports: reports,
		log:     logger.Get().With("component", "report_lookup"),
	}
}

func (h *LookupHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id := r.PathValue("id")
	if id == "" {
		http.Error(w, "report id is required", http.StatusBadRequest)
		return
	}

	latest, err := h.reports.Latest(r.Context(), id)
	if errors.Is(err, errors.ErrNotFound) {
		http.Error(w, "report not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.log.Errorw("Report lookup failed", "report_id", id, "error", err)
		http.Error(w, "lookup failed", http.StatusInternalServerError)
		return
	}

	rows, err := h.reports.History(r.Context(), id)
	if err != nil {
		h.log.Errorw("Report history lookup failed", "report_id", id, "error", err)
		http.Error(w, "lookup failed", http.StatusInternalServerError)
		return
	}

	view := ReportView{
		ReportID:      latest.ReportID,
		ReportType:    latest.ReportType,
		CompanyTicker: latest.CompanyTicker,
		Sector:        latest.Sector,
		ReportDate:    latest.ReportDate.Format("2006-01-02"),
		Status:        latest.Status,
		GCSURI:        latest.GCSURI,
		ErrorMessage:  latest.ErrorMessage,
		RequestID:     latest.RequestID,
		UpdatedAt:     latest.UpdatedAt,
		History:       make([]StatusRow, 0, len(rows)),
	}
	for _, row := range rows {
		view.History = append(view.History, StatusRow{
			Status:       row.Status,
			GCSURI:       row.GCSURI,
			ErrorMessage: row.ErrorMessage,
			UpdatedAt:    row.UpdatedAt,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(view); err != nil {
		h.log.Warnw("Failed to write report view", "report_id", id, "error", err)
	}
}
