package reporter

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/internal/adapters/artifacts"
	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/internal/adapters/llm"
	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/internal/agents"
	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/internal/domain/financial"
	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/internal/domain/insight"
	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/internal/domain/report"
	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/internal/events"
	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/pkg/errors"
	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/pkg/templates"
)

// Name is the report generator's agent name on status updates
const Name = "report_generator"

// Report types accepted on report-generation-requests-topic
const (
	TypeExecutiveSummary = "Executive Summary"
	TypeMarketOverview   = "Market Overview"
)

var templateIDs = map[string]string{
	TypeExecutiveSummary: templates.ReportExecutiveSummary,
	TypeMarketOverview:   templates.ReportMarketOverview,
}

const defaultInsightDays = 7

// Request asks for one generated report
type Request struct {
	ReportType    string         `json:"report_type"`
	CompanyTicker string         `json:"company_ticker"`
	Ticker        string         `json:"ticker"`
	Sector        string         `json:"sector"`
	RequestID     string         `json:"request_id"`
	Parameters    map[string]any `json:"parameters"`
	ReportDate    string         `json:"report_date"`
}

// Completed announces a stored report artifact
type Completed struct {
	ReportID      string `json:"report_id"`
	ReportType    string `json:"report_type"`
	CompanyTicker string `json:"company_ticker"`
	GCSURI        string `json:"gcs_uri"`
	RequestID     string `json:"request_id"`
}

type Config struct {
	CompletedTopic string
	StatusTopic    string
	// Location decides the default report date
	Location    *time.Location
	InsightDays int
}

// Reporter renders, generates and stores reports
type Reporter struct {
	*agents.Base
	reports   report.Repository
	metrics   financial.Repository
	insights  insight.Repository
	generator llm.Generator
	store     artifacts.Store
	templates *templates.Registry

	completedTopic string
	loc            *time.Location
	insightWindow  time.Duration
	newID          func() string
}

var _ agents.Agent = (*Reporter)(nil)

func New(
	publisher agents.Publisher,
	reports report.Repository,
	metricRepo financial.Repository,
	insightRepo insight.Repository,
	generator llm.Generator,
	store artifacts.Store,
	cfg Config,
) *Reporter {
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	days := cfg.InsightDays
	if days <= 0 {
		days = defaultInsightDays
	}

	return &Reporter{
		Base:           agents.NewBase(Name, publisher, cfg.StatusTopic),
		reports:        reports,
		metrics:        metricRepo,
		insights:       insightRepo,
		generator:      generator,
		store:          store,
		templates:      templates.Get(),
		completedTopic: cfg.CompletedTopic,
		loc:            loc,
		insightWindow:  time.Duration(days) * 24 * time.Hour,
		newID:          uuid.NewString,
	}
}

func (r *Reporter) ProcessMessage(ctx context.Context, msg *agents.Message) error {
	req, err := agents.Decode[Request](msg)
	if err != nil {
		requestID, _ := msg.Payload["request_id"].(string)
		return r.Fail(ctx, requestID, errors.Wrap(err, "invalid report request"))
	}

	req.ReportType = strings.TrimSpace(req.ReportType)
	req.CompanyTicker = strings.ToUpper(strings.TrimSpace(req.CompanyTicker))
	if req.CompanyTicker == "" {
		req.CompanyTicker = strings.ToUpper(strings.TrimSpace(req.Ticker))
	}
	req.Sector = strings.TrimSpace(req.Sector)

	if req.ReportType == "" {
		return r.Fail(ctx, req.RequestID, errors.NewValidationError("report_type", "is required", nil))
	}
	if req.CompanyTicker == "" && req.Sector == "" {
		return r.Fail(ctx, req.RequestID, errors.NewValidationError("company_ticker", "company_ticker or sector is required", nil))
	}

	date, err := r.reportDate(req.ReportDate)
	if err != nil {
		return r.Fail(ctx, req.RequestID, err)
	}

	subject := req.CompanyTicker
	if subject == "" {
		subject = req.Sector
	}

	r.PublishStatus(ctx, events.StatusUpdate{
		RequestID: req.RequestID,
		Status:    events.StatusInProgress,
		Message:   fmt.Sprintf("Generating '%s' report for %s.", req.ReportType, subject),
	})

	meta := report.Metadata{
		ReportID:      r.newID(),
		ReportType:    req.ReportType,
		CompanyTicker: req.CompanyTicker,
		Sector:        req.Sector,
		ReportDate:    date,
		RequestID:     req.RequestID,
	}
	if err := r.appendRow(ctx, meta, report.StatusInProgress, "", ""); err != nil {
		return r.Fail(ctx, req.RequestID, errors.Wrapf(err, "failed to record report %s", meta.ReportID))
	}

	uri, err := r.generate(ctx, req, meta)
	if err != nil {
		return r.failReport(ctx, meta, err)
	}

	r.PublishStatus(ctx, events.StatusUpdate{
		RequestID: req.RequestID,
		Status:    events.StatusCompleted,
		Message:   fmt.Sprintf("'%s' report generated for %s.", req.ReportType, subject),
		ReportID:  meta.ReportID,
		GCSURI:    uri,
	})
	return nil
}

// generate runs every step after the IN_PROGRESS row and returns the artifact location
func (r *Reporter) generate(ctx context.Context, req Request, meta report.Metadata) (string, error) {
	data := templates.ReportData{
		Ticker:     req.CompanyTicker,
		Sector:     req.Sector,
		ReportDate: meta.ReportDate.Format(financial.DateLayout),
		Parameters: renderParameters(req.Parameters),
	}
	if req.CompanyTicker != "" {
		data.FinancialData = r.financialBlock(ctx, req.CompanyTicker)
		data.Insights = r.insightBlock(ctx, req.CompanyTicker, meta.ReportDate)
	}

	templateID, ok := templateIDs[req.ReportType]
	if !ok {
		return "", errors.Newf("%w: %q", errors.ErrUnknownReportType, req.ReportType)
	}
	prompt, err := r.templates.Render(templateID, data)
	if err != nil {
		return "", errors.Wrapf(err, "failed to render %s", templateID)
	}

	text, err := r.generator.Generate(ctx, prompt)
	if err != nil {
		if errors.Is(err, errors.ErrGenerationFailure) {
			return "", err
		}
		return "", errors.Newf("%w: %w", errors.ErrGenerationFailure, err)
	}
	if strings.TrimSpace(text) == "" {
		return "", errors.Newf("%w: model returned no text", errors.ErrGenerationFailure)
	}

	uri, err := r.store.Put(ctx, report.ArtifactPath(meta.ReportID), []byte(text))
	if err != nil {
		return "", errors.Wrap(err, "failed to store report artifact")
	}

	if err := r.appendRow(ctx, meta, report.StatusCompleted, uri, ""); err != nil {
		return "", err
	}

	completed := Completed{
		ReportID:      meta.ReportID,
		ReportType:    meta.ReportType,
		CompanyTicker: meta.CompanyTicker,
		GCSURI:        uri,
		RequestID:     meta.RequestID,
	}
	if err := r.Publish(ctx, r.completedTopic, meta.RequestID, completed); err != nil {
		return "", err
	}

	r.Log().Infow("Report generated",
		"report_id", meta.ReportID,
		"report_type", meta.ReportType,
		"request_id", meta.RequestID,
		"uri", uri,
	)
	return uri, nil
}

// failReport records the FAILED row and status. A failure writing the row is
// logged; the original error is returned.
func (r *Reporter) failReport(ctx context.Context, meta report.Metadata, cause error) error {
	if err := r.appendRow(ctx, meta, report.StatusFailed, "", cause.Error()); err != nil {
		r.Log().Errorw("Failed to record report failure",
			"report_id", meta.ReportID,
			"request_id", meta.RequestID,
			"cause", cause.Error(),
			"error", err,
		)
	}

	update := events.StatusUpdate{
		RequestID: meta.RequestID,
		Status:    events.StatusFailed,
		Message:   fmt.Sprintf("Report %s failed: %v", meta.ReportID, cause),
		ReportID:  meta.ReportID,
	}
	r.PublishStatus(ctx, update)
	return cause
}

func (r *Reporter) appendRow(ctx context.Context, meta report.Metadata, status report.Status, uri, message string) error {
	meta.Status = string(status)
	meta.GCSURI = uri
	meta.ErrorMessage = message
	meta.UpdatedAt = r.Now().UTC()
	return r.reports.Append(ctx, &meta)
}

// reportDate parses raw or defaults to today in the market timezone
func (r *Reporter) reportDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		y, m, d := r.Now().In(r.loc).Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
	}

	date, err := time.Parse(financial.DateLayout, raw)
	if err != nil {
		return time.Time{}, errors.NewValidationError("report_date", "must be YYYY-MM-DD", raw)
	}
	return date, nil
}

func (r *Reporter) financialBlock(ctx context.Context, ticker string) string {
	m, err := r.metrics.Latest(ctx, ticker)
	if err != nil {
		if !errors.Is(err, errors.ErrNotFound) {
			r.Log().Warnw("Financial data lookup failed", "ticker", ticker, "error", err)
		}
		return fmt.Sprintf("No financial data found for %s.", ticker)
	}
	return renderMetric(m)
}

func (r *Reporter) insightBlock(ctx context.Context, ticker string, date time.Time) string {
	found, err := r.insights.ListSince(ctx, ticker, date.Add(-r.insightWindow))
	if err != nil {
		r.Log().Warnw("Insight lookup failed", "ticker", ticker, "error", err)
	}
	if len(found) == 0 {
		return fmt.Sprintf("No numerical insights found for %s.", ticker)
	}

	lines := make([]string, 0, len(found))
	for _, in := range found {
		lines = append(lines, fmt.Sprintf("- %s (%s): %s",
			in.InsightType, in.GenerationDate.Format(financial.DateLayout), in.SummaryText))
	}
	return strings.Join(lines, "\n")
}

func renderMetric(m *financial.Metric) string {
	lines := []string{
		"Date: " + m.DateString(),
		"Current Price: " + templates.FormatNumber(m.CurrentPrice),
		"Day Change: " + templates.FormatPercent(m.DayChangePercent),
		"Open / High / Low / Close: " + strings.Join([]string{
			templates.FormatNumber(m.Open),
			templates.FormatNumber(m.High),
			templates.FormatNumber(m.Low),
			templates.FormatNumber(m.Close),
		}, " / "),
		"Volume: " + templates.FormatCount(m.Volume),
		"52 Week Range: " + templates.FormatNumber(m.FiftyTwoWeekLow) + " - " + templates.FormatNumber(m.FiftyTwoWeekHigh),
		"50 Day MA: " + templates.FormatNumber(m.MovingAverage50),
		"200 Day MA: " + templates.FormatNumber(m.MovingAverage200),
		"RSI (14): " + templates.FormatNumber(m.RSI),
		"Market Cap: " + templates.FormatCompact(m.MarketCap),
		"P/E Ratio: " + templates.FormatNumber(m.PERatio),
		"EPS: " + templates.FormatNumber(m.EPS),
		"Revenue: " + templates.FormatCompact(m.Revenue),
		"Beta: " + templates.FormatNumber(m.Beta),
	}
	if m.DataSource != nil {
		lines = append(lines, "Source: "+*m.DataSource)
	}
	return strings.Join(lines, "\n")
}

func renderParameters(params map[string]any) string {
	if len(params) == 0 {
		return "None"
	}

	lines := make([]string, 0, len(params))
	for _, k := range slices.Sorted(maps.Keys(params)) {
		lines = append(lines, fmt.Sprintf("%s: %v", k, params[k]))
	}
	return strings.Join(lines, "\n")
}
