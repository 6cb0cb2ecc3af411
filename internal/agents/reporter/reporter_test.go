package reporter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/internal/agents"
	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/internal/domain/financial"
	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/internal/domain/insight"
	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/internal/domain/report"
	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/internal/events"
	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/internal/testsupport"
	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/pkg/errors"
)

const (
	completedTopic = "report-generation-completed-topic"
	statusTopic    = "dashboard-updates-topic"
)

// 2024-05-10 02:00 IST is still 2024-05-09 in UTC
var fixedNow = time.Date(2024, 5, 9, 20, 30, 0, 0, time.UTC)

type fakeReports struct {
	rows      []report.Metadata
	appendErr map[report.Status]error
}

func (r *fakeReports) Append(_ context.Context, m *report.Metadata) error {
	if err := r.appendErr[report.Status(m.Status)]; err != nil {
		return err
	}
	r.rows = append(r.rows, *m)
	return nil
}

func (r *fakeReports) Latest(_ context.Context, id string) (*report.Metadata, error) {
	var latest *report.Metadata
	for i := range r.rows {
		if r.rows[i].ReportID == id {
			latest = &r.rows[i]
		}
	}
	if latest == nil {
		return nil, errors.ErrNotFound
	}
	return latest, nil
}

func (r *fakeReports) History(_ context.Context, id string) ([]report.Metadata, error) {
	var out []report.Metadata
	for _, row := range r.rows {
		if row.ReportID == id {
			out = append(out, row)
		}
	}
	return out, nil
}

type fakeMetrics struct {
	financial.Repository
	latest *financial.Metric
	err    error
}

func (r *fakeMetrics) Latest(context.Context, string) (*financial.Metric, error) {
	if r.err != nil {
		return nil, r.err
	}
	if r.latest == nil {
		return nil, errors.ErrNotFound
	}
	return r.latest, nil
}

type fakeInsights struct {
	insight.Repository
	found []insight.Insight
	since time.Time
}

func (r *fakeInsights) ListSince(_ context.Context, _ string, since time.Time) ([]insight.Insight, error) {
	r.since = since
	return r.found, nil
}

type fakeGenerator struct {
	text    string
	err     error
	prompts []string
}

func (g *fakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	g.prompts = append(g.prompts, prompt)
	return g.text, g.err
}

func (g *fakeGenerator) Model() string { return "fake-model" }

type fakeStore struct {
	err    error
	writes map[string]string
}

func (s *fakeStore) Put(_ context.Context, key string, content []byte) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.writes[key] = string(content)
	return "gs://reports-bucket/" + key, nil
}

func (s *fakeStore) Backend() string { return "fake" }

type fixture struct {
	reporter  *Reporter
	pub       *testsupport.RecordingPublisher
	reports   *fakeReports
	metrics   *fakeMetrics
	insights  *fakeInsights
	generator *fakeGenerator
	store     *fakeStore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ist, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)

	f := &fixture{
		pub:     testsupport.NewRecordingPublisher(),
		reports: &fakeReports{},
		metrics: &fakeMetrics{latest: &financial.Metric{
			Ticker:       "IBM",
			Date:         time.Date(2024, 5, 9, 0, 0, 0, 0, time.UTC),
			CurrentPrice: financial.Float(171.25),
			Volume:       financial.Int(4512300),
			MarketCap:    financial.Float(156.9e9),
		}},
		insights: &fakeInsights{found: []insight.Insight{{
			InsightType:    insight.TypeOverallPriceTrend,
			GenerationDate: time.Date(2024, 5, 9, 0, 0, 0, 0, time.UTC),
			SummaryText:    "IBM climbed steadily.",
		}}},
		generator: &fakeGenerator{text: "IBM executive summary"},
		store:     &fakeStore{writes: map[string]string{}},
	}

	f.reporter = New(f.pub, f.reports, f.metrics, f.insights, f.generator, f.store, Config{
		CompletedTopic: completedTopic,
		StatusTopic:    statusTopic,
		Location:       ist,
	})
	f.reporter.SetClock(func() time.Time { return fixedNow })
	f.reporter.newID = func() string { return "rep-1" }
	return f
}

func (f *fixture) process(t *testing.T, payload map[string]any) error {
	t.Helper()
	return f.reporter.ProcessMessage(context.Background(), &agents.Message{Payload: payload})
}

func (f *fixture) statuses(t *testing.T) []events.StatusUpdate {
	return f.pub.Statuses(t, statusTopic)
}

func TestReporter_Success(t *testing.T) {
	f := newFixture(t)

	err := f.process(t, map[string]any{
		"report_type":    "Executive Summary",
		"company_ticker": "ibm",
		"request_id":     "r-1",
		"parameters":     map[string]any{"horizon": "quarter", "audience": "board"},
	})
	require.NoError(t, err)

	require.Len(t, f.reports.rows, 2)
	assert.Equal(t, string(report.StatusInProgress), f.reports.rows[0].Status)
	assert.Empty(t, f.reports.rows[0].GCSURI)
	assert.Equal(t, string(report.StatusCompleted), f.reports.rows[1].Status)
	assert.Equal(t, "gs://reports-bucket/reports/rep-1.txt", f.reports.rows[1].GCSURI)
	for _, row := range f.reports.rows {
		assert.Equal(t, "rep-1", row.ReportID)
		assert.Equal(t, "IBM", row.CompanyTicker)
		assert.Equal(t, time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC), row.ReportDate, "defaults to today in the market timezone")
	}

	assert.Equal(t, map[string]string{"reports/rep-1.txt": "IBM executive summary"}, f.store.writes)
	assert.Equal(t, time.Date(2024, 5, 3, 0, 0, 0, 0, time.UTC), f.insights.since)

	require.Len(t, f.generator.prompts, 1)
	prompt := f.generator.prompts[0]
	assert.Contains(t, prompt, "Generate an executive summary for IBM")
	assert.Contains(t, prompt, "Current Price: 171.25")
	assert.Contains(t, prompt, "Volume: 4,512,300")
	assert.Contains(t, prompt, "Market Cap: 156.9G")
	assert.Contains(t, prompt, "- overall_price_trend (2024-05-09): IBM climbed steadily.")
	assert.Contains(t, prompt, "audience: board\nhorizon: quarter")

	triggers := f.pub.OnTopic(completedTopic)
	require.Len(t, triggers, 1)
	assert.Equal(t, map[string]any{
		"report_id":      "rep-1",
		"report_type":    "Executive Summary",
		"company_ticker": "IBM",
		"gcs_uri":        "gs://reports-bucket/reports/rep-1.txt",
		"request_id":     "r-1",
	}, triggers[0].Decode(t))

	statuses := f.statuses(t)
	require.Len(t, statuses, 2)
	assert.Equal(t, events.StatusInProgress, statuses[0].Status)
	assert.Equal(t, events.StatusCompleted, statuses[1].Status)
	assert.Equal(t, "rep-1", statuses[1].ReportID)
	assert.Equal(t, "gs://reports-bucket/reports/rep-1.txt", statuses[1].GCSURI)
}

func TestReporter_MissingData(t *testing.T) {
	f := newFixture(t)
	f.metrics.latest = nil
	f.insights.found = nil

	require.NoError(t, f.process(t, map[string]any{
		"report_type":    "Executive Summary",
		"company_ticker": "NODATA",
		"report_date":    "2024-05-01",
	}))

	prompt := f.generator.prompts[0]
	assert.Contains(t, prompt, "No financial data found for NODATA.")
	assert.Contains(t, prompt, "No numerical insights found for NODATA.")
	assert.Contains(t, prompt, "Report Date: 2024-05-01")
}

func TestReporter_MetricLookupErrorIsNotFatal(t *testing.T) {
	f := newFixture(t)
	f.metrics.err = errors.New("clickhouse timeout")

	require.NoError(t, f.process(t, map[string]any{"report_type": "Executive Summary", "company_ticker": "IBM"}))
	assert.Contains(t, f.generator.prompts[0], "No financial data found for IBM.")
}

func TestReporter_SectorOverview(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.process(t, map[string]any{"report_type": "Market Overview", "sector": "Banking", "request_id": "r-2"}))

	prompt := f.generator.prompts[0]
	assert.Contains(t, prompt, "Sector: Banking")
	assert.NotContains(t, prompt, "Current Price")
	assert.Equal(t, "Banking", f.reports.rows[1].Sector)
}

func TestReporter_RejectsBeforePersistence(t *testing.T) {
	payloads := []map[string]any{
		{"company_ticker": "IBM", "request_id": "r-3"},
		{"report_type": "Executive Summary", "request_id": "r-3"},
		{"report_type": "Executive Summary", "company_ticker": "IBM", "report_date": "May 10"},
	}

	for _, p := range payloads {
		f := newFixture(t)

		err := f.process(t, p)
		assert.True(t, errors.Is(err, errors.ErrInvalidInput), "%v", p)
		assert.Empty(t, f.reports.rows)

		statuses := f.statuses(t)
		require.Len(t, statuses, 1)
		assert.Equal(t, events.StatusFailed, statuses[0].Status)
	}
}

func TestReporter_UnknownType(t *testing.T) {
	f := newFixture(t)

	err := f.process(t, map[string]any{"report_type": "Quarterly Deep Dive", "company_ticker": "IBM", "request_id": "r-4"})
	assert.True(t, errors.Is(err, errors.ErrUnknownReportType))

	require.Len(t, f.reports.rows, 2)
	assert.Equal(t, string(report.StatusInProgress), f.reports.rows[0].Status)
	assert.Equal(t, string(report.StatusFailed), f.reports.rows[1].Status)
	assert.Equal(t, f.reports.rows[0].ReportID, f.reports.rows[1].ReportID)
	assert.Empty(t, f.reports.rows[1].GCSURI)
	assert.NotEmpty(t, f.reports.rows[1].ErrorMessage)

	assert.Empty(t, f.generator.prompts)
	assert.Empty(t, f.store.writes)
	assert.Empty(t, f.pub.OnTopic(completedTopic))

	statuses := f.statuses(t)
	assert.Equal(t, events.StatusFailed, statuses[len(statuses)-1].Status)
	assert.Equal(t, "rep-1", statuses[len(statuses)-1].ReportID)
}

func TestReporter_StepFailures(t *testing.T) {
	tests := []struct {
		name    string
		arrange func(f *fixture)
		is      error
		writes  int
	}{
		{
			name:    "model error",
			arrange: func(f *fixture) { f.generator.err = errors.New("deadline exceeded") },
			is:      errors.ErrGenerationFailure,
		},
		{
			name:    "blank model output",
			arrange: func(f *fixture) { f.generator.text = "  \n" },
			is:      errors.ErrGenerationFailure,
		},
		{
			name:    "model not ready",
			arrange: func(f *fixture) { f.generator.err = errors.ErrNotReady },
			is:      errors.ErrNotReady,
		},
		{
			name:    "artifact write",
			arrange: func(f *fixture) { f.store.err = errors.ErrUnavailable },
			is:      errors.ErrUnavailable,
		},
		{
			name:    "trigger publish",
			arrange: func(f *fixture) { f.pub.FailTopics[completedTopic] = errors.New("broker down") },
			is:      errors.ErrPublishFailure,
			writes:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			tt.arrange(f)

			err := f.process(t, map[string]any{"report_type": "Executive Summary", "company_ticker": "IBM", "request_id": "r-5"})
			assert.True(t, errors.Is(err, tt.is), "got %v", err)

			last := f.reports.rows[len(f.reports.rows)-1]
			assert.Equal(t, string(report.StatusFailed), last.Status)
			assert.Empty(t, last.GCSURI)
			assert.Len(t, f.store.writes, tt.writes)

			statuses := f.statuses(t)
			assert.Equal(t, events.StatusFailed, statuses[len(statuses)-1].Status)
		})
	}
}

func TestReporter_FailedRowErrorKeepsCause(t *testing.T) {
	f := newFixture(t)
	f.generator.err = errors.New("deadline exceeded")
	f.reports.appendErr = map[report.Status]error{report.StatusFailed: errors.New("clickhouse down")}

	err := f.process(t, map[string]any{"report_type": "Executive Summary", "company_ticker": "IBM"})
	assert.True(t, errors.Is(err, errors.ErrGenerationFailure))
	assert.Contains(t, f.statuses(t)[1].Message, "deadline exceeded")
}

func TestReporter_InProgressRowFailure(t *testing.T) {
	f := newFixture(t)
	f.reports.appendErr = map[report.Status]error{report.StatusInProgress: errors.New("clickhouse down")}

	err := f.process(t, map[string]any{"report_type": "Executive Summary", "company_ticker": "IBM"})
	require.Error(t, err)
	assert.Empty(t, f.generator.prompts)

	statuses := f.statuses(t)
	assert.Equal(t, events.StatusFailed, statuses[len(statuses)-1].Status)
}

func TestLookupHandler(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.process(t, map[string]any{"report_type": "Executive Summary", "company_ticker": "IBM", "request_id": "r-6"}))

	mux := http.NewServeMux()
	mux.Handle("GET /reports/{id}", NewLookupHandler(f.reports))

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/reports/rep-1", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var view ReportView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Equal(t, "rep-1", view.ReportID)
	assert.Equal(t, "COMPLETED", view.Status)
	assert.Equal(t, "gs://reports-bucket/reports/rep-1.txt", view.GCSURI)
	require.Len(t, view.History, 2)
	assert.Equal(t, "IN_PROGRESS", view.History[0].Status)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/reports/missing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestReporter_RedeliveryCreatesNewReport(t *testing.T) {
	f := newFixture(t)
	n := 0
	f.reporter.newID = func() string {
		n++
		return fmt.Sprintf("rep-%d", n)
	}
	h := agents.NewHandler(f.reporter, events.Codec{})

	raw, err := events.Encode(map[string]any{
		"report_type":    "Executive Summary",
		"company_ticker": "IBM",
		"request_id":     "r-dup",
	})
	require.NoError(t, err)
	body, err := events.Wrap(raw, "m-dup", fixedNow, map[string]string{"topic": "report-generation-requests-topic"}, "reporter-sub")
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, h.Deliver(context.Background(), body))
	assert.Equal(t, http.StatusOK, h.Deliver(context.Background(), body))

	triggers := f.pub.OnTopic(completedTopic)
	require.Len(t, triggers, 2)
	assert.Equal(t, "rep-1", triggers[0].Decode(t)["report_id"])
	assert.Equal(t, "rep-2", triggers[1].Decode(t)["report_id"])
	assert.Len(t, f.store.writes, 2)

	statuses := f.statuses(t)
	require.Len(t, statuses, 4)
	assert.Equal(t, events.StatusCompleted, statuses[1].Status)
	assert.Equal(t, events.StatusCompleted, statuses[3].Status)
	assert.NotEqual(t, statuses[1].ReportID, statuses[3].ReportID)
}
