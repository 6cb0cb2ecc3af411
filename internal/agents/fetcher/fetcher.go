package fetcher

import (
	"context"
	"fmt"
	"strings"

	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/internal/adapters/marketdata"
	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/internal/agents"
	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/internal/domain/financial"
	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/internal/events"
	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/pkg/errors"
)

// Name is the fetcher's agent name on status updates
const Name = "financial_metrics"

// DataTypeFinancialMetrics tags the availability trigger
const DataTypeFinancialMetrics = "financial_metrics"

// Request asks for the latest metrics of one ticker
type Request struct {
	Ticker    string `json:"ticker"`
	RequestID string `json:"request_id"`
}

// DataAvailable announces a persisted metric record
type DataAvailable struct {
	Ticker    string `json:"ticker"`
	DataType  string `json:"data_type"`
	Date      string `json:"date"`
	RequestID string `json:"request_id"`
}

// Fetcher pulls market data for a ticker, stores it and announces it
type Fetcher struct {
	*agents.Base
	provider       marketdata.Provider
	repo           financial.Repository
	availableTopic string
}

var _ agents.Agent = (*Fetcher)(nil)

// New creates a fetcher. Triggers go to availableTopic, statuses to statusTopic.
func New(
	publisher agents.Publisher,
	provider marketdata.Provider,
	repo financial.Repository,
	availableTopic string,
	statusTopic string,
) *Fetcher {
	return &Fetcher{
		Base:           agents.NewBase(Name, publisher, statusTopic),
		provider:       provider,
		repo:           repo,
		availableTopic: availableTopic,
	}
}

func (f *Fetcher) ProcessMessage(ctx context.Context, msg *agents.Message) error {
	req, err := agents.Decode[Request](msg)
	if err != nil {
		requestID, _ := msg.Payload["request_id"].(string)
		return f.Fail(ctx, requestID, errors.Wrap(err, "invalid financial metrics request"))
	}

	ticker := strings.ToUpper(strings.TrimSpace(req.Ticker))
	if ticker == "" {
		return f.Fail(ctx, req.RequestID, errors.NewValidationError("ticker", "is required", nil))
	}

	f.PublishStatus(ctx, events.StatusUpdate{
		RequestID: req.RequestID,
		Status:    events.StatusInProgress,
		Message:   fmt.Sprintf("Fetching financial metrics for %s", ticker),
	})

	metric, err := f.provider.FetchKeyMetrics(ctx, ticker)
	if err != nil {
		return f.Fail(ctx, req.RequestID, errors.Wrapf(err, "failed to fetch financial metrics for %s", ticker))
	}
	if metric == nil || metric.CurrentPrice == nil {
		return f.Fail(ctx, req.RequestID, errors.Wrapf(errors.ErrNoData, "no usable financial data retrieved for %s", ticker))
	}

	metric.Ticker = ticker
	metric.IngestionTimestamp = f.Now()

	if err := f.repo.Insert(ctx, metric); err != nil {
		return f.Fail(ctx, req.RequestID, errors.Wrapf(err, "failed to store financial metrics for %s", ticker))
	}

	f.Log().Infow("Financial metrics stored",
		"request_id", req.RequestID,
		"ticker", ticker,
		"date", metric.DateString(),
		"data_availability", deref(metric.DataAvailability),
	)

	trigger := DataAvailable{
		Ticker:    ticker,
		DataType:  DataTypeFinancialMetrics,
		Date:      metric.DateString(),
		RequestID: req.RequestID,
	}
	if err := f.Publish(ctx, f.availableTopic, req.RequestID, trigger); err != nil {
		return f.Fail(ctx, req.RequestID, errors.Wrapf(err, "failed to announce financial metrics for %s", ticker))
	}

	f.PublishStatus(ctx, events.StatusUpdate{
		RequestID: req.RequestID,
		Status:    events.StatusCompleted,
		Message:   fmt.Sprintf("Financial metrics for %s fetched and stored.", ticker),
		DataSnapshot: &events.Snapshot{
			CurrentPrice:     metric.CurrentPrice,
			DayChangePercent: metric.DayChangePercent,
		},
	})
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
