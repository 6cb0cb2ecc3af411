package fetcher

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/internal/agents"
	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/internal/domain/financial"
	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/internal/events"
	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/internal/testsupport"
	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/pkg/errors"
)

const (
	availableTopic = "financial-data-available-topic"
	statusTopic    = "dashboard-updates-topic"
)

type fakeProvider struct {
	fetch   func(ctx context.Context, ticker string) (*financial.Metric, error)
	tickers []string
}

func (p *fakeProvider) Name() string { return "fake" }

func (p *fakeProvider) FetchKeyMetrics(ctx context.Context, ticker string) (*financial.Metric, error) {
	p.tickers = append(p.tickers, ticker)
	return p.fetch(ctx, ticker)
}

type fakeRepo struct {
	financial.Repository
	insertErr error
	inserted  []*financial.Metric
}

func (r *fakeRepo) Insert(_ context.Context, m *financial.Metric) error {
	if r.insertErr != nil {
		return r.insertErr
	}
	r.inserted = append(r.inserted, m)
	return nil
}

var fixedNow = time.Date(2024, 5, 10, 10, 0, 0, 0, time.UTC)

func usableMetric(_ context.Context, ticker string) (*financial.Metric, error) {
	return &financial.Metric{
		Ticker:           ticker,
		Date:             time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC),
		Close:            financial.Float(2850.5),
		CurrentPrice:     financial.Float(2850.5),
		DayChangePercent: financial.Float(1.25),
		DataAvailability: financial.String("overview,daily_time_series"),
	}, nil
}

func newFetcher(pub agents.Publisher, provider *fakeProvider, repo *fakeRepo) *Fetcher {
	f := New(pub, provider, repo, availableTopic, statusTopic)
	f.SetClock(func() time.Time { return fixedNow })
	return f
}

func message(payload map[string]any) *agents.Message {
	return &agents.Message{Payload: payload}
}

func TestFetcher_Success(t *testing.T) {
	pub := testsupport.NewRecordingPublisher()
	provider := &fakeProvider{fetch: usableMetric}
	repo := &fakeRepo{}
	f := newFetcher(pub, provider, repo)

	err := f.ProcessMessage(context.Background(), message(map[string]any{"ticker": " reliance.ns ", "request_id": "r-1"}))
	require.NoError(t, err)

	assert.Equal(t, []string{"RELIANCE.NS"}, provider.tickers)
	require.Len(t, repo.inserted, 1)
	assert.Equal(t, "RELIANCE.NS", repo.inserted[0].Ticker)
	assert.Equal(t, fixedNow, repo.inserted[0].IngestionTimestamp)

	triggers := pub.OnTopic(availableTopic)
	require.Len(t, triggers, 1)
	assert.Equal(t, "r-1", triggers[0].Key)
	assert.Equal(t, map[string]any{
		"ticker":     "RELIANCE.NS",
		"data_type":  "financial_metrics",
		"date":       "2024-05-10",
		"request_id": "r-1",
	}, triggers[0].Decode(t))

	statuses := pub.Statuses(t, statusTopic)
	require.Len(t, statuses, 2)
	assert.Equal(t, events.StatusInProgress, statuses[0].Status)
	assert.Equal(t, events.StatusCompleted, statuses[1].Status)
	assert.Equal(t, Name, statuses[1].Agent)
	require.NotNil(t, statuses[1].DataSnapshot)
	assert.Equal(t, 2850.5, *statuses[1].DataSnapshot.CurrentPrice)
	assert.Equal(t, 1.25, *statuses[1].DataSnapshot.DayChangePercent)
}

func TestFetcher_MissingTicker(t *testing.T) {
	for _, payload := range []map[string]any{
		{"request_id": "r-2"},
		{"ticker": "", "request_id": "r-2"},
		{"ticker": "   ", "request_id": "r-2"},
		{"ticker": 42, "request_id": "r-2"},
	} {
		pub := testsupport.NewRecordingPublisher()
		provider := &fakeProvider{fetch: usableMetric}
		repo := &fakeRepo{}
		f := newFetcher(pub, provider, repo)

		err := f.ProcessMessage(context.Background(), message(payload))
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrInvalidInput))

		assert.Empty(t, provider.tickers)
		assert.Empty(t, repo.inserted)
		statuses := pub.Statuses(t, statusTopic)
		require.Len(t, statuses, 1)
		assert.Equal(t, events.StatusFailed, statuses[0].Status)
		assert.Equal(t, "r-2", statuses[0].RequestID)
	}
}

func TestFetcher_ProviderFailures(t *testing.T) {
	tests := []struct {
		name  string
		fetch func(context.Context, string) (*financial.Metric, error)
	}{
		{"provider error", func(context.Context, string) (*financial.Metric, error) {
			return nil, errors.ErrRateLimitExceeded
		}},
		{"nil result", func(context.Context, string) (*financial.Metric, error) {
			return nil, nil
		}},
		{"no current price", func(_ context.Context, ticker string) (*financial.Metric, error) {
			return &financial.Metric{Ticker: ticker, MarketCap: financial.Float(1e9)}, nil
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pub := testsupport.NewRecordingPublisher()
			repo := &fakeRepo{}
			f := newFetcher(pub, &fakeProvider{fetch: tt.fetch}, repo)

			err := f.ProcessMessage(context.Background(), message(map[string]any{"ticker": "IBM", "request_id": "r-3"}))
			require.Error(t, err)

			assert.Empty(t, repo.inserted)
			assert.Empty(t, pub.OnTopic(availableTopic))

			statuses := pub.Statuses(t, statusTopic)
			require.Len(t, statuses, 2)
			assert.Equal(t, events.StatusFailed, statuses[1].Status)
			assert.Contains(t, statuses[1].Message, "IBM")
		})
	}
}

func TestFetcher_PersistenceFailurePublishesNoTrigger(t *testing.T) {
	pub := testsupport.NewRecordingPublisher()
	repo := &fakeRepo{insertErr: errors.New("clickhouse unavailable")}
	f := newFetcher(pub, &fakeProvider{fetch: usableMetric}, repo)

	err := f.ProcessMessage(context.Background(), message(map[string]any{"ticker": "IBM", "request_id": "r-4"}))
	require.Error(t, err)

	assert.Empty(t, pub.OnTopic(availableTopic))
	statuses := pub.Statuses(t, statusTopic)
	require.Len(t, statuses, 2)
	assert.Equal(t, events.StatusFailed, statuses[1].Status)
	assert.Contains(t, statuses[1].Message, "clickhouse unavailable")
}

func TestFetcher_TriggerFailure(t *testing.T) {
	pub := testsupport.NewRecordingPublisher()
	pub.FailTopics[availableTopic] = errors.New("broker down")
	repo := &fakeRepo{}
	f := newFetcher(pub, &fakeProvider{fetch: usableMetric}, repo)

	err := f.ProcessMessage(context.Background(), message(map[string]any{"ticker": "IBM", "request_id": "r-5"}))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrPublishFailure))

	require.Len(t, repo.inserted, 1)
	statuses := pub.Statuses(t, statusTopic)
	require.Len(t, statuses, 2)
	assert.Equal(t, events.StatusFailed, statuses[1].Status)
}
