package coordinator

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/internal/agents"
	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/internal/events"
	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/internal/testsupport"
	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/pkg/errors"
)

const (
	financialTopic = "financial-data-requests-topic"
	summaryTopic   = "numerical-summaries-requests-topic"
	reportTopic    = "report-generation-requests-topic"
	insightsTopic  = "numerical-insights-processed-topic"
	statusTopic    = "dashboard-updates-topic"
)

func newCoordinator(pub agents.Publisher, autoReport bool) *Coordinator {
	return New(pub, Config{
		Topics: Topics{
			FinancialDataRequests:      financialTopic,
			NumericalSummariesRequests: summaryTopic,
			ReportGenerationRequests:   reportTopic,
			NumericalInsightsProcessed: insightsTopic,
			Status:                     statusTopic,
		},
		AutoReport: autoReport,
	})
}

func request(requestType string, payload map[string]any, requestID string) *agents.Message {
	msg := &agents.Message{
		Payload:    map[string]any{"request_type": requestType, "request_id": requestID},
		Attributes: map[string]string{"topic": "coordinator-requests-topic"},
	}
	if payload != nil {
		msg.Payload["payload"] = payload
	}
	return msg
}

func TestCoordinator_Routes(t *testing.T) {
	tests := []struct {
		name        string
		requestType string
		payload     map[string]any
		topic       string
		agent       string
	}{
		{"financial metrics", TypeFinancialMetrics, map[string]any{"ticker": "IBM"}, financialTopic, "financial_metrics"},
		{"summary by ticker", TypeNumericalSummary, map[string]any{"ticker": "TCS.NS"}, summaryTopic, "numerical_summarizer"},
		{"summary by insight type", TypeNumericalSummary, map[string]any{"insight_type": "overall_price_trend"}, summaryTopic, "numerical_summarizer"},
		{"report by ticker", TypeGenerateReport, map[string]any{"report_type": "Executive Summary", "ticker": "INFY.NS"}, reportTopic, "report_generator"},
		{"report by sector", TypeGenerateReport, map[string]any{"report_type": "Market Overview", "sector": "IT"}, reportTopic, "report_generator"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pub := testsupport.NewRecordingPublisher()
			c := newCoordinator(pub, false)

			err := c.ProcessMessage(context.Background(), request(tt.requestType, tt.payload, "req-1"))
			require.NoError(t, err)

			forwarded := pub.OnTopic(tt.topic)
			require.Len(t, forwarded, 1)
			assert.Equal(t, "req-1", forwarded[0].Key)
			got := forwarded[0].Decode(t)
			assert.Equal(t, "req-1", got["request_id"])
			for k, v := range tt.payload {
				assert.Equal(t, v, got[k])
			}

			statuses := pub.Statuses(t, statusTopic)
			require.Len(t, statuses, 1)
			assert.Equal(t, events.StatusRouted, statuses[0].Status)
			assert.Equal(t, Name, statuses[0].Agent)
			assert.Contains(t, statuses[0].Message, tt.agent)
		})
	}
}

func TestCoordinator_KeepsPayloadRequestID(t *testing.T) {
	pub := testsupport.NewRecordingPublisher()
	c := newCoordinator(pub, false)

	err := c.ProcessMessage(context.Background(), request(TypeFinancialMetrics, map[string]any{"ticker": "IBM", "request_id": "inner"}, "outer"))
	require.NoError(t, err)

	forwarded := pub.OnTopic(financialTopic)
	require.Len(t, forwarded, 1)
	assert.Equal(t, "inner", forwarded[0].Decode(t)["request_id"])
}

func TestCoordinator_ReportMirrorsTicker(t *testing.T) {
	pub := testsupport.NewRecordingPublisher()
	c := newCoordinator(pub, false)

	err := c.ProcessMessage(context.Background(), request(TypeGenerateReport, map[string]any{"report_type": "Executive Summary", "ticker": "INFY.NS"}, "r"))
	require.NoError(t, err)

	got := pub.OnTopic(reportTopic)[0].Decode(t)
	assert.Equal(t, "INFY.NS", got["company_ticker"])
}

func TestCoordinator_Rejects(t *testing.T) {
	tests := []struct {
		name string
		msg  *agents.Message
	}{
		{"financial metrics without payload", request(TypeFinancialMetrics, nil, "r")},
		{"financial metrics empty payload", request(TypeFinancialMetrics, map[string]any{}, "r")},
		{"financial metrics null ticker", request(TypeFinancialMetrics, map[string]any{"ticker": nil}, "r")},
		{"financial metrics blank ticker", request(TypeFinancialMetrics, map[string]any{"ticker": "  "}, "r")},
		{"summary without ticker or type", request(TypeNumericalSummary, map[string]any{"period": "1m"}, "r")},
		{"report with only report_type", request(TypeGenerateReport, map[string]any{"report_type": "Executive Summary"}, "r")},
		{"report without report_type", request(TypeGenerateReport, map[string]any{"ticker": "IBM"}, "r")},
		{"unknown request type", request("forecast", map[string]any{"ticker": "IBM"}, "r")},
		{"missing request type", request("", map[string]any{"ticker": "IBM"}, "r")},
		{"payload not an object", &agents.Message{Payload: map[string]any{"request_type": TypeFinancialMetrics, "payload": "IBM", "request_id": "r"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pub := testsupport.NewRecordingPublisher()
			c := newCoordinator(pub, false)

			err := c.ProcessMessage(context.Background(), tt.msg)
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrInvalidInput))

			all := pub.All()
			require.Len(t, all, 1)
			assert.Equal(t, statusTopic, all[0].Topic)

			statuses := pub.Statuses(t, statusTopic)
			assert.Equal(t, events.StatusFailed, statuses[0].Status)
			assert.Equal(t, "r", statuses[0].RequestID)
			assert.NotEmpty(t, statuses[0].Message)
		})
	}
}

func TestCoordinator_ForwardFailure(t *testing.T) {
	pub := testsupport.NewRecordingPublisher()
	pub.FailTopics[financialTopic] = errors.New("broker down")
	c := newCoordinator(pub, false)

	err := c.ProcessMessage(context.Background(), request(TypeFinancialMetrics, map[string]any{"ticker": "IBM"}, "r"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrPublishFailure))

	statuses := pub.Statuses(t, statusTopic)
	require.Len(t, statuses, 1)
	assert.Equal(t, events.StatusFailed, statuses[0].Status)
}

func insightsDone(payload map[string]any) *agents.Message {
	return &agents.Message{
		Payload:    payload,
		Attributes: map[string]string{"topic": insightsTopic},
	}
}

func TestCoordinator_ChainsReport(t *testing.T) {
	pub := testsupport.NewRecordingPublisher()
	c := newCoordinator(pub, true)

	err := c.ProcessMessage(context.Background(), insightsDone(map[string]any{
		"ticker": "TCS.NS", "date": "2024-05-10", "insights_count": 2, "request_id": "r-7",
	}))
	require.NoError(t, err)

	reports := pub.OnTopic(reportTopic)
	require.Len(t, reports, 1)
	assert.Equal(t, map[string]any{
		"report_type":    "Executive Summary",
		"company_ticker": "TCS.NS",
		"request_id":     "r-7",
		"report_date":    "2024-05-10",
	}, reports[0].Decode(t))

	statuses := pub.Statuses(t, statusTopic)
	require.Len(t, statuses, 1)
	assert.Equal(t, events.StatusCompleted, statuses[0].Status)
	assert.Contains(t, statuses[0].Message, "Report generation initiated")
}

func TestCoordinator_ChainSkipsIncompleteNotification(t *testing.T) {
	pub := testsupport.NewRecordingPublisher()
	c := newCoordinator(pub, true)

	err := c.ProcessMessage(context.Background(), insightsDone(map[string]any{"ticker": "TCS.NS"}))
	require.NoError(t, err)
	assert.Empty(t, pub.All())
}

func TestCoordinator_ChainDisabled(t *testing.T) {
	pub := testsupport.NewRecordingPublisher()
	c := newCoordinator(pub, false)

	// Without chaining the notification is treated as a routing request
	err := c.ProcessMessage(context.Background(), insightsDone(map[string]any{"ticker": "TCS.NS", "date": "2024-05-10"}))
	require.Error(t, err)
	assert.Empty(t, pub.OnTopic(reportTopic))
}

func TestCoordinator_ChainsWithoutTopicAttribute(t *testing.T) {
	pub := testsupport.NewRecordingPublisher()
	c := newCoordinator(pub, true)

	err := c.ProcessMessage(context.Background(), &agents.Message{Payload: map[string]any{
		"ticker": "INFY.NS", "date": "2024-05-10", "insights_count": 3, "request_id": "r-8",
	}})
	require.NoError(t, err)

	reports := pub.OnTopic(reportTopic)
	require.Len(t, reports, 1)
	assert.Equal(t, "INFY.NS", reports[0].Decode(t)["company_ticker"])
}

func TestCoordinator_RequestWithInsightsCountIsRouted(t *testing.T) {
	pub := testsupport.NewRecordingPublisher()
	c := newCoordinator(pub, true)

	msg := request(TypeFinancialMetrics, map[string]any{"ticker": "IBM"}, "r-9")
	msg.Payload["insights_count"] = 1
	require.NoError(t, c.ProcessMessage(context.Background(), msg))

	assert.Len(t, pub.OnTopic(financialTopic), 1)
	assert.Empty(t, pub.OnTopic(reportTopic))
}

func TestCoordinator_RedeliveryIsProcessedAgain(t *testing.T) {
	pub := testsupport.NewRecordingPublisher()
	h := agents.NewHandler(newCoordinator(pub, false), events.Codec{})

	raw, err := events.Encode(map[string]any{
		"request_type": TypeFinancialMetrics,
		"payload":      map[string]any{"ticker": "IBM"},
		"request_id":   "req-dup",
	})
	require.NoError(t, err)
	body, err := events.Wrap(raw, "m-dup", time.Now(), map[string]string{"topic": "coordinator-requests-topic"}, "coordinator-sub")
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, h.Deliver(context.Background(), body))
	assert.Equal(t, http.StatusOK, h.Deliver(context.Background(), body))

	// No dedup: the same delivery is forwarded twice
	assert.Len(t, pub.OnTopic(financialTopic), 2)
	statuses := pub.Statuses(t, statusTopic)
	require.Len(t, statuses, 2)
	for _, s := range statuses {
		assert.Equal(t, events.StatusRouted, s.Status)
		assert.Equal(t, "req-dup", s.RequestID)
	}
}
