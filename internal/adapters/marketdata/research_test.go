package marketdata

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/pkg/errors"
)

func researchServer(t *testing.T, response any) (*AlphaVantage, *url.Values) {
	t.Helper()
	var got url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.URL.Query()
		_ = json.NewEncoder(w).Encode(response)
	}))
	t.Cleanup(srv.Close)
	return NewAlphaVantage(AlphaVantageConfig{BaseURL: srv.URL, APIKey: "test-key"}), &got
}

func TestResearch_NewsSentiment(t *testing.T) {
	av, query := researchServer(t, map[string]any{
		"items": "2",
		"feed": []map[string]any{
			{"title": "Reliance expands retail", "summary": "New stores.", "url": "https://news/1", "overall_sentiment_label": "Bullish", "overall_sentiment_score": 0.4},
			{"title": "Refining margins dip", "summary": "", "url": "https://news/2"},
		},
	})

	text, err := av.Research(t.Context(), ResearchNewsSentiment, "reliance.ns", "energy_transportation")
	require.NoError(t, err)

	assert.Equal(t, "NEWS_SENTIMENT", query.Get("function"))
	assert.Equal(t, "RELIANCE.BSE", query.Get("tickers"))
	assert.Equal(t, "energy_transportation", query.Get("topics"))
	assert.Equal(t, "50", query.Get("limit"))

	assert.Contains(t, text, "--- Recent News Articles ---")
	assert.Contains(t, text, "Title: Reliance expands retail\nSummary: New stores.\nURL: https://news/1\nSentiment: Bullish")
	assert.Contains(t, text, "Summary: N/A\nURL: https://news/2\nSentiment: Neutral")
}

func TestResearch_NewsWithoutTicker(t *testing.T) {
	av, query := researchServer(t, map[string]any{"feed": []map[string]any{}})

	text, err := av.Research(t.Context(), ResearchNewsSentiment, "", "")
	require.NoError(t, err)
	assert.Empty(t, text)
	assert.False(t, query.Has("tickers"))
	assert.False(t, query.Has("topics"))
}

func TestResearch_CompanySummary(t *testing.T) {
	av, query := researchServer(t, map[string]string{
		"Symbol":   "IBM",
		"Name":     "International Business Machines",
		"Sector":   "TECHNOLOGY",
		"PERatio":  "None",
		"Exchange": "NYSE",
	})

	text, err := av.Research(t.Context(), ResearchCompanySummary, "IBM", "")
	require.NoError(t, err)
	assert.Equal(t, "IBM", query.Get("symbol"))
	assert.Contains(t, text, "--- Company Overview for International Business Machines ---")
	assert.Contains(t, text, "Sector: TECHNOLOGY\n")
	assert.Contains(t, text, "Dividend Yield: N/A\n")
}

func TestResearch_Earnings(t *testing.T) {
	av, _ := researchServer(t, map[string]any{
		"symbol":         "IBM",
		"annualEarnings": []map[string]string{{"fiscalDateEnding": "2023-12-31", "reportedEPS": "9.61"}},
		"quarterlyEarnings": []map[string]string{{
			"fiscalDateEnding": "2024-03-31", "reportedDate": "2024-04-24",
			"reportedEPS": "1.68", "estimatedEPS": "1.6", "surprise": "0.08", "surprisePercentage": "5",
		}},
	})

	text, err := av.Research(t.Context(), ResearchEarnings, "IBM", "")
	require.NoError(t, err)
	assert.Contains(t, text, "Fiscal Date: 2023-12-31, Reported EPS: 9.61")
	assert.Contains(t, text, "Surprise: 0.08 (5%)")
}

func TestResearch_InsiderTransactionsCapped(t *testing.T) {
	rows := make([]map[string]string, 15)
	for i := range rows {
		rows[i] = map[string]string{"executive": "Exec", "acquisition_or_disposal": "D", "shares": "100", "share_price": "170", "transaction_date": "2024-05-01"}
	}
	av, _ := researchServer(t, map[string]any{"data": rows})

	text, err := av.Research(t.Context(), ResearchInsiderTrends, "IBM", "")
	require.NoError(t, err)
	assert.Equal(t, insiderRowLimit, countLines(text, "- Exec"))
	assert.Contains(t, text, "Disposal of 100 shares at 170 on 2024-05-01")
}

func TestResearch_Macro(t *testing.T) {
	points := make([]map[string]string, 8)
	for i := range points {
		points[i] = map[string]string{"date": fmt.Sprintf("2024-%02d-01", i+1), "value": "310.3"}
	}
	av, query := researchServer(t, map[string]any{"name": "CPI", "data": points})

	text, err := av.Research(t.Context(), ResearchMacroCPI, "", "")
	require.NoError(t, err)
	assert.Equal(t, "CPI", query.Get("function"))
	assert.Contains(t, text, "--- Latest Consumer Price Index Data ---")
	assert.Equal(t, macroPointLimit, countLines(text, "- Date:"))
}

func TestResearch_Errors(t *testing.T) {
	av, _ := researchServer(t, map[string]string{"Note": "Thank you for using Alpha Vantage! Our standard API call frequency is 5 calls per minute."})

	_, err := av.Research(t.Context(), ResearchEarnings, "IBM", "")
	assert.True(t, errors.Is(err, errors.ErrRateLimitExceeded))

	_, err = av.Research(t.Context(), "TECHNICAL_RSI", "IBM", "")
	assert.True(t, errors.Is(err, errors.ErrInvalidInput))
}

func TestResearchNeedsTicker(t *testing.T) {
	assert.True(t, ResearchNeedsTicker(ResearchCompanySummary))
	assert.True(t, ResearchNeedsTicker(ResearchInsiderTrends))
	assert.False(t, ResearchNeedsTicker(ResearchNewsSentiment))
	assert.False(t, ResearchNeedsTicker(ResearchMacroTreasury))
}

func countLines(text, prefix string) int {
	n := 0
	for _, line := range strings.Split(text, "\n") {
		if strings.HasPrefix(line, prefix) {
			n++
		}
	}
	return n
}
