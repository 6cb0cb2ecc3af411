package marketdata

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/pkg/errors"
)

type avStub struct {
	mu        sync.Mutex
	responses map[string]any
	calls     []string
	symbols   []string
}

func (s *avStub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fn := r.URL.Query().Get("function")
	s.calls = append(s.calls, fn)
	s.symbols = append(s.symbols, r.URL.Query().Get("symbol"))
	if r.URL.Query().Get("apikey") != "test-key" {
		w.WriteHeader(http.StatusForbidden)
		return
	}
	_ = json.NewEncoder(w).Encode(s.responses[fn])
}

func newAlphaVantage(t *testing.T, stub *avStub) *AlphaVantage {
	t.Helper()
	srv := httptest.NewServer(stub)
	t.Cleanup(srv.Close)

	av := NewAlphaVantage(AlphaVantageConfig{BaseURL: srv.URL, APIKey: "test-key"})
	av.now = func() time.Time { return time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC) }
	return av
}

// dailySeriesResponse builds n daily rows ending 2024-05-10 with closes 101..100+n
func dailySeriesResponse(n int) map[string]any {
	end := time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)
	series := map[string]any{}
	for i := 0; i < n; i++ {
		day := end.AddDate(0, 0, -(n - 1 - i))
		c := float64(101 + i)
		series[day.Format("2006-01-02")] = map[string]string{
			"1. open":   fmt.Sprintf("%.2f", c-1),
			"2. high":   fmt.Sprintf("%.2f", c+2),
			"3. low":    fmt.Sprintf("%.2f", c-2),
			"4. close":  fmt.Sprintf("%.2f", c),
			"5. volume": fmt.Sprintf("%d", 1000+i),
		}
	}
	return map[string]any{
		"Meta Data":           map[string]string{"2. Symbol": "RELIANCE.BSE"},
		"Time Series (Daily)": series,
	}
}

func TestAlphaVantage_FetchKeyMetrics(t *testing.T) {
	stub := &avStub{responses: map[string]any{
		"OVERVIEW": map[string]string{
			"Symbol":               "RELIANCE.BSE",
			"Description":          "Reliance Industries is a conglomerate.",
			"MarketCapitalization": "19500000000000",
			"PERatio":              "27.5",
			"EPS":                  "None",
			"ReturnOnEquityTTM":    "-",
			"DebtToEquityRatio":    "",
			"RevenueTTM":           "9000000000000",
			"NetIncomeTTM":         "700000000000",
			"Beta":                 "0.95",
		},
		"TIME_SERIES_DAILY": dailySeriesResponse(60),
		"RSI": map[string]any{
			"Technical Analysis: RSI": map[string]any{
				"2024-05-09": map[string]string{"RSI": "40.0"},
				"2024-05-10": map[string]string{"RSI": "55.5"},
			},
		},
	}}
	av := newAlphaVantage(t, stub)

	m, err := av.FetchKeyMetrics(t.Context(), "RELIANCE.NS")
	require.NoError(t, err)

	assert.Equal(t, "RELIANCE.NS", m.Ticker)
	assert.Equal(t, "RELIANCE.BSE", *m.SymbolUsed)
	assert.Equal(t, "alpha_vantage", *m.DataSource)
	assert.Equal(t, "overview,daily_time_series,rsi", *m.DataAvailability)
	assert.Equal(t, "2024-05-10", m.DateString())

	assert.Equal(t, 19500000000000.0, *m.MarketCap)
	assert.Equal(t, 27.5, *m.PERatio)
	assert.Nil(t, m.EPS)
	assert.Nil(t, m.ROE)
	assert.Nil(t, m.DebtToEquity)
	assert.Equal(t, 0.95, *m.Beta)
	assert.Equal(t, "Reliance Industries is a conglomerate.", *m.GeographicalExposure)

	assert.Equal(t, 160.0, *m.CurrentPrice)
	assert.Equal(t, 160.0, *m.Close)
	assert.Equal(t, int64(1059), *m.Volume)
	assert.InDelta(t, (160.0-159.0)/159.0*100, *m.DayChangePercent, 1e-9)
	assert.Equal(t, 162.0, *m.FiftyTwoWeekHigh)
	assert.Equal(t, 99.0, *m.FiftyTwoWeekLow)
	require.NotNil(t, m.MovingAverage50)
	assert.InDelta(t, 135.5, *m.MovingAverage50, 1e-9)
	assert.Nil(t, m.MovingAverage200)
	assert.Equal(t, 55.5, *m.RSI)

	for _, s := range stub.symbols {
		assert.Equal(t, "RELIANCE.BSE", s)
	}
}

func TestAlphaVantage_OverviewMissing(t *testing.T) {
	stub := &avStub{responses: map[string]any{
		"OVERVIEW":          map[string]string{},
		"TIME_SERIES_DAILY": dailySeriesResponse(3),
		"RSI":               map[string]any{"Meta Data": map[string]string{}},
	}}
	av := newAlphaVantage(t, stub)

	m, err := av.FetchKeyMetrics(t.Context(), "IBM")
	require.NoError(t, err)
	assert.Equal(t, "daily_time_series", *m.DataAvailability)
	assert.Nil(t, m.MarketCap)
	assert.Nil(t, m.MovingAverage50)
	assert.Nil(t, m.RSI)
	assert.NotNil(t, m.CurrentPrice)
}

func TestAlphaVantage_NoPriceSkipsRSI(t *testing.T) {
	stub := &avStub{responses: map[string]any{
		"OVERVIEW":          map[string]string{"Symbol": "IBM", "Beta": "1.1"},
		"TIME_SERIES_DAILY": map[string]any{"Meta Data": map[string]string{}},
	}}
	av := newAlphaVantage(t, stub)

	m, err := av.FetchKeyMetrics(t.Context(), "IBM")
	require.NoError(t, err)
	assert.Nil(t, m.CurrentPrice)
	assert.Equal(t, "overview", *m.DataAvailability)
	assert.False(t, m.Date.IsZero())
	assert.NotContains(t, stub.calls, "RSI")
}

func TestAlphaVantage_InBandErrors(t *testing.T) {
	tests := []struct {
		name     string
		daily    any
		sentinel error
	}{
		{"error message", map[string]string{"Error Message": "Invalid API call."}, errors.ErrProviderFailure},
		{"rate limit note", map[string]string{"Note": "Our standard API call frequency is 5 calls per minute and 500 calls per day."}, errors.ErrRateLimitExceeded},
		{"information", map[string]string{"Information": "This is a premium endpoint."}, errors.ErrProviderFailure},
		{"empty", map[string]string{}, errors.ErrProviderFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := &avStub{responses: map[string]any{
				"OVERVIEW":          map[string]string{},
				"TIME_SERIES_DAILY": tt.daily,
			}}
			av := newAlphaVantage(t, stub)

			_, err := av.FetchKeyMetrics(t.Context(), "IBM")
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.sentinel), err.Error())
		})
	}
}

func TestAlphaVantage_UnsupportedExchange(t *testing.T) {
	stub := &avStub{}
	av := newAlphaVantage(t, stub)

	_, err := av.FetchKeyMetrics(t.Context(), "TCS.NSE")
	assert.True(t, errors.Is(err, errors.ErrInvalidSymbol))
	assert.Empty(t, stub.calls)
}

func TestAlphaVantage_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	t.Cleanup(srv.Close)
	av := NewAlphaVantage(AlphaVantageConfig{BaseURL: srv.URL, APIKey: "k"})

	_, err := av.FetchKeyMetrics(t.Context(), "IBM")
	assert.True(t, errors.Is(err, errors.ErrProviderFailure))
}

func TestParseNumber(t *testing.T) {
	assert.Nil(t, parseNumber("None"))
	assert.Nil(t, parseNumber("-"))
	assert.Nil(t, parseNumber(" "))
	assert.Nil(t, parseNumber("abc"))
	assert.Equal(t, 1.5, *parseNumber("1.5"))
}
