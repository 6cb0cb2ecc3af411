package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/internal/domain/financial"
	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/internal/metrics"
	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/pkg/errors"
	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/pkg/logger"
)

const yahooSource = "yahoo_finance"

// YahooConfig configures the Yahoo Finance chart client
type YahooConfig struct {
	BaseURL    string
	HTTPClient *http.Client
}

// Yahoo derives a metric record from one year of daily chart data
type Yahoo struct {
	baseURL    string
	httpClient *http.Client
	log        *logger.Logger
	now        func() time.Time
}

var _ Provider = (*Yahoo)(nil)

// NewYahoo creates a Yahoo Finance provider
func NewYahoo(cfg YahooConfig) *Yahoo {
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Yahoo{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: cfg.HTTPClient,
		log:        logger.Get().With("component", "yahoo"),
		now:        time.Now,
	}
}

func (y *Yahoo) Name() string { return ProviderYahoo }

type chartResponse struct {
	Chart struct {
		Result []chartResult `json:"result"`
		Error  *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

type chartResult struct {
	Meta struct {
		Symbol               string   `json:"symbol"`
		ExchangeTimezoneName string   `json:"exchangeTimezoneName"`
		RegularMarketPrice   *float64 `json:"regularMarketPrice"`
		FiftyTwoWeekHigh     *float64 `json:"fiftyTwoWeekHigh"`
		FiftyTwoWeekLow      *float64 `json:"fiftyTwoWeekLow"`
	} `json:"meta"`
	Timestamp  []int64 `json:"timestamp"`
	Indicators struct {
		Quote []struct {
			Open   []*float64 `json:"open"`
			High   []*float64 `json:"high"`
			Low    []*float64 `json:"low"`
			Close  []*float64 `json:"close"`
			Volume []*float64 `json:"volume"`
		} `json:"quote"`
	} `json:"indicators"`
}

// FetchKeyMetrics reads the daily chart and computes the price derived fields
func (y *Yahoo) FetchKeyMetrics(ctx context.Context, ticker string) (*financial.Metric, error) {
	symbol, err := YahooSymbol(ticker)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	result, err := y.chart(ctx, symbol)
	metrics.RecordProviderCall(yahooSource, "chart", time.Since(start), err, errors.Is(err, errors.ErrRateLimitExceeded))
	if err != nil {
		return nil, errors.Wrapf(err, "yahoo chart %s", symbol)
	}

	m := &financial.Metric{
		Ticker:             ticker,
		DataSource:         financial.String(yahooSource),
		SymbolUsed:         financial.String(symbol),
		DataAvailability:   financial.String("none"),
		IngestionTimestamp: y.now().UTC(),
	}

	rows := result.rows()
	if len(rows) == 0 {
		y.log.Warnw("Chart returned no complete rows", "symbol", symbol)
		m.Date = dateOnly(y.now())
		return m, nil
	}

	loc := time.UTC
	if tz, err := time.LoadLocation(result.Meta.ExchangeTimezoneName); err == nil && result.Meta.ExchangeTimezoneName != "" {
		loc = tz
	}

	latest := rows[len(rows)-1]
	m.Date = dateOnly(latest.date.In(loc))
	m.Open = financial.Float(latest.open)
	m.High = financial.Float(latest.high)
	m.Low = financial.Float(latest.low)
	m.Close = financial.Float(latest.close)
	m.Volume = financial.Int(latest.volume)

	m.CurrentPrice = result.Meta.RegularMarketPrice
	if m.CurrentPrice == nil {
		m.CurrentPrice = financial.Float(latest.close)
	}
	if len(rows) >= 2 {
		m.DayChangePercent = dayChange(*m.CurrentPrice, rows[len(rows)-2].close)
	}

	closes := make([]float64, len(rows))
	highs := make([]float64, len(rows))
	lows := make([]float64, len(rows))
	for i, r := range rows {
		closes[i], highs[i], lows[i] = r.close, r.high, r.low
	}
	m.FiftyTwoWeekHigh, m.FiftyTwoWeekLow = extremes(highs, lows)
	if result.Meta.FiftyTwoWeekHigh != nil && result.Meta.FiftyTwoWeekLow != nil {
		m.FiftyTwoWeekHigh, m.FiftyTwoWeekLow = result.Meta.FiftyTwoWeekHigh, result.Meta.FiftyTwoWeekLow
	}
	m.MovingAverage50 = lastSMA(closes, 50)
	m.MovingAverage200 = lastSMA(closes, 200)
	m.RSI = lastRSI(closes)

	found := []string{"daily_time_series"}
	if m.RSI != nil {
		found = append(found, "rsi")
	}
	m.DataAvailability = financial.String(strings.Join(found, ","))

	return m, nil
}

// rows returns the sessions where every OHLC value is present
func (r *chartResult) rows() []dailyRow {
	if len(r.Indicators.Quote) == 0 {
		return nil
	}
	q := r.Indicators.Quote[0]

	rows := make([]dailyRow, 0, len(r.Timestamp))
	for i, ts := range r.Timestamp {
		if i >= len(q.Close) || i >= len(q.Open) || i >= len(q.High) || i >= len(q.Low) {
			break
		}
		if q.Open[i] == nil || q.High[i] == nil || q.Low[i] == nil || q.Close[i] == nil {
			continue
		}
		row := dailyRow{
			date:  time.Unix(ts, 0).UTC(),
			open:  *q.Open[i],
			high:  *q.High[i],
			low:   *q.Low[i],
			close: *q.Close[i],
		}
		if i < len(q.Volume) && q.Volume[i] != nil {
			row.volume = int64(*q.Volume[i])
		}
		rows = append(rows, row)
	}
	return rows
}

func (y *Yahoo) chart(ctx context.Context, symbol string) (*chartResult, error) {
	endpoint := fmt.Sprintf("%s/v8/finance/chart/%s?%s", y.baseURL, url.PathEscape(symbol), url.Values{
		"interval": {"1d"},
		"range":    {"1y"},
	}.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, errors.Wrap(err, "create request")
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; asset-management-adk/1.0)")

	resp, err := y.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(errors.ErrProviderFailure, err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, errors.Wrap(errors.ErrRateLimitExceeded, "status 429")
	}

	var out chartResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		if resp.StatusCode != http.StatusOK {
			return nil, errors.Wrap(errors.ErrProviderFailure, fmt.Sprintf("status %d", resp.StatusCode))
		}
		return nil, errors.Wrap(errors.ErrProviderFailure, "invalid JSON response: "+err.Error())
	}

	if e := out.Chart.Error; e != nil {
		if e.Code == "Not Found" {
			return nil, errors.Wrap(errors.ErrInvalidSymbol, e.Description)
		}
		return nil, errors.Wrap(errors.ErrProviderFailure, e.Code+": "+e.Description)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errors.Wrap(errors.ErrProviderFailure, fmt.Sprintf("status %d", resp.StatusCode))
	}
	if len(out.Chart.Result) == 0 {
		return nil, errors.Wrap(errors.ErrProviderFailure, "empty chart result")
	}
	return &out.Chart.Result[0], nil
}
