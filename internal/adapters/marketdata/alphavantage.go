package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/internal/domain/financial"
	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/internal/metrics"
	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/pkg/errors"
	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/pkg/logger"
)

const (
	alphaVantageSource  = "alpha_vantage"
	maxDescriptionChars = 500
)

// AlphaVantageConfig configures the Alpha Vantage client
type AlphaVantageConfig struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
	Sessions   *Sessions
}

// AlphaVantage reads fundamentals, daily prices and RSI from Alpha Vantage
type AlphaVantage struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	sessions   *Sessions
	log        *logger.Logger
	now        func() time.Time
}

var _ Provider = (*AlphaVantage)(nil)

// NewAlphaVantage creates an Alpha Vantage provider
func NewAlphaVantage(cfg AlphaVantageConfig) *AlphaVantage {
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}
	if cfg.Sessions == nil {
		cfg.Sessions = NewSessions(time.UTC)
	}
	return &AlphaVantage{
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		httpClient: cfg.HTTPClient,
		sessions:   cfg.Sessions,
		log:        logger.Get().With("component", "alphavantage"),
		now:        time.Now,
	}
}

func (a *AlphaVantage) Name() string { return ProviderAlphaVantage }

// FetchKeyMetrics assembles a metric record from the OVERVIEW, daily series
// and RSI endpoints. Missing overview or RSI data leaves those fields NULL.
func (a *AlphaVantage) FetchKeyMetrics(ctx context.Context, ticker string) (*financial.Metric, error) {
	symbol, err := AlphaVantageSymbol(ticker)
	if err != nil {
		return nil, err
	}
	if symbol != strings.ToUpper(ticker) {
		a.log.Infow("Using BSE listing for NSE ticker", "ticker", ticker, "symbol", symbol)
	}

	m := &financial.Metric{
		Ticker:             ticker,
		DataSource:         financial.String(alphaVantageSource),
		SymbolUsed:         financial.String(symbol),
		IngestionTimestamp: a.now().UTC(),
	}
	var found []string

	overview, err := a.overview(ctx, symbol)
	switch {
	case err != nil:
		a.log.Warnw("Company overview unavailable", "symbol", symbol, "error", err)
	case overview != nil:
		applyOverview(m, overview)
		found = append(found, "overview")
	}

	rows, err := a.dailySeries(ctx, symbol)
	if err != nil {
		return nil, errors.Wrapf(err, "daily series for %s", symbol)
	}
	if len(rows) > 0 {
		applyDaily(m, rows)
		found = append(found, "daily_time_series")
	} else {
		m.Date = a.sessions.LastSession(ticker)
	}

	if m.CurrentPrice != nil {
		rsi, err := a.rsi(ctx, symbol)
		if err != nil {
			a.log.Warnw("RSI unavailable", "symbol", symbol, "error", err)
		} else if rsi != nil {
			m.RSI = rsi
			found = append(found, "rsi")
		}
	}

	availability := "none"
	if len(found) > 0 {
		availability = strings.Join(found, ",")
	}
	m.DataAvailability = financial.String(availability)

	return m, nil
}

type overviewResponse struct {
	Symbol               string `json:"Symbol"`
	Description          string `json:"Description"`
	MarketCapitalization string `json:"MarketCapitalization"`
	PERatio              string `json:"PERatio"`
	EPS                  string `json:"EPS"`
	ReturnOnEquityTTM    string `json:"ReturnOnEquityTTM"`
	DebtToEquityRatio    string `json:"DebtToEquityRatio"`
	RevenueTTM           string `json:"RevenueTTM"`
	NetIncomeTTM         string `json:"NetIncomeTTM"`
	Beta                 string `json:"Beta"`
}

func (a *AlphaVantage) overview(ctx context.Context, symbol string) (*overviewResponse, error) {
	body, err := a.query(ctx, url.Values{"function": {"OVERVIEW"}, "symbol": {symbol}})
	if err != nil {
		return nil, err
	}

	var out overviewResponse
	if err := remarshal(body, &out); err != nil {
		return nil, err
	}
	if out.Symbol == "" {
		return nil, nil
	}
	return &out, nil
}

func applyOverview(m *financial.Metric, o *overviewResponse) {
	m.MarketCap = parseNumber(o.MarketCapitalization)
	m.PERatio = parseNumber(o.PERatio)
	m.EPS = parseNumber(o.EPS)
	m.ROE = parseNumber(o.ReturnOnEquityTTM)
	m.DebtToEquity = parseNumber(o.DebtToEquityRatio)
	m.Revenue = parseNumber(o.RevenueTTM)
	m.NetIncome = parseNumber(o.NetIncomeTTM)
	m.Beta = parseNumber(o.Beta)

	if desc := []rune(o.Description); len(desc) > 0 {
		if len(desc) > maxDescriptionChars {
			desc = desc[:maxDescriptionChars]
		}
		m.GeographicalExposure = financial.String(string(desc))
	}
}

type dailyRow struct {
	date   time.Time
	open   float64
	high   float64
	low    float64
	close  float64
	volume int64
}

// dailySeries returns the compact daily series in ascending date order
func (a *AlphaVantage) dailySeries(ctx context.Context, symbol string) ([]dailyRow, error) {
	body, err := a.query(ctx, url.Values{
		"function":   {"TIME_SERIES_DAILY"},
		"symbol":     {symbol},
		"outputsize": {"compact"},
	})
	if err != nil {
		return nil, err
	}

	raw, ok := body["Time Series (Daily)"]
	if !ok {
		return nil, nil
	}
	var series map[string]map[string]string
	if err := json.Unmarshal(raw, &series); err != nil {
		return nil, errors.Wrap(errors.ErrProviderFailure, "decode daily series: "+err.Error())
	}

	rows := make([]dailyRow, 0, len(series))
	for day, values := range series {
		date, err := parseDate(day)
		if err != nil {
			continue
		}
		row := dailyRow{date: date}
		var parseErr error
		parse := func(key string) float64 {
			v, err := strconv.ParseFloat(values[key], 64)
			if err != nil {
				parseErr = err
			}
			return v
		}
		row.open = parse("1. open")
		row.high = parse("2. high")
		row.low = parse("3. low")
		row.close = parse("4. close")
		row.volume = int64(parse("5. volume"))
		if parseErr != nil {
			continue
		}
		rows = append(rows, row)
	}

	sort.Slice(rows, func(i, j int) bool { return rows[i].date.Before(rows[j].date) })
	return rows, nil
}

func applyDaily(m *financial.Metric, rows []dailyRow) {
	latest := rows[len(rows)-1]
	m.Date = latest.date
	m.Open = financial.Float(latest.open)
	m.High = financial.Float(latest.high)
	m.Low = financial.Float(latest.low)
	m.Close = financial.Float(latest.close)
	m.Volume = financial.Int(latest.volume)
	m.CurrentPrice = financial.Float(latest.close)

	if len(rows) >= 2 {
		m.DayChangePercent = dayChange(latest.close, rows[len(rows)-2].close)
	}

	closes := make([]float64, len(rows))
	highs := make([]float64, len(rows))
	lows := make([]float64, len(rows))
	for i, r := range rows {
		closes[i], highs[i], lows[i] = r.close, r.high, r.low
	}
	m.FiftyTwoWeekHigh, m.FiftyTwoWeekLow = extremes(highs, lows)
	m.MovingAverage50 = lastSMA(closes, 50)
	m.MovingAverage200 = lastSMA(closes, 200)
}

// rsi returns the RSI(14) value of the most recent date
func (a *AlphaVantage) rsi(ctx context.Context, symbol string) (*float64, error) {
	body, err := a.query(ctx, url.Values{
		"function":    {"RSI"},
		"symbol":      {symbol},
		"interval":    {"daily"},
		"time_period": {"14"},
		"series_type": {"close"},
	})
	if err != nil {
		return nil, err
	}

	raw, ok := body["Technical Analysis: RSI"]
	if !ok {
		return nil, nil
	}
	var series map[string]struct {
		RSI string `json:"RSI"`
	}
	if err := json.Unmarshal(raw, &series); err != nil {
		return nil, errors.Wrap(errors.ErrProviderFailure, "decode rsi: "+err.Error())
	}
	if len(series) == 0 {
		return nil, nil
	}

	dates := make([]string, 0, len(series))
	for d := range series {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	return parseNumber(series[dates[len(dates)-1]].RSI), nil
}

// query calls the API and screens the body for Alpha Vantage's in-band errors
func (a *AlphaVantage) query(ctx context.Context, params url.Values) (map[string]json.RawMessage, error) {
	function := params.Get("function")
	start := time.Now()

	body, err := a.do(ctx, params)
	metrics.RecordProviderCall(alphaVantageSource, function, time.Since(start), err, errors.Is(err, errors.ErrRateLimitExceeded))
	if err != nil {
		return nil, errors.Wrapf(err, "alpha vantage %s", function)
	}
	return body, nil
}

func (a *AlphaVantage) do(ctx context.Context, params url.Values) (map[string]json.RawMessage, error) {
	q := url.Values{}
	for k, v := range params {
		q[k] = v
	}
	q.Set("apikey", a.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, errors.Wrap(err, "create request")
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(errors.ErrProviderFailure, err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 500))
		return nil, errors.Wrap(errors.ErrProviderFailure, fmt.Sprintf("status %d: %s", resp.StatusCode, snippet))
	}

	var body map[string]json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, errors.Wrap(errors.ErrProviderFailure, "invalid JSON response: "+err.Error())
	}

	if msg, ok := stringValue(body, "Error Message"); ok {
		return nil, errors.Wrap(errors.ErrProviderFailure, msg)
	}
	if msg, ok := stringValue(body, "Note"); ok && isRateLimitNote(msg) {
		return nil, errors.Wrap(errors.ErrRateLimitExceeded, msg)
	}
	if msg, ok := stringValue(body, "Information"); ok {
		if isRateLimitNote(msg) {
			return nil, errors.Wrap(errors.ErrRateLimitExceeded, msg)
		}
		return nil, errors.Wrap(errors.ErrProviderFailure, msg)
	}
	if len(body) == 0 {
		return nil, errors.Wrap(errors.ErrProviderFailure, "empty response")
	}
	return body, nil
}

func isRateLimitNote(msg string) bool {
	msg = strings.ToLower(msg)
	return strings.Contains(msg, "call frequency") ||
		strings.Contains(msg, "calls per minute") ||
		strings.Contains(msg, "calls per day") ||
		strings.Contains(msg, "rate limit")
}

func stringValue(body map[string]json.RawMessage, key string) (string, bool) {
	raw, ok := body[key]
	if !ok {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return string(raw), true
	}
	return s, true
}

func remarshal(body map[string]json.RawMessage, out any) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return errors.Wrap(errors.ErrProviderFailure, "decode response: "+err.Error())
	}
	return nil
}

// parseNumber reads an Alpha Vantage numeric string; "None", "-" and blanks are NULL
func parseNumber(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" || s == "None" || s == "-" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}
