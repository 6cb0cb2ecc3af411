package financial

import "time"

// Metric is one ingested snapshot of a ticker's market data and fundamentals.
// Rows are append-only; a later IngestionTimestamp supersedes earlier rows for
// the same (Ticker, Date). Every optional field is a pointer so an absent value
// is stored as NULL rather than zero.
type Metric struct {
	Ticker string    `ch:"ticker" json:"ticker"`
	Date   time.Time `ch:"date" json:"date"`

	Open   *float64 `ch:"open" json:"open"`
	High   *float64 `ch:"high" json:"high"`
	Low    *float64 `ch:"low" json:"low"`
	Close  *float64 `ch:"close" json:"close"`
	Volume *int64   `ch:"volume" json:"volume"`

	MarketCap    *float64 `ch:"market_cap" json:"market_cap"`
	PERatio      *float64 `ch:"pe_ratio" json:"pe_ratio"`
	EPS          *float64 `ch:"eps" json:"eps"`
	Revenue      *float64 `ch:"revenue" json:"revenue"`
	NetIncome    *float64 `ch:"net_income" json:"net_income"`
	DebtToEquity *float64 `ch:"debt_to_equity" json:"debt_to_equity"`
	ROE          *float64 `ch:"roe" json:"roe"`

	CurrentPrice     *float64 `ch:"current_price" json:"current_price"`
	DayChangePercent *float64 `ch:"day_change_percent" json:"day_change_percent"`
	FiftyTwoWeekHigh *float64 `ch:"fifty_two_week_high" json:"fifty_two_week_high"`
	FiftyTwoWeekLow  *float64 `ch:"fifty_two_week_low" json:"fifty_two_week_low"`
	MovingAverage50  *float64 `ch:"moving_average_50" json:"moving_average_50"`
	MovingAverage200 *float64 `ch:"moving_average_200" json:"moving_average_200"`
	RSI              *float64 `ch:"rsi" json:"rsi"`
	Beta             *float64 `ch:"beta" json:"beta"`
	CAGR             *float64 `ch:"cagr" json:"cagr"`

	GeographicalExposure   *string  `ch:"geographical_exposure" json:"geographical_exposure"`
	RiskSignals            *string  `ch:"risk_signals" json:"risk_signals"`
	SectorPerformanceIndex *float64 `ch:"sector_performance_index" json:"sector_performance_index"`

	DataSource       *string `ch:"data_source" json:"data_source"`
	SymbolUsed       *string `ch:"symbol_used" json:"symbol_used"`
	DataAvailability *string `ch:"data_availability" json:"data_availability"`

	IngestionTimestamp time.Time `ch:"ingestion_timestamp" json:"ingestion_timestamp"`
}

// DateLayout is the wire format of record and trigger dates
const DateLayout = "2006-01-02"

// DateString returns Date in YYYY-MM-DD form
func (m *Metric) DateString() string {
	return m.Date.Format(DateLayout)
}

// Float returns a pointer to v
func Float(v float64) *float64 { return &v }

// Int returns a pointer to v
func Int(v int64) *int64 { return &v }

// String returns a pointer to v, or nil for an empty string
func String(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
