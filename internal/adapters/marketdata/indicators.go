package marketdata

import (
	"math"

	"github.com/markcheno/go-talib"
)

const rsiPeriod = 14

// lastSMA returns the latest simple moving average over period, or nil when
// the series is shorter than period
func lastSMA(closes []float64, period int) *float64 {
	if len(closes) < period {
		return nil
	}
	return lastFinite(talib.Sma(closes, period))
}

// lastRSI returns the latest Wilder RSI(14), or nil for short series
func lastRSI(closes []float64) *float64 {
	if len(closes) <= rsiPeriod {
		return nil
	}
	return lastFinite(talib.Rsi(closes, rsiPeriod))
}

func lastFinite(series []float64) *float64 {
	if len(series) == 0 {
		return nil
	}
	v := series[len(series)-1]
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// dayChange is the percent move from prev to last, nil when prev is zero
func dayChange(last, prev float64) *float64 {
	if prev == 0 {
		return nil
	}
	v := (last - prev) / prev * 100
	return &v
}

// extremes returns the max of highs and min of lows
func extremes(highs, lows []float64) (*float64, *float64) {
	if len(highs) == 0 || len(lows) == 0 {
		return nil, nil
	}
	hi, lo := math.Inf(-1), math.Inf(1)
	for _, h := range highs {
		hi = math.Max(hi, h)
	}
	for _, l := range lows {
		lo = math.Min(lo, l)
	}
	return &hi, &lo
}
