package marketdata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLastSMA(t *testing.T) {
	closes := []float64{1, 2, 3, 4, 5}

	got := lastSMA(closes, 5)
	require.NotNil(t, got)
	assert.InDelta(t, 3.0, *got, 1e-9)

	got = lastSMA(closes, 2)
	require.NotNil(t, got)
	assert.InDelta(t, 4.5, *got, 1e-9)

	assert.Nil(t, lastSMA(closes, 6))
}

func TestLastRSI(t *testing.T) {
	assert.Nil(t, lastRSI(make([]float64, rsiPeriod)))

	rising := make([]float64, 30)
	for i := range rising {
		rising[i] = float64(100 + i)
	}
	got := lastRSI(rising)
	require.NotNil(t, got)
	assert.InDelta(t, 100.0, *got, 1e-6)
}

func TestDayChange(t *testing.T) {
	got := dayChange(110, 100)
	require.NotNil(t, got)
	assert.InDelta(t, 10.0, *got, 1e-9)

	assert.Nil(t, dayChange(110, 0))
}

func TestExtremes(t *testing.T) {
	hi, lo := extremes([]float64{3, 9, 4}, []float64{2, 1, 5})
	require.NotNil(t, hi)
	require.NotNil(t, lo)
	assert.Equal(t, 9.0, *hi)
	assert.Equal(t, 1.0, *lo)

	hi, lo = extremes(nil, nil)
	assert.Nil(t, hi)
	assert.Nil(t, lo)
}
