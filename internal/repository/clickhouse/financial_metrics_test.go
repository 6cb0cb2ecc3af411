package clickhouse

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/internal/testsupport"
	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/pkg/errors"
)

func TestFinancialMetricsRepository(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	helper := testsupport.NewClickHouseTestHelper(t, testsupport.LoadClickHouseConfigFromEnv(t))
	repo := NewFinancialMetricsRepository(helper.Client().Conn())
	ctx := context.Background()

	ticker := testsupport.UniqueTicker("FM")
	helper.RegisterTableCleanup(t, "financial_metrics", "ticker = '"+ticker+"'")

	end := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)

	t.Run("Insert_NullsStayNull", func(t *testing.T) {
		m := testsupport.NewMetricFixture().WithTicker(ticker).WithDate(end.AddDate(0, 0, -40)).Build()
		m.PERatio = nil
		require.NoError(t, repo.Insert(ctx, &m))

		assert.Equal(t, uint64(1), helper.Count(t, "financial_metrics", "ticker = $1 AND pe_ratio IS NULL", ticker))
	})

	t.Run("ListRange_LatestRowPerDate", func(t *testing.T) {
		for _, m := range testsupport.NewMetricFixture().WithTicker(ticker).WithDate(end).WithClose(100).BuildDaily(3) {
			m := m
			require.NoError(t, repo.Insert(ctx, &m))
		}

		// A corrected row for the last day supersedes the first one
		corrected := testsupport.NewMetricFixture().
			WithTicker(ticker).
			WithDate(end).
			WithClose(105).
			WithIngestion(time.Now().UTC().Add(time.Minute)).
			Build()
		require.NoError(t, repo.Insert(ctx, &corrected))

		rows, err := repo.ListRange(ctx, ticker, end.AddDate(0, 0, -30), end)
		require.NoError(t, err)
		require.Len(t, rows, 3)

		assert.True(t, rows[0].Date.Before(rows[1].Date))
		assert.InDelta(t, 98, *rows[0].Close, 0.001)
		assert.InDelta(t, 105, *rows[2].Close, 0.001)
	})

	t.Run("Latest", func(t *testing.T) {
		m, err := repo.Latest(ctx, ticker)
		require.NoError(t, err)
		assert.Equal(t, end, m.Date.UTC())
		assert.InDelta(t, 105, *m.CurrentPrice, 0.001)
	})

	t.Run("Latest_NotFound", func(t *testing.T) {
		_, err := repo.Latest(ctx, testsupport.UniqueTicker("NONE"))
		assert.True(t, errors.Is(err, errors.ErrNotFound))
	})
}
