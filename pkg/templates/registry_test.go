package templates

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/pkg/errors"
)

func TestRegistryFromDir(t *testing.T) {
	base := t.TempDir()
	dir := filepath.Join(base, "reports")
	require.NoError(t, os.MkdirAll(dir, 0o755))

	tplPath := filepath.Join(dir, "daily.tmpl")
	require.NoError(t, os.WriteFile(tplPath, []byte("Report {{.Ticker}}"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644))

	reg, err := NewRegistry(base)
	require.NoError(t, err)
	assert.Equal(t, []string{"reports/daily"}, reg.List(""))

	tmpl, err := reg.GetTemplate("reports/daily")
	require.NoError(t, err)
	assert.Equal(t, KindReport, tmpl.Kind)

	rendered, err := tmpl.Render(ReportData{Ticker: "IBM"})
	require.NoError(t, err)
	assert.Equal(t, "Report IBM", rendered)

	require.NoError(t, os.WriteFile(tplPath, []byte("Changed {{.Ticker}}"), 0o644))

	rendered, err = tmpl.Render(ReportData{Ticker: "TCS.NS"})
	require.NoError(t, err)
	assert.Equal(t, "Report TCS.NS", rendered, "parsed templates keep their initial content")
}

func TestRegistryFuncsAndMissingKeys(t *testing.T) {
	reg, err := NewRegistryFromFS(fstest.MapFS{
		"prompts/volume.tmpl": {Data: []byte("Volume {{count .Volume}}")},
	})
	require.NoError(t, err)

	vol := int64(1234567)
	rendered, err := reg.Render("prompts/volume", map[string]any{"Volume": &vol})
	require.NoError(t, err)
	assert.Equal(t, "Volume 1,234,567", rendered)

	_, err = reg.Render("prompts/volume", map[string]any{})
	assert.Error(t, err)
}

func TestRegistryParseFailure(t *testing.T) {
	_, err := NewRegistryFromFS(fstest.MapFS{
		"reports/broken.tmpl": {Data: []byte("{{.Ticker")},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reports/broken")
}

func TestRegistryUnknownTemplate(t *testing.T) {
	reg, err := NewRegistry(t.TempDir())
	require.NoError(t, err)

	assert.False(t, reg.Has("reports/quarterly"))
	_, err = reg.Render("reports/quarterly", nil)
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestEmbeddedAssets(t *testing.T) {
	reg := Get()

	assert.Equal(t, []string{ReportExecutiveSummary, ReportMarketOverview}, reg.List(KindReport))
	assert.Equal(t, []string{PromptInsightSummary, PromptQualitativeAnalysis}, reg.List(KindPrompt))
	assert.Len(t, reg.List(""), 4)
}

func TestQualitativeAnalysisRender(t *testing.T) {
	out, err := Get().Render(PromptQualitativeAnalysis, QualitativePromptData{
		Focus: "news sentiment summary",
		Query: "retail expansion",
		Data:  "Title: Reliance expands retail",
	})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "You are an AI financial analyst."))
	assert.Contains(t, out, "related to news sentiment summary.")
	assert.Contains(t, out, "Focus on answering the specific request: 'retail expansion'.")
	assert.Contains(t, out, "Title: Reliance expands retail")

	out, err = Get().Render(PromptQualitativeAnalysis, QualitativePromptData{Focus: "company summary", Data: "Symbol: IBM"})
	require.NoError(t, err)
	assert.NotContains(t, out, "specific request")
}

func TestExecutiveSummaryRender(t *testing.T) {
	out, err := Get().Render(ReportExecutiveSummary, ReportData{
		Ticker:        "RELIANCE.NS",
		ReportDate:    "2024-05-10",
		FinancialData: "Close: 2850.00",
		Insights:      "- overall_price_trend: steady",
		Parameters:    "None",
	})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "Generate an executive summary for RELIANCE.NS"))
	assert.Contains(t, out, "Close: 2850.00")
	assert.Contains(t, out, "- overall_price_trend: steady")
	assert.Contains(t, out, "suitable for an executive")
}

func TestMarketOverviewRender(t *testing.T) {
	out, err := Get().Render(ReportMarketOverview, ReportData{
		Sector:     "Banking",
		ReportDate: "2024-05-10",
		Parameters: "focus: rates",
	})
	require.NoError(t, err)

	assert.Contains(t, out, "Sector: Banking")
	assert.Contains(t, out, "focus: rates")
	assert.NotContains(t, out, "Reference Financial Data")
}

func TestInsightPromptRender(t *testing.T) {
	out, err := Get().Render(PromptInsightSummary, InsightPromptData{
		Ticker:      "IBM",
		Rows:        []string{"Date: 2024-05-09, Close: 170.10", "Date: 2024-05-10, Close: 171.20"},
		Instruction: "Describe the direction of the closing price.",
		Focus:       "Overall Price Trend",
	})
	require.NoError(t, err)

	assert.Contains(t, out, "Date: 2024-05-09, Close: 170.10\nDate: 2024-05-10, Close: 171.20\n")
	assert.Contains(t, out, "regarding IBM's recent performance (Overall Price Trend)")
	assert.Contains(t, out, "Describe the direction of the closing price.")
}
