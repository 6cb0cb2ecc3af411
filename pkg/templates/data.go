package templates

// Template IDs shipped in the embedded assets
const (
	ReportExecutiveSummary = "reports/executive_summary"
	ReportMarketOverview   = "reports/market_overview"
	PromptInsightSummary   = "prompts/insight_summary"

	PromptQualitativeAnalysis = "prompts/qualitative_analysis"
)

// ReportData feeds the report templates. Every field is pre-rendered text.
type ReportData struct {
	Ticker        string
	Sector        string
	ReportDate    string
	FinancialData string
	Insights      string
	Parameters    string
}

// InsightPromptData feeds prompts/insight_summary
type InsightPromptData struct {
	Ticker      string
	Rows        []string
	Instruction string
	Focus       string
}

// QualitativePromptData feeds prompts/qualitative_analysis
type QualitativePromptData struct {
	Focus string
	Query string
	Data  string
}
