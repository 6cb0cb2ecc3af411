package insight

import "time"

// Insight types produced for every summary trigger
const (
	TypeOverallPriceTrend        = "overall_price_trend"
	TypeVolumeVolatilityAnalysis = "volume_volatility_analysis"
)

// Types lists the insight types in generation order
var Types = []string{TypeOverallPriceTrend, TypeVolumeVolatilityAnalysis}

// Insight is a short model-written summary of a metric window
type Insight struct {
	Ticker             string    `ch:"ticker"`
	InsightType        string    `ch:"insight_type"`
	SummaryText        string    `ch:"summary_text"`
	GenerationDate     time.Time `ch:"generation_date"`
	SourceMetrics      []string  `ch:"source_metrics"`
	EmbeddingID        *string   `ch:"embedding_id"`
	RequestID          string    `ch:"request_id"`
	IngestionTimestamp time.Time `ch:"ingestion_timestamp"`
}
