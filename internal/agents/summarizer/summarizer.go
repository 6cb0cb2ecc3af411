package summarizer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/internal/adapters/embeddings"
	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/internal/adapters/llm"
	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/internal/agents"
	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/internal/domain/financial"
	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/internal/domain/insight"
	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/internal/events"
	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/internal/metrics"
	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/pkg/errors"
	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/pkg/templates"
)

// Name is the summarizer's agent name on status updates
const Name = "numerical_summarizer"

// FallbackSummary replaces a failed or blank model response
const FallbackSummary = "Failed to generate summary via Gemini."

const (
	defaultLookbackDays = 30
	promptRows          = 7
)

// SummaryTrigger announces freshly stored metrics for a ticker
type SummaryTrigger struct {
	Ticker    string `json:"ticker"`
	Date      string `json:"date"`
	RequestID string `json:"request_id"`
}

// InsightsProcessed announces persisted insights
type InsightsProcessed struct {
	Ticker        string `json:"ticker"`
	Date          string `json:"date"`
	InsightsCount int    `json:"insights_count"`
	RequestID     string `json:"request_id"`
}

type focus struct {
	label       string
	instruction string
}

var focuses = map[string]focus{
	insight.TypeOverallPriceTrend: {
		label:       "Overall Price Trend",
		instruction: "Concentrate on the direction and consistency of the closing price across these sessions.",
	},
	insight.TypeVolumeVolatilityAnalysis: {
		label:       "Volume and Volatility",
		instruction: "Concentrate on shifts in traded volume and the size of the daily percentage changes.",
	},
}

type Config struct {
	ProcessedTopic string
	StatusTopic    string
	LookbackDays   int
}

// Summarizer turns a window of stored metrics into model-written insights
type Summarizer struct {
	*agents.Base
	metrics   financial.Repository
	insights  insight.Repository
	generator llm.Generator
	prompts   *templates.Registry

	embedder   embeddings.Provider
	embeddings insight.EmbeddingStore

	processedTopic string
	lookback       time.Duration
}

var _ agents.Agent = (*Summarizer)(nil)

func New(
	publisher agents.Publisher,
	metricRepo financial.Repository,
	insightRepo insight.Repository,
	generator llm.Generator,
	cfg Config,
) *Summarizer {
	days := cfg.LookbackDays
	if days <= 0 {
		days = defaultLookbackDays
	}

	return &Summarizer{
		Base:           agents.NewBase(Name, publisher, cfg.StatusTopic),
		metrics:        metricRepo,
		insights:       insightRepo,
		generator:      generator,
		prompts:        templates.Get(),
		processedTopic: cfg.ProcessedTopic,
		lookback:       time.Duration(days) * 24 * time.Hour,
	}
}

// WithEmbeddings stores a vector for every generated summary
func (s *Summarizer) WithEmbeddings(provider embeddings.Provider, store insight.EmbeddingStore) *Summarizer {
	s.embedder = provider
	s.embeddings = store
	return s
}

func (s *Summarizer) ProcessMessage(ctx context.Context, msg *agents.Message) error {
	trigger, err := agents.Decode[SummaryTrigger](msg)
	if err != nil {
		requestID, _ := msg.Payload["request_id"].(string)
		return s.Fail(ctx, requestID, errors.Wrap(err, "invalid summary trigger"))
	}

	ticker := strings.TrimSpace(trigger.Ticker)
	if ticker == "" || strings.TrimSpace(trigger.Date) == "" {
		metrics.SummarizerSkips.WithLabelValues("missing_fields").Inc()
		s.Log().Warnw("Summary trigger missing ticker or date, skipping",
			"request_id", trigger.RequestID,
			"ticker", trigger.Ticker,
			"date", trigger.Date,
		)
		return nil
	}

	end, err := time.Parse(financial.DateLayout, strings.TrimSpace(trigger.Date))
	if err != nil {
		return s.Fail(ctx, trigger.RequestID,
			errors.NewValidationError("date", "must be YYYY-MM-DD", trigger.Date))
	}
	start := end.Add(-s.lookback)
	startStr, endStr := start.Format(financial.DateLayout), end.Format(financial.DateLayout)

	s.PublishStatus(ctx, events.StatusUpdate{
		RequestID: trigger.RequestID,
		Status:    events.StatusInProgress,
		Message:   fmt.Sprintf("Analyzing financial metrics for %s from %s to %s.", ticker, startStr, endStr),
	})

	records, err := s.metrics.ListRange(ctx, ticker, start, end)
	if err != nil {
		return s.Fail(ctx, trigger.RequestID, errors.Wrapf(err, "failed to load financial metrics for %s", ticker))
	}
	if len(records) == 0 {
		s.PublishStatus(ctx, events.StatusUpdate{
			RequestID: trigger.RequestID,
			Status:    events.StatusSkipped,
			Message:   fmt.Sprintf("No data for %s to summarize.", ticker),
		})
		return nil
	}

	rows := renderRows(records)
	source := []string{fmt.Sprintf("financial_metrics:%s:%s_to_%s", ticker, startStr, endStr)}
	now := s.Now()

	batch := make([]insight.Insight, 0, len(insight.Types))
	for _, insightType := range insight.Types {
		text, err := s.summarize(ctx, ticker, rows, insightType)
		if err != nil {
			return s.Fail(ctx, trigger.RequestID, errors.Wrapf(err, "failed to build %s prompt for %s", insightType, ticker))
		}

		batch = append(batch, insight.Insight{
			Ticker:             ticker,
			InsightType:        insightType,
			SummaryText:        text,
			GenerationDate:     end,
			SourceMetrics:      source,
			EmbeddingID:        s.embed(ctx, ticker, insightType, end, text),
			RequestID:          trigger.RequestID,
			IngestionTimestamp: now,
		})
	}

	s.logDiagnostics(ticker, records)

	if err := s.insights.InsertBatch(ctx, batch); err != nil {
		return s.Fail(ctx, trigger.RequestID, errors.Wrapf(err, "failed to store insights for %s", ticker))
	}

	processed := InsightsProcessed{
		Ticker:        ticker,
		Date:          endStr,
		InsightsCount: len(batch),
		RequestID:     trigger.RequestID,
	}
	if err := s.Publish(ctx, s.processedTopic, trigger.RequestID, processed); err != nil {
		return s.Fail(ctx, trigger.RequestID, errors.Wrapf(err, "failed to announce insights for %s", ticker))
	}

	s.PublishStatus(ctx, events.StatusUpdate{
		RequestID:     trigger.RequestID,
		Status:        events.StatusCompleted,
		Message:       fmt.Sprintf("Numerical insights generated for %s on %s.", ticker, endStr),
		InsightsCount: len(batch),
	})
	return nil
}

// summarize asks the model for one insight. Model failures degrade to
// FallbackSummary; only a broken prompt template is returned as an error.
func (s *Summarizer) summarize(ctx context.Context, ticker string, rows []string, insightType string) (string, error) {
	f := focuses[insightType]
	prompt, err := s.prompts.Render(templates.PromptInsightSummary, templates.InsightPromptData{
		Ticker:      ticker,
		Rows:        rows,
		Instruction: f.instruction,
		Focus:       f.label,
	})
	if err != nil {
		return "", err
	}

	text, err := s.generator.Generate(ctx, prompt)
	if err != nil || strings.TrimSpace(text) == "" {
		s.Log().Warnw("Summary generation failed, using fallback",
			"ticker", ticker,
			"insight_type", insightType,
			"model", s.generator.Model(),
			"error", err,
		)
		return FallbackSummary, nil
	}
	return strings.TrimSpace(text), nil
}

func (s *Summarizer) embed(ctx context.Context, ticker, insightType string, date time.Time, text string) *string {
	if s.embedder == nil || s.embeddings == nil {
		return nil
	}

	vector, err := s.embedder.GenerateEmbedding(ctx, text)
	if err != nil {
		s.Log().Warnw("Embedding generation failed", "ticker", ticker, "insight_type", insightType, "error", err)
		return nil
	}

	id, err := s.embeddings.Save(ctx, &insight.Embedding{
		Ticker:      ticker,
		InsightType: insightType,
		Date:        date,
		Content:     text,
		Model:       s.embedder.Name(),
		Vector:      vector,
	})
	if err != nil {
		s.Log().Warnw("Embedding not stored", "ticker", ticker, "insight_type", insightType, "error", err)
		return nil
	}
	return &id
}

func (s *Summarizer) logDiagnostics(ticker string, records []financial.Metric) {
	total := decimal.Zero
	for _, r := range records {
		if r.Close != nil {
			total = total.Add(decimal.NewFromFloat(*r.Close))
		}
	}
	average := total.Div(decimal.NewFromInt(int64(len(records))))

	change := decimal.Zero
	first, last := records[0].Close, records[len(records)-1].Close
	if first != nil && last != nil && *first != 0 {
		from := decimal.NewFromFloat(*first)
		change = decimal.NewFromFloat(*last).Sub(from).Div(from).Mul(decimal.NewFromInt(100))
	}

	s.Log().Infow("Window diagnostics",
		"ticker", ticker,
		"records", len(records),
		"average_close", average.StringFixed(2),
		"price_change_percent", change.StringFixed(2),
	)
}

// renderRows formats the last promptRows records, oldest first
func renderRows(records []financial.Metric) []string {
	if len(records) > promptRows {
		records = records[len(records)-promptRows:]
	}

	rows := make([]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, fmt.Sprintf("Date: %s, Close: %s, Volume: %s, Day Change: %s",
			r.DateString(),
			templates.FormatNumber(r.Close),
			templates.FormatCount(r.Volume),
			templates.FormatPercent(r.DayChangePercent),
		))
	}
	return rows
}
