package analyst

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/internal/adapters/embeddings"
	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/internal/adapters/llm"
	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/internal/adapters/marketdata"
	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/internal/agents"
	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/internal/domain/insight"
	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/internal/events"
	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/pkg/errors"
	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/pkg/templates"
)

// Name is the analyzer's agent name on status updates
const Name = "news_analyzer"

const (
	// minContentChars is the least research text worth a model call
	minContentChars = 50
	maxPromptChars  = 30000
)

// Source renders the research data set behind an insight type as text
type Source interface {
	Research(ctx context.Context, kind, ticker, query string) (string, error)
}

// Request asks for one qualitative insight. Query narrows news by topic and
// is passed to the model as the question to answer.
type Request struct {
	InsightType   string `json:"insight_type"`
	CompanyTicker string `json:"company_ticker"`
	Query         string `json:"query"`
	RequestID     string `json:"request_id"`
}

// InsightGenerated announces a stored qualitative insight
type InsightGenerated struct {
	Type        string    `json:"type"`
	Query       string    `json:"query,omitempty"`
	Ticker      string    `json:"ticker,omitempty"`
	Summary     string    `json:"summary"`
	EmbeddingID string    `json:"embedding_id,omitempty"`
	RequestID   string    `json:"request_id,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

var supported = map[string]bool{
	marketdata.ResearchNewsSentiment:  true,
	marketdata.ResearchCompanySummary: true,
	marketdata.ResearchEarnings:       true,
	marketdata.ResearchInsiderTrends:  true,
	marketdata.ResearchMacroCPI:       true,
	marketdata.ResearchMacroTreasury:  true,
}

type Config struct {
	GeneratedTopic string
	StatusTopic    string
}

// Analyzer turns news, company and macro data into model-written qualitative insights
type Analyzer struct {
	*agents.Base
	source    Source
	generator llm.Generator
	prompts   *templates.Registry

	embedder   embeddings.Provider
	embeddings insight.EmbeddingStore

	generatedTopic string
}

var _ agents.Agent = (*Analyzer)(nil)

func New(publisher agents.Publisher, source Source, generator llm.Generator, cfg Config) *Analyzer {
	return &Analyzer{
		Base:           agents.NewBase(Name, publisher, cfg.StatusTopic),
		source:         source,
		generator:      generator,
		prompts:        templates.Get(),
		generatedTopic: cfg.GeneratedTopic,
	}
}

// WithEmbeddings stores a vector for every insight. Once configured, an
// embedding failure fails the request.
func (a *Analyzer) WithEmbeddings(provider embeddings.Provider, store insight.EmbeddingStore) *Analyzer {
	a.embedder = provider
	a.embeddings = store
	return a
}

func (a *Analyzer) ProcessMessage(ctx context.Context, msg *agents.Message) error {
	req, err := agents.Decode[Request](msg)
	if err != nil {
		requestID, _ := msg.Payload["request_id"].(string)
		return a.Fail(ctx, requestID, errors.Wrap(err, "invalid qualitative request"))
	}
	if err := validate(&req); err != nil {
		return a.Fail(ctx, req.RequestID, err)
	}

	a.PublishStatus(ctx, events.StatusUpdate{
		RequestID: req.RequestID,
		Status:    events.StatusInProgress,
		Message:   fmt.Sprintf("Gathering %s data%s.", focus(req.InsightType), forTicker(req.CompanyTicker)),
	})

	content, err := a.source.Research(ctx, req.InsightType, req.CompanyTicker, req.Query)
	if err != nil {
		return a.Fail(ctx, req.RequestID, errors.Wrapf(err, "failed to fetch %s data", req.InsightType))
	}
	if len(strings.TrimSpace(content)) < minContentChars {
		a.Log().Warnw("No research content, skipping analysis",
			"request_id", req.RequestID,
			"insight_type", req.InsightType,
			"ticker", req.CompanyTicker,
		)
		a.PublishStatus(ctx, events.StatusUpdate{
			RequestID: req.RequestID,
			Status:    events.StatusSkipped,
			Message:   fmt.Sprintf("No %s data available%s.", focus(req.InsightType), forTicker(req.CompanyTicker)),
		})
		return nil
	}

	summary, err := a.analyze(ctx, req, content)
	if err != nil {
		return a.Fail(ctx, req.RequestID, err)
	}

	embeddingID, err := a.embed(ctx, req, summary)
	if err != nil {
		return a.Fail(ctx, req.RequestID, err)
	}

	generated := InsightGenerated{
		Type:        req.InsightType,
		Query:       req.Query,
		Ticker:      req.CompanyTicker,
		Summary:     summary,
		EmbeddingID: embeddingID,
		RequestID:   req.RequestID,
		Timestamp:   a.Now(),
	}
	if err := a.Publish(ctx, a.generatedTopic, req.RequestID, generated); err != nil {
		return a.Fail(ctx, req.RequestID, errors.Wrapf(err, "failed to announce %s insight", req.InsightType))
	}

	a.Log().Infow("Qualitative insight generated",
		"request_id", req.RequestID,
		"insight_type", req.InsightType,
		"ticker", req.CompanyTicker,
		"embedding_id", embeddingID,
	)
	a.PublishStatus(ctx, events.StatusUpdate{
		RequestID: req.RequestID,
		Status:    events.StatusCompleted,
		Message:   fmt.Sprintf("%s analyzed%s.", req.InsightType, forTicker(req.CompanyTicker)),
	})
	return nil
}

func validate(req *Request) error {
	req.InsightType = strings.ToUpper(strings.TrimSpace(req.InsightType))
	req.CompanyTicker = strings.ToUpper(strings.TrimSpace(req.CompanyTicker))

	switch {
	case req.InsightType == "":
		return errors.NewValidationError("insight_type", "is required", nil)
	case !supported[req.InsightType]:
		return errors.NewValidationError("insight_type", "unsupported insight type", req.InsightType)
	case marketdata.ResearchNeedsTicker(req.InsightType) && req.CompanyTicker == "":
		return errors.NewValidationError("company_ticker", "required for "+req.InsightType, nil)
	}
	return nil
}

func (a *Analyzer) analyze(ctx context.Context, req Request, content string) (string, error) {
	if r := []rune(content); len(r) > maxPromptChars {
		content = string(r[:maxPromptChars])
	}

	prompt, err := a.prompts.Render(templates.PromptQualitativeAnalysis, templates.QualitativePromptData{
		Focus: focus(req.InsightType),
		Query: strings.TrimSpace(req.Query),
		Data:  content,
	})
	if err != nil {
		return "", errors.Wrap(err, "failed to build analysis prompt")
	}

	text, err := a.generator.Generate(ctx, prompt)
	if err != nil {
		if errors.Is(err, errors.ErrGenerationFailure) {
			return "", err
		}
		return "", errors.Newf("%w: %w", errors.ErrGenerationFailure, err)
	}
	if strings.TrimSpace(text) == "" {
		return "", errors.Newf("%w: model returned no text", errors.ErrGenerationFailure)
	}
	return strings.TrimSpace(text), nil
}

func (a *Analyzer) embed(ctx context.Context, req Request, summary string) (string, error) {
	if a.embedder == nil || a.embeddings == nil {
		return "", nil
	}

	vector, err := a.embedder.GenerateEmbedding(ctx, summary)
	if err != nil {
		return "", errors.Wrapf(err, "failed to embed %s insight", req.InsightType)
	}

	now := a.Now()
	id, err := a.embeddings.Save(ctx, &insight.Embedding{
		Ticker:      req.CompanyTicker,
		InsightType: strings.ToLower(req.InsightType),
		Date:        time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC),
		Content:     summary,
		Model:       a.embedder.Name(),
		Vector:      vector,
	})
	if err != nil {
		return "", errors.Wrapf(err, "failed to store %s embedding", req.InsightType)
	}
	return id, nil
}

// focus turns NEWS_SENTIMENT_SUMMARY into "news sentiment summary"
func focus(insightType string) string {
	return strings.ToLower(strings.ReplaceAll(insightType, "_", " "))
}

func forTicker(ticker string) string {
	if ticker == "" {
		return ""
	}
	return " for " + ticker
}
