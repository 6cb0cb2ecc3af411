package llm

import (
	"context"
	"strings"
	"time"

	"google.golang.org/adk/model"
	"google.golang.org/adk/model/gemini"
	"google.golang.org/genai"

	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/internal/metrics"
	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/pkg/errors"
	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/pkg/logger"
)

// GeminiConfig selects the Gemini API or Vertex AI
type GeminiConfig struct {
	APIKey    string
	Model     string
	UseVertex bool
	Project   string
	Location  string
	Options   Options
}

// Gemini generates text through an ADK model
type Gemini struct {
	llm  model.LLM
	opts Options
	log  *logger.Logger
}

var _ Generator = (*Gemini)(nil)

// NewGemini creates the ADK Gemini model
func NewGemini(ctx context.Context, cfg GeminiConfig) (*Gemini, error) {
	if cfg.Model == "" {
		cfg.Model = "gemini-1.5-flash"
	}

	clientCfg := &genai.ClientConfig{}
	if cfg.UseVertex {
		if cfg.Project == "" {
			return nil, errors.NewValidationError("GOOGLE_CLOUD_PROJECT", "is required for vertex ai", nil)
		}
		clientCfg.Backend = genai.BackendVertexAI
		clientCfg.Project = cfg.Project
		clientCfg.Location = cfg.Location
	} else {
		if cfg.APIKey == "" {
			return nil, errors.NewValidationError("GEMINI_API_KEY", "is required", nil)
		}
		clientCfg.Backend = genai.BackendGeminiAPI
		clientCfg.APIKey = cfg.APIKey
	}

	llm, err := gemini.NewModel(ctx, cfg.Model, clientCfg)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create gemini model")
	}
	return NewGeminiFromModel(llm, cfg.Options), nil
}

// NewGeminiFromModel wraps an existing ADK model
func NewGeminiFromModel(llm model.LLM, opts Options) *Gemini {
	return &Gemini{
		llm:  llm,
		opts: opts.withDefaults(),
		log:  logger.Get().With("component", "gemini", "model", llm.Name()),
	}
}

func (g *Gemini) Model() string { return g.llm.Name() }

// Generate sends prompt as a single user turn and joins the text parts of the reply
func (g *Gemini) Generate(ctx context.Context, prompt string) (string, error) {
	start := time.Now()

	req := &model.LLMRequest{
		Contents: []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)},
		Config: &genai.GenerateContentConfig{
			Temperature:     genai.Ptr(g.opts.Temperature),
			MaxOutputTokens: g.opts.MaxOutputTokens,
		},
	}

	var sb strings.Builder
	var callErr error
	for resp, err := range g.llm.GenerateContent(ctx, req, false) {
		if err != nil {
			callErr = err
			break
		}
		if resp == nil {
			continue
		}
		if resp.ErrorMessage != "" {
			callErr = errors.New(resp.ErrorMessage)
			break
		}
		if resp.Content == nil {
			continue
		}
		for _, part := range resp.Content.Parts {
			if part != nil && part.Text != "" {
				sb.WriteString(part.Text)
			}
		}
	}

	text := strings.TrimSpace(sb.String())
	metrics.RecordLLMCall(BackendGemini, g.Model(), time.Since(start), callErr, callErr == nil && text == "")

	if callErr != nil {
		g.log.Warnw("Gemini call failed", "error", callErr)
		return "", errors.Newf("%w: gemini: %v", errors.ErrGenerationFailure, callErr)
	}
	if text == "" {
		return "", errors.Wrap(errors.ErrGenerationFailure, "gemini returned no text")
	}
	return text, nil
}
