package llm

import (
	"context"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/internal/metrics"
	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/pkg/errors"
	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/pkg/logger"
)

// OpenAIConfig configures the chat completions backend
type OpenAIConfig struct {
	APIKey string
	Model  string
	// BaseURL overrides the API endpoint
	BaseURL string
	Options Options
}

// OpenAI generates text with chat completions
type OpenAI struct {
	client openai.Client
	model  string
	opts   Options
	log    *logger.Logger
}

var _ Generator = (*OpenAI)(nil)

func NewOpenAI(cfg OpenAIConfig) (*OpenAI, error) {
	if cfg.APIKey == "" {
		return nil, errors.NewValidationError("OPENAI_API_KEY", "is required", nil)
	}
	if cfg.Model == "" {
		cfg.Model = openai.ChatModelGPT4oMini
	}

	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &OpenAI{
		client: openai.NewClient(opts...),
		model:  cfg.Model,
		opts:   cfg.Options.withDefaults(),
		log:    logger.Get().With("component", "openai_chat", "model", cfg.Model),
	}, nil
}

func (o *OpenAI) Model() string { return o.model }

func (o *OpenAI) Generate(ctx context.Context, prompt string) (string, error) {
	start := time.Now()

	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Model:               openai.ChatModel(o.model),
		Temperature:         openai.Float(float64(o.opts.Temperature)),
		MaxCompletionTokens: openai.Int(int64(o.opts.MaxOutputTokens)),
	})

	var text string
	if err == nil && len(resp.Choices) > 0 {
		text = strings.TrimSpace(resp.Choices[0].Message.Content)
	}
	metrics.RecordLLMCall(BackendOpenAI, o.model, time.Since(start), err, err == nil && text == "")

	if err != nil {
		o.log.Warnw("OpenAI call failed", "error", err)
		return "", errors.Newf("%w: openai: %v", errors.ErrGenerationFailure, err)
	}
	if text == "" {
		return "", errors.Wrap(errors.ErrGenerationFailure, "openai returned no text")
	}
	return text, nil
}
