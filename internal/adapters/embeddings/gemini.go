package embeddings

import (
	"context"
	"time"

	"google.golang.org/genai"

	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/internal/metrics"
	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/pkg/errors"
	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/pkg/logger"
)

const defaultGeminiEmbeddingModel = "text-embedding-004"

// GeminiProvider implements embedding generation with the genai SDK
type GeminiProvider struct {
	client  *genai.Client
	model   string
	timeout time.Duration
	log     *logger.Logger
}

// NewGeminiProvider creates a Gemini API embedding provider
func NewGeminiProvider(ctx context.Context, apiKey, model string, timeout time.Duration) (*GeminiProvider, error) {
	if apiKey == "" {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "gemini API key is required")
	}
	if model == "" {
		model = defaultGeminiEmbeddingModel
	}
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create genai client")
	}

	return &GeminiProvider{
		client:  client,
		model:   model,
		timeout: timeout,
		log:     logger.Get().With("component", "gemini_embeddings", "model", model),
	}, nil
}

// GenerateEmbedding creates a vector embedding for the given text
func (p *GeminiProvider) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "text cannot be empty")
	}

	out, err := p.embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return out[0], nil
}

// GenerateBatchEmbeddings embeds every text in one request
func (p *GeminiProvider) GenerateBatchEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "texts cannot be empty")
	}
	return p.embed(ctx, texts)
}

func (p *GeminiProvider) embed(ctx context.Context, texts []string) ([][]float32, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	contents := make([]*genai.Content, 0, len(texts))
	for _, t := range texts {
		contents = append(contents, genai.NewContentFromText(t, genai.RoleUser))
	}

	resp, err := p.client.Models.EmbedContent(ctx, p.model, contents, nil)
	metrics.RecordEmbedding(string(ProviderGemini), err)
	if err != nil {
		return nil, errors.Wrap(err, "gemini embed call failed")
	}
	if len(resp.Embeddings) != len(texts) {
		return nil, errors.Wrapf(errors.ErrInternal, "expected %d embeddings, got %d", len(texts), len(resp.Embeddings))
	}

	out := make([][]float32, len(resp.Embeddings))
	for i, e := range resp.Embeddings {
		if e == nil || len(e.Values) == 0 {
			return nil, errors.Wrapf(errors.ErrInternal, "empty embedding at index %d", i)
		}
		out[i] = e.Values
	}

	p.log.Debugw("Generated embeddings", "batch_size", len(texts), "embedding_dims", len(out[0]))
	return out, nil
}

// Dimensions returns the output size of text-embedding-004
func (p *GeminiProvider) Dimensions() int {
	return 768
}

// Name returns the model name
func (p *GeminiProvider) Name() string {
	return p.model
}
