package embeddings

import (
	"context"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/internal/metrics"
	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/pkg/errors"
	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/pkg/logger"
)

const defaultEmbeddingTimeout = 30 * time.Second

// openAIDims maps known embedding models to their vector width
var openAIDims = map[string]int{
	openai.EmbeddingModelTextEmbedding3Small: 1536,
	openai.EmbeddingModelTextEmbedding3Large: 3072,
	openai.EmbeddingModelTextEmbeddingAda002: 1536,
}

// OpenAIProvider embeds insight text through the OpenAI embeddings endpoint
type OpenAIProvider struct {
	client  openai.Client
	model   string
	dims    int
	timeout time.Duration
	log     *logger.Logger
}

// NewOpenAIProvider builds a provider. Extra request options (base URL, retries)
// are passed straight to the SDK client.
func NewOpenAIProvider(apiKey, model string, timeout time.Duration, opts ...option.RequestOption) (*OpenAIProvider, error) {
	if apiKey == "" {
		return nil, errors.NewValidationError("OPENAI_API_KEY", "required for openai embeddings", "")
	}
	if model == "" {
		model = openai.EmbeddingModelTextEmbedding3Small
	}
	if timeout <= 0 {
		timeout = defaultEmbeddingTimeout
	}

	dims, ok := openAIDims[model]
	if !ok {
		dims = 1536
	}

	clientOpts := append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)

	return &OpenAIProvider{
		client:  openai.NewClient(clientOpts...),
		model:   model,
		dims:    dims,
		timeout: timeout,
		log:     logger.Get().With("component", "openai_embeddings", "model", model),
	}, nil
}

// GenerateEmbedding embeds a single text
func (p *OpenAIProvider) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, errors.NewValidationError("text", "must not be empty", text)
	}

	vectors, err := p.embed(ctx, openai.EmbeddingNewParamsInputUnion{OfString: openai.String(text)}, 1)
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// GenerateBatchEmbeddings embeds texts in one request, preserving order
func (p *OpenAIProvider) GenerateBatchEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, errors.NewValidationError("texts", "must not be empty", 0)
	}
	return p.embed(ctx, openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: texts}, len(texts))
}

func (p *OpenAIProvider) embed(ctx context.Context, input openai.EmbeddingNewParamsInputUnion, want int) ([][]float32, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	resp, err := p.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Input: input,
		Model: openai.EmbeddingModel(p.model),
	})
	metrics.RecordEmbedding(string(ProviderOpenAI), err)
	if err != nil {
		return nil, errors.Wrap(err, "openai embeddings")
	}
	if len(resp.Data) != want {
		return nil, errors.Newf("openai embeddings: %w: got %d vectors for %d inputs",
			errors.ErrInternal, len(resp.Data), want)
	}

	// pgvector stores float32; the SDK returns float64
	out := make([][]float32, len(resp.Data))
	for i, d := range resp.Data {
		idx := int(d.Index)
		if idx < 0 || idx >= want || out[idx] != nil {
			idx = i
		}
		vec := make([]float32, len(d.Embedding))
		for j, v := range d.Embedding {
			vec[j] = float32(v)
		}
		out[idx] = vec
	}

	p.log.Debugw("Embedded text", "inputs", want, "tokens", resp.Usage.TotalTokens)
	return out, nil
}

// Dimensions returns the vector width for the configured model
func (p *OpenAIProvider) Dimensions() int {
	return p.dims
}

// Name returns the model id. Stored alongside each vector so searches
// only compare embeddings from the same model.
func (p *OpenAIProvider) Name() string {
	return p.model
}
