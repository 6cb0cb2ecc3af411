package embeddings

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/openai/openai-go/v3/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/pkg/errors"
)

func TestOpenAIProvider_GenerateEmbedding(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/embeddings", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"object": "list",
			"model":  "text-embedding-3-small",
			"data": []any{map[string]any{
				"object": "embedding", "index": 0, "embedding": []float64{0.25, -0.5, 1},
			}},
			"usage": map[string]any{"prompt_tokens": 3, "total_tokens": 3},
		})
	}))
	t.Cleanup(srv.Close)

	p, err := NewOpenAIProvider("k", "", time.Second, option.WithBaseURL(srv.URL))
	require.NoError(t, err)
	assert.Equal(t, "text-embedding-3-small", p.Name())
	assert.Equal(t, 1536, p.Dimensions())

	vec, err := p.GenerateEmbedding(context.Background(), "TCS.NS trended upward")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.25, -0.5, 1}, vec)

	_, err = p.GenerateEmbedding(context.Background(), "")
	assert.True(t, errors.Is(err, errors.ErrInvalidInput))
}

func TestNewProvider(t *testing.T) {
	_, err := NewProvider(context.Background(), Config{Provider: "cohere"})
	assert.True(t, errors.Is(err, errors.ErrInvalidInput))

	_, err = NewProvider(context.Background(), Config{Provider: ProviderOpenAI})
	assert.True(t, errors.Is(err, errors.ErrInvalidInput))

	_, err = NewProvider(context.Background(), Config{Provider: ProviderGemini})
	assert.True(t, errors.Is(err, errors.ErrInvalidInput))

	assert.False(t, Config{}.Enabled())
}

func TestOpenAIProvider_BatchKeepsInputOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"object": "list",
			"model":  "text-embedding-3-large",
			"data": []any{
				map[string]any{"object": "embedding", "index": 1, "embedding": []float64{2}},
				map[string]any{"object": "embedding", "index": 0, "embedding": []float64{1}},
			},
			"usage": map[string]any{"prompt_tokens": 4, "total_tokens": 4},
		})
	}))
	t.Cleanup(srv.Close)

	p, err := NewOpenAIProvider("k", "text-embedding-3-large", time.Second, option.WithBaseURL(srv.URL))
	require.NoError(t, err)
	assert.Equal(t, 3072, p.Dimensions())

	vecs, err := p.GenerateBatchEmbeddings(context.Background(), []string{"first", "second"})
	require.NoError(t, err)
	assert.Equal(t, [][]float32{{1}, {2}}, vecs)

	_, err = p.GenerateBatchEmbeddings(context.Background(), []string{"only"})
	assert.True(t, errors.Is(err, errors.ErrInternal))
}
