package embeddings

import "context"

// Provider turns insight text into vectors for similarity search
type Provider interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
	// GenerateBatchEmbeddings returns one vector per text, in input order
	GenerateBatchEmbeddings(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
	// Name identifies the model that produced the vectors
	Name() string
}
