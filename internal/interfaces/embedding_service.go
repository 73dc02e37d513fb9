package interfaces

import (
	"context"
)

// EmbeddingService generates vector embeddings with the batching contract
// used by ingestion and retrieval
type EmbeddingService interface {
	// EmbedBatch embeds texts in one provider call; result[i] belongs to texts[i]
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// EmbedQuery embeds a single query string with the same model as EmbedBatch
	EmbedQuery(ctx context.Context, text string) ([]float32, error)

	// Get model information
	ModelName() string
	Dimension() int
}
