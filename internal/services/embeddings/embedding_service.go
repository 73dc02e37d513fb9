package embeddings

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/docchat/internal/interfaces"
	"github.com/ternarybob/docchat/internal/models"
)

// Service implements EmbeddingService on top of an EmbeddingProvider.
// Every failure is reported as models.ErrEmbedding; nothing is retried.
type Service struct {
	provider  interfaces.EmbeddingProvider
	dimension int
	logger    arbor.ILogger
}

// NewService creates a new embedding service. A dimension of 0 disables the length check.
func NewService(provider interfaces.EmbeddingProvider, dimension int, logger arbor.ILogger) *Service {
	return &Service{
		provider:  provider,
		dimension: dimension,
		logger:    logger,
	}
}

// EmbedBatch embeds texts with a single provider call and verifies that the
// response aligns one-to-one with the input.
func (s *Service) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("%w: no texts to embed", models.ErrEmptyInput)
	}

	start := time.Now()
	vectors, err := s.provider.EmbedTexts(ctx, texts)
	duration := time.Since(start)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", models.ErrEmbedding, err)
	}

	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("%w: provider returned %d vectors for %d inputs", models.ErrEmbedding, len(vectors), len(texts))
	}
	for i, v := range vectors {
		if len(v) == 0 {
			return nil, fmt.Errorf("%w: empty vector at position %d", models.ErrEmbedding, i)
		}
		if s.dimension > 0 && len(v) != s.dimension {
			return nil, fmt.Errorf("%w: vector %d has dimension %d, expected %d", models.ErrEmbedding, i, len(v), s.dimension)
		}
	}

	s.logger.Debug().
		Str("model", s.provider.EmbedModel()).
		Int("batch_size", len(texts)).
		Dur("duration", duration).
		Msg("Generated embeddings")

	return vectors, nil
}

// EmbedQuery embeds a single query with the same model used for ingestion
func (s *Service) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: query text is empty", models.ErrEmptyInput)
	}

	vectors, err := s.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// ModelName returns the embedding model name
func (s *Service) ModelName() string {
	return s.provider.EmbedModel()
}

// Dimension returns the embedding dimension
func (s *Service) Dimension() int {
	return s.dimension
}
