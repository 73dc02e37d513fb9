package retrieval

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/docchat/internal/common"
	"github.com/ternarybob/docchat/internal/interfaces"
	"github.com/ternarybob/docchat/internal/models"
)

// blockSeparator joins formatted match blocks in the grounding text
const blockSeparator = "\n\n"

// Retriever embeds a query, looks up its nearest chunks and applies the
// relevance gate. The gate is all-or-nothing: when the best match scores at
// or below the threshold no context is returned, otherwise every match is.
type Retriever struct {
	embedder  interfaces.EmbeddingService
	store     interfaces.VectorStore
	topK      int
	threshold float64
	logger    arbor.ILogger
}

// NewRetriever creates a retriever using the topK and threshold from config
func NewRetriever(embedder interfaces.EmbeddingService, store interfaces.VectorStore, config common.RAGConfig, logger arbor.ILogger) *Retriever {
	topK := config.TopK
	if topK <= 0 {
		topK = 10
	}
	return &Retriever{
		embedder:  embedder,
		store:     store,
		topK:      topK,
		threshold: config.SimilarityThreshold,
		logger:    logger,
	}
}

// Retrieve returns the grounding context for query. An empty context is a
// valid result and means the answer should not be grounded.
func (r *Retriever) Retrieve(ctx context.Context, query string) (*models.GroundingContext, error) {
	vector, err := r.embedder.EmbedQuery(ctx, query)
	if err != nil {
		if errors.Is(err, models.ErrEmptyInput) || errors.Is(err, models.ErrEmbedding) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", models.ErrEmbedding, err)
	}

	matches, err := r.store.Query(ctx, models.VectorQuery{
		Vector:          vector,
		TopK:            r.topK,
		IncludeMetadata: true,
		IncludeValues:   false,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", models.ErrIndexQuery, err)
	}

	if !r.passesGate(matches) {
		topScore := 0.0
		if len(matches) > 0 {
			topScore = matches[0].Score
		}
		r.logger.Debug().
			Int("matches", len(matches)).
			Float64("top_score", topScore).
			Float64("threshold", r.threshold).
			Msg("No relevant context found")
		return &models.GroundingContext{TopScore: topScore}, nil
	}

	blocks := make([]string, len(matches))
	for i, m := range matches {
		blocks[i] = m.FormatBlock()
	}

	groundingContext := &models.GroundingContext{
		Text:     strings.Join(blocks, blockSeparator),
		Matches:  matches,
		TopScore: matches[0].Score,
	}

	r.logger.Debug().
		Int("matches", len(matches)).
		Float64("top_score", groundingContext.TopScore).
		Strs("sources", groundingContext.Sources()).
		Msg("Context retrieved")

	return groundingContext, nil
}

// passesGate requires the best match to score strictly above the threshold.
// Matches arrive sorted by score, best first.
func (r *Retriever) passesGate(matches []models.RetrievalMatch) bool {
	return len(matches) > 0 && matches[0].Score > r.threshold
}
