package retrieval

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/docchat/internal/common"
	"github.com/ternarybob/docchat/internal/models"
)

type fakeEmbedder struct {
	vector []float32
	err    error
}

func (f *fakeEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return nil, errors.New("not used")
}

func (f *fakeEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.vector, nil
}

func (f *fakeEmbedder) ModelName() string { return "fake" }
func (f *fakeEmbedder) Dimension() int   { return len(f.vector) }

type fakeStore struct {
	matches []models.RetrievalMatch
	err     error
	query   models.VectorQuery
}

func (f *fakeStore) Upsert(ctx context.Context, records []models.IndexRecord) error { return nil }

func (f *fakeStore) Query(ctx context.Context, query models.VectorQuery) ([]models.RetrievalMatch, error) {
	f.query = query
	return f.matches, f.err
}

func (f *fakeStore) Count(ctx context.Context) (int, error) { return len(f.matches), nil }
func (f *fakeStore) Close() error                            { return nil }

func match(source, text string, score float64) models.RetrievalMatch {
	return models.RetrievalMatch{
		ID:       source,
		Score:    score,
		Metadata: models.ChunkMetadata{Source: source, Text: text},
	}
}

func newTestRetriever(store *fakeStore) *Retriever {
	return NewRetriever(&fakeEmbedder{vector: []float32{1, 0}}, store, common.NewDefaultRAGConfig(), arbor.NewLogger())
}

func TestRetrieve_FormatsAllMatchesWhenTopPassesGate(t *testing.T) {
	store := &fakeStore{matches: []models.RetrievalMatch{
		match("a.txt", "Paris is the capital of France.", 0.82),
		match("b.txt", "Unrelated filler.", 0.31),
	}}

	gc, err := newTestRetriever(store).Retrieve(context.Background(), "capital of France?")
	require.NoError(t, err)

	assert.Equal(t, "[Source: a.txt]\nParis is the capital of France.\n\n[Source: b.txt]\nUnrelated filler.", gc.Text)
	assert.InDelta(t, 0.82, gc.TopScore, 1e-9)
	assert.Len(t, gc.Matches, 2)
	assert.False(t, gc.IsEmpty())
}

func TestRetrieve_QueryParameters(t *testing.T) {
	store := &fakeStore{}
	_, err := newTestRetriever(store).Retrieve(context.Background(), "anything")
	require.NoError(t, err)

	assert.Equal(t, 10, store.query.TopK)
	assert.True(t, store.query.IncludeMetadata)
	assert.False(t, store.query.IncludeValues)
	assert.Equal(t, []float32{1, 0}, store.query.Vector)
}

func TestRetrieve_GateBoundary(t *testing.T) {
	tests := []struct {
		name     string
		score    float64
		grounded bool
	}{
		{"equal to threshold", 0.70, false},
		{"just above threshold", 0.71, true},
		{"well below threshold", 0.2, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeStore{matches: []models.RetrievalMatch{match("a.txt", "Text.", tt.score)}}
			gc, err := newTestRetriever(store).Retrieve(context.Background(), "q")
			require.NoError(t, err)
			assert.Equal(t, !tt.grounded, gc.IsEmpty())
		})
	}
}

func TestRetrieve_NoMatches(t *testing.T) {
	gc, err := newTestRetriever(&fakeStore{}).Retrieve(context.Background(), "q")
	require.NoError(t, err)
	assert.True(t, gc.IsEmpty())
	assert.Empty(t, gc.Matches)
}

func TestRetrieve_MissingSourceRendersUnknown(t *testing.T) {
	store := &fakeStore{matches: []models.RetrievalMatch{match("", "Orphan text.", 0.9)}}
	gc, err := newTestRetriever(store).Retrieve(context.Background(), "q")
	require.NoError(t, err)
	assert.Equal(t, "[Source: Unknown]\nOrphan text.", gc.Text)
}

func TestRetrieve_Errors(t *testing.T) {
	t.Run("embedding failure", func(t *testing.T) {
		r := NewRetriever(&fakeEmbedder{err: errors.New("timeout")}, &fakeStore{}, common.NewDefaultRAGConfig(), arbor.NewLogger())
		_, err := r.Retrieve(context.Background(), "q")
		assert.ErrorIs(t, err, models.ErrEmbedding)
	})

	t.Run("index failure", func(t *testing.T) {
		_, err := newTestRetriever(&fakeStore{err: errors.New("connection refused")}).Retrieve(context.Background(), "q")
		assert.ErrorIs(t, err, models.ErrIndexQuery)
	})
}
