package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/docchat/internal/models"
)

type stubEmbedder struct {
	err     error
	queries []string
}

func (e *stubEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return nil, errors.New("not used")
}

func (e *stubEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	e.queries = append(e.queries, text)
	if e.err != nil {
		return nil, e.err
	}
	return []float32{1, 0}, nil
}

func (e *stubEmbedder) ModelName() string { return "stub" }
func (e *stubEmbedder) Dimension() int   { return 2 }

type stubStore struct {
	matches []models.RetrievalMatch
	err     error
	query   models.VectorQuery
}

func (s *stubStore) Upsert(ctx context.Context, records []models.IndexRecord) error { return nil }

func (s *stubStore) Query(ctx context.Context, query models.VectorQuery) ([]models.RetrievalMatch, error) {
	s.query = query
	return s.matches, s.err
}

func (s *stubStore) Count(ctx context.Context) (int, error) { return len(s.matches), nil }
func (s *stubStore) Close() error                          { return nil }

type stubChat struct {
	answerFn     func(conversation []models.ConversationMessage) (*models.AnswerStream, error)
	conversation []models.ConversationMessage
}

func (c *stubChat) Answer(ctx context.Context, conversation []models.ConversationMessage) (*models.AnswerStream, error) {
	c.conversation = conversation
	return c.answerFn(conversation)
}

type stubDocuments struct {
	ingestFn func(filename string, data []byte) (*models.IngestResult, error)
	records  []*models.IngestRecord
	listErr  error
}

func (d *stubDocuments) IngestFile(ctx context.Context, filename string, data []byte) (*models.IngestResult, error) {
	return d.ingestFn(filename, data)
}

func (d *stubDocuments) ListDocuments(ctx context.Context) ([]*models.IngestRecord, error) {
	return d.records, d.listErr
}

func (d *stubDocuments) IsCurrent(ctx context.Context, filename string, data []byte) (bool, error) {
	return false, nil
}

func toolRequest(name string, args map[string]any) mcp.CallToolRequest {
	request := mcp.CallToolRequest{}
	request.Params.Name = name
	request.Params.Arguments = args
	return request
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, result)
	require.Len(t, result.Content, 1)
	content, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content")
	return content.Text
}

func streamOf(grounded bool, sources []string, fragments ...string) *models.AnswerStream {
	out := make(chan string, len(fragments))
	for _, f := range fragments {
		out <- f
	}
	close(out)
	return &models.AnswerStream{Fragments: out, Grounded: grounded, Sources: sources}
}

func TestSearchDocuments_LimitIsClamped(t *testing.T) {
	tests := []struct {
		name  string
		args  map[string]any
		wantK int
	}{
		{"default", map[string]any{"query": "capital"}, 10},
		{"explicit", map[string]any{"query": "capital", "limit": float64(3)}, 3},
		{"zero", map[string]any{"query": "capital", "limit": float64(0)}, 10},
		{"negative", map[string]any{"query": "capital", "limit": float64(-4)}, 10},
		{"above max", map[string]any{"query": "capital", "limit": float64(500)}, 50},
		{"at max", map[string]any{"query": "capital", "limit": float64(50)}, 50},
		{"minimum", map[string]any{"query": "capital", "limit": float64(1)}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &stubStore{}
			handler := handleSearchDocuments(&stubEmbedder{}, store, arbor.NewLogger())

			_, err := handler(context.Background(), toolRequest("search_documents", tt.args))
			require.NoError(t, err)
			assert.Equal(t, tt.wantK, store.query.TopK)
			assert.True(t, store.query.IncludeMetadata)
		})
	}
}

func TestSearchDocuments_FormatsMatches(t *testing.T) {
	embedder := &stubEmbedder{}
	store := &stubStore{matches: []models.RetrievalMatch{
		{ID: "a.txt-0", Score: 0.91, Metadata: models.ChunkMetadata{Source: "a.txt", Text: "Paris."}},
	}}

	result, err := handleSearchDocuments(embedder, store, arbor.NewLogger())(context.Background(),
		toolRequest("search_documents", map[string]any{"query": "capital"}))
	require.NoError(t, err)

	text := resultText(t, result)
	assert.Contains(t, text, "(1 results)")
	assert.Contains(t, text, "a.txt (chunk 0)")
	assert.Equal(t, []string{"capital"}, embedder.queries)
}

func TestSearchDocuments_Errors(t *testing.T) {
	logger := arbor.NewLogger()

	result, err := handleSearchDocuments(&stubEmbedder{}, &stubStore{}, logger)(context.Background(),
		toolRequest("search_documents", map[string]any{}))
	require.NoError(t, err)
	assert.Equal(t, "Error: query parameter is required", resultText(t, result))

	result, err = handleSearchDocuments(&stubEmbedder{err: errors.New("quota exceeded")}, &stubStore{}, logger)(context.Background(),
		toolRequest("search_documents", map[string]any{"query": "capital"}))
	require.NoError(t, err)
	assert.Contains(t, resultText(t, result), "Search error: quota exceeded")

	result, err = handleSearchDocuments(&stubEmbedder{}, &stubStore{err: errors.New("index offline")}, logger)(context.Background(),
		toolRequest("search_documents", map[string]any{"query": "capital"}))
	require.NoError(t, err)
	assert.Contains(t, resultText(t, result), "Search error: index offline")
}

func TestAskDocuments(t *testing.T) {
	chat := &stubChat{answerFn: func(conversation []models.ConversationMessage) (*models.AnswerStream, error) {
		return streamOf(true, []string{"a.txt"}, "Paris", " is the capital."), nil
	}}

	result, err := handleAskDocuments(chat, arbor.NewLogger())(context.Background(),
		toolRequest("ask_documents", map[string]any{"question": "What is the capital of France?"}))
	require.NoError(t, err)

	text := resultText(t, result)
	assert.Contains(t, text, "Paris is the capital.")
	assert.Contains(t, text, "**Sources:** a.txt")
	require.Len(t, chat.conversation, 1)
	assert.Equal(t, models.RoleUser, chat.conversation[0].Role)
	assert.Equal(t, "What is the capital of France?", chat.conversation[0].Content)
}

func TestAskDocuments_Errors(t *testing.T) {
	chat := &stubChat{answerFn: func(conversation []models.ConversationMessage) (*models.AnswerStream, error) {
		return nil, models.ErrStreamGeneration
	}}
	handler := handleAskDocuments(chat, arbor.NewLogger())

	result, err := handler(context.Background(), toolRequest("ask_documents", map[string]any{}))
	require.NoError(t, err)
	assert.Equal(t, "Error: question parameter is required", resultText(t, result))
	assert.Nil(t, chat.conversation)

	result, err = handler(context.Background(), toolRequest("ask_documents", map[string]any{"question": "q"}))
	require.NoError(t, err)
	assert.Contains(t, resultText(t, result), "Answer error:")
}

func TestIngestText(t *testing.T) {
	var gotName, gotText string
	documents := &stubDocuments{ingestFn: func(filename string, data []byte) (*models.IngestResult, error) {
		gotName, gotText = filename, string(data)
		return &models.IngestResult{Source: filename, ChunkCount: 2}, nil
	}}

	result, err := handleIngestText(documents, arbor.NewLogger())(context.Background(),
		toolRequest("ingest_text", map[string]any{"name": "notes.md", "text": "# Notes\n\nOne. Two."}))
	require.NoError(t, err)

	assert.Equal(t, "Processed 2 chunks from notes.md", resultText(t, result))
	assert.Equal(t, "notes.md", gotName)
	assert.Equal(t, "# Notes\n\nOne. Two.", gotText)
}

func TestIngestText_Errors(t *testing.T) {
	documents := &stubDocuments{ingestFn: func(filename string, data []byte) (*models.IngestResult, error) {
		return nil, models.ErrEmptyInput
	}}
	handler := handleIngestText(documents, arbor.NewLogger())

	tests := []struct {
		name string
		args map[string]any
		want string
	}{
		{"missing name", map[string]any{"text": "hello"}, "Error: name parameter is required"},
		{"missing text", map[string]any{"name": "a.txt"}, "Error: text parameter is required"},
		{"empty text", map[string]any{"name": "a.txt", "text": ""}, "Error: text parameter is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := handler(context.Background(), toolRequest("ingest_text", tt.args))
			require.NoError(t, err)
			assert.Equal(t, tt.want, resultText(t, result))
		})
	}

	result, err := handler(context.Background(), toolRequest("ingest_text", map[string]any{"name": "a.txt", "text": "   "}))
	require.NoError(t, err)
	assert.Contains(t, resultText(t, result), "Ingest error:")
}

func TestListDocuments(t *testing.T) {
	at := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	documents := &stubDocuments{records: []*models.IngestRecord{{Source: "a.txt", ChunkCount: 3, IngestedAt: at}}}

	result, err := handleListDocuments(documents, arbor.NewLogger())(context.Background(), toolRequest("list_documents", nil))
	require.NoError(t, err)
	assert.Contains(t, resultText(t, result), "| a.txt | 3 | 2025-01-02T03:04:05Z |")

	documents.listErr = errors.New("registry closed")
	result, err = handleListDocuments(documents, arbor.NewLogger())(context.Background(), toolRequest("list_documents", nil))
	require.NoError(t, err)
	assert.Contains(t, resultText(t, result), "List error: registry closed")
}
