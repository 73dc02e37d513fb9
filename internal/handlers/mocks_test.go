package handlers

import (
	"context"

	"github.com/ternarybob/docchat/internal/models"
)

// mockDocumentService implements interfaces.DocumentService for testing
type mockDocumentService struct {
	ingestFileFunc    func(ctx context.Context, filename string, data []byte) (*models.IngestResult, error)
	listDocumentsFunc func(ctx context.Context) ([]*models.IngestRecord, error)
}

func (m *mockDocumentService) IngestFile(ctx context.Context, filename string, data []byte) (*models.IngestResult, error) {
	if m.ingestFileFunc != nil {
		return m.ingestFileFunc(ctx, filename, data)
	}
	return &models.IngestResult{Source: filename, ChunkCount: 1}, nil
}

func (m *mockDocumentService) ListDocuments(ctx context.Context) ([]*models.IngestRecord, error) {
	if m.listDocumentsFunc != nil {
		return m.listDocumentsFunc(ctx)
	}
	return nil, nil
}

func (m *mockDocumentService) IsCurrent(ctx context.Context, filename string, data []byte) (bool, error) {
	return false, nil
}

// mockChatService implements interfaces.ChatService for testing
type mockChatService struct {
	answerFunc func(ctx context.Context, conversation []models.ConversationMessage) (*models.AnswerStream, error)
}

func (m *mockChatService) Answer(ctx context.Context, conversation []models.ConversationMessage) (*models.AnswerStream, error) {
	if m.answerFunc != nil {
		return m.answerFunc(ctx, conversation)
	}
	return streamOf(false, nil), nil
}

// streamOf returns a closed stream that yields fragments in order
func streamOf(grounded bool, sources []string, fragments ...string) *models.AnswerStream {
	ch := make(chan string, len(fragments))
	for _, f := range fragments {
		ch <- f
	}
	close(ch)
	return &models.AnswerStream{Fragments: ch, Grounded: grounded, Sources: sources}
}

type mockCounter struct {
	count int
	err   error
}

func (m *mockCounter) Count(ctx context.Context) (int, error) {
	return m.count, m.err
}
