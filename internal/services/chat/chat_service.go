package chat

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/docchat/internal/common"
	"github.com/ternarybob/docchat/internal/interfaces"
	"github.com/ternarybob/docchat/internal/models"
)

// StreamErrorMarker is appended to the answer when the provider fails after
// the first fragment has been delivered.
const StreamErrorMarker = "\nError: Failed to process the response stream."

// Service generates streamed answers to a caller-owned conversation
type Service struct {
	retriever   interfaces.Retriever
	provider    interfaces.ChatProvider
	temperature float32
	logger      arbor.ILogger
}

// NewService creates a chat service with the temperature from config
func NewService(retriever interfaces.Retriever, provider interfaces.ChatProvider, config common.RAGConfig, logger arbor.ILogger) *Service {
	return &Service{
		retriever:   retriever,
		provider:    provider,
		temperature: config.Temperature,
		logger:      logger,
	}
}

// Answer retrieves context for the last message, prepends the matching system
// prompt and starts the provider stream. It returns once the first fragment is
// ready; failures before that point are returned as ErrStreamGeneration and
// failures after it are folded into the stream as StreamErrorMarker.
// Cancel ctx to stop consuming early.
func (s *Service) Answer(ctx context.Context, conversation []models.ConversationMessage) (*models.AnswerStream, error) {
	query, err := lastQuery(conversation)
	if err != nil {
		return nil, err
	}

	gc, err := s.retriever.Retrieve(ctx, query)
	if err != nil {
		return nil, err
	}

	req := interfaces.ChatRequest{
		Messages:    BuildMessages(SystemPrompt(gc), conversation),
		Temperature: s.temperature,
	}

	start := time.Now()
	chunks, err := s.provider.StreamChat(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", models.ErrStreamGeneration, s.provider.Name(), err)
	}

	var first interfaces.StreamChunk
	var ok bool
	select {
	case first, ok = <-chunks:
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %w", models.ErrStreamGeneration, ctx.Err())
	}
	if ok && first.Err != nil {
		return nil, fmt.Errorf("%w: %s: %w", models.ErrStreamGeneration, s.provider.Name(), first.Err)
	}

	s.logger.Debug().
		Str("provider", s.provider.Name()).
		Str("model", s.provider.ChatModel()).
		Bool("grounded", !gc.IsEmpty()).
		Int("history", len(conversation)).
		Dur("first_fragment", time.Since(start)).
		Msg("Answer stream started")

	out := make(chan string, 1)
	if !ok {
		close(out)
	} else {
		common.SafeGo(s.logger, "answer-stream", func() {
			s.forward(ctx, first.Text, chunks, out)
		})
	}

	stream := &models.AnswerStream{
		Fragments: out,
		Grounded:  !gc.IsEmpty(),
	}
	if stream.Grounded {
		stream.Sources = gc.Sources()
	}
	return stream, nil
}

// forward relays provider chunks to out and closes it when done
func (s *Service) forward(ctx context.Context, first string, chunks <-chan interfaces.StreamChunk, out chan<- string) {
	defer close(out)

	if !send(ctx, out, first) {
		return
	}
	for chunk := range chunks {
		if chunk.Err != nil {
			s.logger.Error().Err(chunk.Err).Str("provider", s.provider.Name()).Msg("Answer stream failed")
			send(ctx, out, StreamErrorMarker)
			return
		}
		if !send(ctx, out, chunk.Text) {
			return
		}
	}
}

func send(ctx context.Context, out chan<- string, text string) bool {
	select {
	case out <- text:
		return true
	case <-ctx.Done():
		return false
	}
}

// BuildMessages prepends the system prompt to the conversation, which is
// passed through unchanged
func BuildMessages(systemPrompt string, conversation []models.ConversationMessage) []interfaces.Message {
	messages := make([]interfaces.Message, 0, len(conversation)+1)
	messages = append(messages, interfaces.Message{Role: string(models.RoleSystem), Content: systemPrompt})
	for _, m := range conversation {
		messages = append(messages, interfaces.Message{Role: string(m.Role), Content: m.Content})
	}
	return messages
}

// Collect drains a stream into a single string
func Collect(stream *models.AnswerStream) string {
	var b strings.Builder
	for fragment := range stream.Fragments {
		b.WriteString(fragment)
	}
	return b.String()
}

func lastQuery(conversation []models.ConversationMessage) (string, error) {
	if len(conversation) == 0 {
		return "", fmt.Errorf("%w: conversation is empty", models.ErrEmptyInput)
	}
	last := conversation[len(conversation)-1]
	if strings.TrimSpace(last.Content) == "" {
		return "", fmt.Errorf("%w: last message has no content", models.ErrEmptyInput)
	}
	return last.Content, nil
}
