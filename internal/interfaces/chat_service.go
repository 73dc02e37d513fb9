package interfaces

import (
	"context"

	"github.com/ternarybob/docchat/internal/models"
)

// Retriever turns a query into a grounding context
type Retriever interface {
	Retrieve(ctx context.Context, query string) (*models.GroundingContext, error)
}

// ChatService answers a caller-supplied conversation with a streamed reply.
// Cancelling ctx stops fragment delivery.
type ChatService interface {
	Answer(ctx context.Context, conversation []models.ConversationMessage) (*models.AnswerStream, error)
}
