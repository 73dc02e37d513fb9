package interfaces

import (
	"context"
)

// Message represents a single message sent to a chat model
type Message struct {
	// Role identifies the message sender: "user", "assistant", or "system"
	Role string

	// Content contains the text content of the message
	Content string
}

// ChatRequest is a streaming completion request.
// Messages holds the system prompt first, followed by the conversation.
type ChatRequest struct {
	Messages    []Message
	Temperature float32
}

// StreamChunk is one unit delivered on a chat stream. A chunk with a non-nil
// Err is always the last value before the channel closes.
type StreamChunk struct {
	Text string
	Err  error
}

// EmbeddingProvider maps a batch of strings to vectors using a remote model.
// The returned slice must align positionally with texts.
type EmbeddingProvider interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
	EmbedModel() string
}

// ChatProvider streams completions from a language model.
//
// StreamChat returns once the request has been issued. The channel is closed
// by the provider when generation ends, fails, or ctx is cancelled.
type ChatProvider interface {
	StreamChat(ctx context.Context, req ChatRequest) (<-chan StreamChunk, error)
	Name() string
	ChatModel() string
}
