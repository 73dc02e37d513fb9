package models

// Role identifies the author of a conversation message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// ConversationMessage is one turn of caller-owned history.
type ConversationMessage struct {
	Role    Role   `json:"role" validate:"required,oneof=user assistant"`
	Content string `json:"content"`
}

// AnswerStream delivers answer fragments in generation order.
// Fragments is closed by the producer on completion and on failure.
type AnswerStream struct {
	Fragments <-chan string
	Grounded  bool
	Sources   []string
}
