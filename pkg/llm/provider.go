package llm

import "context"

// Role represents the role of the message sender (system, user, assistant).
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message represents a single message in the conversation.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Provider defines the interface for an LLM completion provider.
type Provider interface {
	// Chat sends an ordered list of messages to the LLM and returns the response.
	Chat(ctx context.Context, messages []Message) (*Message, error)
}
