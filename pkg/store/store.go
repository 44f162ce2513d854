package store

import (
	"context"
	"time"

	"github.com/barekit/concierge/pkg/llm"
)

// Conversation is a persistent chat thread opened by a widget visitor.
type Conversation struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// Message is a single persisted turn entry within a conversation.
type Message struct {
	ID        string    `json:"id"`
	Role      llm.Role  `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Store represents persistent storage for conversations and their messages.
type Store interface {
	// GetOrCreate returns the conversation with the given id, creating it if
	// it does not exist. An empty id means a fresh id is generated. The bool
	// reports whether the conversation was created by this call.
	GetOrCreate(ctx context.Context, id string) (Conversation, bool, error)
	// AppendMessage appends a message to a conversation and returns its id.
	AppendMessage(ctx context.Context, conversationID string, role llm.Role, content string) (string, error)
	// History returns all messages of a conversation ordered by creation time ascending.
	History(ctx context.Context, conversationID string) ([]Message, error)
	// LastAssistantMessage returns the most recent assistant message of a
	// conversation, or nil when the conversation has none.
	LastAssistantMessage(ctx context.Context, conversationID string) (*Message, error)
	// ListConversations returns all conversations.
	ListConversations(ctx context.Context) ([]Conversation, error)
}
