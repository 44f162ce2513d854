package inmemory

import (
	"context"
	"sync"
	"time"

	"github.com/barekit/concierge/pkg/llm"
	"github.com/barekit/concierge/pkg/store"
	"github.com/barekit/concierge/pkg/store/consts"
	"github.com/google/uuid"
)

// InMemory implements store.Store using maps. Used by tests and dev mode.
type InMemory struct {
	mu            sync.RWMutex
	conversations map[string]store.Conversation
	messages      map[string][]store.Message
}

// New creates a new InMemory store.
func New() *InMemory {
	return &InMemory{
		conversations: make(map[string]store.Conversation),
		messages:      make(map[string][]store.Message),
	}
}

// GetOrCreate returns the conversation with the given id, creating it if needed.
func (s *InMemory) GetOrCreate(ctx context.Context, id string) (store.Conversation, bool, error) {
	if id == "" {
		id = uuid.NewString()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if conv, ok := s.conversations[id]; ok {
		return conv, false, nil
	}

	conv := store.Conversation{ID: id, Title: consts.DefaultConversationTitle}
	s.conversations[id] = conv
	return conv, true, nil
}

// AppendMessage appends a message to a conversation.
func (s *InMemory) AppendMessage(ctx context.Context, conversationID string, role llm.Role, content string) (string, error) {
	msg := store.Message{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   content,
		CreatedAt: time.Now(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.messages[conversationID] = append(s.messages[conversationID], msg)
	return msg.ID, nil
}

// History loads all messages of a conversation in insertion order.
func (s *InMemory) History(ctx context.Context, conversationID string) ([]store.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	// Return a copy to avoid race conditions if the caller modifies the slice
	msgs := s.messages[conversationID]
	result := make([]store.Message, len(msgs))
	copy(result, msgs)

	return result, nil
}

// LastAssistantMessage returns the most recent assistant message, or nil.
func (s *InMemory) LastAssistantMessage(ctx context.Context, conversationID string) (*store.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	msgs := s.messages[conversationID]
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role == llm.RoleAssistant {
			msg := msgs[i]
			return &msg, nil
		}
	}
	return nil, nil
}

// ListConversations returns all conversations.
func (s *InMemory) ListConversations(ctx context.Context) ([]store.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]store.Conversation, 0, len(s.conversations))
	for _, conv := range s.conversations {
		result = append(result, conv)
	}
	return result, nil
}
