package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/barekit/concierge/pkg/llm"
	"github.com/barekit/concierge/pkg/store"
	"github.com/barekit/concierge/pkg/store/consts"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	conversationKeyPrefix = "conversation:"
	messagesKeyPrefix     = "messages:"
)

// RedisStore implements store.Store using Redis.
// Conversations are stored as hashes under "conversation:{id}", messages as
// a JSON list under "messages:{id}".
type RedisStore struct {
	client *redis.Client
}

// New creates a new RedisStore.
func New(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// GetOrCreate returns the conversation with the given id, creating it if needed.
func (s *RedisStore) GetOrCreate(ctx context.Context, id string) (store.Conversation, bool, error) {
	if id == "" {
		id = uuid.NewString()
	}

	key := conversationKeyPrefix + id
	created, err := s.client.HSetNX(ctx, key, consts.ColTitle, consts.DefaultConversationTitle).Result()
	if err != nil {
		return store.Conversation{}, false, fmt.Errorf("failed to get or create conversation: %w", err)
	}

	title, err := s.client.HGet(ctx, key, consts.ColTitle).Result()
	if err != nil {
		return store.Conversation{}, false, fmt.Errorf("failed to read conversation title: %w", err)
	}

	return store.Conversation{ID: id, Title: title}, created, nil
}

// AppendMessage appends a message to a conversation.
func (s *RedisStore) AppendMessage(ctx context.Context, conversationID string, role llm.Role, content string) (string, error) {
	msg := store.Message{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   content,
		CreatedAt: time.Now(),
	}

	b, err := json.Marshal(msg)
	if err != nil {
		return "", fmt.Errorf("failed to marshal message: %w", err)
	}

	key := messagesKeyPrefix + conversationID
	if err := s.client.RPush(ctx, key, b).Err(); err != nil {
		return "", err
	}
	return msg.ID, nil
}

// History loads all messages of a conversation in insertion order.
func (s *RedisStore) History(ctx context.Context, conversationID string) ([]store.Message, error) {
	key := messagesKeyPrefix + conversationID

	result, err := s.client.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		return nil, err
	}

	messages := make([]store.Message, len(result))
	for i, item := range result {
		var msg store.Message
		if err := json.Unmarshal([]byte(item), &msg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal message at index %d: %w", i, err)
		}
		messages[i] = msg
	}

	return messages, nil
}

// LastAssistantMessage returns the most recent assistant message, or nil.
func (s *RedisStore) LastAssistantMessage(ctx context.Context, conversationID string) (*store.Message, error) {
	messages, err := s.History(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == llm.RoleAssistant {
			return &messages[i], nil
		}
	}
	return nil, nil
}

// ListConversations returns all conversations.
func (s *RedisStore) ListConversations(ctx context.Context) ([]store.Conversation, error) {
	var conversations []store.Conversation

	iter := s.client.Scan(ctx, 0, conversationKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		title, err := s.client.HGet(ctx, key, consts.ColTitle).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to read conversation %s: %w", key, err)
		}
		conversations = append(conversations, store.Conversation{
			ID:    strings.TrimPrefix(key, conversationKeyPrefix),
			Title: title,
		})
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}

	return conversations, nil
}
