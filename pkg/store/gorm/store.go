package gorm

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/barekit/concierge/pkg/llm"
	"github.com/barekit/concierge/pkg/store"
	"github.com/barekit/concierge/pkg/store/consts"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Store implements store.Store using GORM.
type Store struct {
	db *gorm.DB
}

// ConversationModel represents the database schema for a conversation.
type ConversationModel struct {
	ID       string `gorm:"primaryKey"`
	Title    string
	Messages []MessageModel `gorm:"foreignKey:ConversationID;constraint:OnDelete:CASCADE"`
}

// TableName overrides the table name.
func (ConversationModel) TableName() string {
	return consts.TableNameConversations
}

// MessageModel represents the database schema for a message.
type MessageModel struct {
	gorm.Model
	ConversationID string `gorm:"index"`
	Role           string
	Content        string
}

// TableName overrides the table name.
func (MessageModel) TableName() string {
	return consts.TableNameMessages
}

// New creates a new Store.
func New(db *gorm.DB) (*Store, error) {
	if err := db.AutoMigrate(&ConversationModel{}, &MessageModel{}); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}
	return &Store{db: db}, nil
}

// GetOrCreate returns the conversation with the given id, creating it if needed.
func (s *Store) GetOrCreate(ctx context.Context, id string) (store.Conversation, bool, error) {
	if id == "" {
		id = uuid.NewString()
	}

	var model ConversationModel
	result := s.db.WithContext(ctx).
		Where(ConversationModel{ID: id}).
		Attrs(ConversationModel{Title: consts.DefaultConversationTitle}).
		FirstOrCreate(&model)
	if result.Error != nil {
		return store.Conversation{}, false, fmt.Errorf("failed to get or create conversation: %w", result.Error)
	}

	return store.Conversation{ID: model.ID, Title: model.Title}, result.RowsAffected > 0, nil
}

// AppendMessage appends a message to a conversation.
func (s *Store) AppendMessage(ctx context.Context, conversationID string, role llm.Role, content string) (string, error) {
	model := MessageModel{
		ConversationID: conversationID,
		Role:           string(role),
		Content:        content,
	}
	if err := s.db.WithContext(ctx).Create(&model).Error; err != nil {
		return "", fmt.Errorf("failed to append message: %w", err)
	}
	return strconv.FormatUint(uint64(model.ID), 10), nil
}

// History loads all messages of a conversation ordered by creation time.
func (s *Store) History(ctx context.Context, conversationID string) ([]store.Message, error) {
	var models []MessageModel
	err := s.db.WithContext(ctx).
		Where(consts.ColConversationID+" = ?", conversationID).
		Order("created_at asc, id asc").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	messages := make([]store.Message, len(models))
	for i, model := range models {
		messages[i] = store.Message{
			ID:        strconv.FormatUint(uint64(model.ID), 10),
			Role:      llm.Role(model.Role),
			Content:   model.Content,
			CreatedAt: model.CreatedAt,
		}
	}

	return messages, nil
}

// LastAssistantMessage returns the most recent assistant message, or nil.
func (s *Store) LastAssistantMessage(ctx context.Context, conversationID string) (*store.Message, error) {
	var model MessageModel
	err := s.db.WithContext(ctx).
		Where(consts.ColConversationID+" = ? AND "+consts.ColRole+" = ?", conversationID, string(llm.RoleAssistant)).
		Order("created_at desc, id desc").
		First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &store.Message{
		ID:        strconv.FormatUint(uint64(model.ID), 10),
		Role:      llm.Role(model.Role),
		Content:   model.Content,
		CreatedAt: model.CreatedAt,
	}, nil
}

// ListConversations returns all conversations.
func (s *Store) ListConversations(ctx context.Context) ([]store.Conversation, error) {
	var models []ConversationModel
	if err := s.db.WithContext(ctx).Find(&models).Error; err != nil {
		return nil, err
	}

	conversations := make([]store.Conversation, len(models))
	for i, model := range models {
		conversations[i] = store.Conversation{ID: model.ID, Title: model.Title}
	}

	return conversations, nil
}
