package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/barekit/concierge/pkg/llm"
	"github.com/barekit/concierge/pkg/store"
	"github.com/barekit/concierge/pkg/store/consts"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore implements store.Store using MongoDB.
type MongoStore struct {
	client        *mongo.Client
	conversations *mongo.Collection
	messages      *mongo.Collection
}

// ConversationDoc is the document schema for a conversation.
type ConversationDoc struct {
	ID    string `bson:"_id"`
	Title string `bson:"title"`
}

// MessageDoc is the document schema for a message.
type MessageDoc struct {
	ID             string    `bson:"_id"`
	ConversationID string    `bson:"conversation_id"`
	Role           string    `bson:"role"`
	Content        string    `bson:"content"`
	CreatedAt      time.Time `bson:"created_at"`
}

// New creates a new MongoStore.
func New(client *mongo.Client, dbName string) *MongoStore {
	db := client.Database(dbName)
	return &MongoStore{
		client:        client,
		conversations: db.Collection(consts.TableNameConversations),
		messages:      db.Collection(consts.TableNameMessages),
	}
}

// GetOrCreate returns the conversation with the given id, creating it if needed.
func (s *MongoStore) GetOrCreate(ctx context.Context, id string) (store.Conversation, bool, error) {
	if id == "" {
		id = uuid.NewString()
	}

	var doc ConversationDoc
	err := s.conversations.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err == nil {
		return store.Conversation{ID: doc.ID, Title: doc.Title}, false, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return store.Conversation{}, false, fmt.Errorf("failed to look up conversation: %w", err)
	}

	doc = ConversationDoc{ID: id, Title: consts.DefaultConversationTitle}
	if _, err := s.conversations.InsertOne(ctx, doc); err != nil {
		return store.Conversation{}, false, fmt.Errorf("failed to create conversation: %w", err)
	}

	return store.Conversation{ID: doc.ID, Title: doc.Title}, true, nil
}

// AppendMessage appends a message to a conversation.
func (s *MongoStore) AppendMessage(ctx context.Context, conversationID string, role llm.Role, content string) (string, error) {
	doc := MessageDoc{
		ID:             uuid.NewString(),
		ConversationID: conversationID,
		Role:           string(role),
		Content:        content,
		CreatedAt:      time.Now(),
	}

	if _, err := s.messages.InsertOne(ctx, doc); err != nil {
		return "", err
	}
	return doc.ID, nil
}

// History loads all messages of a conversation ordered by creation time.
func (s *MongoStore) History(ctx context.Context, conversationID string) ([]store.Message, error) {
	filter := bson.M{consts.ColConversationID: conversationID}
	opts := options.Find().SetSort(bson.M{consts.ColCreatedAt: 1})

	cursor, err := s.messages.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var messages []store.Message
	for cursor.Next(ctx) {
		var doc MessageDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		messages = append(messages, store.Message{
			ID:        doc.ID,
			Role:      llm.Role(doc.Role),
			Content:   doc.Content,
			CreatedAt: doc.CreatedAt,
		})
	}

	if err := cursor.Err(); err != nil {
		return nil, err
	}

	return messages, nil
}

// LastAssistantMessage returns the most recent assistant message, or nil.
func (s *MongoStore) LastAssistantMessage(ctx context.Context, conversationID string) (*store.Message, error) {
	filter := bson.M{
		consts.ColConversationID: conversationID,
		consts.ColRole:           string(llm.RoleAssistant),
	}
	opts := options.FindOne().SetSort(bson.M{consts.ColCreatedAt: -1})

	var doc MessageDoc
	err := s.messages.FindOne(ctx, filter, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &store.Message{
		ID:        doc.ID,
		Role:      llm.Role(doc.Role),
		Content:   doc.Content,
		CreatedAt: doc.CreatedAt,
	}, nil
}

// ListConversations returns all conversations.
func (s *MongoStore) ListConversations(ctx context.Context) ([]store.Conversation, error) {
	cursor, err := s.conversations.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var conversations []store.Conversation
	for cursor.Next(ctx) {
		var doc ConversationDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		conversations = append(conversations, store.Conversation{ID: doc.ID, Title: doc.Title})
	}

	if err := cursor.Err(); err != nil {
		return nil, err
	}

	return conversations, nil
}
