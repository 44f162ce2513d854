package neo4j

import (
	"context"
	"fmt"
	"time"

	"github.com/barekit/concierge/pkg/llm"
	"github.com/barekit/concierge/pkg/store"
	"github.com/barekit/concierge/pkg/store/consts"
	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// Neo4jStore implements store.Store using Neo4j. Conversations and messages
// are nodes linked by a HAS_MESSAGE relationship.
type Neo4jStore struct {
	driver neo4j.DriverWithContext
	dbName string
}

// New creates a new Neo4jStore.
func New(uri, username, password, dbName string) (*Neo4jStore, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		return nil, err
	}

	if err := driver.VerifyConnectivity(context.Background()); err != nil {
		return nil, err
	}

	return &Neo4jStore{
		driver: driver,
		dbName: dbName,
	}, nil
}

// GetOrCreate returns the conversation with the given id, creating it if needed.
func (s *Neo4jStore) GetOrCreate(ctx context.Context, id string) (store.Conversation, bool, error) {
	if id == "" {
		id = uuid.NewString()
	}

	session := s.driver.NewSession(ctx, neo4j.SessionConfig{DatabaseName: s.dbName})
	defer session.Close(ctx)

	result, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		queryMatch := fmt.Sprintf(`
		MATCH (c:%s {id: $id})
		RETURN c.%s
		`, consts.LabelConversation, consts.ColTitle)

		match, err := tx.Run(ctx, queryMatch, map[string]any{"id": id})
		if err != nil {
			return nil, err
		}
		if match.Next(ctx) {
			title, _ := match.Record().Get("c." + consts.ColTitle)
			return store.Conversation{ID: id, Title: title.(string)}, nil
		}

		queryCreate := fmt.Sprintf(`
		CREATE (c:%s {id: $id, %s: $title})
		`, consts.LabelConversation, consts.ColTitle)

		params := map[string]any{
			"id":    id,
			"title": consts.DefaultConversationTitle,
		}
		if _, err := tx.Run(ctx, queryCreate, params); err != nil {
			return nil, err
		}
		return nil, nil
	})
	if err != nil {
		return store.Conversation{}, false, err
	}

	if result != nil {
		return result.(store.Conversation), false, nil
	}
	return store.Conversation{ID: id, Title: consts.DefaultConversationTitle}, true, nil
}

// AppendMessage appends a message to a conversation.
func (s *Neo4jStore) AppendMessage(ctx context.Context, conversationID string, role llm.Role, content string) (string, error) {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{DatabaseName: s.dbName})
	defer session.Close(ctx)

	msgID := uuid.NewString()

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		query := fmt.Sprintf(`
		MATCH (c:%s {id: $conversationID})
		CREATE (m:%s {
			id: $msgID,
			%s: $role,
			%s: $content,
			%s: datetime()
		})
		CREATE (c)-[:%s]->(m)
		RETURN m
		`, consts.LabelConversation, consts.LabelMessage,
			consts.ColRole, consts.ColContent, consts.ColCreatedAt,
			consts.RelHasMessage)

		params := map[string]any{
			"conversationID": conversationID,
			"msgID":          msgID,
			"role":           string(role),
			"content":        content,
		}
		_, err := tx.Run(ctx, query, params)
		return nil, err
	})
	if err != nil {
		return "", err
	}

	return msgID, nil
}

// History loads all messages of a conversation ordered by creation time.
func (s *Neo4jStore) History(ctx context.Context, conversationID string) ([]store.Message, error) {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{DatabaseName: s.dbName})
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		query := fmt.Sprintf(`
		MATCH (c:%s {id: $conversationID})-[:%s]->(m:%s)
		RETURN m.id, m.%s, m.%s, m.%s
		ORDER BY m.%s ASC
		`, consts.LabelConversation, consts.RelHasMessage, consts.LabelMessage,
			consts.ColRole, consts.ColContent, consts.ColCreatedAt,
			consts.ColCreatedAt)

		result, err := tx.Run(ctx, query, map[string]any{"conversationID": conversationID})
		if err != nil {
			return nil, err
		}

		var messages []store.Message
		for result.Next(ctx) {
			record := result.Record()

			id, _ := record.Get("m.id")
			role, _ := record.Get("m." + consts.ColRole)
			content, _ := record.Get("m." + consts.ColContent)
			createdAt, _ := record.Get("m." + consts.ColCreatedAt)

			msg := store.Message{
				ID:      id.(string),
				Role:    llm.Role(role.(string)),
				Content: content.(string),
			}
			if t, ok := createdAt.(time.Time); ok {
				msg.CreatedAt = t
			}
			messages = append(messages, msg)
		}

		return messages, nil
	})
	if err != nil {
		return nil, err
	}

	return result.([]store.Message), nil
}

// LastAssistantMessage returns the most recent assistant message, or nil.
func (s *Neo4jStore) LastAssistantMessage(ctx context.Context, conversationID string) (*store.Message, error) {
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
func (s *Neo4jStore) ListConversations(ctx context.Context) ([]store.Conversation, error) {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{DatabaseName: s.dbName})
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		query := fmt.Sprintf(`
		MATCH (c:%s)
		RETURN c.id, c.%s
		`, consts.LabelConversation, consts.ColTitle)

		result, err := tx.Run(ctx, query, nil)
		if err != nil {
			return nil, err
		}

		var conversations []store.Conversation
		for result.Next(ctx) {
			record := result.Record()
			id, _ := record.Get("c.id")
			title, _ := record.Get("c." + consts.ColTitle)
			conversations = append(conversations, store.Conversation{
				ID:    id.(string),
				Title: title.(string),
			})
		}
		return conversations, nil
	})
	if err != nil {
		return nil, err
	}

	return result.([]store.Conversation), nil
}

// Close closes the underlying driver.
func (s *Neo4jStore) Close(ctx context.Context) error {
	return s.driver.Close(ctx)
}
