package gorm

import (
	"context"
	"testing"

	"github.com/barekit/concierge/pkg/llm"
	"github.com/barekit/concierge/pkg/store/consts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	s, err := New(db)
	require.NoError(t, err)
	return s
}

func TestGetOrCreate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	conv, created, err := s.GetOrCreate(ctx, "visitor-42")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "visitor-42", conv.ID)
	assert.Equal(t, consts.DefaultConversationTitle, conv.Title)

	again, created, err := s.GetOrCreate(ctx, "visitor-42")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, conv.ID, again.ID)

	conversations, err := s.ListConversations(ctx)
	require.NoError(t, err)
	assert.Len(t, conversations, 1)
}

func TestGetOrCreate_GeneratesID(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	conv, created, err := s.GetOrCreate(ctx, "")
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotEmpty(t, conv.ID)
}

func TestAppendAndHistory(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	conv, _, err := s.GetOrCreate(ctx, "c")
	require.NoError(t, err)

	for _, content := range []string{"first", "second", "third"} {
		id, err := s.AppendMessage(ctx, conv.ID, llm.RoleUser, content)
		require.NoError(t, err)
		assert.NotEmpty(t, id)
	}

	history, err := s.History(ctx, conv.ID)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, "first", history[0].Content)
	assert.Equal(t, "second", history[1].Content)
	assert.Equal(t, "third", history[2].Content)

	// Messages of other conversations stay invisible.
	other, _, err := s.GetOrCreate(ctx, "other")
	require.NoError(t, err)
	otherHistory, err := s.History(ctx, other.ID)
	require.NoError(t, err)
	assert.Empty(t, otherHistory)
}

func TestLastAssistantMessage(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	conv, _, err := s.GetOrCreate(ctx, "c")
	require.NoError(t, err)

	last, err := s.LastAssistantMessage(ctx, conv.ID)
	require.NoError(t, err)
	assert.Nil(t, last)

	_, err = s.AppendMessage(ctx, conv.ID, llm.RoleUser, "question")
	require.NoError(t, err)
	_, err = s.AppendMessage(ctx, conv.ID, llm.RoleAssistant, "answer one")
	require.NoError(t, err)
	_, err = s.AppendMessage(ctx, conv.ID, llm.RoleAssistant, "answer two")
	require.NoError(t, err)
	_, err = s.AppendMessage(ctx, conv.ID, llm.RoleUser, "followup")
	require.NoError(t, err)

	last, err = s.LastAssistantMessage(ctx, conv.ID)
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.Equal(t, "answer two", last.Content)
	assert.Equal(t, llm.RoleAssistant, last.Role)
}
