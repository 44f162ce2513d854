package inmemory

import (
	"context"
	"testing"

	"github.com/barekit/concierge/pkg/llm"
	"github.com/barekit/concierge/pkg/store/consts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetOrCreate_Idempotent(t *testing.T) {
	s := New()
	ctx := context.Background()

	conv, created, err := s.GetOrCreate(ctx, "widget-1")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "widget-1", conv.ID)
	assert.Equal(t, consts.DefaultConversationTitle, conv.Title)

	// Repeated calls with the same id create nothing new.
	for i := 0; i < 3; i++ {
		again, created, err := s.GetOrCreate(ctx, "widget-1")
		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, conv, again)
	}

	conversations, err := s.ListConversations(ctx)
	require.NoError(t, err)
	assert.Len(t, conversations, 1)
}

func TestGetOrCreate_GeneratesID(t *testing.T) {
	s := New()
	ctx := context.Background()

	a, created, err := s.GetOrCreate(ctx, "")
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotEmpty(t, a.ID)

	b, _, err := s.GetOrCreate(ctx, "")
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestHistory_Ordering(t *testing.T) {
	s := New()
	ctx := context.Background()

	conv, _, err := s.GetOrCreate(ctx, "c")
	require.NoError(t, err)

	contents := []string{"one", "two", "three"}
	for _, c := range contents {
		_, err := s.AppendMessage(ctx, conv.ID, llm.RoleUser, c)
		require.NoError(t, err)
	}

	history, err := s.History(ctx, conv.ID)
	require.NoError(t, err)
	require.Len(t, history, 3)
	for i, c := range contents {
		assert.Equal(t, c, history[i].Content)
	}
}

func TestHistory_EmptyConversation(t *testing.T) {
	s := New()
	ctx := context.Background()

	_, _, err := s.GetOrCreate(ctx, "empty")
	require.NoError(t, err)

	history, err := s.History(ctx, "empty")
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestLastAssistantMessage(t *testing.T) {
	s := New()
	ctx := context.Background()

	conv, _, err := s.GetOrCreate(ctx, "c")
	require.NoError(t, err)

	last, err := s.LastAssistantMessage(ctx, conv.ID)
	require.NoError(t, err)
	assert.Nil(t, last)

	_, err = s.AppendMessage(ctx, conv.ID, llm.RoleUser, "hello")
	require.NoError(t, err)
	_, err = s.AppendMessage(ctx, conv.ID, llm.RoleAssistant, "hi")
	require.NoError(t, err)
	_, err = s.AppendMessage(ctx, conv.ID, llm.RoleUser, "more")
	require.NoError(t, err)

	last, err = s.LastAssistantMessage(ctx, conv.ID)
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.Equal(t, "hi", last.Content)

	_, err = s.AppendMessage(ctx, conv.ID, llm.RoleAssistant, "newer")
	require.NoError(t, err)

	last, err = s.LastAssistantMessage(ctx, conv.ID)
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.Equal(t, "newer", last.Content)
}
