package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/barekit/concierge/pkg/chatbot"
	"github.com/barekit/concierge/pkg/llm"
	"github.com/barekit/concierge/pkg/store/inmemory"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTurner struct {
	result *chatbot.TurnResult
	err    error
	last   chatbot.TurnRequest
}

func (f *fakeTurner) HandleTurn(ctx context.Context, req chatbot.TurnRequest) (*chatbot.TurnResult, error) {
	f.last = req
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func newTestRouter(bot Turner) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	SetupRoutes(router, bot, inmemory.New())
	return router
}

func TestHandleChat_OK(t *testing.T) {
	bot := &fakeTurner{result: &chatbot.TurnResult{
		Reply:          "hello there",
		ConversationID: "conv-1",
		NeedsHuman:     false,
	}}
	router := newTestRouter(bot)

	body := `{"message":"hi","conversation_id":"conv-1","page_content":"About us"}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"reply":"hello there","conversation_id":"conv-1","needs_human":false}`, w.Body.String())

	assert.Equal(t, "hi", bot.last.Message)
	assert.Equal(t, "conv-1", bot.last.ConversationID)
	assert.Equal(t, "About us", bot.last.PageContent)
}

func TestHandleChat_MissingMessage(t *testing.T) {
	router := newTestRouter(&fakeTurner{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(`{"conversation_id":"x"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleChat_CompletionFailure(t *testing.T) {
	bot := &fakeTurner{err: &chatbot.CompletionError{
		ConversationID: "conv-9",
		Err:            errors.New("rate limited"),
	}}
	router := newTestRouter(bot)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(`{"message":"hi"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadGateway, w.Code)
	// The conversation id is still returned so the client can retry in-thread.
	assert.Contains(t, w.Body.String(), "conv-9")
}

func TestHandleChat_StorageFailure(t *testing.T) {
	bot := &fakeTurner{err: errors.New("storage unavailable")}
	router := newTestRouter(bot)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(`{"message":"hi"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestConversationRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	st := inmemory.New()
	router := gin.New()
	SetupRoutes(router, &fakeTurner{}, st)

	ctx := context.Background()
	conv, _, err := st.GetOrCreate(ctx, "c1")
	require.NoError(t, err)
	_, err = st.AppendMessage(ctx, conv.ID, llm.RoleUser, "hello")
	require.NoError(t, err)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/conversations", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "c1")

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/conversations/c1/messages", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "hello")
}

func TestHealthCheck(t *testing.T) {
	router := newTestRouter(&fakeTurner{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, w.Code)
}
