// Package server exposes the widget backend over HTTP.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/barekit/concierge/pkg/chatbot"
	"github.com/barekit/concierge/pkg/store"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Turner handles one chat turn. Satisfied by *chatbot.Chatbot; tests inject
// a fake.
type Turner interface {
	HandleTurn(ctx context.Context, req chatbot.TurnRequest) (*chatbot.TurnResult, error)
}

// ChatRequest is the body of POST /chat.
type ChatRequest struct {
	Message        string `json:"message" binding:"required"`
	ConversationID string `json:"conversation_id"`
	PageContent    string `json:"page_content"`
}

// ChatResponse is the body of a successful POST /chat.
type ChatResponse struct {
	Reply          string `json:"reply"`
	ConversationID string `json:"conversation_id"`
	NeedsHuman     bool   `json:"needs_human"`
}

// HandleChat runs one conversation turn.
func HandleChat(bot Turner) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ChatRequest
		if err := c.BindJSON(&req); err != nil {
			slog.Error("failed to parse chat request", "error", err)
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}

		result, err := bot.HandleTurn(c.Request.Context(), chatbot.TurnRequest{
			Message:        req.Message,
			ConversationID: req.ConversationID,
			PageContent:    req.PageContent,
		})
		if err != nil {
			slog.Error("chat turn failed", "error", err)
			var completionErr *chatbot.CompletionError
			if errors.As(err, &completionErr) {
				// The id lets the client retry within the same thread.
				c.JSON(http.StatusBadGateway, gin.H{
					"error":           "completion service unavailable",
					"conversation_id": completionErr.ConversationID,
				})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, ChatResponse{
			Reply:          result.Reply,
			ConversationID: result.ConversationID,
			NeedsHuman:     result.NeedsHuman,
		})
	}
}

// HandleListConversations lists all conversations.
func HandleListConversations(st store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		conversations, err := st.ListConversations(c.Request.Context())
		if err != nil {
			slog.Error("failed to list conversations", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, conversations)
	}
}

// HandleConversationMessages returns the ordered history of one conversation.
func HandleConversationMessages(st store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		messages, err := st.History(c.Request.Context(), c.Param("id"))
		if err != nil {
			slog.Error("failed to load conversation history", "error", err,
				"conversation_id", c.Param("id"))
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, messages)
	}
}

// HealthCheck reports liveness.
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// SetupRoutes registers all routes on the router.
func SetupRoutes(router *gin.Engine, bot Turner, st store.Store) {
	router.GET("/healthz", HealthCheck)
	router.POST("/chat", HandleChat(bot))
	router.GET("/conversations", HandleListConversations(st))
	router.GET("/conversations/:id/messages", HandleConversationMessages(st))
}

// NewRouter builds the gin engine with CORS open to any origin: the widget
// is embedded on arbitrary third-party sites, so requests arrive from
// origins we cannot enumerate. Credentials stay disabled.
func NewRouter(bot Turner, st store.Store) *gin.Engine {
	router := gin.Default()

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowAllOrigins = true
	corsCfg.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type"}
	router.Use(cors.New(corsCfg))

	SetupRoutes(router, bot, st)
	return router
}
