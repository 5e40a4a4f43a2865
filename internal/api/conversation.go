package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/ai-book/backend/internal/conversation"
	"github.com/pageza/ai-book/backend/internal/types"
)

// Conversation handles one chat message for a user
type Conversation interface {
	Handle(ctx context.Context, userID int64, text string) (conversation.Reply, error)
}

// ConversationHandler serves POST /v1/users/:user_id/conversation
type ConversationHandler struct {
	flow Conversation
}

// NewConversationHandler creates a ConversationHandler
func NewConversationHandler(flow Conversation) *ConversationHandler {
	return &ConversationHandler{flow: flow}
}

// RegisterRoutes mounts the handler; extra middleware (rate limiting) runs before it
func (h *ConversationHandler) RegisterRoutes(router *gin.RouterGroup, middleware ...gin.HandlerFunc) {
	handlers := append(append([]gin.HandlerFunc{}, middleware...), h.Message)
	router.POST("/users/:user_id/conversation", handlers...)
}

func (h *ConversationHandler) Message(c *gin.Context) {
	userID, ok := userIDParam(c)
	if !ok {
		return
	}

	var req types.ConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	reply, err := h.flow.Handle(c.Request.Context(), userID, req.Text)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, types.ConversationReply{
		Text:     reply.Text,
		Books:    reply.Books,
		Degraded: reply.Degraded,
	})
}
