package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"chatsync/internal/pkg/sync/application/engine"
)

// GetConversationController serves one conversation's summary together with
// its ephemeral signals (typing, pinned messages).
type GetConversationController struct {
	Engine *engine.Engine
}

func NewGetConversationController(e *engine.Engine) *GetConversationController {
	return &GetConversationController{Engine: e}
}

func (h *GetConversationController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseInt(c.Param("conversationId"), 10, 64)
		if err != nil || id <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "conversationId must be a positive integer"})
			return
		}

		conv, ok := h.Engine.Conversation(id)
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "conversation not loaded"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"conversation": conv,
			"is_typing":    h.Engine.IsTyping(id),
			"typing_users": h.Engine.TypingUserNames(id),
			"pinned":       h.Engine.PinnedMessages(id),
		})
	}
}
