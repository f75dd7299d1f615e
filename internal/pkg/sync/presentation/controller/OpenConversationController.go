package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"chatsync/internal/pkg/sync/application/engine"
)

// OpenConversationController marks a conversation active: the unread counter
// is zeroed, the read marker propagated, and an empty history fetched. A
// conversationId of 0 clears the active conversation.
type OpenConversationController struct {
	Engine *engine.Engine
}

func NewOpenConversationController(e *engine.Engine) *OpenConversationController {
	return &OpenConversationController{Engine: e}
}

func (h *OpenConversationController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseInt(c.Param("conversationId"), 10, 64)
		if err != nil || id < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "conversationId must be a non-negative integer"})
			return
		}

		if err := h.Engine.SetActiveConversation(c.Request.Context(), id); err != nil {
			respondError(c, err)
			return
		}

		if id == 0 {
			c.Status(http.StatusNoContent)
			return
		}
		c.JSON(http.StatusOK, gin.H{"messages": h.Engine.MessagesFor(id)})
	}
}
