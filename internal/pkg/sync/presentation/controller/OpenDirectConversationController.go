package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"chatsync/internal/pkg/sync/application/engine"
)

// OpenDirectConversationController resolves the 1:1 conversation with a
// given user, creating it server-side when missing.
type OpenDirectConversationController struct {
	Engine *engine.Engine
}

func NewOpenDirectConversationController(e *engine.Engine) *OpenDirectConversationController {
	return &OpenDirectConversationController{Engine: e}
}

type openDirectRequest struct {
	UserID int64 `json:"user_id" binding:"required"`
}

func (h *OpenDirectConversationController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req openDirectRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		conv, err := h.Engine.OpenDirectConversation(c.Request.Context(), req.UserID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"conversation": conv})
	}
}
