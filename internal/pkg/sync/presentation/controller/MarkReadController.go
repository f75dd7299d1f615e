package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"chatsync/internal/pkg/sync/application/engine"
)

// MarkReadController zeroes a conversation's unread counter.
type MarkReadController struct {
	Engine *engine.Engine
}

func NewMarkReadController(e *engine.Engine) *MarkReadController {
	return &MarkReadController{Engine: e}
}

func (h *MarkReadController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseInt(c.Param("conversationId"), 10, 64)
		if err != nil || id <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "conversationId must be a positive integer"})
			return
		}

		if err := h.Engine.MarkAsRead(c.Request.Context(), id); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"unread_total": h.Engine.UnreadTotal()})
	}
}
