package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"chatsync/internal/pkg/sync/application/engine"
)

// DeleteMessageController tombstones a message.
type DeleteMessageController struct {
	Engine *engine.Engine
}

func NewDeleteMessageController(e *engine.Engine) *DeleteMessageController {
	return &DeleteMessageController{Engine: e}
}

func (h *DeleteMessageController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseInt(c.Param("messageId"), 10, 64)
		if err != nil || id <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "messageId must be a positive integer"})
			return
		}

		msg, err := h.Engine.Delete(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": msg})
	}
}
