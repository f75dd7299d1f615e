package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"chatsync/internal/pkg/sync/application/engine"
)

// RetryMessageController re-sends a failed message by its client temp id.
type RetryMessageController struct {
	Engine *engine.Engine
}

func NewRetryMessageController(e *engine.Engine) *RetryMessageController {
	return &RetryMessageController{Engine: e}
}

func (h *RetryMessageController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		tempID := c.Param("tempId")
		if tempID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "tempId is required"})
			return
		}

		msg, err := h.Engine.Retry(c.Request.Context(), tempID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": msg})
	}
}
