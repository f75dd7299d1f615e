package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"chatsync/internal/pkg/sync/application/engine"
)

// ToggleLikeController flips the current user's like on a message.
type ToggleLikeController struct {
	Engine *engine.Engine
}

func NewToggleLikeController(e *engine.Engine) *ToggleLikeController {
	return &ToggleLikeController{Engine: e}
}

func (h *ToggleLikeController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseInt(c.Param("messageId"), 10, 64)
		if err != nil || id <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "messageId must be a positive integer"})
			return
		}

		liked, err := h.Engine.ToggleLike(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"liked": liked})
	}
}
