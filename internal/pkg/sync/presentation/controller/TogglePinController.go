package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"chatsync/internal/pkg/sync/application/engine"
)

// TogglePinController pins or unpins a message.
type TogglePinController struct {
	Engine *engine.Engine
}

func NewTogglePinController(e *engine.Engine) *TogglePinController {
	return &TogglePinController{Engine: e}
}

type togglePinRequest struct {
	Pinned *bool `json:"pinned" binding:"required"`
}

func (h *TogglePinController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseInt(c.Param("messageId"), 10, 64)
		if err != nil || id <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "messageId must be a positive integer"})
			return
		}

		var req togglePinRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		pinned, err := h.Engine.TogglePin(c.Request.Context(), id, *req.Pinned)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"pinned": pinned})
	}
}
