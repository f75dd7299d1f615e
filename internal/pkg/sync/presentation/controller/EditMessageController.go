package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"chatsync/internal/pkg/sync/application/engine"
)

// EditMessageController handles message edits.
type EditMessageController struct {
	Engine *engine.Engine
}

func NewEditMessageController(e *engine.Engine) *EditMessageController {
	return &EditMessageController{Engine: e}
}

type editMessageRequest struct {
	Content string `json:"content" binding:"required"`
}

func (h *EditMessageController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseInt(c.Param("messageId"), 10, 64)
		if err != nil || id <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "messageId must be a positive integer"})
			return
		}

		var req editMessageRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		msg, err := h.Engine.Edit(c.Request.Context(), id, req.Content)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": msg})
	}
}
