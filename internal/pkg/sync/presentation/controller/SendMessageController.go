package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"chatsync/internal/pkg/sync/application/engine"
	"chatsync/internal/pkg/sync/application/usecase"
)

// SendMessageController handles the send-message endpoint only (one
// controller per endpoint). A failed send still returns the temp id so the
// UI can offer a retry.
type SendMessageController struct {
	Engine *engine.Engine
}

func NewSendMessageController(e *engine.Engine) *SendMessageController {
	return &SendMessageController{Engine: e}
}

// sendMessageRequest is the DTO for the HTTP request body.
type sendMessageRequest struct {
	ConversationID int64  `json:"conversation_id"`
	RecipientID    int64  `json:"recipient_id"`
	Content        string `json:"content" binding:"required"`
	ReplyToID      int64  `json:"reply_to_id"`
}

func (h *SendMessageController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req sendMessageRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		msg, err := h.Engine.Send(c.Request.Context(), usecase.SendMessageInput{
			ConversationID: req.ConversationID,
			RecipientID:    req.RecipientID,
			Content:        req.Content,
			ReplyToID:      req.ReplyToID,
		})
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"message": msg})
	}
}
