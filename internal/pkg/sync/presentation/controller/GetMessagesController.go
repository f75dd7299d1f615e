package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"chatsync/internal/pkg/sync/application/engine"
	"chatsync/internal/pkg/sync/application/usecase"
)

// GetMessagesController serves a conversation's history. Without paging
// params it returns what the store already holds; a before or limit param
// fetches a page from the server first and reports whether more remain.
type GetMessagesController struct {
	Engine *engine.Engine
}

func NewGetMessagesController(e *engine.Engine) *GetMessagesController {
	return &GetMessagesController{Engine: e}
}

func (h *GetMessagesController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseInt(c.Param("conversationId"), 10, 64)
		if err != nil || id <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "conversationId must be a positive integer"})
			return
		}

		beforeStr, limitStr := c.Query("before"), c.Query("limit")
		if beforeStr == "" && limitStr == "" {
			c.JSON(http.StatusOK, gin.H{"messages": h.Engine.MessagesFor(id)})
			return
		}

		before, _ := strconv.ParseInt(beforeStr, 10, 64)
		limit, _ := strconv.Atoi(limitStr)
		out, err := h.Engine.FetchMessages(c.Request.Context(), usecase.FetchMessagesInput{
			ConversationID: id,
			BeforeID:       before,
			Limit:          limit,
		})
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"messages": out.Messages, "has_more": out.HasMore})
	}
}
