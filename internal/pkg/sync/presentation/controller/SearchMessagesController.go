package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"chatsync/internal/pkg/sync/application/engine"
)

// SearchMessagesController runs the local substring search over loaded
// messages. No server round-trip.
type SearchMessagesController struct {
	Engine *engine.Engine
}

func NewSearchMessagesController(e *engine.Engine) *SearchMessagesController {
	return &SearchMessagesController{Engine: e}
}

func (h *SearchMessagesController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		query := c.Query("q")
		if query == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "q is required"})
			return
		}

		conversationID, _ := strconv.ParseInt(c.Query("conversation_id"), 10, 64)
		results := h.Engine.Search(query, conversationID)
		c.JSON(http.StatusOK, gin.H{"results": results, "count": len(results)})
	}
}
