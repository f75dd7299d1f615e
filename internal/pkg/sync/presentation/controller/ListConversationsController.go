package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"chatsync/internal/pkg/sync/application/engine"
	"chatsync/internal/pkg/sync/application/state"
)

// ListConversationsController serves the filtered conversation list
// (one controller per endpoint).
type ListConversationsController struct {
	Engine *engine.Engine
}

func NewListConversationsController(e *engine.Engine) *ListConversationsController {
	return &ListConversationsController{Engine: e}
}

// Handle returns the local conversation view, most recent first. Query
// params: query (text filter), unread_only (flag), refresh (re-sync from
// the server first).
func (h *ListConversationsController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Query("refresh") == "true" {
			if _, err := h.Engine.RefreshConversations(c.Request.Context()); err != nil {
				respondError(c, err)
				return
			}
		}

		list := h.Engine.Conversations(state.ConversationFilter{
			Query:      c.Query("query"),
			UnreadOnly: c.Query("unread_only") == "true",
		})

		c.JSON(http.StatusOK, gin.H{
			"conversations": list,
			"unread_total":  h.Engine.UnreadTotal(),
		})
	}
}
