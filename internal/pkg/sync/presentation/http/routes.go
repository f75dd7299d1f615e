package http

import (
	"github.com/gin-gonic/gin"

	"chatsync/internal/infrastructure/realtime"
	"chatsync/internal/pkg/sync/application/engine"
	"chatsync/internal/pkg/sync/presentation/controller"
)

// RegisterRoutes registers the sync engine's UI-facing endpoints under the
// given router group. It constructs per-endpoint controllers and binds them
// directly to routes.
func RegisterRoutes(g *gin.RouterGroup, eng *engine.Engine, hub *realtime.Hub) {
	listCtl := controller.NewListConversationsController(eng)
	getConvCtl := controller.NewGetConversationController(eng)
	openCtl := controller.NewOpenConversationController(eng)
	directCtl := controller.NewOpenDirectConversationController(eng)
	getMsgCtl := controller.NewGetMessagesController(eng)
	sendCtl := controller.NewSendMessageController(eng)
	editCtl := controller.NewEditMessageController(eng)
	deleteCtl := controller.NewDeleteMessageController(eng)
	likeCtl := controller.NewToggleLikeController(eng)
	pinCtl := controller.NewTogglePinController(eng)
	retryCtl := controller.NewRetryMessageController(eng)
	markReadCtl := controller.NewMarkReadController(eng)
	searchCtl := controller.NewSearchMessagesController(eng)
	eventsCtl := controller.NewEventsController(hub)

	g.GET("/conversations", listCtl.Handle())
	g.POST("/conversations/direct", directCtl.Handle())
	g.GET("/conversations/:conversationId", getConvCtl.Handle())
	g.POST("/conversations/:conversationId/open", openCtl.Handle())
	g.POST("/conversations/:conversationId/read", markReadCtl.Handle())
	g.GET("/conversations/:conversationId/messages", getMsgCtl.Handle())

	g.POST("/messages", sendCtl.Handle())
	g.PATCH("/messages/:messageId", editCtl.Handle())
	g.DELETE("/messages/:messageId", deleteCtl.Handle())
	g.POST("/messages/:messageId/like", likeCtl.Handle())
	g.POST("/messages/:messageId/pin", pinCtl.Handle())
	g.POST("/messages/retry/:tempId", retryCtl.Handle())

	g.GET("/search", searchCtl.Handle())
	g.GET("/events", eventsCtl.Handle())
}
