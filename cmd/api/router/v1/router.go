package v1

import (
	"github.com/gin-gonic/gin"

	"chatsync/internal/infrastructure/realtime"
	"chatsync/internal/pkg/sync/application/engine"
	httpHandler "chatsync/internal/pkg/sync/presentation/http"
)

// RegisterRoutes mounts all version 1 API routes under /api/v1
func RegisterRoutes(r *gin.Engine, eng *engine.Engine, hub *realtime.Hub) {
	v1 := r.Group("/api/v1")
	httpHandler.RegisterRoutes(v1, eng, hub)
}
