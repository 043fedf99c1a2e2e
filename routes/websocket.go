package routes

import (
	"taskdesk/taskdesk/middleware"
	"taskdesk/taskdesk/services"

	"github.com/gin-gonic/gin"
)

// RegisterWebSocketRoutes exposes the live update stream of the signed-in user's tasks.
// Browsers send the session cookie on the upgrade request; other clients may pass ?token=.
func RegisterWebSocketRoutes(router gin.IRouter, wsService services.WebSocketServiceInterface) {
	router.GET("/ws", middleware.RequireAuth(), func(c *gin.Context) {
		wsService.HandleConnection(c, middleware.CurrentUserID(c))
	})
}
