package router

import (
	"github.com/gin-gonic/gin"

	"helpdesk.app/triage/internal/http/handler"
)

type Handlers struct {
	Chat      *handler.ChatHandler
	Documents *handler.DocumentHandler
}

func SetupRoutes(router *gin.Engine, h Handlers) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")
	{
		ChatRouter(v1.Group("/chat"), h.Chat)
		DocumentRouter(v1.Group("/documents"), h.Documents)
	}
}
