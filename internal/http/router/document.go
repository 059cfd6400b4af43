package router

import (
	"github.com/gin-gonic/gin"

	"helpdesk.app/triage/internal/http/handler"
)

func DocumentRouter(router *gin.RouterGroup, handler *handler.DocumentHandler) {
	router.POST("", handler.Upload)
	router.GET("", handler.List)
}
