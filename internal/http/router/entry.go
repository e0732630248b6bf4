package router

import (
	"github.com/gin-gonic/gin"

	"pulse.app/engine/internal/http/handler"
)

func EntryRouter(group *gin.RouterGroup, h *handler.EntryHandler) {
	group.POST("", h.Log)
}
