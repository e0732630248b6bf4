package router

import (
	"github.com/gin-gonic/gin"

	"pulse.app/engine/internal/http/handler"
)

func PulseRouter(group *gin.RouterGroup, h *handler.PulseHandler) {
	group.GET("", h.Composite)
	group.GET("/:block", h.Block)
	group.GET("/:block/full", h.BlockFull)
}
