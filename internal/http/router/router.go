package router

import (
	"github.com/gin-gonic/gin"

	"pulse.app/engine/internal/http/handler"
	"pulse.app/engine/internal/http/middleware"
	"pulse.app/engine/internal/service"
)

func SetupRoutes(router *gin.Engine, services *service.Services) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")
	v1.Use(middleware.RequireUser())
	{
		entryHandler := handler.NewEntryHandler(services.Entries())
		EntryRouter(v1.Group("/entries"), entryHandler)

		pulseHandler := handler.NewPulseHandler(services.Pulse())
		PulseRouter(v1.Group("/pulse"), pulseHandler)
	}
}
