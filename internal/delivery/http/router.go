package http

import (
	"github.com/gin-gonic/gin"

	"github.com/amoradev/amora-backend/internal/delivery/http/handler"
	"github.com/amoradev/amora-backend/internal/delivery/http/middleware"
)

type Router struct {
	eventHandler   *handler.EventHandler
	authMiddleware *middleware.AuthMiddleware
}

func NewRouter(
	eventHandler *handler.EventHandler,
	authMiddleware *middleware.AuthMiddleware,
) *Router {
	return &Router{
		eventHandler:   eventHandler,
		authMiddleware: authMiddleware,
	}
}

func (r *Router) Setup() *gin.Engine {
	router := gin.Default()

	// Health check (supports both GET and HEAD)
	healthHandler := func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
		})
	}
	router.GET("/health", healthHandler)
	router.HEAD("/health", healthHandler)

	// API v1
	v1 := router.Group("/api/v1")
	{
		events := v1.Group("/events")
		events.Use(r.authMiddleware.RequireGateway())
		{
			events.POST("", r.eventHandler.HandleEvent)
		}
	}

	return router
}
