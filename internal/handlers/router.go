// Package handlers contains the HTTP handlers and routing.
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// SetupRouter configures the Gin router with all routes.
func SetupRouter(handler *PaymentHandler, ginMode, apiKey string, logger zerolog.Logger) *gin.Engine {
	gin.SetMode(ginMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestIDMiddleware())
	router.Use(AccessLogMiddleware(logger))
	router.Use(CORSMiddleware())

	// Health check (public)
	router.GET("/health", handler.Health)

	// API v1 routes (requires Bearer auth)
	v1 := router.Group("/api/v1")
	{
		payments := v1.Group("/payments")
		payments.Use(ServiceAuthMiddleware(apiKey))
		{
			payments.POST("/checkout", handler.CreateCheckout)
			payments.GET("/orders/:order_id", handler.QueryOrder)
		}
	}

	// Provider notifications (public, authenticated by signature)
	router.GET("/notify/tenpay", handler.HandleNotify)
	router.POST("/notify/tenpay", handler.HandleNotify)

	return router
}
