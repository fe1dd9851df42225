package handler

import (
	"github.com/gin-gonic/gin"

	"Navi-App/internal/infrastructure/metrics"
)

// NewRouter はAPIのルーティングを設定したgin.Engineを返す
func NewRouter(navigationHandler *NavigationHandler) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), gin.Logger(), metrics.Middleware())

	router.GET("/api/health", GetHealth)
	router.GET("/metrics", metrics.Handler())

	sessions := router.Group("/sessions")
	{
		sessions.POST("", navigationHandler.PostSession)
		sessions.GET("/:id", navigationHandler.GetSession)
		sessions.DELETE("/:id", navigationHandler.DeleteSession)
		sessions.GET("/:id/overlays", navigationHandler.GetOverlays)
		sessions.GET("/:id/history", navigationHandler.GetHistory)
		sessions.PUT("/:id/location", navigationHandler.PutLocation)
		sessions.PUT("/:id/tracking", navigationHandler.PutTracking)
		sessions.POST("/:id/search", navigationHandler.PostSearch)
		sessions.POST("/:id/center", navigationHandler.PostCenter)
		sessions.POST("/:id/route", navigationHandler.PostRoute)
		sessions.POST("/:id/rotate", navigationHandler.PostRotate)
	}

	return router
}
