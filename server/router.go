package server

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"instagram-relay/infrastructure/configuration"
	httpHandler "instagram-relay/interfaces/http"
	"instagram-relay/interfaces/middleware"
)

func InitiateRouter(
	authHandler httpHandler.IAuthHandler,
	webhookHandler httpHandler.IWebhookHandler,
	publishHandler httpHandler.IPublishHandler,
	systemHandler httpHandler.ISystemHandler,
) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	origins := configuration.C.Cors.AllowOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:4200", "http://localhost:3000"}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// OAuth flow
	router.GET("/auth/url", authHandler.GetAuthURL)
	router.GET("/auth/callback", authHandler.HandleCallback)

	// Platform webhooks
	router.GET("/webhooks", webhookHandler.Verify)
	router.POST("/webhooks", webhookHandler.Receive)

	// Content publishing
	router.POST("/publish/image", publishHandler.PublishImage)
	router.POST("/publish/video", publishHandler.PublishVideo)
	router.POST("/publish/carousel", publishHandler.PublishCarousel)
	router.POST("/refresh-token", publishHandler.RefreshToken)
	router.GET("/rate-limit", publishHandler.RateLimit)

	router.GET("/health", systemHandler.Health)

	// Internal endpoints behind the bearer-token guard
	api := router.Group("api")
	api.Use(middleware.Auth(configuration.C.App.SecretKey))
	api.GET("/stats", systemHandler.Stats)

	return router
}
