package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/signalhound-dev/signalhound/internal/handlers"
	"github.com/signalhound-dev/signalhound/internal/middleware"
	"github.com/signalhound-dev/signalhound/internal/types"
)

func NewRouter() *gin.Engine {
	r := gin.Default()

	// Add CORS middleware
	r.Use(cors.New(cors.Config{
		AllowOrigins:     types.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	api := r.Group("/api")
	{
		api.GET("/health", handlers.HealthCheck)
		api.GET("/ws", middleware.AuthMiddleware(), handlers.WebSocket)

		auth := api.Group("/auth")
		{
			auth.POST("/register", handlers.CreateUser)
			auth.POST("/login", handlers.LoginUser)
			auth.POST("/logout", handlers.LogoutUser)
			auth.GET("/me", middleware.AuthMiddleware(), handlers.Me)
		}

		signals := api.Group("/signals", middleware.AuthMiddleware())
		{
			signals.POST("", handlers.CreateSignal)
			signals.GET("", handlers.GetSignals)
			signals.POST("/simulate", handlers.SimulateSignals)
			signals.GET("/:signal_id", handlers.GetSignal)
			signals.PATCH("/:signal_id/status", handlers.UpdateSignalStatus)
			signals.DELETE("/:signal_id", handlers.DeleteSignal)
		}

		// The automation executor calls this endpoint back with the internal
		// API key, so it takes either auth scheme.
		api.POST("/signals/:signal_id/email", middleware.SessionOrInternal(), handlers.GenerateSignalEmail)

		rules := api.Group("/rules", middleware.AuthMiddleware())
		{
			rules.POST("", handlers.CreateRule)
			rules.GET("", handlers.GetRules)
			rules.GET("/:rule_id", handlers.GetRule)
			rules.PUT("/:rule_id", handlers.UpdateRule)
			rules.DELETE("/:rule_id", handlers.DeleteRule)
			rules.POST("/:rule_id/test", handlers.TestRule)
		}

		integrations := api.Group("/integrations", middleware.AuthMiddleware())
		{
			integrations.GET("", handlers.GetIntegrations)
			integrations.POST("", handlers.ConnectIntegration)
			integrations.PUT("/:integration_id", handlers.UpdateIntegration)
			integrations.DELETE("/:integration_id", handlers.DeleteIntegration)
			integrations.GET("/:integration_id/logs", handlers.GetSyncLogs)
		}

		oauth := api.Group("/oauth", middleware.AuthMiddleware())
		{
			oauth.GET("/:provider/authorize", handlers.AuthorizeIntegration)
			oauth.GET("/:provider/callback", handlers.OAuthCallback)
		}

		emails := api.Group("/emails", middleware.AuthMiddleware())
		{
			emails.GET("", handlers.GetGeneratedEmails)
			emails.GET("/:email_id", handlers.GetGeneratedEmail)
		}

		notifications := api.Group("/notifications", middleware.AuthMiddleware())
		{
			notifications.GET("", handlers.GetNotifications)
			notifications.GET("/preferences", handlers.GetNotificationPreferences)
			notifications.PUT("/preferences", handlers.UpdateNotificationPreferences)
			notifications.PUT("/slack", handlers.UpdateSlackSettings)
		}

		api.GET("/dashboard", middleware.AuthMiddleware(), handlers.GetDashboard)

		internal := api.Group("", middleware.InternalAuth())
		{
			internal.POST("/webhooks/database", handlers.DatabaseWebhook)
			internal.POST("/send-notification", handlers.SendNotification)
		}
	}

	return r
}
