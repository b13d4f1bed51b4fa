package api

import (
	"net/http"

	authDelivery "faktury-backend/internal/auth/delivery"
	authUsecase "faktury-backend/internal/auth/usecase"
	emailDelivery "faktury-backend/internal/email/delivery"
	jobDelivery "faktury-backend/internal/job/delivery"
	"faktury-backend/pkg/config"
	"faktury-backend/pkg/middleware"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(
	r *gin.Engine,
	authUc authUsecase.AuthUsecase,
	authHandler *authDelivery.AuthHandler,
	emailHandler *emailDelivery.EmailHandler,
	jobHandler *jobDelivery.JobHandler,
	cfg *config.Config,
) {
	api := r.Group("/api")
	{
		// Health check (no auth required)
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		// Auth routes
		auth := api.Group("/auth")
		auth.Use(middleware.NoStore())
		{
			auth.GET("/login", authHandler.Login)
			auth.GET("/callback", authHandler.Callback)
			auth.GET("/status", authHandler.Status)
			auth.POST("/logout", authHandler.Logout)
		}

		// Email routes (protected)
		emails := api.Group("/emails")
		emails.Use(authDelivery.SessionMiddleware(authUc))
		{
			emails.GET("/folders", middleware.CacheControl(middleware.CacheShort), emailHandler.GetFolders)
			emails.GET("/faktury", middleware.CacheControl(middleware.CacheShort), emailHandler.GetFakturyEmails)
			emails.POST("/attachments/batch", emailHandler.GetAttachmentsBatch)
			emails.GET("/:messageId/attachments", middleware.CacheControl(middleware.CacheMedium), emailHandler.GetAttachments)
			emails.GET("/:messageId/attachments/:attachmentId", middleware.CacheControl(middleware.CacheLong), emailHandler.GetAttachmentContent)
			emails.POST("/:messageId/attachments/:attachmentId/extract", emailHandler.ExtractInvoice)

			emails.GET("/sync/status", middleware.NoStore(), emailHandler.GetSyncStatus)
			emails.POST("/sync", emailHandler.Sync)

			// Background job diagnostics
			job := emails.Group("/job")
			job.Use(middleware.NoStore())
			{
				job.GET("/state", jobHandler.GetState)
				job.POST("/trigger", jobHandler.Trigger)
				job.GET("/history", jobHandler.GetHistory)
			}
		}
	}
}
