package api

import (
	authDelivery "faktury-backend/internal/auth/delivery"
	authUsecase "faktury-backend/internal/auth/usecase"
	emailDelivery "faktury-backend/internal/email/delivery"
	jobDelivery "faktury-backend/internal/job/delivery"
	"faktury-backend/pkg/config"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	authUsecase  authUsecase.AuthUsecase
	authHandler  *authDelivery.AuthHandler
	emailHandler *emailDelivery.EmailHandler
	jobHandler   *jobDelivery.JobHandler
	config       *config.Config
}

func NewHandler(
	authUc authUsecase.AuthUsecase,
	authHandler *authDelivery.AuthHandler,
	emailHandler *emailDelivery.EmailHandler,
	jobHandler *jobDelivery.JobHandler,
	cfg *config.Config,
) *Handler {
	return &Handler{
		authUsecase:  authUc,
		authHandler:  authHandler,
		emailHandler: emailHandler,
		jobHandler:   jobHandler,
		config:       cfg,
	}
}

func (h *Handler) Start(addr string) error {
	gin.SetMode(gin.ReleaseMode)
	r := gin.Default()

	// CORS middleware. Credentials require echoing the configured frontend
	// origin, never a wildcard.
	r.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" && origin == h.config.FrontendURL {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		}

		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	SetupRoutes(r, h.authUsecase, h.authHandler, h.emailHandler, h.jobHandler, h.config)

	return r.Run(addr)
}
