package main

import (
	"log"

	api "faktury-backend/cmd/api"
	authDelivery "faktury-backend/internal/auth/delivery"
	authdomain "faktury-backend/internal/auth/domain"
	authRepo "faktury-backend/internal/auth/repository"
	authUsecase "faktury-backend/internal/auth/usecase"
	emailDelivery "faktury-backend/internal/email/delivery"
	emaildomain "faktury-backend/internal/email/domain"
	emailRepo "faktury-backend/internal/email/repository"
	emailUsecase "faktury-backend/internal/email/usecase"
	invoicedomain "faktury-backend/internal/invoice/domain"
	invoiceRepo "faktury-backend/internal/invoice/repository"
	invoiceUsecase "faktury-backend/internal/invoice/usecase"
	jobDelivery "faktury-backend/internal/job/delivery"
	jobdomain "faktury-backend/internal/job/domain"
	jobRepo "faktury-backend/internal/job/repository"
	"faktury-backend/internal/job/scheduler"
	"faktury-backend/internal/notification"
	"faktury-backend/pkg/config"
	"faktury-backend/pkg/database"
	"faktury-backend/pkg/gemini"
	"faktury-backend/pkg/gmail"
	"faktury-backend/pkg/graph"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.NewPostgresConnection(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Auto-migrate database schemas
	if err := db.AutoMigrate(
		&authdomain.AuthTokens{},
		&emaildomain.SyncMetadata{},
		&invoicedomain.InvoiceRecord{},
		&jobdomain.JobState{},
		&jobdomain.JobExecution{},
	); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	// Initialize repositories (dependency injection)
	tokenRepository := authRepo.NewTokenRepository(db)
	syncMetadataRepo := emailRepo.NewSyncMetadataRepository(db)
	invoiceRepository := invoiceRepo.NewInvoiceRepository(db)
	jobStateRepo := jobRepo.NewJobStateRepository(db)
	jobExecRepo := jobRepo.NewJobExecutionRepository(db)

	// OAuth provider for the configured mail backend
	oauthProvider, err := authUsecase.NewProvider(cfg)
	if err != nil {
		log.Fatal("Failed to configure OAuth provider:", err)
	}

	// Mail provider matching the OAuth backend
	var mailProvider emaildomain.MailProvider
	switch cfg.MailProvider {
	case "gmail":
		mailProvider = gmail.NewService()
	default:
		mailProvider = graph.NewService()
	}
	log.Printf("[Main] Mail provider: %s, target folder: %s", cfg.MailProvider, cfg.TargetFolder)

	// Discord notification queue (disabled when no webhook configured)
	notificationQueue := notification.NewQueue(cfg.DiscordWebhookURL, cfg.FrontendURL)
	notificationQueue.Start()

	// Initialize use cases (dependency injection)
	tokenManager := authUsecase.NewTokenManager(tokenRepository, oauthProvider)
	authUsecaseInstance := authUsecase.NewAuthUsecase(tokenManager, oauthProvider, cfg)
	geminiService := gemini.NewGeminiService(cfg.GeminiAPIKey)
	invoiceUsecaseInstance := invoiceUsecase.NewInvoiceUsecase(invoiceRepository, mailProvider, tokenManager, geminiService, notificationQueue)
	syncUsecaseInstance := emailUsecase.NewSyncUsecase(mailProvider, tokenManager, invoiceUsecaseInstance, syncMetadataRepo, cfg.TargetFolder)

	// Background job scheduler
	emailCheckScheduler := scheduler.NewEmailCheckScheduler(syncUsecaseInstance, jobStateRepo, jobExecRepo, cfg.JobInterval)
	emailCheckScheduler.Start()
	defer emailCheckScheduler.Stop()

	// Initialize HTTP handlers
	authHandler := authDelivery.NewAuthHandler(authUsecaseInstance, cfg)
	emailHandler := emailDelivery.NewEmailHandler(mailProvider, tokenManager, syncUsecaseInstance, invoiceUsecaseInstance, cfg.TargetFolder)
	jobHandler := jobDelivery.NewJobHandler(emailCheckScheduler, jobStateRepo, jobExecRepo)

	handler := api.NewHandler(authUsecaseInstance, authHandler, emailHandler, jobHandler, cfg)

	// Start server
	log.Printf("Server starting on port %s", cfg.Port)
	if err := handler.Start(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
