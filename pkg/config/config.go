package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port          string
	DatabaseURL   string
	FrontendURL   string
	SessionSecret string
	SessionExpiry time.Duration

	// Mail provider selection: "graph" (Microsoft) or "gmail"
	MailProvider string
	TargetFolder string

	AzureClientID     string
	AzureClientSecret string
	AzureTenant       string

	GoogleClientID     string
	GoogleClientSecret string

	RedirectURI string

	GeminiAPIKey string

	JobInterval       time.Duration
	DiscordWebhookURL string
}

func Load() *Config {
	// Load .env file if it exists
	_ = godotenv.Load()

	sessionExpiry := 24 * time.Hour
	if exp := os.Getenv("SESSION_EXPIRY"); exp != "" {
		if parsed, err := time.ParseDuration(exp); err == nil {
			sessionExpiry = parsed
		}
	}

	jobInterval := 5 * time.Minute
	if iv := os.Getenv("BACKGROUND_JOB_INTERVAL"); iv != "" {
		if parsed, err := time.ParseDuration(iv); err == nil {
			jobInterval = parsed
		}
	}

	return &Config{
		Port:               getEnv("PORT", "8080"),
		DatabaseURL:        getEnv("DATABASE_URL", "host=localhost user=postgres password=postgres dbname=faktury port=5432 sslmode=disable"),
		FrontendURL:        getEnv("FRONTEND_URL", "http://localhost:5173"),
		SessionSecret:      getEnv("SESSION_SECRET", "your-secret-key-change-in-production"),
		SessionExpiry:      sessionExpiry,
		MailProvider:       getEnv("MAIL_PROVIDER", "graph"),
		TargetFolder:       getEnv("TARGET_FOLDER", "faktury"),
		AzureClientID:      getEnv("AZURE_CLIENT_ID", ""),
		AzureClientSecret:  getEnv("AZURE_CLIENT_SECRET", ""),
		AzureTenant:        getEnv("AZURE_TENANT", "consumers"),
		GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
		RedirectURI:        getEnv("REDIRECT_URI", "http://localhost:8080/api/auth/callback"),
		GeminiAPIKey:       getEnv("GEMINI_API_KEY", ""),
		JobInterval:        jobInterval,
		DiscordWebhookURL:  getEnv("DISCORD_WEBHOOK_URL", ""),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
