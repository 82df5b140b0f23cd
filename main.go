package main

import (
	"log"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/mihailmariusiondev/pixel-prophet-bot/internal/api"
	"github.com/mihailmariusiondev/pixel-prophet-bot/internal/config"
	"github.com/mihailmariusiondev/pixel-prophet-bot/internal/database"
	"github.com/mihailmariusiondev/pixel-prophet-bot/internal/generation"
	"github.com/mihailmariusiondev/pixel-prophet-bot/internal/llm"
	"github.com/mihailmariusiondev/pixel-prophet-bot/internal/replicate"
	"github.com/mihailmariusiondev/pixel-prophet-bot/internal/services"
	"github.com/mihailmariusiondev/pixel-prophet-bot/internal/styles"
)

const (
	sentryFlushTimeout    = 2 * time.Second
	environmentProduction = "production"
)

// releaseVersion is set via ldflags during build
var releaseVersion = "dev"

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Load configuration
	cfg := config.Load()

	// Initialize Sentry
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			Environment:      cfg.Environment,
			Release:          "pixel-prophet-bot@" + releaseVersion,
			EnableTracing:    true,
			TracesSampleRate: 1.0, // 100% sampling for now, adjust based on volume
			Debug:            cfg.Environment != environmentProduction,
			BeforeSend: func(event *sentry.Event, _ *sentry.EventHint) *sentry.Event {
				// Filter out sensitive data
				if event.Request != nil {
					event.Request.Headers = filterSensitiveHeaders(event.Request.Headers)
				}
				return event
			},
		}); err != nil {
			log.Printf("Failed to initialize Sentry: %v", err)
		} else {
			log.Printf("✅ Sentry initialized (environment: %s, release: %s)", cfg.Environment, releaseVersion)
			defer sentry.Flush(sentryFlushTimeout)
		}
	} else {
		log.Println("⚠️  Sentry not configured (SENTRY_DSN not set)")
	}

	// Initialize database
	db, err := database.Connect(cfg.DatabaseURL, cfg.SQLitePath)
	if err != nil {
		sentry.CaptureException(err)
		log.Fatal("Failed to connect to database:", err)
	}

	// Run migrations
	if err := database.Migrate(db); err != nil {
		sentry.CaptureException(err)
		log.Fatal("Failed to run migrations:", err)
	}

	// Load style catalog
	styleManager, err := styles.NewManager()
	if err != nil {
		sentry.CaptureException(err)
		log.Fatal("Failed to load styles:", err)
	}

	// Wire services
	configSvc := services.NewConfigService(db)
	predictionSvc := services.NewPredictionService(db)
	textProvider := llm.NewOpenAIProvider(cfg.OpenAIAPIKey)
	imageProvider := replicate.NewClient(cfg.ReplicateAPIKey, cfg.ReplicateBaseURL)

	orchestrator := generation.NewOrchestrator(configSvc, predictionSvc, imageProvider)
	synthesizer := generation.NewSynthesizer(textProvider, styleManager, cfg.CompletionModel, cfg.VisionModel)
	engine := generation.NewEngine(orchestrator, synthesizer, styleManager, configSvc, predictionSvc)

	// Set Gin mode
	if cfg.Environment == environmentProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize router
	router := api.SetupRouter(api.Dependencies{
		DB:           db,
		Engine:       engine,
		ConfigSvc:    configSvc,
		Predictions:  predictionSvc,
		StyleManager: styleManager,
		Version:      releaseVersion,
	})

	log.Printf("🚀 Starting server on port %s", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		sentry.CaptureException(err)
		log.Fatal("Failed to start server:", err)
	}
}

func filterSensitiveHeaders(headers map[string]string) map[string]string {
	filtered := make(map[string]string)
	sensitiveKeys := map[string]bool{
		"authorization": true,
		"cookie":        true,
		"x-api-key":     true,
	}

	for k, v := range headers {
		if sensitiveKeys[k] {
			filtered[k] = "[REDACTED]"
		} else {
			filtered[k] = v
		}
	}
	return filtered
}
