package api

import (
	"github.com/gin-gonic/gin"
	"github.com/mihailmariusiondev/pixel-prophet-bot/internal/api/handlers"
	apimiddleware "github.com/mihailmariusiondev/pixel-prophet-bot/internal/api/middleware"
	"github.com/mihailmariusiondev/pixel-prophet-bot/internal/generation"
	"github.com/mihailmariusiondev/pixel-prophet-bot/internal/services"
	"github.com/mihailmariusiondev/pixel-prophet-bot/internal/styles"
	"gorm.io/gorm"
)

// Dependencies holds the wired services the router needs
type Dependencies struct {
	DB           *gorm.DB
	Engine       *generation.Engine
	ConfigSvc    *services.ConfigService
	Predictions  *services.PredictionService
	StyleManager *styles.Manager
	Version      string
}

func SetupRouter(deps Dependencies) *gin.Engine {
	router := gin.New()

	// Recovery middleware (must be first)
	router.Use(apimiddleware.RecoverWithSentry())

	// Sentry middleware for error tracking
	router.Use(apimiddleware.SentryMiddleware())

	// Request tracking and structured logging
	router.Use(apimiddleware.RequestTracking())

	// Health check
	healthHandler := handlers.NewHealthHandler(deps.DB, deps.Version)
	router.GET("/health", healthHandler.HealthCheck)

	v1 := router.Group("/api/v1")
	{
		// Per-user configuration
		configHandler := handlers.NewConfigHandler(deps.ConfigSvc)
		v1.GET("/users/:user_id/config", configHandler.GetConfig)
		v1.PUT("/users/:user_id/config", configHandler.SetConfig)
		v1.GET("/parameters", configHandler.ListParameters)

		// Generation endpoints
		generationHandler := handlers.NewGenerationHandler(deps.Engine)
		v1.POST("/users/:user_id/generations", generationHandler.Generate)
		v1.POST("/users/:user_id/variations", generationHandler.Variations)
		v1.POST("/users/:user_id/analyze", generationHandler.Analyze)

		// Prediction history
		predictionHandler := handlers.NewPredictionHandler(deps.Predictions)
		v1.GET("/users/:user_id/generations/last", predictionHandler.GetLastGeneration)
		v1.GET("/users/:user_id/predictions", predictionHandler.ListPredictions)
		v1.GET("/predictions/:id", predictionHandler.GetPrediction)

		// Style catalog
		stylesHandler := handlers.NewStylesHandler(deps.StyleManager)
		v1.GET("/styles", stylesHandler.ListStyles)
	}

	return router
}
