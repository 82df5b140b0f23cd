package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mihailmariusiondev/pixel-prophet-bot/internal/generation"
	"github.com/mihailmariusiondev/pixel-prophet-bot/internal/params"
	"github.com/mihailmariusiondev/pixel-prophet-bot/internal/services"
)

// respondError maps domain errors onto HTTP status codes. Anything not
// recognized is a 500.
func respondError(c *gin.Context, err error) {
	var validationErr *params.ValidationError
	var parseErr *generation.ParseError
	var providerErr *generation.ProviderError

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":  validationErr.Message,
			"key":    validationErr.Key,
			"reason": string(validationErr.Reason),
		})
	case errors.As(err, &parseErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": parseErr.Error()})
	case errors.Is(err, generation.ErrPredictionNotFound),
		errors.Is(err, generation.ErrNoPriorGeneration),
		errors.Is(err, services.ErrPredictionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, generation.ErrIncompleteConfiguration):
		c.JSON(http.StatusConflict, gin.H{
			"error": "configuration incomplete: trigger_word and model_endpoint must be set",
		})
	case errors.As(err, &providerErr),
		errors.Is(err, generation.ErrEmptyProviderResponse),
		errors.Is(err, generation.ErrNoPromptsGenerated):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
