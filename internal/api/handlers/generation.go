package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mihailmariusiondev/pixel-prophet-bot/internal/generation"
	"github.com/mihailmariusiondev/pixel-prophet-bot/internal/logger"
)

type GenerationHandler struct {
	engine *generation.Engine
}

func NewGenerationHandler(engine *generation.Engine) *GenerationHandler {
	return &GenerationHandler{engine: engine}
}

type GenerateRequest struct {
	Command string `json:"command" binding:"required"`
}

type VariationRequest struct {
	PredictionID string `json:"prediction_id"`
	Count        int    `json:"count"`
}

type AnalyzeRequest struct {
	ImageURL string `json:"image_url" binding:"required,url"`
}

// Generate runs one raw generation command. Partial fan-out failures do not
// fail the request: the outcome lists every task with its result or error.
func (h *GenerationHandler) Generate(c *gin.Context) {
	userID, ok := parseUserID(c)
	if !ok {
		return
	}

	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// A client disconnect must not abort in-flight provider calls: completed
	// generations are persisted even when nobody is left to read the reply.
	ctx := context.WithoutCancel(c.Request.Context())

	outcome, err := h.engine.Execute(ctx, userID, req.Command)
	if err != nil {
		respondError(c, err)
		return
	}

	logger.Info("Generation command completed", logger.Fields{
		"request_id": c.GetString("request_id"),
		"user_id":    userID,
		"succeeded":  outcome.Succeeded,
		"failed":     outcome.Failed,
	})

	c.JSON(http.StatusOK, renderOutcome(outcome))
}

// Variations re-runs a stored prompt with fresh seeds. With no prediction_id
// the user's most recent generation is the source.
func (h *GenerationHandler) Variations(c *gin.Context) {
	userID, ok := parseUserID(c)
	if !ok {
		return
	}

	var req VariationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := context.WithoutCancel(c.Request.Context())

	outcome, err := h.engine.Variations(ctx, userID, req.PredictionID, req.Count)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, renderOutcome(outcome))
}

// Analyze runs vision analysis on an image and generates from the resulting
// prompt in one shot
func (h *GenerationHandler) Analyze(c *gin.Context) {
	userID, ok := parseUserID(c)
	if !ok {
		return
	}

	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := context.WithoutCancel(c.Request.Context())

	result, err := h.engine.AnalyzeAndGenerate(ctx, userID, req.ImageURL)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// renderOutcome flattens a fan-out outcome for transport: errors become
// strings, successes keep their full result
func renderOutcome(outcome *generation.Outcome) gin.H {
	items := make([]gin.H, 0, len(outcome.Results))
	for _, item := range outcome.Results {
		entry := gin.H{
			"index":  item.Index,
			"prompt": item.Prompt,
		}
		if item.Err != nil {
			entry["error"] = item.Err.Error()
		} else {
			entry["result"] = item.Result
		}
		items = append(items, entry)
	}

	return gin.H{
		"succeeded": outcome.Succeeded,
		"failed":    outcome.Failed,
		"results":   items,
	}
}
