package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mihailmariusiondev/pixel-prophet-bot/internal/models"
	"github.com/mihailmariusiondev/pixel-prophet-bot/internal/services"
)

type PredictionHandler struct {
	predictions *services.PredictionService
}

func NewPredictionHandler(predictions *services.PredictionService) *PredictionHandler {
	return &PredictionHandler{predictions: predictions}
}

// GetPrediction returns one stored prediction by id
func (h *PredictionHandler) GetPrediction(c *gin.Context) {
	record, err := h.predictions.Get(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, renderPrediction(record))
}

// ListPredictions returns the user's full stored history, newest first
func (h *PredictionHandler) ListPredictions(c *gin.Context) {
	userID, ok := parseUserID(c)
	if !ok {
		return
	}

	records, err := h.predictions.ListByUser(userID)
	if err != nil {
		respondError(c, err)
		return
	}

	rendered := make([]gin.H, 0, len(records))
	for i := range records {
		rendered = append(rendered, renderPrediction(&records[i]))
	}

	c.JSON(http.StatusOK, gin.H{
		"user_id":     userID,
		"count":       len(rendered),
		"predictions": rendered,
	})
}

// GetLastGeneration returns the user's most recent prediction
func (h *PredictionHandler) GetLastGeneration(c *gin.Context) {
	userID, ok := parseUserID(c)
	if !ok {
		return
	}

	record, err := h.predictions.GetLast(userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, renderPrediction(record))
}

func renderPrediction(record *models.Prediction) gin.H {
	var snapshot map[string]any
	_ = json.Unmarshal(record.Params, &snapshot)

	return gin.H{
		"id":         record.ID,
		"user_id":    record.UserID,
		"prompt":     record.Prompt,
		"params":     snapshot,
		"output_ref": record.OutputRef,
		"created_at": record.CreatedAt,
	}
}
