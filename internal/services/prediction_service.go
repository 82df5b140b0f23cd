package services

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/mihailmariusiondev/pixel-prophet-bot/internal/models"
	"github.com/mihailmariusiondev/pixel-prophet-bot/internal/params"
	"gorm.io/gorm"
)

// ErrPredictionNotFound is returned by lookups when no record matches
var ErrPredictionNotFound = errors.New("prediction not found")

// PredictionService is the append-only log of completed generations
type PredictionService struct {
	db *gorm.DB
}

func NewPredictionService(db *gorm.DB) *PredictionService {
	return &PredictionService{db: db}
}

// Save inserts a prediction record and returns its id. When the provider did
// not supply an identifier a UUID is minted so the record stays addressable
// for variation-by-id.
func (s *PredictionService) Save(userID int64, prompt string, snapshot params.Map, outputRef, providerID string) (string, error) {
	id := providerID
	if id == "" {
		id = uuid.New().String()
	}

	payload, err := json.Marshal(snapshot)
	if err != nil {
		return "", fmt.Errorf("failed to encode params snapshot: %w", err)
	}

	record := models.Prediction{
		ID:        id,
		UserID:    userID,
		Prompt:    prompt,
		Params:    payload,
		OutputRef: outputRef,
	}
	if err := s.db.Create(&record).Error; err != nil {
		return "", fmt.Errorf("failed to save prediction %s: %w", id, err)
	}
	return id, nil
}

// Get returns the prediction with the given id
func (s *PredictionService) Get(id string) (*models.Prediction, error) {
	var record models.Prediction
	err := s.db.First(&record, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPredictionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load prediction %s: %w", id, err)
	}
	return &record, nil
}

// ListByUser returns every stored prediction for a user, newest first. An
// empty history is an empty slice, not an error.
func (s *PredictionService) ListByUser(userID int64) ([]models.Prediction, error) {
	var records []models.Prediction
	err := s.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list predictions for user %d: %w", userID, err)
	}
	return records, nil
}

// GetLast returns the user's most recent prediction by creation time
func (s *PredictionService) GetLast(userID int64) (*models.Prediction, error) {
	var record models.Prediction
	err := s.db.Where("user_id = ?", userID).Order("created_at DESC").First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPredictionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load last prediction for user %d: %w", userID, err)
	}
	return &record, nil
}
