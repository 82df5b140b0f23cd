package services

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mihailmariusiondev/pixel-prophet-bot/internal/logger"
	"github.com/mihailmariusiondev/pixel-prophet-bot/internal/models"
	"github.com/mihailmariusiondev/pixel-prophet-bot/internal/params"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ConfigService is the durable per-user configuration store. Reads overlay
// stored overrides on top of the schema defaults; writes validate against the
// schema and persist the complete override map.
type ConfigService struct {
	db *gorm.DB
}

func NewConfigService(db *gorm.DB) *ConfigService {
	return &ConfigService{db: db}
}

// Resolve returns the default parameter map overlaid with the user's stored
// overrides. Stored keys no longer present in the schema are ignored so old
// records keep working after schema changes.
func (s *ConfigService) Resolve(userID int64) (params.Map, error) {
	merged := params.Defaults()

	var record models.UserConfig
	err := s.db.First(&record, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return merged, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load config for user %d: %w", userID, err)
	}

	overrides := map[string]any{}
	if err := json.Unmarshal(record.Overrides, &overrides); err != nil {
		logger.Warn("Stored config is not valid JSON, using defaults", logger.Fields{
			"user_id": userID,
		})
		return merged, nil
	}

	for key, value := range overrides {
		if _, known := params.Lookup(key); !known {
			continue
		}
		merged[key] = params.Normalize(key, value)
	}
	return merged, nil
}

// ValidateAndSet validates one raw value against the parameter schema and, on
// success, persists the user's full override map and returns the resolved
// configuration. A validation failure leaves stored state untouched.
func (s *ConfigService) ValidateAndSet(userID int64, key, rawValue string) (params.Map, error) {
	value, err := params.Convert(key, rawValue)
	if err != nil {
		return nil, err
	}

	resolved, err := s.Resolve(userID)
	if err != nil {
		return nil, err
	}
	resolved[key] = value

	// Persist only the keys that differ from defaults; the stored record is
	// a complete replacement map either way.
	overrides := map[string]any{}
	defaults := params.Defaults()
	for k, v := range resolved {
		if v != defaults[k] {
			overrides[k] = v
		}
	}

	payload, err := json.Marshal(overrides)
	if err != nil {
		return nil, fmt.Errorf("failed to encode config for user %d: %w", userID, err)
	}

	record := models.UserConfig{UserID: userID, Overrides: payload}
	err = s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"overrides", "updated_at"}),
	}).Create(&record).Error
	if err != nil {
		return nil, fmt.Errorf("failed to persist config for user %d: %w", userID, err)
	}

	logger.Info("Config updated", logger.Fields{
		"user_id": userID,
		"key":     key,
	})
	return resolved, nil
}

// IsConfigured reports whether the mandatory keys for generation are present.
// Generation entry points short-circuit when this is false.
func (s *ConfigService) IsConfigured(userID int64) (bool, error) {
	resolved, err := s.Resolve(userID)
	if err != nil {
		return false, err
	}
	return resolved.String("trigger_word") != "" && resolved.String("model_endpoint") != "", nil
}
