package generation

import (
	"context"
	"errors"

	"github.com/mihailmariusiondev/pixel-prophet-bot/internal/services"
)

// DefaultVariationCount is used when the caller does not specify one
const DefaultVariationCount = 3

// Variations re-runs a stored prompt n times concurrently. The source is an
// explicit prediction id when given, otherwise the user's most recent
// generation. Every run gets its own fresh seed; the original seed is never
// reused.
func (e *Engine) Variations(ctx context.Context, userID int64, sourceID string, n int) (*Outcome, error) {
	if n <= 0 {
		n = DefaultVariationCount
	}

	var prompt string
	if sourceID != "" {
		record, err := e.predictions.Get(sourceID)
		if errors.Is(err, services.ErrPredictionNotFound) {
			return nil, ErrPredictionNotFound
		}
		if err != nil {
			return nil, err
		}
		prompt = record.Prompt
	} else {
		record, err := e.predictions.GetLast(userID)
		if errors.Is(err, services.ErrPredictionNotFound) {
			return nil, ErrNoPriorGeneration
		}
		if err != nil {
			return nil, err
		}
		prompt = record.Prompt
	}

	return e.orchestrator.FanOut(ctx, repeat(prompt, n), userID, OpVariation), nil
}
