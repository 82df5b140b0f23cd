package generation

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mihailmariusiondev/pixel-prophet-bot/internal/logger"
	"github.com/mihailmariusiondev/pixel-prophet-bot/internal/metrics"
	"github.com/mihailmariusiondev/pixel-prophet-bot/internal/params"
	"github.com/mihailmariusiondev/pixel-prophet-bot/internal/services"
)

var batchMetrics = metrics.NewSentryMetrics()

// OperationKind labels what triggered a generation, for logging and auditing
type OperationKind string

const (
	OpSingle    OperationKind = "single"
	OpBatch     OperationKind = "batch"
	OpVariation OperationKind = "variation"
	OpAnalysis  OperationKind = "analysis"
)

// ImageProvider is the boundary to the external image-synthesis service
type ImageProvider interface {
	// Generate runs one synthesis call: flat parameter map in, output
	// references plus a provider-side identifier out
	Generate(ctx context.Context, modelEndpoint string, input map[string]any) (outputs []string, providerID string, err error)
}

// Result is one successful generation
type Result struct {
	PredictionID string     `json:"prediction_id"`
	OutputRef    string     `json:"output_ref"`
	Prompt       string     `json:"prompt"`
	Params       params.Map `json:"params"`
}

// ItemResult is one settled fan-out task, success or failure
type ItemResult struct {
	Index  int     `json:"index"`
	Prompt string  `json:"prompt"`
	Result *Result `json:"result,omitempty"`
	Err    error   `json:"-"`
}

// Outcome aggregates a settled fan-out. No partial results are discarded:
// every launched task appears exactly once, in input order.
type Outcome struct {
	Results   []ItemResult `json:"results"`
	Succeeded int          `json:"succeeded"`
	Failed    int          `json:"failed"`
}

// Orchestrator resolves configuration, fans out generation calls and records
// each completed call in the prediction log
type Orchestrator struct {
	config      *services.ConfigService
	predictions *services.PredictionService
	provider    ImageProvider

	// seedFn produces a fresh seed per call; replaced in tests
	seedFn func() int
}

func NewOrchestrator(config *services.ConfigService, predictions *services.PredictionService, provider ImageProvider) *Orchestrator {
	return &Orchestrator{
		config:      config,
		predictions: predictions,
		provider:    provider,
		seedFn: func() int {
			return rand.Intn(params.SeedMax) + params.SeedMin
		},
	}
}

// Generate runs one generation call end to end: resolve config, randomize the
// seed, invoke the provider, persist the prediction. The record is written
// before the result is returned so a caller that disappears mid-flight never
// loses a completed generation.
func (o *Orchestrator) Generate(ctx context.Context, prompt string, userID int64, kind OperationKind) (*Result, error) {
	startTime := time.Now()

	resolved, err := o.config.Resolve(userID)
	if err != nil {
		return nil, err
	}
	triggerWord := resolved.String("trigger_word")
	modelEndpoint := resolved.String("model_endpoint")
	if triggerWord == "" || modelEndpoint == "" {
		return nil, ErrIncompleteConfiguration
	}

	request := resolved.Clone()
	seed := o.seedFn()
	request["seed"] = seed
	request["prompt"] = prompt

	outputs, providerID, err := o.provider.Generate(ctx, modelEndpoint, map[string]any(request))
	if err != nil {
		return nil, &ProviderError{Err: err}
	}
	if len(outputs) == 0 {
		return nil, ErrEmptyProviderResponse
	}
	outputRef := outputs[0]

	// Audit-path write: losing the record degrades variations, it does not
	// undo the generation, so a storage failure is logged and swallowed.
	predictionID, saveErr := o.predictions.Save(userID, prompt, request, outputRef, providerID)
	if saveErr != nil {
		logger.Error("Failed to save prediction", saveErr, logger.Fields{
			"user_id":   userID,
			"operation": string(kind),
		})
		// The result must still carry an identifier even though it is not
		// addressable for variation-by-id.
		predictionID = providerID
		if predictionID == "" {
			predictionID = uuid.New().String()
		}
	}

	logger.LogGeneration(ctx, modelEndpoint, time.Since(startTime), seed, logger.Fields{
		"user_id":       userID,
		"operation":     string(kind),
		"prediction_id": predictionID,
	})

	return &Result{
		PredictionID: predictionID,
		OutputRef:    outputRef,
		Prompt:       prompt,
		Params:       request,
	}, nil
}

// FanOut issues all generation calls concurrently and joins on the full set.
// One task's failure never cancels or blocks its siblings; the outcome
// reports each task independently.
func (o *Orchestrator) FanOut(ctx context.Context, prompts []string, userID int64, kind OperationKind) *Outcome {
	start := time.Now()
	logger.Info("Fan-out started", logger.Fields{
		"user_id":   userID,
		"operation": string(kind),
		"total":     len(prompts),
	})

	outcome := &Outcome{Results: make([]ItemResult, len(prompts))}

	var wg sync.WaitGroup
	for i, prompt := range prompts {
		wg.Add(1)
		go func(index int, p string) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					outcome.Results[index] = ItemResult{
						Index:  index,
						Prompt: p,
						Err:    fmt.Errorf("generation panicked: %v", r),
					}
				}
			}()

			result, err := o.Generate(ctx, p, userID, kind)
			outcome.Results[index] = ItemResult{Index: index, Prompt: p, Result: result, Err: err}
		}(i, prompt)
	}
	wg.Wait()

	for _, item := range outcome.Results {
		if item.Err != nil {
			outcome.Failed++
			logger.Warn("Fan-out task failed", logger.Fields{
				"user_id":   userID,
				"operation": string(kind),
				"index":     item.Index,
				"error":     item.Err.Error(),
			})
		} else {
			outcome.Succeeded++
		}
	}

	logger.Info("Fan-out settled", logger.Fields{
		"user_id":   userID,
		"operation": string(kind),
		"total":     len(prompts),
		"succeeded": outcome.Succeeded,
		"failed":    outcome.Failed,
	})
	batchMetrics.RecordGenerationBatch(ctx, string(kind), outcome.Succeeded, outcome.Failed, time.Since(start))
	return outcome
}
