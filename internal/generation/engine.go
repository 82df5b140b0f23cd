package generation

import (
	"context"
	"errors"

	"github.com/mihailmariusiondev/pixel-prophet-bot/internal/services"
	"github.com/mihailmariusiondev/pixel-prophet-bot/internal/styles"
)

// Engine is the full orchestration pipeline: parse a raw command, resolve
// prompts (directly or via synthesis), fan out, aggregate.
type Engine struct {
	orchestrator *Orchestrator
	synthesizer  *Synthesizer
	styleManager *styles.Manager
	config       *services.ConfigService
	predictions  *services.PredictionService
}

func NewEngine(
	orchestrator *Orchestrator,
	synthesizer *Synthesizer,
	styleManager *styles.Manager,
	config *services.ConfigService,
	predictions *services.PredictionService,
) *Engine {
	return &Engine{
		orchestrator: orchestrator,
		synthesizer:  synthesizer,
		styleManager: styleManager,
		config:       config,
		predictions:  predictions,
	}
}

// Execute runs one raw generation command for a user. Parse and configuration
// errors return before any provider call; generation failures are embedded in
// the outcome per task.
func (e *Engine) Execute(ctx context.Context, userID int64, command string) (*Outcome, error) {
	resolved, err := e.config.Resolve(userID)
	if err != nil {
		return nil, err
	}
	triggerWord := resolved.String("trigger_word")
	if triggerWord == "" || resolved.String("model_endpoint") == "" {
		return nil, ErrIncompleteConfiguration
	}
	gender := resolved.String("gender")

	intent := ParseCommand(command, triggerWord, resolved.Int("num_outputs"))

	switch intent.Kind {
	case IntentInvalid:
		return nil, &ParseError{Reason: intent.Reason}

	case IntentSingle:
		return e.orchestrator.FanOut(ctx, repeat(intent.Prompt, intent.Count), userID, OpSingle), nil

	case IntentBatchDirectPrompt:
		return e.orchestrator.FanOut(ctx, repeat(intent.Prompt, intent.Count), userID, OpBatch), nil

	case IntentBatchDefaultStyle:
		styleName := resolved.String("style")
		prompts, synthErr := e.synthesizer.Synthesize(ctx, intent.Count, triggerWord, styleName, gender)
		if synthErr != nil {
			return nil, synthErr
		}
		return e.orchestrator.FanOut(ctx, prompts, userID, OpBatch), nil

	case IntentBatchStyled:
		// Unknown styles are dropped here, not at parse time; total volume
		// is count prompts per surviving style.
		styleNames := e.styleManager.Resolve(intent.Styles)
		if len(styleNames) == 0 {
			return nil, ErrNoPromptsGenerated
		}

		var prompts []string
		for _, styleName := range styleNames {
			stylePrompts, synthErr := e.synthesizer.Synthesize(ctx, intent.Count, triggerWord, styleName, gender)
			if errors.Is(synthErr, ErrNoPromptsGenerated) {
				continue
			}
			if synthErr != nil {
				return nil, synthErr
			}
			prompts = append(prompts, stylePrompts...)
		}
		if len(prompts) == 0 {
			return nil, ErrNoPromptsGenerated
		}
		return e.orchestrator.FanOut(ctx, prompts, userID, OpBatch), nil
	}

	return nil, &ParseError{Reason: "unrecognized command"}
}

// AnalyzeAndGenerate describes an image through the vision model and runs a
// single generation with the resulting prompt
func (e *Engine) AnalyzeAndGenerate(ctx context.Context, userID int64, imageURL string) (*Result, error) {
	resolved, err := e.config.Resolve(userID)
	if err != nil {
		return nil, err
	}
	triggerWord := resolved.String("trigger_word")
	if triggerWord == "" || resolved.String("model_endpoint") == "" {
		return nil, ErrIncompleteConfiguration
	}

	description, err := e.synthesizer.AnalyzeImage(ctx, triggerWord, imageURL)
	if err != nil {
		return nil, err
	}
	return e.orchestrator.Generate(ctx, description, userID, OpAnalysis)
}

func repeat(prompt string, n int) []string {
	prompts := make([]string, n)
	for i := range prompts {
		prompts[i] = prompt
	}
	return prompts
}
