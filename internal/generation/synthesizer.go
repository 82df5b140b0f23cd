package generation

import (
	"context"
	"strings"
	"sync"

	"github.com/mihailmariusiondev/pixel-prophet-bot/internal/llm"
	"github.com/mihailmariusiondev/pixel-prophet-bot/internal/logger"
	"github.com/mihailmariusiondev/pixel-prophet-bot/internal/styles"
	"github.com/mihailmariusiondev/pixel-prophet-bot/pkg/embedded"
)

const (
	synthesisTemperature = 0.7
	analysisTemperature  = 0.5
	analysisMaxTokens    = 600
)

// Synthesizer turns a style and count into prompt candidates via the
// text-completion provider
type Synthesizer struct {
	provider     llm.Provider
	styleManager *styles.Manager
	model        string
	visionModel  string
}

func NewSynthesizer(provider llm.Provider, styleManager *styles.Manager, model, visionModel string) *Synthesizer {
	return &Synthesizer{
		provider:     provider,
		styleManager: styleManager,
		model:        model,
		visionModel:  visionModel,
	}
}

// Synthesize requests count prompts for the given style. Candidates are
// whitespace-normalized and kept only when they start with the trigger word;
// rejected or failed candidates are dropped without retry. Callers receive
// between 0 and count prompts; zero is reported as ErrNoPromptsGenerated.
func (s *Synthesizer) Synthesize(ctx context.Context, count int, triggerWord, styleName, gender string) ([]string, error) {
	style := s.styleManager.Get(styleName)
	systemPrompt, err := style.SystemPrompt(triggerWord, gender)
	if err != nil {
		return nil, err
	}

	userPrompt := strings.TrimSpace(string(embedded.SynthesisUserPromptTxt))

	candidates := make([]string, count)
	var wg sync.WaitGroup
	for i := 0; i < count; i++ {
		wg.Add(1)
		go func(slot int) {
			defer wg.Done()
			text, completeErr := s.provider.Complete(ctx, &llm.CompletionRequest{
				Model: s.model,
				Messages: []llm.Message{
					{Role: "system", Content: systemPrompt},
					{Role: "user", Content: userPrompt},
				},
				Temperature: synthesisTemperature,
			})
			if completeErr != nil {
				logger.Warn("Prompt candidate failed", logger.Fields{
					"style": style.Name,
					"error": completeErr.Error(),
				})
				return
			}
			candidates[slot] = normalizeWhitespace(text)
		}(i)
	}
	wg.Wait()

	prompts := make([]string, 0, count)
	for _, candidate := range candidates {
		if candidate == "" {
			continue
		}
		if !strings.HasPrefix(candidate, triggerWord) {
			logger.Warn("Prompt candidate dropped, missing trigger word", logger.Fields{
				"style":   style.Name,
				"trigger": triggerWord,
			})
			continue
		}
		prompts = append(prompts, candidate)
	}

	if len(prompts) == 0 {
		return nil, ErrNoPromptsGenerated
	}
	return prompts, nil
}

// AnalyzeImage asks the vision model to describe an image as a generation
// prompt. The description is normalized and prefixed with the trigger word
// when the model forgot to include it.
func (s *Synthesizer) AnalyzeImage(ctx context.Context, triggerWord, imageURL string) (string, error) {
	systemPrompt := strings.ReplaceAll(
		strings.TrimSpace(string(embedded.ImageAnalysisPromptTxt)),
		"{trigger_word}", triggerWord,
	)

	text, err := s.provider.Complete(ctx, &llm.CompletionRequest{
		Model: s.visionModel,
		Messages: []llm.Message{
			{Role: "system", Content: systemPrompt},
			{
				Role:     "user",
				Content:  "Analyze this image and create a detailed generation prompt following the guidelines exactly.",
				ImageURL: imageURL,
			},
		},
		Temperature: analysisTemperature,
		MaxTokens:   analysisMaxTokens,
	})
	if err != nil {
		return "", err
	}

	description := normalizeWhitespace(text)
	if !strings.HasPrefix(description, triggerWord) {
		description = triggerWord + " " + description
	}
	return description, nil
}

func normalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
