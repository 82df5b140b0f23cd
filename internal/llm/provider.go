package llm

import (
	"context"
	"errors"
	"strings"
)

// ErrRefusal is returned when the completion contains a refusal marker.
// A refusal is never a usable prompt, so it is treated as a failed call.
var ErrRefusal = errors.New("completion contained a refusal marker")

// ErrEmptyCompletion is returned when the provider produced no text
var ErrEmptyCompletion = errors.New("completion was empty")

// Message is one role-tagged chat message. ImageURL, when set, attaches an
// image part for vision-style analysis.
type Message struct {
	Role     string
	Content  string
	ImageURL string
}

// CompletionRequest contains all parameters for one text completion
type CompletionRequest struct {
	Model       string
	Messages    []Message
	Temperature float64
	MaxTokens   int
}

// Provider defines the interface for text-completion providers
type Provider interface {
	// Complete runs one chat completion and returns the response text.
	// Implementations must reject refusal responses with ErrRefusal.
	Complete(ctx context.Context, request *CompletionRequest) (string, error)

	// Name returns the provider name (e.g., "openai")
	Name() string
}

// refusalMarkers are apology-style substrings that indicate the model
// declined instead of producing a prompt
var refusalMarkers = []string{
	"i'm sorry",
	"i am sorry",
	"i apologize",
	"i cannot assist",
	"i can't assist",
	"as an ai",
}

// ContainsRefusal reports whether text looks like a refusal rather than a
// usable completion
func ContainsRefusal(text string) bool {
	lower := strings.ToLower(text)
	for _, marker := range refusalMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
