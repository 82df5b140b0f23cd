package generation

import (
	"errors"
	"fmt"
)

// Generation error taxonomy. Each failure mode gets its own sentinel so the
// command surface can render a specific rejection; fan-out catches these
// per-task and never lets one abort its siblings.
var (
	// ErrIncompleteConfiguration: trigger word or model endpoint missing
	ErrIncompleteConfiguration = errors.New("incomplete configuration: set trigger_word and model_endpoint first")

	// ErrEmptyProviderResponse: the image provider returned no output references
	ErrEmptyProviderResponse = errors.New("image provider returned an empty response")

	// ErrNoPromptsGenerated: prompt synthesis produced zero accepted candidates
	ErrNoPromptsGenerated = errors.New("no prompts were generated")

	// ErrNoPriorGeneration: variation requested but the user has no history
	ErrNoPriorGeneration = errors.New("no prior generation exists for this user")

	// ErrPredictionNotFound: variation-by-id referenced an unknown prediction
	ErrPredictionNotFound = errors.New("prediction not found")
)

// ParseError rejects a malformed command. It carries no state change and is
// rendered directly back to the user.
type ParseError struct {
	Reason string
}

func (e *ParseError) Error() string {
	return "invalid command: " + e.Reason
}

// ProviderError wraps a failure from the image-synthesis provider
type ProviderError struct {
	Err error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider failure: %v", e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}
