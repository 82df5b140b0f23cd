package generation

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/mihailmariusiondev/pixel-prophet-bot/internal/llm"
	"github.com/mihailmariusiondev/pixel-prophet-bot/internal/styles"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedLLM struct {
	responses []string // consumed in call order; "" means error
	calls     atomic.Int64
	err       error
}

func (s *scriptedLLM) Name() string { return "scripted" }

func (s *scriptedLLM) Complete(_ context.Context, _ *llm.CompletionRequest) (string, error) {
	n := int(s.calls.Add(1)) - 1
	if n < len(s.responses) {
		if s.responses[n] == "" {
			if s.err != nil {
				return "", s.err
			}
			return "", llm.ErrEmptyCompletion
		}
		return s.responses[n], nil
	}
	return "", llm.ErrEmptyCompletion
}

func newTestSynthesizer(t *testing.T, provider llm.Provider) *Synthesizer {
	t.Helper()
	manager, err := styles.NewManager()
	require.NoError(t, err)
	return NewSynthesizer(provider, manager, "gpt-4o-mini", "gpt-4o")
}

func TestSynthesizeAcceptsTriggerPrefixedPrompts(t *testing.T) {
	provider := &scriptedLLM{responses: []string{
		"  MARIUS   standing by a window,   soft light ",
		"MARIUS walking through a plaza at dusk",
		"a prompt that forgot the trigger word",
	}}
	synth := newTestSynthesizer(t, provider)

	prompts, err := synth.Synthesize(context.Background(), 3, "MARIUS", "professional", "male")
	require.NoError(t, err)
	assert.Len(t, prompts, 2)
	for _, prompt := range prompts {
		assert.True(t, strings.HasPrefix(prompt, "MARIUS"))
		assert.NotContains(t, prompt, "  ", "whitespace should be normalized")
	}
}

func TestSynthesizeDropsFailedCandidatesSilently(t *testing.T) {
	provider := &scriptedLLM{
		responses: []string{"MARIUS in a library", "", ""},
		err:       llm.ErrRefusal,
	}
	synth := newTestSynthesizer(t, provider)

	prompts, err := synth.Synthesize(context.Background(), 3, "MARIUS", "casual", "female")
	require.NoError(t, err)
	assert.Equal(t, []string{"MARIUS in a library"}, prompts)
}

func TestSynthesizeAllRejectedIsAnError(t *testing.T) {
	provider := &scriptedLLM{responses: []string{"no trigger here", "also no trigger"}}
	synth := newTestSynthesizer(t, provider)

	_, err := synth.Synthesize(context.Background(), 2, "MARIUS", "urban", "male")
	assert.True(t, errors.Is(err, ErrNoPromptsGenerated))
}

func TestSynthesizeInvalidGender(t *testing.T) {
	synth := newTestSynthesizer(t, &scriptedLLM{})

	_, err := synth.Synthesize(context.Background(), 1, "MARIUS", "urban", "unspecified")
	assert.Error(t, err)
}

func TestAnalyzeImagePrependsMissingTrigger(t *testing.T) {
	provider := &scriptedLLM{responses: []string{"a portrait in warm light, shallow depth of field"}}
	synth := newTestSynthesizer(t, provider)

	prompt, err := synth.AnalyzeImage(context.Background(), "MARIUS", "https://img.example/in.jpg")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(prompt, "MARIUS "))
}

func TestAnalyzeImageKeepsExistingTrigger(t *testing.T) {
	provider := &scriptedLLM{responses: []string{"MARIUS seated at a desk, window light"}}
	synth := newTestSynthesizer(t, provider)

	prompt, err := synth.AnalyzeImage(context.Background(), "MARIUS", "https://img.example/in.jpg")
	require.NoError(t, err)
	assert.Equal(t, "MARIUS seated at a desk, window light", prompt)
}

func TestAnalyzeImagePropagatesRefusal(t *testing.T) {
	provider := &scriptedLLM{responses: []string{""}, err: llm.ErrRefusal}
	synth := newTestSynthesizer(t, provider)

	_, err := synth.AnalyzeImage(context.Background(), "MARIUS", "https://img.example/in.jpg")
	assert.True(t, errors.Is(err, llm.ErrRefusal))
}
