package generation

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVariationsFromLastGeneration(t *testing.T) {
	provider := &fakeImageProvider{}
	engine := newTestEngine(t, 42, provider, &echoLLM{})

	first, err := engine.Execute(context.Background(), 42, "on a mountain trail")
	require.NoError(t, err)
	require.Equal(t, 1, first.Succeeded)

	outcome, err := engine.Variations(context.Background(), 42, "", 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultVariationCount, outcome.Succeeded)
	for _, item := range outcome.Results {
		assert.Equal(t, "MARIUS on a mountain trail", item.Prompt)
	}
}

func TestVariationsByPredictionID(t *testing.T) {
	provider := &fakeImageProvider{}
	engine := newTestEngine(t, 42, provider, &echoLLM{})

	first, err := engine.Execute(context.Background(), 42, "at the harbor")
	require.NoError(t, err)
	sourceID := first.Results[0].Result.PredictionID

	outcome, err := engine.Variations(context.Background(), 42, sourceID, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, outcome.Succeeded)
	assert.Equal(t, "MARIUS at the harbor", outcome.Results[0].Prompt)
}

func TestVariationsUnknownPredictionID(t *testing.T) {
	engine := newTestEngine(t, 42, &fakeImageProvider{}, &echoLLM{})

	_, err := engine.Variations(context.Background(), 42, "no-such-id", 3)
	assert.True(t, errors.Is(err, ErrPredictionNotFound))
}

func TestVariationsWithoutPriorGeneration(t *testing.T) {
	engine := newTestEngine(t, 42, &fakeImageProvider{}, &echoLLM{})

	_, err := engine.Variations(context.Background(), 42, "", 3)
	assert.True(t, errors.Is(err, ErrNoPriorGeneration))
}

func TestVariationsUseFreshSeeds(t *testing.T) {
	provider := &fakeImageProvider{}
	engine := newTestEngine(t, 42, provider, &echoLLM{})

	_, err := engine.Execute(context.Background(), 42, "in the rain")
	require.NoError(t, err)
	sourceSeed := provider.seeds()[0]

	var next int
	engine.orchestrator.seedFn = func() int {
		next++
		return sourceSeed + next
	}

	outcome, err := engine.Variations(context.Background(), 42, "", 3)
	require.NoError(t, err)
	require.Equal(t, 3, outcome.Succeeded)
	for _, seed := range provider.seeds()[1:] {
		assert.NotEqual(t, sourceSeed, seed)
	}
}
