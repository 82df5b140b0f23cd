package styles

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewManagerLoadsAllStyles(t *testing.T) {
	m, err := NewManager()
	require.NoError(t, err)

	available := m.Available()
	assert.Contains(t, available, "professional")
	assert.Contains(t, available, "urban")
	assert.Contains(t, available, RandomStyle)
	assert.Len(t, available, 11)
}

func TestSystemPromptSubstitution(t *testing.T) {
	m, err := NewManager()
	require.NoError(t, err)

	prompt, err := m.Get("professional").SystemPrompt("MARIUS", "female")
	require.NoError(t, err)
	assert.Contains(t, prompt, "MARIUS")
	assert.Contains(t, prompt, "woman")
	assert.NotContains(t, prompt, "{trigger_word}")
	assert.NotContains(t, prompt, "{gender}")
}

func TestSystemPromptRejectsEmptyTrigger(t *testing.T) {
	m, err := NewManager()
	require.NoError(t, err)

	_, err = m.Get("casual").SystemPrompt("", "male")
	assert.Error(t, err)
}

func TestSystemPromptRejectsUnknownGender(t *testing.T) {
	m, err := NewManager()
	require.NoError(t, err)

	_, err = m.Get("casual").SystemPrompt("MARIUS", "robot")
	assert.Error(t, err)
}

func TestGetUnknownFallsBackToProfessional(t *testing.T) {
	m, err := NewManager()
	require.NoError(t, err)

	assert.Equal(t, "professional", m.Get("nonexistent").Name)
	assert.Equal(t, "urban", m.Get("  Urban ").Name)
}

func TestGetRandomResolvesToConcreteStyle(t *testing.T) {
	m, err := NewManager()
	require.NoError(t, err)

	for i := 0; i < 20; i++ {
		style := m.Get(RandomStyle)
		require.NotNil(t, style)
		assert.NotEqual(t, RandomStyle, style.Name)
	}
}

func TestResolveDropsUnknownAndDeduplicates(t *testing.T) {
	m, err := NewManager()
	require.NoError(t, err)

	resolved := m.Resolve([]string{"Urban", "bogus", "urban", " VINTAGE ", "random", ""})
	assert.Equal(t, []string{"urban", "vintage", "random"}, resolved)
}

func TestTemplateValidation(t *testing.T) {
	_, err := newStyle("broken", "missing placeholders", []byte("no placeholders here"))
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "trigger_word"))
}
