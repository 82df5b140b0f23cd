package styles

import (
	"fmt"
	"math/rand"
	"sort"
	"strings"

	"github.com/mihailmariusiondev/pixel-prophet-bot/pkg/embedded"
)

// RandomStyle is the meta-style resolved to a concrete style per call
const RandomStyle = "random"

// fallbackStyle is used when an explicitly requested style does not exist
const fallbackStyle = "professional"

// genderTerms maps the configured gender value to the term used in templates
var genderTerms = map[string]string{
	"male":   "man",
	"female": "woman",
}

// Style is a named prompt-construction template selecting the tone and
// setting of synthesized prompts
type Style struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	template    string
}

func newStyle(name, description string, template []byte) (*Style, error) {
	tmpl := strings.TrimSpace(string(template))
	if !strings.Contains(tmpl, "{trigger_word}") {
		return nil, fmt.Errorf("style %s is missing {trigger_word} placeholder", name)
	}
	if !strings.Contains(tmpl, "{gender}") {
		return nil, fmt.Errorf("style %s is missing {gender} placeholder", name)
	}
	return &Style{Name: name, Description: description, template: tmpl}, nil
}

// SystemPrompt returns the style's system prompt with the trigger word and
// gender term substituted
func (s *Style) SystemPrompt(triggerWord, gender string) (string, error) {
	if triggerWord == "" {
		return "", fmt.Errorf("trigger word cannot be empty")
	}
	term, ok := genderTerms[gender]
	if !ok {
		return "", fmt.Errorf("invalid gender %q (must be male or female)", gender)
	}
	prompt := strings.ReplaceAll(s.template, "{trigger_word}", triggerWord)
	prompt = strings.ReplaceAll(prompt, "{gender}", term)
	return prompt, nil
}

// Manager owns the immutable set of available prompt styles
type Manager struct {
	styles map[string]*Style
	names  []string
}

// NewManager loads all embedded style templates. It fails when any template
// is malformed so a broken deploy is caught at startup, not per request.
func NewManager() (*Manager, error) {
	sources := []struct {
		name        string
		description string
		template    []byte
	}{
		{"professional", "Formal and elegant style with professional settings", embedded.StyleProfessionalTxt},
		{"casual", "Authentic smartphone photography style", embedded.StyleCasualTxt},
		{"cinematic", "Cinematic and dramatic movie-like style", embedded.StyleCinematicTxt},
		{"urban", "Urban and street photography style", embedded.StyleUrbanTxt},
		{"minimalist", "Clean and minimal style with elegant simplicity", embedded.StyleMinimalistTxt},
		{"artistic", "Creative and artistic style with unique elements", embedded.StyleArtisticTxt},
		{"vintage", "Classic and timeless vintage photography style", embedded.StyleVintageTxt},
		{"influencer", "Trendy style with a modern influencer aesthetic", embedded.StyleInfluencerTxt},
		{"datingprofile", "Charming style tailored for engaging dating profiles", embedded.StyleDatingProfileTxt},
		{"socialads", "Dynamic style designed for impactful social media advertisements", embedded.StyleSocialAdsTxt},
	}

	m := &Manager{styles: make(map[string]*Style, len(sources))}
	for _, src := range sources {
		style, err := newStyle(src.name, src.description, src.template)
		if err != nil {
			return nil, err
		}
		m.styles[src.name] = style
		m.names = append(m.names, src.name)
	}
	sort.Strings(m.names)
	return m, nil
}

// Get returns the style with the given name. "random" resolves to a concrete
// style; unknown names fall back to the professional style.
func (m *Manager) Get(name string) *Style {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == RandomStyle {
		return m.styles[m.names[rand.Intn(len(m.names))]]
	}
	if style, ok := m.styles[name]; ok {
		return style
	}
	return m.styles[fallbackStyle]
}

// Resolve filters a user-supplied style list down to known styles,
// deduplicated and in input order. Unknown names are dropped silently;
// "random" is kept and resolved later, once per call.
func (m *Manager) Resolve(names []string) []string {
	seen := make(map[string]bool, len(names))
	var out []string
	for _, raw := range names {
		name := strings.ToLower(strings.TrimSpace(raw))
		if name == "" || seen[name] {
			continue
		}
		if _, ok := m.styles[name]; !ok && name != RandomStyle {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	return out
}

// Available returns all style names plus the "random" meta-style
func (m *Manager) Available() []string {
	out := make([]string, 0, len(m.names)+1)
	out = append(out, m.names...)
	return append(out, RandomStyle)
}

// All returns the concrete styles in name order, for listing surfaces
func (m *Manager) All() []*Style {
	out := make([]*Style, 0, len(m.names))
	for _, name := range m.names {
		out = append(out, m.styles[name])
	}
	return out
}
