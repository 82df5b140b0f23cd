package params

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Kind identifies the value type of a configurable parameter
type Kind string

const (
	KindInt    Kind = "int"
	KindFloat  Kind = "float"
	KindString Kind = "string"
	KindEnum   Kind = "enum"
)

// Seed bounds used both for validation and for fresh seed randomization
const (
	SeedMin = 1
	SeedMax = 1_000_000
)

// Descriptor describes one configurable generation parameter
type Descriptor struct {
	Key         string
	Kind        Kind
	Min         float64 // numeric lower bound (int/float)
	Max         float64 // numeric upper bound (int/float)
	MinLen      int     // string length lower bound
	MaxLen      int     // string length upper bound
	Allowed     []string
	Default     any
	Description string
}

// schema is the immutable table of all configurable parameters.
// Keys not present here are rejected at write time and ignored at read time.
var schema = map[string]Descriptor{
	"trigger_word": {
		Key: "trigger_word", Kind: KindString, MinLen: 2, MaxLen: 32,
		Default:     "",
		Description: "Mandatory prefix injected into every synthesized prompt (LoRA trigger)",
	},
	"model_endpoint": {
		Key: "model_endpoint", Kind: KindString, MinLen: 3, MaxLen: 256,
		Default:     "",
		Description: "Image model reference (owner/model:version) used by the generation provider",
	},
	"seed": {
		Key: "seed", Kind: KindInt, Min: SeedMin, Max: SeedMax,
		Default:     42,
		Description: "Base seed; re-randomized on every generation call",
	},
	"num_outputs": {
		Key: "num_outputs", Kind: KindInt, Min: 1, Max: 4,
		Default:     1,
		Description: "Images produced per single-prompt generation",
	},
	"num_inference_steps": {
		Key: "num_inference_steps", Kind: KindInt, Min: 1, Max: 50,
		Default:     28,
		Description: "Denoising steps",
	},
	"guidance_scale": {
		Key: "guidance_scale", Kind: KindFloat, Min: 0, Max: 10,
		Default:     3.5,
		Description: "Prompt adherence strength",
	},
	"output_quality": {
		Key: "output_quality", Kind: KindInt, Min: 1, Max: 100,
		Default:     80,
		Description: "Output compression quality",
	},
	"prompt_strength": {
		Key: "prompt_strength", Kind: KindFloat, Min: 0, Max: 1,
		Default:     0.8,
		Description: "Prompt strength for img2img paths",
	},
	"lora_scale": {
		Key: "lora_scale", Kind: KindFloat, Min: 0, Max: 1,
		Default:     1.0,
		Description: "LoRA weight scale",
	},
	"aspect_ratio": {
		Key: "aspect_ratio", Kind: KindEnum,
		Allowed:     []string{"1:1", "16:9", "9:16", "4:5", "3:2", "2:3"},
		Default:     "4:5",
		Description: "Output aspect ratio",
	},
	"output_format": {
		Key: "output_format", Kind: KindEnum,
		Allowed:     []string{"webp", "jpg", "png"},
		Default:     "webp",
		Description: "Output image format",
	},
	"gender": {
		Key: "gender", Kind: KindEnum,
		Allowed:     []string{"male", "female"},
		Default:     "male",
		Description: "Subject gender used by prompt style templates",
	},
	"style": {
		Key: "style", Kind: KindString, MinLen: 3, MaxLen: 32,
		Default:     "professional",
		Description: "Default prompt style for batch generation; 'random' picks one per call",
	},
}

// Map is a resolved parameter map (defaults overlaid with user overrides)
type Map map[string]any

// Clone returns a shallow copy, safe to mutate per request
func (m Map) Clone() Map {
	out := make(Map, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// String returns the string value for key, or "" if absent or not a string
func (m Map) String(key string) string {
	s, _ := m[key].(string)
	return s
}

// Int returns the int value for key, tolerating float64 from JSON round-trips
func (m Map) Int(key string) int {
	switch v := m[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}

// Lookup returns the descriptor for key
func Lookup(key string) (Descriptor, bool) {
	d, ok := schema[key]
	return d, ok
}

// Keys returns all configurable keys in sorted order
func Keys() []string {
	keys := make([]string, 0, len(schema))
	for k := range schema {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Defaults returns a fresh map of default values
func Defaults() Map {
	m := make(Map, len(schema))
	for k, d := range schema {
		m[k] = d.Default
	}
	return m
}

// Convert validates a raw string value against the descriptor for key and
// returns the typed value. It is the single entry point for configuration
// writes; on failure the returned *ValidationError carries the reason.
func Convert(key, raw string) (any, error) {
	desc, ok := schema[key]
	if !ok {
		return nil, &ValidationError{
			Key:     key,
			Reason:  ReasonUnknownParameter,
			Message: fmt.Sprintf("unknown parameter %q (available: %s)", key, strings.Join(Keys(), ", ")),
		}
	}
	return desc.convert(raw)
}

func (d Descriptor) convert(raw string) (any, error) {
	switch d.Kind {
	case KindInt:
		n, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return nil, &ValidationError{
				Key: d.Key, Reason: ReasonTypeError,
				Message: fmt.Sprintf("%s must be an integer", d.Key),
			}
		}
		if float64(n) < d.Min || float64(n) > d.Max {
			return nil, &ValidationError{
				Key: d.Key, Reason: ReasonRangeError,
				Message: fmt.Sprintf("%s must be between %d and %d", d.Key, int(d.Min), int(d.Max)),
			}
		}
		return n, nil

	case KindFloat:
		f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return nil, &ValidationError{
				Key: d.Key, Reason: ReasonTypeError,
				Message: fmt.Sprintf("%s must be a number", d.Key),
			}
		}
		if f < d.Min || f > d.Max {
			return nil, &ValidationError{
				Key: d.Key, Reason: ReasonRangeError,
				Message: fmt.Sprintf("%s must be between %g and %g", d.Key, d.Min, d.Max),
			}
		}
		return f, nil

	case KindEnum:
		v := strings.ToLower(strings.TrimSpace(raw))
		for _, allowed := range d.Allowed {
			if v == allowed {
				return v, nil
			}
		}
		return nil, &ValidationError{
			Key: d.Key, Reason: ReasonEnumError,
			Message: fmt.Sprintf("%s must be one of: %s", d.Key, strings.Join(d.Allowed, ", ")),
		}

	case KindString:
		v := strings.TrimSpace(raw)
		if len(v) < d.MinLen || len(v) > d.MaxLen {
			return nil, &ValidationError{
				Key: d.Key, Reason: ReasonLengthError,
				Message: fmt.Sprintf("%s must be between %d and %d characters", d.Key, d.MinLen, d.MaxLen),
			}
		}
		return v, nil
	}

	return nil, &ValidationError{
		Key: d.Key, Reason: ReasonTypeError,
		Message: fmt.Sprintf("descriptor for %s has unsupported kind %q", d.Key, d.Kind),
	}
}

// Normalize coerces a stored value (typically from a JSON round-trip, where
// all numbers arrive as float64) back to the descriptor's native type.
// Values for unknown keys are returned unchanged.
func Normalize(key string, value any) any {
	desc, ok := schema[key]
	if !ok {
		return value
	}
	if desc.Kind == KindInt {
		if f, isFloat := value.(float64); isFloat {
			return int(f)
		}
	}
	return value
}
