package config

import "os"

// Config holds the application configuration
type Config struct {
	// Environment
	Environment string
	Port        string

	// Provider API keys
	OpenAIAPIKey    string // OpenAI API key for prompt synthesis and image analysis
	ReplicateAPIKey string // Replicate API token for image generation

	// ReplicateBaseURL is overridable for tests/self-hosted proxies
	ReplicateBaseURL string

	// Prompt synthesis
	CompletionModel string // Chat model used to synthesize prompts
	VisionModel     string // Chat model used for image analysis

	// Storage
	DatabaseURL string // Postgres DSN; empty means local sqlite
	SQLitePath  string // sqlite file path used when DatabaseURL is empty

	// Observability
	SentryDSN string // Sentry DSN for error tracking
}

func Load() *Config {
	return &Config{
		Environment:      getEnv("ENVIRONMENT", "development"),
		Port:             getEnv("PORT", "8080"),
		OpenAIAPIKey:     getEnv("OPENAI_API_KEY", ""),
		ReplicateAPIKey:  getEnv("REPLICATE_API_TOKEN", ""),
		ReplicateBaseURL: getEnv("REPLICATE_BASE_URL", "https://api.replicate.com/v1"),
		CompletionModel:  getEnv("COMPLETION_MODEL", "gpt-4o-mini"),
		VisionModel:      getEnv("VISION_MODEL", "gpt-4o"),
		DatabaseURL:      getEnv("DATABASE_URL", ""),
		SQLitePath:       getEnv("SQLITE_PATH", "pixel_prophet.db"),
		SentryDSN:        getEnv("SENTRY_DSN", ""),
	}
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value != "" {
		return value
	}
	return defaultValue
}
