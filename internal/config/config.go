package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Provider names accepted by LLM_PROVIDER.
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// Config holds all application configuration.
// Values are loaded from environment variables with sensible defaults.
type Config struct {
	// Server
	Port     int
	LogLevel string

	// Text generation. An empty APIKey puts the chat in fallback-only mode.
	LLMProvider     string
	LLMAPIKey       string
	LLMModel        string
	LLMBaseURL      string
	MaxOutputTokens int
	Temperature     float64
	TopP            float64
	TopK            int

	// HTTP client
	HTTPTimeout time.Duration

	// Resilience
	MaxRetries     int
	InitialBackoff time.Duration
	MaxConcurrency int

	// Sessions
	SessionTTL           time.Duration
	SessionSweepSchedule string
	HistoryLimit         int

	// Catalog override; empty uses the embedded catalog.
	CatalogFile string

	// HTTP surface
	CORSAllowedOrigins []string
	AdminJWTSecret     string

	// Observability
	OTLPEndpoint string
}

// Load reads configuration from environment variables with defaults.
func Load() *Config {
	provider := strings.ToLower(getEnv("LLM_PROVIDER", ProviderGemini))
	defaultModel := "gemini-1.5-flash"
	if provider == ProviderOpenAI {
		defaultModel = "gpt-4o-mini"
	}

	return &Config{
		Port:     getEnvInt("PORT", 8080),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		LLMProvider:     provider,
		LLMAPIKey:       getEnv("LLM_API_KEY", getEnv("GEMINI_API_KEY", "")),
		LLMModel:        getEnv("LLM_MODEL", defaultModel),
		LLMBaseURL:      getEnv("LLM_BASE_URL", ""),
		MaxOutputTokens: getEnvInt("MAX_OUTPUT_TOKENS", 1024),
		Temperature:     getEnvFloat("TEMPERATURE", 0.7),
		TopP:            getEnvFloat("TOP_P", 0.95),
		TopK:            getEnvInt("TOP_K", 40),

		HTTPTimeout: getEnvDuration("HTTP_TIMEOUT", 20*time.Second),

		MaxRetries:     getEnvInt("MAX_RETRIES", 0),
		InitialBackoff: getEnvDuration("INITIAL_BACKOFF", 200*time.Millisecond),
		MaxConcurrency: getEnvInt("MAX_CONCURRENCY", 32),

		SessionTTL:           getEnvDuration("SESSION_TTL", 30*time.Minute),
		SessionSweepSchedule: getEnv("SESSION_SWEEP_SCHEDULE", "@every 5m"),
		HistoryLimit:         getEnvInt("HISTORY_LIMIT", 10),

		CatalogFile: getEnv("CATALOG_FILE", ""),

		CORSAllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		AdminJWTSecret:     getEnv("ADMIN_JWT_SECRET", ""),

		OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
	}
}

// GenerationEnabled reports whether a text generator should be built.
func (c *Config) GenerationEnabled() bool {
	return c.LLMAPIKey != ""
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
