package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"PORT", "LLM_PROVIDER", "LLM_API_KEY", "GEMINI_API_KEY", "SESSION_TTL", "CORS_ALLOWED_ORIGINS", "MAX_RETRIES", "LLM_MODEL"} {
		t.Setenv(k, "")
	}

	cfg := Load()

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, ProviderGemini, cfg.LLMProvider)
	assert.Equal(t, "gemini-1.5-flash", cfg.LLMModel)
	assert.False(t, cfg.GenerationEnabled())
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
	assert.Equal(t, "@every 5m", cfg.SessionSweepSchedule)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, 0, cfg.MaxRetries)
	assert.InDelta(t, 0.95, cfg.TopP, 1e-9)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("LLM_PROVIDER", "OpenAI")
	t.Setenv("GEMINI_API_KEY", "g-key")
	t.Setenv("LLM_API_KEY", "")
	t.Setenv("TEMPERATURE", "0.2")
	t.Setenv("SESSION_TTL", "45m")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, ,https://b.example")
	t.Setenv("TOP_K", "not-a-number")
	t.Setenv("LLM_MODEL", "")

	cfg := Load()

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, ProviderOpenAI, cfg.LLMProvider)
	assert.Equal(t, "g-key", cfg.LLMAPIKey)
	assert.Equal(t, "gpt-4o-mini", cfg.LLMModel)
	assert.True(t, cfg.GenerationEnabled())
	assert.InDelta(t, 0.2, cfg.Temperature, 1e-9)
	assert.Equal(t, 45*time.Minute, cfg.SessionTTL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, 40, cfg.TopK)
}

func TestLoadDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("# comment\nCARGOCHAT_TEST_A=from-file\nCARGOCHAT_TEST_B=\"quoted\"\n"), 0o600))

	t.Setenv("CARGOCHAT_TEST_A", "from-env")
	t.Setenv("CARGOCHAT_TEST_B", "")
	os.Unsetenv("CARGOCHAT_TEST_B")

	require.NoError(t, LoadDotEnv(path))

	assert.Equal(t, "from-env", os.Getenv("CARGOCHAT_TEST_A"))
	assert.Equal(t, "quoted", os.Getenv("CARGOCHAT_TEST_B"))
}

func TestLoadDotEnv_MissingFile(t *testing.T) {
	assert.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), "nope.env")))
}
