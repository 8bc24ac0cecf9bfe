package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"GEMINI_API_KEY", "LLM_API_KEY", "LLM_BASE_URL", "LLM_PROVIDER",
		"DATABASE_URL", "STORE_DRIVER", "CACHE_DIR", "DEFAULT_YEAR",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoadFileDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"), false)
	require.NoError(t, err)

	assert.Equal(t, "gemini", cfg.AI.Provider)
	assert.Equal(t, "gemini-2.5-flash", cfg.AI.Model)
	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, 1, cfg.Store.MinConns)
	assert.Equal(t, 5, cfg.Store.MaxConns)
	assert.Equal(t, 2025, cfg.Prompt.DefaultYear)
	assert.Equal(t, 100000, cfg.FileMode.MaxContext)
	assert.Equal(t, 3, cfg.FileMode.SampleSize)
	assert.Equal(t, "cache", cfg.FileMode.CacheDir)
	assert.Equal(t, 8080, cfg.Monitoring.HealthPort)
}

func TestLoadFileRequiredMissing(t *testing.T) {
	clearEnv(t)

	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"), true)
	assert.Error(t, err)
}

func TestLoadFileYAMLAndEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
ai:
  provider: openai
  model: GigaChat
  base_url: https://llm.example.com/v1
  timeout: 45s
store:
  driver: sqlite
  url: file:test.db
  min_conns: 2
  max_conns: 4
prompt:
  default_year: 2024
filemode:
  sample_size: 5
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	t.Setenv("LLM_API_KEY", "secret")
	t.Setenv("CACHE_DIR", "/tmp/vidcache")

	cfg, err := LoadFile(path, true)
	require.NoError(t, err)

	assert.Equal(t, "openai", cfg.AI.Provider)
	assert.Equal(t, "GigaChat", cfg.AI.Model)
	assert.Equal(t, "secret", cfg.AI.APIKey)
	assert.Equal(t, 45*time.Second, cfg.AI.Timeout)
	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, 2, cfg.Store.MinConns)
	assert.Equal(t, 4, cfg.Store.MaxConns)
	assert.Equal(t, 2024, cfg.Prompt.DefaultYear)
	assert.Equal(t, 5, cfg.FileMode.SampleSize)
	assert.Equal(t, "/tmp/vidcache", cfg.FileMode.CacheDir)
	assert.NoError(t, cfg.RequireModel())
	assert.NoError(t, cfg.RequireStore())
}

func TestValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"unknown provider", "ai:\n  provider: claude\n"},
		{"unknown driver", "store:\n  driver: oracle\n"},
		{"min above max", "store:\n  min_conns: 6\n  max_conns: 5\n"},
		{"invalid yaml", "store: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			path := filepath.Join(t.TempDir(), "config.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0644))

			_, err := LoadFile(path, true)
			assert.Error(t, err)
		})
	}
}

func TestRequireErrors(t *testing.T) {
	clearEnv(t)
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"), false)
	require.NoError(t, err)

	assert.True(t, errors.Is(cfg.RequireModel(), ErrModelNotConfigured))
	assert.True(t, errors.Is(cfg.RequireStore(), ErrStoreNotConfigured))

	cfg.AI.GeminiAPIKey = "key"
	cfg.Store.URL = "postgres://u:p@localhost/db"
	assert.NoError(t, cfg.RequireModel())
	assert.NoError(t, cfg.RequireStore())
}
