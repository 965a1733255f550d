package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	t.Setenv("PAGEWRIGHT_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("PAGEWRIGHT_PROVIDER", "")

	ws := t.TempDir()
	cfg, err := Load(ws)
	require.NoError(t, err)

	assert.Equal(t, "gemini", cfg.LLM.Provider)
	assert.Equal(t, 3, cfg.Pipeline.MaxAttempts)
	assert.Equal(t, 800, cfg.Validation.MaxCanvasWidth)
	assert.False(t, cfg.Validation.SemanticReview)
	assert.Equal(t, ws, cfg.Workspace)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	t.Setenv("PAGEWRIGHT_PROVIDER", "")

	ws := t.TempDir()
	dir := filepath.Join(ws, ".pagewright")
	require.NoError(t, os.MkdirAll(dir, 0755))
	yaml := `
llm:
  provider: relay
  base_url: http://localhost:9999/v1
pipeline:
  max_attempts: 2
publish:
  pages_dir: site/pages
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load(ws)
	require.NoError(t, err)

	assert.Equal(t, "relay", cfg.LLM.Provider)
	assert.Equal(t, "http://localhost:9999/v1", cfg.LLM.BaseURL)
	assert.Equal(t, 2, cfg.Pipeline.MaxAttempts)
	assert.Equal(t, filepath.Join(ws, "site", "pages"), cfg.PagesPath())
}

func TestLoad_MalformedYAML(t *testing.T) {
	ws := t.TempDir()
	dir := filepath.Join(ws, ".pagewright")
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("llm: ["), 0644))

	_, err := Load(ws)
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Run("PAGEWRIGHT_API_KEY wins over GEMINI_API_KEY", func(t *testing.T) {
		t.Setenv("PAGEWRIGHT_API_KEY", "pw-key")
		t.Setenv("GEMINI_API_KEY", "gm-key")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()

		assert.Equal(t, "pw-key", cfg.LLM.APIKey)
	})

	t.Run("GEMINI_API_KEY fills empty key", func(t *testing.T) {
		t.Setenv("PAGEWRIGHT_API_KEY", "")
		t.Setenv("GEMINI_API_KEY", "gm-key")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()

		assert.Equal(t, "gm-key", cfg.LLM.APIKey)
	})

	t.Run("PAGEWRIGHT_PROVIDER overrides provider", func(t *testing.T) {
		t.Setenv("PAGEWRIGHT_PROVIDER", "relay")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()

		assert.Equal(t, "relay", cfg.LLM.Provider)
	})
}

func TestSaveRoundTrip(t *testing.T) {
	t.Setenv("PAGEWRIGHT_PROVIDER", "")
	t.Setenv("PAGEWRIGHT_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "")

	ws := t.TempDir()
	cfg := DefaultConfig()
	cfg.Workspace = ws
	cfg.Pipeline.MaxConcurrent = 4
	require.NoError(t, cfg.Save())

	loaded, err := Load(ws)
	require.NoError(t, err)
	assert.Equal(t, 4, loaded.Pipeline.MaxConcurrent)
}

func TestGetLLMTimeout(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "120s", cfg.LLM.Timeout)

	cfg.LLM.Timeout = "bogus"
	assert.Equal(t, int64(120), int64(cfg.GetLLMTimeout().Seconds()))
}
