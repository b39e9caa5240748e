package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig_Defaults(t *testing.T) {
	cfg := NewConfig()

	assert.Equal(t, 1, cfg.Version)
	assert.Equal(t, "sqlite", cfg.Store.Backend)
	assert.Equal(t, 3, cfg.Search.TopK)
	assert.Equal(t, 1.5, cfg.Scoring.K1)
	assert.Equal(t, 0.75, cfg.Scoring.B)
	assert.Equal(t, 0.92, cfg.Cache.SimilarityThreshold)
	assert.True(t, cfg.Cache.Enabled)
	assert.Empty(t, cfg.Summarizer.Provider, "summarizer disabled by default")
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestNewConfig_DefaultsAreValid(t *testing.T) {
	cfg := NewConfig()
	require.NoError(t, cfg.Validate())
}

func TestLoad_NoConfigFile(t *testing.T) {
	// Given: a directory with no config file
	dir := t.TempDir()

	// When: loading configuration
	cfg, err := Load(dir)

	// Then: defaults are used
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Store.Backend)
	assert.Equal(t, 3, cfg.Search.TopK)
}

func TestLoad_ProjectConfigOverrides(t *testing.T) {
	dir := t.TempDir()
	content := `
version: 1
store:
  backend: memory
search:
  top_k: 10
cache:
  similarity_threshold: 0.8
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".reportseek.yaml"), []byte(content), 0644))

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "memory", cfg.Store.Backend)
	assert.Equal(t, 10, cfg.Search.TopK)
	assert.Equal(t, 0.8, cfg.Cache.SimilarityThreshold)
	// Unset fields keep defaults
	assert.Equal(t, 1.5, cfg.Scoring.K1)
}

func TestLoad_EnvOverridesBeatFile(t *testing.T) {
	dir := t.TempDir()
	content := `
search:
  top_k: 10
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".reportseek.yaml"), []byte(content), 0644))
	t.Setenv("REPORTSEEK_TOP_K", "25")
	t.Setenv("REPORTSEEK_STORE_BACKEND", "bleve")

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, 25, cfg.Search.TopK)
	assert.Equal(t, "bleve", cfg.Store.Backend)
}

func TestLoad_MalformedYAML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".reportseek.yaml"), []byte("search: [not a map"), 0644))

	_, err := Load(dir)
	assert.Error(t, err)
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown backend", func(c *Config) { c.Store.Backend = "postgres" }},
		{"zero top_k", func(c *Config) { c.Search.TopK = 0 }},
		{"negative k1", func(c *Config) { c.Scoring.K1 = -1 }},
		{"b out of range", func(c *Config) { c.Scoring.B = 1.5 }},
		{"threshold out of range", func(c *Config) { c.Cache.SimilarityThreshold = 1.2 }},
		{"unknown summarizer", func(c *Config) { c.Summarizer.Provider = "anthropic" }},
		{"bad log level", func(c *Config) { c.LogLevel = "trace" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestWriteYAML_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	cfg := NewConfig()
	cfg.Search.TopK = 7
	require.NoError(t, cfg.WriteYAML(path))

	loaded := NewConfig()
	require.NoError(t, loaded.loadYAML(path))
	assert.Equal(t, 7, loaded.Search.TopK)
}

func TestEnvOverride_InvalidValuesIgnored(t *testing.T) {
	t.Setenv("REPORTSEEK_TOP_K", "not-a-number")
	t.Setenv("REPORTSEEK_CACHE_THRESHOLD", "2.5")

	cfg := NewConfig()
	cfg.applyEnvOverrides()

	assert.Equal(t, 3, cfg.Search.TopK)
	assert.Equal(t, 0.92, cfg.Cache.SimilarityThreshold)
}
