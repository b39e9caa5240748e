// Package config loads and validates ReportSeek configuration.
//
// Configuration is applied in order of increasing precedence:
//  1. Hardcoded defaults
//  2. User/global config (~/.config/reportseek/config.yaml)
//  3. Project config (.reportseek.yaml in working directory)
//  4. Environment variables (REPORTSEEK_*)
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config represents the complete ReportSeek configuration.
type Config struct {
	Version    int              `yaml:"version" json:"version"`
	Store      StoreConfig      `yaml:"store" json:"store"`
	Search     SearchConfig     `yaml:"search" json:"search"`
	Scoring    ScoringConfig    `yaml:"scoring" json:"scoring"`
	Cache      CacheConfig      `yaml:"cache" json:"cache"`
	Summarizer SummarizerConfig `yaml:"summarizer" json:"summarizer"`
	Ingest     IngestConfig     `yaml:"ingest" json:"ingest"`
	History    HistoryConfig    `yaml:"history" json:"history"`
	LogLevel   string           `yaml:"log_level" json:"log_level"`
}

// StoreConfig configures the document store backend.
type StoreConfig struct {
	// Backend selects the document store backend.
	// Options: "sqlite" (default, FTS5 with WAL), "bleve", or "memory".
	Backend string `yaml:"backend" json:"backend"`

	// Path is the on-disk location of the store.
	// SQLite uses it as the database file, bleve as the index directory.
	Path string `yaml:"path" json:"path"`

	// CacheMB is the SQLite page cache size in MB.
	CacheMB int `yaml:"cache_mb" json:"cache_mb"`
}

// SearchConfig configures result shaping.
type SearchConfig struct {
	// TopK is the maximum number of documents returned per search.
	TopK int `yaml:"top_k" json:"top_k"`

	// SnippetSentences is the number of sentences kept per snippet.
	SnippetSentences int `yaml:"snippet_sentences" json:"snippet_sentences"`

	// SnippetMaxHits caps total hit sentences collected across all terms.
	SnippetMaxHits int `yaml:"snippet_max_hits" json:"snippet_max_hits"`
}

// ScoringConfig configures relevance scoring.
type ScoringConfig struct {
	// K1 is the BM25 term frequency saturation parameter.
	K1 float64 `yaml:"k1" json:"k1"`

	// B is the BM25 length normalization parameter.
	B float64 `yaml:"b" json:"b"`

	// HitBoost is the per-hit multiplier applied on top of the
	// store's native score: native * (1 + HitBoost*hits).
	HitBoost float64 `yaml:"hit_boost" json:"hit_boost"`

	// IdentifierBoost multiplies hit counts for identifier terms
	// such as work order numbers.
	IdentifierBoost float64 `yaml:"identifier_boost" json:"identifier_boost"`
}

// CacheConfig configures the fuzzy response cache.
type CacheConfig struct {
	// Enabled turns the response cache on.
	Enabled bool `yaml:"enabled" json:"enabled"`

	// SimilarityThreshold is the minimum query similarity ratio
	// (0.0-1.0) for a cache hit. Below 0.9 risks wrong answers for
	// queries that differ in one meaningful term.
	SimilarityThreshold float64 `yaml:"similarity_threshold" json:"similarity_threshold"`

	// MaxEntriesPerUser caps cached responses per user.
	MaxEntriesPerUser int `yaml:"max_entries_per_user" json:"max_entries_per_user"`

	// PersistPath is where the cache is snapshotted on shutdown.
	// Empty disables persistence.
	PersistPath string `yaml:"persist_path" json:"persist_path"`
}

// SummarizerConfig configures the optional answer summarizer.
type SummarizerConfig struct {
	// Provider is the summarizer backend. Options: "openai" or "" (disabled).
	Provider string `yaml:"provider" json:"provider"`

	// Model is the chat model used for summarization.
	Model string `yaml:"model" json:"model"`

	// BaseURL overrides the API endpoint for OpenAI-compatible servers.
	BaseURL string `yaml:"base_url" json:"base_url"`

	// Timeout is the per-request timeout (e.g. "30s").
	Timeout string `yaml:"timeout" json:"timeout"`
}

// IngestConfig configures document ingestion.
type IngestConfig struct {
	// Workers is the number of concurrent ingest workers.
	Workers int `yaml:"workers" json:"workers"`

	// WatchDir is an optional drop directory watched for new documents.
	WatchDir string `yaml:"watch_dir" json:"watch_dir"`

	// WatchDebounce is the settle delay before a dropped file is ingested.
	WatchDebounce string `yaml:"watch_debounce" json:"watch_debounce"`

	// LockPath is the lock file guarding against concurrent ingesters.
	LockPath string `yaml:"lock_path" json:"lock_path"`
}

// HistoryConfig configures question/answer history.
type HistoryConfig struct {
	// Enabled turns on history recording for ask operations.
	Enabled bool `yaml:"enabled" json:"enabled"`

	// Path is the history database file.
	Path string `yaml:"path" json:"path"`
}

// NewConfig creates a new Config with sensible defaults.
func NewConfig() *Config {
	return &Config{
		Version: 1,
		Store: StoreConfig{
			Backend: "sqlite",
			Path:    filepath.Join(defaultDataDir(), "reports.db"),
			CacheMB: 64,
		},
		Search: SearchConfig{
			TopK:             3,
			SnippetSentences: 3,
			SnippetMaxHits:   4,
		},
		Scoring: ScoringConfig{
			K1:              1.5,
			B:               0.75,
			HitBoost:        0.1,
			IdentifierBoost: 2.0,
		},
		Cache: CacheConfig{
			Enabled:             true,
			SimilarityThreshold: 0.92,
			MaxEntriesPerUser:   128,
			PersistPath:         "",
		},
		Summarizer: SummarizerConfig{
			Provider: "",
			Model:    "gpt-4o-mini",
			Timeout:  "30s",
		},
		Ingest: IngestConfig{
			Workers:       runtime.NumCPU(),
			WatchDebounce: "500ms",
			LockPath:      filepath.Join(defaultDataDir(), "ingest.lock"),
		},
		History: HistoryConfig{
			Enabled: true,
			Path:    filepath.Join(defaultDataDir(), "history.db"),
		},
		LogLevel: "info",
	}
}

// defaultDataDir returns the default data directory (~/.reportseek).
func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".reportseek")
	}
	return filepath.Join(home, ".reportseek")
}

// GetUserConfigPath returns the path to the user/global configuration file.
// It follows XDG Base Directory specification:
//   - $XDG_CONFIG_HOME/reportseek/config.yaml (if XDG_CONFIG_HOME is set)
//   - ~/.config/reportseek/config.yaml (default)
func GetUserConfigPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "reportseek", "config.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".config", "reportseek", "config.yaml")
	}
	return filepath.Join(home, ".config", "reportseek", "config.yaml")
}

// loadUserConfig loads the user/global configuration file if it exists.
// Returns nil config and nil error if the file doesn't exist.
func loadUserConfig() (*Config, error) {
	configPath := GetUserConfigPath()
	if !fileExists(configPath) {
		return nil, nil
	}

	cfg := NewConfig()
	if err := cfg.loadYAML(configPath); err != nil {
		return nil, fmt.Errorf("failed to load user config from %s: %w", configPath, err)
	}
	return cfg, nil
}

// Load loads configuration from the specified directory.
func Load(dir string) (*Config, error) {
	cfg := NewConfig()

	if userCfg, err := loadUserConfig(); err != nil {
		return nil, fmt.Errorf("failed to load user config: %w", err)
	} else if userCfg != nil {
		cfg.mergeWith(userCfg)
	}

	if err := cfg.loadFromFile(dir); err != nil {
		return nil, err
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// loadFromFile attempts to load configuration from .reportseek.yaml or .reportseek.yml.
func (c *Config) loadFromFile(dir string) error {
	yamlPath := filepath.Join(dir, ".reportseek.yaml")
	if _, err := os.Stat(yamlPath); err == nil {
		return c.loadYAML(yamlPath)
	}

	ymlPath := filepath.Join(dir, ".reportseek.yml")
	if _, err := os.Stat(ymlPath); err == nil {
		return c.loadYAML(ymlPath)
	}

	// No config file is fine - use defaults
	return nil
}

// loadYAML loads and merges configuration from a YAML file.
func (c *Config) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var parsed Config
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	c.mergeWith(&parsed)
	return nil
}

// mergeWith merges non-zero values from other into c.
func (c *Config) mergeWith(other *Config) {
	if other.Version != 0 {
		c.Version = other.Version
	}

	// Store
	if other.Store.Backend != "" {
		c.Store.Backend = other.Store.Backend
	}
	if other.Store.Path != "" {
		c.Store.Path = other.Store.Path
	}
	if other.Store.CacheMB != 0 {
		c.Store.CacheMB = other.Store.CacheMB
	}

	// Search
	if other.Search.TopK != 0 {
		c.Search.TopK = other.Search.TopK
	}
	if other.Search.SnippetSentences != 0 {
		c.Search.SnippetSentences = other.Search.SnippetSentences
	}
	if other.Search.SnippetMaxHits != 0 {
		c.Search.SnippetMaxHits = other.Search.SnippetMaxHits
	}

	// Scoring
	if other.Scoring.K1 != 0 {
		c.Scoring.K1 = other.Scoring.K1
	}
	if other.Scoring.B != 0 {
		c.Scoring.B = other.Scoring.B
	}
	if other.Scoring.HitBoost != 0 {
		c.Scoring.HitBoost = other.Scoring.HitBoost
	}
	if other.Scoring.IdentifierBoost != 0 {
		c.Scoring.IdentifierBoost = other.Scoring.IdentifierBoost
	}

	// Cache
	// Enabled is boolean - only merge when any cache field was set.
	if other.Cache.SimilarityThreshold != 0 || other.Cache.MaxEntriesPerUser != 0 ||
		other.Cache.PersistPath != "" || other.Cache.Enabled {
		c.Cache.Enabled = other.Cache.Enabled
	}
	if other.Cache.SimilarityThreshold != 0 {
		c.Cache.SimilarityThreshold = other.Cache.SimilarityThreshold
	}
	if other.Cache.MaxEntriesPerUser != 0 {
		c.Cache.MaxEntriesPerUser = other.Cache.MaxEntriesPerUser
	}
	if other.Cache.PersistPath != "" {
		c.Cache.PersistPath = other.Cache.PersistPath
	}

	// Summarizer
	if other.Summarizer.Provider != "" {
		c.Summarizer.Provider = other.Summarizer.Provider
	}
	if other.Summarizer.Model != "" {
		c.Summarizer.Model = other.Summarizer.Model
	}
	if other.Summarizer.BaseURL != "" {
		c.Summarizer.BaseURL = other.Summarizer.BaseURL
	}
	if other.Summarizer.Timeout != "" {
		c.Summarizer.Timeout = other.Summarizer.Timeout
	}

	// Ingest
	if other.Ingest.Workers != 0 {
		c.Ingest.Workers = other.Ingest.Workers
	}
	if other.Ingest.WatchDir != "" {
		c.Ingest.WatchDir = other.Ingest.WatchDir
	}
	if other.Ingest.WatchDebounce != "" {
		c.Ingest.WatchDebounce = other.Ingest.WatchDebounce
	}
	if other.Ingest.LockPath != "" {
		c.Ingest.LockPath = other.Ingest.LockPath
	}

	// History
	if other.History.Path != "" {
		c.History.Path = other.History.Path
		c.History.Enabled = other.History.Enabled
	}

	if other.LogLevel != "" {
		c.LogLevel = other.LogLevel
	}
}

// applyEnvOverrides applies REPORTSEEK_* environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("REPORTSEEK_STORE_BACKEND"); v != "" {
		c.Store.Backend = v
	}
	if v := os.Getenv("REPORTSEEK_STORE_PATH"); v != "" {
		c.Store.Path = v
	}
	if v := os.Getenv("REPORTSEEK_TOP_K"); v != "" {
		if k, err := strconv.Atoi(v); err == nil && k > 0 {
			c.Search.TopK = k
		}
	}
	if v := os.Getenv("REPORTSEEK_CACHE_THRESHOLD"); v != "" {
		if t, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil && t > 0 && t <= 1 {
			c.Cache.SimilarityThreshold = t
		}
	}
	if v := os.Getenv("REPORTSEEK_CACHE_ENABLED"); v != "" {
		c.Cache.Enabled = strings.ToLower(v) == "true" || v == "1"
	}
	if v := os.Getenv("REPORTSEEK_SUMMARIZER"); v != "" {
		c.Summarizer.Provider = v
	}
	if v := os.Getenv("REPORTSEEK_SUMMARIZER_MODEL"); v != "" {
		c.Summarizer.Model = v
	}
	if v := os.Getenv("REPORTSEEK_SUMMARIZER_BASE_URL"); v != "" {
		c.Summarizer.BaseURL = v
	}
	if v := os.Getenv("REPORTSEEK_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("REPORTSEEK_WATCH_DIR"); v != "" {
		c.Ingest.WatchDir = v
	}
}

// Validate validates the configuration and returns an error if invalid.
func (c *Config) Validate() error {
	validBackends := map[string]bool{"sqlite": true, "bleve": true, "memory": true}
	if !validBackends[strings.ToLower(c.Store.Backend)] {
		return fmt.Errorf("store.backend must be 'sqlite', 'bleve', or 'memory', got %s", c.Store.Backend)
	}

	if c.Search.TopK < 1 {
		return fmt.Errorf("search.top_k must be at least 1, got %d", c.Search.TopK)
	}
	if c.Search.SnippetSentences < 1 {
		return fmt.Errorf("search.snippet_sentences must be at least 1, got %d", c.Search.SnippetSentences)
	}

	if c.Scoring.K1 <= 0 {
		return fmt.Errorf("scoring.k1 must be positive, got %f", c.Scoring.K1)
	}
	if c.Scoring.B < 0 || c.Scoring.B > 1 {
		return fmt.Errorf("scoring.b must be between 0 and 1, got %f", c.Scoring.B)
	}

	if c.Cache.SimilarityThreshold <= 0 || c.Cache.SimilarityThreshold > 1 {
		return fmt.Errorf("cache.similarity_threshold must be in (0, 1], got %f", c.Cache.SimilarityThreshold)
	}

	if c.Summarizer.Provider != "" {
		validProviders := map[string]bool{"openai": true}
		if !validProviders[strings.ToLower(c.Summarizer.Provider)] {
			return fmt.Errorf("summarizer.provider must be 'openai' or empty (disabled), got %s", c.Summarizer.Provider)
		}
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.LogLevel)] {
		return fmt.Errorf("log_level must be 'debug', 'info', 'warn', or 'error', got %s", c.LogLevel)
	}

	return nil
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// fileExists checks if a file exists and is not a directory.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
