// Package cmd provides the CLI commands for ReportSeek.
package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/reportseek/reportseek/internal/answer"
	"github.com/reportseek/reportseek/internal/cache"
	"github.com/reportseek/reportseek/internal/config"
	"github.com/reportseek/reportseek/internal/ingest"
	"github.com/reportseek/reportseek/internal/logging"
	"github.com/reportseek/reportseek/internal/scorer"
	"github.com/reportseek/reportseek/internal/search"
	"github.com/reportseek/reportseek/internal/session"
	"github.com/reportseek/reportseek/internal/store"
	"github.com/reportseek/reportseek/pkg/version"
)

var (
	debugMode      bool
	loggingCleanup func()
)

// NewRootCmd creates the root command for the reportseek CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reportseek",
		Short: "Search and question-answering over engineering report archives",
		Long: `ReportSeek indexes plain-text engineering reports and answers
questions about them.

Reports are matched by keyword relevance with work-order numbers,
locations, and domain terms weighted ahead of ordinary words. The ask
command additionally synthesizes an answer from the top-ranked
documents.`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.SetVersionTemplate("reportseek version {{.Version}}\n")

	cmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging to ~/.reportseek/logs/")
	cmd.PersistentPreRunE = setupLogging
	cmd.PersistentPostRun = teardownLogging

	cmd.AddCommand(newSearchCmd())
	cmd.AddCommand(newAskCmd())
	cmd.AddCommand(newIngestCmd())
	cmd.AddCommand(newRemoveCmd())
	cmd.AddCommand(newListCmd())
	cmd.AddCommand(newViewCmd())
	cmd.AddCommand(newHistoryCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() error {
	err := NewRootCmd().Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	return err
}

func setupLogging(_ *cobra.Command, _ []string) error {
	// Local .env may carry OPENAI_API_KEY; missing file is fine.
	_ = godotenv.Load()

	logCfg := logging.DefaultConfig()
	logCfg.WriteToStderr = false
	if debugMode {
		logCfg = logging.DebugConfig()
	}

	logger, cleanup, err := logging.Setup(logCfg)
	if err != nil {
		// Logging must never block the command itself.
		return nil
	}
	loggingCleanup = cleanup
	slog.SetDefault(logger)
	return nil
}

func teardownLogging(_ *cobra.Command, _ []string) {
	if loggingCleanup != nil {
		loggingCleanup()
		loggingCleanup = nil
	}
}

// loadConfig loads layered configuration from the working directory.
func loadConfig() (*config.Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		wd = "."
	}
	return config.Load(wd)
}

// openStore opens the configured document store backend.
func openStore(cfg *config.Config) (store.DocumentStore, error) {
	switch cfg.Store.Backend {
	case "sqlite":
		return store.NewSQLiteStore(cfg.Store.Path, cfg.Store.CacheMB)
	case "bleve":
		return store.NewBleveStore(cfg.Store.Path)
	case "memory":
		return store.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}

// buildEngine assembles the search engine from configuration. The
// returned cleanup persists the response cache when configured.
func buildEngine(cfg *config.Config, docStore store.DocumentStore, opts ...search.EngineOption) (*search.Engine, func()) {
	base := []search.EngineOption{
		search.WithTopK(cfg.Search.TopK),
		search.WithSnippetLimits(cfg.Search.SnippetSentences, cfg.Search.SnippetMaxHits),
		search.WithFallbackScorer(scorer.NewBM25Scorer(cfg.Scoring.K1, cfg.Scoring.B)),
		search.WithNativeHitBoost(cfg.Scoring.HitBoost),
		search.WithIdentifierBoost(cfg.Scoring.IdentifierBoost),
	}

	cleanup := func() {}
	if cfg.Cache.Enabled {
		c := cache.New[search.Response](cfg.Cache.SimilarityThreshold, cfg.Cache.MaxEntriesPerUser)
		if cfg.Cache.PersistPath != "" {
			if err := c.LoadFrom(cfg.Cache.PersistPath); err != nil {
				slog.Warn("cache_load_failed", slog.String("error", err.Error()))
			}
			cleanup = func() {
				if err := c.SaveTo(cfg.Cache.PersistPath); err != nil {
					slog.Warn("cache_save_failed", slog.String("error", err.Error()))
				}
			}
		}
		base = append(base, search.WithCache(c))
	}

	return search.NewEngine(docStore, append(base, opts...)...), cleanup
}

// buildService assembles the answering service, attaching a
// summarizer when one is configured and credentialed.
func buildService(cfg *config.Config, engine *search.Engine) *answer.Service {
	opts := []answer.ServiceOption{}

	if cfg.Cache.Enabled {
		opts = append(opts, answer.WithAnswerCache(
			cache.New[answer.Answer](cfg.Cache.SimilarityThreshold, cfg.Cache.MaxEntriesPerUser)))
	}

	if cfg.Summarizer.Provider == "openai" {
		timeout, err := time.ParseDuration(cfg.Summarizer.Timeout)
		if err != nil {
			timeout = 0
		}
		sum, err := answer.NewOpenAISummarizer(
			os.Getenv("OPENAI_API_KEY"), cfg.Summarizer.Model, cfg.Summarizer.BaseURL, timeout)
		if err != nil {
			slog.Warn("summarizer_unavailable", slog.String("error", err.Error()))
		} else {
			opts = append(opts, answer.WithSummarizer(sum))
		}
	}

	return answer.NewService(engine, opts...)
}

// openHistory opens the chat history store, or returns nil when
// history is disabled.
func openHistory(cfg *config.Config) (session.HistoryStore, error) {
	if !cfg.History.Enabled {
		return nil, nil
	}
	return session.NewSQLiteHistory(cfg.History.Path)
}

// newIngester assembles an ingester wired to invalidate engine caches.
func newIngester(cfg *config.Config, docStore store.DocumentStore, engine *search.Engine) *ingest.Ingester {
	return ingest.NewIngester(docStore,
		ingest.WithWorkers(cfg.Ingest.Workers),
		ingest.WithLockPath(cfg.Ingest.LockPath),
		ingest.WithOnChange(engine.OnDocumentsChanged))
}
