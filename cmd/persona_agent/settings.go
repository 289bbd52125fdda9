package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/persona-builder/internal/config"
	"github.com/jonathan/persona-builder/internal/db"
	"github.com/jonathan/persona-builder/internal/llm"
	"github.com/jonathan/persona-builder/internal/ranking"
)

// settings holds flag values shared by the subcommands. Each command
// registers only the groups it uses.
type settings struct {
	configPath string

	transcript string
	processed  string

	maxQuestions int
	simulate     bool

	target   string
	fallback bool

	apiKey            string
	embeddingProvider string
	embeddingModel    string
	ollamaHost        string
	concurrency       int

	verbose bool
	dbURL   string
}

func (s *settings) addCommonFlags(cmd *cobra.Command) {
	// Config file flag (processed first)
	cmd.Flags().StringVar(&s.configPath, "config", "", "Path to config.json file (values can be overridden by other flags)")
	cmd.Flags().BoolVarP(&s.verbose, "verbose", "v", false, "Print detailed debug information")
}

func (s *settings) addFileFlags(cmd *cobra.Command, withProcessed bool) {
	cmd.Flags().StringVarP(&s.transcript, "transcript", "t", "", "Path to the question/answer transcript (default responses.json)")
	if withProcessed {
		cmd.Flags().StringVarP(&s.processed, "processed", "p", "", "Path to the processed-output file (default processed_responses.json)")
	}
}

func (s *settings) addCollectFlags(cmd *cobra.Command) {
	cmd.Flags().IntVarP(&s.maxQuestions, "max-questions", "n", 0, "Maximum number of questions to ask (default 3)")
	cmd.Flags().BoolVar(&s.simulate, "simulate", false, "Generate answers by role-playing a coaching client with the language model")
}

func (s *settings) addCompletionFlags(cmd *cobra.Command) {
	// API key can be passed as a flag, or read from env var GEMINI_API_KEY
	cmd.Flags().StringVar(&s.apiKey, "api-key", "", "Gemini API Key (optional, defaults to GEMINI_API_KEY env var)")
	cmd.Flags().IntVar(&s.concurrency, "concurrency", 0, "Maximum concurrent model calls (default 1)")
}

func (s *settings) addRankFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&s.target, "target", "", "Goal or career choice to rank against (prompted if omitted)")
	cmd.Flags().BoolVar(&s.fallback, "fallback-unranked", false, "Print the unranked persona instead of failing when embedding fails")
	cmd.Flags().StringVar(&s.embeddingProvider, "embedding-provider", "", "Embedding provider: gemini or ollama (default gemini)")
	cmd.Flags().StringVar(&s.embeddingModel, "embedding-model", "", "Embedding model (default depends on provider)")
	cmd.Flags().StringVar(&s.ollamaHost, "ollama-host", "", "Ollama server URL (optional, defaults to OLLAMA_HOST env var)")
}

func (s *settings) addStoreFlags(cmd *cobra.Command) {
	// Database URL for run persistence
	cmd.Flags().StringVar(&s.dbURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")
}

// resolve layers the config file, explicitly set flags, environment
// variables and built-in defaults, in that order of priority below flags.
func (s *settings) resolve(cmd *cobra.Command) (config.Config, error) {
	// Step 1: Load config file if provided
	var cfg config.Config
	if s.configPath != "" {
		loaded, err := config.LoadConfig(s.configPath)
		if err != nil {
			return cfg, fmt.Errorf("failed to load config: %w", err)
		}
		if err := loaded.Validate(); err != nil {
			return cfg, err
		}
		cfg = *loaded
	}

	// Step 2: Apply CLI overrides (command-line args take priority)
	// Only override if the flag was explicitly set
	flags := cmd.Flags()
	if flags.Changed("transcript") {
		cfg.TranscriptFile = s.transcript
	}
	if flags.Changed("processed") {
		cfg.ProcessedFile = s.processed
	}
	if flags.Changed("max-questions") {
		cfg.MaxQuestions = s.maxQuestions
	}
	if flags.Changed("simulate") {
		cfg.SimulateAnswers = s.simulate
	}
	if flags.Changed("target") {
		cfg.Target = s.target
	}
	if flags.Changed("fallback-unranked") {
		cfg.FallbackUnranked = s.fallback
	}
	if flags.Changed("api-key") {
		cfg.APIKey = s.apiKey
	}
	if flags.Changed("embedding-provider") {
		cfg.EmbeddingProvider = s.embeddingProvider
	}
	if flags.Changed("embedding-model") {
		cfg.EmbeddingModel = s.embeddingModel
	}
	if flags.Changed("ollama-host") {
		cfg.OllamaHost = s.ollamaHost
	}
	if flags.Changed("concurrency") {
		cfg.Concurrency = s.concurrency
	}
	if flags.Changed("verbose") {
		cfg.Verbose = s.verbose
	}
	if flags.Changed("db-url") {
		cfg.DatabaseURL = s.dbURL
	}

	// Step 3: Fill unset values from the environment, then defaults
	cfg = cfg.MergeWithDefaults(config.FromEnv())
	cfg = cfg.MergeWithDefaults(config.Defaults())

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func newCompletionClient(ctx context.Context, cfg config.Config) (llm.Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY environment variable or --api-key flag is required")
	}
	client, err := llm.NewClient(ctx, cfg.LLMConfig(), cfg.APIKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}
	return client, nil
}

// newReranker builds a reranker over a cached embedding client. The
// returned close function releases the provider client.
func newReranker(ctx context.Context, cfg config.Config) (*ranking.Reranker, func() error, error) {
	llmCfg := cfg.LLMConfig()
	if llmCfg.EmbeddingProvider == llm.ProviderGemini && cfg.APIKey == "" {
		return nil, nil, fmt.Errorf("GEMINI_API_KEY environment variable or --api-key flag is required for gemini embeddings")
	}

	client, err := llm.NewEmbeddingClient(ctx, llmCfg, cfg.APIKey)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create embedding client: %w", err)
	}
	cached := llm.NewCachedEmbedder(client, llm.DefaultEmbeddingCacheTTL)
	return ranking.NewReranker(cached).WithConcurrency(cfg.Concurrency), cached.Close, nil
}

// connectStore opens the optional database. Failure is a warning and the
// run continues without persistence.
func connectStore(ctx context.Context, cmd *cobra.Command, cfg config.Config) *db.DB {
	if cfg.DatabaseURL == "" {
		return nil
	}
	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: Failed to connect to database: %v\n", err)
		fmt.Fprintf(cmd.ErrOrStderr(), "Continuing without database persistence...\n")
		return nil
	}
	if err := database.EnsureSchema(ctx); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %v\n", err)
		fmt.Fprintf(cmd.ErrOrStderr(), "Continuing without database persistence...\n")
		database.Close()
		return nil
	}
	if cfg.Verbose {
		fmt.Fprintf(cmd.OutOrStdout(), "[VERBOSE] Connected to database\n")
	}
	return database
}
