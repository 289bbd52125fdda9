// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/persona-builder/internal/llm"
	"github.com/jonathan/persona-builder/internal/transcript"
)

// Default values applied when neither the config file nor a flag sets them.
const (
	DefaultMaxQuestions = 3
	DefaultConcurrency  = 1
)

// Config represents the CLI configuration that can be loaded from a JSON file.
// All fields are optional; missing values use defaults or must be provided via CLI flags.
type Config struct {
	// Files
	TranscriptFile string `json:"transcript_file,omitempty"` // Question/answer transcript (appended)
	ProcessedFile  string `json:"processed_file,omitempty"`  // Extraction audit log (overwritten)

	// Collection
	MaxQuestions    int  `json:"max_questions,omitempty" validate:"gte=0,lte=100"`
	SimulateAnswers bool `json:"simulate_answers,omitempty"` // Role-play answers with the completion service

	// Ranking
	Target           string `json:"target,omitempty"`            // e.g. a desired job title
	FallbackUnranked bool   `json:"fallback_unranked,omitempty"` // Print the unranked persona if embedding fails

	// Services
	APIKey            string `json:"api_key,omitempty"` // Gemini API key
	Provider          string `json:"provider,omitempty" validate:"omitempty,oneof=gemini"`
	EmbeddingProvider string `json:"embedding_provider,omitempty" validate:"omitempty,oneof=gemini ollama"`
	EmbeddingModel    string `json:"embedding_model,omitempty"`
	OllamaHost        string `json:"ollama_host,omitempty" validate:"omitempty,url"`
	Concurrency       int    `json:"concurrency,omitempty" validate:"gte=0,lte=32"`

	// Behavior
	Verbose     bool   `json:"verbose,omitempty"`      // Print detailed debug information
	DatabaseURL string `json:"database_url,omitempty"` // PostgreSQL connection URL
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		TranscriptFile:    transcript.DefaultTranscriptFile,
		ProcessedFile:     transcript.DefaultProcessedFile,
		MaxQuestions:      DefaultMaxQuestions,
		Provider:          string(llm.ProviderGemini),
		EmbeddingProvider: string(llm.ProviderGemini),
		Concurrency:       DefaultConcurrency,
	}
}

// FromEnv returns the values supplied through environment variables.
func FromEnv() Config {
	return Config{
		APIKey:      os.Getenv("GEMINI_API_KEY"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		OllamaHost:  os.Getenv("OLLAMA_HOST"),
	}
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report fields by their JSON names
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks that the configuration has valid values.
// Note: This doesn't check for required fields since those are handled
// by CLI flag validation after merging.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
			ve := validationErrors[0]
			return fmt.Errorf("config error: '%s' failed '%s' check (value %v)", ve.Field(), ve.Tag(), ve.Value())
		}
		return fmt.Errorf("config error: %w", err)
	}

	if c.TranscriptFile != "" && c.TranscriptFile == c.ProcessedFile {
		return fmt.Errorf("config error: 'transcript_file' and 'processed_file' must differ")
	}
	return nil
}

// MergeWithDefaults returns a new Config with empty string fields filled from defaults.
// This is used to apply config file values as defaults for CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	fillString(&result.TranscriptFile, defaults.TranscriptFile)
	fillString(&result.ProcessedFile, defaults.ProcessedFile)
	fillString(&result.Target, defaults.Target)
	fillString(&result.APIKey, defaults.APIKey)
	fillString(&result.Provider, defaults.Provider)
	fillString(&result.EmbeddingProvider, defaults.EmbeddingProvider)
	fillString(&result.EmbeddingModel, defaults.EmbeddingModel)
	fillString(&result.OllamaHost, defaults.OllamaHost)
	fillString(&result.DatabaseURL, defaults.DatabaseURL)

	// Int fields: use default if zero
	if result.MaxQuestions == 0 {
		result.MaxQuestions = defaults.MaxQuestions
	}
	if result.Concurrency == 0 {
		result.Concurrency = defaults.Concurrency
	}

	// Bool fields: cannot distinguish unset from false, so true wins
	result.SimulateAnswers = result.SimulateAnswers || defaults.SimulateAnswers
	result.FallbackUnranked = result.FallbackUnranked || defaults.FallbackUnranked
	result.Verbose = result.Verbose || defaults.Verbose

	return result
}

func fillString(field *string, fallback string) {
	if *field == "" {
		*field = fallback
	}
}

// LLMConfig returns the model configuration selected by this config.
func (c *Config) LLMConfig() *llm.Config {
	cfg := llm.DefaultConfig()
	if c.Provider != "" {
		cfg.Provider = llm.Provider(c.Provider)
	}
	if c.EmbeddingProvider != "" {
		cfg = cfg.WithEmbedding(llm.Provider(c.EmbeddingProvider), c.EmbeddingModel)
	} else if c.EmbeddingModel != "" {
		cfg = cfg.WithEmbedding(cfg.EmbeddingProvider, c.EmbeddingModel)
	}
	cfg.OllamaHost = c.OllamaHost
	return cfg
}
