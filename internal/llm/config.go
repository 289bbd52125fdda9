// Package llm provides centralized LLM configuration and the completion and
// embedding capabilities used by the persona pipeline.
package llm

// ModelTier represents the complexity/capability level of a model
type ModelTier string

const (
	// TierLite is for simple tasks: role-played answers, short generations
	TierLite ModelTier = "lite"
	// TierStandard is for structured output such as attribute extraction
	TierStandard ModelTier = "standard"
	// TierAdvanced is for complex reasoning
	TierAdvanced ModelTier = "advanced"
)

// Provider represents an LLM or embedding provider
type Provider string

// Provider constants define supported providers
const (
	// ProviderGemini is the Google Gemini provider (completion and embedding)
	ProviderGemini Provider = "gemini"
	// ProviderOllama is a local Ollama server (embedding only)
	ProviderOllama Provider = "ollama"
)

// Default embedding models per provider
const (
	DefaultGeminiEmbeddingModel = "text-embedding-004"
	DefaultOllamaEmbeddingModel = "all-minilm"
)

// Config holds the model configuration for the application
type Config struct {
	Provider Provider
	Models   map[ModelTier]string

	EmbeddingProvider Provider
	EmbeddingModel    string
	// OllamaHost overrides OLLAMA_HOST for the Ollama embedding provider
	OllamaHost string
}

// DefaultConfig returns the default configuration (currently Gemini)
func DefaultConfig() *Config {
	return DefaultGeminiConfig()
}

// DefaultGeminiConfig returns the default Gemini configuration
func DefaultGeminiConfig() *Config {
	return &Config{
		Provider: ProviderGemini,
		Models: map[ModelTier]string{
			TierLite:     "gemini-2.5-flash-lite",
			TierStandard: "gemini-2.5-flash",
			TierAdvanced: "gemini-2.5-pro",
		},
		EmbeddingProvider: ProviderGemini,
		EmbeddingModel:    DefaultGeminiEmbeddingModel,
	}
}

// GetModel returns the model name for a given tier
func (c *Config) GetModel(tier ModelTier) string {
	if model, ok := c.Models[tier]; ok {
		return model
	}
	// Fallback chain: try standard, then lite
	if model, ok := c.Models[TierStandard]; ok {
		return model
	}
	if model, ok := c.Models[TierLite]; ok {
		return model
	}
	return ""
}

// GetEmbeddingModel returns the configured embedding model, falling back to
// the provider default.
func (c *Config) GetEmbeddingModel() string {
	if c.EmbeddingModel != "" {
		return c.EmbeddingModel
	}
	if c.EmbeddingProvider == ProviderOllama {
		return DefaultOllamaEmbeddingModel
	}
	return DefaultGeminiEmbeddingModel
}

// WithModel returns a new Config with a specific model for a tier
func (c *Config) WithModel(tier ModelTier, model string) *Config {
	newConfig := c.clone()
	newConfig.Models[tier] = model
	return newConfig
}

// WithEmbedding returns a new Config using the given embedding provider and model.
// An empty model selects the provider default.
func (c *Config) WithEmbedding(provider Provider, model string) *Config {
	newConfig := c.clone()
	newConfig.EmbeddingProvider = provider
	newConfig.EmbeddingModel = model
	return newConfig
}

func (c *Config) clone() *Config {
	newConfig := *c
	newConfig.Models = make(map[ModelTier]string, len(c.Models))
	for k, v := range c.Models {
		newConfig.Models[k] = v
	}
	return &newConfig
}
