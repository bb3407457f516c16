// internal/embedder/embedder.go
package embedder

import (
	"context"
	"fmt"
)

// Embedder generates vector embeddings for text
type Embedder interface {
	// EmbedForStorage embeds a batch of reference texts (the glossary)
	EmbedForStorage(ctx context.Context, texts []string) ([][]float32, error)
	// EmbedForSearch embeds a single query string
	EmbedForSearch(ctx context.Context, query string) ([]float32, error)
}

// Config selects and configures an embedding provider
type Config struct {
	Provider string // "ollama", "openai", "hashing"
	Model    string

	// Ollama / OpenAI-compatible endpoints
	BaseURL string
	APIKey  string

	// Dimensions is passed to OpenAI-compatible providers that support it and
	// sets the vector size of the hashing provider.
	Dimensions int

	// Concurrency bounds parallel requests when a provider embeds one text per call
	Concurrency int

	// CacheQueries wraps the provider with an in-memory LRU query cache
	// holding up to CacheSize entries
	CacheQueries bool
	CacheSize    int
}

// New creates an Embedder based on config
func New(cfg Config) (Embedder, error) {
	var emb Embedder

	switch cfg.Provider {
	case "ollama":
		if cfg.BaseURL == "" {
			cfg.BaseURL = "http://localhost:11434"
		}
		if cfg.Model == "" {
			cfg.Model = "nomic-embed-text"
		}
		emb = NewOllama(cfg.BaseURL, cfg.Model, WithConcurrency(cfg.Concurrency))

	case "openai":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("openai embedding API key is required")
		}
		if cfg.Model == "" {
			cfg.Model = "text-embedding-3-small"
		}
		emb = NewOpenAI(cfg.APIKey, cfg.BaseURL, cfg.Model, cfg.Dimensions)

	case "hashing":
		emb = NewHashing(cfg.Dimensions)

	default:
		return nil, fmt.Errorf("unknown embedding provider: %s", cfg.Provider)
	}

	if cfg.CacheQueries {
		emb = NewCached(emb, cfg.Provider+":"+cfg.Model, cfg.CacheSize)
	}
	return emb, nil
}
