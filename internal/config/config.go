// Package config loads settings from an optional .env file and the environment.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"

	"github.com/spf13/viper"

	"github.com/MereWhiplash/fieldnorm/internal/embedder"
	"github.com/MereWhiplash/fieldnorm/internal/index"
	"github.com/MereWhiplash/fieldnorm/internal/llm"
	"github.com/MereWhiplash/fieldnorm/internal/retriever"
)

// Config holds all runtime settings
type Config struct {
	// Chat model
	ModelProvider  string
	GrokAPIKey     string
	HFAPIKey       string
	OpenAIAPIKey   string
	ChatModel      string
	ChatBaseURL    string
	ChatMaxTokens  int
	ChatMaxRetries int

	// Embeddings
	EmbeddingProvider    string
	EmbeddingModel       string
	OllamaURL            string
	EmbeddingBaseURL     string
	EmbeddingAPIKey      string
	EmbeddingDimensions  int
	EmbeddingConcurrency int
	EmbeddingCache       bool
	EmbeddingCacheSize   int

	// Retrieval
	GlossaryPath       string
	RetrievalK         int
	RetrievalThreshold float64

	// Index
	IndexDriver        string
	SQLitePath         string
	PostgresDSN        string
	PostgresTable      string
	MongoDBURI         string
	MongoDBDatabase    string
	MongoDBCollection  string
	MongoDBVectorIndex string

	// HTTP
	Addr        string
	CORSOrigins []string
	RateLimit   int

	// Logging
	LogLevel  string
	LogFormat string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("model_provider", "grok")
	v.SetDefault("chat_max_retries", 3)

	v.SetDefault("embedding_provider", "ollama")
	v.SetDefault("ollama_url", "http://localhost:11434")
	v.SetDefault("embedding_concurrency", 4)
	v.SetDefault("embedding_cache", true)
	v.SetDefault("embedding_cache_size", 1000)

	v.SetDefault("retrieval_k", 2)
	v.SetDefault("retrieval_threshold", 0.6)

	v.SetDefault("index_driver", "memory")
	v.SetDefault("sqlite_path", ":memory:")
	v.SetDefault("postgres_table", "glossary_embeddings")
	v.SetDefault("mongodb_database", "fieldnorm")
	v.SetDefault("mongodb_collection", "glossary_embeddings")
	v.SetDefault("mongodb_vector_index", "glossary_vector_index")

	v.SetDefault("addr", ":8000")
	v.SetDefault("cors_origins", "http://localhost:3000,http://127.0.0.1:3000")
	v.SetDefault("rate_limit", 100)

	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
}

// Load reads envFile (dotenv format) when it exists, then the environment,
// which takes precedence. An empty envFile means ".env".
func Load(envFile string) (*Config, error) {
	if envFile == "" {
		envFile = ".env"
	}

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if _, err := os.Stat(envFile); err == nil {
		v.SetConfigFile(envFile)
		v.SetConfigType("env")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", envFile, err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read %s: %w", envFile, err)
	}

	cfg := &Config{
		ModelProvider:  strings.ToLower(v.GetString("model_provider")),
		GrokAPIKey:     v.GetString("grok_api_key"),
		HFAPIKey:       v.GetString("hf_token"),
		OpenAIAPIKey:   v.GetString("openai_api_key"),
		ChatModel:      v.GetString("chat_model"),
		ChatBaseURL:    v.GetString("chat_base_url"),
		ChatMaxTokens:  v.GetInt("chat_max_tokens"),
		ChatMaxRetries: v.GetInt("chat_max_retries"),

		EmbeddingProvider:    strings.ToLower(v.GetString("embedding_provider")),
		EmbeddingModel:       v.GetString("embedding_model"),
		OllamaURL:            v.GetString("ollama_url"),
		EmbeddingBaseURL:     v.GetString("embedding_base_url"),
		EmbeddingAPIKey:      v.GetString("embedding_api_key"),
		EmbeddingDimensions:  v.GetInt("embedding_dimensions"),
		EmbeddingConcurrency: v.GetInt("embedding_concurrency"),
		EmbeddingCache:       v.GetBool("embedding_cache"),
		EmbeddingCacheSize:   v.GetInt("embedding_cache_size"),

		GlossaryPath:       v.GetString("glossary_path"),
		RetrievalK:         v.GetInt("retrieval_k"),
		RetrievalThreshold: v.GetFloat64("retrieval_threshold"),

		IndexDriver:        strings.ToLower(v.GetString("index_driver")),
		SQLitePath:         v.GetString("sqlite_path"),
		PostgresDSN:        v.GetString("postgres_dsn"),
		PostgresTable:      v.GetString("postgres_table"),
		MongoDBURI:         v.GetString("mongodb_uri"),
		MongoDBDatabase:    v.GetString("mongodb_database"),
		MongoDBCollection:  v.GetString("mongodb_collection"),
		MongoDBVectorIndex: v.GetString("mongodb_vector_index"),

		Addr:        v.GetString("addr"),
		CORSOrigins: SplitList(v.GetString("cors_origins")),
		RateLimit:   v.GetInt("rate_limit"),

		LogLevel:  strings.ToLower(v.GetString("log_level")),
		LogFormat: strings.ToLower(v.GetString("log_format")),
	}
	if cfg.EmbeddingAPIKey == "" {
		cfg.EmbeddingAPIKey = cfg.OpenAIAPIKey
	}

	return cfg, nil
}

// SplitList splits a comma-separated value, dropping blanks
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate checks settings needed for retrieval
func (c *Config) Validate() error {
	if !slices.Contains([]string{"ollama", "openai", "hashing"}, c.EmbeddingProvider) {
		return fmt.Errorf("unknown EMBEDDING_PROVIDER %q", c.EmbeddingProvider)
	}
	if c.EmbeddingProvider == "openai" && c.EmbeddingAPIKey == "" {
		return fmt.Errorf("EMBEDDING_API_KEY or OPENAI_API_KEY is required for openai embeddings")
	}
	if c.RetrievalK <= 0 {
		return fmt.Errorf("RETRIEVAL_K must be positive, got %d", c.RetrievalK)
	}
	if c.RetrievalThreshold < -1 || c.RetrievalThreshold > 1 {
		return fmt.Errorf("RETRIEVAL_THRESHOLD must be within [-1, 1], got %v", c.RetrievalThreshold)
	}
	if c.EmbeddingCache && c.EmbeddingCacheSize <= 0 {
		return fmt.Errorf("EMBEDDING_CACHE_SIZE must be positive, got %d", c.EmbeddingCacheSize)
	}
	switch c.IndexDriver {
	case "memory", "sqlite":
	case "postgres":
		if c.PostgresDSN == "" {
			return fmt.Errorf("POSTGRES_DSN is required for the postgres index")
		}
	case "mongodb":
		if c.MongoDBURI == "" {
			return fmt.Errorf("MONGODB_URI is required for the mongodb index")
		}
	default:
		return fmt.Errorf("unknown INDEX_DRIVER %q", c.IndexDriver)
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// ValidateModel checks settings needed to call the chat model
func (c *Config) ValidateModel() error {
	if !slices.Contains(llm.Providers(), c.ModelProvider) {
		return fmt.Errorf("%w: %q", llm.ErrInvalidProvider, c.ModelProvider)
	}
	if llm.RequiresAPIKey(c.ModelProvider) && c.APIKey() == "" {
		return fmt.Errorf("%s not set", apiKeyEnv[c.ModelProvider])
	}
	return nil
}

var apiKeyEnv = map[string]string{
	"grok":   "GROK_API_KEY",
	"hf":     "HF_TOKEN",
	"openai": "OPENAI_API_KEY",
}

// APIKey returns the key for the selected model provider
func (c *Config) APIKey() string {
	switch c.ModelProvider {
	case "grok":
		return c.GrokAPIKey
	case "hf":
		return c.HFAPIKey
	case "openai":
		return c.OpenAIAPIKey
	}
	return ""
}

// LLMConfig returns the chat client settings
func (c *Config) LLMConfig() llm.Config {
	return llm.Config{
		Provider:   c.ModelProvider,
		BaseURL:    c.ChatBaseURL,
		APIKey:     c.APIKey(),
		Model:      c.ChatModel,
		MaxTokens:  c.ChatMaxTokens,
		MaxRetries: c.ChatMaxRetries,
	}
}

// EmbedderConfig returns the embedding provider settings
func (c *Config) EmbedderConfig() embedder.Config {
	cfg := embedder.Config{
		Provider:     c.EmbeddingProvider,
		Model:        c.EmbeddingModel,
		BaseURL:      c.EmbeddingBaseURL,
		APIKey:       c.EmbeddingAPIKey,
		Dimensions:   c.EmbeddingDimensions,
		Concurrency:  c.EmbeddingConcurrency,
		CacheQueries: c.EmbeddingCache,
		CacheSize:    c.EmbeddingCacheSize,
	}
	if cfg.Provider == "ollama" && cfg.BaseURL == "" {
		cfg.BaseURL = c.OllamaURL
	}
	return cfg
}

// IndexConfig returns the vector index settings
func (c *Config) IndexConfig() index.Config {
	return index.Config{
		Driver:             c.IndexDriver,
		SQLitePath:         c.SQLitePath,
		PostgresDSN:        c.PostgresDSN,
		PostgresTable:      c.PostgresTable,
		MongoDBURI:         c.MongoDBURI,
		MongoDBDatabase:    c.MongoDBDatabase,
		MongoDBCollection:  c.MongoDBCollection,
		MongoDBVectorIndex: c.MongoDBVectorIndex,
	}
}

// RetrieverOptions returns the neighbor search settings
func (c *Config) RetrieverOptions() retriever.Options {
	return retriever.Options{K: c.RetrievalK, Threshold: c.RetrievalThreshold}
}

func parseLevel(s string) (slog.Level, error) {
	switch s {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("unknown LOG_LEVEL %q", s)
}

// NewLogger builds a slog logger writing to w in the configured format and level
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	level, err := parseLevel(c.LogLevel)
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	if c.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
