// Package llm talks to OpenAI-compatible chat completion endpoints.
package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
)

// Chat roles
const (
	RoleSystem = openai.ChatMessageRoleSystem
	RoleUser   = openai.ChatMessageRoleUser
)

// ErrInvalidProvider is returned for an unknown model provider
var ErrInvalidProvider = errors.New("invalid model provider")

// Message represents a chat message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Client completes a conversation
type Client interface {
	Chat(ctx context.Context, messages []Message) (string, error)
}

// Config holds the chat provider configuration.
type Config struct {
	Provider    string // "grok", "hf", "openai", "ollama"
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float32
	MaxTokens   int
	MaxRetries  int
	// RetryWait is the first backoff delay; it doubles per attempt
	RetryWait time.Duration
	Timeout   time.Duration
}

type preset struct {
	baseURL   string
	model     string
	needsKey  bool
	maxTokens int
}

var presets = map[string]preset{
	"grok":   {baseURL: "https://api.x.ai/v1", model: "grok-4-1-fast-non-reasoning", needsKey: true},
	"hf":     {baseURL: "https://router.huggingface.co/v1", model: "meta-llama/Llama-3.1-8B-Instruct", needsKey: true, maxTokens: 700},
	"openai": {baseURL: "https://api.openai.com/v1", model: "gpt-4o-mini", needsKey: true},
	"ollama": {baseURL: "http://localhost:11434/v1", model: "llama3.1"},
}

// Providers lists the supported provider names
func Providers() []string {
	return []string{"grok", "hf", "openai", "ollama"}
}

// RequiresAPIKey reports whether provider needs an API key
func RequiresAPIKey(provider string) bool {
	return presets[provider].needsKey
}

// OpenAI implements Client with github.com/sashabaranov/go-openai
type OpenAI struct {
	client *openai.Client
	config Config
}

// New creates a client for cfg.Provider, filling unset values from the provider's preset.
func New(cfg Config) (*OpenAI, error) {
	p, ok := presets[cfg.Provider]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidProvider, cfg.Provider)
	}
	if p.needsKey && cfg.APIKey == "" {
		return nil, fmt.Errorf("API key is required for provider %s", cfg.Provider)
	}

	// Apply defaults for unset values
	if cfg.BaseURL == "" {
		cfg.BaseURL = p.baseURL
	}
	if cfg.Model == "" {
		cfg.Model = p.model
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = p.maxTokens
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryWait == 0 {
		cfg.RetryWait = time.Second
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	clientConfig.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")

	return &OpenAI{
		client: openai.NewClientWithConfig(clientConfig),
		config: cfg,
	}, nil
}

// Model returns the chat model in use
func (o *OpenAI) Model() string {
	return o.config.Model
}

// Chat performs a chat completion and returns the trimmed reply.
func (o *OpenAI) Chat(ctx context.Context, messages []Message) (string, error) {
	llmMessages := make([]openai.ChatCompletionMessage, len(messages))
	for i, msg := range messages {
		llmMessages[i] = openai.ChatCompletionMessage{
			Role:    msg.Role,
			Content: msg.Content,
		}
	}

	req := openai.ChatCompletionRequest{
		Model:       o.config.Model,
		Messages:    llmMessages,
		Temperature: o.config.Temperature,
		MaxTokens:   o.config.MaxTokens,
	}
	// a zero temperature is dropped by omitempty
	if req.Temperature == 0 {
		req.Temperature = math.SmallestNonzeroFloat32
	}

	var result string
	err := o.doWithRetry(ctx, func() error {
		callCtx, cancel := context.WithTimeout(ctx, o.config.Timeout)
		defer cancel()

		resp, err := o.client.CreateChatCompletion(callCtx, req)
		if err != nil {
			return err
		}
		if len(resp.Choices) == 0 {
			return fmt.Errorf("empty chat response")
		}
		result = resp.Choices[0].Message.Content
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to complete chat: %w", err)
	}

	return strings.TrimSpace(result), nil
}

// doWithRetry executes a function with exponential backoff retry.
func (o *OpenAI) doWithRetry(ctx context.Context, fn func() error) error {
	var lastErr error
	for attempt := 0; attempt < o.config.MaxRetries; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err
		if !retryable(err) {
			return err
		}
		if attempt < o.config.MaxRetries-1 {
			waitTime := time.Duration(math.Pow(2, float64(attempt))) * o.config.RetryWait
			slog.Debug("chat request failed, retrying",
				"attempt", attempt+1,
				"wait_time", waitTime,
				"error", err)
			select {
			case <-time.After(waitTime):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
	return lastErr
}

// retryable reports whether err is worth another attempt. Client errors
// other than rate limiting are final.
func retryable(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == 429 || apiErr.HTTPStatusCode >= 500
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode == 429 || reqErr.HTTPStatusCode >= 500
	}
	return !errors.Is(err, context.Canceled)
}
