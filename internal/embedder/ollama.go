// internal/embedder/ollama.go
package embedder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"
)

// Ollama implements Embedder using Ollama API
type Ollama struct {
	baseURL     string
	model       string
	concurrency int
	http        *http.Client
}

// OllamaOption configures an Ollama embedder
type OllamaOption func(*Ollama)

// WithConcurrency bounds the number of in-flight requests for a storage batch
func WithConcurrency(n int) OllamaOption {
	return func(o *Ollama) {
		if n > 0 {
			o.concurrency = n
		}
	}
}

type embeddingRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type embeddingResponse struct {
	Embedding []float32 `json:"embedding"`
}

// NewOllama creates a new Ollama embedder
func NewOllama(baseURL, model string, opts ...OllamaOption) *Ollama {
	o := &Ollama{
		baseURL:     baseURL,
		model:       model,
		concurrency: 4,
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *Ollama) embed(ctx context.Context, text string) ([]float32, error) {
	reqBody := embeddingRequest{
		Model:  o.model,
		Prompt: text,
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		fmt.Sprintf("%s/api/embeddings", o.baseURL),
		bytes.NewReader(jsonBody),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call Ollama: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("ollama returned status %d: %s", resp.StatusCode, string(body))
	}

	var embResp embeddingResponse
	if err := json.NewDecoder(resp.Body).Decode(&embResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if len(embResp.Embedding) == 0 {
		return nil, fmt.Errorf("ollama returned an empty embedding")
	}

	return embResp.Embedding, nil
}

func (o *Ollama) EmbedForStorage(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(o.concurrency)
	for i, text := range texts {
		g.Go(func() error {
			if o.model == "nomic-embed-text" {
				text = "search_document: " + text
			}
			vec, err := o.embed(ctx, text)
			if err != nil {
				return err
			}
			out[i] = vec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (o *Ollama) EmbedForSearch(ctx context.Context, query string) ([]float32, error) {
	if o.model == "nomic-embed-text" {
		return o.embed(ctx, "search_query: "+query)
	}
	return o.embed(ctx, query)
}
