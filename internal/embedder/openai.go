package embedder

import (
	"context"
	"errors"
	"fmt"

	"github.com/sashabaranov/go-openai"
)

// OpenAI implements Embedder against any OpenAI-compatible embeddings endpoint
type OpenAI struct {
	client     *openai.Client
	model      string
	dimensions int
}

// NewOpenAI creates a new OpenAI-compatible embedder. An empty baseURL uses api.openai.com.
func NewOpenAI(apiKey, baseURL, model string, dimensions int) *OpenAI {
	clientConfig := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		clientConfig.BaseURL = baseURL
	}

	return &OpenAI{
		client:     openai.NewClientWithConfig(clientConfig),
		model:      model,
		dimensions: dimensions,
	}
}

func (o *OpenAI) EmbedForStorage(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, errors.New("no texts provided for embedding")
	}

	req := openai.EmbeddingRequest{
		Input:      texts,
		Model:      openai.EmbeddingModel(o.model),
		Dimensions: o.dimensions,
	}

	resp, err := o.client.CreateEmbeddings(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to create embeddings: %w", err)
	}

	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("embedding response has %d vectors for %d texts", len(resp.Data), len(texts))
	}

	// Data carries its own index; do not assume response order
	vectors := make([][]float32, len(texts))
	for _, d := range resp.Data {
		if d.Index < 0 || d.Index >= len(vectors) {
			return nil, fmt.Errorf("embedding response index %d out of range", d.Index)
		}
		vectors[d.Index] = d.Embedding
	}
	return vectors, nil
}

func (o *OpenAI) EmbedForSearch(ctx context.Context, query string) ([]float32, error) {
	vectors, err := o.EmbedForStorage(ctx, []string{query})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}
