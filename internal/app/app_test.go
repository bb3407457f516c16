package app

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MereWhiplash/fieldnorm/internal/config"
	"github.com/MereWhiplash/fieldnorm/internal/embedder"
	"github.com/MereWhiplash/fieldnorm/internal/service"
)

func testConfig() *config.Config {
	return &config.Config{
		ModelProvider:      "grok",
		EmbeddingProvider:  "hashing",
		RetrievalK:         2,
		RetrievalThreshold: 0.6,
		IndexDriver:        "memory",
		LogLevel:           "info",
	}
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNew_RetrievalOnly(t *testing.T) {
	ctx := context.Background()
	a, err := New(ctx, testConfig(), quietLogger(), Options{Embedder: embedder.NewHashing(64)})
	require.NoError(t, err)
	defer a.Close()

	assert.NoError(t, a.HealthCheck())
	assert.NotEmpty(t, a.Service.Glossary())
	assert.Equal(t, len(a.Service.Glossary()), a.Index.Size())

	out, err := a.Service.Retrieve(ctx, []string{"SSW"})
	require.NoError(t, err)
	assert.Equal(t, []string{"SSW"}, out.Context.Keys())

	_, err = a.Service.NormalizeFields(ctx, []string{"SSW"})
	assert.ErrorIs(t, err, service.ErrNoModel)
}

func TestNew_ModelRequiresKey(t *testing.T) {
	_, err := New(context.Background(), testConfig(), quietLogger(), Options{
		WithModel: true,
		Embedder:  embedder.NewHashing(64),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GROK_API_KEY")
}

func TestNew_WithModel(t *testing.T) {
	cfg := testConfig()
	cfg.GrokAPIKey = "xai-test"

	a, err := New(context.Background(), cfg, quietLogger(), Options{
		WithModel: true,
		Embedder:  embedder.NewHashing(64),
	})
	require.NoError(t, err)
	defer a.Close()
	assert.NotNil(t, a.Service)
}

func TestNew_InvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.IndexDriver = "faiss"

	_, err := New(context.Background(), cfg, quietLogger(), Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "INDEX_DRIVER")
}

func TestNew_MissingGlossary(t *testing.T) {
	cfg := testConfig()
	cfg.GlossaryPath = "does-not-exist.yaml"

	_, err := New(context.Background(), cfg, quietLogger(), Options{Embedder: embedder.NewHashing(64)})
	assert.Error(t, err)
}

func TestNew_ZeroThresholdFromEnv(t *testing.T) {
	t.Setenv("RETRIEVAL_THRESHOLD", "0")
	t.Setenv("EMBEDDING_PROVIDER", "hashing")

	cfg, err := config.Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	a, err := New(context.Background(), cfg, quietLogger(), Options{Embedder: embedder.NewHashing(64)})
	require.NoError(t, err)
	defer a.Close()

	assert.Equal(t, 0.0, a.Retriever.Options().Threshold)
	assert.Equal(t, 2, a.Retriever.Options().K)
}
