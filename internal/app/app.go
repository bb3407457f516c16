// Package app wires the glossary, embedder, index, retriever and chat model
// into a Service from a loaded Config.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/MereWhiplash/fieldnorm/internal/config"
	"github.com/MereWhiplash/fieldnorm/internal/embedder"
	"github.com/MereWhiplash/fieldnorm/internal/glossary"
	"github.com/MereWhiplash/fieldnorm/internal/index"
	"github.com/MereWhiplash/fieldnorm/internal/llm"
	"github.com/MereWhiplash/fieldnorm/internal/pipeline"
	"github.com/MereWhiplash/fieldnorm/internal/retriever"
	"github.com/MereWhiplash/fieldnorm/internal/service"
)

// App holds the assembled components
type App struct {
	Service   *service.Service
	Retriever *retriever.Retriever
	Index     index.Index
	Logger    *slog.Logger
}

// Options controls which parts are built
type Options struct {
	// WithModel creates the chat client. Retrieval-only commands leave it off.
	WithModel bool
	// Embedder overrides the configured embedding provider
	Embedder embedder.Embedder
}

// New builds the index from the glossary and assembles the service
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts Options) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	var chat llm.Client
	if opts.WithModel {
		if err := cfg.ValidateModel(); err != nil {
			return nil, err
		}
		c, err := llm.New(cfg.LLMConfig())
		if err != nil {
			return nil, fmt.Errorf("failed to create chat client: %w", err)
		}
		chat = c
	}

	entries, err := glossary.Load(cfg.GlossaryPath)
	if err != nil {
		return nil, err
	}

	emb := opts.Embedder
	if emb == nil {
		emb = embedder.Shared(cfg.EmbedderConfig())
	}

	idx, err := index.New(ctx, cfg.IndexConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize index: %w", err)
	}

	r, err := retriever.New(ctx, emb, idx, entries, cfg.RetrieverOptions())
	if err != nil {
		idx.Close()
		return nil, err
	}
	logger.Info("glossary indexed",
		"entries", len(entries),
		"index", cfg.IndexDriver,
		"embedder", cfg.EmbeddingProvider)

	svc := service.New(pipeline.New(r, nil), chat, entries, logger)

	return &App{
		Service:   svc,
		Retriever: r,
		Index:     idx,
		Logger:    logger,
	}, nil
}

// HealthCheck reports whether the index holds the glossary
func (a *App) HealthCheck() error {
	if a.Index.Size() == 0 {
		return fmt.Errorf("index is empty")
	}
	return nil
}

// Close releases the index
func (a *App) Close() error {
	return a.Index.Close()
}
