package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/MereWhiplash/fieldnorm/internal/app"
	"github.com/MereWhiplash/fieldnorm/internal/client"
	"github.com/MereWhiplash/fieldnorm/internal/config"
)

// version is set by goreleaser via ldflags
var version = "dev"

var (
	flagEnvFile           string
	flagGlossary          string
	flagIndexDriver       string
	flagEmbeddingProvider string
	flagAPIURL            string
	flagJSON              bool
	flagVerbose           bool
)

var rootCmd = &cobra.Command{
	Use:          "fieldnorm",
	Short:        "Normalize abbreviated clinical column names with glossary retrieval and an LLM",
	SilenceUsage: true,
	Version:      version,
	Long: `fieldnorm looks up the nearest glossary abbreviations for each field name,
builds a grounded prompt and asks a chat model for snake_case English names.

Commands run locally by default. With --api-url (or FIELDNORM_API_URL) they
call a running fieldnorm API instead.`,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagEnvFile, "env-file", ".env", "Path to a dotenv file (optional)")
	pf.StringVar(&flagGlossary, "glossary", "", "Glossary file (.yaml or .json); built-in when empty")
	pf.StringVar(&flagIndexDriver, "index-driver", "", "Vector index: memory, sqlite, postgres, mongodb")
	pf.StringVar(&flagEmbeddingProvider, "embedding-provider", "", "Embedding provider: ollama, openai, hashing")
	pf.StringVar(&flagAPIURL, "api-url", "", "Call a fieldnorm API instead of running locally")
	pf.BoolVar(&flagJSON, "json", false, "Print JSON output")
	pf.BoolVarP(&flagVerbose, "verbose", "v", false, "Log progress to stderr")
}

// Execute is called by main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig reads .env and the environment, then applies command-line overrides
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(flagEnvFile)
	if err != nil {
		return nil, err
	}
	if flagGlossary != "" {
		cfg.GlossaryPath = flagGlossary
	}
	if flagIndexDriver != "" {
		cfg.IndexDriver = flagIndexDriver
	}
	if flagEmbeddingProvider != "" {
		cfg.EmbeddingProvider = flagEmbeddingProvider
	}
	if !flagVerbose && cfg.LogLevel != "debug" {
		cfg.LogLevel = "warn"
	}
	return cfg, nil
}

// newApp loads config and indexes the glossary
func newApp(ctx context.Context, withModel bool) (*app.App, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return app.New(ctx, cfg, cfg.NewLogger(os.Stderr), app.Options{WithModel: withModel})
}

// remoteClient returns an API client when --api-url or FIELDNORM_API_URL is set
func remoteClient() *client.Client {
	url := flagAPIURL
	if url == "" {
		url = os.Getenv("FIELDNORM_API_URL")
	}
	if url == "" {
		return nil
	}
	return client.New(url)
}

func out(cmd *cobra.Command) io.Writer {
	return cmd.OutOrStdout()
}
