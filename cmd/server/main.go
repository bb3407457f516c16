package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/MereWhiplash/fieldnorm/internal/app"
	"github.com/MereWhiplash/fieldnorm/internal/config"
	"github.com/MereWhiplash/fieldnorm/internal/tools"
)

// version is set by goreleaser via ldflags
var version = "dev"

func main() {
	envFile := flag.String("env-file", ".env", "Path to a dotenv file (optional)")
	glossaryPath := flag.String("glossary", "", "Glossary file (.yaml or .json); built-in when empty")
	indexDriver := flag.String("index-driver", "", "Vector index: memory, sqlite, postgres, mongodb")
	versionFlag := flag.Bool("version", false, "Print version and exit")

	flag.Parse()

	if *versionFlag {
		fmt.Printf("fieldnorm-server %s\n", version)
		return
	}

	cfg, err := config.Load(*envFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *glossaryPath != "" {
		cfg.GlossaryPath = *glossaryPath
	}
	if *indexDriver != "" {
		cfg.IndexDriver = *indexDriver
	}

	// stdout carries the MCP stream
	logger := cfg.NewLogger(os.Stderr)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// A missing chat key only disables fn_normalize
	withModel := cfg.ValidateModel() == nil
	if !withModel {
		logger.Warn("chat model not configured, fn_normalize will fail", "model_provider", cfg.ModelProvider)
	}

	a, err := app.New(ctx, cfg, logger, app.Options{WithModel: withModel})
	if err != nil {
		log.Fatalf("Failed to initialize: %v", err)
	}
	defer a.Close()

	// Create MCP server
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "fieldnorm",
		Version: version,
	}, nil)

	// Register tools
	tools.Register(server, a.Service)

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		logger.Info("shutting down")
		cancel()
	}()

	// Start server with stdio transport
	logger.Info("starting fieldnorm MCP server", "version", version)
	if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
