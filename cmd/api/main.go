// cmd/api/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/MereWhiplash/fieldnorm/internal/api"
	"github.com/MereWhiplash/fieldnorm/internal/app"
	"github.com/MereWhiplash/fieldnorm/internal/config"
)

func main() {
	// Config flags
	envFile := flag.String("env-file", ".env", "Path to a dotenv file (optional)")

	// Server flags, overriding the environment when set
	addr := flag.String("addr", "", "Server address (default from ADDR or :8000)")
	rateLimit := flag.Int("rate-limit", -1, "Requests per minute per IP (0 to disable)")
	corsOrigins := flag.String("cors-origins", "", "Comma-separated list of allowed CORS origins")

	flag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *addr != "" {
		cfg.Addr = *addr
	}
	if *rateLimit >= 0 {
		cfg.RateLimit = *rateLimit
	}
	if *corsOrigins != "" {
		cfg.CORSOrigins = config.SplitList(*corsOrigins)
	}

	logger := cfg.NewLogger(os.Stderr)

	ctx := context.Background()

	// Index the glossary and create the service
	a, err := app.New(ctx, cfg, logger, app.Options{WithModel: true})
	if err != nil {
		log.Fatalf("Failed to initialize: %v", err)
	}
	defer a.Close()

	// Create handlers
	handlers := api.NewHandlers(a.Service)
	handlers.SetHealthCheck(a.HealthCheck)

	// Setup router
	r := chi.NewRouter()

	// Core middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(2 * time.Minute))
	r.Use(api.RequestID)
	r.Use(api.MaxBodySize)

	// Rate limiting (if enabled)
	if cfg.RateLimit > 0 {
		limiter := api.NewRateLimiter(cfg.RateLimit, time.Minute)
		r.Use(limiter.Middleware)
	}

	origins := cfg.CORSOrigins
	if len(origins) == 0 {
		origins = api.DefaultCORSOrigins
	}
	r.Use(api.CORSMiddleware(origins))

	// Routes
	r.Get("/health", handlers.Health)
	r.Route("/api", func(r chi.Router) {
		r.Post("/normalize", handlers.Normalize)
		r.Post("/retrieve", handlers.Retrieve)
		r.Get("/glossary", handlers.Glossary)
	})

	// Create server
	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 3 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	done := make(chan bool)
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("shutting down")

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("shutdown failed", "error", err)
		}

		close(done)
	}()

	// Start server
	logger.Info("starting API server", "addr", cfg.Addr, "model_provider", cfg.ModelProvider)
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}

	<-done
	fmt.Println("Server stopped")
}
