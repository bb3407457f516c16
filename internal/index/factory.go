package index

import (
	"context"
	"fmt"
)

// Config holds index configuration
type Config struct {
	Driver string // "memory", "sqlite", "postgres", "mongodb"

	// SQLite
	SQLitePath string

	// Postgres
	PostgresDSN   string
	PostgresTable string

	// MongoDB
	MongoDBURI         string
	MongoDBDatabase    string
	MongoDBCollection  string
	MongoDBVectorIndex string
}

// New creates an Index implementation based on config
func New(ctx context.Context, cfg Config) (Index, error) {
	switch cfg.Driver {
	case "", "memory":
		return NewFlat(), nil

	case "sqlite":
		if cfg.SQLitePath == "" {
			cfg.SQLitePath = ":memory:"
		}
		return NewSQLite(cfg.SQLitePath)

	case "postgres":
		if cfg.PostgresDSN == "" {
			return nil, fmt.Errorf("postgres DSN is required")
		}
		return NewPostgres(ctx, cfg.PostgresDSN, cfg.PostgresTable)

	case "mongodb":
		if cfg.MongoDBURI == "" {
			return nil, fmt.Errorf("mongodb URI is required")
		}
		if cfg.MongoDBDatabase == "" {
			cfg.MongoDBDatabase = "fieldnorm"
		}
		return NewMongoDB(ctx, cfg.MongoDBURI, cfg.MongoDBDatabase, cfg.MongoDBCollection, cfg.MongoDBVectorIndex)

	default:
		return nil, fmt.Errorf("unknown index driver: %s", cfg.Driver)
	}
}
