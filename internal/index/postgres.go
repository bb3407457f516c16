package index

import (
	"context"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

const defaultPostgresTable = "glossary_embeddings"

// Postgres implements Index using PostgreSQL with pgvector
type Postgres struct {
	pool  *pgxpool.Pool
	table string

	mu   sync.RWMutex
	dim  int
	size int
}

// NewPostgres connects to PostgreSQL. The table is dropped and recreated on Build.
func NewPostgres(ctx context.Context, dsn, table string) (*Postgres, error) {
	if table == "" {
		table = defaultPostgresTable
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	// Test connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	return &Postgres{
		pool:  pool,
		table: pgx.Identifier{table}.Sanitize(),
	}, nil
}

func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}

func (p *Postgres) Build(ctx context.Context, items []Item) error {
	dim, err := dimensionOf(items)
	if err != nil {
		return err
	}

	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	schema := fmt.Sprintf(`
		CREATE EXTENSION IF NOT EXISTS vector;
		DROP TABLE IF EXISTS %[1]s;
		CREATE TABLE %[1]s (
			entry_id INTEGER PRIMARY KEY,
			embedding vector(%[2]d) NOT NULL
		);
	`, p.table, dim)
	if _, err := tx.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	batch := &pgx.Batch{}
	insert := fmt.Sprintf(`INSERT INTO %s (entry_id, embedding) VALUES ($1, $2)`, p.table)
	for _, it := range items {
		batch.Queue(insert, it.ID, pgvector.NewVector(it.Vector))
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to insert embeddings: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	p.mu.Lock()
	p.dim, p.size = dim, len(items)
	p.mu.Unlock()
	return nil
}

func (p *Postgres) Search(ctx context.Context, vec []float32, k int) ([]Hit, error) {
	p.mu.RLock()
	dim := p.dim
	p.mu.RUnlock()

	if err := checkQuery(vec, dim); err != nil {
		return nil, err
	}
	if k <= 0 {
		return []Hit{}, nil
	}

	// <#> is the negative inner product
	query := fmt.Sprintf(`
		SELECT entry_id, (embedding <#> $1) * -1 AS score
		FROM %s
		ORDER BY embedding <#> $1, entry_id
		LIMIT $2
	`, p.table)

	rows, err := p.pool.Query(ctx, query, pgvector.NewVector(vec), k)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var hits []Hit
	for rows.Next() {
		var h Hit
		var score float64
		if err := rows.Scan(&h.ID, &score); err != nil {
			return nil, err
		}
		h.Score = float32(score)
		hits = append(hits, h)
	}

	return hits, rows.Err()
}

func (p *Postgres) Size() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.size
}
