//go:build cgo

package index

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"

	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
	_ "github.com/mattn/go-sqlite3"
)

// SQLite implements Index using SQLite with sqlite-vec
type SQLite struct {
	conn *sql.DB

	mu   sync.RWMutex
	dim  int
	size int
}

// NewSQLite opens a SQLite index. ":memory:" keeps everything in process.
func NewSQLite(path string) (*SQLite, error) {
	sqlite_vec.Auto()

	conn, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// every pooled connection to :memory: would be a separate database
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	return &SQLite{conn: conn}, nil
}

func (s *SQLite) Close() error {
	return s.conn.Close()
}

func (s *SQLite) Build(ctx context.Context, items []Item) error {
	dim, err := dimensionOf(items)
	if err != nil {
		return err
	}

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	schema := fmt.Sprintf(`
		DROP TABLE IF EXISTS glossary_embeddings;
		CREATE VIRTUAL TABLE glossary_embeddings USING vec0(
			entry_id INTEGER PRIMARY KEY,
			embedding FLOAT[%d]
		);
	`, dim)
	if _, err := tx.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO glossary_embeddings (entry_id, embedding) VALUES (?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, it := range items {
		embeddingJSON, err := json.Marshal(it.Vector)
		if err != nil {
			return fmt.Errorf("failed to marshal embedding: %w", err)
		}
		if _, err := stmt.ExecContext(ctx, it.ID, string(embeddingJSON)); err != nil {
			return fmt.Errorf("failed to insert embedding: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	s.mu.Lock()
	s.dim, s.size = dim, len(items)
	s.mu.Unlock()
	return nil
}

func (s *SQLite) Search(ctx context.Context, vec []float32, k int) ([]Hit, error) {
	s.mu.RLock()
	dim := s.dim
	s.mu.RUnlock()

	if err := checkQuery(vec, dim); err != nil {
		return nil, err
	}
	if k <= 0 {
		return []Hit{}, nil
	}

	embeddingJSON, err := json.Marshal(vec)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal embedding: %w", err)
	}

	rows, err := s.conn.QueryContext(ctx, `
		SELECT entry_id, vec_distance_cosine(embedding, ?) AS distance
		FROM glossary_embeddings
		ORDER BY distance, entry_id
		LIMIT ?
	`, string(embeddingJSON), k)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var hits []Hit
	for rows.Next() {
		var id int
		var distance float64
		if err := rows.Scan(&id, &distance); err != nil {
			return nil, err
		}
		hits = append(hits, Hit{ID: id, Score: float32(1 - distance)})
	}

	return hits, rows.Err()
}

func (s *SQLite) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.size
}
