//go:build !cgo

package index

import (
	"context"
	"fmt"
)

// SQLite is a stub for non-CGO builds
type SQLite struct{}

var errNoCGO = fmt.Errorf("SQLite index requires CGO (build with CGO_ENABLED=1)")

// NewSQLite returns an error in non-CGO builds
func NewSQLite(path string) (*SQLite, error) {
	return nil, errNoCGO
}

func (s *SQLite) Build(ctx context.Context, items []Item) error {
	return errNoCGO
}

func (s *SQLite) Search(ctx context.Context, vec []float32, k int) ([]Hit, error) {
	return nil, errNoCGO
}

func (s *SQLite) Size() int {
	return 0
}

func (s *SQLite) Close() error {
	return nil
}
