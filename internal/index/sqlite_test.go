//go:build cgo

package index_test

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MereWhiplash/fieldnorm/internal/index"
)

func TestSQLite_InMemory(t *testing.T) {
	idx, err := index.NewSQLite(":memory:")
	require.NoError(t, err)
	defer idx.Close()

	runIndexSuite(t, idx)
}

func TestSQLite_File(t *testing.T) {
	// Use temp file for test database
	f, err := os.CreateTemp("", "test-*.db")
	require.NoError(t, err)
	defer os.Remove(f.Name())
	f.Close()

	idx, err := index.New(context.Background(), index.Config{
		Driver:     "sqlite",
		SQLitePath: f.Name(),
	})
	require.NoError(t, err)
	defer idx.Close()

	ctx := context.Background()
	require.NoError(t, idx.Build(ctx, testItems()))

	hits, err := idx.Search(ctx, unit(1, 1, 0), 1)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, 2, hits[0].ID)
	assert.InDelta(t, 1.0, hits[0].Score, 1e-4)
}

func TestSQLite_DefaultsToMemory(t *testing.T) {
	idx, err := index.New(context.Background(), index.Config{Driver: "sqlite"})
	require.NoError(t, err)
	defer idx.Close()

	require.NoError(t, idx.Build(context.Background(), testItems()))
	assert.Equal(t, 4, idx.Size())
}
