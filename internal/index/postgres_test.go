package index_test

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/MereWhiplash/fieldnorm/internal/index"
)

func TestPostgres(t *testing.T) {
	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TEST_POSTGRES_DSN not set, skipping Postgres tests")
	}

	idx, err := index.NewPostgres(context.Background(), dsn, "test_glossary_embeddings")
	require.NoError(t, err)
	defer idx.Close()

	runIndexSuite(t, idx)
}
