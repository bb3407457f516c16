package index

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFallbackSearch_ScoresInProcess(t *testing.T) {
	items := []Item{
		{ID: 0, Vector: []float32{1, 0}},
		{ID: 1, Vector: []float32{0, 1}},
	}

	hits, err := fallbackSearch(context.Background(), errors.New("$vectorSearch is not allowed"), "idx", items, []float32{0, 1}, 1)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, 1, hits[0].ID)
	assert.Equal(t, float32(1), hits[0].Score)
}

func TestFallbackSearch_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	items := []Item{{ID: 0, Vector: []float32{1, 0}}}
	hits, err := fallbackSearch(ctx, context.Canceled, "idx", items, []float32{1, 0}, 1)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, hits)
}

func TestFallbackSearch_DeadlineExceeded(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 0)
	defer cancel()
	<-ctx.Done()

	_, err := fallbackSearch(ctx, errors.New("server selection timeout"), "idx", nil, []float32{1}, 1)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
