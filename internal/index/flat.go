package index

import (
	"context"
	"sync"
)

// Flat is an exact inner-product index held in memory
type Flat struct {
	mu    sync.RWMutex
	dim   int
	items []Item
}

// NewFlat creates an empty Flat index
func NewFlat() *Flat {
	return &Flat{}
}

func (f *Flat) Build(_ context.Context, items []Item) error {
	dim, err := dimensionOf(items)
	if err != nil {
		return err
	}

	copied := make([]Item, len(items))
	for i, it := range items {
		vec := make([]float32, len(it.Vector))
		copy(vec, it.Vector)
		copied[i] = Item{ID: it.ID, Vector: vec}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.dim = dim
	f.items = copied
	return nil
}

func (f *Flat) Search(_ context.Context, vec []float32, k int) ([]Hit, error) {
	f.mu.RLock()
	dim, items := f.dim, f.items
	f.mu.RUnlock()

	if err := checkQuery(vec, dim); err != nil {
		return nil, err
	}
	if k <= 0 {
		return []Hit{}, nil
	}

	return scoreAll(items, vec, k), nil
}

func (f *Flat) Size() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.items)
}

func (f *Flat) Close() error {
	return nil
}

func scoreAll(items []Item, vec []float32, k int) []Hit {
	hits := make([]Hit, len(items))
	for i, it := range items {
		hits[i] = Hit{ID: it.ID, Score: Dot(vec, it.Vector)}
	}
	return sortHits(hits, k)
}
