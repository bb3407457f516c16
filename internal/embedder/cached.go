package embedder

import (
	"container/list"
	"context"
	"sync"
)

// DefaultCacheSize is the query cache capacity when none is given
const DefaultCacheSize = 1000

// Cached memoizes query embeddings in a bounded LRU. Storage batches pass
// through since the glossary is embedded once.
type Cached struct {
	base     Embedder
	modelID  string
	capacity int

	mu    sync.Mutex
	cache map[string]*cacheEntry
	order *list.List // front is most recently used
}

type cacheEntry struct {
	key     string
	vec     []float32
	element *list.Element
}

// NewCached wraps base; modelID namespaces the cache keys. A non-positive
// capacity means DefaultCacheSize.
func NewCached(base Embedder, modelID string, capacity int) *Cached {
	if capacity <= 0 {
		capacity = DefaultCacheSize
	}
	return &Cached{
		base:     base,
		modelID:  modelID,
		capacity: capacity,
		cache:    make(map[string]*cacheEntry),
		order:    list.New(),
	}
}

func (c *Cached) EmbedForStorage(ctx context.Context, texts []string) ([][]float32, error) {
	return c.base.EmbedForStorage(ctx, texts)
}

func (c *Cached) EmbedForSearch(ctx context.Context, query string) ([]float32, error) {
	key := c.modelID + "|" + query

	if vec, ok := c.get(key); ok {
		return vec, nil
	}

	vec, err := c.base.EmbedForSearch(ctx, query)
	if err != nil {
		return nil, err
	}
	c.set(key, vec)

	return vec, nil
}

func (c *Cached) get(key string) ([]float32, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.cache[key]
	if !ok {
		return nil, false
	}
	c.order.MoveToFront(e.element)
	return cloneVector(e.vec), true
}

func (c *Cached) set(key string, vec []float32) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.cache[key]; ok {
		e.vec = cloneVector(vec)
		c.order.MoveToFront(e.element)
		return
	}

	for len(c.cache) >= c.capacity {
		oldest := c.order.Back()
		if oldest == nil {
			break
		}
		c.removeEntry(oldest.Value.(*cacheEntry))
	}

	e := &cacheEntry{key: key, vec: cloneVector(vec)}
	e.element = c.order.PushFront(e)
	c.cache[key] = e
}

// removeEntry must be called with mu held
func (c *Cached) removeEntry(e *cacheEntry) {
	c.order.Remove(e.element)
	delete(c.cache, e.key)
}

// Len returns the number of cached queries
func (c *Cached) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.cache)
}

func cloneVector(vec []float32) []float32 {
	out := make([]float32, len(vec))
	copy(out, vec)
	return out
}
