package embedder

import (
	"context"
	"sync"
)

// Lazy defers construction of an Embedder until first use. The constructor runs
// at most once; its result, including an error, is reused by every later call.
type Lazy struct {
	newFn func() (Embedder, error)

	once sync.Once
	emb  Embedder
	err  error
}

// NewLazy wraps a constructor
func NewLazy(newFn func() (Embedder, error)) *Lazy {
	return &Lazy{newFn: newFn}
}

// Get returns the underlying embedder, constructing it on the first call
func (l *Lazy) Get() (Embedder, error) {
	l.once.Do(func() {
		l.emb, l.err = l.newFn()
	})
	return l.emb, l.err
}

func (l *Lazy) EmbedForStorage(ctx context.Context, texts []string) ([][]float32, error) {
	emb, err := l.Get()
	if err != nil {
		return nil, err
	}
	return emb.EmbedForStorage(ctx, texts)
}

func (l *Lazy) EmbedForSearch(ctx context.Context, query string) ([]float32, error) {
	emb, err := l.Get()
	if err != nil {
		return nil, err
	}
	return emb.EmbedForSearch(ctx, query)
}

var (
	sharedMu sync.Mutex
	shared   *Lazy
)

// Shared returns the process-wide embedder. The config of the first call wins;
// the model itself is only created when something is first embedded.
func Shared(cfg Config) *Lazy {
	sharedMu.Lock()
	defer sharedMu.Unlock()

	if shared == nil {
		shared = NewLazy(func() (Embedder, error) {
			return New(cfg)
		})
	}
	return shared
}
