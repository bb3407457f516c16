package index

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
)

var (
	// ErrEmpty is returned when building an index with no items
	ErrEmpty = errors.New("index has no items")
	// ErrDimensionMismatch is returned when vector sizes disagree
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
	// ErrNotBuilt is returned when searching before Build
	ErrNotBuilt = errors.New("index has not been built")
)

// Item is a vector to index, identified by its position in the glossary
type Item struct {
	ID     int
	Vector []float32
}

// Hit is a search result. Score is the inner product with the query, which
// equals cosine similarity when both vectors are unit length.
type Hit struct {
	ID    int
	Score float32
}

// Index is a static nearest-neighbor index. Build replaces any previous contents.
type Index interface {
	Build(ctx context.Context, items []Item) error
	Search(ctx context.Context, vec []float32, k int) ([]Hit, error)
	Size() int
	Close() error
}

// NormalizeL2 scales v to unit length in place and returns it. Zero vectors are left as is.
func NormalizeL2(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return v
	}
	inv := 1 / math.Sqrt(sum)
	for i := range v {
		v[i] = float32(float64(v[i]) * inv)
	}
	return v
}

// Norm returns the L2 norm of v
func Norm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

// Dot returns the inner product of two equal-length vectors
func Dot(a, b []float32) float32 {
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	return float32(dot)
}

// dimensionOf checks that all items share one non-zero dimension
func dimensionOf(items []Item) (int, error) {
	if len(items) == 0 {
		return 0, ErrEmpty
	}
	dim := len(items[0].Vector)
	if dim == 0 {
		return 0, fmt.Errorf("item %d: %w: empty vector", items[0].ID, ErrDimensionMismatch)
	}
	for _, it := range items[1:] {
		if len(it.Vector) != dim {
			return 0, fmt.Errorf("item %d has %d dimensions, want %d: %w", it.ID, len(it.Vector), dim, ErrDimensionMismatch)
		}
	}
	return dim, nil
}

func checkQuery(vec []float32, dim int) error {
	if dim == 0 {
		return ErrNotBuilt
	}
	if len(vec) != dim {
		return fmt.Errorf("query has %d dimensions, index has %d: %w", len(vec), dim, ErrDimensionMismatch)
	}
	return nil
}

// sortHits orders by descending score, then ascending ID, and truncates to k
func sortHits(hits []Hit, k int) []Hit {
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].ID < hits[j].ID
	})
	if k < len(hits) {
		hits = hits[:k]
	}
	return hits
}
