package embedder

import (
	"context"
	"hash/fnv"
	"strings"
)

const defaultHashingDim = 256

// Hashing is a deterministic character-trigram hashing embedder. It needs no
// model or network and maps identical strings to identical vectors, so it
// serves offline runs and tests.
type Hashing struct {
	dim int
}

// NewHashing creates a hashing embedder; dim <= 0 uses 256
func NewHashing(dim int) *Hashing {
	if dim <= 0 {
		dim = defaultHashingDim
	}
	return &Hashing{dim: dim}
}

// Dim returns the vector size
func (h *Hashing) Dim() int {
	return h.dim
}

func (h *Hashing) embed(text string) []float32 {
	vec := make([]float32, h.dim)
	runes := []rune(" " + strings.ToLower(text) + " ")
	if len(runes) < 3 {
		return vec
	}

	for i := 0; i+3 <= len(runes); i++ {
		f := fnv.New32a()
		f.Write([]byte(string(runes[i : i+3])))
		sum := f.Sum32()
		// the top bit picks the sign so unrelated trigrams tend to cancel
		if sum&(1<<31) != 0 {
			vec[sum%uint32(h.dim)] -= 1
		} else {
			vec[sum%uint32(h.dim)] += 1
		}
	}
	return vec
}

func (h *Hashing) EmbedForStorage(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = h.embed(t)
	}
	return out, nil
}

func (h *Hashing) EmbedForSearch(_ context.Context, query string) ([]float32, error) {
	return h.embed(query), nil
}
