// Package retriever finds the glossary abbreviations closest to a field name.
package retriever

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/MereWhiplash/fieldnorm/internal/embedder"
	"github.com/MereWhiplash/fieldnorm/internal/index"
	"github.com/MereWhiplash/fieldnorm/internal/types"
)

// ErrEmptyGlossary is returned when there is nothing to index
var ErrEmptyGlossary = errors.New("glossary is empty")

// Options controls neighbor search
type Options struct {
	// K is the number of neighbors stored per field
	K int
	// Threshold is the exclusive lower bound a neighbor's similarity must
	// exceed to appear in the returned matches. Scores are float32 and are
	// widened before the comparison, so a score of float32(0.6) passes 0.6.
	Threshold float64
}

// DefaultOptions returns K=2, Threshold=0.6
func DefaultOptions() Options {
	return Options{K: 2, Threshold: 0.6}
}

// Retriever searches a glossary index built from lower-cased abbreviations
type Retriever struct {
	emb     embedder.Embedder
	idx     index.Index
	entries []types.GlossaryEntry
	opts    Options
}

// New embeds every abbreviation and builds idx from the unit-length vectors.
// opts is used as given; callers wanting the defaults pass DefaultOptions().
func New(ctx context.Context, emb embedder.Embedder, idx index.Index, entries []types.GlossaryEntry, opts Options) (*Retriever, error) {
	if len(entries) == 0 {
		return nil, ErrEmptyGlossary
	}
	if opts.K <= 0 {
		return nil, fmt.Errorf("k must be positive, got %d", opts.K)
	}

	texts := make([]string, len(entries))
	for i, e := range entries {
		texts[i] = strings.ToLower(e.Abbr)
	}

	vecs, err := emb.EmbedForStorage(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("failed to embed glossary: %w", err)
	}
	if len(vecs) != len(entries) {
		return nil, fmt.Errorf("embedder returned %d vectors for %d entries", len(vecs), len(entries))
	}

	items := make([]index.Item, len(vecs))
	for i, v := range vecs {
		items[i] = index.Item{ID: i, Vector: index.NormalizeL2(v)}
	}
	if err := idx.Build(ctx, items); err != nil {
		return nil, fmt.Errorf("failed to build index: %w", err)
	}

	return &Retriever{
		emb:     emb,
		idx:     idx,
		entries: entries,
		opts:    opts,
	}, nil
}

// Options returns the effective options
func (r *Retriever) Options() Options {
	return r.opts
}

// Entries returns the indexed glossary
func (r *Retriever) Entries() []types.GlossaryEntry {
	return r.entries
}

// Lookup returns the K nearest glossary entries for field, best first.
// Neighbors carry the abbreviation as written in the glossary.
func (r *Retriever) Lookup(ctx context.Context, field string) (types.Neighbors, error) {
	vec, err := r.emb.EmbedForSearch(ctx, NormalizeQuery(field))
	if err != nil {
		return nil, fmt.Errorf("failed to embed field %q: %w", field, err)
	}

	hits, err := r.idx.Search(ctx, index.NormalizeL2(vec), r.opts.K)
	if err != nil {
		return nil, fmt.Errorf("failed to search index: %w", err)
	}

	neighbors := make(types.Neighbors, 0, len(hits))
	for _, h := range hits {
		if h.ID < 0 || h.ID >= len(r.entries) {
			return nil, fmt.Errorf("index returned unknown entry %d", h.ID)
		}
		e := r.entries[h.ID]
		neighbors = append(neighbors, types.Neighbor{Abbr: e.Abbr, Meaning: e.Meaning, Score: h.Score})
	}
	return neighbors, nil
}

// Retrieve records all K neighbors of field in agg, whatever their score, and
// returns "abbr→meaning" for the neighbors whose similarity exceeds the threshold.
func (r *Retriever) Retrieve(ctx context.Context, field string, agg *types.FieldContext) ([]string, error) {
	neighbors, err := r.Lookup(ctx, field)
	if err != nil {
		return nil, err
	}

	if agg != nil {
		agg.Set(field, neighbors)
	}

	matches := []string{}
	for _, n := range neighbors {
		if float64(n.Score) > r.opts.Threshold {
			matches = append(matches, n.String())
		}
	}
	return matches, nil
}

// NormalizeQuery applies NFKC, trims surrounding space and lower-cases
func NormalizeQuery(field string) string {
	return strings.ToLower(strings.TrimSpace(norm.NFKC.String(field)))
}
