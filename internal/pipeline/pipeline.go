// Package pipeline runs retrieval over a batch of fields and assembles the prompt.
package pipeline

import (
	"context"
	"strings"

	"github.com/MereWhiplash/fieldnorm/internal/apitypes"
	"github.com/MereWhiplash/fieldnorm/internal/llm"
	"github.com/MereWhiplash/fieldnorm/internal/prompt"
	"github.com/MereWhiplash/fieldnorm/internal/types"
)

// Retriever records a field's neighbors in agg and returns its matches
type Retriever interface {
	Retrieve(ctx context.Context, field string, agg *types.FieldContext) ([]string, error)
}

// PromptBuilder turns fields and the context block into chat messages
type PromptBuilder func(fields []string, contextText, samplesCSV string) []llm.Message

// FieldMatch holds the thresholded matches for one input field
type FieldMatch struct {
	Field   string   `json:"field"`
	Matches []string `json:"matches"`
}

// Output is everything one run produces
type Output struct {
	Context     *types.FieldContext
	ContextText string
	Matches     []FieldMatch
	Messages    []llm.Message
}

// Pipeline wires a retriever to a prompt builder
type Pipeline struct {
	retriever Retriever
	build     PromptBuilder
}

// New creates a Pipeline. A nil build uses prompt.Build.
func New(r Retriever, build PromptBuilder) *Pipeline {
	if build == nil {
		build = prompt.Build
	}
	return &Pipeline{retriever: r, build: build}
}

// Run retrieves every field in order into one aggregate context and builds the messages.
func (p *Pipeline) Run(ctx context.Context, fields []string) (*Output, error) {
	return p.RunWithSamples(ctx, fields, "")
}

// RunWithSamples is Run with sample rows passed through to the prompt
func (p *Pipeline) RunWithSamples(ctx context.Context, fields []string, samplesCSV string) (*Output, error) {
	agg := types.NewFieldContext()
	matches := make([]FieldMatch, 0, len(fields))

	for _, f := range fields {
		m, err := p.retriever.Retrieve(ctx, f, agg)
		if err != nil {
			return nil, err
		}
		matches = append(matches, FieldMatch{Field: f, Matches: m})
	}

	text := FormatContext(agg)
	return &Output{
		Context:     agg,
		ContextText: text,
		Matches:     matches,
		Messages:    p.build(agg.Keys(), text, samplesCSV),
	}, nil
}

// FieldResults pairs each field's thresholded matches with its full neighbor list
func (o *Output) FieldResults() []apitypes.FieldResult {
	results := make([]apitypes.FieldResult, 0, len(o.Matches))
	for _, m := range o.Matches {
		neighbors, _ := o.Context.Get(m.Field)
		matches := m.Matches
		if matches == nil {
			matches = []string{}
		}
		results = append(results, apitypes.FieldResult{
			Field:     m.Field,
			Neighbors: neighbors,
			Matches:   matches,
		})
	}
	return results
}

// FormatContext renders one "field : {'abbr': 'meaning', ...}" line per field
func FormatContext(agg *types.FieldContext) string {
	var b strings.Builder
	for _, k := range agg.Keys() {
		ns, _ := agg.Get(k)
		b.WriteString(k)
		b.WriteString(" : ")
		b.WriteString(ns.Dict())
		b.WriteByte('\n')
	}
	return b.String()
}
