// internal/service/service.go
package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/MereWhiplash/fieldnorm/internal/extract"
	"github.com/MereWhiplash/fieldnorm/internal/llm"
	"github.com/MereWhiplash/fieldnorm/internal/pipeline"
	"github.com/MereWhiplash/fieldnorm/internal/types"
)

var (
	// ErrInvalidInput is returned for an unusable request
	ErrInvalidInput = errors.New("invalid input data")
	// ErrInvalidModelOutput is returned when the model reply is not valid JSON
	ErrInvalidModelOutput = errors.New("model returned invalid JSON")
	// ErrNoModel is returned by Normalize when no chat client is configured
	ErrNoModel = errors.New("no chat model configured")
)

// ModelOutputError carries the raw reply the model produced
type ModelOutputError struct {
	Raw string
	Err error
}

func (e *ModelOutputError) Error() string {
	return fmt.Sprintf("%s: %s", ErrInvalidModelOutput, e.Raw)
}

func (e *ModelOutputError) Unwrap() error {
	return e.Err
}

// Is matches ErrInvalidModelOutput
func (e *ModelOutputError) Is(target error) bool {
	return target == ErrInvalidModelOutput
}

// NormalizeResult is the parsed model reply together with its raw text
type NormalizeResult struct {
	Result *types.Result
	Raw    string
	Output *pipeline.Output
}

// Service contains the business logic for field normalization
type Service struct {
	pipeline *pipeline.Pipeline
	chat     llm.Client
	glossary []types.GlossaryEntry
	logger   *slog.Logger
}

// New creates a new Service. chat may be nil when only retrieval is needed.
func New(p *pipeline.Pipeline, chat llm.Client, glossary []types.GlossaryEntry, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		pipeline: p,
		chat:     chat,
		glossary: glossary,
		logger:   logger,
	}
}

// Glossary returns the indexed glossary entries
func (s *Service) Glossary() []types.GlossaryEntry {
	return s.glossary
}

// Retrieve runs retrieval for fields and returns the assembled context and prompt
func (s *Service) Retrieve(ctx context.Context, fields []string) (*pipeline.Output, error) {
	if err := validateFields(fields); err != nil {
		return nil, err
	}
	return s.pipeline.Run(ctx, fields)
}

// Prompt runs retrieval and builds the model messages without calling the model
func (s *Service) Prompt(ctx context.Context, fields []string, samplesCSV string) (*pipeline.Output, error) {
	if err := validateFields(fields); err != nil {
		return nil, err
	}
	return s.pipeline.RunWithSamples(ctx, fields, samplesCSV)
}

// Normalize asks the model to normalize the table's column names, using the
// retrieved glossary context and the table rows as samples.
func (s *Service) Normalize(ctx context.Context, table *types.Table) (*NormalizeResult, error) {
	if err := table.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if s.chat == nil {
		return nil, ErrNoModel
	}

	samples, err := SamplesCSV(table)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	fields := table.Names()
	out, err := s.pipeline.RunWithSamples(ctx, fields, samples)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve context: %w", err)
	}
	s.logger.Debug("assembled context", "fields", len(fields), "context", out.ContextText)

	start := time.Now()
	raw, err := s.chat.Chat(ctx, out.Messages)
	if err != nil {
		return nil, err
	}
	s.logger.Info("model call finished", "fields", len(fields), "duration", time.Since(start))

	result, err := extract.Normalizations(raw)
	if err != nil {
		return nil, &ModelOutputError{Raw: raw, Err: err}
	}

	return &NormalizeResult{Result: result, Raw: raw, Output: out}, nil
}

// NormalizeFields normalizes bare field names without sample data
func (s *Service) NormalizeFields(ctx context.Context, fields []string) (*NormalizeResult, error) {
	if err := validateFields(fields); err != nil {
		return nil, err
	}
	table := &types.Table{}
	for _, f := range fields {
		if table.HasColumn(f) {
			continue
		}
		table.Columns = append(table.Columns, types.Column{Name: f})
	}
	return s.Normalize(ctx, table)
}

// SamplesCSV renders the table as CSV with a header row. A table without rows gives "".
func SamplesCSV(table *types.Table) (string, error) {
	if len(table.Columns) == 0 || len(table.Columns[0].Values) == 0 {
		return "", nil
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(table.Names()); err != nil {
		return "", err
	}

	rows := len(table.Columns[0].Values)
	record := make([]string, len(table.Columns))
	for r := 0; r < rows; r++ {
		for c, col := range table.Columns {
			record[c] = formatValue(col.Values[r])
		}
		if err := w.Write(record); err != nil {
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func formatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case json.Number:
		return x.String()
	case bool:
		if x {
			return "True"
		}
		return "False"
	default:
		b, err := json.Marshal(x)
		if err != nil {
			return fmt.Sprint(x)
		}
		return string(b)
	}
}

func validateFields(fields []string) error {
	if len(fields) == 0 {
		return fmt.Errorf("%w: no fields given", ErrInvalidInput)
	}
	for i, f := range fields {
		if strings.TrimSpace(f) == "" {
			return fmt.Errorf("%w: field %d is empty", ErrInvalidInput, i)
		}
	}
	return nil
}
