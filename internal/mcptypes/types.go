// internal/mcptypes/types.go
// Package mcptypes contains shared MCP tool input/output types.
// These are used by both the direct MCP server (tools) and the shim proxy.
package mcptypes

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/MereWhiplash/fieldnorm/internal/apitypes"
	"github.com/MereWhiplash/fieldnorm/internal/types"
)

// RetrieveInput defines the input schema for fn_retrieve
type RetrieveInput struct {
	Fields []string `json:"fields" jsonschema:"field names to look up in the glossary, e.g. SSW or GG"`
}

// RetrieveOutput defines the output schema for fn_retrieve
type RetrieveOutput struct {
	Fields  []apitypes.FieldResult `json:"fields"`
	Context string                 `json:"context"`
}

// NormalizeInput defines the input schema for fn_normalize
type NormalizeInput struct {
	Fields  []string   `json:"fields" jsonschema:"abbreviated field names to normalize"`
	Samples [][]string `json:"samples,omitempty" jsonschema:"optional sample rows with one value per field in field order"`
}

// FieldNormalization is one field's suggested names
type FieldNormalization struct {
	Field        string   `json:"field"`
	Primary      string   `json:"primary"`
	Alternatives []string `json:"alternatives"`
}

// NormalizeOutput defines the output schema for fn_normalize
type NormalizeOutput struct {
	Normalizations []FieldNormalization `json:"normalizations"`
}

// GlossaryInput defines the input schema for fn_glossary
type GlossaryInput struct {
	Query string `json:"query,omitempty" jsonschema:"optional case-insensitive filter on abbreviation or meaning"`
}

// GlossaryOutput defines the output schema for fn_glossary
type GlossaryOutput struct {
	Entries []types.GlossaryEntry `json:"entries"`
}

// Table builds sample data from the input. Every row must have one value per field.
func (in NormalizeInput) Table() (*types.Table, error) {
	if len(in.Fields) == 0 {
		return nil, fmt.Errorf("fields is required")
	}
	table := &types.Table{}
	for _, f := range in.Fields {
		if table.HasColumn(f) {
			return nil, fmt.Errorf("duplicate field %q", f)
		}
		table.Columns = append(table.Columns, types.Column{Name: f, Values: []any{}})
	}
	for i, row := range in.Samples {
		if len(row) != len(in.Fields) {
			return nil, fmt.Errorf("sample row %d has %d values, want %d", i, len(row), len(in.Fields))
		}
		for c, v := range row {
			table.Columns[c].Values = append(table.Columns[c].Values, v)
		}
	}
	return table, nil
}

// Normalizations flattens a result in its order
func Normalizations(res *types.Result) []FieldNormalization {
	out := make([]FieldNormalization, 0, res.Len())
	for _, k := range res.Keys() {
		n, _ := res.Get(k)
		alts := n.Alternatives
		if alts == nil {
			alts = []string{}
		}
		out = append(out, FieldNormalization{Field: k, Primary: n.Primary, Alternatives: alts})
	}
	return out
}

// FilterGlossary returns entries whose abbreviation or meaning contains query
func FilterGlossary(entries []types.GlossaryEntry, query string) []types.GlossaryEntry {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]types.GlossaryEntry, 0, len(entries))
	for _, e := range entries {
		if q == "" || strings.Contains(strings.ToLower(e.Abbr), q) || strings.Contains(strings.ToLower(e.Meaning), q) {
			out = append(out, e)
		}
	}
	return out
}

// FormatRetrieve renders retrieval results as text for the tool response
func FormatRetrieve(out RetrieveOutput) string {
	var b strings.Builder
	for _, f := range out.Fields {
		if len(f.Matches) == 0 {
			fmt.Fprintf(&b, "%s: no confident glossary match\n", f.Field)
			continue
		}
		fmt.Fprintf(&b, "%s: %s\n", f.Field, strings.Join(f.Matches, ", "))
	}
	b.WriteString("\nContext:\n")
	b.WriteString(out.Context)
	return b.String()
}

// FormatJSON renders v as indented JSON for the tool response
func FormatJSON(v interface{}) (string, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to format response: %w", err)
	}
	return string(b), nil
}

// TextResult creates a successful MCP result with text content
func TextResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}

// ErrorResult creates an error MCP result
func ErrorResult(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: msg}},
		IsError: true,
	}
}

// Tool definitions (shared between server and shim)
var (
	RetrieveTool = &mcp.Tool{
		Name:        "fn_retrieve",
		Description: "Look up the closest German clinical abbreviations for field names",
	}

	NormalizeTool = &mcp.Tool{
		Name:        "fn_normalize",
		Description: "Normalize abbreviated clinical field names into English snake_case identifiers",
	}

	GlossaryTool = &mcp.Tool{
		Name:        "fn_glossary",
		Description: "List the abbreviation glossary, optionally filtered",
	}
)
