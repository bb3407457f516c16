package shim

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/MereWhiplash/fieldnorm/internal/apitypes"
	"github.com/MereWhiplash/fieldnorm/internal/client"
	"github.com/MereWhiplash/fieldnorm/internal/mcptypes"
	"github.com/MereWhiplash/fieldnorm/internal/types"
)

// APIClient is the subset of client.Client the shim needs
type APIClient interface {
	Retrieve(ctx context.Context, fields []string) (*apitypes.RetrieveResponse, error)
	Normalize(ctx context.Context, table *types.Table) (*types.Result, error)
	Glossary(ctx context.Context) ([]types.GlossaryEntry, error)
}

// Handler holds shim dependencies
type Handler struct {
	client APIClient
}

// NewHandler creates a new shim handler
func NewHandler(c APIClient) *Handler {
	return &Handler{client: c}
}

// Register adds all fieldnorm tools to the MCP server
func Register(server *mcp.Server, h *Handler) {
	mcp.AddTool(server, mcptypes.RetrieveTool, h.Retrieve)
	mcp.AddTool(server, mcptypes.NormalizeTool, h.Normalize)
	mcp.AddTool(server, mcptypes.GlossaryTool, h.Glossary)
}

func (h *Handler) Retrieve(ctx context.Context, req *mcp.CallToolRequest, input mcptypes.RetrieveInput) (*mcp.CallToolResult, mcptypes.RetrieveOutput, error) {
	if len(input.Fields) == 0 {
		return mcptypes.ErrorResult("fields is required"), mcptypes.RetrieveOutput{}, nil
	}

	resp, err := h.client.Retrieve(ctx, input.Fields)
	if err != nil {
		return mcptypes.ErrorResult(fmt.Sprintf("failed to retrieve: %v", err)), mcptypes.RetrieveOutput{}, nil
	}

	output := mcptypes.RetrieveOutput{Fields: resp.Fields, Context: resp.Context}
	if output.Fields == nil {
		output.Fields = []apitypes.FieldResult{}
	}
	return mcptypes.TextResult(mcptypes.FormatRetrieve(output)), output, nil
}

func (h *Handler) Normalize(ctx context.Context, req *mcp.CallToolRequest, input mcptypes.NormalizeInput) (*mcp.CallToolResult, mcptypes.NormalizeOutput, error) {
	table, err := input.Table()
	if err != nil {
		return mcptypes.ErrorResult(err.Error()), mcptypes.NormalizeOutput{}, nil
	}

	res, err := h.client.Normalize(ctx, table)
	if err != nil {
		var apiErr *client.APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusBadGateway {
			return mcptypes.ErrorResult(apiErr.Message), mcptypes.NormalizeOutput{}, nil
		}
		return mcptypes.ErrorResult(fmt.Sprintf("failed to normalize: %v", err)), mcptypes.NormalizeOutput{}, nil
	}

	text, _ := mcptypes.FormatJSON(res)
	return mcptypes.TextResult(text), mcptypes.NormalizeOutput{Normalizations: mcptypes.Normalizations(res)}, nil
}

func (h *Handler) Glossary(ctx context.Context, req *mcp.CallToolRequest, input mcptypes.GlossaryInput) (*mcp.CallToolResult, mcptypes.GlossaryOutput, error) {
	all, err := h.client.Glossary(ctx)
	if err != nil {
		return mcptypes.ErrorResult(fmt.Sprintf("failed to fetch glossary: %v", err)), mcptypes.GlossaryOutput{}, nil
	}

	entries := mcptypes.FilterGlossary(all, input.Query)
	if len(entries) == 0 {
		return mcptypes.TextResult("No glossary entries found."), mcptypes.GlossaryOutput{Entries: []types.GlossaryEntry{}}, nil
	}

	text, _ := mcptypes.FormatJSON(entries)
	return mcptypes.TextResult(text), mcptypes.GlossaryOutput{Entries: entries}, nil
}
