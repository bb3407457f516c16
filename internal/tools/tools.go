package tools

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/MereWhiplash/fieldnorm/internal/mcptypes"
	"github.com/MereWhiplash/fieldnorm/internal/pipeline"
	"github.com/MereWhiplash/fieldnorm/internal/service"
	"github.com/MereWhiplash/fieldnorm/internal/types"
)

// Service is what the tool handlers need from the service layer
type Service interface {
	Retrieve(ctx context.Context, fields []string) (*pipeline.Output, error)
	Normalize(ctx context.Context, table *types.Table) (*service.NormalizeResult, error)
	Glossary() []types.GlossaryEntry
}

// Handler holds dependencies for tool handlers
type Handler struct {
	svc Service
}

// NewHandler creates a new tool handler
func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

// Register adds all fieldnorm tools to the MCP server
func Register(server *mcp.Server, svc Service) {
	h := NewHandler(svc)

	mcp.AddTool(server, mcptypes.RetrieveTool, h.Retrieve)
	mcp.AddTool(server, mcptypes.NormalizeTool, h.Normalize)
	mcp.AddTool(server, mcptypes.GlossaryTool, h.Glossary)
}

func (h *Handler) Retrieve(ctx context.Context, req *mcp.CallToolRequest, input mcptypes.RetrieveInput) (*mcp.CallToolResult, mcptypes.RetrieveOutput, error) {
	if len(input.Fields) == 0 {
		return mcptypes.ErrorResult("fields is required"), mcptypes.RetrieveOutput{}, nil
	}

	out, err := h.svc.Retrieve(ctx, input.Fields)
	if err != nil {
		return mcptypes.ErrorResult(fmt.Sprintf("failed to retrieve: %v", err)), mcptypes.RetrieveOutput{}, nil
	}

	output := mcptypes.RetrieveOutput{
		Fields:  out.FieldResults(),
		Context: out.ContextText,
	}

	return mcptypes.TextResult(mcptypes.FormatRetrieve(output)), output, nil
}

func (h *Handler) Normalize(ctx context.Context, req *mcp.CallToolRequest, input mcptypes.NormalizeInput) (*mcp.CallToolResult, mcptypes.NormalizeOutput, error) {
	table, err := input.Table()
	if err != nil {
		return mcptypes.ErrorResult(err.Error()), mcptypes.NormalizeOutput{}, nil
	}

	res, err := h.svc.Normalize(ctx, table)
	if err != nil {
		var moe *service.ModelOutputError
		if errors.As(err, &moe) {
			return mcptypes.ErrorResult(moe.Error()), mcptypes.NormalizeOutput{}, nil
		}
		return mcptypes.ErrorResult(fmt.Sprintf("failed to normalize: %v", err)), mcptypes.NormalizeOutput{}, nil
	}

	output := mcptypes.NormalizeOutput{Normalizations: mcptypes.Normalizations(res.Result)}
	text, err := mcptypes.FormatJSON(res.Result)
	if err != nil {
		return mcptypes.ErrorResult(err.Error()), mcptypes.NormalizeOutput{}, nil
	}
	return mcptypes.TextResult(text), output, nil
}

func (h *Handler) Glossary(ctx context.Context, req *mcp.CallToolRequest, input mcptypes.GlossaryInput) (*mcp.CallToolResult, mcptypes.GlossaryOutput, error) {
	entries := mcptypes.FilterGlossary(h.svc.Glossary(), input.Query)
	if len(entries) == 0 {
		return mcptypes.TextResult("No glossary entries found."), mcptypes.GlossaryOutput{Entries: []types.GlossaryEntry{}}, nil
	}

	text, err := mcptypes.FormatJSON(entries)
	if err != nil {
		return mcptypes.ErrorResult(err.Error()), mcptypes.GlossaryOutput{}, nil
	}
	return mcptypes.TextResult(text), mcptypes.GlossaryOutput{Entries: entries}, nil
}
