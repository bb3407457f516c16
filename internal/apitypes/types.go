// Package apitypes contains the HTTP API request and response bodies.
// It has no CGO dependencies so the client and shim can share it.
package apitypes

import "github.com/MereWhiplash/fieldnorm/internal/types"

// NormalizeRequest is the body of POST /api/normalize.
// Data maps column names to sample values, in column order.
type NormalizeRequest struct {
	Data *types.Table `json:"data"`
}

// RetrieveRequest is the body of POST /api/retrieve
type RetrieveRequest struct {
	Fields []string `json:"fields"`
}

// FieldResult is the retrieval outcome for one requested field
type FieldResult struct {
	Field     string          `json:"field"`
	Neighbors types.Neighbors `json:"neighbors"`
	Matches   []string        `json:"matches"`
}

// RetrieveResponse is the body returned by POST /api/retrieve
type RetrieveResponse struct {
	Fields  []FieldResult `json:"fields"`
	Context string        `json:"context"`
}

// GlossaryResponse is the body returned by GET /api/glossary
type GlossaryResponse struct {
	Entries []types.GlossaryEntry `json:"entries"`
}

// ErrorResponse is returned for every failed request. Detail repeats the
// message under the key FastAPI-style clients read.
type ErrorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

// HealthResponse is returned by GET /health
type HealthResponse struct {
	Status string `json:"status"`
}
