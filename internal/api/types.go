// internal/api/types.go
package api

import "github.com/MereWhiplash/fieldnorm/internal/apitypes"

// Re-export types from internal/apitypes so handlers read naturally.
type (
	NormalizeRequest = apitypes.NormalizeRequest
	RetrieveRequest  = apitypes.RetrieveRequest
	RetrieveResponse = apitypes.RetrieveResponse
	FieldResult      = apitypes.FieldResult
	GlossaryResponse = apitypes.GlossaryResponse
	ErrorResponse    = apitypes.ErrorResponse
	HealthResponse   = apitypes.HealthResponse
)
