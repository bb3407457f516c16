// internal/api/handlers.go
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/MereWhiplash/fieldnorm/internal/service"
)

// Handlers holds HTTP handler dependencies
type Handlers struct {
	svc         *service.Service
	healthCheck func() error
}

// NewHandlers creates new API handlers
func NewHandlers(svc *service.Service) *Handlers {
	return &Handlers{svc: svc}
}

// SetHealthCheck sets a function reporting whether dependencies are reachable
func (h *Handlers) SetHealthCheck(fn func() error) {
	h.healthCheck = fn
}

func (h *Handlers) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (h *Handlers) respondError(w http.ResponseWriter, status int, msg string) {
	h.respondJSON(w, status, ErrorResponse{Error: msg, Detail: msg})
}

// decodeBody reports a decode failure itself and returns false
func (h *Handlers) decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.respondError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		h.respondError(w, http.StatusBadRequest, fmt.Sprintf("Invalid input data: %v", err))
		return false
	}
	return true
}

// Health handles GET /health
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	if h.healthCheck != nil {
		if err := h.healthCheck(); err != nil {
			h.respondJSON(w, http.StatusServiceUnavailable, HealthResponse{Status: "unhealthy"})
			return
		}
	}
	h.respondJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// Normalize handles POST /api/normalize
func (h *Handlers) Normalize(w http.ResponseWriter, r *http.Request) {
	var req NormalizeRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	if req.Data == nil {
		h.respondError(w, http.StatusBadRequest, "Invalid input data: data is required")
		return
	}

	res, err := h.svc.Normalize(r.Context(), req.Data)
	switch {
	case err == nil:
	case errors.Is(err, service.ErrInvalidInput):
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, service.ErrInvalidModelOutput):
		h.respondError(w, http.StatusBadGateway, err.Error())
		return
	default:
		h.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.respondJSON(w, http.StatusOK, res.Result)
}

// Retrieve handles POST /api/retrieve
func (h *Handlers) Retrieve(w http.ResponseWriter, r *http.Request) {
	var req RetrieveRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	out, err := h.svc.Retrieve(r.Context(), req.Fields)
	if err != nil {
		if errors.Is(err, service.ErrInvalidInput) {
			h.respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	resp := RetrieveResponse{
		Fields:  out.FieldResults(),
		Context: out.ContextText,
	}

	h.respondJSON(w, http.StatusOK, resp)
}

// Glossary handles GET /api/glossary
func (h *Handlers) Glossary(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, GlossaryResponse{Entries: h.svc.Glossary()})
}
