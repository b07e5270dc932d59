package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"backoffice/internal/app"
	"backoffice/internal/core"
)

type errorResponse struct {
	Error     string   `json:"error"`
	Code      string   `json:"code"`
	Messages  []string `json:"messages,omitempty"`
	RequestID string   `json:"request_id,omitempty"`
}

// writeError writes a structured JSON error response.
func writeError(w http.ResponseWriter, r *http.Request, message, code string, status int) {
	writeErrorBody(w, status, errorResponse{
		Error:     message,
		Code:      code,
		RequestID: requestIDFromContext(r.Context()),
	})
}

func writeErrorBody(w http.ResponseWriter, status int, resp errorResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

// writeServiceError maps an application error to its HTTP status: validation failures
// to 422 with every message, missing records to 404, status conflicts to 409, bad
// credentials to 401 and an unconfigured extractor to 501. Anything else is logged and
// returned as 500.
func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	reqID := requestIDFromContext(r.Context())
	if ve, ok := core.AsValidationError(err); ok {
		writeErrorBody(w, http.StatusUnprocessableEntity, errorResponse{
			Error:     "validation failed",
			Code:      "VALIDATION_FAILED",
			Messages:  ve.Messages,
			RequestID: reqID,
		})
		return
	}
	switch {
	case errors.Is(err, core.ErrNotFound):
		writeError(w, r, err.Error(), "NOT_FOUND", http.StatusNotFound)
	case errors.Is(err, core.ErrInvalidState):
		writeError(w, r, err.Error(), "CONFLICT", http.StatusConflict)
	case errors.Is(err, core.ErrInvalidCredentials):
		writeError(w, r, err.Error(), "UNAUTHORIZED", http.StatusUnauthorized)
	case errors.Is(err, app.ErrAINotConfigured):
		writeError(w, r, err.Error(), "NOT_IMPLEMENTED", http.StatusNotImplemented)
	default:
		h.logger.Error().Err(err).Str("request_id", reqID).Str("path", r.URL.Path).Msg("request failed")
		writeError(w, r, "internal server error", "INTERNAL_ERROR", http.StatusInternalServerError)
	}
}

// writeJSON writes a JSON response with status 200.
func writeJSON(w http.ResponseWriter, v any) {
	writeJSONStatus(w, http.StatusOK, v)
}

// writeJSONStatus writes a JSON response with the given status.
func writeJSONStatus(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
