package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/cleared-dev/cashbook/internal/engine"
	"github.com/cleared-dev/cashbook/internal/export"
	"github.com/cleared-dev/cashbook/internal/logger"
	"github.com/cleared-dev/cashbook/internal/store"
)

type errorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	RequestID string `json:"request_id,omitempty"`
}

// writeError writes a JSON error body with the given status.
func writeError(w http.ResponseWriter, r *http.Request, message, code string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	resp := errorResponse{
		Error:     message,
		Code:      code,
		RequestID: requestIDFromContext(r.Context()),
	}
	_ = json.NewEncoder(w).Encode(resp)
}

// writeJSON writes a JSON response with status 200.
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// writeServiceError maps engine and store errors to HTTP statuses.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, r, err.Error(), "NOT_FOUND", http.StatusNotFound)
	case errors.Is(err, engine.ErrInvalidPeriod):
		writeError(w, r, err.Error(), "BAD_REQUEST", http.StatusBadRequest)
	case errors.Is(err, export.ErrUnsupported):
		writeError(w, r, err.Error(), "UNSUPPORTED_FORMAT", http.StatusBadRequest)
	case errors.Is(err, engine.ErrRowCapExceeded):
		writeError(w, r, err.Error(), "ROW_CAP_EXCEEDED", http.StatusUnprocessableEntity)
	default:
		log := logger.FromContext(r.Context())
		log.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		writeError(w, r, "internal server error", "INTERNAL_ERROR", http.StatusInternalServerError)
	}
}
