package httpx

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"
)

// ErrorResponse is the JSON body of every non-2xx response.
type ErrorResponse struct {
	Error   string            `json:"error"`
	Details string            `json:"details,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// WriteJSON writes v with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// WriteData wraps payload in the {"data": ...} envelope used by list and detail endpoints.
func WriteData(w http.ResponseWriter, status int, payload any) {
	WriteJSON(w, status, map[string]any{"data": payload})
}

// WriteError writes an error body. err may be nil.
func WriteError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	var verr *ValidationError
	if errors.As(err, &verr) {
		resp.Fields = verr.Fields
	}
	WriteJSON(w, status, resp)
}

// ErrorMapping pairs a sentinel error with the status and message it maps to.
type ErrorMapping struct {
	Err     error
	Status  int
	Message string
}

// WriteDomainError maps err through mappings. Validation errors become 400.
// Anything unmapped is logged and reported as 500 without details.
func WriteDomainError(w http.ResponseWriter, logger *zap.Logger, err error, mappings ...ErrorMapping) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		WriteError(w, http.StatusBadRequest, "validation failed", verr)
		return
	}
	for _, m := range mappings {
		if errors.Is(err, m.Err) {
			msg := m.Message
			if msg == "" {
				msg = m.Err.Error()
			}
			WriteError(w, m.Status, msg, nil)
			return
		}
	}
	if logger != nil {
		logger.Error("request failed", zap.Error(err))
	}
	WriteError(w, http.StatusInternalServerError, "internal server error", nil)
}
