package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/benvon/careerontrack/internal/apperr"
	"github.com/benvon/careerontrack/internal/models"
)

const maxErrorMessageLength = 200

// respondJSON sends data as the JSON response body
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// sanitizeErrorMessage keeps client-facing messages short
func sanitizeErrorMessage(message string) string {
	if len(message) > maxErrorMessageLength {
		return message[:maxErrorMessageLength] + "..."
	}
	return message
}

// respondJSONError sends an error body with a human message and a machine-readable code
func respondJSONError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, models.ErrorResponse{
		Error: sanitizeErrorMessage(message),
		Code:  code,
	})
}

// respondValidationError answers 400 for a rejected field
func respondValidationError(w http.ResponseWriter, err error) {
	var v *apperr.ValidationError
	if !errors.As(err, &v) {
		respondJSONError(w, http.StatusBadRequest, models.ErrCodeValidation, "Validation failed")
		return
	}
	respondJSON(w, http.StatusBadRequest, models.ErrorResponse{
		Error: sanitizeErrorMessage(v.Message),
		Code:  models.ErrCodeValidation,
		Field: v.Field,
	})
}

// decodeJSON reads the request body into dst. It answers the request and
// returns false when the body is missing, malformed or too large.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil {
		return true
	}

	var maxBytesErr *http.MaxBytesError
	switch {
	case errors.As(err, &maxBytesErr):
		respondJSONError(w, http.StatusRequestEntityTooLarge, models.ErrCodeTooLarge,
			fmt.Sprintf("Request body exceeds maximum size of %d bytes", maxBytesErr.Limit))
	case errors.Is(err, io.EOF):
		respondJSONError(w, http.StatusBadRequest, models.ErrCodeBadRequest, "Request body is required")
	default:
		respondJSONError(w, http.StatusBadRequest, models.ErrCodeBadRequest, "Invalid request body")
	}
	return false
}
