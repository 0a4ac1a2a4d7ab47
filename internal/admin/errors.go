package admin

import (
	"encoding/json"
	"net/http"
)

// Standard error codes for operator API responses.
const (
	// ErrCodeInvalidRequest indicates a malformed request body or parameter.
	ErrCodeInvalidRequest = "invalid_request"

	// ErrCodeInvalidCredentials indicates a missing or invalid operator token.
	ErrCodeInvalidCredentials = "invalid_credentials"

	// ErrCodeNotFound indicates a resource was not found.
	ErrCodeNotFound = "not_found"

	// ErrCodeUnknownSetting indicates a settings key outside the recognized set.
	ErrCodeUnknownSetting = "unknown_setting"

	// ErrCodeInternalError indicates a server error.
	ErrCodeInternalError = "internal_error"
)

// APIError is the standard error response format for the operator API.
type APIError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Hint    string `json:"hint,omitempty"`
}

// WriteError writes a JSON error response.
func WriteError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck // Response write errors are unrecoverable
	json.NewEncoder(w).Encode(APIError{Error: code, Message: message})
}

// writeJSON writes a JSON response body with the given status code.
func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck // Response write errors are unrecoverable
	json.NewEncoder(w).Encode(body)
}
