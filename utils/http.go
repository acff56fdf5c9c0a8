package utils

import (
	"encoding/json"
	"net/http"
)

// ErrorResponse carries a human-readable failure reason
type ErrorResponse struct {
	Error string `json:"error"`
}

// WriteJSON writes a JSON response with the given status code
func WriteJSON(w http.ResponseWriter, status int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if data == nil {
		return nil
	}

	return json.NewEncoder(w).Encode(data)
}

// WriteError writes an error response with the given status and reason
func WriteError(w http.ResponseWriter, status int, reason string) error {
	return WriteJSON(w, status, ErrorResponse{Error: reason})
}

// WriteBadRequest writes a 400 Bad Request response
func WriteBadRequest(w http.ResponseWriter, reason string) error {
	return WriteError(w, http.StatusBadRequest, reason)
}

// WriteUnauthorized writes a 401 Unauthorized response
func WriteUnauthorized(w http.ResponseWriter, reason string) error {
	if reason == "" {
		reason = "Authentication required"
	}
	return WriteError(w, http.StatusUnauthorized, reason)
}

// WriteForbidden writes a 403 Forbidden response
func WriteForbidden(w http.ResponseWriter, reason string) error {
	if reason == "" {
		reason = "Access forbidden"
	}
	return WriteError(w, http.StatusForbidden, reason)
}

// WriteConflict writes a 409 Conflict response
func WriteConflict(w http.ResponseWriter, reason string) error {
	return WriteError(w, http.StatusConflict, reason)
}

// WriteInternalServerError writes a 500 Internal Server Error response
func WriteInternalServerError(w http.ResponseWriter, reason string) error {
	if reason == "" {
		reason = "Internal server error"
	}
	return WriteError(w, http.StatusInternalServerError, reason)
}
