package utils

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWriteJSON(t *testing.T) {
	w := httptest.NewRecorder()
	err := WriteJSON(w, http.StatusOK, map[string]string{"hello": "world"})

	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"hello":"world"}`, w.Body.String())
}

func TestWriteJSONNilBody(t *testing.T) {
	w := httptest.NewRecorder()
	err := WriteJSON(w, http.StatusNoContent, nil)

	assert.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestWriteError(t *testing.T) {
	w := httptest.NewRecorder()
	_ = WriteError(w, http.StatusForbidden, "Insufficient scope")

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.JSONEq(t, `{"error":"Insufficient scope"}`, w.Body.String())
}

func TestErrorWriters(t *testing.T) {
	tests := []struct {
		name       string
		write      func(w http.ResponseWriter) error
		wantStatus int
		wantBody   string
	}{
		{
			name:       "bad request",
			write:      func(w http.ResponseWriter) error { return WriteBadRequest(w, "Missing employeeName or employeeId") },
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"error":"Missing employeeName or employeeId"}`,
		},
		{
			name:       "unauthorized default reason",
			write:      func(w http.ResponseWriter) error { return WriteUnauthorized(w, "") },
			wantStatus: http.StatusUnauthorized,
			wantBody:   `{"error":"Authentication required"}`,
		},
		{
			name:       "forbidden default reason",
			write:      func(w http.ResponseWriter) error { return WriteForbidden(w, "") },
			wantStatus: http.StatusForbidden,
			wantBody:   `{"error":"Access forbidden"}`,
		},
		{
			name:       "conflict",
			write:      func(w http.ResponseWriter) error { return WriteConflict(w, "Employee ID already exists") },
			wantStatus: http.StatusConflict,
			wantBody:   `{"error":"Employee ID already exists"}`,
		},
		{
			name:       "internal error default reason",
			write:      func(w http.ResponseWriter) error { return WriteInternalServerError(w, "") },
			wantStatus: http.StatusInternalServerError,
			wantBody:   `{"error":"Internal server error"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			assert.NoError(t, tt.write(w))
			assert.Equal(t, tt.wantStatus, w.Code)
			assert.JSONEq(t, tt.wantBody, w.Body.String())
		})
	}
}
