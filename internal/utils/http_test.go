package utils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mlevkov/lockstep/models"
)

func TestWriteJSON(t *testing.T) {
	tests := []struct {
		name       string
		data       any
		statusCode int
		wantBody   string
	}{
		{
			name:       "map payload",
			data:       map[string]string{"status": "ok"},
			statusCode: http.StatusOK,
			wantBody:   `{"status":"ok"}`,
		},
		{
			name:       "domain struct",
			data:       models.LoginResponse{Token: "abc"},
			statusCode: http.StatusOK,
			wantBody:   `{"token":"abc"}`,
		},
		{
			name:       "nil payload",
			data:       nil,
			statusCode: http.StatusOK,
			wantBody:   `null`,
		},
		{
			name:       "error status code",
			data:       map[string]string{"error": "not found"},
			statusCode: http.StatusNotFound,
			wantBody:   `{"error":"not found"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()

			n, err := WriteJSON(w, tt.data, tt.statusCode)
			require.NoError(t, err)

			assert.Equal(t, tt.statusCode, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
			assert.JSONEq(t, tt.wantBody, w.Body.String())
			assert.Equal(t, len(w.Body.String()), n)
		})
	}
}

func TestWriteJSON_PushResponse(t *testing.T) {
	w := httptest.NewRecorder()
	resp := models.PushResponse{Applied: []string{"n1"}, SyncToken: "7"}

	_, err := WriteJSON(w, resp, http.StatusOK)
	require.NoError(t, err)

	var got models.PushResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, resp, got)
}

func TestWriteJSON_UnserializableData(t *testing.T) {
	w := httptest.NewRecorder()

	// канал не сериализуется в JSON
	_, err := WriteJSON(w, make(chan int), http.StatusOK)

	require.Error(t, err)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
