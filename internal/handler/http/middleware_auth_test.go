package http

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mlevkov/lockstep/models"
)

func TestWithAuth_MissingHeader(t *testing.T) {
	server := newTestServer(t, nil, nil)

	req, err := http.NewRequest(http.MethodGet, server.URL+"/sync/changes", nil)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestWithAuth_MalformedHeader(t *testing.T) {
	server := newTestServer(t, nil, nil)

	tests := []struct {
		name   string
		header string
	}{
		{"no token part", "Bearer"},
		{"empty token", "Bearer "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := http.NewRequest(http.MethodGet, server.URL+"/sync/changes", nil)
			require.NoError(t, err)
			req.Header.Set("Authorization", tt.header)

			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		})
	}
}

func TestWithAuth_InvalidToken(t *testing.T) {
	auth := &stubAuthService{
		validateFn: func(_ context.Context, _ string) (models.Token, error) {
			return models.Token{}, errors.New("token is malformed")
		},
	}
	server := newTestServer(t, auth, nil)

	req, err := http.NewRequest(http.MethodGet, server.URL+"/sync/changes", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer forged")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestWithAuth_PassesAccountDownstream(t *testing.T) {
	var validated string
	auth := &stubAuthService{
		validateFn: func(_ context.Context, tokenString string) (models.Token, error) {
			validated = tokenString
			return models.Token{Account: "carol"}, nil
		},
	}

	var gotAccount string
	sync := &stubSyncBackend{
		pullFn: func(_ context.Context, account string, _ []string, _, _ string) (models.PullResponse, error) {
			gotAccount = account
			return models.PullResponse{}, nil
		},
	}
	server := newTestServer(t, auth, sync)

	req, err := http.NewRequest(http.MethodGet, server.URL+"/sync/changes", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer good-token")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "good-token", validated)
	assert.Equal(t, "carol", gotAccount)
}

func TestGetTokenFromAuthHeader(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		want    string
		wantErr error
	}{
		{"valid", "Bearer abc", "abc", nil},
		{"single part", "Bearer", "", ErrInvalidAuthorizationHeader},
		{"empty token", "Bearer ", "", ErrEmptyToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := getTokenFromAuthHeader(tt.header)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
