package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/mlevkov/lockstep/internal/config"
	"github.com/mlevkov/lockstep/models"
)

// AuthClient authenticates the installation against the sync server and
// returns the issued bearer token.
type AuthClient interface {
	// Login exchanges the account credentials for a bearer token. On first
	// login the server registers the account. Returns [ErrUnauthorized]
	// (wrapped) when the credentials are rejected.
	Login(ctx context.Context, credentials models.Credentials) (models.LoginResponse, error)
}

type httpAuthClient struct {
	client *resty.Client
}

// NewHTTPAuthClient constructs an HTTP implementation of [AuthClient]
// addressed at cfg.BaseURL.
func NewHTTPAuthClient(cfg config.ClientAdapter) AuthClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:8080"
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 15 * time.Second
	}

	cli := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.RequestTimeout)

	return &httpAuthClient{client: cli}
}

func (h *httpAuthClient) Login(ctx context.Context, credentials models.Credentials) (models.LoginResponse, error) {
	resp, err := h.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(credentials).
		Post("/api/auth/login")
	if err != nil {
		return models.LoginResponse{}, fmt.Errorf("login request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.LoginResponse{}, err
	}

	var loginResp models.LoginResponse
	if err = json.Unmarshal(resp.Body(), &loginResp); err != nil {
		return models.LoginResponse{}, fmt.Errorf("decode login response: %w", err)
	}

	return loginResp, nil
}
