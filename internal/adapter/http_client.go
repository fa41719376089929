package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/mlevkov/lockstep/internal/config"
	"github.com/mlevkov/lockstep/models"
)

type httpSyncTransport struct {
	client *resty.Client
	tokens TokenProvider
}

// NewHTTPSyncTransport constructs an HTTP/REST implementation of
// [SyncTransport] addressed at cfg.BaseURL. The token provider is consulted
// on every request so a refreshed credential is picked up without rebuilding
// the transport.
func NewHTTPSyncTransport(cfg config.ClientAdapter, tokens TokenProvider) SyncTransport {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:8080"
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 15 * time.Second
	}

	cli := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.RequestTimeout)

	return &httpSyncTransport{client: cli, tokens: tokens}
}

func (h *httpSyncTransport) Push(ctx context.Context, req models.PushRequest) (models.PushResponse, error) {
	r, err := h.authedRequest(ctx)
	if err != nil {
		return models.PushResponse{}, err
	}

	resp, err := r.
		SetHeader("Content-Type", "application/json").
		SetBody(req).
		Post("/sync/push")
	if err != nil {
		return models.PushResponse{}, fmt.Errorf("push request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.PushResponse{}, err
	}

	var pushResp models.PushResponse
	if err = json.Unmarshal(resp.Body(), &pushResp); err != nil {
		return models.PushResponse{}, fmt.Errorf("decode push response: %w", err)
	}

	return pushResp, nil
}

func (h *httpSyncTransport) Pull(ctx context.Context, types []string, since, clientID string) (models.PullResponse, error) {
	r, err := h.authedRequest(ctx)
	if err != nil {
		return models.PullResponse{}, err
	}

	r.SetQueryParam("types", strings.Join(types, ","))
	r.SetQueryParam("clientId", clientID)
	if since != "" {
		r.SetQueryParam("since", since)
	}

	resp, err := r.Get("/sync/changes")
	if err != nil {
		return models.PullResponse{}, fmt.Errorf("pull request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.PullResponse{}, err
	}

	var pullResp models.PullResponse
	if err = json.Unmarshal(resp.Body(), &pullResp); err != nil {
		return models.PullResponse{}, fmt.Errorf("decode pull response: %w", err)
	}

	return pullResp, nil
}

func (h *httpSyncTransport) authedRequest(ctx context.Context) (*resty.Request, error) {
	token, err := h.tokens.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("get bearer token: %w", err)
	}

	req := h.client.R().SetContext(ctx)
	if token != "" {
		req.SetHeader("Authorization", "Bearer "+token)
	}
	return req, nil
}

func mapHTTPError(resp *resty.Response) error {
	if resp.StatusCode() >= http.StatusOK && resp.StatusCode() < http.StatusMultipleChoices {
		return nil
	}

	body := strings.TrimSpace(string(resp.Body()))
	if resp.StatusCode() == http.StatusUnauthorized {
		return fmt.Errorf("%w: %s", ErrUnauthorized, body)
	}

	if body == "" {
		body = http.StatusText(resp.StatusCode())
	}
	return fmt.Errorf("http %d: %s", resp.StatusCode(), body)
}
