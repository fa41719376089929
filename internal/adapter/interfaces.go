// Package adapter provides the transport layer between the sync engine and
// the remote sync service.
//
// The primary abstraction is [SyncTransport], which decouples the engine from
// the wire protocol. The package ships an HTTP/REST implementation
// ([NewHTTPSyncTransport]) built on resty.
//
// Error values defined in errors.go are mapped from HTTP status codes by
// mapHTTPError so that callers can use [errors.Is] for transport-agnostic
// error classification (notably [ErrUnauthorized] for 401).
package adapter

import (
	"context"

	"github.com/mlevkov/lockstep/models"
)

// SyncTransport is a stateless request/response wrapper over the remote
// service's push and pull endpoints. It attaches the bearer credential,
// serializes requests, and maps transport-level failures to the sentinel
// values defined in this package. It holds no sync state of its own.
type SyncTransport interface {
	// Push sends one batch of local changes. Returns the set of applied ids
	// and conflicts, or an error: [ErrUnauthorized] (wrapped) when the
	// credential is rejected, a network error otherwise.
	Push(ctx context.Context, req models.PushRequest) (models.PushResponse, error)

	// Pull requests the change stream for the given logical tables since the
	// given cursor. An empty since requests the server's complete history.
	// clientID lets the server exclude the caller's own pushed changes from
	// the echoed stream.
	Pull(ctx context.Context, types []string, since, clientID string) (models.PullResponse, error)
}

// TokenProvider supplies a bearer credential on demand. Token refresh and
// login UX live outside the engine; implementations may return
// [ErrTokenExpired] to fail fast before a doomed round-trip.
type TokenProvider interface {
	Token(ctx context.Context) (string, error)
}

// TokenProviderFunc adapts a plain function to [TokenProvider].
type TokenProviderFunc func(ctx context.Context) (string, error)

// Token implements [TokenProvider].
func (f TokenProviderFunc) Token(ctx context.Context) (string, error) {
	return f(ctx)
}
