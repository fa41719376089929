package service

import (
	"context"

	"github.com/mlevkov/lockstep/models"
)

// AuthService issues and validates the bearer credentials that protect the
// sync endpoints.
type AuthService interface {
	// Login verifies the credentials and returns a signed token. An unknown
	// login is registered on first use; a known login with a wrong password
	// fails with ErrInvalidCredentials.
	Login(ctx context.Context, credentials models.Credentials) (models.Token, error)

	// ValidateToken verifies the signature, issuer and expiry of a raw token
	// string and returns the parsed token with its account login.
	ValidateToken(ctx context.Context, tokenString string) (models.Token, error)
}

// SyncBackend is the authoritative server-side state of synchronized records,
// partitioned per account. It owns conflict resolution, the monotonic change
// sequence backing sync tokens, and idempotent replay of pushed batches.
type SyncBackend interface {
	// Push applies one batch of client changes to the account's state.
	// Re-sending a batch with an already seen idempotency key returns the
	// original response without applying anything again.
	Push(ctx context.Context, account string, req models.PushRequest) (models.PushResponse, error)

	// Pull returns the account's changes since the given sync token for the
	// requested logical tables, excluding changes originated by clientID.
	Pull(ctx context.Context, account string, types []string, since, clientID string) (models.PullResponse, error)
}
