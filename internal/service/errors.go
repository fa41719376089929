package service

import "errors"

var (
	// ErrInvalidEngineConfig is returned by NewSyncEngine when a required
	// dependency is missing from the configuration.
	ErrInvalidEngineConfig = errors.New("invalid sync engine configuration")

	// ErrNoTables is returned by NewSyncEngine when no logical tables are
	// registered for synchronization.
	ErrNoTables = errors.New("no sync tables configured")

	// ErrInvalidCredentials is returned on login with a wrong password or
	// empty credentials.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrMissingIdempotencyKey is returned by the sync backend for a push
	// batch without an idempotency key.
	ErrMissingIdempotencyKey = errors.New("push batch without idempotency key")

	// ErrInvalidChangeBatch is returned by the sync backend when a push
	// batch fails validation. The wrapped cause names the offending field.
	ErrInvalidChangeBatch = errors.New("invalid change batch")

	// ErrInvalidSyncToken is returned by the sync backend when the client's
	// cursor cannot be parsed.
	ErrInvalidSyncToken = errors.New("invalid sync token")
)
