package adapter

import "errors"

var (
	// ErrUnauthorized is returned when the server rejects the bearer
	// credential (HTTP 401).
	ErrUnauthorized = errors.New("client unauthorized")

	// ErrTokenExpired is returned by a token provider when the locally held
	// credential is already past its expiry.
	ErrTokenExpired = errors.New("token expired")
)

// IsAuthError reports whether err is an authentication failure as opposed to
// a network or server failure. The engine uses this to emit the dedicated
// auth-error event instead of scheduling a generic retry.
func IsAuthError(err error) bool {
	return errors.Is(err, ErrUnauthorized) || errors.Is(err, ErrTokenExpired)
}
