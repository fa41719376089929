package adapter

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// StaticTokenProvider holds a bearer token obtained out-of-band (login flow)
// and serves it to the transport. SetToken may be called concurrently with
// Token, e.g. from an auth-error handler refreshing the credential.
type StaticTokenProvider struct {
	mu    sync.RWMutex
	token string
}

// NewStaticTokenProvider returns a provider pre-loaded with token. An empty
// token is allowed; the transport then sends unauthenticated requests, which
// the server answers with 401.
func NewStaticTokenProvider(token string) *StaticTokenProvider {
	return &StaticTokenProvider{token: strings.TrimSpace(token)}
}

// SetToken replaces the stored credential.
func (p *StaticTokenProvider) SetToken(token string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.token = strings.TrimSpace(token)
}

// Token implements [TokenProvider]. If the stored credential is a JWT whose
// "exp" claim has passed, it returns [ErrTokenExpired] so the engine can
// surface an auth error without a doomed round-trip. The claim is read
// without signature verification; validation is the server's job.
func (p *StaticTokenProvider) Token(_ context.Context) (string, error) {
	p.mu.RLock()
	token := p.token
	p.mu.RUnlock()

	if token == "" {
		return "", nil
	}

	expired, err := tokenExpired(token)
	if err != nil {
		// not a JWT or unreadable claims: hand it to the server as-is
		return token, nil
	}
	if expired {
		return "", ErrTokenExpired
	}

	return token, nil
}

func tokenExpired(tokenString string) (bool, error) {
	token, _, err := jwt.NewParser().ParseUnverified(tokenString, jwt.MapClaims{})
	if err != nil {
		return false, fmt.Errorf("parse token: %w", err)
	}

	exp, err := token.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false, fmt.Errorf("read exp claim: %w", err)
	}

	return exp.Before(time.Now()), nil
}
