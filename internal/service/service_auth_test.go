package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mlevkov/lockstep/internal/config"
	"github.com/mlevkov/lockstep/internal/logger"
	"github.com/mlevkov/lockstep/models"
)

func newTestAuthService() AuthService {
	return NewAuthService(config.ServerApp{
		TokenSignKey:    "sign-key",
		TokenIssuer:     "lockstep-test",
		TokenDuration:   time.Hour,
		PasswordHashKey: "hash-key",
	}, logger.Nop())
}

func TestAuthService_Login_RegistersOnFirstUse(t *testing.T) {
	auth := newTestAuthService()
	ctx := context.Background()

	token, err := auth.Login(ctx, models.Credentials{Login: "alice", Password: "secret"})
	require.NoError(t, err)
	assert.NotEmpty(t, token.SignedString)
	assert.Equal(t, "alice", token.Account)

	// повторный вход с тем же паролем
	again, err := auth.Login(ctx, models.Credentials{Login: "alice", Password: "secret"})
	require.NoError(t, err)
	assert.Equal(t, "alice", again.Account)
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	auth := newTestAuthService()
	ctx := context.Background()

	_, err := auth.Login(ctx, models.Credentials{Login: "alice", Password: "secret"})
	require.NoError(t, err)

	_, err = auth.Login(ctx, models.Credentials{Login: "alice", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_Login_EmptyCredentials(t *testing.T) {
	auth := newTestAuthService()
	ctx := context.Background()

	_, err := auth.Login(ctx, models.Credentials{Login: "", Password: "x"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = auth.Login(ctx, models.Credentials{Login: "x", Password: ""})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_ValidateToken(t *testing.T) {
	auth := newTestAuthService()
	ctx := context.Background()

	issued, err := auth.Login(ctx, models.Credentials{Login: "bob", Password: "pw"})
	require.NoError(t, err)

	parsed, err := auth.ValidateToken(ctx, issued.SignedString)
	require.NoError(t, err)
	assert.Equal(t, "bob", parsed.Account)
}

func TestAuthService_ValidateToken_Invalid(t *testing.T) {
	auth := newTestAuthService()

	_, err := auth.ValidateToken(context.Background(), "garbage")
	assert.Error(t, err)
}

func TestAuthService_ValidateToken_ForeignSignKey(t *testing.T) {
	ctx := context.Background()

	other := NewAuthService(config.ServerApp{
		TokenSignKey:    "different-key",
		TokenIssuer:     "lockstep-test",
		TokenDuration:   time.Hour,
		PasswordHashKey: "hash-key",
	}, logger.Nop())

	issued, err := other.Login(ctx, models.Credentials{Login: "eve", Password: "pw"})
	require.NoError(t, err)

	_, err = newTestAuthService().ValidateToken(ctx, issued.SignedString)
	assert.Error(t, err)
}
