package handler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mlevkov/lockstep/internal/config"
	"github.com/mlevkov/lockstep/internal/logger"
	"github.com/mlevkov/lockstep/internal/service"
)

func TestNewHandlers(t *testing.T) {
	auth := service.NewAuthService(config.ServerApp{
		TokenSignKey:    "key",
		TokenIssuer:     "test",
		TokenDuration:   time.Hour,
		PasswordHashKey: "hash",
	}, logger.Nop())
	backend := service.NewSyncBackend(logger.Nop())

	handlers, err := NewHandlers(auth, backend, config.ServerHTTP{Address: "localhost:8080"}, logger.Nop())
	require.NoError(t, err)
	require.NotNil(t, handlers.HTTP)
}

func TestNewHandlers_NoAddress(t *testing.T) {
	auth := service.NewAuthService(config.ServerApp{}, logger.Nop())
	backend := service.NewSyncBackend(logger.Nop())

	_, err := NewHandlers(auth, backend, config.ServerHTTP{}, logger.Nop())
	assert.Error(t, err)
}
