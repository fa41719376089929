// Package handler assembles the transport handlers of the sync server.
package handler

import (
	"github.com/mlevkov/lockstep/internal/config"
	"github.com/mlevkov/lockstep/internal/handler/http"
	"github.com/mlevkov/lockstep/internal/logger"
	"github.com/mlevkov/lockstep/internal/service"
)

type Handlers struct {
	HTTP *http.Handler
}

func NewHandlers(auth service.AuthService, sync service.SyncBackend, cfg config.ServerHTTP, logger *logger.Logger) (*Handlers, error) {
	logger.Info().Msg("creating new handlers...")

	handlers := &Handlers{}

	if cfg.Address != "" {
		handlers.HTTP = http.NewHandler(auth, sync, logger)
	}

	if handlers.HTTP == nil {
		return nil, errNoHandlersAreCreated
	}

	return handlers, nil
}
