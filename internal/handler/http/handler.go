// Package http implements the HTTP transport layer of the sync server.
// It provides middleware, route handlers, and request/response utilities
// for the REST API. Authentication and request logging are handled at this
// layer before requests are forwarded to the service layer.
package http

import (
	"github.com/mlevkov/lockstep/internal/logger"
	"github.com/mlevkov/lockstep/internal/service"
)

type Handler struct {
	auth service.AuthService
	sync service.SyncBackend

	logger *logger.Logger
}

func NewHandler(auth service.AuthService, sync service.SyncBackend, logger *logger.Logger) *Handler {
	logger.Info().Msg("http handler created")
	return &Handler{
		auth:   auth,
		sync:   sync,
		logger: logger,
	}
}
