package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func (h *Handler) Init() *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(h.withLogging)

	// routes without authorization
	router.Group(func(r chi.Router) {
		r.Post("/api/auth/login", h.login)
	})

	// sync routes, bearer token required
	router.Group(func(r chi.Router) {
		r.Use(h.withAuth)
		r.Post("/sync/push", h.pushChanges)
		r.Get("/sync/changes", h.pullChanges)
	})

	return router
}
