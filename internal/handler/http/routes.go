package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func (h *Handler) Init() *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(h.withTraceID)
	router.Use(h.withLogging)

	router.Group(func(r chi.Router) {
		r.Use(h.auth)
		r.Post("/api/replicache/pull", h.pull)
		r.Post("/api/replicache/push", h.push)
		r.Get("/api/replicache/poke", h.poke)
	})

	return router
}
