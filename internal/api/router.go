package api

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/docuvend/download-gate/internal/metrics"
	"github.com/docuvend/download-gate/internal/middleware"
)

// NewRouter wires the public download routes.
func (h *Handler) NewRouter(logger *slog.Logger) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(metrics.Middleware)
	r.Use(middleware.HTTPLogging(logger))

	r.Get("/health", h.HandleHealth)
	r.Get("/ready", h.HandleReady)

	r.Route("/api", func(r chi.Router) {
		r.Post("/downloads/{token}/verify", h.HandleVerify)
		r.Post("/downloads/{token}/consume", h.HandleConsume)
		r.Post("/reissuance", h.HandleReissuance)
	})

	return r
}
