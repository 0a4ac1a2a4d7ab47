package admin

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/docuvend/download-gate/internal/metrics"
	"github.com/docuvend/download-gate/internal/middleware"
)

// NewRouter wires the operator routes. Health endpoints are public; every
// /api route sits behind operator token auth.
func (h *Handler) NewRouter(logger *slog.Logger) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(metrics.Middleware)
	r.Use(middleware.HTTPLogging(logger))

	r.Get("/health", h.HandleHealth)
	r.Get("/ready", h.HandleReady)

	r.Route("/api", func(r chi.Router) {
		r.Use(h.TokenAuthMiddleware)

		r.Post("/tokens", h.HandleMintToken)
		r.Get("/tokens", h.HandleListTokens)
		r.Get("/tokens/{token}", h.HandleGetToken)
		r.Delete("/tokens/{token}", h.HandleRevokeToken)

		r.Post("/documents", h.HandleCreateDocument)
		r.Get("/documents/{id}", h.HandleGetDocument)

		r.Get("/audit", h.HandleListAudit)

		r.Get("/reissuance", h.HandleListReissuance)
		r.Post("/reissuance/{id}/fulfill", h.HandleFulfillReissuance)

		r.Post("/operators", h.HandleCreateOperatorToken)
		r.Get("/operators", h.HandleListOperatorTokens)
		r.Delete("/operators/{id}", h.HandleDeleteOperatorToken)

		r.Get("/settings", h.HandleGetSettings)
		r.Put("/settings", h.HandleUpdateSettings)

		r.Get("/loglevel", h.HandleGetLogLevel)
		r.Put("/loglevel", h.HandleSetLogLevel)
	})

	return r
}
