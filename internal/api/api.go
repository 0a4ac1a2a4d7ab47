// Package api exposes the public download surface: token verification, quota
// consumption and reissuance requests. All access decisions are delegated to
// the access engine; this layer only shapes transport.
package api

import (
	"context"
	"log/slog"

	"github.com/docuvend/download-gate/internal/access"
	"github.com/docuvend/download-gate/internal/storage"
)

// Verifier evaluates verification requests.
type Verifier interface {
	Verify(ctx context.Context, token, email string, client access.Client) access.VerificationOutcome
}

// Authorizer consumes download quota.
type Authorizer interface {
	Consume(ctx context.Context, token string, client access.Client) access.ConsumeResult
}

// Reissuer records reissuance requests.
type Reissuer interface {
	Request(ctx context.Context, orderID, email string) bool
}

// Store is the slice of storage this surface reads directly: health pings and
// the delivery settings (master download toggle, support email).
type Store interface {
	Ping(ctx context.Context) error
	GetSettings(ctx context.Context) (*storage.Settings, error)
}

// Handler serves the public download endpoints.
type Handler struct {
	verifier   Verifier
	authorizer Authorizer
	reissuer   Reissuer
	store      Store
	logger     *slog.Logger
}

// NewHandler creates a public API handler.
func NewHandler(verifier Verifier, authorizer Authorizer, reissuer Reissuer, store Store, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		verifier:   verifier,
		authorizer: authorizer,
		reissuer:   reissuer,
		store:      store,
		logger:     logger,
	}
}
