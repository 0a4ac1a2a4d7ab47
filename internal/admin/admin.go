// Package admin provides the operator API: minting and revoking download
// tokens, browsing the audit trail, working the reissuance queue, and
// maintaining delivery settings.
package admin

import (
	"context"
	"log/slog"

	"github.com/docuvend/download-gate/internal/storage"
)

// Storage is the persistence surface the operator API needs.
type Storage interface {
	// Health check
	Ping(ctx context.Context) error

	// Download token operations
	CreateDownloadToken(ctx context.Context, tok *storage.DownloadToken) error
	GetDownloadToken(ctx context.Context, token string) (*storage.DownloadToken, error)
	ListDownloadTokens(ctx context.Context) ([]*storage.DownloadToken, error)
	RevokeDownloadToken(ctx context.Context, token string) error

	// Document operations
	CreateDocument(ctx context.Context, doc *storage.Document) error
	GetDocument(ctx context.Context, id string) (*storage.Document, error)

	// Audit operations
	ListAudit(ctx context.Context, token string, limit int) ([]*storage.AuditRecord, error)

	// Reissuance operations
	ListReissuanceRequests(ctx context.Context, status string) ([]*storage.ReissuanceRequest, error)
	FulfillReissuanceRequest(ctx context.Context, id int64) error

	// Operator token operations
	CreateOperatorToken(ctx context.Context, name, tokenHash string) (*storage.OperatorToken, error)
	ListOperatorTokens(ctx context.Context) ([]*storage.OperatorToken, error)
	DeleteOperatorToken(ctx context.Context, id int64) error
	CountOperatorTokens(ctx context.Context) (int, error)

	// Settings operations
	GetSettings(ctx context.Context) (*storage.Settings, error)
	SetSetting(ctx context.Context, key, value string) error
}

// Handler serves the operator endpoints.
type Handler struct {
	storage  Storage
	logger   *slog.Logger
	logLevel *slog.LevelVar
	baseURL  string
}

// NewHandler creates an operator API handler. baseURL is the public base URL
// used to render download links for freshly minted tokens.
func NewHandler(storage Storage, logLevel *slog.LevelVar, logger *slog.Logger, baseURL string) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	if logLevel == nil {
		logLevel = new(slog.LevelVar)
	}
	return &Handler{
		storage:  storage,
		logger:   logger,
		logLevel: logLevel,
		baseURL:  baseURL,
	}
}
