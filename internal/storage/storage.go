// Package storage provides SQLite persistence for download tokens, audit
// records, reissuance requests, operator tokens and delivery settings.
package storage

import (
	"context"
	"time"
)

// Storage defines the persistence operations used by the rest of the service.
type Storage interface {
	// Download token operations
	CreateDownloadToken(ctx context.Context, tok *DownloadToken) error
	GetDownloadToken(ctx context.Context, token string) (*DownloadToken, error)
	ListDownloadTokens(ctx context.Context) ([]*DownloadToken, error)
	RevokeDownloadToken(ctx context.Context, token string) error
	ConsumeDownload(ctx context.Context, token string, now time.Time) (int, error)
	OrderExists(ctx context.Context, orderID string) (bool, error)

	// Document operations
	CreateDocument(ctx context.Context, doc *Document) error
	GetDocument(ctx context.Context, id string) (*Document, error)

	// Audit operations
	AppendAudit(ctx context.Context, rec *AuditRecord) error
	ListAudit(ctx context.Context, token string, limit int) ([]*AuditRecord, error)

	// Reissuance operations
	CreateReissuanceRequest(ctx context.Context, orderID, email string) error
	ListReissuanceRequests(ctx context.Context, status string) ([]*ReissuanceRequest, error)
	FulfillReissuanceRequest(ctx context.Context, id int64) error

	// Operator token operations
	CreateOperatorToken(ctx context.Context, name, tokenHash string) (*OperatorToken, error)
	ListOperatorTokens(ctx context.Context) ([]*OperatorToken, error)
	DeleteOperatorToken(ctx context.Context, id int64) error
	CountOperatorTokens(ctx context.Context) (int, error)

	// Settings operations
	GetSettings(ctx context.Context) (*Settings, error)
	SetSetting(ctx context.Context, key, value string) error

	// Lifecycle
	Ping(ctx context.Context) error
	Close() error
}
