// Package mockstore provides a configurable mock implementation of the
// storage interfaces consumed by the access engine and the HTTP surfaces.
//
// Each method can be customized by setting the corresponding function field.
// If a function field is nil, the method returns a sensible default.
package mockstore

import (
	"context"
	"time"

	"github.com/docuvend/download-gate/internal/storage"
)

// MockStorage is a function-field mock of the storage operations.
type MockStorage struct {
	// Download token operations
	GetDownloadTokenFunc func(ctx context.Context, token string) (*storage.DownloadToken, error)
	ConsumeDownloadFunc  func(ctx context.Context, token string, now time.Time) (int, error)
	OrderExistsFunc      func(ctx context.Context, orderID string) (bool, error)

	// Document operations
	GetDocumentFunc func(ctx context.Context, id string) (*storage.Document, error)

	// Audit operations
	AppendAuditFunc func(ctx context.Context, rec *storage.AuditRecord) error

	// Reissuance operations
	CreateReissuanceRequestFunc func(ctx context.Context, orderID, email string) error

	// Settings operations
	GetSettingsFunc func(ctx context.Context) (*storage.Settings, error)

	// Lifecycle
	PingFunc func(ctx context.Context) error

	// Appended audit records are collected here for assertions when
	// AppendAuditFunc is nil.
	AuditRecords []*storage.AuditRecord
}

// GetDownloadToken retrieves a token record.
func (m *MockStorage) GetDownloadToken(ctx context.Context, token string) (*storage.DownloadToken, error) {
	if m.GetDownloadTokenFunc != nil {
		return m.GetDownloadTokenFunc(ctx, token)
	}
	return nil, storage.ErrNotFound
}

// ConsumeDownload spends one download.
func (m *MockStorage) ConsumeDownload(ctx context.Context, token string, now time.Time) (int, error) {
	if m.ConsumeDownloadFunc != nil {
		return m.ConsumeDownloadFunc(ctx, token, now)
	}
	return 0, storage.ErrNotFound
}

// OrderExists reports whether an order is known.
func (m *MockStorage) OrderExists(ctx context.Context, orderID string) (bool, error) {
	if m.OrderExistsFunc != nil {
		return m.OrderExistsFunc(ctx, orderID)
	}
	return false, nil
}

// GetDocument retrieves a document descriptor.
func (m *MockStorage) GetDocument(ctx context.Context, id string) (*storage.Document, error) {
	if m.GetDocumentFunc != nil {
		return m.GetDocumentFunc(ctx, id)
	}
	return nil, storage.ErrNotFound
}

// AppendAudit records an access attempt. The default implementation collects
// records in AuditRecords.
func (m *MockStorage) AppendAudit(ctx context.Context, rec *storage.AuditRecord) error {
	if m.AppendAuditFunc != nil {
		return m.AppendAuditFunc(ctx, rec)
	}
	m.AuditRecords = append(m.AuditRecords, rec)
	return nil
}

// CreateReissuanceRequest records a pending reissuance request.
func (m *MockStorage) CreateReissuanceRequest(ctx context.Context, orderID, email string) error {
	if m.CreateReissuanceRequestFunc != nil {
		return m.CreateReissuanceRequestFunc(ctx, orderID, email)
	}
	return nil
}

// GetSettings returns the delivery settings.
func (m *MockStorage) GetSettings(ctx context.Context) (*storage.Settings, error) {
	if m.GetSettingsFunc != nil {
		return m.GetSettingsFunc(ctx)
	}
	return &storage.Settings{
		DefaultMaxDownloads: 3,
		DefaultLinkTTLHours: 72,
		DownloadsEnabled:    true,
	}, nil
}

// Ping reports storage health.
func (m *MockStorage) Ping(ctx context.Context) error {
	if m.PingFunc != nil {
		return m.PingFunc(ctx)
	}
	return nil
}
