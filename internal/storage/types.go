package storage

import "time"

// DownloadToken is one buyer's access rights to a purchased document.
// The token string is the opaque credential embedded in the download link.
type DownloadToken struct {
	Token         string
	OrderID       string
	BoundEmail    string
	ExpiresAt     time.Time
	MaxDownloads  int
	DownloadCount int
	DocumentID    string
	CreatedAt     time.Time
}

// Document describes a purchasable file released on successful verification.
type Document struct {
	ID          string
	Name        string
	SizeBytes   int64
	Category    string
	ReviewStage string
	URL         string
}

// AuditRecord is one immutable access-attempt fact. Records are append-only
// and never mutated or deleted by the service.
type AuditRecord struct {
	ID        int64
	Token     string
	Email     string
	ClientIP  string
	UserAgent string
	RequestID string
	Outcome   string
	CreatedAt time.Time
}

// Reissuance request statuses.
const (
	ReissuanceStatusPending   = "pending"
	ReissuanceStatusFulfilled = "fulfilled"
)

// ReissuanceRequest records a buyer's request for fresh download links after
// their token expired. Fulfillment happens out of band.
type ReissuanceRequest struct {
	ID          int64
	OrderID     string
	Email       string
	Status      string
	RequestedAt time.Time
	FulfilledAt *time.Time
}

// OperatorToken is an admin API credential. Only the bcrypt hash is stored.
type OperatorToken struct {
	ID        int64
	TokenHash string
	Name      string
	CreatedAt time.Time
}

// Settings holds the delivery-layer configuration persisted under enumerated
// keys. See settings.go for the recognized key set.
type Settings struct {
	DefaultMaxDownloads int
	DefaultLinkTTLHours int
	SupportEmail        string
	DownloadsEnabled    bool
}
