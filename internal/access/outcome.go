// Package access implements the token verification, authorization and
// recovery engine behind secure document downloads. It decides, for a given
// (token, email, client context) triple, whether a document may be released,
// enforces download quotas under concurrent use, records an audit trail, and
// records reissuance requests for expired tokens.
package access

import (
	"time"

	"github.com/docuvend/download-gate/internal/storage"
)

// Reason is the closed classification of why access was refused. Callers
// branch on these values; human-readable wording belongs to the delivery
// layer and is never part of this contract.
type Reason string

const (
	// ReasonInvalidToken covers unknown and malformed tokens alike, so the
	// response never reveals whether a token ever existed.
	ReasonInvalidToken Reason = "invalid_token"
	// ReasonEmailMismatch means the supplied email is not the bound address.
	ReasonEmailMismatch Reason = "email_mismatch"
	// ReasonExpired means the token is past its absolute expiry.
	ReasonExpired Reason = "expired"
	// ReasonQuotaExceeded means the download quota is fully consumed.
	ReasonQuotaExceeded Reason = "quota_exceeded"
	// ReasonSystemError means a storage or infrastructure failure prevented a
	// decision. Safe for the caller to retry; never retried here.
	ReasonSystemError Reason = "system_error"
)

// Audit outcome labels for successful operations. Denials are audited under
// their Reason value.
const (
	outcomeValid    = "valid"
	outcomeConsumed = "consumed"
)

// TokenSnapshot is the caller-facing view of a token's state, included on the
// success branch so the delivery layer can show expiry and remaining quota.
type TokenSnapshot struct {
	OrderID       string
	ExpiresAt     time.Time
	DownloadCount int
	MaxDownloads  int
}

// VerificationOutcome is the result of one verification attempt: either valid
// with the document and a token snapshot, or denied with a Reason. It is
// constructed fresh per call and never persisted.
type VerificationOutcome struct {
	Valid    bool
	Document *storage.Document
	Token    *TokenSnapshot
	Reason   Reason
}

// ConsumeResult is the result of one quota consumption attempt.
type ConsumeResult struct {
	OK       bool
	NewCount int
	Reason   Reason
}

// Client carries the best-effort request context recorded in the audit trail.
// Zero values are fine; absence of client context never blocks a decision.
type Client struct {
	IP        string
	UserAgent string
	RequestID string
}

func allowed(doc *storage.Document, tok *storage.DownloadToken) VerificationOutcome {
	return VerificationOutcome{
		Valid:    true,
		Document: doc,
		Token: &TokenSnapshot{
			OrderID:       tok.OrderID,
			ExpiresAt:     tok.ExpiresAt,
			DownloadCount: tok.DownloadCount,
			MaxDownloads:  tok.MaxDownloads,
		},
	}
}

func denied(reason Reason) VerificationOutcome {
	return VerificationOutcome{Reason: reason}
}
