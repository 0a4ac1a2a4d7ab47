package access

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/docuvend/download-gate/internal/metrics"
	"github.com/docuvend/download-gate/internal/storage"
)

// TokenReader is the read-only storage surface the verifier needs.
type TokenReader interface {
	GetDownloadToken(ctx context.Context, token string) (*storage.DownloadToken, error)
	GetDocument(ctx context.Context, id string) (*storage.Document, error)
}

// AuditAppender records access attempts. Append failures never gate the
// primary decision.
type AuditAppender interface {
	AppendAudit(ctx context.Context, rec *storage.AuditRecord) error
}

// Verifier evaluates verification requests against stored token records.
// Verification is read-only with respect to quota: a buyer may re-verify
// (reload the page) any number of times without consuming downloads.
type Verifier struct {
	store  TokenReader
	audit  AuditAppender
	logger *slog.Logger
	now    func() time.Time
}

// NewVerifier creates a Verifier. A nil logger falls back to slog.Default.
func NewVerifier(store TokenReader, audit AuditAppender, logger *slog.Logger) *Verifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Verifier{
		store:  store,
		audit:  audit,
		logger: logger,
		now:    time.Now,
	}
}

// Verify decides whether the document behind token may be released to email.
//
// The evaluation order is fixed so outcomes are deterministic and nothing
// leaks through reason precedence: lookup, then email, then expiry, then
// quota. An unauthorized requester (wrong email) therefore never learns
// whether the token has expired. Every attempt is audited before returning,
// regardless of branch.
func (v *Verifier) Verify(ctx context.Context, token, email string, client Client) VerificationOutcome {
	outcome := v.evaluate(ctx, token, email)

	label := outcomeValid
	if !outcome.Valid {
		label = string(outcome.Reason)
	}
	metrics.RecordVerification(label)
	v.appendAudit(ctx, token, email, client, label)

	return outcome
}

func (v *Verifier) evaluate(ctx context.Context, token, email string) VerificationOutcome {
	// Malformed tokens are indistinguishable from unknown ones; no storage
	// round trip, no field evaluation.
	if !wellFormedToken(token) {
		return denied(ReasonInvalidToken)
	}

	tok, err := v.store.GetDownloadToken(ctx, token)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return denied(ReasonInvalidToken)
		}
		v.logger.Error("token lookup failed", "error", err)
		return denied(ReasonSystemError)
	}

	// An empty email is a guaranteed mismatch, not a structural failure;
	// bound emails are never empty.
	if email == "" || !strings.EqualFold(tok.BoundEmail, email) {
		return denied(ReasonEmailMismatch)
	}

	if !v.now().Before(tok.ExpiresAt) {
		return denied(ReasonExpired)
	}

	if tok.DownloadCount >= tok.MaxDownloads {
		return denied(ReasonQuotaExceeded)
	}

	doc, err := v.store.GetDocument(ctx, tok.DocumentID)
	if err != nil {
		v.logger.Error("document lookup failed", "document_id", tok.DocumentID, "error", err)
		return denied(ReasonSystemError)
	}

	return allowed(doc, tok)
}

// appendAudit records the attempt. Failures are reported through logging and
// metrics only; the already-computed decision stands.
func (v *Verifier) appendAudit(ctx context.Context, token, email string, client Client, outcome string) {
	err := v.audit.AppendAudit(ctx, &storage.AuditRecord{
		Token:     token,
		Email:     email,
		ClientIP:  client.IP,
		UserAgent: client.UserAgent,
		RequestID: client.RequestID,
		Outcome:   outcome,
	})
	if err != nil {
		metrics.RecordAuditWriteFailure()
		v.logger.Error("audit append failed", "outcome", outcome, "error", err)
	}
}

// wellFormedToken checks the token against the issuance format envelope:
// non-empty, bounded length, URL-safe charset. Anything outside it cannot be
// an issued token, so lookup is skipped.
func wellFormedToken(token string) bool {
	if token == "" || len(token) > 128 {
		return false
	}
	for _, c := range token {
		isAlphanumeric := (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
		isAllowedSpecial := c == '-' || c == '_'
		if !isAlphanumeric && !isAllowedSpecial {
			return false
		}
	}
	return true
}
