package access

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/docuvend/download-gate/internal/metrics"
	"github.com/docuvend/download-gate/internal/storage"
)

// QuotaConsumer is the storage surface the authorizer needs: an atomic
// conditional increment resolved in one round trip.
type QuotaConsumer interface {
	ConsumeDownload(ctx context.Context, token string, now time.Time) (int, error)
}

// Authorizer consumes one unit of a token's download quota at the moment a
// release is confirmed. It must be invoked once per actual release of file
// bytes, not once per verification.
type Authorizer struct {
	store  QuotaConsumer
	audit  AuditAppender
	logger *slog.Logger
	now    func() time.Time
}

// NewAuthorizer creates an Authorizer. A nil logger falls back to slog.Default.
func NewAuthorizer(store QuotaConsumer, audit AuditAppender, logger *slog.Logger) *Authorizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Authorizer{
		store:  store,
		audit:  audit,
		logger: logger,
		now:    time.Now,
	}
}

// Consume atomically spends one download. The storage layer resolves the
// conditional increment in a single statement, so concurrent callers holding
// the same token can never push the count past the quota. Every attempt is
// audited before returning.
func (a *Authorizer) Consume(ctx context.Context, token string, client Client) ConsumeResult {
	result := a.consume(ctx, token)

	label := outcomeConsumed
	if !result.OK {
		label = string(result.Reason)
	}
	metrics.RecordConsume(label)
	a.appendAudit(ctx, token, client, label)

	return result
}

func (a *Authorizer) consume(ctx context.Context, token string) ConsumeResult {
	if !wellFormedToken(token) {
		return ConsumeResult{Reason: ReasonInvalidToken}
	}

	newCount, err := a.store.ConsumeDownload(ctx, token, a.now())
	if err == nil {
		return ConsumeResult{OK: true, NewCount: newCount}
	}

	switch {
	case errors.Is(err, storage.ErrNotFound):
		return ConsumeResult{Reason: ReasonInvalidToken}
	case errors.Is(err, storage.ErrExpired):
		return ConsumeResult{Reason: ReasonExpired}
	case errors.Is(err, storage.ErrQuotaExhausted):
		return ConsumeResult{Reason: ReasonQuotaExceeded}
	default:
		a.logger.Error("consume failed", "error", err)
		return ConsumeResult{Reason: ReasonSystemError}
	}
}

func (a *Authorizer) appendAudit(ctx context.Context, token string, client Client, outcome string) {
	err := a.audit.AppendAudit(ctx, &storage.AuditRecord{
		Token:     token,
		ClientIP:  client.IP,
		UserAgent: client.UserAgent,
		RequestID: client.RequestID,
		Outcome:   outcome,
	})
	if err != nil {
		metrics.RecordAuditWriteFailure()
		a.logger.Error("audit append failed", "outcome", outcome, "error", err)
	}
}
