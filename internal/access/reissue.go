package access

import (
	"context"
	"errors"
	"log/slog"

	"github.com/docuvend/download-gate/internal/metrics"
	"github.com/docuvend/download-gate/internal/storage"
)

// ReissuanceStore is the storage surface the coordinator needs.
type ReissuanceStore interface {
	OrderExists(ctx context.Context, orderID string) (bool, error)
	CreateReissuanceRequest(ctx context.Context, orderID, email string) error
}

// ReissuanceCoordinator records requests to re-derive download rights for
// orders whose tokens have expired. It does not mint tokens or send email;
// fulfillment is an out-of-band operator process. The coordinator also does
// not check that the original token was actually expired - callers invoke
// this path only after observing an expired denial.
type ReissuanceCoordinator struct {
	store  ReissuanceStore
	logger *slog.Logger
}

// NewReissuanceCoordinator creates a ReissuanceCoordinator.
func NewReissuanceCoordinator(store ReissuanceStore, logger *slog.Logger) *ReissuanceCoordinator {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReissuanceCoordinator{store: store, logger: logger}
}

// Request records a pending reissuance request for the order. The return
// value reports success of recording only, not of fulfillment. Unknown
// orders, malformed emails and storage failures all report false; a request
// that is already pending for the same (order, email) pair reports true
// without inserting a duplicate.
func (c *ReissuanceCoordinator) Request(ctx context.Context, orderID, email string) bool {
	accepted := c.request(ctx, orderID, email)
	metrics.RecordReissuance(accepted)
	return accepted
}

func (c *ReissuanceCoordinator) request(ctx context.Context, orderID, email string) bool {
	if orderID == "" || !ValidEmail(email) {
		return false
	}

	exists, err := c.store.OrderExists(ctx, orderID)
	if err != nil {
		c.logger.Error("order lookup failed", "order_id", orderID, "error", err)
		return false
	}
	if !exists {
		c.logger.Warn("reissuance requested for unknown order", "order_id", orderID)
		return false
	}

	err = c.store.CreateReissuanceRequest(ctx, orderID, email)
	if err != nil {
		// A request already pending counts as recorded.
		if errors.Is(err, storage.ErrDuplicate) {
			return true
		}
		c.logger.Error("failed to record reissuance request", "order_id", orderID, "error", err)
		return false
	}

	c.logger.Info("reissuance request recorded", "order_id", orderID)
	return true
}
