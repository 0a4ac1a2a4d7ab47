package admin

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/docuvend/download-gate/internal/logging"
	"github.com/docuvend/download-gate/internal/storage"
)

type reissuanceEntry struct {
	ID          int64  `json:"id"`
	OrderID     string `json:"order_id"`
	Email       string `json:"email"`
	Status      string `json:"status"`
	RequestedAt string `json:"requested_at"`
	FulfilledAt string `json:"fulfilled_at,omitempty"`
}

// HandleListReissuance returns reissuance requests, newest first.
// GET /api/reissuance?status=pending|fulfilled
func (h *Handler) HandleListReissuance(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	switch status {
	case "", storage.ReissuanceStatusPending, storage.ReissuanceStatusFulfilled:
	default:
		WriteError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "status must be pending or fulfilled")
		return
	}

	requests, err := h.storage.ListReissuanceRequests(r.Context(), status)
	if err != nil {
		h.logger.Error("failed to list reissuance requests", "error", err)
		WriteError(w, http.StatusInternalServerError, ErrCodeInternalError, "Internal error")
		return
	}

	out := make([]reissuanceEntry, 0, len(requests))
	for _, req := range requests {
		entry := reissuanceEntry{
			ID:          req.ID,
			OrderID:     req.OrderID,
			Email:       logging.MaskEmail(req.Email),
			Status:      req.Status,
			RequestedAt: req.RequestedAt.Format(time.RFC3339),
		}
		if req.FulfilledAt != nil {
			entry.FulfilledAt = req.FulfilledAt.Format(time.RFC3339)
		}
		out = append(out, entry)
	}
	writeJSON(w, http.StatusOK, map[string]any{"requests": out})
}

// HandleFulfillReissuance marks a pending reissuance request fulfilled.
// POST /api/reissuance/{id}/fulfill
//
// Fulfillment itself (minting fresh tokens, emailing the buyer) happens out
// of band; this only records that an operator handled the request.
func (h *Handler) HandleFulfillReissuance(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		WriteError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "Invalid request id")
		return
	}

	if err := h.storage.FulfillReissuanceRequest(r.Context(), id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			WriteError(w, http.StatusNotFound, ErrCodeNotFound, "No pending request with that id")
			return
		}
		h.logger.Error("failed to fulfill reissuance request", "id", id, "error", err)
		WriteError(w, http.StatusInternalServerError, ErrCodeInternalError, "Internal error")
		return
	}

	h.logger.Info("fulfilled reissuance request", "id", id)
	writeJSON(w, http.StatusOK, map[string]string{"status": "fulfilled"})
}
