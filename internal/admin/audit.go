package admin

import (
	"net/http"
	"strconv"
	"time"

	"github.com/docuvend/download-gate/internal/logging"
)

type auditEntry struct {
	ID        int64  `json:"id"`
	Token     string `json:"token"`
	Email     string `json:"email"`
	ClientIP  string `json:"client_ip,omitempty"`
	UserAgent string `json:"user_agent,omitempty"`
	RequestID string `json:"request_id,omitempty"`
	Outcome   string `json:"outcome"`
	CreatedAt string `json:"created_at"`
}

// HandleListAudit returns access-attempt records, newest first.
// GET /api/audit?token=...&limit=...
//
// With a token parameter the listing is scoped to that token's history.
// Token strings and emails are masked; the raw values stay in the database.
func (h *Handler) HandleListAudit(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			WriteError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	records, err := h.storage.ListAudit(r.Context(), token, limit)
	if err != nil {
		h.logger.Error("failed to list audit records", "error", err)
		WriteError(w, http.StatusInternalServerError, ErrCodeInternalError, "Internal error")
		return
	}

	out := make([]auditEntry, 0, len(records))
	for _, rec := range records {
		out = append(out, auditEntry{
			ID:        rec.ID,
			Token:     logging.MaskToken(rec.Token),
			Email:     logging.MaskEmail(rec.Email),
			ClientIP:  rec.ClientIP,
			UserAgent: rec.UserAgent,
			RequestID: rec.RequestID,
			Outcome:   rec.Outcome,
			CreatedAt: rec.CreatedAt.Format(time.RFC3339),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"records": out})
}
