package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/docuvend/download-gate/internal/access"
	"github.com/docuvend/download-gate/internal/ipinfo"
	"github.com/docuvend/download-gate/internal/logging"
	"github.com/docuvend/download-gate/internal/middleware"
	"github.com/docuvend/download-gate/internal/storage"
)

// documentPayload mirrors the fields the download page renders.
type documentPayload struct {
	Name     string `json:"name"`
	Size     int64  `json:"size"`
	Category string `json:"document_category"`
	Stage    string `json:"review_stage"`
	URL      string `json:"url"`
}

// tokenPayload is the caller-facing token snapshot.
type tokenPayload struct {
	OrderID       string    `json:"order_id"`
	ExpiresAt     time.Time `json:"expires_at"`
	DownloadCount int       `json:"download_count"`
	MaxDownloads  int       `json:"max_downloads"`
}

// verifyResponse is returned for every verification attempt. Denials are
// normal outcomes and travel with status 200; transport-level errors use the
// APIError shape instead.
type verifyResponse struct {
	Valid        bool             `json:"valid"`
	Document     *documentPayload `json:"document,omitempty"`
	Token        *tokenPayload    `json:"token,omitempty"`
	Reason       string           `json:"reason,omitempty"`
	Message      string           `json:"message,omitempty"`
	SupportEmail string           `json:"support_email,omitempty"`
}

// consumeResponse reports a quota consumption attempt.
type consumeResponse struct {
	OK            bool   `json:"ok"`
	DownloadCount int    `json:"download_count,omitempty"`
	Reason        string `json:"reason,omitempty"`
	Message       string `json:"message,omitempty"`
}

// clientContext assembles the best-effort audit context for a request.
func clientContext(r *http.Request) access.Client {
	return access.Client{
		IP:        ipinfo.FromRequest(r),
		UserAgent: r.UserAgent(),
		RequestID: middleware.GetRequestID(r.Context()),
	}
}

// HandleVerify evaluates a download token against the supplied email.
// POST /api/downloads/{token}/verify with body {"email": "..."}
//
// Verification is read-only: reloading the page and re-verifying never
// consumes quota.
func (h *Handler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	var req struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "Request body must be JSON with an email field")
		return
	}
	if !access.ValidEmail(req.Email) {
		WriteError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "A valid email address is required")
		return
	}

	settings := h.settings(r)
	if settings != nil && !settings.DownloadsEnabled {
		WriteErrorWithHint(w, http.StatusServiceUnavailable, ErrCodeDownloadsDisabled,
			"Downloads are temporarily unavailable",
			"Try again later or contact support")
		return
	}

	outcome := h.verifier.Verify(r.Context(), token, req.Email, clientContext(r))

	if !outcome.Valid {
		resp := verifyResponse{
			Valid:   false,
			Reason:  string(outcome.Reason),
			Message: reasonMessage(outcome.Reason),
		}
		if settings != nil {
			resp.SupportEmail = settings.SupportEmail
		}
		writeJSON(w, http.StatusOK, resp)
		return
	}

	h.logger.Info("download access verified",
		"token", logging.MaskToken(token),
		"email", logging.MaskEmail(req.Email),
		"order_id", outcome.Token.OrderID,
	)

	writeJSON(w, http.StatusOK, verifyResponse{
		Valid: true,
		Document: &documentPayload{
			Name:     outcome.Document.Name,
			Size:     outcome.Document.SizeBytes,
			Category: outcome.Document.Category,
			Stage:    outcome.Document.ReviewStage,
			URL:      outcome.Document.URL,
		},
		Token: &tokenPayload{
			OrderID:       outcome.Token.OrderID,
			ExpiresAt:     outcome.Token.ExpiresAt,
			DownloadCount: outcome.Token.DownloadCount,
			MaxDownloads:  outcome.Token.MaxDownloads,
		},
	})
}

// HandleConsume spends one download at the moment the file release is
// confirmed. Must be called once per actual release, not once per verify.
// POST /api/downloads/{token}/consume
func (h *Handler) HandleConsume(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	result := h.authorizer.Consume(r.Context(), token, clientContext(r))

	if !result.OK {
		writeJSON(w, http.StatusOK, consumeResponse{
			OK:      false,
			Reason:  string(result.Reason),
			Message: reasonMessage(result.Reason),
		})
		return
	}

	writeJSON(w, http.StatusOK, consumeResponse{
		OK:            true,
		DownloadCount: result.NewCount,
	})
}

// HandleReissuance records a request for fresh download links after expiry.
// POST /api/reissuance with body {"order_id": "...", "email": "..."}
func (h *Handler) HandleReissuance(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OrderID string `json:"order_id"`
		Email   string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "Request body must be JSON with order_id and email fields")
		return
	}
	if req.OrderID == "" {
		WriteError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "order_id is required")
		return
	}
	if !access.ValidEmail(req.Email) {
		WriteError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "A valid email address is required")
		return
	}

	accepted := h.reissuer.Request(r.Context(), req.OrderID, req.Email)

	writeJSON(w, http.StatusOK, map[string]bool{"accepted": accepted})
}

// settings loads delivery settings, tolerating failure: a settings read error
// must never block verification, it only drops the toggle and support email.
func (h *Handler) settings(r *http.Request) *storage.Settings {
	settings, err := h.store.GetSettings(r.Context())
	if err != nil {
		h.logger.Error("failed to load settings", "error", err)
		return nil
	}
	return settings
}
