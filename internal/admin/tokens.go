package admin

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/docuvend/download-gate/internal/access"
	"github.com/docuvend/download-gate/internal/logging"
	"github.com/docuvend/download-gate/internal/storage"
)

type mintTokenRequest struct {
	OrderID      string `json:"order_id"`
	Email        string `json:"email"`
	DocumentID   string `json:"document_id"`
	MaxDownloads int    `json:"max_downloads,omitempty"`
	TTLHours     int    `json:"ttl_hours,omitempty"`
}

type tokenResponse struct {
	Token         string `json:"token"`
	OrderID       string `json:"order_id"`
	Email         string `json:"email"`
	DocumentID    string `json:"document_id"`
	ExpiresAt     string `json:"expires_at"`
	MaxDownloads  int    `json:"max_downloads"`
	DownloadCount int    `json:"download_count"`
	CreatedAt     string `json:"created_at,omitempty"`
	DownloadURL   string `json:"download_url,omitempty"`
}

// HandleMintToken creates a download token for an order.
// POST /api/tokens
//
// max_downloads and ttl_hours fall back to the stored delivery settings when
// omitted. The plaintext token appears only in this response.
func (h *Handler) HandleMintToken(w http.ResponseWriter, r *http.Request) {
	var req mintTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "Invalid JSON body")
		return
	}

	req.OrderID = strings.TrimSpace(req.OrderID)
	req.DocumentID = strings.TrimSpace(req.DocumentID)
	if req.OrderID == "" || req.DocumentID == "" {
		WriteError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "order_id and document_id are required")
		return
	}
	if !access.ValidEmail(req.Email) {
		WriteError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "A valid email address is required")
		return
	}
	if req.MaxDownloads < 0 || req.TTLHours < 0 {
		WriteError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "max_downloads and ttl_hours must be positive")
		return
	}

	if _, err := h.storage.GetDocument(r.Context(), req.DocumentID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			WriteError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "Unknown document_id")
			return
		}
		h.logger.Error("failed to look up document", "document_id", req.DocumentID, "error", err)
		WriteError(w, http.StatusInternalServerError, ErrCodeInternalError, "Internal error")
		return
	}

	settings, err := h.storage.GetSettings(r.Context())
	if err != nil {
		h.logger.Error("failed to load settings", "error", err)
		WriteError(w, http.StatusInternalServerError, ErrCodeInternalError, "Internal error")
		return
	}
	maxDownloads := req.MaxDownloads
	if maxDownloads == 0 {
		maxDownloads = settings.DefaultMaxDownloads
	}
	ttlHours := req.TTLHours
	if ttlHours == 0 {
		ttlHours = settings.DefaultLinkTTLHours
	}

	token, err := GenerateToken()
	if err != nil {
		h.logger.Error("failed to generate token", "error", err)
		WriteError(w, http.StatusInternalServerError, ErrCodeInternalError, "Internal error")
		return
	}

	tok := &storage.DownloadToken{
		Token:        token,
		OrderID:      req.OrderID,
		BoundEmail:   strings.ToLower(strings.TrimSpace(req.Email)),
		ExpiresAt:    time.Now().Add(time.Duration(ttlHours) * time.Hour).UTC(),
		MaxDownloads: maxDownloads,
		DocumentID:   req.DocumentID,
	}
	if err := h.storage.CreateDownloadToken(r.Context(), tok); err != nil {
		h.logger.Error("failed to create download token", "order_id", req.OrderID, "error", err)
		WriteError(w, http.StatusInternalServerError, ErrCodeInternalError, "Internal error")
		return
	}

	h.logger.Info("minted download token",
		"token", logging.MaskToken(token),
		"order_id", req.OrderID,
		"document_id", req.DocumentID,
		"max_downloads", maxDownloads,
		"expires_at", tok.ExpiresAt.Format(time.RFC3339))

	writeJSON(w, http.StatusCreated, tokenResponse{
		Token:         token,
		OrderID:       tok.OrderID,
		Email:         tok.BoundEmail,
		DocumentID:    tok.DocumentID,
		ExpiresAt:     tok.ExpiresAt.Format(time.RFC3339),
		MaxDownloads:  tok.MaxDownloads,
		DownloadCount: 0,
		DownloadURL:   h.downloadURL(token),
	})
}

// HandleListTokens returns all download tokens with token strings masked.
// GET /api/tokens
func (h *Handler) HandleListTokens(w http.ResponseWriter, r *http.Request) {
	tokens, err := h.storage.ListDownloadTokens(r.Context())
	if err != nil {
		h.logger.Error("failed to list download tokens", "error", err)
		WriteError(w, http.StatusInternalServerError, ErrCodeInternalError, "Internal error")
		return
	}

	out := make([]tokenResponse, 0, len(tokens))
	for _, t := range tokens {
		out = append(out, tokenResponse{
			Token:         logging.MaskToken(t.Token),
			OrderID:       t.OrderID,
			Email:         t.BoundEmail,
			DocumentID:    t.DocumentID,
			ExpiresAt:     t.ExpiresAt.Format(time.RFC3339),
			MaxDownloads:  t.MaxDownloads,
			DownloadCount: t.DownloadCount,
			CreatedAt:     t.CreatedAt.Format(time.RFC3339),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"tokens": out})
}

// HandleGetToken returns a single download token's full state.
// GET /api/tokens/{token}
func (h *Handler) HandleGetToken(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	tok, err := h.storage.GetDownloadToken(r.Context(), token)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			WriteError(w, http.StatusNotFound, ErrCodeNotFound, "Token not found")
			return
		}
		h.logger.Error("failed to get download token", "token", logging.MaskToken(token), "error", err)
		WriteError(w, http.StatusInternalServerError, ErrCodeInternalError, "Internal error")
		return
	}

	writeJSON(w, http.StatusOK, tokenResponse{
		Token:         logging.MaskToken(tok.Token),
		OrderID:       tok.OrderID,
		Email:         tok.BoundEmail,
		DocumentID:    tok.DocumentID,
		ExpiresAt:     tok.ExpiresAt.Format(time.RFC3339),
		MaxDownloads:  tok.MaxDownloads,
		DownloadCount: tok.DownloadCount,
		CreatedAt:     tok.CreatedAt.Format(time.RFC3339),
	})
}

// HandleRevokeToken exhausts a token's remaining quota immediately.
// DELETE /api/tokens/{token}
func (h *Handler) HandleRevokeToken(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	if err := h.storage.RevokeDownloadToken(r.Context(), token); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			WriteError(w, http.StatusNotFound, ErrCodeNotFound, "Token not found")
			return
		}
		h.logger.Error("failed to revoke download token", "token", logging.MaskToken(token), "error", err)
		WriteError(w, http.StatusInternalServerError, ErrCodeInternalError, "Internal error")
		return
	}

	h.logger.Info("revoked download token", "token", logging.MaskToken(token))
	writeJSON(w, http.StatusOK, map[string]string{"status": "revoked"})
}

func (h *Handler) downloadURL(token string) string {
	if h.baseURL == "" {
		return ""
	}
	return fmt.Sprintf("%s/api/downloads/%s/verify", strings.TrimRight(h.baseURL, "/"), url.PathEscape(token))
}
