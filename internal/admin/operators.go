package admin

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/docuvend/download-gate/internal/storage"
)

type createOperatorRequest struct {
	Name string `json:"name"`
}

type operatorEntry struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at"`
}

// HandleCreateOperatorToken mints a new operator credential.
// POST /api/operators
//
// The plaintext token appears only in this response; the database keeps the
// bcrypt hash.
func (h *Handler) HandleCreateOperatorToken(w http.ResponseWriter, r *http.Request) {
	var req createOperatorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "Invalid JSON body")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		WriteError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "name is required")
		return
	}

	token, err := GenerateToken()
	if err != nil {
		h.logger.Error("failed to generate operator token", "error", err)
		WriteError(w, http.StatusInternalServerError, ErrCodeInternalError, "Internal error")
		return
	}
	hash, err := HashOperatorToken(token)
	if err != nil {
		h.logger.Error("failed to hash operator token", "error", err)
		WriteError(w, http.StatusInternalServerError, ErrCodeInternalError, "Internal error")
		return
	}

	created, err := h.storage.CreateOperatorToken(r.Context(), req.Name, hash)
	if err != nil {
		h.logger.Error("failed to store operator token", "name", req.Name, "error", err)
		WriteError(w, http.StatusInternalServerError, ErrCodeInternalError, "Internal error")
		return
	}

	h.logger.Info("created operator token", "id", created.ID, "name", created.Name)
	writeJSON(w, http.StatusCreated, map[string]any{
		"id":    created.ID,
		"name":  created.Name,
		"token": token,
	})
}

// HandleDeleteOperatorToken removes an operator credential. Deleting the last
// credential is rejected so the operator API cannot lock itself out.
// DELETE /api/operators/{id}
func (h *Handler) HandleDeleteOperatorToken(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		WriteError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "Invalid operator id")
		return
	}

	count, err := h.storage.CountOperatorTokens(r.Context())
	if err != nil {
		h.logger.Error("failed to count operator tokens", "error", err)
		WriteError(w, http.StatusInternalServerError, ErrCodeInternalError, "Internal error")
		return
	}
	if count <= 1 {
		WriteError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "Cannot delete the last operator token")
		return
	}

	if err := h.storage.DeleteOperatorToken(r.Context(), id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			WriteError(w, http.StatusNotFound, ErrCodeNotFound, "Operator token not found")
			return
		}
		h.logger.Error("failed to delete operator token", "id", id, "error", err)
		WriteError(w, http.StatusInternalServerError, ErrCodeInternalError, "Internal error")
		return
	}

	h.logger.Info("deleted operator token", "id", id)
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// HandleListOperatorTokens lists operator credentials without their hashes.
// GET /api/operators
func (h *Handler) HandleListOperatorTokens(w http.ResponseWriter, r *http.Request) {
	tokens, err := h.storage.ListOperatorTokens(r.Context())
	if err != nil {
		h.logger.Error("failed to list operator tokens", "error", err)
		WriteError(w, http.StatusInternalServerError, ErrCodeInternalError, "Internal error")
		return
	}

	out := make([]operatorEntry, 0, len(tokens))
	for _, t := range tokens {
		out = append(out, operatorEntry{
			ID:        t.ID,
			Name:      t.Name,
			CreatedAt: t.CreatedAt.Format(time.RFC3339),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"operators": out})
}
