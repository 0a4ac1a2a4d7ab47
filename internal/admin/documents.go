package admin

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/docuvend/download-gate/internal/storage"
)

type documentRequest struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	SizeBytes   int64  `json:"size_bytes"`
	Category    string `json:"document_category"`
	ReviewStage string `json:"review_stage"`
	URL         string `json:"url"`
}

type documentResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	SizeBytes   int64  `json:"size_bytes"`
	Category    string `json:"document_category"`
	ReviewStage string `json:"review_stage"`
	URL         string `json:"url"`
}

// HandleCreateDocument registers a purchasable document.
// POST /api/documents
func (h *Handler) HandleCreateDocument(w http.ResponseWriter, r *http.Request) {
	var req documentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "Invalid JSON body")
		return
	}

	req.ID = strings.TrimSpace(req.ID)
	req.Name = strings.TrimSpace(req.Name)
	if req.ID == "" || req.Name == "" || req.URL == "" {
		WriteError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "id, name and url are required")
		return
	}

	doc := &storage.Document{
		ID:          req.ID,
		Name:        req.Name,
		SizeBytes:   req.SizeBytes,
		Category:    req.Category,
		ReviewStage: req.ReviewStage,
		URL:         req.URL,
	}
	if err := h.storage.CreateDocument(r.Context(), doc); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			WriteError(w, http.StatusConflict, ErrCodeInvalidRequest, "A document with that id already exists")
			return
		}
		h.logger.Error("failed to create document", "id", req.ID, "error", err)
		WriteError(w, http.StatusInternalServerError, ErrCodeInternalError, "Internal error")
		return
	}

	h.logger.Info("registered document", "id", doc.ID, "name", doc.Name)
	writeJSON(w, http.StatusCreated, documentResponse(req))
}

// HandleGetDocument returns a registered document.
// GET /api/documents/{id}
func (h *Handler) HandleGetDocument(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	doc, err := h.storage.GetDocument(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			WriteError(w, http.StatusNotFound, ErrCodeNotFound, "Document not found")
			return
		}
		h.logger.Error("failed to get document", "id", id, "error", err)
		WriteError(w, http.StatusInternalServerError, ErrCodeInternalError, "Internal error")
		return
	}

	writeJSON(w, http.StatusOK, documentResponse{
		ID:          doc.ID,
		Name:        doc.Name,
		SizeBytes:   doc.SizeBytes,
		Category:    doc.Category,
		ReviewStage: doc.ReviewStage,
		URL:         doc.URL,
	})
}
