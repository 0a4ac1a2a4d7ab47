package admin

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/docuvend/download-gate/internal/storage"
)

type settingsResponse struct {
	DefaultMaxDownloads int    `json:"default_max_downloads"`
	DefaultLinkTTLHours int    `json:"default_link_ttl_hours"`
	SupportEmail        string `json:"support_email"`
	DownloadsEnabled    bool   `json:"downloads_enabled"`
}

// HandleGetSettings returns the effective delivery settings.
// GET /api/settings
func (h *Handler) HandleGetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.storage.GetSettings(r.Context())
	if err != nil {
		h.logger.Error("failed to load settings", "error", err)
		WriteError(w, http.StatusInternalServerError, ErrCodeInternalError, "Internal error")
		return
	}

	writeJSON(w, http.StatusOK, settingsResponse{
		DefaultMaxDownloads: settings.DefaultMaxDownloads,
		DefaultLinkTTLHours: settings.DefaultLinkTTLHours,
		SupportEmail:        settings.SupportEmail,
		DownloadsEnabled:    settings.DownloadsEnabled,
	})
}

// HandleUpdateSettings writes one or more recognized settings keys.
// PUT /api/settings
//
// The body is a flat map of key to string value. Unknown keys reject the
// whole request before any write happens.
func (h *Handler) HandleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var updates map[string]string
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		WriteError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "Invalid JSON body")
		return
	}
	if len(updates) == 0 {
		WriteError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "No settings provided")
		return
	}

	for key := range updates {
		if !storage.RecognizedSetting(key) {
			WriteError(w, http.StatusBadRequest, ErrCodeUnknownSetting, "Unknown setting: "+key)
			return
		}
	}

	for key, value := range updates {
		if err := h.storage.SetSetting(r.Context(), key, value); err != nil {
			if errors.Is(err, storage.ErrUnknownSetting) {
				WriteError(w, http.StatusBadRequest, ErrCodeUnknownSetting, "Unknown setting: "+key)
				return
			}
			h.logger.Error("failed to update setting", "key", key, "error", err)
			WriteError(w, http.StatusInternalServerError, ErrCodeInternalError, "Internal error")
			return
		}
		h.logger.Info("updated setting", "key", key)
	}

	settings, err := h.storage.GetSettings(r.Context())
	if err != nil {
		h.logger.Error("failed to reload settings", "error", err)
		WriteError(w, http.StatusInternalServerError, ErrCodeInternalError, "Internal error")
		return
	}
	writeJSON(w, http.StatusOK, settingsResponse{
		DefaultMaxDownloads: settings.DefaultMaxDownloads,
		DefaultLinkTTLHours: settings.DefaultLinkTTLHours,
		SupportEmail:        settings.SupportEmail,
		DownloadsEnabled:    settings.DownloadsEnabled,
	})
}
