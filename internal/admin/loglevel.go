package admin

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/docuvend/download-gate/internal/logging"
)

type logLevelRequest struct {
	Level string `json:"level"`
}

// HandleGetLogLevel returns the current log level.
// GET /api/loglevel
func (h *Handler) HandleGetLogLevel(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"level": strings.ToLower(h.logLevel.Level().String()),
	})
}

// HandleSetLogLevel changes the log level at runtime.
// PUT /api/loglevel
func (h *Handler) HandleSetLogLevel(w http.ResponseWriter, r *http.Request) {
	var req logLevelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "Invalid JSON body")
		return
	}

	level, err := logging.ParseLevel(req.Level)
	if err != nil {
		WriteError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "level must be debug, info, warn or error")
		return
	}

	h.logLevel.Set(level)
	h.logger.Info("log level changed", "level", strings.ToLower(level.String()))
	writeJSON(w, http.StatusOK, map[string]string{
		"level": strings.ToLower(level.String()),
	})
}
