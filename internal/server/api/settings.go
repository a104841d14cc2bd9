package api

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/logger"
)

// SettingsHandler reads and updates runtime settings.
type SettingsHandler struct {
	app *app.App
}

// NewSettingsHandler creates a new SettingsHandler.
func NewSettingsHandler(a *app.App) *SettingsHandler {
	return &SettingsHandler{app: a}
}

type settingsResponse struct {
	Enabled bool   `json:"enabled"`
	Thumb   string `json:"thumb"`
}

// Fields left out of the body keep their current value.
type updateSettingsRequest struct {
	Enabled *bool   `json:"enabled"`
	Thumb   *string `json:"thumb"`
}

func (h *SettingsHandler) current() settingsResponse {
	return settingsResponse{
		Enabled: h.app.IsEnabled(),
		Thumb:   string(h.app.ThumbConvention()),
	}
}

// Get handles GET /api/settings.
func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.current())
}

// Put handles PUT /api/settings.
func (h *SettingsHandler) Put(w http.ResponseWriter, r *http.Request) {
	var req updateSettingsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	var thumb gesture.ThumbConvention
	if req.Thumb != nil {
		t, err := gesture.ParseThumbConvention(*req.Thumb)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		thumb = t
	}

	if req.Enabled != nil {
		h.app.SetEnabled(*req.Enabled)
	}
	if thumb != "" {
		h.app.SetThumbConvention(thumb)
	}

	if err := h.app.SaveSettings(); err != nil {
		writeInternal(w, r, "Failed to save settings", err)
		return
	}

	logger.FromContext(r.Context()).Info("Settings updated",
		zap.Bool("enabled", h.app.IsEnabled()),
		zap.String("thumb", string(h.app.ThumbConvention())),
	)
	writeJSON(w, http.StatusOK, h.current())
}
