package api

import (
	"net/http"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/detector"
)

// FramesHandler ingests frames pushed by an external pose estimator.
type FramesHandler struct {
	app *app.App
}

// NewFramesHandler creates a new FramesHandler.
func NewFramesHandler(a *app.App) *FramesHandler {
	return &FramesHandler{app: a}
}

// Ingest handles POST /api/frames.
func (h *FramesHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	var frame detector.Frame
	if err := decodeJSON(w, r, &frame); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	result, ok := h.app.Ingest(frame)
	if !ok {
		writeError(w, http.StatusConflict, "Detection is disabled")
		return
	}

	writeJSON(w, http.StatusOK, result)
}
