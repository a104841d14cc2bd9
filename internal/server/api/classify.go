package api

import (
	"net/http"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/detector"
)

// ClassifyHandler classifies a single landmark set on demand.
type ClassifyHandler struct {
	app *app.App
}

// NewClassifyHandler creates a new ClassifyHandler.
func NewClassifyHandler(a *app.App) *ClassifyHandler {
	return &ClassifyHandler{app: a}
}

type classifyRequest struct {
	Width      int                `json:"width"`
	Height     int                `json:"height"`
	Handedness string             `json:"handedness"`
	Points     []detector.Point3D `json:"points"`
}

// Classify handles POST /api/classify. It does not touch the latest result
// and works while detection is disabled.
func (h *ClassifyHandler) Classify(w http.ResponseWriter, r *http.Request) {
	var req classifyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	hand := detector.Hand{Points: req.Points, Handedness: req.Handedness}
	result := h.app.Recognize(hand, req.Width, req.Height)
	if !result.Valid() {
		writeError(w, http.StatusBadRequest, result.Error)
		return
	}

	writeJSON(w, http.StatusOK, result)
}
