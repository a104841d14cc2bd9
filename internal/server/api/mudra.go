package api

import (
	"net/http"

	"github.com/ayusman/mudra/internal/app"
)

// Shown by the current-mudra endpoint until the first hand is detected.
const (
	NoMudra         = "None"
	WaitingForMudra = "Waiting for detection..."
)

// MudraHandler serves the most recent detection.
type MudraHandler struct {
	app *app.App
}

// NewMudraHandler creates a new MudraHandler.
func NewMudraHandler(a *app.App) *MudraHandler {
	return &MudraHandler{app: a}
}

type currentMudraResponse struct {
	Mudra       string           `json:"mudra"`
	Description string           `json:"description"`
	ResultID    string           `json:"result_id,omitempty"`
	Timestamp   int64            `json:"timestamp,omitempty"`
	Hands       []app.HandResult `json:"hands"`
}

// Current handles GET /api/mudra.
func (h *MudraHandler) Current(w http.ResponseWriter, r *http.Request) {
	resp := currentMudraResponse{
		Mudra:       NoMudra,
		Description: WaitingForMudra,
		Hands:       []app.HandResult{},
	}

	if result, ok := h.app.Latest(); ok {
		resp.ResultID = result.ID
		resp.Timestamp = result.Timestamp
		resp.Hands = result.Hands
		if m, ok := result.Mudra(); ok {
			resp.Mudra = string(m.Label)
			resp.Description = m.Description
		}
	}

	writeJSON(w, http.StatusOK, resp)
}
