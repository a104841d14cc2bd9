package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/logger"
	"github.com/ayusman/mudra/internal/store"
)

// CatalogHandler handles HTTP requests for catalog entries.
type CatalogHandler struct {
	store *store.Store
	app   *app.App
}

// NewCatalogHandler creates a new CatalogHandler. Edits are pushed to a so
// that new results pick up changed descriptions.
func NewCatalogHandler(s *store.Store, a *app.App) *CatalogHandler {
	return &CatalogHandler{store: s, app: a}
}

type mudraResponse struct {
	Label       string `json:"label"`
	Description string `json:"description"`
	UpdatedAt   string `json:"updated_at"`
}

type listMudrasResponse struct {
	Mudras []mudraResponse `json:"mudras"`
}

type updateMudraRequest struct {
	Description string `json:"description"`
}

func toMudraResponse(m *store.Mudra) mudraResponse {
	return mudraResponse{
		Label:       m.Label,
		Description: m.Description,
		UpdatedAt:   m.UpdatedAt.Format(time.RFC3339),
	}
}

// List handles GET /api/mudras.
func (h *CatalogHandler) List(w http.ResponseWriter, r *http.Request) {
	mudras, err := h.store.Mudras().List()
	if err != nil {
		writeInternal(w, r, "Failed to list mudras", err)
		return
	}

	response := listMudrasResponse{
		Mudras: make([]mudraResponse, 0, len(mudras)),
	}
	for _, m := range mudras {
		response.Mudras = append(response.Mudras, toMudraResponse(m))
	}

	writeJSON(w, http.StatusOK, response)
}

// Get handles GET /api/mudras/{label}.
func (h *CatalogHandler) Get(w http.ResponseWriter, r *http.Request) {
	m, err := h.store.Mudras().Get(chi.URLParam(r, "label"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Mudra not found")
			return
		}
		writeInternal(w, r, "Failed to get mudra", err)
		return
	}

	writeJSON(w, http.StatusOK, toMudraResponse(m))
}

// Put handles PUT /api/mudras/{label} and creates or replaces the entry.
func (h *CatalogHandler) Put(w http.ResponseWriter, r *http.Request) {
	var req updateMudraRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Description) == "" {
		writeError(w, http.StatusBadRequest, "Description is required")
		return
	}

	m := &store.Mudra{Label: chi.URLParam(r, "label"), Description: req.Description}
	if err := h.store.Mudras().Upsert(m); err != nil {
		writeInternal(w, r, "Failed to save mudra", err)
		return
	}
	h.reload(r)

	writeJSON(w, http.StatusOK, toMudraResponse(m))
}

// Delete handles DELETE /api/mudras/{label}.
func (h *CatalogHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Mudras().Delete(chi.URLParam(r, "label")); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Mudra not found")
			return
		}
		writeInternal(w, r, "Failed to delete mudra", err)
		return
	}
	h.reload(r)

	w.WriteHeader(http.StatusNoContent)
}

func (h *CatalogHandler) reload(r *http.Request) {
	if h.app == nil {
		return
	}
	if err := h.app.ReloadCatalog(); err != nil {
		logger.FromContext(r.Context()).Warn("Failed to reload catalog", zap.Error(err))
	}
}
