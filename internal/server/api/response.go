// Package api provides HTTP API handlers for the mudra recognition service.
package api

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/ayusman/mudra/internal/logger"
)

// maxBodySize bounds request bodies; a frame of two hands is a few KB.
const maxBodySize = 1 << 20

type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// writeInternal logs err with the request logger and writes a 500.
func writeInternal(w http.ResponseWriter, r *http.Request, message string, err error) {
	logger.FromContext(r.Context()).Error(message, zap.Error(err))
	writeError(w, http.StatusInternalServerError, message)
}

// decodeJSON decodes the request body into v, rejecting unknown fields.
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
