// Package server provides the HTTP server for the mudra recognition service.
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/logger"
	"github.com/ayusman/mudra/internal/server/api"
	"github.com/ayusman/mudra/internal/store"
)

// Config holds the server configuration.
type Config struct {
	StaticDir string
	Store     *store.Store
	App       *app.App
	Logger    *zap.Logger
}

// Server represents the HTTP server for the mudra application.
type Server struct {
	config Config
	logger *zap.Logger
	router chi.Router
	hub    *Hub
	start  time.Time
}

// New creates a new Server with the given configuration. Without an App, one
// is built around Store.
func New(config Config) *Server {
	if config.App == nil {
		config.App = app.New(app.Config{Store: config.Store, Logger: config.Logger})
	}
	registerMetrics()

	s := &Server{
		config: config,
		logger: logger.OrNop(config.Logger),
		router: chi.NewRouter(),
		start:  time.Now(),
	}
	s.hub = NewHub(config.App, s.logger)
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	r := s.router
	r.Use(jsonRecoverer(s.logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(requestLogger(s.logger))
	r.Use(metricsMiddleware())

	a := s.config.App
	mudra := api.NewMudraHandler(a)
	classify := api.NewClassifyHandler(a)
	frames := api.NewFramesHandler(a)
	settings := api.NewSettingsHandler(a)

	r.Get("/api/health", s.handleHealth)
	r.Get("/api/mudra", mudra.Current)
	r.Get("/mudra_info", mudra.Current)
	r.Post("/api/classify", classify.Classify)
	r.Post("/api/frames", frames.Ingest)
	r.Get("/api/rules", api.ListRules)
	r.Get("/api/settings", settings.Get)
	r.Put("/api/settings", settings.Put)
	r.Get("/api/ws", s.hub.ServeHTTP)
	r.Handle("/metrics", promhttp.Handler())

	// Register catalog API handler if Store is configured
	if s.config.Store != nil {
		catalog := api.NewCatalogHandler(s.config.Store, a)
		r.Route("/api/mudras", func(r chi.Router) {
			r.Get("/", catalog.List)
			r.Get("/{label}", catalog.Get)
			r.Put("/{label}", catalog.Put)
			r.Delete("/{label}", catalog.Delete)
		})
	}

	// Serve static files if StaticDir is configured
	if s.config.StaticDir != "" {
		r.Handle("/*", http.FileServer(http.Dir(s.config.StaticDir)))
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Hub returns the WebSocket hub.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Close disconnects WebSocket clients.
func (s *Server) Close() {
	s.hub.Close()
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":  "ok",
		"uptime":  time.Since(s.start).String(),
		"enabled": s.config.App.IsEnabled(),
	}
	writeJSON(w, http.StatusOK, response)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
