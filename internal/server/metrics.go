package server

import (
	"bufio"
	"errors"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
)

// httpLabels are the labels of every per-request series. path is the chi
// route pattern, so /api/mudras/{label} is one series for all labels.
var httpLabels = []string{"method", "path", "status"}

var (
	requestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "mudra",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "Time spent serving API requests.",
		Buckets:   []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.5, 1},
	}, httpLabels)

	requestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mudra",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "API requests by route and status.",
	}, httpLabels)

	// wsClients tracks open result subscriptions; Hub moves it on register
	// and unregister.
	wsClients = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "mudra",
		Name:      "websocket_clients",
		Help:      "Connected WebSocket clients.",
	})

	registerOnce sync.Once
)

// registerMetrics adds the HTTP collectors to the default registry. Several
// servers in one process (tests) share them.
func registerMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(requestDuration, requestsTotal, wsClients)
	})
}

// routeLabel is the matched chi pattern, or "unknown" for requests that hit
// no route.
func routeLabel(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unknown"
}

func metricsMiddleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(sw, r)

			labels := prometheus.Labels{
				"method": r.Method,
				"path":   routeLabel(r),
				"status": strconv.Itoa(sw.status),
			}
			requestDuration.With(labels).Observe(time.Since(start).Seconds())
			requestsTotal.With(labels).Inc()
		})
	}
}

// statusWriter remembers the first status written. It also implements
// http.Hijacker so /api/ws upgrades work behind the middleware; a hijacked
// request is recorded as 101.
type statusWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (w *statusWriter) WriteHeader(status int) {
	if !w.wroteHeader {
		w.status = status
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(status)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	w.wroteHeader = true
	return w.ResponseWriter.Write(b)
}

func (w *statusWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("hijack not supported by underlying response writer")
	}
	w.status = http.StatusSwitchingProtocols
	w.wroteHeader = true
	return h.Hijack()
}

func (w *statusWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
