package server

import (
	"net/http"
	"strconv"
	"time"
)

// setupHTTPRoutes configures all HTTP handlers on the server's own mux
func (s *Server) setupHTTPRoutes() {
	s.mux = http.NewServeMux()

	s.mux.HandleFunc("/ws", s.corsMiddleware(s.HandleWebSocket)) // Dashboard sessions (controls in, payloads out)
	s.mux.HandleFunc("/api/features", s.instrument("/api/features", s.corsMiddleware(s.HandleFeatures)))
	s.mux.HandleFunc("/api/options", s.instrument("/api/options", s.corsMiddleware(s.HandleOptions)))
	s.mux.HandleFunc("/health", s.instrument("/health", s.corsMiddleware(s.HandleHealth)))
	s.mux.Handle("/metrics", s.metrics.Handler())
	s.mux.HandleFunc("/", s.instrument("/", s.HandleStatic))
}

// corsMiddleware adds CORS headers to HTTP responses using configured allowed origins
// Uses the same origin validation as WebSocket connections (server.allowed_origins config)
func (s *Server) corsMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && s.checkOrigin(r) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Vary", "Origin")
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next(w, r)
	}
}

// instrument records request counts and latency under a fixed route label
func (s *Server) instrument(route string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next(rec, r)
		s.metrics.RecordHTTPRequest(route, strconv.Itoa(rec.status), time.Since(start))
	}
}

// statusRecorder captures the response status for metrics
type statusRecorder struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (rr *statusRecorder) WriteHeader(code int) {
	if !rr.wroteHeader {
		rr.status = code
		rr.wroteHeader = true
	}
	rr.ResponseWriter.WriteHeader(code)
}
