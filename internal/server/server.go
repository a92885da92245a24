package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/jonathan/cv-studio/internal/capture"
	"github.com/jonathan/cv-studio/internal/server/ratelimit"
	"github.com/jonathan/cv-studio/internal/store"
)

// maxBodyBytes bounds request bodies. A profile image data URL is the largest
// field a CV carries.
const maxBodyBytes = 5 << 20

// Exporter turns a rendered page into a PDF.
type Exporter interface {
	Export(ctx context.Context, req capture.Request) (*capture.Result, error)
	Status() capture.Status
}

// Server represents the HTTP server
type Server struct {
	httpServer  *http.Server
	handler     http.Handler
	store       *store.Store
	exporter    Exporter
	rateLimiter *ratelimit.Limiter
	logger      *slog.Logger

	// editMu serializes read-modify-write edits of list sections.
	editMu sync.Mutex
	// done is closed on shutdown to end open event streams.
	done     chan struct{}
	doneOnce sync.Once
}

// Config holds server configuration
type Config struct {
	Port   int
	Logger *slog.Logger
	// RateLimit configures the limiter. Nil loads it from the environment.
	RateLimit *ratelimit.Config
	// RequestsPerMinute and ExportPerMinute feed the limits when RateLimit
	// is nil.
	RequestsPerMinute int
	ExportPerMinute   int
}

// New creates a new server instance. A nil exporter serves everything but
// PDF export.
func New(st *store.Store, exporter Exporter, cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		store:    st,
		exporter: exporter,
		logger:   logger.With("component", "server"),
		done:     make(chan struct{}),
	}

	rlConfig := cfg.RateLimit
	if rlConfig == nil {
		rlConfig = ratelimit.LoadConfig(cfg.RequestsPerMinute, cfg.ExportPerMinute)
	}
	s.rateLimiter = ratelimit.NewLimiter(rlConfig)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /{$}", s.handlePreview)

	// CV sections
	mux.HandleFunc("GET /api/cv", s.handleGetCV)
	mux.HandleFunc("POST /api/cv/reset", s.handleResetCV)
	mux.HandleFunc("POST /api/cv/clear", s.handleClearCV)
	mux.HandleFunc("GET /api/cv/{slice}", s.handleGetSlice)
	mux.HandleFunc("PUT /api/cv/{slice}", s.handleReplaceSlice)
	mux.HandleFunc("POST /api/cv/{slice}", s.handleAddEntry)
	mux.HandleFunc("PUT /api/cv/{slice}/{id}", s.handleUpdateEntry)
	mux.HandleFunc("DELETE /api/cv/{slice}/{id}", s.handleRemoveEntry)
	mux.HandleFunc("POST /api/cv/{slice}/{id}/move", s.handleMoveEntry)
	mux.HandleFunc("DELETE /api/cv/skill-categories/{id}/skills/{skill_id}", s.handleRemoveSkill)

	// Templates and rendering
	mux.HandleFunc("GET /api/templates", s.handleListTemplates)
	mux.HandleFunc("PUT /api/template", s.handleSelectTemplate)
	mux.HandleFunc("GET /api/render", s.handleRender)

	// Export
	mux.HandleFunc("POST /api/export", s.handleExport)
	mux.HandleFunc("GET /api/export/status", s.handleExportStatus)

	// Change stream
	mux.HandleFunc("GET /api/events", s.handleEvents)

	s.handler = s.withRateLimit(s.withLogging(s.withCORS(mux)))
	s.httpServer = &http.Server{
		Addr:        fmt.Sprintf(":%d", cfg.Port),
		Handler:     s.handler,
		ReadTimeout: 30 * time.Second,
		// Exports hold the response open while the browser works.
		WriteTimeout: 300 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Handler returns the routed handler with its middleware.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start listens until ctx is done, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			s.close()
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return s.Shutdown(shutdownCtx)
}

// Shutdown ends open event streams and stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.close()
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.logger.Info("server stopped")
	return nil
}

func (s *Server) close() {
	s.doneOnce.Do(func() {
		close(s.done)
		if s.rateLimiter != nil {
			s.rateLimiter.Stop()
		}
	})
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		w.Header().Set("Access-Control-Expose-Headers", "Content-Disposition, X-PDF-Pages")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientID := s.extractClientID(r)

		allowed, info := s.rateLimiter.Allow(clientID, r.URL.Path, r.Method)
		s.setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, r, info)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Flush keeps event streams working through the recorder.
func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"remote", r.RemoteAddr,
			"elapsed", time.Since(start))
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"status": "ok",
		"export": s.exporter != nil,
	})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// decodeJSON reads a bounded JSON body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return &ErrValidation{Field: "body", Message: err.Error()}
	}
	return nil
}

// extractClientID extracts the client identifier from the request.
// It uses the IP address from RemoteAddr.
func (s *Server) extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func (s *Server) setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", info.Limit))
		w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", info.Remaining))
		w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", info.ResetTime.Unix()))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response with rate limit information.
func (s *Server) rateLimitResponse(w http.ResponseWriter, r *http.Request, info ratelimit.Info) {
	response := map[string]any{
		"error":     "rate_limit_exceeded",
		"message":   "Rate limit exceeded. Please try again later.",
		"limit":     info.Limit,
		"remaining": info.Remaining,
		"reset_at":  info.ResetTime.Format(time.RFC3339),
	}

	if info.RetryAfter > 0 {
		retry := int(info.RetryAfter.Seconds())
		if retry < 1 {
			retry = 1
		}
		response["retry_after"] = retry
		w.Header().Set("Retry-After", fmt.Sprintf("%d", retry))
	}

	s.logger.Warn("rate limit exceeded",
		"method", r.Method,
		"path", r.URL.Path,
		"limit", info.Limit,
		"reset", info.ResetTime.Format(time.RFC3339))

	s.jsonResponse(w, http.StatusTooManyRequests, response)
}
