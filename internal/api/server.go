package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"delphi/internal/api/health"
	"delphi/internal/metrics"
	"delphi/pkg/errors"
	"delphi/pkg/logger"
)

// ServerConfig contains configuration for HTTP server
type ServerConfig struct {
	Host         string
	Port         int
	ServiceName  string
	Version      string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// Server wraps HTTP server with lifecycle management
type Server struct {
	httpServer *http.Server
	log        *logger.Logger
}

// NewServer creates and configures HTTP server with all routes
func NewServer(
	cfg ServerConfig,
	healthHandler *health.Handler,
	wsHandler *WebSocketHandler,
	cacheHandler *CacheHandler,
	log *logger.Logger,
) *Server {
	mux := http.NewServeMux()

	// Health check endpoints (Kubernetes probes)
	mux.HandleFunc("/health", healthHandler.HandleHealth)
	mux.HandleFunc("/ready", healthHandler.HandleReadiness)
	mux.HandleFunc("/live", healthHandler.HandleLiveness)

	// Prometheus metrics endpoint
	mux.Handle("/metrics", metrics.Handler())

	// Dashboard analysis stream
	mux.HandleFunc("/ws", wsHandler.HandleWebSocket)

	// Cache REST endpoints, served under /api and aliased without the
	// prefix for older dashboard builds
	registerCacheRoutes(mux, "/api/cache", cacheHandler)
	registerCacheRoutes(mux, "/cache", cacheHandler)

	// Root endpoint (service info)
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = fmt.Fprintf(w, `{"service":"%s","version":"%s","status":"running"}`,
			cfg.ServiceName, cfg.Version)
	})

	port := 8000
	if cfg.Port > 0 {
		port = cfg.Port
	}
	readTimeout := cfg.ReadTimeout
	if readTimeout <= 0 {
		readTimeout = 10 * time.Second
	}
	writeTimeout := cfg.WriteTimeout
	if writeTimeout <= 0 {
		writeTimeout = 10 * time.Second
	}
	idleTimeout := cfg.IdleTimeout
	if idleTimeout <= 0 {
		idleTimeout = 60 * time.Second
	}

	log.Infof("HTTP server configured on port %d", port)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, port),
		Handler:      mux,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}

	return &Server{
		httpServer: httpServer,
		log:        log,
	}
}

func registerCacheRoutes(mux *http.ServeMux, prefix string, h *CacheHandler) {
	mux.HandleFunc(prefix+"/check", h.HandleCheck)
	mux.HandleFunc(prefix+"/load", h.HandleLoad)
	mux.HandleFunc(prefix+"/list", h.HandleList)
	mux.HandleFunc(prefix+"/delete", h.HandleDelete)
	mux.HandleFunc(prefix+"/clear", h.HandleClear)
}

// Start begins listening for HTTP requests
// Blocks until server is stopped or encounters an error
func (s *Server) Start() error {
	s.log.Infof("Starting HTTP server on %s", s.httpServer.Addr)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return errors.Wrap(err, "http server failed")
	}

	return nil
}

// Shutdown gracefully stops the HTTP server
// Waits for active connections to complete within timeout
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("Stopping HTTP server...")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return errors.Wrap(err, "http server shutdown failed")
	}

	s.log.Info("✓ HTTP server stopped")
	return nil
}
