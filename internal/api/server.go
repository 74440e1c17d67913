// Package api exposes the reconciliation service over HTTP.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"invoice-reconciliation-service/internal/extraction"
	"invoice-reconciliation-service/internal/reconciler"
	"invoice-reconciliation-service/pkg/logger"
)

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration

	// MaxUploadBytes caps multipart ledger uploads.
	MaxUploadBytes int64
}

// DefaultServerConfig returns the standard server configuration.
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		Port:            8080,
		ReadTimeout:     30 * time.Second,
		WriteTimeout:    60 * time.Second,
		ShutdownTimeout: 10 * time.Second,
		MaxUploadBytes:  16 << 20,
	}
}

// Validate checks the server configuration.
func (c *ServerConfig) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", c.Port)
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("max upload bytes must be positive")
	}
	return nil
}

// Server wires the reconciliation service into an HTTP API.
type Server struct {
	config     *ServerConfig
	service    *reconciler.Service
	extractor  *extraction.Client
	router     *mux.Router
	httpServer *http.Server
	log        logger.Logger
}

// NewServer creates an API server. The extractor is optional; without
// one the extraction endpoint reports 503.
func NewServer(config *ServerConfig, service *reconciler.Service, extractor *extraction.Client) (*Server, error) {
	if config == nil {
		config = DefaultServerConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid server configuration: %w", err)
	}
	if service == nil {
		return nil, fmt.Errorf("reconciliation service is required")
	}

	s := &Server{
		config:    config,
		service:   service,
		extractor: extractor,
		router:    mux.NewRouter(),
		log:       logger.GetGlobalLogger().WithComponent("api"),
	}
	s.registerRoutes()

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", config.Port),
		Handler:      s.router,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
	}
	return s, nil
}

func (s *Server) registerRoutes() {
	s.router.Use(s.loggingMiddleware)

	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/reconcile", s.handleReconcile).Methods(http.MethodPost)
	api.HandleFunc("/reconcile/export", s.handleExport).Methods(http.MethodPost)
	api.HandleFunc("/ledger/parse", s.handleLedgerParse).Methods(http.MethodPost)
	api.HandleFunc("/invoice/extract", s.handleExtract).Methods(http.MethodPost)
}

// Handler returns the server's HTTP handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start runs the server until the context is cancelled, then shuts it
// down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.WithField("addr", s.httpServer.Addr).Info("HTTP server listening")
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.log.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()
	return s.httpServer.Shutdown(shutdownCtx)
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		next.ServeHTTP(w, r)
		s.log.WithFields(logger.Fields{
			"method":  r.Method,
			"path":    r.URL.Path,
			"elapsed": time.Since(started),
		}).Debug("Handled request")
	})
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		json.NewEncoder(w).Encode(payload)
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeError writes a JSON error body with the given status code.
func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}
