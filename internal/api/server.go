// Package api provides the HTTP adapter of scandeck. It exposes the tab
// notebook, profiles and archive as a REST API and streams tab events over a
// websocket so an external renderer can drive the scanner.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	_ "github.com/anstrom/scandeck/docs/swagger" // registers the generated OpenAPI document
	apihandlers "github.com/anstrom/scandeck/internal/api/handlers"
	"github.com/anstrom/scandeck/internal/api/middleware"
	"github.com/anstrom/scandeck/internal/auth"
	"github.com/anstrom/scandeck/internal/config"
	"github.com/anstrom/scandeck/internal/errors"
	"github.com/anstrom/scandeck/internal/logging"
	"github.com/anstrom/scandeck/internal/metrics"
	"github.com/anstrom/scandeck/internal/profiles"
	"github.com/anstrom/scandeck/internal/tab"
)

const defaultShutdownTimeout = 30 * time.Second

// Deps are the components the server exposes.
type Deps struct {
	Loop     *tab.Loop
	Profiles *profiles.Store
	// Events streams tab events on /api/v1/ws. It must be the Surface of
	// the notebook Loop drives.
	Events *apihandlers.EventHub
	// Archive and ArchiveDB are nil when the archive is disabled.
	Archive   apihandlers.ArchiveStore
	ArchiveDB apihandlers.DatabasePinger
	// Metrics is nil when metrics are disabled.
	Metrics *metrics.PrometheusMetrics
	// Keys verifies API keys; required when API auth is enabled.
	Keys *auth.KeyRing
}

// Server represents the API server.
type Server struct {
	httpServer *http.Server
	router     *mux.Router
	config     config.APIConfig
	deps       Deps
	logger     *logging.Logger
	startTime  time.Time
}

// New creates the API server.
func New(cfg *config.Config, deps Deps) (*Server, error) {
	if cfg == nil {
		return nil, errors.NewConfigFieldError(errors.CodeConfiguration, "configuration is required", "api", nil)
	}
	if deps.Loop == nil || deps.Profiles == nil {
		return nil, errors.NewConfigFieldError(errors.CodeConfiguration,
			"tab loop and profile store are required", "api", nil)
	}
	if cfg.API.Auth.Enabled && (deps.Keys == nil || deps.Keys.Len() == 0) {
		return nil, errors.NewConfigFieldError(errors.CodeConfiguration,
			"API auth is enabled but no API key hashes are configured", "api.auth.api_key_hashes", nil)
	}

	s := &Server{
		router:    mux.NewRouter(),
		config:    cfg.API,
		deps:      deps,
		logger:    logging.Default().WithComponent("api"),
		startTime: time.Now(),
	}

	s.setupMiddleware()
	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:              net.JoinHostPort(cfg.API.Host, strconv.Itoa(cfg.API.Port)),
		Handler:           s.Handler(),
		ReadTimeout:       cfg.API.ReadTimeout,
		ReadHeaderTimeout: cfg.API.ReadTimeout,
		WriteTimeout:      cfg.API.WriteTimeout,
		IdleTimeout:       cfg.API.IdleTimeout,
	}
	return s, nil
}

// Handler returns the full handler chain: recovery, CORS, then the router.
func (s *Server) Handler() http.Handler {
	cors := handlers.CORS(
		handlers.AllowedOrigins(s.config.AllowedOrigins),
		handlers.AllowedOriginValidator(middleware.OriginAllowed(s.config.AllowedOrigins)),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization", middleware.APIKeyHeader, middleware.RequestIDHeader}),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		handlers.ExposedHeaders([]string{middleware.RequestIDHeader}),
	)
	recovery := handlers.RecoveryHandler(
		handlers.RecoveryLogger(recoveryLogger{s.logger}),
	)
	return recovery(cors(s.router))
}

// Start serves until ctx is canceled or the listener fails.
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("Starting API server", "address", s.httpServer.Addr)

	errChan := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("API server failed: %w", err)
		}
		close(errChan)
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		return s.Stop()
	}
}

// Stop shuts the server down gracefully.
func (s *Server) Stop() error {
	timeout := s.config.ShutdownTimeout
	if timeout <= 0 {
		timeout = defaultShutdownTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	s.logger.Info("Stopping API server")
	if s.deps.Events != nil {
		s.deps.Events.Shutdown()
	}
	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("API server shutdown error", "error", err)
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.logger.Info("API server stopped", "uptime", time.Since(s.startTime).Round(time.Second))
	return nil
}

// setupRoutes configures all API routes.
func (s *Server) setupRoutes() {
	maxBody := s.config.MaxRequestSize

	health := apihandlers.NewHealthHandler(s.deps.ArchiveDB, s.deps.Loop.Done())
	tabs := apihandlers.NewTabHandler(s.deps.Loop, s.deps.Archive, s.config.ResultsDir, maxBody)
	profileHandler := apihandlers.NewProfileHandler(s.deps.Profiles, maxBody)
	archiveHandler := apihandlers.NewArchiveHandler(s.deps.Archive)

	api := s.router.PathPrefix("/api/v1").Subrouter()
	if s.config.Auth.Enabled {
		api.Use(middleware.Authentication(s.deps.Keys, s.logger))
	}

	api.HandleFunc("/health", health.Health).Methods(http.MethodGet)
	api.HandleFunc("/version", health.Version).Methods(http.MethodGet)

	api.HandleFunc("/tabs", tabs.ListTabs).Methods(http.MethodGet)
	api.HandleFunc("/tabs", tabs.CreateTab).Methods(http.MethodPost)
	api.HandleFunc("/tabs/{id}", tabs.GetTab).Methods(http.MethodGet)
	api.HandleFunc("/tabs/{id}", tabs.CloseTab).Methods(http.MethodDelete)
	api.HandleFunc("/tabs/{id}/scan", tabs.StartScan).Methods(http.MethodPost)
	api.HandleFunc("/tabs/{id}/load", tabs.LoadResult).Methods(http.MethodPost)
	api.HandleFunc("/tabs/{id}/save", tabs.SaveResult).Methods(http.MethodPost)
	api.HandleFunc("/tabs/{id}/hosts", tabs.ListHosts).Methods(http.MethodGet)
	api.HandleFunc("/tabs/{id}/services", tabs.ListServices).Methods(http.MethodGet)
	api.HandleFunc("/tabs/{id}/views/hosts", tabs.SelectHosts).Methods(http.MethodPost)
	api.HandleFunc("/tabs/{id}/views/services", tabs.SelectServices).Methods(http.MethodPost)
	api.HandleFunc("/tabs/{id}/hosts/{host}/comment", tabs.SetComment).Methods(http.MethodPut)
	api.HandleFunc("/tabs/{id}/output", tabs.GetOutput).Methods(http.MethodGet)
	api.HandleFunc("/tabs/{id}/fingerprints", tabs.GetFingerprints).Methods(http.MethodGet)
	api.HandleFunc("/tabs/{id}/details", tabs.GetDetails).Methods(http.MethodGet)

	api.HandleFunc("/profiles", profileHandler.ListProfiles).Methods(http.MethodGet)
	api.HandleFunc("/profiles", profileHandler.PutProfile).Methods(http.MethodPost)
	api.HandleFunc("/profiles/{name}", profileHandler.GetProfile).Methods(http.MethodGet)
	api.HandleFunc("/profiles/{name}", profileHandler.DeleteProfile).Methods(http.MethodDelete)

	api.HandleFunc("/archive", archiveHandler.ListArchive).Methods(http.MethodGet)
	api.HandleFunc("/archive/{id}", archiveHandler.GetArchived).Methods(http.MethodGet)

	if s.deps.Events != nil {
		api.HandleFunc("/ws", s.deps.Events.ServeWS).Methods(http.MethodGet)
	}

	if s.deps.Metrics != nil {
		s.router.Handle("/metrics", s.deps.Metrics.Handler()).Methods(http.MethodGet)
	}

	s.router.PathPrefix("/swagger/").Handler(httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
		httpSwagger.DeepLinking(true),
		httpSwagger.DocExpansion("none"),
	))
	s.router.HandleFunc("/docs", s.redirectToSwagger).Methods(http.MethodGet)
	s.router.HandleFunc("/", s.apiIndex).Methods(http.MethodGet)
}

// setupMiddleware configures middleware for the router. CORS and panic
// recovery wrap the router in Handler so they also see unmatched requests.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID())
	s.router.Use(middleware.Logging(s.logger))
	if s.deps.Metrics != nil {
		s.router.Use(middleware.Metrics(s.deps.Metrics))
	}
	s.router.Use(middleware.SecurityHeaders())
	s.router.Use(middleware.OriginGuard(middleware.OriginAllowed(s.config.AllowedOrigins), s.logger))
	s.router.Use(middleware.ContentType())
}

// apiIndex lists the entry points for root requests.
func (s *Server) apiIndex(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"service": "scandeck",
		"version": "v1",
		"endpoints": map[string]string{
			"health":   "/api/v1/health",
			"tabs":     "/api/v1/tabs",
			"profiles": "/api/v1/profiles",
			"events":   "/api/v1/ws",
			"docs":     "/swagger/",
		},
		"timestamp": time.Now().UTC(),
	}
	s.WriteJSON(w, r, http.StatusOK, response)
}

func (s *Server) redirectToSwagger(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/swagger/index.html", http.StatusMovedPermanently)
}

// Router returns the configured router.
func (s *Server) Router() *mux.Router {
	return s.router
}

// Address returns the listen address.
func (s *Server) Address() string {
	return s.httpServer.Addr
}

// WriteJSON writes a JSON response.
func (s *Server) WriteJSON(w http.ResponseWriter, r *http.Request, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("Failed to encode JSON response",
			"error", err,
			"path", r.URL.Path,
			"method", r.Method)
	}
}

// recoveryLogger adapts the logger to gorilla/handlers' RecoveryHandlerLogger.
type recoveryLogger struct {
	logger *logging.Logger
}

func (l recoveryLogger) Println(v ...interface{}) {
	l.logger.Error("Panic in API handler", "panic", fmt.Sprint(v...))
}
