// Package handlers provides HTTP request handlers for the scandeck API.
// This file implements health check and version endpoints.
package handlers

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/anstrom/scandeck/internal/logging"
)

// DatabasePinger defines the interface for archive health checking.
type DatabasePinger interface {
	PingContext(ctx context.Context) error
}

const healthCheckTimeout = 5 * time.Second

// Status constants.
const (
	StatusHealthy       = "healthy"
	StatusUnhealthy     = "unhealthy"
	StatusNotConfigured = "not configured"
	statusOK            = "ok"
)

var (
	version   = "dev"
	commit    = "none"
	buildTime = "unknown"
)

// SetBuildInfo records the values reported by the version endpoint.
func SetBuildInfo(v, c, bt string) {
	version, commit, buildTime = v, c, bt
}

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	database  DatabasePinger
	loopDone  <-chan struct{}
	logger    *logging.Logger
	startTime time.Time
}

// NewHealthHandler creates a new health handler. database may be nil when
// the archive is disabled; loopDone is the tab loop's Done channel.
func NewHealthHandler(database DatabasePinger, loopDone <-chan struct{}) *HealthHandler {
	return &HealthHandler{
		database:  database,
		loopDone:  loopDone,
		logger:    logging.Default().WithComponent("api-health"),
		startTime: time.Now(),
	}
}

// HealthResponse represents a health check response.
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Uptime    string            `json:"uptime"`
	Checks    map[string]string `json:"checks"`
}

// VersionResponse represents version information.
type VersionResponse struct {
	Version   string    `json:"version"`
	Commit    string    `json:"commit"`
	BuildTime string    `json:"build_time"`
	GoVersion string    `json:"go_version"`
	Timestamp time.Time `json:"timestamp"`
}

// Health godoc
// @Summary Health check
// @Description Reports whether the tab loop is running and the archive answers
// @Tags System
// @Produce json
// @Success 200 {object} HealthResponse
// @Failure 503 {object} HealthResponse
// @Router /health [get]
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	response := HealthResponse{
		Status:    StatusHealthy,
		Timestamp: time.Now().UTC(),
		Uptime:    time.Since(h.startTime).String(),
		Checks:    make(map[string]string),
	}

	select {
	case <-h.loopDone:
		response.Status = StatusUnhealthy
		response.Checks["tab_loop"] = "stopped"
	default:
		response.Checks["tab_loop"] = statusOK
	}

	if h.database != nil {
		if err := h.database.PingContext(ctx); err != nil {
			response.Status = StatusUnhealthy
			response.Checks["archive"] = "failed: " + err.Error()
			h.logger.Warn("Archive health check failed", "error", err)
		} else {
			response.Checks["archive"] = statusOK
		}
	} else {
		response.Checks["archive"] = StatusNotConfigured
	}

	statusCode := http.StatusOK
	if response.Status == StatusUnhealthy {
		statusCode = http.StatusServiceUnavailable
	}
	writeJSON(w, r, statusCode, response)
}

// Version godoc
// @Summary Version information
// @Tags System
// @Produce json
// @Success 200 {object} VersionResponse
// @Router /version [get]
func (h *HealthHandler) Version(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, VersionResponse{
		Version:   version,
		Commit:    commit,
		BuildTime: buildTime,
		GoVersion: runtime.Version(),
		Timestamp: time.Now().UTC(),
	})
}
