// Package handlers provides HTTP request handlers for the scandeck API.
// This file contains the response and request helpers shared by every
// handler.
package handlers

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/anstrom/scandeck/internal/api/middleware"
	"github.com/anstrom/scandeck/internal/errors"
	"github.com/anstrom/scandeck/internal/logging"
)

const (
	// DefaultMaxRequestSize bounds JSON request bodies when no limit is configured.
	DefaultMaxRequestSize int64 = 1 << 20

	defaultListLimit = 50
	maxListLimit     = 500
)

// ErrorResponse represents an API error response.
type ErrorResponse struct {
	Error     string    `json:"error"`
	Message   string    `json:"message"`
	Code      string    `json:"code,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id,omitempty"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, r *http.Request, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		logging.Error("Failed to encode JSON response",
			"request_id", middleware.GetRequestID(r),
			"error", err)
	}
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, r *http.Request, statusCode int, err error) {
	response := ErrorResponse{
		Error:     http.StatusText(statusCode),
		Message:   err.Error(),
		Timestamp: time.Now().UTC(),
		RequestID: middleware.GetRequestID(r),
	}
	if code := errors.GetCode(err); code != errors.CodeUnknown {
		response.Code = string(code)
	}

	writeJSON(w, r, statusCode, response)
}

// StatusForError maps an error code onto an HTTP status.
func StatusForError(err error) int {
	switch errors.GetCode(err) {
	case errors.CodeNotFound, errors.CodeFileNotFound:
		return http.StatusNotFound
	case errors.CodeValidation, errors.CodeEmptyCommand, errors.CodeNoTarget,
		errors.CodeParseFailed, errors.CodeRootRequired:
		return http.StatusBadRequest
	case errors.CodeConflict, errors.CodeScanAborted, errors.CodeInvalidState:
		return http.StatusConflict
	case errors.CodeProcessSpawn:
		return http.StatusUnprocessableEntity
	case errors.CodeFilePermission:
		return http.StatusForbidden
	case errors.CodeDatabaseTimeout:
		return http.StatusGatewayTimeout
	case errors.CodeDatabaseConnection:
		return http.StatusServiceUnavailable
	case errors.CodeCanceled:
		return http.StatusRequestTimeout
	default:
		return http.StatusInternalServerError
	}
}

// handleError logs server-side failures and writes the mapped status.
func handleError(w http.ResponseWriter, r *http.Request, logger *logging.Logger, operation string, err error) {
	status := StatusForError(err)
	if status >= http.StatusInternalServerError {
		logger.Error(fmt.Sprintf("Failed to %s", operation),
			"request_id", middleware.GetRequestID(r),
			"error", err)
	}
	writeError(w, r, status, err)
}

// parseJSON decodes the request body into dest, rejecting unknown fields and
// bodies larger than limit bytes.
func parseJSON(w http.ResponseWriter, r *http.Request, limit int64, dest interface{}) error {
	if r.Body == nil || r.Body == http.NoBody {
		return errors.NewScanError(errors.CodeValidation, "request body is empty")
	}
	if limit <= 0 {
		limit = DefaultMaxRequestSize
	}
	r.Body = http.MaxBytesReader(w, r.Body, limit)

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dest); err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			return errors.NewScanError(errors.CodeValidation,
				fmt.Sprintf("request body too large (max %d bytes)", limit))
		}
		return errors.NewScanError(errors.CodeValidation, "invalid JSON: "+err.Error())
	}
	return nil
}

// extractUUIDFromPath extracts the UUID path variable name.
func extractUUIDFromPath(r *http.Request, name string) (uuid.UUID, error) {
	raw, ok := mux.Vars(r)[name]
	if !ok {
		return uuid.Nil, errors.NewScanError(errors.CodeValidation, name+" not provided")
	}

	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, errors.NewScanError(errors.CodeValidation, "invalid "+name+": "+raw)
	}
	return id, nil
}

// getLimit reads the limit query parameter, clamped to maxListLimit.
func getLimit(r *http.Request) (int, error) {
	value := strings.TrimSpace(r.URL.Query().Get("limit"))
	if value == "" {
		return defaultListLimit, nil
	}
	limit, err := strconv.Atoi(value)
	if err != nil || limit < 1 {
		return 0, errors.NewScanError(errors.CodeValidation, "invalid limit parameter: "+value)
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	return limit, nil
}
