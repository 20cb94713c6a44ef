package middleware

import (
	"encoding/json"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/anstrom/scandeck/internal/auth"
	"github.com/anstrom/scandeck/internal/logging"
)

const (
	// APIKeyHeader carries the API key.
	APIKeyHeader = "X-API-Key"

	// APIKeyQueryParam carries the API key on websocket upgrades, where
	// browsers cannot set headers.
	APIKeyQueryParam = "api_key"

	websocketPath = "/api/v1/ws"
)

// OriginAllowed returns the browser origin policy. An empty list allows
// only loopback origins; otherwise only the listed origins, or any origin
// when "*" is listed. Requests without an Origin header are not from a
// browser page and always pass.
func OriginAllowed(allowed []string) func(string) bool {
	set := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		set[strings.TrimRight(strings.TrimSpace(o), "/")] = true
	}
	return func(origin string) bool {
		switch {
		case origin == "":
			return true
		case set["*"]:
			return true
		case len(set) == 0:
			return isLoopbackOrigin(origin)
		default:
			return set[strings.TrimRight(origin, "/")]
		}
	}
}

func isLoopbackOrigin(origin string) bool {
	u, err := url.Parse(origin)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return false
	}
	host := u.Hostname()
	if strings.EqualFold(host, "localhost") {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

// OriginGuard refuses requests sent from browser pages on origins the
// policy does not allow. CORS headers alone would still let such requests
// run.
func OriginGuard(allowed func(string) bool, logger *logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Add("Vary", "Origin")
			origin := r.Header.Get("Origin")
			if allowed(origin) {
				next.ServeHTTP(w, r)
				return
			}

			logger.Warn("API request from disallowed origin",
				"request_id", GetRequestID(r),
				"origin", origin,
				"path", r.URL.Path,
				"remote_addr", getClientIP(r))
			writeRejection(w, r, http.StatusForbidden, map[string]interface{}{
				"error":  "Origin not allowed",
				"origin": origin,
			})
		})
	}
}

// Authentication requires a valid API key on every route except health,
// version and CORS preflights. The key is read from X-API-Key or an
// Authorization bearer token, and from the api_key query parameter on the
// websocket route.
func Authentication(keys *auth.KeyRing, logger *logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions ||
				r.URL.Path == "/api/v1/health" || r.URL.Path == "/api/v1/version" {
				next.ServeHTTP(w, r)
				return
			}

			apiKey := presentedKey(r)
			if apiKey == "" {
				logger.Warn("API request without authentication",
					"request_id", GetRequestID(r),
					"path", r.URL.Path,
					"remote_addr", getClientIP(r))
				writeRejection(w, r, http.StatusUnauthorized, map[string]interface{}{
					"error":   "Authentication required",
					"message": "Provide API key in X-API-Key header or Authorization: Bearer <key>",
				})
				return
			}

			if !keys.Verify(apiKey) {
				logger.Warn("API request with invalid key",
					"request_id", GetRequestID(r),
					"path", r.URL.Path,
					"key_prefix", auth.CreateDisplayPrefix(apiKey),
					"remote_addr", getClientIP(r))
				writeRejection(w, r, http.StatusUnauthorized, map[string]interface{}{
					"error": "Authentication failed: Invalid API key",
				})
				return
			}

			logger.Debug("API request authenticated",
				"request_id", GetRequestID(r),
				"path", r.URL.Path,
				"key_prefix", auth.CreateDisplayPrefix(apiKey))
			next.ServeHTTP(w, r)
		})
	}
}

func presentedKey(r *http.Request) string {
	if key := strings.TrimSpace(r.Header.Get(APIKeyHeader)); key != "" {
		return key
	}
	if authz := r.Header.Get("Authorization"); strings.HasPrefix(authz, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authz, "Bearer "))
	}
	if r.URL.Path == websocketPath {
		return strings.TrimSpace(r.URL.Query().Get(APIKeyQueryParam))
	}
	return ""
}

func writeRejection(w http.ResponseWriter, r *http.Request, status int, body map[string]interface{}) {
	body["request_id"] = GetRequestID(r)
	body["timestamp"] = time.Now().UTC()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
