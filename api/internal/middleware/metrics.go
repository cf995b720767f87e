package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"grammar-proxy/api/internal/metrics"
)

// unmatchedRoute labels requests that never reached a registered pattern:
// 404s, and requests rejected earlier in the chain.
const unmatchedRoute = "other"

// Metrics counts requests by method, matched route and status code. The
// route comes from the ServeMux pattern, so arbitrary paths cannot grow the
// label set.
func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		metrics.RequestsTotal.WithLabelValues(r.Method, routeLabel(r.Pattern), strconv.Itoa(sw.status)).Inc()
	})
}

// routeLabel drops the method and host from a pattern like "POST /check".
func routeLabel(pattern string) string {
	if i := strings.IndexByte(pattern, ' '); i >= 0 {
		pattern = strings.TrimSpace(pattern[i+1:])
	}
	if i := strings.IndexByte(pattern, '/'); i > 0 {
		pattern = pattern[i:]
	}
	if pattern == "" {
		return unmatchedRoute
	}
	return pattern
}
