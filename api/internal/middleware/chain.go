package middleware

import (
	"net/http"
)

// Chain wraps the handler with the full middleware stack.
// Order: CORS → RequestID → Logging → Metrics → RateLimit → APIKey → MaxBytes → mux
//
// No http.TimeoutHandler here: it hides http.Hijacker and would break
// /ws/check. Upstream calls are bounded by the requester timeout instead.
func Chain(handler http.Handler, rl *RateLimiter, apiKey string, origins Origins) http.Handler {
	h := handler
	h = MaxBytes(64 * 1024)(h)
	h = APIKey(apiKey)(h)
	h = RateLimit(rl)(h)
	h = Metrics(h)
	h = Logging(h)
	h = RequestID(h)
	h = CORS(origins)(h)
	return h
}
