package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"grammar-proxy/api/internal/metrics"
)

func TestMetricsMiddleware(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /check", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := Metrics(mux)

	tests := []struct {
		name   string
		method string
		path   string
		route  string
		status string
	}{
		{name: "pattern with method", method: http.MethodPost, path: "/check", route: "/check", status: "200"},
		{name: "pattern without method", method: http.MethodGet, path: "/healthz", route: "/healthz", status: "200"},
		{name: "unknown path collapses", method: http.MethodGet, path: "/wp-admin/setup.php", route: "other", status: "404"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := testutil.ToFloat64(metrics.RequestsTotal.WithLabelValues(tt.method, tt.route, tt.status))

			req := httptest.NewRequest(tt.method, tt.path, nil)
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			after := testutil.ToFloat64(metrics.RequestsTotal.WithLabelValues(tt.method, tt.route, tt.status))
			if after != before+1 {
				t.Errorf("counter: got %f, want %f", after, before+1)
			}
		})
	}

	t.Run("raw path never becomes a label", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/random-1234", nil)
		handler.ServeHTTP(httptest.NewRecorder(), req)
		if got := testutil.ToFloat64(metrics.RequestsTotal.WithLabelValues(http.MethodGet, "/random-1234", "404")); got != 0 {
			t.Errorf("raw path series: got %f, want 0", got)
		}
	})
}

func TestRouteLabel(t *testing.T) {
	tests := map[string]string{
		"":                     "other",
		"POST /check":          "/check",
		"/healthz":             "/healthz",
		"GET example.com/ws/x": "/ws/x",
		"GET /history":         "/history",
	}
	for in, want := range tests {
		if got := routeLabel(in); got != want {
			t.Errorf("routeLabel(%q) = %q, want %q", in, got, want)
		}
	}
}
