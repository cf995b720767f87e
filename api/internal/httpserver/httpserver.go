package httpserver

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2/adapters/humago"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"grammar-proxy/api/internal/handle"
	"grammar-proxy/api/internal/middleware"
)

const (
	apiTitle   = "Grammar Proxy API"
	apiVersion = "1.0.0"

	shutdownGrace = 10 * time.Second
)

// SetupMux wires handlers with the full middleware chain.
func SetupMux(h *handle.Handle, rl *middleware.RateLimiter, apiKey string, origins middleware.Origins) http.Handler {
	mux := http.NewServeMux()
	api := humago.New(mux, handle.APIConfig(apiTitle, apiVersion))
	h.Register(api)
	h.Routes(mux)
	mux.Handle("/metrics", promhttp.Handler())

	return middleware.Chain(mux, rl, apiKey, origins)
}

// New returns a server with header and idle limits set. Write timeouts are
// left to handlers since /ws/check connections are long-lived.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}
}

// Run serves until ctx is done, then shuts down gracefully.
func Run(ctx context.Context, srv *http.Server, log *slog.Logger) error {
	errc := make(chan error, 1)
	go func() {
		log.Info("listening", "addr", srv.Addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Info("server stopped")
	return nil
}
