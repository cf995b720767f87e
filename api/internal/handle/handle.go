package handle

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gorilla/websocket"

	"grammar-proxy/api/internal/grammar"
)

// History exposes stored checks for the read endpoints.
type History interface {
	Recent(ctx context.Context, limit int) ([]grammar.Record, error)
	Ping(ctx context.Context) error
}

// Limiter throttles WebSocket frames; *middleware.RateLimiter satisfies it.
type Limiter interface {
	Allow(key string) bool
}

type Options struct {
	// History backs /history and the store health check; nil disables both.
	History History
	Logger  *slog.Logger
	// AllowOrigin decides which browser origins may open /ws/check. Requests
	// without an Origin header (non-browser clients) are always accepted.
	AllowOrigin func(origin string) bool
	// Limiter, when set, counts every /ws/check frame against the sender's IP.
	Limiter Limiter
}

type Handle struct {
	checker  *grammar.Checker
	history  History
	log      *slog.Logger
	limiter  Limiter
	upgrader websocket.Upgrader
}

func New(checker *grammar.Checker, opts Options) *Handle {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	allow := opts.AllowOrigin
	return &Handle{
		checker: checker,
		history: opts.History,
		log:     log,
		limiter: opts.Limiter,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || (allow != nil && allow(origin))
			},
		},
	}
}

// APIConfig is the huma configuration for this service. The $schema link
// transformer is dropped so bodies keep their documented shape.
func APIConfig(title, version string) huma.Config {
	cfg := huma.DefaultConfig(title, version)
	cfg.CreateHooks = nil
	return cfg
}

// Register adds the huma operations to api.
func (h *Handle) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "postCheck",
		Method:      http.MethodPost,
		Path:        "/check",
		Summary:     "Check text for grammar and spelling",
		Description: "Returns word-level edit spans between the text and its corrected form. " +
			"Upstream failures yield an empty list, never an error status.",
		Tags: []string{"check"},
	}, h.Check)

	if h.history != nil {
		huma.Register(api, huma.Operation{
			OperationID: "getHistory",
			Method:      http.MethodGet,
			Path:        "/history",
			Summary:     "List recent checks",
			Tags:        []string{"history"},
		}, h.History)
	}
}

// Routes mounts the plain net/http endpoints that huma does not describe.
func (h *Handle) Routes(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", h.Healthz)
	mux.HandleFunc("/ws/check", h.CheckWS)
}

type healthResponse struct {
	Status string `json:"status"`
	Model  string `json:"model"`
	Store  string `json:"store"`
}

func (h *Handle) Healthz(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "GET only", http.StatusMethodNotAllowed)
		return
	}
	resp := healthResponse{Status: "ok", Model: h.checker.Model(), Store: "disabled"}
	if h.history != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		resp.Store = "ok"
		if err := h.history.Ping(ctx); err != nil {
			h.log.Warn("healthz: store ping failed", "err", err)
			resp.Store = "error"
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
