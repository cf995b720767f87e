package handle

import (
	"encoding/json"
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/gorilla/websocket"

	"grammar-proxy/api/internal/grammar"
	"grammar-proxy/api/internal/middleware"
)

const (
	wsReadLimit = 64 * 1024
	wsIdle      = 2 * time.Minute
)

// wsRequest is one frame from the client. ID is echoed back so editors can
// match answers to the text they sent.
type wsRequest struct {
	ID string `json:"id,omitempty"`
	grammar.CheckRequest
}

type wsResponse struct {
	ID          string               `json:"id,omitempty"`
	Corrections []grammar.Correction `json:"corrections"`
	Error       string               `json:"error,omitempty"`
}

// CheckWS serves /ws/check: each JSON text frame is checked like POST /check
// and answered with one frame.
func (h *Handle) CheckWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied with an HTTP error
		h.log.Debug("ws: upgrade failed", "err", err)
		return
	}
	defer conn.Close()
	conn.SetReadLimit(wsReadLimit)

	ctx := r.Context()
	client := middleware.ClientIP(r)
	for {
		_ = conn.SetReadDeadline(time.Now().Add(wsIdle))
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.log.Warn("ws: read failed", "err", err)
			}
			return
		}

		var req wsRequest
		resp := wsResponse{Corrections: []grammar.Correction{}}
		if err := json.Unmarshal(msg, &req); err != nil {
			resp.Error = "invalid json: " + err.Error()
		} else {
			resp.ID = req.ID
			if problem := validate(req.CheckRequest); problem != "" {
				resp.Error = problem
			} else if h.limiter != nil && !h.limiter.Allow(client) {
				resp.Error = "rate limit exceeded"
			} else {
				resp.Corrections = h.checker.Check(ctx, req.CheckRequest).Corrections
			}
		}

		if err := conn.WriteJSON(resp); err != nil {
			h.log.Warn("ws: write failed", "err", err)
			return
		}
	}
}

func validate(req grammar.CheckRequest) string {
	switch {
	case req.Text == "":
		return "text is required"
	case utf8.RuneCountInString(req.Text) > grammar.MaxTextLength:
		return "text is too long"
	}
	return ""
}
