package handle

import (
	"context"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"grammar-proxy/api/internal/grammar"
)

type CheckInput struct {
	Body grammar.CheckRequest
}

type CheckOutput struct {
	Body grammar.CheckResponse
}

// Check never fails once the body validated: upstream problems come back as
// an empty corrections list.
func (h *Handle) Check(ctx context.Context, in *CheckInput) (*CheckOutput, error) {
	return &CheckOutput{Body: h.checker.Check(ctx, in.Body)}, nil
}

type HistoryInput struct {
	Limit int `query:"limit" default:"20" minimum:"1" maximum:"100" doc:"Number of checks to return"`
}

type HistoryItem struct {
	Model       string               `json:"model"`
	Language    string               `json:"language"`
	Original    string               `json:"original"`
	Corrected   string               `json:"corrected"`
	Corrections []grammar.Correction `json:"corrections"`
	CreatedAt   time.Time            `json:"created_at"`
}

type HistoryOutput struct {
	Body struct {
		Checks []HistoryItem `json:"checks" doc:"Recent checks, newest first"`
	}
}

func (h *Handle) History(ctx context.Context, in *HistoryInput) (*HistoryOutput, error) {
	recs, err := h.history.Recent(ctx, in.Limit)
	if err != nil {
		h.log.Error("history: recent failed", "err", err)
		return nil, huma.Error503ServiceUnavailable("history unavailable")
	}
	out := &HistoryOutput{}
	out.Body.Checks = make([]HistoryItem, 0, len(recs))
	for _, rec := range recs {
		out.Body.Checks = append(out.Body.Checks, HistoryItem{
			Model:       rec.Model,
			Language:    rec.Language,
			Original:    rec.Original,
			Corrected:   rec.Corrected,
			Corrections: rec.Corrections,
			CreatedAt:   rec.CreatedAt,
		})
	}
	return out, nil
}
