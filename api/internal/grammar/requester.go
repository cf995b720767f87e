package grammar

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"grammar-proxy/api/internal/llm"
	"grammar-proxy/api/internal/metrics"
)

// DefaultTimeout bounds a single model call.
const DefaultTimeout = 10 * time.Second

// Outcome classifies one correction request.
type Outcome string

const (
	OutcomeCorrected Outcome = "corrected"
	OutcomeUnchanged Outcome = "unchanged"
	OutcomeTimeout   Outcome = "timeout"
	OutcomeError     Outcome = "error"
	OutcomeMalformed Outcome = "malformed"
)

// Cacheable reports whether the outcome reflects an actual model answer.
func (o Outcome) Cacheable() bool {
	return o == OutcomeCorrected || o == OutcomeUnchanged
}

// Requester asks a Generator for a corrected version of a text. It never
// returns an error: every failure degrades to "no correction".
type Requester struct {
	gen     llm.Generator
	timeout time.Duration
	log     *slog.Logger
}

func NewRequester(gen llm.Generator, timeout time.Duration, log *slog.Logger) *Requester {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if log == nil {
		log = slog.Default()
	}
	return &Requester{gen: gen, timeout: timeout, log: log}
}

type generateResult struct {
	reply *llm.Reply
	err   error
}

// Correct returns the corrected text when it differs from the trimmed
// original; otherwise the returned string is empty and the Outcome says why.
func (r *Requester) Correct(ctx context.Context, text string) (string, Outcome) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	// The generator may ignore ctx; the buffered channel lets an abandoned
	// call finish without leaking the goroutine.
	ch := make(chan generateResult, 1)
	start := time.Now()
	go func() {
		reply, err := r.gen.Generate(ctx, BuildPrompt(text))
		ch <- generateResult{reply: reply, err: err}
	}()

	var res generateResult
	select {
	case res = <-ch:
	case <-ctx.Done():
		res.err = ctx.Err()
	}
	metrics.UpstreamDuration.WithLabelValues(r.gen.GetModel()).Observe(time.Since(start).Seconds())

	if res.err != nil {
		if errors.Is(res.err, context.DeadlineExceeded) {
			r.log.WarnContext(ctx, "model request timed out", "model", r.gen.GetModel(), "timeout", r.timeout)
			return "", r.done(OutcomeTimeout)
		}
		r.log.WarnContext(ctx, "model request failed", "model", r.gen.GetModel(), "error", res.err)
		return "", r.done(OutcomeError)
	}

	raw, ok := replyText(res.reply)
	if !ok {
		r.log.WarnContext(ctx, "model reply has no text", "model", r.gen.GetModel())
		return "", r.done(OutcomeMalformed)
	}
	r.log.DebugContext(ctx, "model reply", "raw", raw)

	corrected := parseCorrected(cleanReply(raw))
	original := TrimText(text)
	r.log.DebugContext(ctx, "correction parsed", "original", original, "corrected", corrected)

	if corrected == "" || corrected == original {
		return "", r.done(OutcomeUnchanged)
	}
	return corrected, r.done(OutcomeCorrected)
}

func (r *Requester) done(o Outcome) Outcome {
	metrics.UpstreamResults.WithLabelValues(string(o)).Inc()
	return o
}
