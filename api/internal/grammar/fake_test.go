package grammar

import (
	"context"
	"sync/atomic"
	"time"

	"grammar-proxy/api/internal/llm"
)

// fakeGen replays a fixed reply or error, optionally after a delay.
type fakeGen struct {
	reply      *llm.Reply
	err        error
	delay      time.Duration
	ignoreCtx  bool
	calls      atomic.Int32
	lastPrompt atomic.Value
}

func (f *fakeGen) Name() string     { return "fake" }
func (f *fakeGen) GetModel() string { return "fake-model" }

func (f *fakeGen) Generate(ctx context.Context, prompt string) (*llm.Reply, error) {
	f.calls.Add(1)
	f.lastPrompt.Store(prompt)
	if f.delay > 0 {
		if f.ignoreCtx {
			time.Sleep(f.delay)
		} else {
			select {
			case <-time.After(f.delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}
	return f.reply, f.err
}

func textReply(s string) *llm.Reply { return &llm.Reply{Text: s} }
