package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"grammar-proxy/api/internal/llm"
)

const DefaultModel = "gemini-2.5-flash"

// Engine talks to the Gemini API through a single long-lived client. It is
// safe for concurrent use; call Close on shutdown.
type Engine struct {
	Model string

	cl *genai.Client
	m  *genai.GenerativeModel
}

func New(ctx context.Context, apiKey, model string, opts ...option.ClientOption) (*Engine, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, llm.ErrEmptyAPIKey
	}
	model = strings.TrimSpace(model)
	if model == "" {
		model = DefaultModel
	}

	cl, err := genai.NewClient(ctx, append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("gemini: new client: %w", err)
	}

	m := cl.GenerativeModel(model)
	m.GenerationConfig = genai.GenerationConfig{
		Temperature:      ptrFloat32(0),
		ResponseMIMEType: "application/json",
	}

	return &Engine{Model: model, cl: cl, m: m}, nil
}

func (e *Engine) Name() string     { return "gemini" }
func (e *Engine) GetModel() string { return e.Model }

// Generate sends the prompt as a single text part. Cancelling ctx aborts the
// underlying call.
func (e *Engine) Generate(ctx context.Context, prompt string) (*llm.Reply, error) {
	resp, err := e.m.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, fmt.Errorf("gemini: generate: %w", err)
	}
	return toReply(resp), nil
}

func (e *Engine) Close() error {
	return e.cl.Close()
}

// toReply keeps every text part. Reply.Text mirrors the SDK "text" accessor
// of other languages: the concatenated text parts of the first candidate.
func toReply(resp *genai.GenerateContentResponse) *llm.Reply {
	out := &llm.Reply{}
	if resp == nil {
		return out
	}
	for _, c := range resp.Candidates {
		if c == nil || c.Content == nil {
			out.Candidates = append(out.Candidates, llm.Candidate{})
			continue
		}
		var cand llm.Candidate
		for _, p := range c.Content.Parts {
			if t, ok := p.(genai.Text); ok {
				cand.Parts = append(cand.Parts, string(t))
			}
		}
		out.Candidates = append(out.Candidates, cand)
	}
	if len(out.Candidates) > 0 {
		out.Text = strings.Join(out.Candidates[0].Parts, "")
	}
	return out
}

func ptrFloat32(v float32) *float32 { return &v }
