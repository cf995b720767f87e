package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Mock answers like a well-behaved model without any network access. It
// capitalizes the first letter of the text and ends it with a period.
type Mock struct {
	Delay time.Duration
}

func (m *Mock) Name() string     { return "mock" }
func (m *Mock) GetModel() string { return "mock" }

func (m *Mock) Generate(ctx context.Context, prompt string) (*Reply, error) {
	if m.Delay > 0 {
		select {
		case <-time.After(m.Delay):
		case <-ctx.Done():
			return nil, fmt.Errorf("mock: %w", ctx.Err())
		}
	}

	text := promptText(prompt)
	if len(text) > 0 && text[0] >= 'a' && text[0] <= 'z' {
		text = strings.ToUpper(text[:1]) + text[1:]
	}
	if text != "" && !strings.HasSuffix(text, ".") {
		text += "."
	}

	body, err := json.Marshal(map[string]string{"corrected": text})
	if err != nil {
		return nil, fmt.Errorf("mock: marshal reply: %w", err)
	}
	return &Reply{Text: string(body)}, nil
}

// promptText recovers the user text from a prompt ending in "Text: <text>".
func promptText(prompt string) string {
	if _, after, ok := strings.Cut(prompt, "Text:"); ok {
		return strings.TrimSpace(after)
	}
	return strings.TrimSpace(prompt)
}
