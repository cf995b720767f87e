package llm

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockGenerate(t *testing.T) {
	m := &Mock{}

	tests := []struct {
		name   string
		prompt string
		want   string
	}{
		{"capitalizes and adds period", "Fix this.\nText: hello world", `{"corrected":"Hello world."}`},
		{"keeps existing period", "Text: Hello world.", `{"corrected":"Hello world."}`},
		{"bare prompt", "  fine  ", `{"corrected":"Fine."}`},
		{"empty text", "Text: ", `{"corrected":""}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := m.Generate(context.Background(), tt.prompt)
			require.NoError(t, err)
			assert.Equal(t, tt.want, r.Text)
		})
	}
}

func TestMockContextCancel(t *testing.T) {
	m := &Mock{Delay: 5 * time.Second}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := m.Generate(ctx, "Text: hello")
	assert.Error(t, err)
}

func TestReplyFirstPart(t *testing.T) {
	var nilReply *Reply
	_, ok := nilReply.FirstPart()
	assert.False(t, ok)

	r := &Reply{Candidates: []Candidate{{Parts: []string{"a", "b"}}}}
	p, ok := r.FirstPart()
	require.True(t, ok)
	assert.Equal(t, "a", p)
}
