package grammar

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"grammar-proxy/api/internal/llm"
)

func TestReplyText(t *testing.T) {
	tests := []struct {
		name   string
		reply  *llm.Reply
		want   string
		wantOK bool
	}{
		{"nil reply", nil, "", false},
		{"direct text wins", &llm.Reply{Text: "direct", Candidates: []llm.Candidate{{Parts: []string{"part"}}}}, "direct", true},
		{"falls back to first part", &llm.Reply{Candidates: []llm.Candidate{{Parts: []string{"part", "second"}}}}, "part", true},
		{"no candidates", &llm.Reply{}, "", false},
		{"candidate without parts", &llm.Reply{Candidates: []llm.Candidate{{}}}, "", false},
		{"empty first part", &llm.Reply{Candidates: []llm.Candidate{{Parts: []string{""}}}}, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := replyText(tt.reply)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCleanReply(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "  hello  ", "hello"},
		{"json fence", "```json\n{\"corrected\": \"Fine.\"}\n```", "{\"corrected\": \"Fine.\"}"},
		{"uppercase tag", "```JSON\n{}\n```", "{}"},
		{"untagged fence", "```\n{\"a\": 1}\n```", "\n{\"a\": 1}\n"},
		{"no fence keeps backticks inside", "use `x`", "use `x`"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cleanReply(tt.in))
		})
	}
}

func TestParseCorrected(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"json object", `{"corrected": "  Fine.  "}`, "Fine."},
		{"missing field", `{"other": "x"}`, ""},
		{"non-string field falls back to raw", `{"corrected": 5}`, `{"corrected": 5}`},
		{"null field falls back to raw", `{"corrected": null}`, `{"corrected": null}`},
		{"json null falls back to raw", `null`, "null"},
		{"json array falls back to raw", `["a"]`, `["a"]`},
		{"plain text", "  I have an apple.  ", "I have an apple."},
		{"broken json", `{"corrected": "x"`, `{"corrected": "x"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseCorrected(tt.in))
		})
	}
}

func TestBuildPrompt(t *testing.T) {
	p := BuildPrompt("I has a apple")
	assert.Contains(t, p, `{"corrected": "<corrected sentence>"}`)
	assert.Contains(t, p, "Text: I has a apple")
}
