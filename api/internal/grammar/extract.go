package grammar

import (
	"encoding/json"
	"strings"

	"grammar-proxy/api/internal/llm"
)

// replyStrategy pulls raw text out of a model reply.
type replyStrategy func(*llm.Reply) (string, bool)

// parseStrategy turns cleaned reply text into the corrected string.
type parseStrategy func(string) (string, bool)

var replyStrategies = []replyStrategy{
	directText,
	firstCandidatePart,
}

var parseStrategies = []parseStrategy{
	jsonCorrected,
	rawText,
}

// replyText returns the first non-empty text found by replyStrategies.
func replyText(r *llm.Reply) (string, bool) {
	if r == nil {
		return "", false
	}
	for _, s := range replyStrategies {
		if t, ok := s(r); ok && t != "" {
			return t, true
		}
	}
	return "", false
}

func directText(r *llm.Reply) (string, bool) {
	return r.Text, r.Text != ""
}

func firstCandidatePart(r *llm.Reply) (string, bool) {
	return r.FirstPart()
}

// cleanReply trims the reply and removes a surrounding code fence along with
// a "json" language tag.
func cleanReply(raw string) string {
	raw = TrimText(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.Trim(raw, "`")
		if len(raw) >= 4 && strings.EqualFold(raw[:4], "json") {
			raw = TrimText(raw[4:])
		}
	}
	return raw
}

// parseCorrected runs parseStrategies in order; the last one always succeeds.
func parseCorrected(cleaned string) string {
	for _, s := range parseStrategies {
		if c, ok := s(cleaned); ok {
			return c
		}
	}
	return ""
}

// jsonCorrected reads the "corrected" field of a JSON object. A missing field
// yields "", a non-string field rejects the strategy.
func jsonCorrected(s string) (string, bool) {
	var obj map[string]any
	if err := json.Unmarshal([]byte(s), &obj); err != nil || obj == nil {
		return "", false
	}
	v, ok := obj["corrected"]
	if !ok {
		return "", true
	}
	str, ok := v.(string)
	if !ok {
		return "", false
	}
	return TrimText(str), true
}

func rawText(s string) (string, bool) {
	return TrimText(s), true
}
