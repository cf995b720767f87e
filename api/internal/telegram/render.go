package telegram

import (
	"fmt"
	"strings"

	"grammar-proxy/api/internal/grammar"
)

// Render formats corrections for a chat reply: one line per span followed by
// the fully corrected text.
func Render(text string, corrections []grammar.Correction) string {
	if len(corrections) == 0 {
		return "✅ No suggestions."
	}
	var b strings.Builder
	b.WriteString("✏️ Suggestions:\n")
	for i, c := range corrections {
		switch {
		case c.Original == "":
			fmt.Fprintf(&b, "%d. add «%s»\n", i+1, c.Correction)
		case c.Correction == "":
			fmt.Fprintf(&b, "%d. remove «%s»\n", i+1, c.Original)
		default:
			fmt.Fprintf(&b, "%d. «%s» → «%s»\n", i+1, c.Original, c.Correction)
		}
	}
	words := grammar.ApplyCorrections(grammar.Words(text), corrections)
	b.WriteString("\n")
	b.WriteString(strings.Join(words, " "))
	return b.String()
}
