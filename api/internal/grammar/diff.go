package grammar

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// WordDiff aligns the whitespace-separated words of original and corrected
// and reports every non-equal opcode as a Correction, in opcode order.
func WordDiff(original, corrected string) []Correction {
	a := Words(original)
	b := Words(corrected)

	out := []Correction{}
	for _, op := range difflib.NewMatcher(a, b).GetOpCodes() {
		if op.Tag == 'e' {
			continue
		}
		out = append(out, Correction{
			Start:      op.I1,
			End:        op.I2,
			Original:   strings.Join(a[op.I1:op.I2], " "),
			Correction: strings.Join(b[op.J1:op.J2], " "),
			Message:    SuggestionMessage,
		})
	}
	return out
}

// ApplyCorrections replaces each span of words with its correction and
// returns the resulting word sequence. Corrections must be ordered and
// non-overlapping, as WordDiff produces them.
func ApplyCorrections(words []string, corrections []Correction) []string {
	out := make([]string, 0, len(words))
	pos := 0
	for _, c := range corrections {
		out = append(out, words[pos:c.Start]...)
		out = append(out, Words(c.Correction)...)
		pos = c.End
	}
	return append(out, words[pos:]...)
}
