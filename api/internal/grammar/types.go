package grammar

// DefaultLanguage is the language hint assumed when the client sends none.
const DefaultLanguage = "auto"

// SuggestionMessage annotates every reported span.
const SuggestionMessage = "Suggested change"

// MaxTextLength bounds CheckRequest.Text in characters. Keep in sync with the
// maxLength tag below.
const MaxTextLength = 10000

// CheckRequest is the text to correct plus a pass-through language hint.
type CheckRequest struct {
	Text     string `json:"text" minLength:"1" maxLength:"10000" example:"I has a apple" doc:"Text to check"`
	Language string `json:"language,omitempty" default:"auto" example:"auto" doc:"Language hint, passed through unchanged"`
}

// Correction is one edit span. Start and End are word indexes into the
// original text, End exclusive.
type Correction struct {
	Start      int    `json:"start" doc:"First word index of the span in the original text"`
	End        int    `json:"end" doc:"Word index one past the span in the original text"`
	Original   string `json:"original" doc:"Original words covered by the span"`
	Correction string `json:"correction" doc:"Replacement words, empty for deletions"`
	Message    string `json:"message" doc:"Human-readable annotation"`
}

// CheckResponse lists corrections left to right. An empty list means nothing
// to report or no correction available.
type CheckResponse struct {
	Corrections []Correction `json:"corrections" doc:"Edit spans, left to right"`
}

// Empty returns a response whose corrections encode as [] rather than null.
func Empty() CheckResponse {
	return CheckResponse{Corrections: []Correction{}}
}
