package grammar

import "fmt"

const promptTemplate = `
You are a grammar and spelling correction assistant.
Return ONLY a valid JSON like this:
{"corrected": "<corrected sentence>"}

Text: %s
`

// BuildPrompt asks the model for a JSON object holding the corrected text.
func BuildPrompt(text string) string {
	return fmt.Sprintf(promptTemplate, text)
}
