package llm

import (
	"context"
	"errors"
)

// ErrEmptyAPIKey is returned when an engine is constructed without credentials.
var ErrEmptyAPIKey = errors.New("llm: api key is empty")

// Generator is the "generate content" capability of a generative-language API.
type Generator interface {
	Name() string
	GetModel() string
	Generate(ctx context.Context, prompt string) (*Reply, error)
}

// Reply is the provider-neutral view of a model answer. Text holds the
// aggregated text when the provider exposes one; Candidates keep the raw parts.
type Reply struct {
	Text       string
	Candidates []Candidate
}

type Candidate struct {
	Parts []string
}

// FirstPart returns the first part of the first candidate.
func (r *Reply) FirstPart() (string, bool) {
	if r == nil || len(r.Candidates) == 0 || len(r.Candidates[0].Parts) == 0 {
		return "", false
	}
	return r.Candidates[0].Parts[0], true
}
