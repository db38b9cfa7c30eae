// Package generation invokes the text-generation backend with a composed
// prompt and parses its structured output into candidate questions. It
// isolates backend-specific error handling; candidates leave this package
// unvalidated, and no fallback content is ever substituted: an explicit
// failure beats fabricated questions.
package generation

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/kindlingapp/kindling/internal/composer"
	"github.com/kindlingapp/kindling/internal/engine"
	"github.com/kindlingapp/kindling/internal/question"
)

// defaultTimeout caps the backend call. This is a wall-clock network
// ceiling, unrelated to the Context.TimeBudgetMinutes content constraint.
const defaultTimeout = 20 * time.Second

// Adapter sends composed prompts to an Engine and parses the responses.
type Adapter struct {
	engine  engine.Engine
	model   string
	timeout time.Duration
}

// NewAdapter creates an Adapter for the given backend and model. If
// timeout <= 0 the default 20s ceiling is used.
func NewAdapter(eng engine.Engine, model string, timeout time.Duration) *Adapter {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Adapter{engine: eng, model: model, timeout: timeout}
}

// Generate issues exactly one backend call and returns the raw candidate
// set. Backend failures surface as ErrUnavailable, unparseable responses
// as ErrMalformedOutput; both are terminal for the call.
func (a *Adapter) Generate(ctx context.Context, prompt composer.Prompt) (question.Set, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	raw, err := a.engine.Chat(ctx, a.model, []engine.Message{
		{Role: "system", Content: prompt.Instruction},
		{Role: "user", Content: prompt.Task},
	}, setSchema())
	if err != nil {
		if ctx.Err() == context.Canceled {
			return question.Set{}, ctx.Err()
		}
		return question.Set{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	set, err := parseSet(raw)
	if err != nil {
		return question.Set{}, fmt.Errorf("%w: %v", ErrMalformedOutput, err)
	}
	return set, nil
}

// setSchema describes the expected response object for backends that
// support structured output. The full nested shape is spelled out in the
// prompt's task block; this keeps the top level on rails.
func setSchema() *engine.Schema {
	return &engine.Schema{
		Type: "object",
		Properties: map[string]engine.SchemaProperty{
			"summary":   {Type: "object", Description: "Overlap summary the questions were built from"},
			"questions": {Type: "array", Description: "3 to 5 candidate questions"},
			"top_picks": {Type: "array", Description: "Indices of the strongest questions"},
		},
		Required: []string{"summary", "questions"},
	}
}

// parseSet extracts and decodes a question.Set from a model response.
// Responses wrapped in markdown fences or conversational filler are
// tolerated; anything without a decodable object is malformed.
func parseSet(resp string) (question.Set, error) {
	payload, err := ExtractJSON(resp)
	if err != nil {
		return question.Set{}, err
	}

	var set question.Set
	if err := json.Unmarshal([]byte(payload), &set); err != nil {
		return question.Set{}, fmt.Errorf("unmarshal question set: %w", err)
	}

	if len(set.Questions) == 0 {
		return question.Set{}, fmt.Errorf("response contains no questions")
	}
	for i, q := range set.Questions {
		if q.Text == "" {
			return question.Set{}, fmt.Errorf("question %d has empty text", i)
		}
		if !q.Level.Valid() {
			return question.Set{}, fmt.Errorf("question %d has unknown level %q", i, q.Level)
		}
		if !q.Style.Valid() {
			return question.Set{}, fmt.Errorf("question %d has unknown style %q", i, q.Style)
		}
	}

	if set.Summary.Commonalities == nil {
		set.Summary.Commonalities = []string{}
	}
	if set.Summary.Complements == nil {
		set.Summary.Complements = []string{}
	}

	return set, nil
}
