// Package pipeline orchestrates one question-generation invocation:
// normalize → detect overlap → compose → generate → validate → rank.
// The pipeline holds no state between calls; everything but the single
// backend call is pure, so parallel invocations are safe.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/kindlingapp/kindling/internal/composer"
	"github.com/kindlingapp/kindling/internal/overlap"
	"github.com/kindlingapp/kindling/internal/profile"
	"github.com/kindlingapp/kindling/internal/question"
	"github.com/kindlingapp/kindling/internal/validate"

	"github.com/kindlingapp/kindling/internal/rank"
)

// Generator abstracts the generation adapter so deterministic stages can
// be tested with a fake backend.
type Generator interface {
	Generate(ctx context.Context, prompt composer.Prompt) (question.Set, error)
}

// Request carries one invocation's loosely typed collaborator records.
// Other is nil in single-profile mode. Normalization happens inside the
// pipeline; callers never pre-validate.
type Request struct {
	Mode        composer.Mode
	Self        map[string]any
	Other       map[string]any
	Context     map[string]any
	Preferences map[string]any
	Notes       string
}

// Engine runs the full generation pipeline.
type Engine struct {
	generator Generator
}

// New creates an Engine around the given generator.
func New(g Generator) *Engine {
	return &Engine{generator: g}
}

// Generate runs one invocation end to end and returns a validated, ranked
// question set. Results are all-or-nothing: any stage failure surfaces as
// an error and no partial set is returned. The summary in the result is
// the deterministically detected overlap, never model output.
func (e *Engine) Generate(ctx context.Context, req Request) (question.Set, error) {
	start := time.Now()

	mode := req.Mode
	if mode == "" {
		mode = composer.ModeOpeners
	}
	if !mode.Valid() {
		return question.Set{}, fmt.Errorf("unknown mode %q", req.Mode)
	}

	self := profile.NormalizeProfile(req.Self)
	var other *profile.Profile
	if req.Other != nil {
		o := profile.NormalizeProfile(req.Other)
		other = &o
	}
	pctx := profile.NormalizeContext(req.Context)
	prefs := profile.NormalizePreferences(req.Preferences)

	summary := overlap.Detect(self, other, pctx)

	prompt := composer.Compose(composer.Input{
		Mode:        mode,
		Self:        self,
		Other:       other,
		Context:     pctx,
		Preferences: prefs,
		Summary:     summary,
		Notes:       req.Notes,
	})

	raw, err := e.generator.Generate(ctx, prompt)
	if err != nil {
		return question.Set{}, err
	}
	raw.Summary = summary

	validated, err := validate.Apply(raw, pctx, prefs)
	if err != nil {
		return question.Set{}, err
	}

	validated.TopPicks = rank.TopPicks(validated, pctx, prefs)

	slog.Debug("question set generated",
		"mode", mode,
		"questions", len(validated.Questions),
		"commonalities", len(summary.Commonalities),
		"complements", len(summary.Complements),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return validated, nil
}
