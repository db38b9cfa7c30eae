// Package validate enforces the hard rules on raw candidate question sets:
// red-zone topic bans, brevity under noise, time-budget flagging, style
// diversity, and count bounds. Passes run in a fixed order and are fully
// deterministic; violations that cannot be repaired surface as errors
// rather than silently degraded content.
package validate

import (
	"errors"
	"fmt"
	"strings"

	"github.com/kindlingapp/kindling/internal/profile"
	"github.com/kindlingapp/kindling/internal/question"
)

var (
	// ErrConstraintViolation means the candidate set is schema-valid but
	// breaks a diversity rule the validator must not repair by guessing.
	ErrConstraintViolation = errors.New("constraint violation in generated set")

	// ErrInsufficientValidQuestions means safety filtering left fewer
	// questions than the minimum; the caller decides whether to re-request.
	ErrInsufficientValidQuestions = errors.New("insufficient valid questions after filtering")
)

// Thresholds for the loud-safe and time-safe passes.
const (
	noisyLevel    = 2  // noise_level at or above this triggers truncation
	maxLoudWords  = 14 // word cap for questions in a noisy setting
	rushedMinutes = 2  // time budget at or below this marks non-discovery questions unsafe
)

// Apply runs the constraint passes over a raw candidate set and returns
// the validated set with recomputed flags. Questions that hit a red-zone
// topic are dropped, never repaired. The set's top picks are cleared;
// ranking happens after validation.
func Apply(raw question.Set, ctx profile.Context, prefs profile.Preferences) (question.Set, error) {
	out := raw
	out.TopPicks = nil
	out.Questions = make([]question.Question, 0, len(raw.Questions))

	noisy := ctx.NoiseLevel >= noisyLevel
	rushed := ctx.TimeBudgetMinutes <= rushedMinutes

	for _, q := range raw.Questions {
		q.Flags.BoundaryOK = boundaryOK(q.Text)
		if !q.Flags.BoundaryOK {
			continue
		}

		if noisy {
			q.Text = truncateWords(q.Text, maxLoudWords)
		}
		q.Flags.LoudSafe = wordCount(q.Text) <= maxLoudWords

		// Informational flag only; rushed settings don't drop slower questions,
		// the ranker just weighs them down.
		q.Flags.TimeSafe = !rushed || q.Level == question.LevelDiscovery

		out.Questions = append(out.Questions, q)
	}

	if len(out.Questions) < question.MinQuestions {
		return question.Set{}, fmt.Errorf("%w: %d of %d required remain after boundary filtering",
			ErrInsufficientValidQuestions, len(out.Questions), question.MinQuestions)
	}
	if len(out.Questions) > question.MaxQuestions {
		return question.Set{}, fmt.Errorf("%w: %d questions exceed the maximum of %d",
			ErrConstraintViolation, len(out.Questions), question.MaxQuestions)
	}

	if err := checkDiversity(out.Questions, prefs); err != nil {
		return question.Set{}, err
	}

	return out, nil
}

// boundaryOK reports whether the text avoids every red-zone topic.
func boundaryOK(text string) bool {
	lower := strings.ToLower(text)
	for _, topic := range question.RedZoneTopics {
		if strings.Contains(lower, topic) {
			return false
		}
	}
	return true
}

// checkDiversity enforces the style rules: at least one opportunity_probe,
// at most one playful_personal, and none at all when playful is disallowed.
func checkDiversity(qs []question.Question, prefs profile.Preferences) error {
	probes, playful := 0, 0
	for _, q := range qs {
		switch q.Style {
		case question.StyleOpportunityProbe:
			probes++
		case question.StylePlayfulPersonal:
			playful++
		}
	}

	if probes == 0 {
		return fmt.Errorf("%w: no opportunity_probe question remains", ErrConstraintViolation)
	}
	if playful > 1 {
		return fmt.Errorf("%w: %d playful_personal questions, maximum is 1", ErrConstraintViolation, playful)
	}
	if !prefs.AllowPlayful && playful > 0 {
		return fmt.Errorf("%w: playful_personal question present but playful is disallowed", ErrConstraintViolation)
	}
	return nil
}

// truncateWords cuts text to the first limit words and appends a trailing
// question mark when it actually truncated.
func truncateWords(text string, limit int) string {
	words := strings.Fields(text)
	if len(words) <= limit {
		return text
	}
	return strings.TrimRight(strings.Join(words[:limit], " "), "?,;:.!") + "?"
}

func wordCount(text string) int {
	return len(strings.Fields(text))
}
