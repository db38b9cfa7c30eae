package validate

import (
	"errors"
	"strings"
	"testing"

	"github.com/kindlingapp/kindling/internal/profile"
	"github.com/kindlingapp/kindling/internal/question"
)

func q(level question.Level, style question.Style, text string) question.Question {
	return question.Question{
		Level:     level,
		Style:     style,
		Text:      text,
		Rationale: "r",
		FollowUp:  "build on {their last point}",
	}
}

func baseSet(qs ...question.Question) question.Set {
	return question.Set{Questions: qs}
}

func calmContext() profile.Context {
	return profile.Context{NoiseLevel: 0, TimeBudgetMinutes: 15, Stage: profile.StageIcebreaker}
}

func playfulOK() profile.Preferences {
	return profile.Preferences{AllowPlayful: true}
}

func validTriple() []question.Question {
	return []question.Question{
		q(question.LevelDiscovery, question.StyleSoftCuriosity, "What brought you here tonight?"),
		q(question.LevelDiscovery, question.StyleSharedInterest, "How did you get into climbing?"),
		q(question.LevelBridge, question.StyleOpportunityProbe, "What would make this quarter a win for you?"),
	}
}

func TestApply_HappyPath(t *testing.T) {
	set, err := Apply(baseSet(validTriple()...), calmContext(), playfulOK())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(set.Questions) != 3 {
		t.Fatalf("questions = %d", len(set.Questions))
	}
	for i, got := range set.Questions {
		if !got.Flags.BoundaryOK || !got.Flags.LoudSafe || !got.Flags.TimeSafe {
			t.Errorf("question %d flags = %+v", i, got.Flags)
		}
	}
	if set.TopPicks != nil {
		t.Error("validator must clear top picks, ranking comes later")
	}
}

func TestApply_RedZoneDropped(t *testing.T) {
	qs := append(validTriple(),
		q(question.LevelBridge, question.StyleSoftCuriosity, "How do you feel about Politics at work?"))

	set, err := Apply(baseSet(qs...), calmContext(), playfulOK())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(set.Questions) != 3 {
		t.Fatalf("red-zone question should be dropped, got %d", len(set.Questions))
	}
	for _, got := range set.Questions {
		lower := strings.ToLower(got.Text)
		for _, topic := range question.RedZoneTopics {
			if strings.Contains(lower, topic) {
				t.Errorf("red-zone topic %q survived in %q", topic, got.Text)
			}
		}
	}
}

func TestApply_InsufficientAfterFiltering(t *testing.T) {
	// Three of four hit red-zone topics, leaving two.
	qs := []question.Question{
		q(question.LevelDiscovery, question.StyleSoftCuriosity, "What's your salary band?"),
		q(question.LevelDiscovery, question.StyleSoftCuriosity, "Thoughts on religion?"),
		q(question.LevelDiscovery, question.StyleSoftCuriosity, "Any health goals?"),
		q(question.LevelBridge, question.StyleOpportunityProbe, "What are you building next?"),
	}
	qs = append(qs, q(question.LevelDiscovery, question.StyleSharedInterest, "Seen any good talks today?"))

	_, err := Apply(baseSet(qs...), calmContext(), playfulOK())
	if !errors.Is(err, ErrInsufficientValidQuestions) {
		t.Errorf("expected ErrInsufficientValidQuestions, got %v", err)
	}
}

func TestApply_LoudTruncation(t *testing.T) {
	long := "If you could spend a whole afternoon learning absolutely anything from anyone here at this event, what would you honestly pick?"
	qs := validTriple()
	qs[0] = q(question.LevelDiscovery, question.StyleSoftCuriosity, long)

	ctx := calmContext()
	ctx.NoiseLevel = 3

	set, err := Apply(baseSet(qs...), ctx, playfulOK())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := set.Questions[0]
	if n := len(strings.Fields(got.Text)); n > 14 {
		t.Errorf("truncated text has %d words: %q", n, got.Text)
	}
	if !strings.HasSuffix(got.Text, "?") {
		t.Errorf("truncated text should end with ?: %q", got.Text)
	}
	if !got.Flags.LoudSafe {
		t.Error("loud_safe must be recomputed after truncation")
	}
}

func TestApply_LoudSafeInvariant(t *testing.T) {
	// Every question in a noisy context must come out at 14 words or fewer.
	qs := []question.Question{
		q(question.LevelDiscovery, question.StyleSoftCuriosity, strings.Repeat("word ", 30)+"?"),
		q(question.LevelBridge, question.StyleSharedInterest, strings.Repeat("blah ", 20)+"?"),
		q(question.LevelBridge, question.StyleOpportunityProbe, "Short and direct?"),
	}
	ctx := calmContext()
	ctx.NoiseLevel = 2

	set, err := Apply(baseSet(qs...), ctx, playfulOK())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, got := range set.Questions {
		if n := len(strings.Fields(got.Text)); n > 14 {
			t.Errorf("question %d has %d words under noise", i, n)
		}
		if !got.Flags.LoudSafe {
			t.Errorf("question %d not loud_safe", i)
		}
	}
}

func TestApply_QuietNoTruncation(t *testing.T) {
	long := "If you could spend a whole afternoon learning absolutely anything from anyone here, what would you pick and why would that be?"
	qs := validTriple()
	qs[1] = q(question.LevelDiscovery, question.StyleSharedInterest, long)

	set, err := Apply(baseSet(qs...), calmContext(), playfulOK())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if set.Questions[1].Text != long {
		t.Error("quiet context must not truncate")
	}
	if set.Questions[1].Flags.LoudSafe {
		t.Error("a 20+ word question is not loud_safe even when kept")
	}
}

func TestApply_TimeSafeFlag(t *testing.T) {
	ctx := calmContext()
	ctx.TimeBudgetMinutes = 2

	set, err := Apply(baseSet(validTriple()...), ctx, playfulOK())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, got := range set.Questions {
		wantSafe := got.Level == question.LevelDiscovery
		if got.Flags.TimeSafe != wantSafe {
			t.Errorf("level %s time_safe = %v, want %v", got.Level, got.Flags.TimeSafe, wantSafe)
		}
	}
	// Informational flag: nothing is dropped.
	if len(set.Questions) != 3 {
		t.Errorf("rushed context must not drop questions, got %d", len(set.Questions))
	}
}

func TestApply_NoOpportunityProbe(t *testing.T) {
	qs := []question.Question{
		q(question.LevelDiscovery, question.StyleSoftCuriosity, "a?"),
		q(question.LevelDiscovery, question.StyleSharedInterest, "b?"),
		q(question.LevelBridge, question.StyleSoftCuriosity, "c?"),
	}
	_, err := Apply(baseSet(qs...), calmContext(), playfulOK())
	if !errors.Is(err, ErrConstraintViolation) {
		t.Errorf("expected ErrConstraintViolation, got %v", err)
	}
}

func TestApply_TooManyPlayful(t *testing.T) {
	qs := append(validTriple(),
		q(question.LevelBridge, question.StylePlayfulPersonal, "d?"),
		q(question.LevelBridge, question.StylePlayfulPersonal, "e?"))
	_, err := Apply(baseSet(qs...), calmContext(), playfulOK())
	if !errors.Is(err, ErrConstraintViolation) {
		t.Errorf("expected ErrConstraintViolation, got %v", err)
	}
}

func TestApply_PlayfulDisallowed(t *testing.T) {
	qs := append(validTriple(), q(question.LevelBridge, question.StylePlayfulPersonal, "d?"))

	// Allowed: one playful passes.
	if _, err := Apply(baseSet(qs...), calmContext(), playfulOK()); err != nil {
		t.Fatalf("one playful with playful allowed should pass: %v", err)
	}

	// Disallowed: the same set fails.
	_, err := Apply(baseSet(qs...), calmContext(), profile.Preferences{AllowPlayful: false})
	if !errors.Is(err, ErrConstraintViolation) {
		t.Errorf("expected ErrConstraintViolation, got %v", err)
	}
}

func TestApply_CountBounds(t *testing.T) {
	// Six survivors exceed the maximum.
	qs := append(validTriple(),
		q(question.LevelDiscovery, question.StyleSoftCuriosity, "d?"),
		q(question.LevelDiscovery, question.StyleSoftCuriosity, "e?"),
		q(question.LevelDiscovery, question.StyleSoftCuriosity, "f?"))
	_, err := Apply(baseSet(qs...), calmContext(), playfulOK())
	if !errors.Is(err, ErrConstraintViolation) {
		t.Errorf("expected ErrConstraintViolation for oversize set, got %v", err)
	}
}

func TestTruncateWords(t *testing.T) {
	got := truncateWords("one two three four five", 3)
	if got != "one two three?" {
		t.Errorf("got %q", got)
	}
	if s := truncateWords("short enough", 14); s != "short enough" {
		t.Errorf("no-op truncation changed text: %q", s)
	}
	// Trailing punctuation on the cut word is replaced, not doubled.
	if s := truncateWords("a b c? d e", 3); s != "a b c?" {
		t.Errorf("got %q", s)
	}
}
