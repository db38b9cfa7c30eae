package rank

import (
	"reflect"
	"testing"

	"github.com/kindlingapp/kindling/internal/profile"
	"github.com/kindlingapp/kindling/internal/question"
)

func mk(level question.Level, style question.Style) question.Question {
	return question.Question{
		Level: level,
		Style: style,
		Text:  "q?",
		Flags: question.Flags{LoudSafe: true, TimeSafe: true, BoundaryOK: true},
	}
}

func icebreaker() profile.Context {
	return profile.Context{Stage: profile.StageIcebreaker, TimeBudgetMinutes: 15}
}

func TestTopPicks_Empty(t *testing.T) {
	if got := TopPicks(question.Set{}, icebreaker(), profile.Preferences{}); got != nil {
		t.Errorf("empty set should rank to nil, got %v", got)
	}
}

func TestTopPicks_IndicesValid(t *testing.T) {
	set := question.Set{Questions: []question.Question{
		mk(question.LevelDiscovery, question.StyleSoftCuriosity),
		mk(question.LevelBridge, question.StyleOpportunityProbe),
		mk(question.LevelCatalyst, question.StylePlayfulPersonal),
		mk(question.LevelDiscovery, question.StyleSharedInterest),
	}}
	picks := TopPicks(set, icebreaker(), profile.Preferences{AllowPlayful: true})

	if len(picks) > 3 {
		t.Fatalf("at most 3 picks, got %d", len(picks))
	}
	seen := map[int]bool{}
	for _, p := range picks {
		if p < 0 || p >= len(set.Questions) {
			t.Errorf("pick %d out of range", p)
		}
		if seen[p] {
			t.Errorf("duplicate pick %d", p)
		}
		seen[p] = true
	}
}

func TestTopPicks_OpportunityProbeFavored(t *testing.T) {
	set := question.Set{Questions: []question.Question{
		mk(question.LevelDiscovery, question.StyleSoftCuriosity),
		mk(question.LevelDiscovery, question.StyleOpportunityProbe),
		mk(question.LevelDiscovery, question.StyleSoftCuriosity),
	}}
	picks := TopPicks(set, icebreaker(), profile.Preferences{})
	if picks[0] != 1 {
		t.Errorf("opportunity_probe should rank first, picks = %v", picks)
	}
}

func TestTopPicks_StageWeighting(t *testing.T) {
	set := question.Set{Questions: []question.Question{
		mk(question.LevelCatalyst, question.StyleSoftCuriosity),
		mk(question.LevelBridge, question.StyleSoftCuriosity),
		mk(question.LevelDiscovery, question.StyleSoftCuriosity),
	}}

	picks := TopPicks(set, icebreaker(), profile.Preferences{})
	if picks[0] != 2 {
		t.Errorf("discovery should lead at icebreaker, picks = %v", picks)
	}

	warm := profile.Context{Stage: profile.StageWarm, TimeBudgetMinutes: 15}
	picks = TopPicks(set, warm, profile.Preferences{})
	if picks[0] != 1 {
		t.Errorf("bridge should lead at warm, picks = %v", picks)
	}
}

func TestTopPicks_SharedInterestBoost(t *testing.T) {
	questions := []question.Question{
		mk(question.LevelDiscovery, question.StyleSoftCuriosity),
		mk(question.LevelDiscovery, question.StyleSharedInterest),
	}

	noOverlap := question.Set{Questions: questions}
	picks := TopPicks(noOverlap, icebreaker(), profile.Preferences{})
	// Equal scores: original order wins.
	if picks[0] != 0 {
		t.Errorf("without commonalities the tie should keep order, picks = %v", picks)
	}

	withOverlap := question.Set{
		Summary:   question.Summary{Commonalities: []string{"ai"}},
		Questions: questions,
	}
	picks = TopPicks(withOverlap, icebreaker(), profile.Preferences{})
	if picks[0] != 1 {
		t.Errorf("commonalities should boost shared_interest, picks = %v", picks)
	}
}

func TestTopPicks_StableTies(t *testing.T) {
	set := question.Set{Questions: []question.Question{
		mk(question.LevelDiscovery, question.StyleSoftCuriosity),
		mk(question.LevelDiscovery, question.StyleSoftCuriosity),
		mk(question.LevelDiscovery, question.StyleSoftCuriosity),
	}}
	want := []int{0, 1, 2}
	for range 10 {
		if got := TopPicks(set, icebreaker(), profile.Preferences{}); !reflect.DeepEqual(got, want) {
			t.Fatalf("ties must keep original order, got %v", got)
		}
	}
}

func TestTopPicks_TimeUnsafePenalized(t *testing.T) {
	slow := mk(question.LevelDiscovery, question.StyleSoftCuriosity)
	slow.Flags.TimeSafe = false
	set := question.Set{Questions: []question.Question{
		slow,
		mk(question.LevelDiscovery, question.StyleSoftCuriosity),
	}}
	picks := TopPicks(set, icebreaker(), profile.Preferences{})
	if picks[0] != 1 {
		t.Errorf("time-unsafe question should rank below its twin, picks = %v", picks)
	}
}
