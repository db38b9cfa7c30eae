package profile

import (
	"reflect"
	"testing"
)

func TestNormalizeProfile_Nil(t *testing.T) {
	p := NormalizeProfile(nil)
	if !p.IsZero() {
		t.Errorf("expected zero profile, got %+v", p)
	}
}

func TestNormalizeProfile_NeverFabricates(t *testing.T) {
	// Absent fields must stay empty, never get invented values.
	p := NormalizeProfile(map[string]any{"name": "Iris"})
	if p.Name != "Iris" {
		t.Errorf("name = %q", p.Name)
	}
	if p.Role != "" || p.Company != "" || p.School != "" || p.RecentWin != "" {
		t.Errorf("expected empty optional fields, got %+v", p)
	}
	if p.Interests != nil || p.GoalsNextPeriod != nil || p.HelpOffers != nil {
		t.Errorf("expected nil sets, got %+v", p)
	}
}

func TestNormalizeProfile_ListShapes(t *testing.T) {
	tests := []struct {
		name string
		raw  any
		want []string
	}{
		{"string slice", []string{"AI", "climbing"}, []string{"AI", "climbing"}},
		{"any slice", []any{"AI", "climbing"}, []string{"AI", "climbing"}},
		{"comma string", "AI, climbing", []string{"AI", "climbing"}},
		{"blank entries dropped", []any{"AI", "  ", ""}, []string{"AI"}},
		{"wrong type", 42, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NormalizeProfile(map[string]any{"interests": tt.raw})
			if !reflect.DeepEqual(p.Interests, tt.want) {
				t.Errorf("interests = %v, want %v", p.Interests, tt.want)
			}
		})
	}
}

func TestNormalizeContext_Defaults(t *testing.T) {
	c := NormalizeContext(nil)
	if c.NoiseLevel != 0 {
		t.Errorf("noise_level = %d, want 0", c.NoiseLevel)
	}
	if c.TimeBudgetMinutes != DefaultTimeBudgetMinutes {
		t.Errorf("time_budget_minutes = %d, want %d", c.TimeBudgetMinutes, DefaultTimeBudgetMinutes)
	}
	if c.Stage != StageIcebreaker {
		t.Errorf("stage = %q, want icebreaker", c.Stage)
	}
}

func TestNormalizeContext_Coercion(t *testing.T) {
	c := NormalizeContext(map[string]any{
		"event_label":         "Demo Night",
		"event_category":      "Conference",
		"noise_level":         float64(7), // JSON number, above the cap
		"time_budget_minutes": "5",
		"conversation_stage":  "WARM",
		"city":                "Lisbon",
	})
	if c.EventCategory != EventConference {
		t.Errorf("category = %q", c.EventCategory)
	}
	if c.NoiseLevel != 3 {
		t.Errorf("noise_level = %d, want clamp to 3", c.NoiseLevel)
	}
	if c.TimeBudgetMinutes != 5 {
		t.Errorf("time_budget_minutes = %d", c.TimeBudgetMinutes)
	}
	if c.Stage != StageWarm {
		t.Errorf("stage = %q", c.Stage)
	}
}

func TestNormalizeContext_InvalidValues(t *testing.T) {
	c := NormalizeContext(map[string]any{
		"event_category":      "festival",
		"noise_level":         -2,
		"time_budget_minutes": 0,
		"conversation_stage":  "vibing",
	})
	if c.EventCategory != "" {
		t.Errorf("unknown category should stay empty, got %q", c.EventCategory)
	}
	if c.NoiseLevel != 0 {
		t.Errorf("negative noise should clamp to 0, got %d", c.NoiseLevel)
	}
	if c.TimeBudgetMinutes != DefaultTimeBudgetMinutes {
		t.Errorf("non-positive budget should default, got %d", c.TimeBudgetMinutes)
	}
	if c.Stage != StageIcebreaker {
		t.Errorf("unknown stage should default, got %q", c.Stage)
	}
}

func TestNormalizePreferences_Defaults(t *testing.T) {
	p := NormalizePreferences(nil)
	if !p.AllowPlayful {
		t.Error("allow_playful should default true")
	}
	if p.IncludeFavorites {
		t.Error("include_favorites should default false")
	}
	if p.TemporalFocus != FocusPresent {
		t.Errorf("temporal_focus = %q", p.TemporalFocus)
	}
	if p.Vulnerability != VulnerabilityLow {
		t.Errorf("vulnerability = %q", p.Vulnerability)
	}
}

func TestNormalizePreferences_Overrides(t *testing.T) {
	p := NormalizePreferences(map[string]any{
		"allow_playful":       false,
		"include_favorites":   "true",
		"temporal_focus":      "near_future",
		"vulnerability_level": "HIGH",
	})
	if p.AllowPlayful {
		t.Error("allow_playful should be false")
	}
	if !p.IncludeFavorites {
		t.Error("include_favorites should parse from string")
	}
	if p.TemporalFocus != FocusNearFuture {
		t.Errorf("temporal_focus = %q", p.TemporalFocus)
	}
	if p.Vulnerability != VulnerabilityHigh {
		t.Errorf("vulnerability = %q", p.Vulnerability)
	}
}

func TestNormalizeDeterministic(t *testing.T) {
	raw := map[string]any{"interests": []any{"b", "a", "c"}}
	first := NormalizeProfile(raw)
	second := NormalizeProfile(raw)
	if !reflect.DeepEqual(first, second) {
		t.Error("normalization is not deterministic")
	}
	if !reflect.DeepEqual(first.Interests, []string{"b", "a", "c"}) {
		t.Errorf("insertion order not preserved: %v", first.Interests)
	}
}
