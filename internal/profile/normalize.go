package profile

import (
	"strconv"
	"strings"
)

// Normalization defaults applied when a field is absent or unusable.
const (
	DefaultTimeBudgetMinutes = 15
	maxNoiseLevel            = 3
)

// NormalizeProfile coerces a loosely typed record into a Profile. It never
// fails: fields that are absent or of an unexpected shape become empty
// values, never fabricated ones.
func NormalizeProfile(raw map[string]any) Profile {
	if raw == nil {
		return Profile{}
	}
	return Profile{
		Name:            stringField(raw, "name"),
		Role:            stringField(raw, "role"),
		Company:         stringField(raw, "company"),
		School:          stringField(raw, "school"),
		Interests:       stringSet(raw, "interests"),
		GoalsNextPeriod: stringSet(raw, "goals_next_period"),
		RecentWin:       stringField(raw, "recent_win"),
		HelpOffers:      stringSet(raw, "help_offers"),
	}
}

// NormalizeContext coerces a loosely typed record into a Context with
// defaults: quiet room, 15 minutes, icebreaker stage.
func NormalizeContext(raw map[string]any) Context {
	c := Context{
		NoiseLevel:        0,
		TimeBudgetMinutes: DefaultTimeBudgetMinutes,
		Stage:             StageIcebreaker,
	}
	if raw == nil {
		return c
	}

	c.EventLabel = stringField(raw, "event_label")
	c.City = stringField(raw, "city")

	switch cat := EventCategory(strings.ToLower(stringField(raw, "event_category"))); cat {
	case EventMixer, EventCareerFair, EventConference, EventClass, EventSocial:
		c.EventCategory = cat
	}

	if n, ok := intField(raw, "noise_level"); ok {
		if n < 0 {
			n = 0
		}
		if n > maxNoiseLevel {
			n = maxNoiseLevel
		}
		c.NoiseLevel = n
	}
	if n, ok := intField(raw, "time_budget_minutes"); ok && n > 0 {
		c.TimeBudgetMinutes = n
	}

	switch stage := Stage(strings.ToLower(stringField(raw, "conversation_stage"))); stage {
	case StageIcebreaker, StageWarm, StageDeep:
		c.Stage = stage
	}

	return c
}

// NormalizePreferences coerces a loosely typed record into Preferences
// with defaults: playful allowed, present focus, low vulnerability.
func NormalizePreferences(raw map[string]any) Preferences {
	p := Preferences{
		AllowPlayful:  true,
		TemporalFocus: FocusPresent,
		Vulnerability: VulnerabilityLow,
	}
	if raw == nil {
		return p
	}

	if b, ok := boolField(raw, "allow_playful"); ok {
		p.AllowPlayful = b
	}
	if b, ok := boolField(raw, "include_favorites"); ok {
		p.IncludeFavorites = b
	}

	switch focus := TemporalFocus(strings.ToLower(stringField(raw, "temporal_focus"))); focus {
	case FocusPresent, FocusNearFuture:
		p.TemporalFocus = focus
	}
	switch v := VulnerabilityLevel(strings.ToLower(stringField(raw, "vulnerability_level"))); v {
	case VulnerabilityLow, VulnerabilityMed, VulnerabilityHigh:
		p.Vulnerability = v
	}

	return p
}

func stringField(raw map[string]any, key string) string {
	v, ok := raw[key]
	if !ok {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(s)
}

// stringSet accepts []string, []any of strings, or a comma-separated
// string (collaborators send all three). Blank entries are dropped;
// insertion order is preserved for determinism.
func stringSet(raw map[string]any, key string) []string {
	v, ok := raw[key]
	if !ok {
		return nil
	}

	var items []string
	switch vv := v.(type) {
	case []string:
		items = vv
	case []any:
		for _, e := range vv {
			if s, ok := e.(string); ok {
				items = append(items, s)
			}
		}
	case string:
		items = strings.Split(vv, ",")
	default:
		return nil
	}

	var out []string
	for _, s := range items {
		s = strings.TrimSpace(s)
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

func intField(raw map[string]any, key string) (int, bool) {
	v, ok := raw[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		// JSON numbers decode as float64.
		return int(n), true
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 0, false
		}
		return parsed, true
	}
	return 0, false
}

func boolField(raw map[string]any, key string) (bool, bool) {
	v, ok := raw[key]
	if !ok {
		return false, false
	}
	switch b := v.(type) {
	case bool:
		return b, true
	case string:
		parsed, err := strconv.ParseBool(strings.TrimSpace(b))
		if err != nil {
			return false, false
		}
		return parsed, true
	}
	return false, false
}
