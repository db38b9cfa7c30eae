// Package profile defines the canonical data model for the people and
// situations the engine writes questions for, and normalizes the loosely
// typed records collaborators hand us into it.
package profile

// EventCategory classifies the social context an encounter happens in.
type EventCategory string

const (
	EventMixer      EventCategory = "mixer"
	EventCareerFair EventCategory = "career_fair"
	EventConference EventCategory = "conference"
	EventClass      EventCategory = "class"
	EventSocial     EventCategory = "social"
)

// Stage is how far along the conversation already is.
type Stage string

const (
	StageIcebreaker Stage = "icebreaker"
	StageWarm       Stage = "warm"
	StageDeep       Stage = "deep"
)

// TemporalFocus biases questions toward the present moment or the near future.
type TemporalFocus string

const (
	FocusPresent    TemporalFocus = "present"
	FocusNearFuture TemporalFocus = "near_future"
)

// VulnerabilityLevel caps how personal a question is allowed to get.
type VulnerabilityLevel string

const (
	VulnerabilityLow  VulnerabilityLevel = "low"
	VulnerabilityMed  VulnerabilityLevel = "med"
	VulnerabilityHigh VulnerabilityLevel = "high"
)

// Profile is one participant's stated facts. The engine never mutates it
// and never invents values for absent fields.
type Profile struct {
	Name    string `json:"name,omitempty"`
	Role    string `json:"role,omitempty"`
	Company string `json:"company,omitempty"`
	School  string `json:"school,omitempty"`

	Interests       []string `json:"interests,omitempty"`
	GoalsNextPeriod []string `json:"goals_next_period,omitempty"`
	RecentWin       string   `json:"recent_win,omitempty"`
	HelpOffers      []string `json:"help_offers,omitempty"`
}

// IsZero reports whether no field of the profile is set.
func (p Profile) IsZero() bool {
	return p.Name == "" && p.Role == "" && p.Company == "" && p.School == "" &&
		len(p.Interests) == 0 && len(p.GoalsNextPeriod) == 0 &&
		p.RecentWin == "" && len(p.HelpOffers) == 0
}

// Context describes the physical and social situation; it drives the
// validator's constraint thresholds.
type Context struct {
	EventLabel    string        `json:"event_label,omitempty"`
	EventCategory EventCategory `json:"event_category,omitempty"`
	// NoiseLevel ranges 0 (quiet) to 3 (loud).
	NoiseLevel        int    `json:"noise_level"`
	TimeBudgetMinutes int    `json:"time_budget_minutes"`
	Stage             Stage  `json:"conversation_stage"`
	City              string `json:"city,omitempty"`
}

// Preferences tune style selection. They never override hard constraints.
type Preferences struct {
	AllowPlayful     bool               `json:"allow_playful"`
	IncludeFavorites bool               `json:"include_favorites"`
	TemporalFocus    TemporalFocus      `json:"temporal_focus"`
	Vulnerability    VulnerabilityLevel `json:"vulnerability_level"`
}
