// Package question defines the conversation-starter data model shared by
// the composer, generation adapter, validator, and ranker.
package question

// Level places a question on the escalation ladder, from safe surface
// discovery to deeper catalyst questions.
type Level string

const (
	LevelDiscovery Level = "discovery"
	LevelBridge    Level = "bridge"
	LevelCatalyst  Level = "catalyst"
)

// Valid reports whether l is a known level.
func (l Level) Valid() bool {
	switch l {
	case LevelDiscovery, LevelBridge, LevelCatalyst:
		return true
	}
	return false
}

// Style categorizes the social register of a question.
type Style string

const (
	StyleSoftCuriosity    Style = "soft_curiosity"
	StyleSharedInterest   Style = "shared_interest"
	StyleOpportunityProbe Style = "opportunity_probe"
	StylePlayfulPersonal  Style = "playful_personal"
)

// Valid reports whether s is a known style.
func (s Style) Valid() bool {
	switch s {
	case StyleSoftCuriosity, StyleSharedInterest, StyleOpportunityProbe, StylePlayfulPersonal:
		return true
	}
	return false
}

// Flags records which hard constraints a question satisfies.
type Flags struct {
	LoudSafe   bool `json:"loud_safe"`
	TimeSafe   bool `json:"time_safe"`
	BoundaryOK bool `json:"boundary_ok"`
}

// Question is a single conversation starter. Candidate and final forms
// share this shape; only the flags change during validation.
type Question struct {
	Level     Level  `json:"level"`
	Style     Style  `json:"style"`
	Text      string `json:"text"`
	Rationale string `json:"rationale"`
	// FollowUp must reference {their last point} as a live placeholder
	// the caller substitutes mid-conversation.
	FollowUp string `json:"follow_up"`
	Flags    Flags  `json:"flags"`
}

// Summary captures the overlap analysis a question set was built from.
type Summary struct {
	Commonalities []string `json:"commonalities"`
	Complements   []string `json:"complements"`
	ContextNotes  string   `json:"context_notes"`
}

// Set is a validated, ranked collection of questions. TopPicks holds
// indices into Questions; the slice itself stays the single source of truth.
type Set struct {
	Summary   Summary    `json:"summary"`
	Questions []Question `json:"questions"`
	TopPicks  []int      `json:"top_picks"`
}

// MinQuestions and MaxQuestions bound every validated set.
const (
	MinQuestions = 3
	MaxQuestions = 5
)

// RedZoneTopics are subject categories that must never surface in
// generated text. A question whose text contains any of these
// case-insensitively fails the boundary check.
var RedZoneTopics = []string{
	"politics",
	"religion",
	"health",
	"trauma",
	"salary",
	"appearance",
}
