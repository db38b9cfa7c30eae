// Package composer builds the instruction and task text sent to the
// generation backend. Composition is pure string assembly: same inputs
// produce byte-identical prompts, so the output is snapshot-testable.
package composer

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kindlingapp/kindling/internal/profile"
	"github.com/kindlingapp/kindling/internal/question"
)

// Mode selects which instruction block the prompt carries. All modes share
// the same task serialization and downstream validation.
type Mode string

const (
	ModeOpeners       Mode = "generate_openers"
	ModeFollowupNudge Mode = "followup_nudge"
	ModeEventDigest   Mode = "event_digest_copy"
	ModeGuestView     Mode = "guest_view_copy"
)

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	switch m {
	case ModeOpeners, ModeFollowupNudge, ModeEventDigest, ModeGuestView:
		return true
	}
	return false
}

// Prompt is the composed pair of text blocks for one backend call.
type Prompt struct {
	Instruction string
	Task        string
}

// Input carries everything the composer serializes. Other is nil in
// single-profile mode.
type Input struct {
	Mode        Mode
	Self        profile.Profile
	Other       *profile.Profile
	Context     profile.Context
	Preferences profile.Preferences
	Summary     question.Summary
	Notes       string
}

// Compose builds the instruction and task blocks for the given input.
func Compose(in Input) Prompt {
	return Prompt{
		Instruction: instructionBlock(in.Mode),
		Task:        taskBlock(in),
	}
}

// instructionBlock returns the fixed policy text for a mode. The openers
// policy is the full rule set; auxiliary modes reframe the intent but keep
// every hard rule, since their output passes the same validator.
func instructionBlock(mode Mode) string {
	var sb strings.Builder

	switch mode {
	case ModeFollowupNudge:
		sb.WriteString("You write short follow-up nudges that keep an existing conversation alive.\n")
		sb.WriteString("Frame each question around what was already said, not around a new agenda.\n\n")
	case ModeEventDigest:
		sb.WriteString("You write conversation prompts for an event recap digest.\n")
		sb.WriteString("Each question should help the reader restart a conversation they began at the event.\n\n")
	case ModeGuestView:
		sb.WriteString("You write conversation prompts shown to a guest viewing someone's public card.\n")
		sb.WriteString("Keep questions answerable without any private knowledge of the person.\n\n")
	default:
		sb.WriteString("You write conversation-starter questions for two people about to meet.\n\n")
	}

	sb.WriteString("Rules, all mandatory:\n")
	sb.WriteString("- Lead with curiosity about the other person, never with an agenda or a pitch.\n")
	sb.WriteString("- Escalation ladder: ask discovery-level questions early, escalate to catalyst-level ")
	sb.WriteString("only with positive signal, and reserve deep \"why\" questions for warm or deep stages.\n")
	sb.WriteString("- Banned topics, never mention or allude to: ")
	sb.WriteString(strings.Join(question.RedZoneTopics, ", "))
	sb.WriteString(".\n")
	sb.WriteString("- Every follow_up must reference {their last point} as a placeholder, not a literal quote.\n")
	sb.WriteString(fmt.Sprintf("- Produce exactly %d to %d questions.\n", question.MinQuestions, question.MaxQuestions))
	sb.WriteString("- At least one question must have style opportunity_probe.\n")
	sb.WriteString("- At most one question may have style playful_personal; if preferences forbid playful, none.\n")
	sb.WriteString("- Cover more than one style across the set.\n")
	sb.WriteString("- Use only facts stated in the task input. Never invent biographical details; ")
	sb.WriteString("if you know nothing about a person, ask about the shared situation instead.\n")

	return sb.String()
}

// taskBlock serializes the normalized inputs, the overlap summary, and the
// literal output schema the backend must produce.
func taskBlock(in Input) string {
	var sb strings.Builder

	sb.WriteString("[Self]\n")
	sb.WriteString(marshal(in.Self))

	if in.Other != nil {
		sb.WriteString("\n\n[Other]\n")
		sb.WriteString(marshal(*in.Other))
	} else {
		sb.WriteString("\n\n[Other]\nabsent (write openers the self can use on anyone in this setting)")
	}

	sb.WriteString("\n\n[Context]\n")
	sb.WriteString(marshal(in.Context))

	sb.WriteString("\n\n[Preferences]\n")
	sb.WriteString(marshal(in.Preferences))

	sb.WriteString("\n\n[Detected Overlap]\n")
	sb.WriteString(marshal(in.Summary))

	if in.Notes != "" {
		sb.WriteString("\n\n[Notes]\n")
		sb.WriteString(in.Notes)
	}

	sb.WriteString("\n\n[Output]\nRespond with a single JSON object and nothing else:\n")
	sb.WriteString(outputSchema)

	return sb.String()
}

// outputSchema is the literal response shape description. The adapter
// parses against question.Set, so this text must stay in sync with it.
const outputSchema = `{
  "summary": {
    "commonalities": ["string"],
    "complements": ["string"],
    "context_notes": "string"
  },
  "questions": [
    {
      "level": "discovery | bridge | catalyst",
      "style": "soft_curiosity | shared_interest | opportunity_probe | playful_personal",
      "text": "the question itself",
      "rationale": "why this question fits these people and this moment",
      "follow_up": "a follow-up referencing {their last point}",
      "flags": {"loud_safe": true, "time_safe": true, "boundary_ok": true}
    }
  ],
  "top_picks": [0]
}`

func marshal(v any) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		// All inputs are plain structs of strings, ints, and bools.
		return "{}"
	}
	return string(b)
}
