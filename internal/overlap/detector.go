// Package overlap computes what two people have in common and where one
// can help the other, feeding the prompt composer and the ranker.
package overlap

import (
	"fmt"
	"strings"

	"github.com/kindlingapp/kindling/internal/profile"
	"github.com/kindlingapp/kindling/internal/question"
)

// Detect derives commonalities and complements between self and other.
// Single-profile mode is valid: a nil other yields empty lists, not an
// error. Output order follows insertion order of the source profile
// fields so results are deterministic for fixed inputs.
func Detect(self profile.Profile, other *profile.Profile, ctx profile.Context) question.Summary {
	summary := question.Summary{
		Commonalities: []string{},
		Complements:   []string{},
		ContextNotes:  contextNotes(ctx, other != nil),
	}
	if other == nil {
		return summary
	}

	// Shared interests, case-folded, self's order.
	otherInterests := make(map[string]bool, len(other.Interests))
	for _, in := range other.Interests {
		otherInterests[fold(in)] = true
	}
	seen := make(map[string]bool)
	for _, in := range self.Interests {
		f := fold(in)
		if otherInterests[f] && !seen[f] {
			seen[f] = true
			summary.Commonalities = append(summary.Commonalities, f)
		}
	}

	if self.School != "" && other.School != "" && fold(self.School) == fold(other.School) {
		summary.Commonalities = append(summary.Commonalities, "same school: "+fold(self.School))
	}
	if self.Company != "" && other.Company != "" && fold(self.Company) == fold(other.Company) {
		summary.Commonalities = append(summary.Commonalities, "same company: "+fold(self.Company))
	}

	// An offer complements a goal when either string contains the other.
	for _, offer := range self.HelpOffers {
		for _, goal := range other.GoalsNextPeriod {
			if contains(offer, goal) {
				summary.Complements = append(summary.Complements, fmt.Sprintf("%s → %s", offer, goal))
			}
		}
	}

	return summary
}

func contextNotes(ctx profile.Context, hasOther bool) string {
	var parts []string
	if ctx.EventLabel != "" {
		parts = append(parts, "at "+ctx.EventLabel)
	} else if ctx.EventCategory != "" {
		parts = append(parts, "at a "+strings.ReplaceAll(string(ctx.EventCategory), "_", " "))
	}
	if ctx.City != "" {
		parts = append(parts, "in "+ctx.City)
	}
	if !hasOther {
		parts = append(parts, "no counterpart profile, open the room cold")
	}
	return strings.Join(parts, ", ")
}

func fold(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func contains(a, b string) bool {
	fa, fb := fold(a), fold(b)
	if fa == "" || fb == "" {
		return false
	}
	return strings.Contains(fa, fb) || strings.Contains(fb, fa)
}
