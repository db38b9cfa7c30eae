// Package rank selects the top picks from a validated question set with a
// deterministic score over level, style, and detected overlap. It returns
// indices rather than copies so the set stays the single source of truth.
package rank

import (
	"sort"

	"github.com/kindlingapp/kindling/internal/profile"
	"github.com/kindlingapp/kindling/internal/question"
)

// maxTopPicks bounds the number of indices returned.
const maxTopPicks = 3

// TopPicks scores every question and returns the indices of the best, at
// most three, in descending score order. Ties keep original list order.
func TopPicks(set question.Set, ctx profile.Context, prefs profile.Preferences) []int {
	if len(set.Questions) == 0 {
		return nil
	}

	idx := make([]int, len(set.Questions))
	for i := range idx {
		idx[i] = i
	}

	scores := make([]int, len(set.Questions))
	for i, q := range set.Questions {
		scores[i] = stageWeight(q.Level, ctx.Stage) + styleWeight(q.Style, prefs, set.Summary)
		if !q.Flags.TimeSafe {
			scores[i]--
		}
	}

	sort.SliceStable(idx, func(a, b int) bool {
		return scores[idx[a]] > scores[idx[b]]
	})

	n := min(maxTopPicks, len(idx))
	return idx[:n]
}

// stageWeight favors the level matching the conversation stage: discovery
// at icebreaker, bridge at warm, anything at deep.
func stageWeight(level question.Level, stage profile.Stage) int {
	switch stage {
	case profile.StageWarm:
		if level == question.LevelBridge {
			return 3
		}
		if level == question.LevelDiscovery {
			return 1
		}
		return 2
	case profile.StageDeep:
		return 2
	default: // icebreaker
		switch level {
		case question.LevelDiscovery:
			return 3
		case question.LevelBridge:
			return 1
		default:
			return 0
		}
	}
}

// styleWeight always favors opportunity_probe, boosts shared_interest when
// a commonality was detected, and nudges playful down at low vulnerability.
func styleWeight(style question.Style, prefs profile.Preferences, summary question.Summary) int {
	switch style {
	case question.StyleOpportunityProbe:
		return 3
	case question.StyleSharedInterest:
		if len(summary.Commonalities) > 0 {
			return 2
		}
		return 1
	case question.StylePlayfulPersonal:
		if prefs.Vulnerability == profile.VulnerabilityLow {
			return 0
		}
		return 1
	default: // soft_curiosity
		return 1
	}
}
