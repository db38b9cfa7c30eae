package generation

import (
	"fmt"
	"strings"
)

// ExtractJSON isolates a JSON object from a model response. Smaller models
// frequently wrap JSON in markdown code fences or prepend conversational
// filler, so the extractor:
//  1. Strips markdown code fences if present (```json ... ```)
//  2. Finds the first { and last } and returns that substring
func ExtractJSON(resp string) (string, error) {
	s := strings.TrimSpace(resp)

	if idx := strings.Index(s, "```"); idx != -1 {
		s = s[idx+3:]
		if strings.HasPrefix(s, "json") {
			s = s[4:]
		}
		if end := strings.Index(s, "```"); end != -1 {
			s = s[:end]
		}
	}

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end <= start {
		return "", fmt.Errorf("no JSON object in response")
	}
	return s[start : end+1], nil
}
