// Package canonical builds the reference phrasing of a chapter's solution.
// It is the baseline for similarity scoring and for "how close were you"
// hints.
package canonical

import "github.com/nathoo/questline/types"

// Answer returns the canonical answer for a chapter. Chapters without a
// structured requirement use their first legacy answer, or "" if none.
func Answer(ch types.Chapter) string {
	if ch.Requirement == nil {
		if len(ch.Answers) == 0 {
			return ""
		}
		return ch.Answers[0]
	}
	return ForRequirement(*ch.Requirement)
}

// ForRequirement phrases a structured requirement: "go <direction>" for
// navigation, "<action> <object>" or "<action>" for actions.
func ForRequirement(req types.Requirement) string {
	switch req.Kind {
	case types.RequireNavigation:
		return "go " + req.Direction
	case types.RequireAction:
		if req.Object != "" {
			return req.Action + " " + req.Object
		}
		return req.Action
	default:
		return ""
	}
}
